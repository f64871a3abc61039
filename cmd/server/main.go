package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/medmatch-server/internal/api"
	"github.com/medmatch-server/internal/config"
	"github.com/medmatch-server/internal/roster"
	"github.com/medmatch-server/internal/service"
	"github.com/medmatch-server/internal/taxonomy"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := newLogger(cfg)

	// Practitioner roster source
	rosterSource, closeRoster, err := newRosterSource(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open practitioner roster: %v", err)
	}
	defer closeRoster()

	// Recommendation pipeline over the immutable taxonomy
	var cache *service.ReportCache
	if cfg.Cache.Enabled {
		cache, err = service.NewReportCache(cfg.Cache.MaxEntries)
		if err != nil {
			log.Fatalf("Failed to create report cache: %v", err)
		}
	}
	recommender := service.NewRecommenderService(logger, taxonomy.NewStore(), cache)

	server := api.NewServer(configManager, logger, recommender, rosterSource)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	logger.WithFields(logrus.Fields{
		"host":          cfg.Server.Host,
		"port":          cfg.Server.Port,
		"roster_source": cfg.Roster.Source,
	}).Info("Starting medmatch server")

	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}

	logger.Info("Server stopped")
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Logging.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}

func newRosterSource(cfg *config.Config, logger *logrus.Logger) (roster.Source, func(), error) {
	switch cfg.Roster.Source {
	case "sqlite":
		store, err := roster.NewSQLiteStore(cfg.Roster.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	default:
		return roster.NewTSVSource(cfg.Roster.Path, logger), func() {}, nil
	}
}
