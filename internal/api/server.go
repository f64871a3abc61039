package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/medmatch-server/internal/config"
	"github.com/medmatch-server/internal/domain"
	"github.com/medmatch-server/internal/middleware"
	"github.com/medmatch-server/internal/roster"
	"github.com/medmatch-server/internal/service"
)

// Server represents the HTTP server
type Server struct {
	configManager *config.Manager
	logger        *logrus.Logger
	recommender   *service.RecommenderService
	rosterSource  roster.Source
	router        *gin.Engine
	server        *http.Server
	limiter       *middleware.RateLimiter
}

// NewServer creates a new HTTP server instance
func NewServer(configManager *config.Manager, logger *logrus.Logger, recommender *service.RecommenderService, rosterSource roster.Source) *Server {
	cfg := configManager.GetConfig()

	// Set Gin mode based on environment
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CorrelationID())
	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(logger, cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		router.Use(limiter.Handler())
	}

	server := &Server{
		configManager: configManager,
		logger:        logger,
		recommender:   recommender,
		rosterSource:  rosterSource,
		router:        router,
		limiter:       limiter,
	}

	server.setupRoutes()

	return server
}

// Start starts the HTTP server and blocks until the context is
// cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	if s.limiter != nil {
		defer s.limiter.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/recommend", s.handleRecommend)
	}
}

// RecommendRequest is the request body of the recommend endpoint. The
// report is either a free-text string or an arbitrarily nested JSON
// structure.
type RecommendRequest struct {
	Report json.RawMessage `json:"report" binding:"required"`
	TopN   int             `json:"top_n,omitempty"`
}

// RecommendResponse is the wire form of a recommendation report.
type RecommendResponse struct {
	Success               bool                    `json:"success"`
	MedicalAnalysis       domain.MedicalAnalysis  `json:"medical_analysis"`
	DoctorRecommendations []domain.Recommendation `json:"doctor_recommendations"`
	Summary               domain.Summary          `json:"summary"`
	Message               string                  `json:"message"`
	NoDoctorsFound        bool                    `json:"no_doctors_found"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"version":   "1.0.0",
	})
}

// handleRecommend runs the recommendation pipeline for one report
// payload against the current practitioner roster.
func (s *Server) handleRecommend(c *gin.Context) {
	requestID := c.GetString("correlation_id")

	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, domain.NewAPIError(
			domain.ErrInvalidInput, "Invalid request body", err.Error(), requestID))
		return
	}

	if req.TopN < 0 {
		verr := domain.NewValidationError("top_n", "must not be negative", req.TopN)
		c.JSON(http.StatusBadRequest, domain.NewAPIError(
			domain.ErrValidation, "Invalid request body", verr.Error(), requestID))
		return
	}

	var payload domain.Payload
	if err := json.Unmarshal(req.Report, &payload); err != nil {
		c.JSON(http.StatusBadRequest, domain.NewAPIError(
			domain.ErrInvalidInput, "Invalid report payload", err.Error(), requestID))
		return
	}

	practitioners, err := s.rosterSource.Load(c.Request.Context())
	if err != nil {
		s.logger.WithError(err).WithField("correlation_id", requestID).Error("Failed to load practitioner roster")
		c.JSON(http.StatusInternalServerError, domain.NewAPIError(
			domain.ErrRosterError, "Failed to load practitioner roster", err.Error(), requestID))
		return
	}

	report := s.recommender.Recommend(&service.RecommendParams{
		Payload:       &payload,
		Practitioners: practitioners,
		TopN:          req.TopN,
	})

	c.JSON(http.StatusOK, RecommendResponse{
		Success:               true,
		MedicalAnalysis:       report.MedicalAnalysis,
		DoctorRecommendations: report.Recommendations,
		Summary:               report.Summary,
		Message:               report.Message,
		NoDoctorsFound:        report.NoDoctorsFound,
	})
}
