package roster

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/medmatch-server/internal/domain"
)

// SQLiteStore implements Source against a SQLite database, for
// deployments that keep the roster in a database instead of a flat
// file.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens (or creates) a SQLite roster store. The schema
// is created if it does not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPractitioner(s scanner) (*domain.Practitioner, error) {
	p := &domain.Practitioner{}
	err := s.Scan(
		&p.Name, &p.Specialty, &p.YearsInPractice,
		&p.Hospital, &p.Address, &p.Mobile, &p.Email,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS practitioners (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		specialty TEXT NOT NULL,
		years_in_practice REAL NOT NULL CHECK (years_in_practice >= 0),
		hospital_affiliation TEXT DEFAULT '',
		address TEXT DEFAULT '',
		mobile TEXT DEFAULT '',
		email TEXT DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_specialty ON practitioners(specialty);
	`

	_, err := db.Exec(schema)
	return err
}

// Load returns every practitioner in insertion order.
func (s *SQLiteStore) Load(ctx context.Context) ([]domain.Practitioner, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, specialty, years_in_practice,
			hospital_affiliation, address, mobile, email
		FROM practitioners
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query practitioners: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Practitioner, 0)
	for rows.Next() {
		p, err := scanPractitioner(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

// Add inserts one practitioner.
func (s *SQLiteStore) Add(ctx context.Context, p *domain.Practitioner) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO practitioners (
			name, specialty, years_in_practice,
			hospital_affiliation, address, mobile, email
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		p.Name, p.Specialty, p.YearsInPractice,
		p.Hospital, p.Address, p.Mobile, p.Email,
	)
	if err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}
	return nil
}

// ImportTable replaces the stored roster with the rows of a
// tab-delimited table, applying the same row-level exclusions as the
// TSV source. Returns the number of imported rows.
func (s *SQLiteStore) ImportTable(ctx context.Context, content string) (int, error) {
	practitioners, _ := ParseTable(content)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM practitioners"); err != nil {
		return 0, fmt.Errorf("failed to clear roster: %w", err)
	}
	for i := range practitioners {
		p := practitioners[i]
		_, err := tx.ExecContext(ctx, `
			INSERT INTO practitioners (
				name, specialty, years_in_practice,
				hospital_affiliation, address, mobile, email
			) VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			p.Name, p.Specialty, p.YearsInPractice,
			p.Hospital, p.Address, p.Mobile, p.Email,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return len(practitioners), nil
}

// Count returns the number of stored practitioners.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM practitioners").Scan(&count)
	return count, err
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
