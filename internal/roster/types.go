// Package roster loads the practitioner table the ranking pipeline
// consumes. Two sources exist: a tab-delimited text feed and a SQLite
// store; both yield the same read-only ordered record sequence.
package roster

import (
	"context"

	"github.com/medmatch-server/internal/domain"
)

// Source supplies practitioner records for one request. Implementations
// must return records in a stable order and must already have excluded
// rows with unparsable years in practice.
type Source interface {
	Load(ctx context.Context) ([]domain.Practitioner, error)
}

// Column names the practitioner feed must carry.
const (
	ColumnName      = "Name"
	ColumnSpecialty = "Specialty"
	ColumnYears     = "Years_in_Practice"
	ColumnHospital  = "Hospital_Affiliation"
	ColumnAddress   = "Address"
	ColumnMobile    = "Mobile"
	ColumnEmail     = "Email"
)
