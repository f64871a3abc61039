package roster

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/medmatch-server/internal/domain"
)

// TSVSource reads practitioners from a tab-delimited text file with a
// header row defining the column names.
type TSVSource struct {
	path   string
	logger *logrus.Logger
}

// NewTSVSource creates a practitioner source backed by a TSV file.
func NewTSVSource(path string, logger *logrus.Logger) *TSVSource {
	return &TSVSource{path: path, logger: logger}
}

// Load reads and parses the practitioner table.
func (s *TSVSource) Load(ctx context.Context) ([]domain.Practitioner, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading practitioner table: %w", err)
	}
	practitioners, dropped := ParseTable(string(data))
	if dropped > 0 {
		s.logger.WithFields(logrus.Fields{
			"path":    s.path,
			"dropped": dropped,
		}).Warn("Excluded practitioner rows with unparsable years in practice")
	}
	return practitioners, nil
}

// ParseTable parses tab-delimited practitioner rows. The header row
// defines the columns; short rows are padded with empty strings to the
// header width and long rows truncated. Rows whose Years_in_Practice
// does not parse as a non-negative number are excluded, not defaulted.
// Individual bad rows never reject the whole table. Returns the records
// and the count of excluded rows.
func ParseTable(content string) ([]domain.Practitioner, int) {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return []domain.Practitioner{}, 0
	}

	headers := strings.Split(strings.TrimRight(lines[0], "\r"), "\t")
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.TrimSpace(h)] = i
	}

	field := func(row []string, column string) string {
		if i, ok := index[column]; ok {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	practitioners := make([]domain.Practitioner, 0, len(lines)-1)
	dropped := 0
	for _, line := range lines[1:] {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		row := strings.Split(line, "\t")
		for len(row) < len(headers) {
			row = append(row, "")
		}
		row = row[:len(headers)]

		years, err := strconv.ParseFloat(field(row, ColumnYears), 64)
		if err != nil || years < 0 {
			dropped++
			continue
		}

		practitioners = append(practitioners, domain.Practitioner{
			Name:            field(row, ColumnName),
			Specialty:       field(row, ColumnSpecialty),
			YearsInPractice: years,
			Hospital:        field(row, ColumnHospital),
			Address:         field(row, ColumnAddress),
			Mobile:          field(row, ColumnMobile),
			Email:           field(row, ColumnEmail),
		})
	}
	return practitioners, dropped
}
