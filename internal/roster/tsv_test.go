package roster

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTable = "Name\tSpecialty\tYears_in_Practice\tHospital_Affiliation\tAddress\tMobile\tEmail\n" +
	"Dr. Alice Carter\tCardiology\t10\tCity Heart Center\t12 Main St\t555-0101\tcarter@example.org\n" +
	"Dr. Ben Osei\tHematology\t5.5\tGeneral Hospital\t\t\t\n"

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestParseTable(t *testing.T) {
	practitioners, dropped := ParseTable(sampleTable)

	require.Len(t, practitioners, 2)
	assert.Zero(t, dropped)

	assert.Equal(t, "Dr. Alice Carter", practitioners[0].Name)
	assert.Equal(t, "Cardiology", practitioners[0].Specialty)
	assert.Equal(t, 10.0, practitioners[0].YearsInPractice)
	assert.Equal(t, "carter@example.org", practitioners[0].Email)

	assert.Equal(t, 5.5, practitioners[1].YearsInPractice)
	assert.Empty(t, practitioners[1].Address)
}

func TestParseTable_RowExclusions(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantKept    int
		wantDropped int
	}{
		{
			name: "Unparsable years excluded",
			content: "Name\tSpecialty\tYears_in_Practice\n" +
				"Good\tCardiology\t8\n" +
				"Bad\tCardiology\tunknown\n",
			wantKept:    1,
			wantDropped: 1,
		},
		{
			name: "Negative years excluded",
			content: "Name\tSpecialty\tYears_in_Practice\n" +
				"Bad\tCardiology\t-3\n",
			wantKept:    0,
			wantDropped: 1,
		},
		{
			name: "Missing years column drops every row",
			content: "Name\tSpecialty\n" +
				"Bad\tCardiology\n",
			wantKept:    0,
			wantDropped: 1,
		},
		{
			name: "Blank lines skipped",
			content: "Name\tSpecialty\tYears_in_Practice\n" +
				"\n" +
				"Good\tCardiology\t8\n" +
				"\n",
			wantKept:    1,
			wantDropped: 0,
		},
		{
			name:        "Empty input",
			content:     "",
			wantKept:    0,
			wantDropped: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			practitioners, dropped := ParseTable(tt.content)
			if len(practitioners) != tt.wantKept {
				t.Errorf("kept %d rows, want %d", len(practitioners), tt.wantKept)
			}
			if dropped != tt.wantDropped {
				t.Errorf("dropped %d rows, want %d", dropped, tt.wantDropped)
			}
		})
	}
}

func TestParseTable_ShortAndLongRows(t *testing.T) {
	content := "Name\tSpecialty\tYears_in_Practice\tHospital_Affiliation\n" +
		"Short\tCardiology\t4\n" +
		"Long\tHematology\t6\tGeneral Hospital\textra\tcolumns\n"

	practitioners, dropped := ParseTable(content)
	require.Len(t, practitioners, 2)
	assert.Zero(t, dropped)

	// Short rows are padded to the header width, long rows truncated.
	assert.Empty(t, practitioners[0].Hospital)
	assert.Equal(t, "General Hospital", practitioners[1].Hospital)
}

func TestParseTable_HeaderDrivenColumnOrder(t *testing.T) {
	content := "Years_in_Practice\tEmail\tName\tSpecialty\n" +
		"12\tosei@example.org\tDr. Ben Osei\tHematology\n"

	practitioners, dropped := ParseTable(content)
	require.Len(t, practitioners, 1)
	assert.Zero(t, dropped)
	assert.Equal(t, "Dr. Ben Osei", practitioners[0].Name)
	assert.Equal(t, "Hematology", practitioners[0].Specialty)
	assert.Equal(t, 12.0, practitioners[0].YearsInPractice)
	assert.Equal(t, "osei@example.org", practitioners[0].Email)
}

func TestParseTable_CarriageReturns(t *testing.T) {
	content := "Name\tSpecialty\tYears_in_Practice\r\n" +
		"Dr. Win Line\tCardiology\t9\r\n"

	practitioners, dropped := ParseTable(content)
	require.Len(t, practitioners, 1)
	assert.Zero(t, dropped)
	assert.Equal(t, "Dr. Win Line", practitioners[0].Name)
	assert.Equal(t, 9.0, practitioners[0].YearsInPractice)
}

func TestTSVSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doctors.tsv")
	require.NoError(t, os.WriteFile(path, []byte(sampleTable), 0644))

	source := NewTSVSource(path, testLogger())
	practitioners, err := source.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, practitioners, 2)
}

func TestTSVSource_LoadMissingFile(t *testing.T) {
	source := NewTSVSource(filepath.Join(t.TempDir(), "absent.tsv"), testLogger())
	_, err := source.Load(context.Background())
	assert.Error(t, err)
}
