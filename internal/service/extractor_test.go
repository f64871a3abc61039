package service

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medmatch-server/internal/domain"
	"github.com/medmatch-server/internal/taxonomy"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestExtractor() *SignalExtractor {
	return NewSignalExtractor(testLogger(), taxonomy.NewStore())
}

func mustPayload(t *testing.T, raw string) *domain.Payload {
	t.Helper()
	var p domain.Payload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return &p
}

func TestExtract_FreeTextCardiology(t *testing.T) {
	extractor := newTestExtractor()

	result := extractor.Extract(domain.TextPayload("Patient has high blood pressure and chest pain"))

	assert.ElementsMatch(t,
		[]string{"blood", "high blood", "blood pressure", "chest pain", "chest"},
		result.Keywords)
	assert.Equal(t, []string{"Hypertension"}, result.Conditions)
	assert.Equal(t, "patient has high blood pressure and chest pain", result.NormalizedText)
	assert.Empty(t, result.AbnormalParameters)
}

func TestExtract_FreeTextHematologyConditions(t *testing.T) {
	extractor := newTestExtractor()

	result := extractor.Extract(domain.TextPayload(
		"Complete blood count shows elevated MCHC and low lymphocyte count"))

	assert.Equal(t,
		[]string{"High MCHC", "Low Lymphocyte Count", "Blood Test Abnormalities"},
		result.Conditions)
	assert.Contains(t, result.Keywords, "mchc")
	assert.Contains(t, result.Keywords, "elevated mchc")
	assert.Contains(t, result.Keywords, "low lymphocyte")
	assert.Contains(t, result.Keywords, "complete blood count")
}

func TestExtract_FreeTextConditionChecks(t *testing.T) {
	extractor := newTestExtractor()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "Diabetes phrasing",
			text: "Fasting glucose remains high",
			want: []string{"Diabetes"},
		},
		{
			name: "Infection phrasing",
			text: "Signs of a bacterial infection",
			want: []string{"Infection"},
		},
		{
			name: "Independent checks can fire together",
			text: "Blood test indicates anemia alongside a viral infection",
			want: []string{"Anemia", "Infection"},
		},
		{
			name: "Hematology sub-checks stay gated",
			text: "elevated mchc with no panel context",
			want: nil,
		},
		{
			name: "No conditions",
			text: "Routine wellness visit",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractor.Extract(domain.TextPayload(tt.text))
			if len(tt.want) == 0 {
				assert.Empty(t, result.Conditions)
				return
			}
			assert.Equal(t, tt.want, result.Conditions)
		})
	}
}

func TestExtract_StructuredReport(t *testing.T) {
	extractor := newTestExtractor()

	payload := mustPayload(t, `{
		"patient_info": {"name": "John Smith", "age": 45},
		"diagnosis": {"most_probable": "Diabetes"},
		"abnormal_parameters": ["low hemoglobin", {"parameter": "mchc", "value": "37.2"}],
		"symptoms": "severe headache and blood in stool"
	}`)

	result := extractor.Extract(payload)

	assert.Equal(t, "John Smith", result.PatientInfo["name"])
	assert.Equal(t, "45", result.PatientInfo["age"])
	assert.Equal(t, []string{"Diabetes"}, result.Conditions)

	require.Len(t, result.AbnormalParameters, 2)
	assert.Equal(t, "low hemoglobin", result.AbnormalParameters[0].Identifier())
	assert.Equal(t, "mchc", result.AbnormalParameters[1].Identifier())
	assert.Equal(t, "37.2", result.AbnormalParameters[1].Value)

	assert.ElementsMatch(t, []string{"headache", "blood"}, result.Keywords)
	assert.Empty(t, result.NormalizedText, "structured payloads carry no source text")
}

func TestExtract_PatientInfoKeepsNestedEntries(t *testing.T) {
	extractor := newTestExtractor()

	payload := mustPayload(t, `{
		"patient_info": {
			"name": "John Smith",
			"address": {"city": "Springfield", "street": "12 Main St"},
			"allergies": ["penicillin", "latex"]
		}
	}`)

	result := extractor.Extract(payload)

	assert.Equal(t, "John Smith", result.PatientInfo["name"])
	assert.Equal(t, "city: Springfield; street: 12 Main St", result.PatientInfo["address"])
	assert.Equal(t, "penicillin, latex", result.PatientInfo["allergies"])
}

func TestExtract_DeeplyNestedConditionFoundOnce(t *testing.T) {
	extractor := newTestExtractor()

	payload := mustPayload(t, `{
		"report": [
			{"section": {"findings": {"diagnosis": {"most_probable": "Diabetes"}}}}
		]
	}`)

	result := extractor.Extract(payload)

	count := 0
	for _, c := range result.Conditions {
		if c == "Diabetes" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Diabetes extracted %d times, want exactly once", count)
	}
}

func TestExtract_NeverFails(t *testing.T) {
	extractor := newTestExtractor()

	tests := []struct {
		name    string
		payload *domain.Payload
	}{
		{"Nil payload", nil},
		{"Empty text", domain.TextPayload("")},
		{"Empty mapping", mustPayload(t, `{}`)},
		{"Mixed leaf types", mustPayload(t, `{"reading": 12.5, "flagged": false, "note": null}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractor.Extract(tt.payload)
			require.NotNil(t, result)
			assert.NotNil(t, result.Keywords)
			assert.NotNil(t, result.Conditions)
			assert.NotNil(t, result.AbnormalParameters)
		})
	}
}
