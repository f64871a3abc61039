package domain

// Core Enums and Types

// Urgency represents how time-sensitive a detected condition appears.
type Urgency string

const (
	UrgencyLow    Urgency = "Low"
	UrgencyMedium Urgency = "Medium"
	UrgencyHigh   Urgency = "High"
)

// String returns the urgency tier as a string.
func (u Urgency) String() string {
	return string(u)
}

// Reference Data Models

// Condition represents a named medical diagnosis concept with trigger
// keywords, associated specialties, and an urgency tier. Reference data,
// immutable after construction.
type Condition struct {
	Name                 string   `json:"name"`
	Keywords             []string `json:"keywords"`
	PrimarySpecialties   []string `json:"primary_specialties"`
	SecondarySpecialties []string `json:"secondary_specialties"`
	Urgency              Urgency  `json:"urgency_level"`
}

// Extraction Models

// AbnormalParameter is one abnormal-parameter mention from a report.
// Mentions arrive either as plain strings or as {parameter, value}
// objects; both forms are accepted and preserved.
type AbnormalParameter struct {
	Parameter string `json:"parameter,omitempty"`
	Value     string `json:"value,omitempty"`
	Raw       string `json:"raw,omitempty"`
}

// Identifier returns the term this mention contributes to specialty
// matching: the parameter field for structured mentions, the raw string
// otherwise.
func (p AbnormalParameter) Identifier() string {
	if p.Parameter != "" {
		return p.Parameter
	}
	return p.Raw
}

// ExtractionResult is the normalized signal set derived from one input
// payload. Created fresh per request and never persisted.
type ExtractionResult struct {
	PatientInfo        map[string]string   `json:"patient_info"`
	Conditions         []string            `json:"conditions"`
	AbnormalParameters []AbnormalParameter `json:"abnormal_parameters"`
	Keywords           []string            `json:"keywords"`
	Symptoms           []string            `json:"symptoms"`

	// NormalizedText is the lowercased source text for free-text
	// payloads; empty for structured payloads. Urgency derivation
	// consults it alongside the candidate terms.
	NormalizedText string `json:"-"`
}

// NewExtractionResult returns an empty extraction result with all
// collections initialized, so JSON output carries empty lists rather
// than nulls.
func NewExtractionResult() *ExtractionResult {
	return &ExtractionResult{
		PatientInfo:        make(map[string]string),
		Conditions:         []string{},
		AbnormalParameters: []AbnormalParameter{},
		Keywords:           []string{},
		Symptoms:           []string{},
	}
}

// Scoring Models

// SpecialtyScore records how strongly one specialty matched the
// candidate signal set.
type SpecialtyScore struct {
	Specialty string   `json:"specialty"`
	Score     int      `json:"score"`
	Matches   []string `json:"matches"`
	Relevance float64  `json:"relevance"`
}

// ScoreResult is the ranked specialty mapping plus the derived urgency
// tier for one extraction.
type ScoreResult struct {
	// RankedSpecialties is ordered by descending score; ties keep the
	// taxonomy declaration order.
	RankedSpecialties []SpecialtyScore `json:"ranked_specialties"`
	Urgency           Urgency          `json:"urgency_level"`
}

// ScoreFor returns the score record for a specialty name, if present.
func (r *ScoreResult) ScoreFor(specialty string) (SpecialtyScore, bool) {
	for _, s := range r.RankedSpecialties {
		if s.Specialty == specialty {
			return s, true
		}
	}
	return SpecialtyScore{}, false
}

// MaxScore returns the highest raw score in the ranking, defaulting to
// 1 when the ranking is empty so score normalization never divides by
// zero.
func (r *ScoreResult) MaxScore() int {
	max := 0
	for _, s := range r.RankedSpecialties {
		if s.Score > max {
			max = s.Score
		}
	}
	if max == 0 {
		return 1
	}
	return max
}

// Practitioner Models

// Practitioner is one row of the practitioner roster. The core treats
// the roster as a read-only ordered sequence for the duration of one
// request.
type Practitioner struct {
	Name            string  `json:"name"`
	Specialty       string  `json:"specialty"`
	YearsInPractice float64 `json:"years_in_practice"`
	Hospital        string  `json:"hospital_affiliation"`
	Address         string  `json:"address"`
	Mobile          string  `json:"mobile"`
	Email           string  `json:"email"`
}

// ScoredPractitioner is a practitioner with per-request derived scores.
// Recomputed every request, never cached across payloads.
type ScoredPractitioner struct {
	Practitioner
	SpecialtyMatchScore float64 `json:"specialty_match_score"`
	ExperienceScore     float64 `json:"experience_score"`
	TotalScore          float64 `json:"total_score"`
}

// Report Models

// Contact carries a recommended practitioner's contact fields.
type Contact struct {
	Mobile string `json:"mobile"`
	Email  string `json:"email"`
}

// Scores carries the rounded per-practitioner score breakdown.
type Scores struct {
	SpecialtyMatch float64 `json:"specialty_match"`
	Experience     float64 `json:"experience"`
	Total          float64 `json:"total"`
}

// Recommendation is one ranked practitioner in the final report.
type Recommendation struct {
	Name            string   `json:"name"`
	Specialty       string   `json:"specialty"`
	YearsExperience int      `json:"years_experience"`
	Hospital        string   `json:"hospital"`
	Address         string   `json:"address"`
	Contact         Contact  `json:"contact"`
	Scores          Scores   `json:"scores"`
	WhyRecommended  string   `json:"why_recommended"`
	MatchedKeywords []string `json:"matched_keywords"`
}

// MedicalAnalysis groups the extraction and scoring outputs in the
// report.
type MedicalAnalysis struct {
	ExtractedInfo     *ExtractionResult `json:"extracted_info"`
	ConditionAnalysis *ScoreResult      `json:"condition_analysis"`
	Urgency           Urgency           `json:"urgency_level"`
}

// Summary is the report's condensed overview.
type Summary struct {
	PatientConditions []string            `json:"patient_conditions"`
	KeyConcerns       []AbnormalParameter `json:"key_concerns"`
	TopSpecialties    []string            `json:"top_specialties_needed"`
	Urgency           Urgency             `json:"urgency"`
	TotalRecommended  int                 `json:"total_doctors_recommended"`
	NextSteps         []string            `json:"next_steps"`
}

// Report is the complete recommendation report handed to the transport
// layer for serialization.
type Report struct {
	MedicalAnalysis MedicalAnalysis  `json:"medical_analysis"`
	Recommendations []Recommendation `json:"doctor_recommendations"`
	Summary         Summary          `json:"summary"`
	NoDoctorsFound  bool             `json:"no_doctors_found"`
	Message         string           `json:"message"`
}
