package service

import (
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/medmatch-server/internal/domain"
)

// Score weighting for the combined practitioner score.
const (
	specialtyWeight   = 0.8
	experienceWeight  = 0.2
	unmatchedWeight   = 0.3
	experiencePlateau = 15.0
)

// Specialty boosts applied in hematology context, capped at 1.0.
const (
	hematologyBoost       = 1.5
	internalMedicineBoost = 1.3
)

// hematologyContextMarkers flags a blood-panel case from the signal
// keywords. Recomputed here independently of the scorer's urgency
// branch; both consult the same marker family.
var hematologyContextMarkers = []string{"blood", "hematology", "cbc", "complete blood count", "mchc", "lymphocyte", "monocyte", "hemoglobin", "platelet", "rbc", "wbc"}

// PractitionerRanker combines specialty relevance with practitioner
// experience into a single ranked score per practitioner.
type PractitionerRanker struct {
	logger *logrus.Logger
}

// NewPractitionerRanker creates a new practitioner ranker.
func NewPractitionerRanker(logger *logrus.Logger) *PractitionerRanker {
	return &PractitionerRanker{logger: logger}
}

// Rank scores every practitioner against the specialty ranking and
// sorts descending by total score. Practitioners without a specialty
// match are retained here with a reduced experience-only score; the
// assembler filters them out of the final report.
func (r *PractitionerRanker) Rank(practitioners []domain.Practitioner, extraction *domain.ExtractionResult, scores *domain.ScoreResult) []domain.ScoredPractitioner {
	maxScore := float64(scores.MaxScore())
	hematologyCase := isHematologyContext(extraction)

	ranked := make([]domain.ScoredPractitioner, 0, len(practitioners))
	for _, p := range practitioners {
		specialty := strings.TrimSpace(p.Specialty)

		scored := domain.ScoredPractitioner{Practitioner: p}
		scored.ExperienceScore = clamp01(p.YearsInPractice / experiencePlateau)

		if record, ok := scores.ScoreFor(specialty); ok {
			match := clamp01(float64(record.Score) / maxScore)
			if hematologyCase && specialty == "Hematology" {
				match = clamp01(match * hematologyBoost)
			}
			if hematologyCase && specialty == "Internal Medicine" {
				match = clamp01(match * internalMedicineBoost)
			}
			scored.SpecialtyMatchScore = match
			scored.TotalScore = match*specialtyWeight + scored.ExperienceScore*experienceWeight
		} else {
			scored.TotalScore = scored.ExperienceScore * unmatchedWeight
		}

		ranked = append(ranked, scored)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalScore > ranked[j].TotalScore
	})

	r.logger.WithFields(logrus.Fields{
		"practitioners":   len(ranked),
		"hematology_case": hematologyCase,
		"max_raw_score":   maxScore,
	}).Debug("Completed practitioner ranking")

	return ranked
}

// isHematologyContext reports whether the extracted signal keywords
// indicate a blood-panel case.
func isHematologyContext(extraction *domain.ExtractionResult) bool {
	joined := strings.ToLower(strings.Join(extraction.Keywords, " "))
	return containsAnyOf(joined, hematologyContextMarkers)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
