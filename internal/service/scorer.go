package service

import (
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/medmatch-server/internal/domain"
	"github.com/medmatch-server/internal/taxonomy"
)

// maxRankedSpecialties caps the recommended-specialty ranking.
const maxRankedSpecialties = 5

// Marker and urgency term lists. The hematology markers are consulted
// by both the urgency branch here and the ranker's context flag.
var (
	hematologyFallbackMarkers = []string{"blood", "hematology", "cbc", "complete blood count", "mchc", "lymphocyte", "monocyte"}
	hematologyUrgencyMarkers  = []string{"blood", "hematology", "cbc", "complete blood count"}
	concerningSeverityTerms   = []string{"very low", "severely low", "critical", "dangerous", "abnormal", "elevated", "high"}
	borderlineSeverityTerms   = []string{"slightly", "mildly", "borderline"}
	highUrgencyTerms          = []string{"acute", "severe", "critical", "emergency", "high", "urgent", "life-threatening"}
	lowUrgencyTerms           = []string{"chronic", "mild", "stable", "normal", "within range"}
)

// SpecialtyScorer matches an extraction's candidate terms against the
// taxonomy to produce the ranked specialty mapping and urgency tier.
type SpecialtyScorer struct {
	logger   *logrus.Logger
	taxonomy *taxonomy.Store
}

// NewSpecialtyScorer creates a new specialty scorer.
func NewSpecialtyScorer(logger *logrus.Logger, store *taxonomy.Store) *SpecialtyScorer {
	return &SpecialtyScorer{
		logger:   logger,
		taxonomy: store,
	}
}

// Score ranks taxonomy specialties against the extraction result and
// derives the urgency tier.
func (s *SpecialtyScorer) Score(extraction *domain.ExtractionResult) *domain.ScoreResult {
	candidates := candidateTerms(extraction)
	candidateText := strings.ToLower(strings.Join(candidates, " "))
	// Urgency terms may come from the source text itself, not only the
	// extracted candidates ("mild", "chronic" carry no specialty signal
	// but still grade urgency).
	urgencyText := candidateText
	if extraction.NormalizedText != "" {
		urgencyText += " " + extraction.NormalizedText
	}

	ranked := s.rankSpecialties(candidates)

	// Fallback: an unmatched but clearly hematological candidate set
	// still yields a Hematology entry.
	if len(ranked) == 0 && containsAnyOf(candidateText, hematologyFallbackMarkers) {
		ranked = []domain.SpecialtyScore{{
			Specialty: "Hematology",
			Score:     1,
			Matches:   []string{"blood"},
			Relevance: 1.0,
		}}
	}

	result := &domain.ScoreResult{
		RankedSpecialties: ranked,
		Urgency:           deriveUrgency(urgencyText),
	}

	s.logger.WithFields(logrus.Fields{
		"candidates":  len(candidates),
		"specialties": len(ranked),
		"urgency":     result.Urgency,
	}).Debug("Completed specialty scoring")

	return result
}

// candidateTerms builds the union of signal keywords, condition names,
// and abnormal-parameter identifiers.
func candidateTerms(extraction *domain.ExtractionResult) []string {
	terms := make([]string, 0, len(extraction.Keywords)+len(extraction.Conditions)+len(extraction.AbnormalParameters))
	terms = append(terms, extraction.Keywords...)
	terms = append(terms, extraction.Conditions...)
	for _, p := range extraction.AbnormalParameters {
		terms = append(terms, p.Identifier())
	}
	return terms
}

// rankSpecialties scores every specialty by substring containment of
// its keywords inside the candidate terms. A keyword matching several
// candidates counts once per candidate; the matched list keeps the
// duplicates. Ties are broken by taxonomy declaration rank.
func (s *SpecialtyScorer) rankSpecialties(candidates []string) []domain.SpecialtyScore {
	lowered := make([]string, len(candidates))
	for i, c := range candidates {
		lowered[i] = strings.ToLower(c)
	}

	var ranked []domain.SpecialtyScore
	for _, sp := range s.taxonomy.Specialties() {
		score := 0
		var matches []string
		for _, keyword := range sp.Keywords {
			for _, candidate := range lowered {
				if strings.Contains(candidate, keyword) {
					score++
					matches = append(matches, keyword)
				}
			}
		}
		if score == 0 {
			continue
		}
		relevance := 0.0
		if len(sp.Keywords) > 0 {
			relevance = float64(score) / float64(len(sp.Keywords))
		}
		// Substring matching can count a keyword once per candidate, so
		// the ratio is clamped to keep relevance within [0,1].
		if relevance > 1 {
			relevance = 1
		}
		ranked = append(ranked, domain.SpecialtyScore{
			Specialty: sp.Name,
			Score:     score,
			Matches:   matches,
			Relevance: relevance,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return s.taxonomy.SpecialtyRank(ranked[i].Specialty) < s.taxonomy.SpecialtyRank(ranked[j].Specialty)
	})

	if len(ranked) > maxRankedSpecialties {
		ranked = ranked[:maxRankedSpecialties]
	}
	return ranked
}

// deriveUrgency grades the urgency tier. The hematology gate takes
// precedence; inside it, concerning severity terms mean High while both
// the borderline case and the default grade Medium (two observable
// paths to the same tier, kept as written). Outside the gate the
// general high/low term lists apply, defaulting to Medium.
func deriveUrgency(text string) domain.Urgency {
	if containsAnyOf(text, hematologyUrgencyMarkers) {
		if containsAnyOf(text, concerningSeverityTerms) {
			return domain.UrgencyHigh
		}
		if containsAnyOf(text, borderlineSeverityTerms) {
			return domain.UrgencyMedium
		}
		return domain.UrgencyMedium
	}
	if containsAnyOf(text, highUrgencyTerms) {
		return domain.UrgencyHigh
	}
	if containsAnyOf(text, lowUrgencyTerms) {
		return domain.UrgencyLow
	}
	return domain.UrgencyMedium
}
