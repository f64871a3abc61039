package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/medmatch-server/internal/domain"
	"github.com/medmatch-server/internal/taxonomy"
)

// DefaultTopN is the default cap on recommended practitioners.
const DefaultTopN = 5

// noMatchNextSteps is the fixed script returned when no practitioner
// matched the recommended specialties.
var noMatchNextSteps = []string{
	"No specialists found for your specific condition",
	"Consider consulting with a general physician first",
	"Your condition may require specialized care not available in our database",
	"Keep all medical reports for future specialist consultation",
}

// RecommenderService runs the full pipeline: extraction, specialty
// scoring, practitioner ranking, and report assembly.
type RecommenderService struct {
	logger    *logrus.Logger
	extractor *SignalExtractor
	scorer    *SpecialtyScorer
	ranker    *PractitionerRanker
	cache     *ReportCache
}

// NewRecommenderService creates a new recommender service. The cache is
// optional; pass nil to recompute every request.
func NewRecommenderService(logger *logrus.Logger, store *taxonomy.Store, cache *ReportCache) *RecommenderService {
	return &RecommenderService{
		logger:    logger,
		extractor: NewSignalExtractor(logger, store),
		scorer:    NewSpecialtyScorer(logger, store),
		ranker:    NewPractitionerRanker(logger),
		cache:     cache,
	}
}

// RecommendParams parameterizes one recommendation request.
type RecommendParams struct {
	Payload       *domain.Payload
	Practitioners []domain.Practitioner
	TopN          int
}

// Recommend produces the complete recommendation report. It never
// fails: a roster with no matching practitioner yields a structured
// "no match" report, not an error.
func (s *RecommenderService) Recommend(params *RecommendParams) *domain.Report {
	start := time.Now()
	topN := params.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	var key string
	if s.cache != nil {
		key = CacheKey(params.Payload, params.Practitioners, topN)
		if report, ok := s.cache.Get(key); ok {
			s.logger.WithField("cache_key", key[:12]).Debug("Serving recommendation report from cache")
			return report
		}
	}

	extraction := s.extractor.Extract(params.Payload)
	scores := s.scorer.Score(extraction)
	ranked := s.ranker.Rank(params.Practitioners, extraction, scores)
	report := s.assemble(extraction, scores, ranked, topN)

	s.logger.WithFields(logrus.Fields{
		"conditions":      len(extraction.Conditions),
		"specialties":     len(scores.RankedSpecialties),
		"recommendations": len(report.Recommendations),
		"urgency":         scores.Urgency,
		"no_doctors":      report.NoDoctorsFound,
		"processing_time": time.Since(start),
	}).Info("Completed recommendation pipeline")

	if s.cache != nil {
		s.cache.Add(key, report)
	}
	return report
}

// assemble composes the extractor, scorer, and ranker outputs into the
// final report with rationale strings and next steps.
func (s *RecommenderService) assemble(extraction *domain.ExtractionResult, scores *domain.ScoreResult, ranked []domain.ScoredPractitioner, topN int) *domain.Report {
	analysis := domain.MedicalAnalysis{
		ExtractedInfo:     extraction,
		ConditionAnalysis: scores,
		Urgency:           scores.Urgency,
	}

	matching := make([]domain.ScoredPractitioner, 0, len(ranked))
	for _, p := range ranked {
		if p.SpecialtyMatchScore > 0 {
			matching = append(matching, p)
		}
	}

	if len(matching) == 0 {
		return &domain.Report{
			MedicalAnalysis: analysis,
			Recommendations: []domain.Recommendation{},
			Summary: domain.Summary{
				PatientConditions: extraction.Conditions,
				KeyConcerns:       extraction.AbnormalParameters,
				TopSpecialties:    topSpecialtyNames(scores, 3),
				Urgency:           scores.Urgency,
				TotalRecommended:  0,
				NextSteps:         noMatchNextSteps,
			},
			NoDoctorsFound: true,
			Message:        "No doctors found matching your medical requirements",
		}
	}

	if len(matching) > topN {
		matching = matching[:topN]
	}

	recommendations := make([]domain.Recommendation, 0, len(matching))
	for _, p := range matching {
		record, _ := scores.ScoreFor(strings.TrimSpace(p.Specialty))
		recommendations = append(recommendations, domain.Recommendation{
			Name:            p.Name,
			Specialty:       p.Specialty,
			YearsExperience: int(p.YearsInPractice),
			Hospital:        p.Hospital,
			Address:         p.Address,
			Contact:         domain.Contact{Mobile: p.Mobile, Email: p.Email},
			Scores: domain.Scores{
				SpecialtyMatch: round3(p.SpecialtyMatchScore),
				Experience:     round3(p.ExperienceScore),
				Total:          round3(p.TotalScore),
			},
			WhyRecommended:  s.recommendationReason(p.Specialty, extraction, scores),
			MatchedKeywords: record.Matches,
		})
	}

	return &domain.Report{
		MedicalAnalysis: analysis,
		Recommendations: recommendations,
		Summary:         s.summary(extraction, scores, recommendations),
		NoDoctorsFound:  false,
		Message:         fmt.Sprintf("Found %d matching doctor(s) for your condition", len(recommendations)),
	}
}

// recommendationReason builds the per-practitioner rationale from the
// matched keywords, treated conditions, and urgency, falling back to a
// generic sentence when no component applies.
func (s *RecommenderService) recommendationReason(specialty string, extraction *domain.ExtractionResult, scores *domain.ScoreResult) string {
	var reasons []string

	if record, ok := scores.ScoreFor(strings.TrimSpace(specialty)); ok && len(record.Matches) > 0 {
		reasons = append(reasons, fmt.Sprintf("Specialist expertise matches your condition indicators: %s",
			strings.Join(firstN(record.Matches, 3), ", ")))
	}

	if len(extraction.Conditions) > 0 {
		reasons = append(reasons, fmt.Sprintf("Recommended for treating: %s",
			strings.Join(firstN(extraction.Conditions, 2), ", ")))
	}

	if scores.Urgency == domain.UrgencyHigh {
		reasons = append(reasons, "High priority consultation recommended due to condition severity")
	}

	if len(reasons) == 0 {
		return fmt.Sprintf("Medical specialist in %s recommended based on your health profile", specialty)
	}
	return strings.Join(reasons, ". ")
}

// summary builds the condensed report overview and next-steps list.
func (s *RecommenderService) summary(extraction *domain.ExtractionResult, scores *domain.ScoreResult, recommendations []domain.Recommendation) domain.Summary {
	firstStep := "Consult with general physician"
	if len(recommendations) > 0 {
		firstStep = fmt.Sprintf("Schedule consultation with %s specialist", recommendations[0].Specialty)
	}
	lastStep := "Follow up as recommended"
	if scores.Urgency == domain.UrgencyHigh {
		lastStep = "Seek immediate care if symptoms worsen"
	}

	return domain.Summary{
		PatientConditions: extraction.Conditions,
		KeyConcerns:       extraction.AbnormalParameters,
		TopSpecialties:    topSpecialtyNames(scores, 3),
		Urgency:           scores.Urgency,
		TotalRecommended:  len(recommendations),
		NextSteps: []string{
			firstStep,
			"Monitor symptoms and follow medical advice",
			"Keep all medical reports for specialist consultation",
			lastStep,
		},
	}
}

func topSpecialtyNames(scores *domain.ScoreResult, n int) []string {
	names := make([]string, 0, n)
	for _, s := range scores.RankedSpecialties {
		if len(names) == n {
			break
		}
		names = append(names, s.Specialty)
	}
	return names
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
