package service

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/medmatch-server/internal/domain"
	"github.com/medmatch-server/internal/taxonomy"
)

// SignalExtractor normalizes an input payload (free text or nested
// structure) into a flat set of signal terms, detected conditions, and
// abnormal-parameter mentions.
type SignalExtractor struct {
	logger   *logrus.Logger
	taxonomy *taxonomy.Store
}

// NewSignalExtractor creates a new signal extractor.
func NewSignalExtractor(logger *logrus.Logger, store *taxonomy.Store) *SignalExtractor {
	return &SignalExtractor{
		logger:   logger,
		taxonomy: store,
	}
}

// Lexical pattern rules applied to free text, in order. Multi-group
// matches are joined with a single space into one term.
var textPatterns = []*regexp.Regexp{
	// Blood and hematology terminology
	regexp.MustCompile(`\b(blood|hematology|hematological|hemoglobin|mchc|mcv|mch|rbc|wbc|platelet|lymphocyte|monocyte|neutrophil|eosinophil|basophil)\b`),
	regexp.MustCompile(`\b(complete blood count|cbc|blood count|blood test|blood analysis)\b`),
	regexp.MustCompile(`\b(anemia|leukemia|lymphoma|thrombocytopenia|leukopenia|neutropenia)\b`),

	// General disease terms
	regexp.MustCompile(`\b(diabetes|hypertension|cancer|infection|pneumonia|asthma)\b`),
	regexp.MustCompile(`\b(high|low|elevated|decreased|abnormal|normal|within range)\s+(\w+)`),
	regexp.MustCompile(`\b(heart|lung|kidney|liver|brain)\s+(\w+)`),
	regexp.MustCompile(`\b(\w+)\s+(deficiency|disorder|disease|syndrome)\b`),

	// Lab parameters and cell types
	regexp.MustCompile(`\b(mchc|mcv|mch|rbc|wbc|hgb|hct|rdw|mpv|pct|pdw)\b`),
	regexp.MustCompile(`\b(lymphocyte|monocyte|neutrophil|eosinophil|basophil|band|segmented)\b`),
}

// Phrase lists for the free-text condition decision list. All checks
// are independent: several conditions may fire from one text.
var (
	hematologyGateTerms = []string{"hematology", "blood count", "cbc", "complete blood count", "blood test", "blood analysis"}
	highMCHCTerms       = []string{"high mchc", "elevated mchc", "mchc high", "mchc elevated"}
	lowLymphocyteTerms  = []string{"low lymphocyte", "decreased lymphocyte", "lymphocyte low", "lymphocyte decreased"}
	lowMonocyteTerms    = []string{"low monocyte", "decreased monocyte", "monocyte low", "monocyte decreased"}
	anemiaTerms         = []string{"anemia", "low hemoglobin", "hemoglobin low"}
	leukopeniaTerms     = []string{"leukopenia", "low white blood cells", "white blood cells low"}
	bloodCellTypeTerms  = []string{"mchc", "lymphocyte", "monocyte", "hemoglobin", "platelet", "rbc", "wbc"}
	diabetesTerms       = []string{"diabetes", "glucose", "blood sugar"}
	hypertensionTerms   = []string{"hypertension", "high blood pressure"}
	infectionTerms      = []string{"infection", "bacterial", "viral"}
)

// Extract derives the normalized signal set from a payload. Extraction
// never fails: unexpected leaf types are coerced to strings or skipped.
func (e *SignalExtractor) Extract(payload *domain.Payload) *domain.ExtractionResult {
	result := domain.NewExtractionResult()
	if payload == nil {
		return result
	}

	if payload.Kind == domain.PayloadText {
		e.extractFromText(payload.Text, result)
	} else {
		e.extractFromStructure(payload, result)
	}

	result.Keywords = dedupe(result.Keywords)
	result.Conditions = dedupe(result.Conditions)

	e.logger.WithFields(logrus.Fields{
		"keywords":   len(result.Keywords),
		"conditions": len(result.Conditions),
		"parameters": len(result.AbnormalParameters),
	}).Debug("Completed signal extraction")

	return result
}

// extractFromStructure walks every key/value pair and every sequence
// element. Each key rule is an independent check, and recursion always
// continues into the value so conditions nested arbitrarily deep are
// still found.
func (e *SignalExtractor) extractFromStructure(p *domain.Payload, result *domain.ExtractionResult) {
	switch p.Kind {
	case domain.PayloadMapping:
		for _, entry := range p.Mapping {
			key := strings.ToLower(entry.Key)
			value := entry.Value

			if strings.Contains(key, "patient") || strings.Contains(key, "name") {
				e.mergePatientInfo(entry.Key, value, result)
			}

			if containsAny(key, "disease", "condition", "diagnosis", "predicted") {
				e.recordCondition(value, result)
			}

			if (strings.Contains(key, "abnormal") || strings.Contains(key, "parameters")) && value.Kind == domain.PayloadSequence {
				for _, item := range value.Sequence {
					result.AbnormalParameters = append(result.AbnormalParameters, parameterMention(item))
				}
			}

			if containsAny(key, "symptom", "keyword", "reason") {
				if s, ok := value.ScalarString(); ok {
					result.Keywords = append(result.Keywords, e.matchKeywordUnion(s)...)
				}
			}

			e.extractFromStructure(value, result)
		}
	case domain.PayloadSequence:
		for _, item := range p.Sequence {
			e.extractFromStructure(item, result)
		}
	}
}

// mergePatientInfo folds a patient/name value into the patient-info
// mapping: mapping values merge every entry (nested entries flattened
// to their string form), scalar values are stored under the original
// key.
func (e *SignalExtractor) mergePatientInfo(key string, value *domain.Payload, result *domain.ExtractionResult) {
	switch value.Kind {
	case domain.PayloadMapping:
		for _, sub := range value.Mapping {
			result.PatientInfo[sub.Key] = sub.Value.FlatString()
		}
	case domain.PayloadScalar, domain.PayloadText:
		result.PatientInfo[key] = value.FlatString()
	}
}

// recordCondition records a condition name from a scalar value, or from
// a mapping's "most_probable" entry.
func (e *SignalExtractor) recordCondition(value *domain.Payload, result *domain.ExtractionResult) {
	if s, ok := value.ScalarString(); ok {
		result.Conditions = append(result.Conditions, s)
		return
	}
	if value.Kind == domain.PayloadMapping {
		if probable, ok := value.Lookup("most_probable"); ok {
			if s, ok := probable.ScalarString(); ok {
				result.Conditions = append(result.Conditions, s)
			}
		}
	}
}

// extractFromText lowercases the text, applies the lexical pattern
// rules and the keyword union, then runs the condition decision list.
func (e *SignalExtractor) extractFromText(text string, result *domain.ExtractionResult) {
	lower := strings.ToLower(text)
	result.NormalizedText = lower

	for _, pattern := range textPatterns {
		for _, match := range pattern.FindAllStringSubmatch(lower, -1) {
			if len(match) == 2 {
				result.Keywords = append(result.Keywords, match[1])
			} else {
				result.Keywords = append(result.Keywords, strings.Join(match[1:], " "))
			}
		}
	}
	result.Keywords = append(result.Keywords, e.matchKeywordUnion(lower)...)

	// Hematology-context gate unlocks the blood-panel sub-checks.
	if containsAnyOf(lower, hematologyGateTerms) {
		if containsAnyOf(lower, highMCHCTerms) {
			result.Conditions = append(result.Conditions, "High MCHC")
		}
		if containsAnyOf(lower, lowLymphocyteTerms) {
			result.Conditions = append(result.Conditions, "Low Lymphocyte Count")
		}
		if containsAnyOf(lower, lowMonocyteTerms) {
			result.Conditions = append(result.Conditions, "Low Monocyte Count")
		}
		if containsAnyOf(lower, anemiaTerms) {
			result.Conditions = append(result.Conditions, "Anemia")
		}
		if containsAnyOf(lower, leukopeniaTerms) {
			result.Conditions = append(result.Conditions, "Leukopenia")
		}
		if containsAnyOf(lower, bloodCellTypeTerms) {
			result.Conditions = append(result.Conditions, "Blood Test Abnormalities")
		}
	}

	if containsAnyOf(lower, diabetesTerms) {
		result.Conditions = append(result.Conditions, "Diabetes")
	}
	if containsAnyOf(lower, hypertensionTerms) {
		result.Conditions = append(result.Conditions, "Hypertension")
	}
	if containsAnyOf(lower, infectionTerms) {
		result.Conditions = append(result.Conditions, "Infection")
	}
}

// matchKeywordUnion returns the subset of the taxonomy keyword union
// whose terms occur as substrings of the lowercased text. Substring
// containment is intentional, not token equality.
func (e *SignalExtractor) matchKeywordUnion(text string) []string {
	lower := strings.ToLower(text)
	var matched []string
	for _, kw := range e.taxonomy.KeywordUnion() {
		if strings.Contains(lower, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}

// parameterMention converts one abnormal-parameter list element into a
// mention, accepting both plain strings and {parameter, value} objects.
func parameterMention(p *domain.Payload) domain.AbnormalParameter {
	if s, ok := p.ScalarString(); ok {
		return domain.AbnormalParameter{Raw: s}
	}
	mention := domain.AbnormalParameter{}
	if p.Kind == domain.PayloadMapping {
		if v, ok := p.Lookup("parameter"); ok {
			mention.Parameter, _ = v.ScalarString()
		}
		if v, ok := p.Lookup("value"); ok {
			mention.Value, _ = v.ScalarString()
		}
	}
	return mention
}

func containsAny(s string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

func containsAnyOf(s string, terms []string) bool {
	return containsAny(s, terms...)
}

// dedupe removes duplicates preserving first-seen order.
func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
