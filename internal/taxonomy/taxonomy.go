// Package taxonomy holds the static medical reference data: specialty
// keyword sets, condition records, and blood-parameter mappings. The
// store is built once at startup and shared read-only across requests.
package taxonomy

import (
	"sort"

	"github.com/medmatch-server/internal/domain"
)

// Specialty pairs a specialty name with its reference keyword set.
// Declaration order is significant: it is the stable tiebreaker for
// equal specialty scores.
type Specialty struct {
	Name     string
	Keywords []string
}

// Store provides read-only access to the taxonomy. Construction is
// deterministic and side-effect-free; a malformed built-in table is a
// programming error, not a runtime failure.
type Store struct {
	specialties          []Specialty
	specialtyIndex       map[string]int
	conditions           []domain.Condition
	parameterSpecialties map[string][]string
	keywordUnion         []string
}

// NewStore builds the taxonomy store and its derived keyword union.
func NewStore() *Store {
	s := &Store{
		specialties:          specialtyTable(),
		conditions:           conditionTable(),
		parameterSpecialties: parameterTable(),
	}

	s.specialtyIndex = make(map[string]int, len(s.specialties))
	for i, sp := range s.specialties {
		s.specialtyIndex[sp.Name] = i
	}

	// Union of every specialty keyword and every condition trigger
	// keyword, deduplicated. Sorted longest-first so multi-word terms
	// win substring matching before their single-word components.
	seen := make(map[string]struct{})
	for _, sp := range s.specialties {
		for _, kw := range sp.Keywords {
			seen[kw] = struct{}{}
		}
	}
	for _, c := range s.conditions {
		for _, kw := range c.Keywords {
			seen[kw] = struct{}{}
		}
	}
	s.keywordUnion = make([]string, 0, len(seen))
	for kw := range seen {
		s.keywordUnion = append(s.keywordUnion, kw)
	}
	sort.Slice(s.keywordUnion, func(i, j int) bool {
		a, b := s.keywordUnion[i], s.keywordUnion[j]
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})

	return s
}

// Specialties returns the specialty table in declaration order.
func (s *Store) Specialties() []Specialty {
	return s.specialties
}

// SpecialtyRank returns the declaration index of a specialty name; names
// outside the table rank last.
func (s *Store) SpecialtyRank(name string) int {
	if i, ok := s.specialtyIndex[name]; ok {
		return i
	}
	return len(s.specialties)
}

// Conditions returns the ordered condition records.
func (s *Store) Conditions() []domain.Condition {
	return s.conditions
}

// ParameterSpecialties returns the blood-parameter → specialties table.
func (s *Store) ParameterSpecialties() map[string][]string {
	return s.parameterSpecialties
}

// KeywordUnion returns every known specialty and condition keyword,
// deduplicated, longest terms first.
func (s *Store) KeywordUnion() []string {
	return s.keywordUnion
}

func specialtyTable() []Specialty {
	return []Specialty{
		{"Hematology", []string{"blood", "anemia", "hemoglobin", "platelet", "leukemia", "lymphoma", "bleeding", "mchc", "mcv", "mch", "rbc", "wbc", "lymphocyte", "monocyte", "neutrophil", "eosinophil", "basophil", "complete blood count", "cbc", "hematology", "hematological"}},
		{"Internal Medicine", []string{"general", "internal medicine", "primary care", "family medicine", "general physician", "blood", "infection", "fever", "fatigue", "weakness"}},
		{"Cardiology", []string{"heart", "cardiovascular", "blood pressure", "chest pain", "cardiac", "ecg", "ekg", "cholesterol", "arrhythmia"}},
		{"Neurology", []string{"brain", "neurological", "seizure", "headache", "migraine", "stroke", "nervous system", "memory", "confusion"}},
		{"Pediatrics", []string{"child", "infant", "pediatric", "vaccination", "growth", "development"}},
		{"Orthopedics", []string{"bone", "joint", "fracture", "muscle", "skeletal", "arthritis", "spine", "ligament"}},
		{"Dermatology", []string{"skin", "rash", "acne", "dermatitis", "allergy", "eczema", "psoriasis", "mole"}},
		{"ENT", []string{"ear", "nose", "throat", "sinus", "hearing", "tonsils", "voice", "respiratory infection"}},
		{"Ophthalmology", []string{"eye", "vision", "sight", "retina", "glaucoma", "cataract", "visual"}},
		{"Psychiatry", []string{"mental", "depression", "anxiety", "stress", "psychiatric", "mood", "behavioral", "panic"}},
		{"Gastroenterology", []string{"stomach", "digestive", "liver", "intestine", "bowel", "gastric", "hepatic", "abdominal"}},
		{"Pulmonology", []string{"lung", "respiratory", "breathing", "asthma", "pneumonia", "cough", "chest", "pulmonary"}},
		{"Endocrinology", []string{"diabetes", "thyroid", "hormone", "endocrine", "insulin", "glucose", "metabolic"}},
		{"Rheumatology", []string{"arthritis", "joint pain", "autoimmune", "inflammatory", "lupus", "fibromyalgia"}},
		{"Oncology", []string{"cancer", "tumor", "malignant", "chemotherapy", "radiation", "oncology", "neoplasm"}},
		{"Urology", []string{"kidney", "bladder", "urinary", "prostate", "urological", "renal"}},
		{"Gynecology", []string{"gynecological", "menstrual", "reproductive", "ovarian", "uterine", "pregnancy"}},
		{"Infectious Disease", []string{"infection", "bacterial", "viral", "sepsis", "fever", "antibiotics"}},
		{"Emergency Medicine", []string{"emergency", "trauma", "acute", "critical", "urgent", "life-threatening"}},
	}
}

func conditionTable() []domain.Condition {
	return []domain.Condition{
		{
			Name:                 "Cardiovascular Disease",
			Keywords:             []string{"heart", "cardiac", "cardiovascular", "blood pressure", "chest pain"},
			PrimarySpecialties:   []string{"Cardiology"},
			SecondarySpecialties: []string{"ENT", "Pulmonology"},
			Urgency:              domain.UrgencyHigh,
		},
		{
			Name:                 "Respiratory Infection",
			Keywords:             []string{"respiratory", "lung", "breathing", "cough", "pneumonia"},
			PrimarySpecialties:   []string{"Pulmonology", "ENT"},
			SecondarySpecialties: []string{"Infectious Disease"},
			Urgency:              domain.UrgencyMedium,
		},
		{
			Name:                 "Diabetes",
			Keywords:             []string{"diabetes", "glucose", "insulin", "blood sugar"},
			PrimarySpecialties:   []string{"Endocrinology"},
			SecondarySpecialties: []string{"Cardiology", "Ophthalmology"},
			Urgency:              domain.UrgencyMedium,
		},
		{
			Name:                 "Mental Health",
			Keywords:             []string{"stress", "anxiety", "depression", "mental", "psychiatric"},
			PrimarySpecialties:   []string{"Psychiatry"},
			SecondarySpecialties: []string{"Neurology"},
			Urgency:              domain.UrgencyMedium,
		},
		{
			Name:                 "Gastrointestinal Issues",
			Keywords:             []string{"stomach", "digestive", "abdominal", "liver", "intestine"},
			PrimarySpecialties:   []string{"Gastroenterology"},
			SecondarySpecialties: []string{"Infectious Disease"},
			Urgency:              domain.UrgencyMedium,
		},
		{
			Name:                 "Blood Disorders",
			Keywords:             []string{"blood", "anemia", "hemoglobin", "platelet", "lymphocyte"},
			PrimarySpecialties:   []string{"Hematology"},
			SecondarySpecialties: []string{"Cardiology", "Gastroenterology"},
			Urgency:              domain.UrgencyHigh,
		},
		{
			Name:                 "Neurological Conditions",
			Keywords:             []string{"brain", "neurological", "seizure", "headache", "stroke"},
			PrimarySpecialties:   []string{"Neurology"},
			SecondarySpecialties: []string{"Psychiatry"},
			Urgency:              domain.UrgencyHigh,
		},
		{
			Name:                 "Infectious Diseases",
			Keywords:             []string{"infection", "bacterial", "viral", "fever", "sepsis"},
			PrimarySpecialties:   []string{"Infectious Disease", "ENT"},
			SecondarySpecialties: []string{"Pulmonology"},
			Urgency:              domain.UrgencyHigh,
		},
		{
			Name:                 "Autoimmune Disorders",
			Keywords:             []string{"autoimmune", "inflammatory", "arthritis", "lupus"},
			PrimarySpecialties:   []string{"Rheumatology"},
			SecondarySpecialties: []string{"Dermatology"},
			Urgency:              domain.UrgencyMedium,
		},
		{
			Name:                 "Cancer/Oncology",
			Keywords:             []string{"cancer", "tumor", "malignant", "oncology", "neoplasm"},
			PrimarySpecialties:   []string{"Oncology"},
			SecondarySpecialties: []string{"Surgery", "Radiology"},
			Urgency:              domain.UrgencyHigh,
		},
	}
}

func parameterTable() map[string][]string {
	return map[string][]string{
		"hemoglobin":        {"Hematology", "Cardiology", "Gastroenterology"},
		"white_blood_cells": {"Hematology", "Infectious Disease", "ENT"},
		"platelets":         {"Hematology", "Cardiology"},
		"glucose":           {"Endocrinology", "Cardiology"},
		"cholesterol":       {"Cardiology", "Endocrinology"},
		"liver_enzymes":     {"Gastroenterology", "Hepatology"},
		"kidney_function":   {"Nephrology", "Urology"},
		"thyroid":           {"Endocrinology"},
		"cardiac_markers":   {"Cardiology", "Emergency Medicine"},
	}
}
