package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medmatch-server/internal/domain"
)

func TestNewStore_Specialties(t *testing.T) {
	store := NewStore()

	specialties := store.Specialties()
	require.Len(t, specialties, 19)

	// Declaration order is the tiebreaker for equal scores and must be
	// stable across constructions.
	assert.Equal(t, "Hematology", specialties[0].Name)
	assert.Equal(t, "Internal Medicine", specialties[1].Name)
	assert.Equal(t, "Cardiology", specialties[2].Name)
	assert.Equal(t, "Emergency Medicine", specialties[18].Name)

	for _, sp := range specialties {
		assert.NotEmpty(t, sp.Keywords, "specialty %s has no keywords", sp.Name)
	}
}

func TestNewStore_SpecialtyRank(t *testing.T) {
	store := NewStore()

	tests := []struct {
		name string
		want int
	}{
		{"Hematology", 0},
		{"Cardiology", 2},
		{"Emergency Medicine", 18},
		{"Astrology", 19},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := store.SpecialtyRank(tt.name); got != tt.want {
				t.Errorf("SpecialtyRank(%q) = %d, want %d", tt.name, got, tt.want)
			}
		})
	}
}

func TestNewStore_Conditions(t *testing.T) {
	store := NewStore()

	conditions := store.Conditions()
	require.Len(t, conditions, 10)

	byName := make(map[string]domain.Condition, len(conditions))
	for _, c := range conditions {
		byName[c.Name] = c
	}

	blood, ok := byName["Blood Disorders"]
	require.True(t, ok)
	assert.Equal(t, domain.UrgencyHigh, blood.Urgency)
	assert.Equal(t, []string{"Hematology"}, blood.PrimarySpecialties)
	assert.Contains(t, blood.Keywords, "anemia")

	diabetes, ok := byName["Diabetes"]
	require.True(t, ok)
	assert.Equal(t, domain.UrgencyMedium, diabetes.Urgency)
}

func TestNewStore_KeywordUnion(t *testing.T) {
	store := NewStore()

	union := store.KeywordUnion()
	require.NotEmpty(t, union)

	seen := make(map[string]int)
	for _, kw := range union {
		seen[kw]++
	}

	// Deduplicated: "blood" appears in several specialty and condition
	// keyword sets but only once in the union.
	assert.Equal(t, 1, seen["blood"])
	assert.Equal(t, 1, seen["arthritis"])
	assert.Contains(t, seen, "complete blood count")
	assert.Contains(t, seen, "blood sugar")

	// Longest-first ordering.
	for i := 1; i < len(union); i++ {
		assert.GreaterOrEqual(t, len(union[i-1]), len(union[i]))
	}
}

func TestNewStore_ParameterSpecialties(t *testing.T) {
	store := NewStore()

	params := store.ParameterSpecialties()
	require.Len(t, params, 9)
	assert.Equal(t, []string{"Hematology", "Cardiology", "Gastroenterology"}, params["hemoglobin"])
	assert.Equal(t, []string{"Endocrinology"}, params["thyroid"])
}
