package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"benefind/internal/eligibility/models"
)

func TestScore(t *testing.T) {
	answered := map[string]any{"income": 42000.0, "notes": nil}
	unanswered := map[string]any{"income": nil, "isResident": nil}

	tests := []struct {
		name    string
		answers map[string]any
		matched bool
		want    int
	}{
		{"matched with answers", answered, true, 100},
		{"matched without answers", unanswered, true, 50},
		{"matched with empty map", nil, true, 50},
		{"unmatched with answers", answered, false, 50},
		{"unmatched without answers", unanswered, false, 25},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Score(tc.answers, tc.matched))
		})
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		score int
		want  models.ConfidenceLevel
	}{
		{100, models.ConfidenceLikely},
		{85, models.ConfidenceLikely},
		{84, models.ConfidencePossibly},
		{60, models.ConfidencePossibly},
		{59, models.ConfidenceUnlikely},
		{0, models.ConfidenceUnlikely},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, LevelFor(tc.score), "score %d", tc.score)
	}
}

func TestOverall(t *testing.T) {
	answers := map[string]any{"income": 42000.0}

	t.Run("takes the maximum match confidence", func(t *testing.T) {
		matches := []models.ProgramMatch{
			{ProgramCode: "SNAP", Confidence: 72},
			{ProgramCode: "MEDICAID_MAGI", Confidence: 100},
			{ProgramCode: "LIHEAP", Confidence: 85},
		}
		score, level := Overall(matches, answers)
		assert.Equal(t, 100, score)
		assert.Equal(t, models.ConfidenceLikely, level)
	})

	t.Run("falls back to the unmatched score when nothing matched", func(t *testing.T) {
		score, level := Overall(nil, answers)
		assert.Equal(t, 50, score)
		assert.Equal(t, models.ConfidenceUnlikely, level)
	})
}

func TestStatusFor(t *testing.T) {
	match := []models.ProgramMatch{{ProgramCode: "SNAP", Confidence: 100}}

	tests := []struct {
		name       string
		matches    []models.ProgramMatch
		level      models.ConfidenceLevel
		hasMissing bool
		want       models.EligibilityStatus
	}{
		{"likely match", match, models.ConfidenceLikely, false, models.StatusLikelyEligible},
		{"possible match", match, models.ConfidencePossibly, false, models.StatusPossiblyEligible},
		{"weak match", match, models.ConfidenceUnlikely, false, models.StatusUnlikelyEligible},
		{"no match with missing answers", nil, models.ConfidenceUnlikely, true, models.StatusUndetermined},
		{"no match fully answered", nil, models.ConfidenceUnlikely, false, models.StatusUnlikelyEligible},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusFor(tc.matches, tc.level, tc.hasMissing))
		})
	}
}
