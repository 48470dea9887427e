// Package scoring holds the confidence policy for eligibility screening.
// Screening answers are self-reported and unverified, so a match is never a
// certainty; the score states how far the engine trusts its own answer.
// Everything here is pure.
package scoring

import (
	"math"

	"benefind/internal/eligibility/models"
)

const (
	likelyFloor   = 85
	possiblyFloor = 60
)

// Score computes a confidence score in [0,100] for one program outcome.
// Completeness is 1.0 when at least one answer is non-null, 0.5 otherwise;
// certainty is 1.0 for a matched program, 0.5 for an unmatched one. The score
// is their product scaled to 100 and rounded half away from zero.
func Score(answers map[string]any, matched bool) int {
	completeness := 0.5
	for _, v := range answers {
		if v != nil {
			completeness = 1.0
			break
		}
	}
	certainty := 0.5
	if matched {
		certainty = 1.0
	}
	s := int(math.Round(100 * completeness * certainty))
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// LevelFor maps a score to its confidence label: >=85 likely, >=60 possibly,
// below that unlikely.
func LevelFor(score int) models.ConfidenceLevel {
	switch {
	case score >= likelyFloor:
		return models.ConfidenceLikely
	case score >= possiblyFloor:
		return models.ConfidencePossibly
	default:
		return models.ConfidenceUnlikely
	}
}

// Overall derives the evaluation-wide confidence from the per-program matches:
// the maximum match confidence, or the unmatched score over the same answers
// when nothing matched.
func Overall(matches []models.ProgramMatch, answers map[string]any) (int, models.ConfidenceLevel) {
	if len(matches) == 0 {
		s := Score(answers, false)
		return s, LevelFor(s)
	}
	best := matches[0].Confidence
	for _, m := range matches[1:] {
		if m.Confidence > best {
			best = m.Confidence
		}
	}
	return best, LevelFor(best)
}

// StatusFor converts the overall confidence into an eligibility status. With
// no matches the outcome is undetermined when any referenced criterion went
// unanswered (hasMissing), unlikely otherwise.
func StatusFor(matches []models.ProgramMatch, level models.ConfidenceLevel, hasMissing bool) models.EligibilityStatus {
	if len(matches) == 0 {
		if hasMissing {
			return models.StatusUndetermined
		}
		return models.StatusUnlikelyEligible
	}
	switch level {
	case models.ConfidenceLikely:
		return models.StatusLikelyEligible
	case models.ConfidencePossibly:
		return models.StatusPossiblyEligible
	default:
		return models.StatusUnlikelyEligible
	}
}
