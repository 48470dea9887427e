// Package version selects which rule-set version governs an evaluation date.
package version

import (
	"time"

	"benefind/internal/eligibility/models"
)

// SelectEffective picks the version in force on date: effectiveDate on or
// before the date, end date absent or on/after it, ties broken by the latest
// effectiveDate. Returns nil when no version qualifies.
//
// Status is deliberately not consulted here: selection picks the candidate,
// the caller decides whether a retired one is trustworthy.
func SelectEffective(versions []*models.RuleSetVersion, date time.Time) *models.RuleSetVersion {
	var best *models.RuleSetVersion
	for _, v := range versions {
		if v == nil || !covers(v, date) {
			continue
		}
		if best == nil || v.EffectiveDate.After(best.EffectiveDate) {
			best = v
		}
	}
	return best
}

// IsEffectiveForDate reports whether a version both covers the date and is
// active.
func IsEffectiveForDate(v *models.RuleSetVersion, date time.Time) bool {
	return v != nil && v.Status == models.RuleSetStatusActive && covers(v, date)
}

func covers(v *models.RuleSetVersion, date time.Time) bool {
	if v.EffectiveDate.After(date) {
		return false
	}
	return v.EndDate == nil || !v.EndDate.Before(date)
}
