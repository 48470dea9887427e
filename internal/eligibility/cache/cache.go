// Package cache holds the jurisdiction-scoped rule cache. Entries are keyed
// by (jurisdiction, program id) and replaced atomically, so concurrent
// readers observe either the old rules or the new ones, never a partial
// write. Invalidation is explicit; nothing expires on its own in the memory
// implementation.
package cache

import (
	"context"

	"benefind/internal/eligibility/models"
	"benefind/pkg/domain"
)

// RuleCache is the contract shared by the in-memory cache and the redis cache
// used for multi-instance deployments.
type RuleCache interface {
	// Get returns the cached rules for one program in a jurisdiction. The
	// second return reports whether the entry was present.
	Get(ctx context.Context, jurisdiction domain.JurisdictionCode, programID domain.ProgramID) ([]*models.EligibilityRule, bool, error)

	// GetByJurisdiction returns every cached rule for a jurisdiction, flattened
	// across programs. An empty slice with ok=false means nothing is cached.
	GetByJurisdiction(ctx context.Context, jurisdiction domain.JurisdictionCode) ([]*models.EligibilityRule, bool, error)

	// Put stores the rules for one (jurisdiction, program) entry, replacing any
	// previous value.
	Put(ctx context.Context, jurisdiction domain.JurisdictionCode, programID domain.ProgramID, rules []*models.EligibilityRule) error

	// Invalidate removes one (jurisdiction, program) entry.
	Invalidate(ctx context.Context, jurisdiction domain.JurisdictionCode, programID domain.ProgramID) error

	// InvalidateProgram removes a program's entries across every jurisdiction.
	InvalidateProgram(ctx context.Context, programID domain.ProgramID) error

	// InvalidateJurisdiction removes every entry for a jurisdiction.
	InvalidateJurisdiction(ctx context.Context, jurisdiction domain.JurisdictionCode) error

	// InvalidateAll empties the cache.
	InvalidateAll(ctx context.Context) error

	// Refresh atomically replaces a jurisdiction's entries with the given
	// rules, grouped by program id. Rules for other jurisdictions are
	// untouched.
	Refresh(ctx context.Context, jurisdiction domain.JurisdictionCode, rules []*models.EligibilityRule) error
}

// groupByProgram buckets rules by their program id, preserving list order
// within each bucket.
func groupByProgram(rules []*models.EligibilityRule) map[domain.ProgramID][]*models.EligibilityRule {
	grouped := make(map[domain.ProgramID][]*models.EligibilityRule)
	for _, r := range rules {
		grouped[r.ProgramID] = append(grouped[r.ProgramID], r)
	}
	return grouped
}
