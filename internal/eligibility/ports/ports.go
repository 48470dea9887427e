// Package ports defines shared interfaces for the eligibility module.
// Interfaces are placed here when consumed by multiple services to avoid duplication.
package ports

import (
	"context"
	"time"

	"benefind/internal/eligibility/models"
	"benefind/pkg/domain"
)

// RuleRepository supplies eligibility rules from the catalogue.
type RuleRepository interface {
	// ActiveRules returns the rules of the jurisdiction's active rule-set
	// versions, each joined with its program definition.
	ActiveRules(ctx context.Context, jurisdiction domain.JurisdictionCode) ([]*models.EligibilityRule, error)

	// RulesForVersion returns the rules belonging to one rule-set version.
	RulesForVersion(ctx context.Context, versionID domain.RuleSetVersionID) ([]*models.EligibilityRule, error)
}

// RuleSetRepository supplies rule-set versions and their effective windows.
type RuleSetRepository interface {
	// ActiveVersion returns the active version effective for the jurisdiction
	// on the given date, or sentinel.ErrNotFound when none covers it.
	ActiveVersion(ctx context.Context, jurisdiction domain.JurisdictionCode, date time.Time) (*models.RuleSetVersion, error)

	// VersionByID returns one version by identifier.
	VersionByID(ctx context.Context, id domain.RuleSetVersionID) (*models.RuleSetVersion, error)

	// ListVersions returns every version recorded for a jurisdiction.
	ListVersions(ctx context.Context, jurisdiction domain.JurisdictionCode) ([]*models.RuleSetVersion, error)
}
