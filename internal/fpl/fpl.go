// Package fpl resolves federal poverty level amounts and turns them into
// program income thresholds. Amounts are integer cents throughout; a missing
// table row is always an error, never a silently defaulted baseline.
package fpl

import (
	"context"

	"benefind/internal/eligibility/models"
	"benefind/pkg/domain"
)

// Repository supplies poverty-level rows. Implementations return
// sentinel.ErrNotFound for absent rows; translation into FPLNotFoundError
// happens in the calculator.
type Repository interface {
	// Find returns the row for (year, householdSize) scoped to a jurisdiction,
	// or the federal baseline when jurisdiction is nil. Sizes above 8 are never
	// stored.
	Find(ctx context.Context, year, householdSize int, jurisdiction *domain.JurisdictionCode) (*models.FederalPovertyLevel, error)

	// ListYear returns every row stored for a year, baseline and
	// state-adjusted alike.
	ListYear(ctx context.Context, year int) ([]*models.FederalPovertyLevel, error)
}
