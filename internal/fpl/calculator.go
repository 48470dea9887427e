package fpl

import (
	"context"
	"errors"
	"math"

	"benefind/internal/eligibility/models"
	"benefind/pkg/domain"
	dErrors "benefind/pkg/domain-errors"
	"benefind/pkg/platform/sentinel"
)

const maxStoredHouseholdSize = 8

// CalculateThreshold converts a poverty-level amount into a program income
// threshold: fplCents scaled by a percentage multiplier (e.g. 138 for a 138%
// FPL limit), rounded half away from zero. The multiplier must be in
// [0, 1000] and the amount non-negative; a threshold computed from bad inputs
// would be a correctness hazard, so both are rejected outright.
func CalculateThreshold(fplCents int64, percentage float64) (int64, error) {
	if fplCents < 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "poverty level amount must not be negative")
	}
	if percentage < 0 || percentage > 1000 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "percentage multiplier must be between 0 and 1000")
	}
	return int64(math.Round(float64(fplCents) * percentage / 100)), nil
}

// Calculator resolves poverty-level amounts through a Repository.
type Calculator struct {
	repo Repository
}

// NewCalculator constructs a Calculator over the given repository.
func NewCalculator(repo Repository) *Calculator {
	return &Calculator{repo: repo}
}

// BaselineFPL returns the federal baseline amount for a stored household size
// (1-8).
func (c *Calculator) BaselineFPL(ctx context.Context, year, householdSize int) (int64, error) {
	return c.storedFPL(ctx, year, householdSize, nil)
}

// StateFPL returns the jurisdiction-adjusted amount for a stored household
// size (1-8). There is no fallback to the federal baseline: a caller wanting
// one must ask for it explicitly.
func (c *Calculator) StateFPL(ctx context.Context, year, householdSize int, jurisdiction domain.JurisdictionCode) (int64, error) {
	return c.storedFPL(ctx, year, householdSize, &jurisdiction)
}

func (c *Calculator) storedFPL(ctx context.Context, year, householdSize int, jurisdiction *domain.JurisdictionCode) (int64, error) {
	if householdSize < 1 || householdSize > maxStoredHouseholdSize {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "household size must be between 1 and 8 for a direct lookup")
	}
	row, err := c.repo.Find(ctx, year, householdSize, jurisdiction)
	if err != nil {
		return 0, c.translateNotFound(err, year, householdSize, jurisdiction)
	}
	return row.AnnualCents, nil
}

// HouseholdFPL resolves the amount for any household size. Sizes 1-8 resolve
// by direct lookup; larger households extrapolate linearly from the stored
// table: FPL(n) = FPL(8) + (n-8) * (FPL(8) - FPL(7)).
func (c *Calculator) HouseholdFPL(ctx context.Context, year, householdSize int, jurisdiction *domain.JurisdictionCode) (int64, error) {
	if householdSize < 1 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "household size must be at least 1")
	}
	if householdSize <= maxStoredHouseholdSize {
		return c.storedFPL(ctx, year, householdSize, jurisdiction)
	}

	seven, err := c.storedFPL(ctx, year, maxStoredHouseholdSize-1, jurisdiction)
	if err != nil {
		return 0, err
	}
	eight, err := c.storedFPL(ctx, year, maxStoredHouseholdSize, jurisdiction)
	if err != nil {
		return 0, err
	}
	perPerson := eight - seven
	return eight + int64(householdSize-maxStoredHouseholdSize)*perPerson, nil
}

// ResolveThreshold is the combined path: resolve the household's poverty
// level, jurisdiction-adjusted when a jurisdiction is supplied, and scale it
// by the percentage multiplier.
func (c *Calculator) ResolveThreshold(ctx context.Context, year, householdSize int, percentage float64, jurisdiction *domain.JurisdictionCode) (int64, error) {
	amount, err := c.HouseholdFPL(ctx, year, householdSize, jurisdiction)
	if err != nil {
		return 0, err
	}
	return CalculateThreshold(amount, percentage)
}

func (c *Calculator) translateNotFound(err error, year, householdSize int, jurisdiction *domain.JurisdictionCode) error {
	if !errors.Is(err, sentinel.ErrNotFound) {
		return err
	}
	notFound := &models.FPLNotFoundError{Year: year, HouseholdSize: householdSize}
	if jurisdiction != nil {
		notFound.Jurisdiction = *jurisdiction
	}
	return notFound
}
