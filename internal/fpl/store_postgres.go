package fpl

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"benefind/internal/eligibility/models"
	"benefind/pkg/domain"
	"benefind/pkg/platform/sentinel"
)

// PostgresStore persists the poverty-level table in PostgreSQL. Baseline rows
// have a NULL jurisdiction; state-adjusted rows carry the code and the
// statutory multiplier that produced them.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a PostgreSQL-backed poverty-level repository.
func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

var _ Repository = (*PostgresStore)(nil)

func (s *PostgresStore) Find(ctx context.Context, year, householdSize int, jurisdiction *domain.JurisdictionCode) (*models.FederalPovertyLevel, error) {
	const query = `
		SELECT year, household_size, annual_cents, jurisdiction, multiplier
		FROM federal_poverty_levels
		WHERE year = $1
		  AND household_size = $2
		  AND jurisdiction IS NOT DISTINCT FROM $3`

	var code *string
	if jurisdiction != nil {
		v := jurisdiction.String()
		code = &v
	}

	row, err := scanRow(s.pool.QueryRow(ctx, query, year, householdSize, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find poverty level: %w", err)
	}
	return row, nil
}

func (s *PostgresStore) ListYear(ctx context.Context, year int) ([]*models.FederalPovertyLevel, error) {
	const query = `
		SELECT year, household_size, annual_cents, jurisdiction, multiplier
		FROM federal_poverty_levels
		WHERE year = $1
		ORDER BY household_size, jurisdiction NULLS FIRST`

	rows, err := s.pool.Query(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("list poverty levels: %w", err)
	}
	defer rows.Close()

	var out []*models.FederalPovertyLevel
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan poverty level: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list poverty levels: %w", err)
	}
	return out, nil
}

// Upsert writes one row, used by seeding and integration tests.
func (s *PostgresStore) Upsert(ctx context.Context, row *models.FederalPovertyLevel) error {
	const query = `
		INSERT INTO federal_poverty_levels (year, household_size, annual_cents, jurisdiction, multiplier)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (year, household_size, jurisdiction)
		DO UPDATE SET annual_cents = EXCLUDED.annual_cents, multiplier = EXCLUDED.multiplier`

	var code *string
	if row.Jurisdiction != nil {
		v := row.Jurisdiction.String()
		code = &v
	}
	if _, err := s.pool.Exec(ctx, query, row.Year, row.HouseholdSize, row.AnnualCents, code, row.Multiplier); err != nil {
		return fmt.Errorf("upsert poverty level: %w", err)
	}
	return nil
}

func scanRow(row pgx.Row) (*models.FederalPovertyLevel, error) {
	var (
		out  models.FederalPovertyLevel
		code *string
	)
	if err := row.Scan(&out.Year, &out.HouseholdSize, &out.AnnualCents, &code, &out.Multiplier); err != nil {
		return nil, err
	}
	if code != nil {
		j := domain.JurisdictionCode(*code)
		out.Jurisdiction = &j
	}
	return &out, nil
}
