package rules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"benefind/internal/eligibility/models"
	"benefind/internal/eligibility/ports"
	"benefind/pkg/domain"
	"benefind/pkg/platform/sentinel"
)

// PostgresStore persists the rule catalogue in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a PostgreSQL-backed rule catalogue.
func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

var (
	_ ports.RuleRepository    = (*PostgresStore)(nil)
	_ ports.RuleSetRepository = (*PostgresStore)(nil)
)

const ruleColumns = `
	r.id, r.version_id, r.program_id, r.priority, r.logic,
	p.id, p.jurisdiction, p.code, p.name, p.category, p.active`

func (s *PostgresStore) ActiveRules(ctx context.Context, jurisdiction domain.JurisdictionCode) ([]*models.EligibilityRule, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM eligibility_rules r
		JOIN rule_set_versions v ON v.id = r.version_id
		JOIN programs p ON p.id = r.program_id
		WHERE v.jurisdiction = $1 AND v.status = 'active'
		ORDER BY v.effective_date, r.priority, r.id`, ruleColumns)

	rows, err := s.pool.Query(ctx, query, jurisdiction.String())
	if err != nil {
		return nil, fmt.Errorf("query active rules: %w", err)
	}
	defer rows.Close()
	return scanRules(rows)
}

func (s *PostgresStore) RulesForVersion(ctx context.Context, versionID domain.RuleSetVersionID) ([]*models.EligibilityRule, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM eligibility_rules r
		JOIN programs p ON p.id = r.program_id
		WHERE r.version_id = $1
		ORDER BY r.priority, r.id`, ruleColumns)

	rows, err := s.pool.Query(ctx, query, uuid.UUID(versionID))
	if err != nil {
		return nil, fmt.Errorf("query rules for version: %w", err)
	}
	defer rows.Close()
	return scanRules(rows)
}

func (s *PostgresStore) ActiveVersion(ctx context.Context, jurisdiction domain.JurisdictionCode, date time.Time) (*models.RuleSetVersion, error) {
	const query = `
		SELECT id, jurisdiction, version, effective_date, end_date, status
		FROM rule_set_versions
		WHERE jurisdiction = $1
		  AND status = 'active'
		  AND effective_date <= $2
		  AND (end_date IS NULL OR end_date >= $2)
		ORDER BY effective_date DESC
		LIMIT 1`

	v, err := scanVersion(s.pool.QueryRow(ctx, query, jurisdiction.String(), date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("query active version: %w", err)
	}
	return s.withRules(ctx, v)
}

func (s *PostgresStore) VersionByID(ctx context.Context, id domain.RuleSetVersionID) (*models.RuleSetVersion, error) {
	const query = `
		SELECT id, jurisdiction, version, effective_date, end_date, status
		FROM rule_set_versions
		WHERE id = $1`

	v, err := scanVersion(s.pool.QueryRow(ctx, query, uuid.UUID(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("query version: %w", err)
	}
	return s.withRules(ctx, v)
}

// ListVersions returns a jurisdiction's versions ordered by effective date.
// Rules are not loaded; use VersionByID for one version with its rules.
func (s *PostgresStore) ListVersions(ctx context.Context, jurisdiction domain.JurisdictionCode) ([]*models.RuleSetVersion, error) {
	const query = `
		SELECT id, jurisdiction, version, effective_date, end_date, status
		FROM rule_set_versions
		WHERE jurisdiction = $1
		ORDER BY effective_date`

	rows, err := s.pool.Query(ctx, query, jurisdiction.String())
	if err != nil {
		return nil, fmt.Errorf("query versions: %w", err)
	}
	defer rows.Close()

	var out []*models.RuleSetVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query versions: %w", err)
	}
	return out, nil
}

// SaveVersion writes a version and its rules (with program definitions),
// used by seeding and integration tests.
func (s *PostgresStore) SaveVersion(ctx context.Context, v *models.RuleSetVersion) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save version: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO rule_set_versions (id, jurisdiction, version, effective_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			jurisdiction = EXCLUDED.jurisdiction, version = EXCLUDED.version,
			effective_date = EXCLUDED.effective_date, end_date = EXCLUDED.end_date,
			status = EXCLUDED.status`,
		uuid.UUID(v.ID), v.Jurisdiction.String(), v.Version, v.EffectiveDate, v.EndDate, string(v.Status))
	if err != nil {
		return fmt.Errorf("save version: %w", err)
	}

	for _, r := range v.Rules {
		if r.Program != nil {
			_, err = tx.Exec(ctx, `
				INSERT INTO programs (id, jurisdiction, code, name, category, active)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (id) DO UPDATE SET
					jurisdiction = EXCLUDED.jurisdiction, code = EXCLUDED.code,
					name = EXCLUDED.name, category = EXCLUDED.category, active = EXCLUDED.active`,
				uuid.UUID(r.Program.ID), r.Program.Jurisdiction.String(), r.Program.Code,
				r.Program.Name, string(r.Program.Category), r.Program.Active)
			if err != nil {
				return fmt.Errorf("save program: %w", err)
			}
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO eligibility_rules (id, version_id, program_id, priority, logic)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET
				version_id = EXCLUDED.version_id, program_id = EXCLUDED.program_id,
				priority = EXCLUDED.priority, logic = EXCLUDED.logic`,
			uuid.UUID(r.ID), uuid.UUID(r.VersionID), uuid.UUID(r.ProgramID), r.Priority, []byte(r.Logic))
		if err != nil {
			return fmt.Errorf("save rule: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) withRules(ctx context.Context, v *models.RuleSetVersion) (*models.RuleSetVersion, error) {
	rules, err := s.RulesForVersion(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	v.Rules = rules
	return v, nil
}

func scanVersion(row pgx.Row) (*models.RuleSetVersion, error) {
	var (
		v      models.RuleSetVersion
		id     uuid.UUID
		code   string
		status string
	)
	if err := row.Scan(&id, &code, &v.Version, &v.EffectiveDate, &v.EndDate, &status); err != nil {
		return nil, err
	}
	v.ID = domain.RuleSetVersionID(id)
	v.Jurisdiction = domain.JurisdictionCode(code)
	v.Status = models.RuleSetStatus(status)
	return &v, nil
}

func scanRules(rows pgx.Rows) ([]*models.EligibilityRule, error) {
	var out []*models.EligibilityRule
	for rows.Next() {
		var (
			rule                         models.EligibilityRule
			ruleID, versionID, programID uuid.UUID
			logic                        []byte
			program                      models.ProgramDefinition
			progID                       uuid.UUID
			progJurisdiction             string
			progCategory                 string
		)
		err := rows.Scan(
			&ruleID, &versionID, &programID, &rule.Priority, &logic,
			&progID, &progJurisdiction, &program.Code, &program.Name, &progCategory, &program.Active)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rule.ID = domain.RuleID(ruleID)
		rule.VersionID = domain.RuleSetVersionID(versionID)
		rule.ProgramID = domain.ProgramID(programID)
		rule.Logic = json.RawMessage(logic)
		program.ID = domain.ProgramID(progID)
		program.Jurisdiction = domain.JurisdictionCode(progJurisdiction)
		program.Category = models.ProgramCategory(progCategory)
		rule.Program = &program
		out = append(out, &rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan rules: %w", err)
	}
	return out, nil
}
