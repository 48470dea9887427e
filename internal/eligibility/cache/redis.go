package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"benefind/internal/eligibility/models"
	"benefind/pkg/domain"
)

const ruleKeyPrefix = "rules:"

// Redis is the shared RuleCache for multi-instance deployments. Entries are
// JSON-encoded rule lists under "rules:{jurisdiction}:{programID}", expiring
// after the configured TTL so a missed invalidation heals on its own.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisOption configures a Redis cache instance.
type RedisOption func(*Redis)

// WithTTL overrides the default entry lifetime. Zero disables expiry.
func WithTTL(ttl time.Duration) RedisOption {
	return func(c *Redis) {
		c.ttl = ttl
	}
}

// NewRedis constructs a redis-backed rule cache. The client lifecycle is
// managed by the caller.
func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	c := &Redis{
		client: client,
		ttl:    time.Hour,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

var _ RuleCache = (*Redis)(nil)

// cachedRule is the wire form of a rule entry. IDs travel as strings; the
// program definition is denormalized so a cache hit never needs a join.
type cachedRule struct {
	ID        string          `json:"id"`
	VersionID string          `json:"version_id"`
	ProgramID string          `json:"program_id"`
	Priority  int             `json:"priority"`
	Logic     json.RawMessage `json:"logic"`
	Program   *cachedProgram  `json:"program,omitempty"`
}

type cachedProgram struct {
	ID           string `json:"id"`
	Jurisdiction string `json:"jurisdiction"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Active       bool   `json:"active"`
}

func ruleKey(jurisdiction domain.JurisdictionCode, programID domain.ProgramID) string {
	return fmt.Sprintf("%s%s:%s", ruleKeyPrefix, jurisdiction, programID)
}

func (c *Redis) Get(ctx context.Context, jurisdiction domain.JurisdictionCode, programID domain.ProgramID) ([]*models.EligibilityRule, bool, error) {
	raw, err := c.client.Get(ctx, ruleKey(jurisdiction, programID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	rules, err := decodeRules(raw)
	if err != nil {
		return nil, false, err
	}
	return rules, true, nil
}

func (c *Redis) GetByJurisdiction(ctx context.Context, jurisdiction domain.JurisdictionCode) ([]*models.EligibilityRule, bool, error) {
	keys, err := c.scanKeys(ctx, fmt.Sprintf("%s%s:*", ruleKeyPrefix, jurisdiction))
	if err != nil {
		return nil, false, err
	}
	if len(keys) == 0 {
		return nil, false, nil
	}
	var out []*models.EligibilityRule
	for _, key := range keys {
		raw, err := c.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			// Expired between SCAN and GET; skip.
			continue
		}
		if err != nil {
			return nil, false, fmt.Errorf("redis get: %w", err)
		}
		rules, err := decodeRules(raw)
		if err != nil {
			return nil, false, err
		}
		out = append(out, rules...)
	}
	return out, len(out) > 0, nil
}

func (c *Redis) Put(ctx context.Context, jurisdiction domain.JurisdictionCode, programID domain.ProgramID, rules []*models.EligibilityRule) error {
	raw, err := encodeRules(rules)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, ruleKey(jurisdiction, programID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *Redis) Invalidate(ctx context.Context, jurisdiction domain.JurisdictionCode, programID domain.ProgramID) error {
	if err := c.client.Del(ctx, ruleKey(jurisdiction, programID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (c *Redis) InvalidateProgram(ctx context.Context, programID domain.ProgramID) error {
	return c.deleteByPattern(ctx, fmt.Sprintf("%s*:%s", ruleKeyPrefix, programID))
}

func (c *Redis) InvalidateJurisdiction(ctx context.Context, jurisdiction domain.JurisdictionCode) error {
	return c.deleteByPattern(ctx, fmt.Sprintf("%s%s:*", ruleKeyPrefix, jurisdiction))
}

func (c *Redis) InvalidateAll(ctx context.Context) error {
	return c.deleteByPattern(ctx, ruleKeyPrefix+"*")
}

func (c *Redis) Refresh(ctx context.Context, jurisdiction domain.JurisdictionCode, rules []*models.EligibilityRule) error {
	stale, err := c.scanKeys(ctx, fmt.Sprintf("%s%s:*", ruleKeyPrefix, jurisdiction))
	if err != nil {
		return err
	}

	// One transaction so readers see either the old entry set or the new one.
	pipe := c.client.TxPipeline()
	if len(stale) > 0 {
		pipe.Del(ctx, stale...)
	}
	for programID, programRules := range groupByProgram(rules) {
		raw, err := encodeRules(programRules)
		if err != nil {
			return err
		}
		pipe.Set(ctx, ruleKey(jurisdiction, programID), raw, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis refresh: %w", err)
	}
	return nil
}

func (c *Redis) deleteByPattern(ctx context.Context, pattern string) error {
	keys, err := c.scanKeys(ctx, pattern)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// scanKeys collects keys matching a pattern with SCAN, never KEYS, so a large
// cache does not block the server.
func (c *Redis) scanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return keys, nil
}

func encodeRules(rules []*models.EligibilityRule) ([]byte, error) {
	wire := make([]cachedRule, 0, len(rules))
	for _, r := range rules {
		cr := cachedRule{
			ID:        r.ID.String(),
			VersionID: r.VersionID.String(),
			ProgramID: r.ProgramID.String(),
			Priority:  r.Priority,
			Logic:     r.Logic,
		}
		if r.Program != nil {
			cr.Program = &cachedProgram{
				ID:           r.Program.ID.String(),
				Jurisdiction: r.Program.Jurisdiction.String(),
				Code:         r.Program.Code,
				Name:         r.Program.Name,
				Category:     string(r.Program.Category),
				Active:       r.Program.Active,
			}
		}
		wire = append(wire, cr)
	}
	raw, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("encode cached rules: %w", err)
	}
	return raw, nil
}

func decodeRules(raw []byte) ([]*models.EligibilityRule, error) {
	var wire []cachedRule
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decode cached rules: %w", err)
	}
	rules := make([]*models.EligibilityRule, 0, len(wire))
	for _, cr := range wire {
		rule, err := cr.toModel()
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func (cr cachedRule) toModel() (*models.EligibilityRule, error) {
	id, err := domain.ParseRuleID(cr.ID)
	if err != nil {
		return nil, fmt.Errorf("decode cached rule id: %w", err)
	}
	versionID, err := domain.ParseRuleSetVersionID(cr.VersionID)
	if err != nil {
		return nil, fmt.Errorf("decode cached rule version id: %w", err)
	}
	programID, err := domain.ParseProgramID(cr.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("decode cached rule program id: %w", err)
	}
	rule := &models.EligibilityRule{
		ID:        id,
		VersionID: versionID,
		ProgramID: programID,
		Priority:  cr.Priority,
		Logic:     cr.Logic,
	}
	if cr.Program != nil {
		pid, err := domain.ParseProgramID(cr.Program.ID)
		if err != nil {
			return nil, fmt.Errorf("decode cached program id: %w", err)
		}
		rule.Program = &models.ProgramDefinition{
			ID:           pid,
			Jurisdiction: domain.JurisdictionCode(cr.Program.Jurisdiction),
			Code:         cr.Program.Code,
			Name:         cr.Program.Name,
			Category:     models.ProgramCategory(cr.Program.Category),
			Active:       cr.Program.Active,
		}
	}
	return rule, nil
}
