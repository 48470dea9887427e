package cache

import (
	"context"
	"sort"
	"sync"

	"benefind/internal/eligibility/models"
	"benefind/pkg/domain"
)

type memoryKey struct {
	jurisdiction domain.JurisdictionCode
	programID    domain.ProgramID
}

// Memory is the in-process RuleCache. A plain RWMutex map is enough: entries
// are independent, replaced whole, and read far more often than written.
type Memory struct {
	mu      sync.RWMutex
	entries map[memoryKey][]*models.EligibilityRule
}

// NewMemory creates an empty in-memory rule cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[memoryKey][]*models.EligibilityRule)}
}

var _ RuleCache = (*Memory)(nil)

func (c *Memory) Get(_ context.Context, jurisdiction domain.JurisdictionCode, programID domain.ProgramID) ([]*models.EligibilityRule, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rules, ok := c.entries[memoryKey{jurisdiction, programID}]
	if !ok {
		return nil, false, nil
	}
	return copyRules(rules), true, nil
}

func (c *Memory) GetByJurisdiction(_ context.Context, jurisdiction domain.JurisdictionCode) ([]*models.EligibilityRule, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]memoryKey, 0)
	for k := range c.entries {
		if k.jurisdiction == jurisdiction {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, false, nil
	}
	// Flatten in program-id order so callers see a stable rule list.
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].programID.String() < keys[j].programID.String()
	})
	var out []*models.EligibilityRule
	for _, k := range keys {
		out = append(out, c.entries[k]...)
	}
	return out, true, nil
}

func (c *Memory) Put(_ context.Context, jurisdiction domain.JurisdictionCode, programID domain.ProgramID, rules []*models.EligibilityRule) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[memoryKey{jurisdiction, programID}] = copyRules(rules)
	return nil
}

func (c *Memory) Invalidate(_ context.Context, jurisdiction domain.JurisdictionCode, programID domain.ProgramID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, memoryKey{jurisdiction, programID})
	return nil
}

func (c *Memory) InvalidateProgram(_ context.Context, programID domain.ProgramID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.programID == programID {
			delete(c.entries, k)
		}
	}
	return nil
}

func (c *Memory) InvalidateJurisdiction(_ context.Context, jurisdiction domain.JurisdictionCode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.jurisdiction == jurisdiction {
			delete(c.entries, k)
		}
	}
	return nil
}

func (c *Memory) InvalidateAll(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[memoryKey][]*models.EligibilityRule)
	return nil
}

func (c *Memory) Refresh(_ context.Context, jurisdiction domain.JurisdictionCode, rules []*models.EligibilityRule) error {
	grouped := groupByProgram(rules)

	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.jurisdiction == jurisdiction {
			delete(c.entries, k)
		}
	}
	for programID, programRules := range grouped {
		c.entries[memoryKey{jurisdiction, programID}] = copyRules(programRules)
	}
	return nil
}

// copyRules shallow-copies the slice so callers cannot mutate the cached
// list. The rules themselves are shared immutable reference data.
func copyRules(rules []*models.EligibilityRule) []*models.EligibilityRule {
	out := make([]*models.EligibilityRule, len(rules))
	copy(out, rules)
	return out
}
