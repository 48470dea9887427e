// Package rules persists the rule catalogue: rule-set versions, their rules,
// and the program definitions rules point at. The memory store backs dev mode
// and tests; the postgres store is the production implementation. Both
// satisfy ports.RuleRepository and ports.RuleSetRepository.
package rules

import (
	"context"
	"sort"
	"sync"
	"time"

	"benefind/internal/eligibility/models"
	"benefind/internal/eligibility/ports"
	"benefind/internal/eligibility/version"
	"benefind/pkg/domain"
	"benefind/pkg/platform/sentinel"
)

// MemoryStore keeps the rule catalogue in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	versions map[domain.RuleSetVersionID]*models.RuleSetVersion
}

// NewMemoryStore creates an empty in-memory rule catalogue.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{versions: make(map[domain.RuleSetVersionID]*models.RuleSetVersion)}
}

var (
	_ ports.RuleRepository    = (*MemoryStore)(nil)
	_ ports.RuleSetRepository = (*MemoryStore)(nil)
)

// AddVersion stores a rule-set version with its rules. Rules are expected to
// carry their program definitions already joined.
func (s *MemoryStore) AddVersion(v *models.RuleSetVersion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versions[v.ID] = v
}

func (s *MemoryStore) ActiveRules(_ context.Context, jurisdiction domain.JurisdictionCode) ([]*models.EligibilityRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.EligibilityRule
	for _, v := range s.sortedVersions(jurisdiction) {
		if v.Status != models.RuleSetStatusActive {
			continue
		}
		out = append(out, v.Rules...)
	}
	return out, nil
}

func (s *MemoryStore) RulesForVersion(_ context.Context, versionID domain.RuleSetVersionID) ([]*models.EligibilityRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.versions[versionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return v.Rules, nil
}

func (s *MemoryStore) ActiveVersion(_ context.Context, jurisdiction domain.JurisdictionCode, date time.Time) (*models.RuleSetVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var active []*models.RuleSetVersion
	for _, v := range s.versions {
		if v.Jurisdiction == jurisdiction && v.Status == models.RuleSetStatusActive {
			active = append(active, v)
		}
	}
	selected := version.SelectEffective(active, date)
	if selected == nil {
		return nil, sentinel.ErrNotFound
	}
	return selected, nil
}

func (s *MemoryStore) VersionByID(_ context.Context, id domain.RuleSetVersionID) (*models.RuleSetVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.versions[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return v, nil
}

func (s *MemoryStore) ListVersions(_ context.Context, jurisdiction domain.JurisdictionCode) ([]*models.RuleSetVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedVersions(jurisdiction), nil
}

// sortedVersions returns a jurisdiction's versions ordered by effective date
// so callers see a stable list. Callers must hold the lock.
func (s *MemoryStore) sortedVersions(jurisdiction domain.JurisdictionCode) []*models.RuleSetVersion {
	var out []*models.RuleSetVersion
	for _, v := range s.versions {
		if v.Jurisdiction == jurisdiction {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].EffectiveDate.Before(out[j].EffectiveDate)
	})
	return out
}
