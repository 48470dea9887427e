package fpl

import (
	"context"
	"sort"
	"sync"

	"benefind/internal/eligibility/models"
	"benefind/pkg/domain"
	"benefind/pkg/platform/sentinel"
)

type memoryKey struct {
	year          int
	householdSize int
	jurisdiction  domain.JurisdictionCode // empty for the federal baseline
}

// MemoryStore is the in-process Repository, used in dev mode and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[memoryKey]*models.FederalPovertyLevel
}

// NewMemoryStore creates an empty in-memory poverty-level table.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[memoryKey]*models.FederalPovertyLevel)}
}

var _ Repository = (*MemoryStore)(nil)

// Put stores one row, replacing any previous value for its key.
func (s *MemoryStore) Put(row *models.FederalPovertyLevel) {
	key := memoryKey{year: row.Year, householdSize: row.HouseholdSize}
	if row.Jurisdiction != nil {
		key.jurisdiction = *row.Jurisdiction
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[key] = row
}

func (s *MemoryStore) Find(_ context.Context, year, householdSize int, jurisdiction *domain.JurisdictionCode) (*models.FederalPovertyLevel, error) {
	key := memoryKey{year: year, householdSize: householdSize}
	if jurisdiction != nil {
		key.jurisdiction = *jurisdiction
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return row, nil
}

func (s *MemoryStore) ListYear(_ context.Context, year int) ([]*models.FederalPovertyLevel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.FederalPovertyLevel
	for key, row := range s.rows {
		if key.year == year {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.HouseholdSize != b.HouseholdSize {
			return a.HouseholdSize < b.HouseholdSize
		}
		return jurisdictionOf(a) < jurisdictionOf(b)
	})
	return out, nil
}

func jurisdictionOf(row *models.FederalPovertyLevel) domain.JurisdictionCode {
	if row.Jurisdiction == nil {
		return ""
	}
	return *row.Jurisdiction
}
