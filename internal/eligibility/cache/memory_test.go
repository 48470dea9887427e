package cache

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"benefind/internal/eligibility/models"
	"benefind/pkg/domain"
)

type MemoryCacheSuite struct {
	suite.Suite
	ctx   context.Context
	cache *Memory

	il domain.JurisdictionCode
	ca domain.JurisdictionCode

	snap     domain.ProgramID
	medicaid domain.ProgramID
}

func TestMemoryCacheSuite(t *testing.T) {
	suite.Run(t, new(MemoryCacheSuite))
}

func (s *MemoryCacheSuite) SetupTest() {
	s.ctx = context.Background()
	s.cache = NewMemory()
	s.il = domain.JurisdictionCode("IL")
	s.ca = domain.JurisdictionCode("CA")
	s.snap = domain.NewProgramID()
	s.medicaid = domain.NewProgramID()
}

func (s *MemoryCacheSuite) rule(programID domain.ProgramID) *models.EligibilityRule {
	return &models.EligibilityRule{
		ID:        domain.NewRuleID(),
		VersionID: domain.NewRuleSetVersionID(),
		ProgramID: programID,
		Logic:     json.RawMessage(`{"type":"var","key":"isResident"}`),
	}
}

func (s *MemoryCacheSuite) TestPutAndGet() {
	rule := s.rule(s.snap)
	s.Require().NoError(s.cache.Put(s.ctx, s.il, s.snap, []*models.EligibilityRule{rule}))

	got, ok, err := s.cache.Get(s.ctx, s.il, s.snap)
	s.Require().NoError(err)
	s.True(ok)
	s.Require().Len(got, 1)
	s.Equal(rule.ID, got[0].ID)
}

func (s *MemoryCacheSuite) TestGetMiss() {
	_, ok, err := s.cache.Get(s.ctx, s.il, s.snap)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *MemoryCacheSuite) TestGetByJurisdiction() {
	s.Require().NoError(s.cache.Put(s.ctx, s.il, s.snap, []*models.EligibilityRule{s.rule(s.snap)}))
	s.Require().NoError(s.cache.Put(s.ctx, s.il, s.medicaid, []*models.EligibilityRule{s.rule(s.medicaid)}))
	s.Require().NoError(s.cache.Put(s.ctx, s.ca, s.snap, []*models.EligibilityRule{s.rule(s.snap)}))

	got, ok, err := s.cache.GetByJurisdiction(s.ctx, s.il)
	s.Require().NoError(err)
	s.True(ok)
	s.Len(got, 2)

	_, ok, err = s.cache.GetByJurisdiction(s.ctx, domain.JurisdictionCode("WI"))
	s.Require().NoError(err)
	s.False(ok)
}

func (s *MemoryCacheSuite) TestInvalidate() {
	s.Require().NoError(s.cache.Put(s.ctx, s.il, s.snap, []*models.EligibilityRule{s.rule(s.snap)}))
	s.Require().NoError(s.cache.Invalidate(s.ctx, s.il, s.snap))

	_, ok, err := s.cache.Get(s.ctx, s.il, s.snap)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *MemoryCacheSuite) TestInvalidateProgramSpansJurisdictions() {
	s.Require().NoError(s.cache.Put(s.ctx, s.il, s.snap, []*models.EligibilityRule{s.rule(s.snap)}))
	s.Require().NoError(s.cache.Put(s.ctx, s.ca, s.snap, []*models.EligibilityRule{s.rule(s.snap)}))
	s.Require().NoError(s.cache.Put(s.ctx, s.il, s.medicaid, []*models.EligibilityRule{s.rule(s.medicaid)}))

	s.Require().NoError(s.cache.InvalidateProgram(s.ctx, s.snap))

	_, ok, _ := s.cache.Get(s.ctx, s.il, s.snap)
	s.False(ok)
	_, ok, _ = s.cache.Get(s.ctx, s.ca, s.snap)
	s.False(ok)
	_, ok, _ = s.cache.Get(s.ctx, s.il, s.medicaid)
	s.True(ok, "other programs survive")
}

func (s *MemoryCacheSuite) TestInvalidateJurisdiction() {
	s.Require().NoError(s.cache.Put(s.ctx, s.il, s.snap, []*models.EligibilityRule{s.rule(s.snap)}))
	s.Require().NoError(s.cache.Put(s.ctx, s.ca, s.snap, []*models.EligibilityRule{s.rule(s.snap)}))

	s.Require().NoError(s.cache.InvalidateJurisdiction(s.ctx, s.il))

	_, ok, _ := s.cache.Get(s.ctx, s.il, s.snap)
	s.False(ok)
	_, ok, _ = s.cache.Get(s.ctx, s.ca, s.snap)
	s.True(ok, "other jurisdictions survive")
}

func (s *MemoryCacheSuite) TestInvalidateAll() {
	s.Require().NoError(s.cache.Put(s.ctx, s.il, s.snap, []*models.EligibilityRule{s.rule(s.snap)}))
	s.Require().NoError(s.cache.Put(s.ctx, s.ca, s.medicaid, []*models.EligibilityRule{s.rule(s.medicaid)}))

	s.Require().NoError(s.cache.InvalidateAll(s.ctx))

	_, ok, _ := s.cache.GetByJurisdiction(s.ctx, s.il)
	s.False(ok)
	_, ok, _ = s.cache.GetByJurisdiction(s.ctx, s.ca)
	s.False(ok)
}

func (s *MemoryCacheSuite) TestRefreshReplacesJurisdictionEntries() {
	stale := s.rule(s.snap)
	s.Require().NoError(s.cache.Put(s.ctx, s.il, s.snap, []*models.EligibilityRule{stale}))
	s.Require().NoError(s.cache.Put(s.ctx, s.ca, s.snap, []*models.EligibilityRule{s.rule(s.snap)}))

	fresh := s.rule(s.medicaid)
	s.Require().NoError(s.cache.Refresh(s.ctx, s.il, []*models.EligibilityRule{fresh}))

	_, ok, _ := s.cache.Get(s.ctx, s.il, s.snap)
	s.False(ok, "stale program entry removed")

	got, ok, err := s.cache.Get(s.ctx, s.il, s.medicaid)
	s.Require().NoError(err)
	s.True(ok)
	s.Require().Len(got, 1)
	s.Equal(fresh.ID, got[0].ID)

	_, ok, _ = s.cache.Get(s.ctx, s.ca, s.snap)
	s.True(ok, "other jurisdictions untouched")
}

func (s *MemoryCacheSuite) TestConcurrentReadersAndWriters() {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.cache.Put(s.ctx, s.il, s.snap, []*models.EligibilityRule{s.rule(s.snap)})
		}()
		go func() {
			defer wg.Done()
			rules, ok, err := s.cache.Get(s.ctx, s.il, s.snap)
			s.NoError(err)
			if ok {
				s.Len(rules, 1, "readers never see a partial entry")
			}
		}()
	}
	wg.Wait()
}
