//go:build integration

package cache_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"benefind/internal/eligibility/cache"
	"benefind/internal/eligibility/models"
	"benefind/pkg/domain"
	"benefind/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *cache.Redis

	il   domain.JurisdictionCode
	ca   domain.JurisdictionCode
	snap domain.ProgramID
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.cache = cache.NewRedis(s.redis.Client, cache.WithTTL(5*time.Minute))
	s.il = domain.JurisdictionCode("IL")
	s.ca = domain.JurisdictionCode("CA")
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.snap = domain.NewProgramID()
}

func (s *RedisCacheSuite) rule(programID domain.ProgramID) *models.EligibilityRule {
	return &models.EligibilityRule{
		ID:        domain.NewRuleID(),
		VersionID: domain.NewRuleSetVersionID(),
		ProgramID: programID,
		Priority:  10,
		Logic:     json.RawMessage(`{"type":"compare","op":"lt","left":{"type":"var","key":"income"},"right":{"type":"literal","value":150000}}`),
		Program: &models.ProgramDefinition{
			ID:           programID,
			Jurisdiction: s.il,
			Code:         "SNAP",
			Name:         "Supplemental Nutrition Assistance Program",
			Category:     models.CategoryOther,
			Active:       true,
		},
	}
}

func (s *RedisCacheSuite) TestRoundTrip() {
	ctx := context.Background()
	rule := s.rule(s.snap)

	s.Require().NoError(s.cache.Put(ctx, s.il, s.snap, []*models.EligibilityRule{rule}))

	got, ok, err := s.cache.Get(ctx, s.il, s.snap)
	s.Require().NoError(err)
	s.True(ok)
	s.Require().Len(got, 1)
	s.Equal(rule.ID, got[0].ID)
	s.Equal(rule.Priority, got[0].Priority)
	s.JSONEq(string(rule.Logic), string(got[0].Logic))
	s.Require().NotNil(got[0].Program)
	s.Equal("SNAP", got[0].Program.Code)
}

func (s *RedisCacheSuite) TestGetMiss() {
	_, ok, err := s.cache.Get(context.Background(), s.il, s.snap)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *RedisCacheSuite) TestGetByJurisdiction() {
	ctx := context.Background()
	other := domain.NewProgramID()

	s.Require().NoError(s.cache.Put(ctx, s.il, s.snap, []*models.EligibilityRule{s.rule(s.snap)}))
	s.Require().NoError(s.cache.Put(ctx, s.il, other, []*models.EligibilityRule{s.rule(other)}))
	s.Require().NoError(s.cache.Put(ctx, s.ca, s.snap, []*models.EligibilityRule{s.rule(s.snap)}))

	got, ok, err := s.cache.GetByJurisdiction(ctx, s.il)
	s.Require().NoError(err)
	s.True(ok)
	s.Len(got, 2)
}

func (s *RedisCacheSuite) TestInvalidateJurisdiction() {
	ctx := context.Background()

	s.Require().NoError(s.cache.Put(ctx, s.il, s.snap, []*models.EligibilityRule{s.rule(s.snap)}))
	s.Require().NoError(s.cache.Put(ctx, s.ca, s.snap, []*models.EligibilityRule{s.rule(s.snap)}))

	s.Require().NoError(s.cache.InvalidateJurisdiction(ctx, s.il))

	_, ok, err := s.cache.Get(ctx, s.il, s.snap)
	s.Require().NoError(err)
	s.False(ok)

	_, ok, err = s.cache.Get(ctx, s.ca, s.snap)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *RedisCacheSuite) TestInvalidateProgramSpansJurisdictions() {
	ctx := context.Background()

	s.Require().NoError(s.cache.Put(ctx, s.il, s.snap, []*models.EligibilityRule{s.rule(s.snap)}))
	s.Require().NoError(s.cache.Put(ctx, s.ca, s.snap, []*models.EligibilityRule{s.rule(s.snap)}))

	s.Require().NoError(s.cache.InvalidateProgram(ctx, s.snap))

	_, ok, _ := s.cache.Get(ctx, s.il, s.snap)
	s.False(ok)
	_, ok, _ = s.cache.Get(ctx, s.ca, s.snap)
	s.False(ok)
}

func (s *RedisCacheSuite) TestRefreshReplacesJurisdictionEntries() {
	ctx := context.Background()
	fresh := domain.NewProgramID()

	s.Require().NoError(s.cache.Put(ctx, s.il, s.snap, []*models.EligibilityRule{s.rule(s.snap)}))
	s.Require().NoError(s.cache.Refresh(ctx, s.il, []*models.EligibilityRule{s.rule(fresh)}))

	_, ok, err := s.cache.Get(ctx, s.il, s.snap)
	s.Require().NoError(err)
	s.False(ok, "stale entry removed")

	_, ok, err = s.cache.Get(ctx, s.il, fresh)
	s.Require().NoError(err)
	s.True(ok)
}
