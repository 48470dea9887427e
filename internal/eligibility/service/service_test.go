package service_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"benefind/internal/eligibility/cache"
	"benefind/internal/eligibility/loader"
	"benefind/internal/eligibility/models"
	"benefind/internal/eligibility/service"
	"benefind/internal/eligibility/store/rules"
	"benefind/pkg/domain"
	"benefind/pkg/requestcontext"
)

var (
	il        = domain.JurisdictionCode("IL")
	ca        = domain.JurisdictionCode("CA")
	supported = []domain.JurisdictionCode{il, ca}
	effective = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	june      = time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
)

// countingStore wraps the memory store to prove which paths touch the
// repository.
type countingStore struct {
	*rules.MemoryStore
	calls atomic.Int64
}

func (c *countingStore) ActiveRules(ctx context.Context, jurisdiction domain.JurisdictionCode) ([]*models.EligibilityRule, error) {
	c.calls.Add(1)
	return c.MemoryStore.ActiveRules(ctx, jurisdiction)
}

func (c *countingStore) ActiveVersion(ctx context.Context, jurisdiction domain.JurisdictionCode, date time.Time) (*models.RuleSetVersion, error) {
	c.calls.Add(1)
	return c.MemoryStore.ActiveVersion(ctx, jurisdiction, date)
}

func newService(store *countingStore) *service.Service {
	ldr := loader.New(store, cache.NewMemory(), supported)
	return service.New(store, ldr)
}

func incomeRuleStore(t *testing.T) *countingStore {
	t.Helper()
	store := &countingStore{MemoryStore: rules.NewMemoryStore()}
	rules.SeedJurisdiction(store.MemoryStore, il, "2025.1", effective, []rules.SeedProgram{
		{Code: "MEDICAID_MAGI", Name: "Medicaid (MAGI)", Category: models.CategoryMAGI,
			Logic: `{"type":"compare","op":"lt","left":{"type":"var","key":"income"},"right":{"type":"literal","value":150000}}`},
	})
	return store
}

func TestEvaluateMatch(t *testing.T) {
	ctx := requestcontext.WithTime(context.Background(), june)
	svc := newService(incomeRuleStore(t))

	result, err := svc.Evaluate(ctx, models.EligibilityRequest{
		Jurisdiction:  il,
		EffectiveDate: june,
		Answers:       map[string]any{"income": 120000.0},
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusLikelyEligible, result.Status)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, "MEDICAID_MAGI", result.Matches[0].ProgramCode)
	assert.Equal(t, "Medicaid (MAGI)", result.Matches[0].ProgramName)
	assert.Equal(t, 100, result.Matches[0].Confidence)
	assert.Equal(t, models.ConfidenceLikely, result.Level)
	assert.Equal(t, 100, result.Confidence)
	assert.Equal(t, "2025.1", result.RuleSetVersion)
	assert.Equal(t, june, result.EvaluatedAt)

	require.Len(t, result.Items, 1)
	assert.Equal(t, "income", result.Items[0].CriterionID)
	assert.Equal(t, models.CriterionMet, result.Items[0].Status)
	assert.Contains(t, result.Summary, "you appear to meet")
}

func TestEvaluateUnsupportedJurisdictionBeforeAnyRepositoryCall(t *testing.T) {
	store := incomeRuleStore(t)
	svc := newService(store)

	_, err := svc.Evaluate(context.Background(), models.EligibilityRequest{
		Jurisdiction: domain.JurisdictionCode("ZZ"),
		Answers:      map[string]any{"income": 120000.0},
	})

	var unsupported *models.UnsupportedJurisdictionError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, domain.JurisdictionCode("ZZ"), unsupported.Jurisdiction)
	assert.Zero(t, store.calls.Load(), "repository untouched for unsupported codes")
}

func TestEvaluateNoEffectiveRuleSet(t *testing.T) {
	svc := newService(incomeRuleStore(t))
	before := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.Evaluate(context.Background(), models.EligibilityRequest{
		Jurisdiction:  il,
		EffectiveDate: before,
		Answers:       map[string]any{"income": 120000.0},
	})

	var noRuleSet *models.NoEffectiveRuleSetError
	require.ErrorAs(t, err, &noRuleSet)
	assert.Equal(t, il, noRuleSet.Jurisdiction)
	assert.Equal(t, before, noRuleSet.Date)
}

func TestEvaluateNoMatchWithAnsweredCriteria(t *testing.T) {
	svc := newService(incomeRuleStore(t))

	result, err := svc.Evaluate(context.Background(), models.EligibilityRequest{
		Jurisdiction:  il,
		EffectiveDate: june,
		Answers:       map[string]any{"income": 200000.0},
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusUnlikelyEligible, result.Status)
	assert.Empty(t, result.Matches)
	assert.Equal(t, 50, result.Confidence, "unmatched fallback over answered inputs")
	require.Len(t, result.Items, 1)
	assert.Equal(t, models.CriterionUnmet, result.Items[0].Status)
	assert.Contains(t, result.Summary, "you do not meet")
}

func TestEvaluateUndeterminedWhenAnswersAreMissing(t *testing.T) {
	svc := newService(incomeRuleStore(t))

	result, err := svc.Evaluate(context.Background(), models.EligibilityRequest{
		Jurisdiction:  il,
		EffectiveDate: june,
		Answers:       map[string]any{"income": nil},
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusUndetermined, result.Status)
	assert.Empty(t, result.Matches)
	require.Len(t, result.Items, 1)
	assert.Equal(t, models.CriterionMissing, result.Items[0].Status)
	assert.Contains(t, result.Summary, "We still need")
}

func TestEvaluateMalformedRuleAbortsWholeEvaluation(t *testing.T) {
	store := &countingStore{MemoryStore: rules.NewMemoryStore()}
	v := rules.SeedJurisdiction(store.MemoryStore, il, "2025.1", effective, []rules.SeedProgram{
		{Code: "SNAP", Name: "SNAP", Category: models.CategoryOther,
			Logic: `{"type":"var","key":"isResident"}`},
		{Code: "LIHEAP", Name: "LIHEAP", Category: models.CategoryOther,
			Logic: `{"type":"compare","op":"between"}`},
	})
	svc := newService(store)

	_, err := svc.Evaluate(context.Background(), models.EligibilityRequest{
		Jurisdiction:  il,
		EffectiveDate: june,
		Answers:       map[string]any{"isResident": true},
	})

	var malformed *models.MalformedRuleError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, v.Rules[1].ID, malformed.RuleID)
}

func TestEvaluateMultipleProgramsTakesMaxConfidence(t *testing.T) {
	store := &countingStore{MemoryStore: rules.NewMemoryStore()}
	rules.SeedJurisdiction(store.MemoryStore, il, "2025.1", effective, []rules.SeedProgram{
		{Code: "SNAP", Name: "SNAP", Category: models.CategoryOther,
			Logic: `{"type":"var","key":"isResident"}`},
		{Code: "MEDICAID_MAGI", Name: "Medicaid (MAGI)", Category: models.CategoryMAGI,
			Logic: `{"type":"compare","op":"lt","left":{"type":"var","key":"income"},"right":{"type":"literal","value":150000}}`},
	})
	svc := newService(store)

	result, err := svc.Evaluate(context.Background(), models.EligibilityRequest{
		Jurisdiction:  il,
		EffectiveDate: june,
		Answers:       map[string]any{"isResident": true, "income": 120000.0},
	})
	require.NoError(t, err)

	require.Len(t, result.Matches, 2)
	assert.Equal(t, models.StatusLikelyEligible, result.Status)
	assert.Equal(t, 100, result.Confidence)
}

func TestEvaluateServesSecondRequestFromCache(t *testing.T) {
	store := incomeRuleStore(t)
	svc := newService(store)
	req := models.EligibilityRequest{
		Jurisdiction:  il,
		EffectiveDate: june,
		Answers:       map[string]any{"income": 120000.0},
	}

	_, err := svc.Evaluate(context.Background(), req)
	require.NoError(t, err)
	first := store.calls.Load()

	_, err = svc.Evaluate(context.Background(), req)
	require.NoError(t, err)

	// Version resolution hits the repository every time; the rule fetch only
	// on the first request.
	assert.Equal(t, first+1, store.calls.Load())
}
