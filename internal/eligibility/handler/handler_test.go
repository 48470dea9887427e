package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"benefind/internal/eligibility/handler"
	"benefind/internal/eligibility/models"
	"benefind/pkg/domain"
	"benefind/pkg/testutil"
)

type fakeService struct {
	result *models.EligibilityResult
	err    error
	gotReq models.EligibilityRequest
}

func (f *fakeService) Evaluate(_ context.Context, req models.EligibilityRequest) (*models.EligibilityResult, error) {
	f.gotReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeLoader struct {
	refreshed   []domain.JurisdictionCode
	failed      map[domain.JurisdictionCode]error
	invalidated []domain.JurisdictionCode
	invalidErr  error
}

func (f *fakeLoader) RefreshAll(context.Context) ([]domain.JurisdictionCode, map[domain.JurisdictionCode]error) {
	return f.refreshed, f.failed
}

func (f *fakeLoader) InvalidateJurisdiction(_ context.Context, j domain.JurisdictionCode) error {
	if f.invalidErr != nil {
		return f.invalidErr
	}
	f.invalidated = append(f.invalidated, j)
	return nil
}

type fakeThresholds struct {
	threshold int64
	err       error
}

func (f *fakeThresholds) ResolveThreshold(context.Context, int, int, float64, *domain.JurisdictionCode) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.threshold, nil
}

func newRouter(svc handler.Service, ldr handler.RuleLoader, thresholds handler.ThresholdResolver) http.Handler {
	r := chi.NewRouter()
	handler.New(svc, ldr, thresholds, testLogger()).Register(r)
	return r
}

func likelyResult() *models.EligibilityResult {
	return &models.EligibilityResult{
		Status: models.StatusLikelyEligible,
		Matches: []models.ProgramMatch{{
			ProgramCode: "MEDICAID_MAGI",
			ProgramName: "Medicaid (MAGI)",
			Confidence:  100,
			Level:       models.ConfidenceLikely,
			Explanation: "Good news: you appear to meet the screened requirements (household income).",
		}},
		Confidence:     100,
		Level:          models.ConfidenceLikely,
		Summary:        "Good news: you appear to meet the screened requirements (household income).",
		Items:          []models.ExplanationItem{{CriterionID: "income", Message: "You meet the household income requirement.", Status: models.CriterionMet}},
		RuleSetVersion: "2025.1",
		EvaluatedAt:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestHandleEvaluate(t *testing.T) {
	t.Run("returns the evaluation result", func(t *testing.T) {
		svc := &fakeService{result: likelyResult()}
		router := newRouter(svc, &fakeLoader{}, &fakeThresholds{})

		req := testutil.NewJSONRequest(t, http.MethodPost, "/eligibility/evaluate", map[string]any{
			"jurisdiction":   "il",
			"effective_date": "2025-06-01",
			"answers":        map[string]any{"income": 120000},
		})
		rr := testutil.DoRequest(router, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp handler.EvaluateResponse
		testutil.DecodeJSON(t, rr, &resp)
		assert.Equal(t, "likely_eligible", resp.Status)
		require.Len(t, resp.Matches, 1)
		assert.Equal(t, "MEDICAID_MAGI", resp.Matches[0].ProgramCode)
		assert.Equal(t, "2025.1", resp.RuleSetVersion)

		assert.Equal(t, domain.JurisdictionCode("IL"), svc.gotReq.Jurisdiction, "code is uppercased")
		assert.Equal(t, 2025, svc.gotReq.EffectiveDate.Year())
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		router := newRouter(&fakeService{result: likelyResult()}, &fakeLoader{}, &fakeThresholds{})

		req := testutil.NewRequestWithBody(t, http.MethodPost, "/eligibility/evaluate", "{not json")
		rr := testutil.DoRequest(router, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects an invalid jurisdiction code", func(t *testing.T) {
		router := newRouter(&fakeService{result: likelyResult()}, &fakeLoader{}, &fakeThresholds{})

		req := testutil.NewJSONRequest(t, http.MethodPost, "/eligibility/evaluate", map[string]any{
			"jurisdiction": "illinois",
			"answers":      map[string]any{"income": 120000},
		})
		rr := testutil.DoRequest(router, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects structured answer values", func(t *testing.T) {
		router := newRouter(&fakeService{result: likelyResult()}, &fakeLoader{}, &fakeThresholds{})

		req := testutil.NewJSONRequest(t, http.MethodPost, "/eligibility/evaluate", map[string]any{
			"jurisdiction": "IL",
			"answers":      map[string]any{"income": map[string]any{"amount": 120000}},
		})
		rr := testutil.DoRequest(router, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("maps unsupported jurisdiction to 400", func(t *testing.T) {
		svc := &fakeService{err: &models.UnsupportedJurisdictionError{Jurisdiction: "ZZ"}}
		router := newRouter(svc, &fakeLoader{}, &fakeThresholds{})

		req := testutil.NewJSONRequest(t, http.MethodPost, "/eligibility/evaluate", map[string]any{
			"jurisdiction": "ZZ",
			"answers":      map[string]any{"income": 120000},
		})
		rr := testutil.DoRequest(router, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "bad_request")
	})

	t.Run("maps missing effective rule set to 422", func(t *testing.T) {
		svc := &fakeService{err: &models.NoEffectiveRuleSetError{
			Jurisdiction: "IL",
			Date:         time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		}}
		router := newRouter(svc, &fakeLoader{}, &fakeThresholds{})

		req := testutil.NewJSONRequest(t, http.MethodPost, "/eligibility/evaluate", map[string]any{
			"jurisdiction":   "IL",
			"effective_date": "2020-01-01",
			"answers":        map[string]any{"income": 120000},
		})
		rr := testutil.DoRequest(router, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("maps provisioning gap to 503", func(t *testing.T) {
		svc := &fakeService{err: &models.NoRulesProvisionedError{Jurisdiction: "CA"}}
		router := newRouter(svc, &fakeLoader{}, &fakeThresholds{})

		req := testutil.NewJSONRequest(t, http.MethodPost, "/eligibility/evaluate", map[string]any{
			"jurisdiction": "CA",
			"answers":      map[string]any{"income": 120000},
		})
		rr := testutil.DoRequest(router, req)

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})

	t.Run("maps malformed rules to 500 without leaking details", func(t *testing.T) {
		svc := &fakeService{err: &models.MalformedRuleError{RuleID: domain.NewRuleID()}}
		router := newRouter(svc, &fakeLoader{}, &fakeThresholds{})

		req := testutil.NewJSONRequest(t, http.MethodPost, "/eligibility/evaluate", map[string]any{
			"jurisdiction": "IL",
			"answers":      map[string]any{"income": 120000},
		})
		rr := testutil.DoRequest(router, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "error_description")
	})
}

func TestHandleThreshold(t *testing.T) {
	t.Run("resolves a threshold", func(t *testing.T) {
		router := newRouter(&fakeService{}, &fakeLoader{}, &fakeThresholds{threshold: 2012040})

		req := testutil.NewRequest(t, http.MethodGet, "/fpl/threshold?year=2024&household_size=1&percentage=138")
		rr := testutil.DoRequest(router, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp handler.ThresholdResponse
		testutil.DecodeJSON(t, rr, &resp)
		assert.Equal(t, int64(2012040), resp.ThresholdCents)
		assert.Equal(t, 2024, resp.Year)
	})

	t.Run("rejects missing parameters", func(t *testing.T) {
		router := newRouter(&fakeService{}, &fakeLoader{}, &fakeThresholds{threshold: 1})

		req := testutil.NewRequest(t, http.MethodGet, "/fpl/threshold?household_size=1&percentage=138")
		rr := testutil.DoRequest(router, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("maps a missing poverty level row to 404", func(t *testing.T) {
		router := newRouter(&fakeService{}, &fakeLoader{}, &fakeThresholds{
			err: &models.FPLNotFoundError{Year: 1999, HouseholdSize: 1},
		})

		req := testutil.NewRequest(t, http.MethodGet, "/fpl/threshold?year=1999&household_size=1&percentage=138")
		rr := testutil.DoRequest(router, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestHandleCacheAdmin(t *testing.T) {
	t.Run("refresh reports both sides", func(t *testing.T) {
		ldr := &fakeLoader{
			refreshed: []domain.JurisdictionCode{"CA", "IL"},
			failed:    map[domain.JurisdictionCode]error{"WI": &models.NoRulesProvisionedError{Jurisdiction: "WI"}},
		}
		router := newRouter(&fakeService{}, ldr, &fakeThresholds{})

		req := testutil.NewRequest(t, http.MethodPost, "/admin/cache/refresh")
		rr := testutil.DoRequest(router, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp handler.RefreshResponse
		testutil.DecodeJSON(t, rr, &resp)
		assert.Equal(t, []string{"CA", "IL"}, resp.Refreshed)
		assert.Contains(t, resp.Failed, "WI")
	})

	t.Run("invalidate returns no content", func(t *testing.T) {
		ldr := &fakeLoader{}
		router := newRouter(&fakeService{}, ldr, &fakeThresholds{})

		req := testutil.NewRequest(t, http.MethodDelete, "/admin/cache/IL")
		rr := testutil.DoRequest(router, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, []domain.JurisdictionCode{"IL"}, ldr.invalidated)
	})

	t.Run("invalidate rejects a bad code", func(t *testing.T) {
		router := newRouter(&fakeService{}, &fakeLoader{}, &fakeThresholds{})

		req := testutil.NewRequest(t, http.MethodDelete, "/admin/cache/illinois")
		rr := testutil.DoRequest(router, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("invalidate maps unsupported jurisdiction to 400", func(t *testing.T) {
		router := newRouter(&fakeService{}, &fakeLoader{
			invalidErr: &models.UnsupportedJurisdictionError{Jurisdiction: "ZZ"},
		}, &fakeThresholds{})

		req := testutil.NewRequest(t, http.MethodDelete, "/admin/cache/ZZ")
		rr := testutil.DoRequest(router, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
