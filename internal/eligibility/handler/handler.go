package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"benefind/internal/eligibility/models"
	"benefind/internal/fpl"
	"benefind/pkg/domain"
	dErrors "benefind/pkg/domain-errors"
	"benefind/pkg/platform/httputil"
	"benefind/pkg/requestcontext"
)

// Service defines the interface for eligibility evaluation.
type Service interface {
	Evaluate(ctx context.Context, req models.EligibilityRequest) (*models.EligibilityResult, error)
}

// RuleLoader defines the cache-administration surface of the loader.
type RuleLoader interface {
	RefreshAll(ctx context.Context) (refreshed []domain.JurisdictionCode, failed map[domain.JurisdictionCode]error)
	InvalidateJurisdiction(ctx context.Context, jurisdiction domain.JurisdictionCode) error
}

// ThresholdResolver defines the poverty-level threshold lookup.
type ThresholdResolver interface {
	ResolveThreshold(ctx context.Context, year, householdSize int, percentage float64, jurisdiction *domain.JurisdictionCode) (int64, error)
}

// Handler wires eligibility endpoints to the evaluation service.
type Handler struct {
	service    Service
	loader     RuleLoader
	thresholds ThresholdResolver
	logger     *slog.Logger
}

// New constructs an eligibility handler with its dependencies.
func New(service Service, loader RuleLoader, thresholds ThresholdResolver, logger *slog.Logger) *Handler {
	return &Handler{
		service:    service,
		loader:     loader,
		thresholds: thresholds,
		logger:     logger,
	}
}

// Register mounts eligibility endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/eligibility/evaluate", h.HandleEvaluate)
	r.Get("/fpl/threshold", h.HandleThreshold)
	r.Post("/admin/cache/refresh", h.HandleCacheRefresh)
	r.Delete("/admin/cache/{jurisdiction}", h.HandleCacheInvalidate)
}

// HandleEvaluate handles POST /eligibility/evaluate requests.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[EvaluateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Evaluate(ctx, req.ToModel())
	if err != nil {
		h.logger.ErrorContext(ctx, "eligibility evaluation failed",
			"request_id", requestID,
			"jurisdiction", req.Jurisdiction,
			"error", err,
		)
		httputil.WriteError(w, translateEngineError(err))
		return
	}

	h.logger.InfoContext(ctx, "eligibility evaluation served",
		"request_id", requestID,
		"jurisdiction", req.Jurisdiction,
		"status", result.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}

// HandleThreshold handles GET /fpl/threshold requests.
func (h *Handler) HandleThreshold(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	year, err := strconv.Atoi(query.Get("year"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "year must be an integer"))
		return
	}
	householdSize, err := strconv.Atoi(query.Get("household_size"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "household_size must be an integer"))
		return
	}
	percentage, err := strconv.ParseFloat(query.Get("percentage"), 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "percentage must be a number"))
		return
	}

	var jurisdiction *domain.JurisdictionCode
	if raw := query.Get("jurisdiction"); raw != "" {
		code, err := domain.ParseJurisdictionCode(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		jurisdiction = &code
	}

	threshold, err := h.thresholds.ResolveThreshold(ctx, year, householdSize, percentage, jurisdiction)
	if err != nil {
		httputil.WriteError(w, translateEngineError(err))
		return
	}

	resp := &ThresholdResponse{
		Year:           year,
		HouseholdSize:  householdSize,
		Percentage:     percentage,
		ThresholdCents: threshold,
	}
	if jurisdiction != nil {
		resp.Jurisdiction = jurisdiction.String()
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleCacheRefresh handles POST /admin/cache/refresh requests. Partial
// failure is still a 200: the response body reports both sides.
func (h *Handler) HandleCacheRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	refreshed, failed := h.loader.RefreshAll(ctx)

	h.logger.InfoContext(ctx, "rule cache refreshed",
		"request_id", requestcontext.RequestID(ctx),
		"refreshed", len(refreshed),
		"failed", len(failed),
	)
	httputil.WriteJSON(w, http.StatusOK, FromRefresh(refreshed, failed))
}

// HandleCacheInvalidate handles DELETE /admin/cache/{jurisdiction} requests.
func (h *Handler) HandleCacheInvalidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	jurisdiction, err := domain.ParseJurisdictionCode(chi.URLParam(r, "jurisdiction"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.loader.InvalidateJurisdiction(ctx, jurisdiction); err != nil {
		httputil.WriteError(w, translateEngineError(err))
		return
	}

	h.logger.InfoContext(ctx, "rule cache invalidated",
		"request_id", requestcontext.RequestID(ctx),
		"jurisdiction", jurisdiction,
	)
	w.WriteHeader(http.StatusNoContent)
}

// translateEngineError maps the engine's typed errors onto coded errors for
// the HTTP envelope. Anything unrecognized passes through and surfaces as an
// internal error.
func translateEngineError(err error) error {
	var (
		unsupported  *models.UnsupportedJurisdictionError
		provisioning *models.NoRulesProvisionedError
		noRuleSet    *models.NoEffectiveRuleSetError
		malformed    *models.MalformedRuleError
		fplNotFound  *models.FPLNotFoundError
	)
	switch {
	case errors.As(err, &unsupported):
		return dErrors.Wrap(err, dErrors.CodeBadRequest, unsupported.Error())
	case errors.As(err, &noRuleSet):
		return dErrors.Wrap(err, dErrors.CodeUnprocessable, noRuleSet.Error())
	case errors.As(err, &provisioning):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, provisioning.Error())
	case errors.As(err, &malformed):
		return dErrors.Wrap(err, dErrors.CodeInternal, "rule catalogue is malformed")
	case errors.As(err, &fplNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, fplNotFound.Error())
	}
	return err
}

var _ ThresholdResolver = (*fpl.Calculator)(nil)
