// Package loader is the cache-first façade over the rule repository. It owns
// the supported-jurisdiction allow-list: every read path checks the list
// before touching the cache or the repository, so an unsupported code is
// rejected without any I/O.
package loader

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"benefind/internal/eligibility/cache"
	"benefind/internal/eligibility/metrics"
	"benefind/internal/eligibility/models"
	"benefind/internal/eligibility/ports"
	"benefind/pkg/domain"
)

// refreshConcurrency bounds parallel jurisdiction refreshes in RefreshAll.
const refreshConcurrency = 4

// Loader loads active rules for supported jurisdictions, cache-first.
type Loader struct {
	rules     ports.RuleRepository
	cache     cache.RuleCache
	supported map[domain.JurisdictionCode]bool
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(l *Loader)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Loader) {
		l.metrics = m
	}
}

// New constructs a Loader over the given repository and cache. The supported
// list is fixed at construction.
func New(rules ports.RuleRepository, ruleCache cache.RuleCache, supported []domain.JurisdictionCode, opts ...Option) *Loader {
	l := &Loader{
		rules:     rules,
		cache:     ruleCache,
		supported: make(map[domain.JurisdictionCode]bool, len(supported)),
		logger:    slog.Default(),
	}
	for _, j := range supported {
		l.supported[j] = true
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Supports reports whether a jurisdiction is on the allow-list.
func (l *Loader) Supports(jurisdiction domain.JurisdictionCode) bool {
	return l.supported[jurisdiction]
}

// Supported returns the allow-list in stable order.
func (l *Loader) Supported() []domain.JurisdictionCode {
	out := make([]domain.JurisdictionCode, 0, len(l.supported))
	for j := range l.supported {
		out = append(out, j)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Load returns the active rules for a jurisdiction. Cache-first: on a miss
// the repository is queried once, the cache refreshed, and the fresh rules
// returned. An empty repository is a provisioning gap, not an empty result.
func (l *Loader) Load(ctx context.Context, jurisdiction domain.JurisdictionCode) ([]*models.EligibilityRule, error) {
	if !l.Supports(jurisdiction) {
		return nil, &models.UnsupportedJurisdictionError{Jurisdiction: jurisdiction}
	}

	cached, ok, err := l.cache.GetByJurisdiction(ctx, jurisdiction)
	if err != nil {
		// A broken cache degrades to repository reads rather than failing the
		// evaluation.
		l.logger.WarnContext(ctx, "rule cache read failed, falling back to repository",
			"jurisdiction", jurisdiction, "error", err)
	}
	if ok {
		l.metrics.IncrementCacheHit(jurisdiction.String())
		return cached, nil
	}
	l.metrics.IncrementCacheMiss(jurisdiction.String())

	return l.refresh(ctx, jurisdiction)
}

// Refresh bypasses the cache, re-pulls a jurisdiction's active rules from the
// repository, and replaces its cache entries.
func (l *Loader) Refresh(ctx context.Context, jurisdiction domain.JurisdictionCode) ([]*models.EligibilityRule, error) {
	if !l.Supports(jurisdiction) {
		return nil, &models.UnsupportedJurisdictionError{Jurisdiction: jurisdiction}
	}
	return l.refresh(ctx, jurisdiction)
}

func (l *Loader) refresh(ctx context.Context, jurisdiction domain.JurisdictionCode) ([]*models.EligibilityRule, error) {
	rules, err := l.rules.ActiveRules(ctx, jurisdiction)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, &models.NoRulesProvisionedError{Jurisdiction: jurisdiction}
	}

	if err := l.cache.Refresh(ctx, jurisdiction, rules); err != nil {
		// Serving fresh repository data matters more than caching it.
		l.logger.WarnContext(ctx, "rule cache refresh failed",
			"jurisdiction", jurisdiction, "error", err)
	}

	l.logger.InfoContext(ctx, "rules loaded",
		"jurisdiction", jurisdiction, "rule_count", len(rules))
	return rules, nil
}

// RefreshAll re-pulls every supported jurisdiction concurrently. Failures are
// isolated per jurisdiction: each is logged, counted, and reported in the
// returned map while the others proceed.
func (l *Loader) RefreshAll(ctx context.Context) (refreshed []domain.JurisdictionCode, failed map[domain.JurisdictionCode]error) {
	failed = make(map[domain.JurisdictionCode]error)

	var mu sync.Mutex
	g := &errgroup.Group{}
	g.SetLimit(refreshConcurrency)

	for _, jurisdiction := range l.Supported() {
		jurisdiction := jurisdiction
		g.Go(func() error {
			_, err := l.refresh(ctx, jurisdiction)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[jurisdiction] = err
				return nil
			}
			refreshed = append(refreshed, jurisdiction)
			return nil
		})
	}
	_ = g.Wait()

	for jurisdiction, err := range failed {
		l.metrics.IncrementRefreshFailure(jurisdiction.String())
		l.logger.ErrorContext(ctx, "jurisdiction refresh failed",
			"jurisdiction", jurisdiction, "error", err)
	}
	sort.Slice(refreshed, func(i, j int) bool { return refreshed[i] < refreshed[j] })
	return refreshed, failed
}

// InvalidateJurisdiction drops a jurisdiction's cached rules. The next Load
// fetches from the repository.
func (l *Loader) InvalidateJurisdiction(ctx context.Context, jurisdiction domain.JurisdictionCode) error {
	if !l.Supports(jurisdiction) {
		return &models.UnsupportedJurisdictionError{Jurisdiction: jurisdiction}
	}
	return l.cache.InvalidateJurisdiction(ctx, jurisdiction)
}

// InvalidateAll empties the rule cache.
func (l *Loader) InvalidateAll(ctx context.Context) error {
	return l.cache.InvalidateAll(ctx)
}
