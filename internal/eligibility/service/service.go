// Package service orchestrates one eligibility evaluation: resolve the
// effective rule-set version, load its rules through the cache-first loader,
// run each rule's expression against the answers, then score and narrate the
// outcome. A single evaluation is synchronous and side-effect-free once rules
// are in hand.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"benefind/internal/eligibility/expr"
	"benefind/internal/eligibility/explain"
	"benefind/internal/eligibility/loader"
	"benefind/internal/eligibility/metrics"
	"benefind/internal/eligibility/models"
	"benefind/internal/eligibility/ports"
	"benefind/internal/eligibility/scoring"
	"benefind/pkg/domain"
	"benefind/pkg/platform/sentinel"
	"benefind/pkg/requestcontext"
)

// Service evaluates eligibility requests against the rule catalogue.
type Service struct {
	rulesets ports.RuleSetRepository
	loader   *loader.Loader
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs the evaluation service.
func New(rulesets ports.RuleSetRepository, ldr *loader.Loader, opts ...Option) *Service {
	s := &Service{
		rulesets: rulesets,
		loader:   ldr,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Evaluate runs one screening request. The jurisdiction is checked against
// the allow-list before anything else; a malformed rule aborts the whole
// evaluation rather than being skipped.
func (s *Service) Evaluate(ctx context.Context, req models.EligibilityRequest) (*models.EligibilityResult, error) {
	start := time.Now()

	if !s.loader.Supports(req.Jurisdiction) {
		return nil, &models.UnsupportedJurisdictionError{Jurisdiction: req.Jurisdiction}
	}

	date := req.EffectiveDate
	if date.IsZero() {
		date = requestcontext.Now(ctx)
	}

	ruleSet, err := s.rulesets.ActiveVersion(ctx, req.Jurisdiction, date)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, &models.NoEffectiveRuleSetError{Jurisdiction: req.Jurisdiction, Date: date}
		}
		return nil, err
	}

	rules, err := s.rulesForVersion(ctx, req.Jurisdiction, ruleSet)
	if err != nil {
		return nil, err
	}

	result, err := s.evaluateRules(ctx, req, ruleSet, rules)
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveEvaluateLatency(time.Since(start))
	s.metrics.IncrementOutcome(string(result.Status), req.Jurisdiction.String())
	s.logger.InfoContext(ctx, "eligibility evaluated",
		"jurisdiction", req.Jurisdiction,
		"rule_set_version", result.RuleSetVersion,
		"status", result.Status,
		"matches", len(result.Matches),
		"confidence", result.Confidence)
	return result, nil
}

// rulesForVersion serves the resolved version's rules. The cache-first loader
// is preferred; its result is narrowed to the resolved version. When the
// cache only holds rules of other versions, the rules carried by the version
// itself are the fallback.
func (s *Service) rulesForVersion(ctx context.Context, jurisdiction domain.JurisdictionCode, ruleSet *models.RuleSetVersion) ([]*models.EligibilityRule, error) {
	loaded, err := s.loader.Load(ctx, jurisdiction)
	if err != nil {
		var provisioning *models.NoRulesProvisionedError
		if errors.As(err, &provisioning) && len(ruleSet.Rules) > 0 {
			return ruleSet.Rules, nil
		}
		return nil, err
	}

	var forVersion []*models.EligibilityRule
	for _, r := range loaded {
		if r.VersionID == ruleSet.ID {
			forVersion = append(forVersion, r)
		}
	}
	if len(forVersion) == 0 {
		return ruleSet.Rules, nil
	}
	return forVersion, nil
}

// ruleOutcome is one rule's evaluation: the parsed tree's answer keys and
// whether the rule matched.
type ruleOutcome struct {
	rule    *models.EligibilityRule
	keys    []string
	matched bool
}

func (s *Service) evaluateRules(ctx context.Context, req models.EligibilityRequest, ruleSet *models.RuleSetVersion, rules []*models.EligibilityRule) (*models.EligibilityResult, error) {
	outcomes := make([]ruleOutcome, 0, len(rules))
	for _, rule := range rules {
		node, err := expr.Parse(rule.Logic)
		if err != nil {
			s.logger.ErrorContext(ctx, "malformed rule expression",
				"rule_id", rule.ID, "jurisdiction", req.Jurisdiction, "error", err)
			return nil, &models.MalformedRuleError{RuleID: rule.ID, Err: err}
		}
		outcomes = append(outcomes, ruleOutcome{
			rule:    rule,
			keys:    expr.Variables(node),
			matched: expr.Evaluate(node, req.Answers),
		})
	}

	met, unmet, missing := deriveCriteria(outcomes, req.Answers)

	var matches []models.ProgramMatch
	for _, o := range outcomes {
		if !o.matched {
			continue
		}
		matches = append(matches, s.programMatch(o, req.Answers))
	}

	confidence, level := scoring.Overall(matches, req.Answers)
	return &models.EligibilityResult{
		Status:         scoring.StatusFor(matches, level, len(missing) > 0),
		Matches:        matches,
		Confidence:     confidence,
		Level:          level,
		Summary:        explain.Summary(met, unmet, missing),
		Items:          explain.Build(met, unmet, missing),
		RuleSetVersion: ruleSet.Version,
		EvaluatedAt:    requestcontext.Now(ctx),
	}, nil
}

func (s *Service) programMatch(o ruleOutcome, answers map[string]any) models.ProgramMatch {
	confidence := scoring.Score(answers, true)

	var answered, unanswered []string
	for _, key := range o.keys {
		if answers[key] == nil {
			unanswered = append(unanswered, key)
		} else {
			answered = append(answered, key)
		}
	}

	match := models.ProgramMatch{
		ProgramCode: o.rule.ProgramID.String(),
		Confidence:  confidence,
		Level:       scoring.LevelFor(confidence),
		Explanation: explain.Summary(answered, nil, unanswered),
	}
	if o.rule.Program != nil {
		match.ProgramCode = o.rule.Program.Code
		match.ProgramName = o.rule.Program.Name
	}
	return match
}

// deriveCriteria partitions the answer keys referenced by the rule set into
// three disjoint sets: missing keys went unanswered in any referencing rule;
// met keys were answered and backed at least one matched rule; unmet keys
// were answered but appeared only in unmatched rules.
func deriveCriteria(outcomes []ruleOutcome, answers map[string]any) (met, unmet, missing []string) {
	const (
		classUnmet = iota
		classMet
		classMissing
	)
	class := make(map[string]int)
	var order []string

	for _, o := range outcomes {
		for _, key := range o.keys {
			if _, seen := class[key]; !seen {
				order = append(order, key)
				class[key] = classUnmet
			}
			if answers[key] == nil {
				class[key] = classMissing
				continue
			}
			if o.matched && class[key] != classMissing {
				class[key] = classMet
			}
		}
	}

	for _, key := range order {
		switch class[key] {
		case classMissing:
			missing = append(missing, key)
		case classMet:
			met = append(met, key)
		default:
			unmet = append(unmet, key)
		}
	}
	return met, unmet, missing
}
