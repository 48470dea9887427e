// Package models defines the value objects flowing through the eligibility
// engine. Reference data (rule-set versions, rules, programs) is owned by the
// repository layer and only read here; requests and results are per-call
// values that are never mutated after construction.
package models

import (
	"encoding/json"
	"time"

	"benefind/pkg/domain"
)

// RuleSetStatus marks whether a rule-set version is in force or superseded.
type RuleSetStatus string

const (
	RuleSetStatusActive  RuleSetStatus = "active"
	RuleSetStatusRetired RuleSetStatus = "retired"
)

// IsValid checks if the status is one of the supported enum values.
func (s RuleSetStatus) IsValid() bool {
	return s == RuleSetStatusActive || s == RuleSetStatusRetired
}

// ProgramCategory groups benefit programs by their eligibility methodology.
type ProgramCategory string

const (
	CategoryMAGI      ProgramCategory = "magi"
	CategoryNonMAGI   ProgramCategory = "non_magi"
	CategoryPregnancy ProgramCategory = "pregnancy"
	CategorySSILinked ProgramCategory = "ssi_linked"
	CategoryOther     ProgramCategory = "other"
)

// IsValid checks if the category is one of the supported enum values.
func (c ProgramCategory) IsValid() bool {
	switch c {
	case CategoryMAGI, CategoryNonMAGI, CategoryPregnancy, CategorySSILinked, CategoryOther:
		return true
	}
	return false
}

// CriterionStatus classifies a criterion's outcome in an evaluation.
type CriterionStatus string

const (
	CriterionMet     CriterionStatus = "met"
	CriterionUnmet   CriterionStatus = "unmet"
	CriterionMissing CriterionStatus = "missing"
)

// ConfidenceLevel is the label derived from a confidence score.
type ConfidenceLevel string

const (
	ConfidenceLikely   ConfidenceLevel = "likely"
	ConfidencePossibly ConfidenceLevel = "possibly"
	ConfidenceUnlikely ConfidenceLevel = "unlikely"
)

// EligibilityStatus is the overall outcome of one evaluation.
type EligibilityStatus string

const (
	StatusLikelyEligible   EligibilityStatus = "likely_eligible"
	StatusPossiblyEligible EligibilityStatus = "possibly_eligible"
	StatusUnlikelyEligible EligibilityStatus = "unlikely_eligible"
	StatusUndetermined     EligibilityStatus = "undetermined"
)

// EligibilityRequest is one screening request. Answers map question keys to
// scalar values (bool, float64, string, or nil for "not answered").
// Immutable once constructed.
type EligibilityRequest struct {
	Jurisdiction  domain.JurisdictionCode
	EffectiveDate time.Time
	Answers       map[string]any
}

// RuleSetVersion is a dated, versioned bundle of eligibility rules in force
// for a jurisdiction during an effective window. At most one active version
// should be effective for a given jurisdiction and date in well-formed data;
// the selector does not enforce this.
type RuleSetVersion struct {
	ID            domain.RuleSetVersionID
	Jurisdiction  domain.JurisdictionCode
	Version       string
	EffectiveDate time.Time
	EndDate       *time.Time
	Status        RuleSetStatus
	Rules         []*EligibilityRule
}

// EligibilityRule binds a program to a boolean expression tree. Logic holds
// the authored JSON form; it is parsed at evaluation time so a malformed rule
// surfaces as a MalformedRuleError naming the rule, never as a silent
// non-match.
//
// Priority is carried through from authoring but does not influence
// evaluation order; rules run in list order.
type EligibilityRule struct {
	ID        domain.RuleID
	VersionID domain.RuleSetVersionID
	ProgramID domain.ProgramID
	Priority  int
	Logic     json.RawMessage
	Program   *ProgramDefinition
}

// ProgramDefinition describes one benefit program in a jurisdiction.
type ProgramDefinition struct {
	ID           domain.ProgramID
	Jurisdiction domain.JurisdictionCode
	Code         string
	Name         string
	Category     ProgramCategory
	Active       bool
}

// FederalPovertyLevel is one row of the poverty-level table: year, household
// size 1-8, and the annual amount in integer cents. Jurisdiction and
// Multiplier are set only for state-adjusted rows (e.g. a statutory 1.25x
// baseline). Sizes above 8 are never stored; they are extrapolated.
type FederalPovertyLevel struct {
	Year          int
	HouseholdSize int
	AnnualCents   int64
	Jurisdiction  *domain.JurisdictionCode
	Multiplier    *float64
}

// ProgramMatch is created for each rule that evaluated true.
type ProgramMatch struct {
	ProgramCode string
	ProgramName string
	Confidence  int
	Level       ConfidenceLevel
	Explanation string
}

// ExplanationItem narrates one criterion's outcome in plain language.
type ExplanationItem struct {
	CriterionID string
	Message     string
	Status      CriterionStatus
	Definition  string
}

// EligibilityResult is the immutable outcome of one evaluation.
type EligibilityResult struct {
	Status         EligibilityStatus
	Matches        []ProgramMatch
	Confidence     int
	Level          ConfidenceLevel
	Summary        string
	Items          []ExplanationItem
	RuleSetVersion string
	EvaluatedAt    time.Time
}
