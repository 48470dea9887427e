package models

import (
	"fmt"
	"time"

	"benefind/pkg/domain"
)

// Engine error taxonomy. All five are distinguishable with errors.As so the
// transport layer can map each to its own response. None are retried inside
// the engine; retries, if any, belong to the repository or transport layer.

// UnsupportedJurisdictionError reports a jurisdiction outside the supported
// allow-list. Permanent: retrying the same code cannot succeed.
type UnsupportedJurisdictionError struct {
	Jurisdiction domain.JurisdictionCode
}

func (e *UnsupportedJurisdictionError) Error() string {
	return fmt.Sprintf("jurisdiction %q is not supported", e.Jurisdiction)
}

// NoRulesProvisionedError reports a supported jurisdiction whose repository
// holds no active rules. Distinct from UnsupportedJurisdictionError: the code
// is valid, the data is an operational gap.
type NoRulesProvisionedError struct {
	Jurisdiction domain.JurisdictionCode
}

func (e *NoRulesProvisionedError) Error() string {
	return fmt.Sprintf("no eligibility rules provisioned for jurisdiction %q", e.Jurisdiction)
}

// NoEffectiveRuleSetError reports that no rule-set version covers the
// requested date. Client-correctable: a different date may qualify.
type NoEffectiveRuleSetError struct {
	Jurisdiction domain.JurisdictionCode
	Date         time.Time
}

func (e *NoEffectiveRuleSetError) Error() string {
	return fmt.Sprintf("no rule-set version for jurisdiction %q is effective on %s",
		e.Jurisdiction, e.Date.Format("2006-01-02"))
}

// MalformedRuleError reports a rule whose expression could not be parsed.
// This is a data-authoring defect: it fails the whole evaluation rather than
// being skipped, so bad rules are corrected instead of silently masked.
type MalformedRuleError struct {
	RuleID domain.RuleID
	Err    error
}

func (e *MalformedRuleError) Error() string {
	return fmt.Sprintf("rule %s has a malformed expression: %v", e.RuleID, e.Err)
}

func (e *MalformedRuleError) Unwrap() error {
	return e.Err
}

// FPLNotFoundError reports a missing poverty-level row. Never defaulted:
// computing a threshold from a guessed baseline would be silently wrong.
type FPLNotFoundError struct {
	Year          int
	HouseholdSize int
	Jurisdiction  domain.JurisdictionCode
}

func (e *FPLNotFoundError) Error() string {
	if e.Jurisdiction.IsNil() {
		return fmt.Sprintf("no poverty level for year %d, household size %d", e.Year, e.HouseholdSize)
	}
	return fmt.Sprintf("no poverty level for year %d, household size %d, jurisdiction %q",
		e.Year, e.HouseholdSize, e.Jurisdiction)
}
