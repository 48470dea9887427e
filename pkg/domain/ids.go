// Package domain holds typed identifiers and domain primitives shared across
// the engine. Typed IDs prevent cross-type assignment at compile time: a
// ProgramID can never be passed where a RuleID is expected.
package domain

import (
	"github.com/google/uuid"

	dErrors "benefind/pkg/domain-errors"
)

type (
	// ProgramID identifies a benefit program definition.
	ProgramID uuid.UUID

	// RuleID identifies a single eligibility rule.
	RuleID uuid.UUID

	// RuleSetVersionID identifies a dated rule-set version.
	RuleSetVersionID uuid.UUID
)

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id must not be the nil UUID")
	}
	return u, nil
}

// ParseProgramID validates and returns a ProgramID.
func ParseProgramID(s string) (ProgramID, error) {
	u, err := parseUUID(s, "program")
	return ProgramID(u), err
}

// ParseRuleID validates and returns a RuleID.
func ParseRuleID(s string) (RuleID, error) {
	u, err := parseUUID(s, "rule")
	return RuleID(u), err
}

// ParseRuleSetVersionID validates and returns a RuleSetVersionID.
func ParseRuleSetVersionID(s string) (RuleSetVersionID, error) {
	u, err := parseUUID(s, "rule-set version")
	return RuleSetVersionID(u), err
}

// NewProgramID returns a fresh random ProgramID.
func NewProgramID() ProgramID { return ProgramID(uuid.New()) }

// NewRuleID returns a fresh random RuleID.
func NewRuleID() RuleID { return RuleID(uuid.New()) }

// NewRuleSetVersionID returns a fresh random RuleSetVersionID.
func NewRuleSetVersionID() RuleSetVersionID { return RuleSetVersionID(uuid.New()) }

func (id ProgramID) String() string        { return uuid.UUID(id).String() }
func (id RuleID) String() string           { return uuid.UUID(id).String() }
func (id RuleSetVersionID) String() string { return uuid.UUID(id).String() }

func (id ProgramID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id RuleID) IsNil() bool           { return uuid.UUID(id) == uuid.Nil }
func (id RuleSetVersionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
