package domain

import (
	"strings"

	dErrors "benefind/pkg/domain-errors"
)

// JurisdictionCode is a two-letter region code (e.g. "IL", "CA"). Rule sets,
// program catalogues, and poverty-level tables are all scoped by it.
// This is a domain primitive that enforces validity at parse time.
type JurisdictionCode string

// ParseJurisdictionCode validates and normalizes a jurisdiction code.
// Codes are stored uppercase; lowercase input is accepted.
func ParseJurisdictionCode(s string) (JurisdictionCode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "jurisdiction code is required")
	}
	if len(s) != 2 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "jurisdiction code must be exactly two letters")
	}
	up := strings.ToUpper(s)
	for _, r := range up {
		if r < 'A' || r > 'Z' {
			return "", dErrors.New(dErrors.CodeInvalidInput, "jurisdiction code must contain only letters")
		}
	}
	return JurisdictionCode(up), nil
}

// String returns the string representation.
func (c JurisdictionCode) String() string {
	return string(c)
}

// IsNil returns true if the code is empty.
func (c JurisdictionCode) IsNil() bool {
	return c == ""
}
