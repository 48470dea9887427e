package handler

import (
	"fmt"
	"time"

	"benefind/internal/eligibility/models"
	"benefind/pkg/domain"
	dErrors "benefind/pkg/domain-errors"
)

const maxAnswers = 200

// EvaluateRequest is the HTTP request body for POST /eligibility/evaluate.
type EvaluateRequest struct {
	Jurisdiction  string         `json:"jurisdiction"`
	EffectiveDate string         `json:"effective_date,omitempty"`
	Answers       map[string]any `json:"answers"`

	// Parsed values (populated by Validate)
	parsedJurisdiction domain.JurisdictionCode
	parsedDate         time.Time
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *EvaluateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	jurisdiction, err := domain.ParseJurisdictionCode(r.Jurisdiction)
	if err != nil {
		return err
	}
	r.parsedJurisdiction = jurisdiction

	if r.EffectiveDate != "" {
		date, err := time.Parse("2006-01-02", r.EffectiveDate)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "effective_date must be formatted YYYY-MM-DD")
		}
		r.parsedDate = date
	}

	if len(r.Answers) > maxAnswers {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("at most %d answers are accepted", maxAnswers))
	}
	for key, value := range r.Answers {
		if key == "" {
			return dErrors.New(dErrors.CodeValidation, "answer keys must not be empty")
		}
		switch value.(type) {
		case nil, bool, float64, string:
		default:
			return dErrors.New(dErrors.CodeValidation,
				fmt.Sprintf("answer %q must be a boolean, number, string, or null", key))
		}
	}
	return nil
}

// ToModel builds the domain request from the validated body.
func (r *EvaluateRequest) ToModel() models.EligibilityRequest {
	return models.EligibilityRequest{
		Jurisdiction:  r.parsedJurisdiction,
		EffectiveDate: r.parsedDate,
		Answers:       r.Answers,
	}
}
