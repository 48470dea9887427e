package handler

import (
	"time"

	"benefind/internal/eligibility/models"
	"benefind/pkg/domain"
)

// EvaluateResponse is the HTTP response for POST /eligibility/evaluate.
type EvaluateResponse struct {
	Status         string                    `json:"status"`
	Matches        []ProgramMatchResponse    `json:"matches"`
	Confidence     int                       `json:"confidence"`
	Level          string                    `json:"confidence_level"`
	Summary        string                    `json:"summary"`
	Items          []ExplanationItemResponse `json:"items"`
	RuleSetVersion string                    `json:"rule_set_version"`
	EvaluatedAt    time.Time                 `json:"evaluated_at"`
}

// ProgramMatchResponse is one matched program in the response.
type ProgramMatchResponse struct {
	ProgramCode string `json:"program_code"`
	ProgramName string `json:"program_name"`
	Confidence  int    `json:"confidence"`
	Level       string `json:"confidence_level"`
	Explanation string `json:"explanation"`
}

// ExplanationItemResponse is one narrated criterion in the response.
type ExplanationItemResponse struct {
	CriterionID string `json:"criterion_id"`
	Message     string `json:"message"`
	Status      string `json:"status"`
	Definition  string `json:"definition,omitempty"`
}

// FromResult converts a domain EligibilityResult to an HTTP response.
func FromResult(result *models.EligibilityResult) *EvaluateResponse {
	resp := &EvaluateResponse{
		Status:         string(result.Status),
		Matches:        make([]ProgramMatchResponse, 0, len(result.Matches)),
		Confidence:     result.Confidence,
		Level:          string(result.Level),
		Summary:        result.Summary,
		Items:          make([]ExplanationItemResponse, 0, len(result.Items)),
		RuleSetVersion: result.RuleSetVersion,
		EvaluatedAt:    result.EvaluatedAt,
	}
	for _, m := range result.Matches {
		resp.Matches = append(resp.Matches, ProgramMatchResponse{
			ProgramCode: m.ProgramCode,
			ProgramName: m.ProgramName,
			Confidence:  m.Confidence,
			Level:       string(m.Level),
			Explanation: m.Explanation,
		})
	}
	for _, item := range result.Items {
		resp.Items = append(resp.Items, ExplanationItemResponse{
			CriterionID: item.CriterionID,
			Message:     item.Message,
			Status:      string(item.Status),
			Definition:  item.Definition,
		})
	}
	return resp
}

// RefreshResponse is the HTTP response for POST /admin/cache/refresh.
type RefreshResponse struct {
	Refreshed []string          `json:"refreshed"`
	Failed    map[string]string `json:"failed,omitempty"`
}

// FromRefresh converts RefreshAll results to an HTTP response.
func FromRefresh(refreshed []domain.JurisdictionCode, failed map[domain.JurisdictionCode]error) *RefreshResponse {
	resp := &RefreshResponse{Refreshed: make([]string, 0, len(refreshed))}
	for _, j := range refreshed {
		resp.Refreshed = append(resp.Refreshed, j.String())
	}
	if len(failed) > 0 {
		resp.Failed = make(map[string]string, len(failed))
		for j, err := range failed {
			resp.Failed[j.String()] = err.Error()
		}
	}
	return resp
}

// ThresholdResponse is the HTTP response for GET /fpl/threshold.
type ThresholdResponse struct {
	Year           int     `json:"year"`
	HouseholdSize  int     `json:"household_size"`
	Percentage     float64 `json:"percentage"`
	Jurisdiction   string  `json:"jurisdiction,omitempty"`
	ThresholdCents int64   `json:"threshold_cents"`
}
