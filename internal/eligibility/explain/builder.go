// Package explain turns an evaluation's criterion outcomes into the
// plain-language text shown to the person being screened. Input is three
// disjoint sets of criterion ids: met, unmet, and missing (unanswered).
package explain

import (
	"fmt"
	"sort"
	"strings"

	"benefind/internal/eligibility/models"
)

const reviewSuffix = "Please review the details above."

// Build produces the ordered explanation items: met first, then unmet, then
// missing, each set sorted by criterion id so output is deterministic.
func Build(met, unmet, missing []string) []models.ExplanationItem {
	items := make([]models.ExplanationItem, 0, len(met)+len(unmet)+len(missing))
	for _, id := range sorted(met) {
		items = append(items, item(id, models.CriterionMet,
			fmt.Sprintf("You meet the %s requirement.", ShortName(id))))
	}
	for _, id := range sorted(unmet) {
		items = append(items, item(id, models.CriterionUnmet,
			fmt.Sprintf("You do not meet the %s requirement.", ShortName(id))))
	}
	for _, id := range sorted(missing) {
		items = append(items, item(id, models.CriterionMissing,
			fmt.Sprintf("We could not check the %s requirement because it was not answered.", ShortName(id))))
	}
	return items
}

func item(id string, status models.CriterionStatus, message string) models.ExplanationItem {
	return models.ExplanationItem{
		CriterionID: id,
		Message:     message,
		Status:      status,
		Definition:  Definition(id),
	}
}

// Summary produces the one-sentence overview. Template selection: fully
// eligible when only met is populated; ineligible when unmet is populated and
// nothing is missing; partial whenever anything is missing; a generic
// cannot-determine sentence otherwise.
func Summary(met, unmet, missing []string) string {
	switch {
	case len(missing) > 0:
		return partialSummary(met, unmet, missing)
	case len(unmet) > 0:
		return ineligibleSummary(unmet)
	case len(met) > 0:
		return fmt.Sprintf("Good news: you appear to meet the screened requirements (%s).",
			joinNames(met))
	default:
		return "We could not determine your eligibility from the information provided."
	}
}

func ineligibleSummary(unmet []string) string {
	noun := "requirements"
	if len(unmet) == 1 {
		noun = "requirement"
	}
	return fmt.Sprintf("Based on your answers, you do not meet the %s %s.",
		joinNames(unmet), noun)
}

func partialSummary(met, unmet, missing []string) string {
	var clauses []string
	if len(met) > 0 {
		clauses = append(clauses, fmt.Sprintf("You meet: %s.", joinNames(met)))
	}
	if len(unmet) > 0 {
		clauses = append(clauses, fmt.Sprintf("You do not meet: %s.", joinNames(unmet)))
	}
	clauses = append(clauses, fmt.Sprintf("We still need: %s.", joinNames(missing)))
	clauses = append(clauses, reviewSuffix)
	return strings.Join(clauses, " ")
}

func joinNames(ids []string) string {
	names := make([]string, 0, len(ids))
	for _, id := range sorted(ids) {
		names = append(names, ShortName(id))
	}
	return strings.Join(names, ", ")
}

func sorted(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	sort.Strings(out)
	return out
}
