package explain

import (
	"strings"
	"unicode"
)

// shortNames maps criterion ids to their plain-language short names. Unknown
// ids fall back to a camel-case-to-words conversion.
var shortNames = map[string]string{
	"income":           "household income",
	"householdSize":    "household size",
	"isResident":       "state residency",
	"age":              "age",
	"isPregnant":       "pregnancy status",
	"hasDisability":    "disability status",
	"isCitizen":        "citizenship or immigration status",
	"hasOtherCoverage": "other health coverage",
	"assets":           "countable assets",
	"isVeteran":        "veteran status",
}

// definitions carries optional longer glossary text for a criterion. Absence
// is fine; the explanation item simply omits the definition.
var definitions = map[string]string{
	"income":        "Total gross income for everyone in your household, before taxes and deductions.",
	"householdSize": "The number of people who live with you and share income and expenses, including yourself.",
	"isResident":    "Whether you currently live in the state where you are applying.",
	"isCitizen":     "Whether you are a U.S. citizen or hold a qualifying immigration status.",
	"assets":        "Savings, vehicles, and other resources your household owns that count toward program limits.",
}

// ShortName resolves the display name for a criterion id.
func ShortName(criterionID string) string {
	if name, ok := shortNames[criterionID]; ok {
		return name
	}
	return camelToWords(criterionID)
}

// Definition returns the glossary text for a criterion id, if any.
func Definition(criterionID string) string {
	return definitions[criterionID]
}

// camelToWords turns "householdSize" into "household size". Consecutive
// capitals stay together so "SSIStatus" reads "ssi status", not "s s i status".
func camelToWords(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prevLower := !unicode.IsUpper(runes[i-1])
			acronymEnd := i+1 < len(runes) && !unicode.IsUpper(runes[i+1])
			if prevLower || acronymEnd {
				b.WriteRune(' ')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
