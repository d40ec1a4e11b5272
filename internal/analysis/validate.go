package analysis

import (
	"regexp"
	"strings"

	"github.com/dgallion1/casereport/internal/casefile"
)

// Finding categories, matching the counters in the analysis summary.
const (
	CategoryInnocenceIndicator     = "innocence_indicator"
	CategoryResponsibilityPressure = "responsibility_pressure"
	CategoryConsistencyIssue       = "consistency_issue"
	CategoryExternalEvidence       = "external_evidence"
)

var categoryAliases = map[string]string{
	"innocence_indicator":     CategoryInnocenceIndicator,
	"innocence_indicators":    CategoryInnocenceIndicator,
	"innocence_claim":         CategoryInnocenceIndicator,
	"responsibility_pressure": CategoryResponsibilityPressure,
	"consistency_issue":       CategoryConsistencyIssue,
	"consistency_issues":      CategoryConsistencyIssue,
	"inconsistency":           CategoryConsistencyIssue,
	"external_evidence":       CategoryExternalEvidence,
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeCategory maps the service's category spellings onto the four
// canonical categories. Unknown categories return "".
func NormalizeCategory(s string) string {
	key := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "_"), "_")
	return categoryAliases[key]
}

// ValidateFinding checks a finding for validity and normalizes its fields.
// Returns true if the finding should be kept.
func ValidateFinding(f *casefile.InnocenceFinding) bool {
	if f == nil {
		return false
	}
	f.Quote = strings.TrimSpace(f.Quote)
	if len(f.Quote) < 3 {
		return false
	}
	cat := NormalizeCategory(f.Category)
	if cat == "" {
		return false
	}
	f.Category = cat
	if f.Page < 0 || f.Line < 0 {
		return false
	}
	f.Speaker = strings.TrimSpace(f.Speaker)
	f.Significance = strings.TrimSpace(f.Significance)
	return true
}
