package analysis

import (
	"fmt"
	"strings"
)

// DefaultSummarySections are the headings requested from /pdf/process when
// a custom summary is enabled.
var DefaultSummarySections = []string{
	"Offense Context",
	"Programming",
	"Parole Factors Cited",
	"Claim-of-Innocence Evidence",
	"Contradictions",
}

const summaryPreamble = `Please analyze this parole hearing document and provide a concise 1-page markdown summary.

Use a "## Parole Hearing Summary" heading followed by one "###" heading per section below.`

const citationRules = `For each major point, include citations with specific line numbers:
- Direct quotes: "Quote text" - (Speaker Name, Line X)
- Factual references: Information found at Line X-Y

Format as clean markdown with proper headings and bullet points. Keep it professional, factual, and under one page.`

// BuildSummaryPrompt creates the /pdf/process prompt for the given sections.
// An empty list uses DefaultSummarySections.
func BuildSummaryPrompt(sections []string) string {
	if len(sections) == 0 {
		sections = DefaultSummarySections
	}
	var sb strings.Builder
	sb.WriteString(summaryPreamble)
	sb.WriteString("\n\n")
	n := 0
	for _, s := range sections {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		n++
		sb.WriteString(fmt.Sprintf("%d. %s\n", n, s))
	}
	sb.WriteString("\n")
	sb.WriteString(citationRules)
	return sb.String()
}
