package report

import (
	"regexp"

	"github.com/dgallion1/casereport/internal/layout"
)

var (
	headingMarker = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]+`)
	boldMarker    = regexp.MustCompile(`\*\*(.*?)\*\*`)
	dashBullet    = regexp.MustCompile(`(?m)^([ \t]*)- `)
)

// NormalizeMarkdown flattens the hearing summary for plain-text rendering:
// heading markers are dropped, **bold** keeps only its inner text and dash
// bullets become bullet glyphs.
func NormalizeMarkdown(s string) string {
	s = headingMarker.ReplaceAllString(s, "")
	s = boldMarker.ReplaceAllString(s, "$1")
	return dashBullet.ReplaceAllString(s, "${1}"+layout.Bullet+" ")
}
