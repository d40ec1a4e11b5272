package report

import (
	"fmt"
	"strings"
	"time"
)

// Default file name prefixes.
const (
	DefaultSinglePrefix = "parole_case"
	DefaultBatchPrefix  = "all_parole_cases"
)

// subjectSlug turns a person's name into a file-name component: whitespace
// runs become underscores and path separators are removed.
func subjectSlug(name string) string {
	name = strings.Join(strings.Fields(name), "_")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}

// SingleStem is the extension-less file name for one subject's report.
func SingleStem(prefix, name string, at time.Time) string {
	return fmt.Sprintf("%s_%s_%d", prefix, subjectSlug(name), at.UnixMilli())
}

// BatchStem is the extension-less file name for the all-cases report.
func BatchStem(prefix string, at time.Time) string {
	return fmt.Sprintf("%s_%d", prefix, at.UnixMilli())
}
