package report

import (
	"log/slog"

	"github.com/dgallion1/casereport/internal/artifact"
	"github.com/dgallion1/casereport/internal/config"
	"github.com/dgallion1/casereport/internal/layout"
)

// Creator is recorded in PDF metadata.
const Creator = "casereport"

// FromSettings returns an exporter using the configured geometry and prefixes.
func FromSettings(m layout.Metrics, s config.ReportSettings, logger *slog.Logger) *Exporter {
	e := New(m, logger)
	e.Geometry = s.Geometry()
	if s.SinglePrefix != "" {
		e.SinglePrefix = s.SinglePrefix
	}
	if s.BatchPrefix != "" {
		e.BatchPrefix = s.BatchPrefix
	}
	return e
}

// WriterFor resolves format, falling back to the configured one, and applies
// document metadata.
func WriterFor(format string, s config.ReportSettings) (artifact.Writer, error) {
	if format == "" {
		format = s.Format
	}
	wr, err := artifact.ForFormat(format)
	if err != nil {
		return nil, err
	}
	if p, ok := wr.(*artifact.PDF); ok {
		p.Author = s.Author
		p.Creator = Creator
	}
	return wr, nil
}
