// Package report composes case records into paginated report documents.
package report

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dgallion1/casereport/internal/artifact"
	"github.com/dgallion1/casereport/internal/layout"
)

// Exporter renders reports. The zero value is not usable; Metrics is required.
type Exporter struct {
	Metrics  layout.Metrics
	Geometry layout.Geometry
	// Clock supplies the generated date and the file name timestamp.
	Clock        func() time.Time
	SinglePrefix string
	BatchPrefix  string
	Logger       *slog.Logger
}

// New returns an exporter with A4 geometry, the wall clock and default prefixes.
func New(m layout.Metrics, logger *slog.Logger) *Exporter {
	return &Exporter{
		Metrics:      m,
		Geometry:     layout.A4(),
		Clock:        time.Now,
		SinglePrefix: DefaultSinglePrefix,
		BatchPrefix:  DefaultBatchPrefix,
		Logger:       logger,
	}
}

// Report is a laid-out document plus the file name it will be saved under.
type Report struct {
	Document *layout.Document
	Stem     string
}

// FileName returns the report's file name for the given writer.
func (r *Report) FileName(w artifact.Writer) string {
	return r.Stem + w.Ext()
}

// Write finalizes the report into out.
func (e *Exporter) Write(out io.Writer, w artifact.Writer, r *Report) error {
	if err := w.Write(out, r.Document); err != nil {
		return fmt.Errorf("finalize %s: %w", r.FileName(w), err)
	}
	e.logger().Debug("report written", "file", r.FileName(w), "pages", len(r.Document.Pages))
	return nil
}

// Save finalizes the report into dir and returns the written path. When the
// file name is taken, as with two subjects of the same name rendered in the
// same millisecond, a numeric suffix is added instead of overwriting.
func (e *Exporter) Save(dir string, w artifact.Writer, r *Report) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, r.FileName(w))
	for n := 2; ; n++ {
		err := artifact.Save(path, w, r.Document)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrExist) || n > maxNameSuffix {
			return "", err
		}
		path = filepath.Join(dir, fmt.Sprintf("%s_%d%s", r.Stem, n, w.Ext()))
	}
	e.logger().Info("report saved", "path", path, "pages", len(r.Document.Pages))
	return path, nil
}

// maxNameSuffix bounds the search for a free file name.
const maxNameSuffix = 1000

func (e *Exporter) now() time.Time {
	if e.Clock == nil {
		return time.Now()
	}
	return e.Clock()
}

func (e *Exporter) geometry() layout.Geometry {
	if e.Geometry == (layout.Geometry{}) {
		return layout.A4()
	}
	return e.Geometry
}

func (e *Exporter) singlePrefix() string {
	if e.SinglePrefix == "" {
		return DefaultSinglePrefix
	}
	return e.SinglePrefix
}

func (e *Exporter) batchPrefix() string {
	if e.BatchPrefix == "" {
		return DefaultBatchPrefix
	}
	return e.BatchPrefix
}

func (e *Exporter) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}
