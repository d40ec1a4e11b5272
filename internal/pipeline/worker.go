package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/casereport/internal/analysis"
	"github.com/dgallion1/casereport/internal/casefile"
	"github.com/dgallion1/casereport/internal/casestore"
	"github.com/dgallion1/casereport/internal/parser"
)

// Worker processes a single upload job.
type Worker struct {
	analyzer Analyzer
	cases    *casestore.Store
	parser   *parser.PDFParser
	log      *slog.Logger
	backoff  func(attempt int) time.Duration

	customSummary    bool
	summarySections  []string
	summaryMaxTokens int
}

// Process runs the full upload pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	defer job.releaseFile()
	data := job.FileData()

	// Phase 0: Dedup check
	if id, ok := w.cases.FindByHash(job.ContentHash); ok {
		log.Info("duplicate upload, skipping", "existing_case_id", id)
		job.SetCaseID(id)
		job.SetStatus(StatusDupSkipped, "dedup")
		return
	}

	// Phase 1: Preflight
	job.SetStatus(StatusPreflight, "preflight")
	if err := w.preflight(ctx, job, data); err != nil {
		log.Error("preflight failed", "error", err)
		job.AddError(fmt.Sprintf("preflight: %s", err))
		job.SetStatus(StatusFailed, "preflight")
		return
	}

	// Phase 2: Analyze with retry on transient errors.
	job.SetStatus(StatusAnalyzing, "analyzing")
	rec, err := w.analyze(ctx, job, data, log)
	if err != nil {
		log.Error("analysis failed", "error", err)
		job.AddError(fmt.Sprintf("analysis: %s", err))
		job.SetStatus(StatusFailed, "analyzing")
		return
	}
	if rec.ParoleSummaryError != "" {
		job.AddError("parole summary: " + rec.ParoleSummaryError)
	}
	if rec.InnocenceAnalysisError != "" {
		job.AddError("innocence analysis: " + rec.InnocenceAnalysisError)
	}

	if w.customSummary && rec.ParoleSummaryError == "" {
		w.applyCustomSummary(ctx, job, data, rec, log)
	}

	// Phase 3: Store
	job.SetStatus(StatusStoring, "storing")
	if rec.Filename == "" {
		rec.Filename = job.Filename
	}
	rec.ContentHash = job.ContentHash
	id := w.cases.Put(rec)
	job.SetCaseID(id)
	log.Info("case stored", "case_id", id, "name", rec.Name(), "partial", rec.Partial())

	if rec.Partial() {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
}

// preflight checks the file locally. When the local reader cannot open the
// file at all, the service's own extractor gets a chance before giving up.
func (w *Worker) preflight(ctx context.Context, job *Job, data []byte) error {
	res, err := w.parser.Preflight(data, job.Filename)
	if err == nil {
		job.SetPreflight(res.Pages, res.TextLength)
		return nil
	}
	if errors.Is(err, parser.ErrNotPDF) || errors.Is(err, parser.ErrNoText) {
		return err
	}

	w.log.Warn("local extraction failed, asking analysis service", "job_id", job.ID, "error", err)
	text, remoteErr := w.analyzer.ExtractText(ctx, job.Filename, data)
	if remoteErr != nil {
		return fmt.Errorf("%w; remote extraction: %v", err, remoteErr)
	}
	if strings.TrimSpace(text.ExtractedText) == "" {
		return parser.ErrNoText
	}
	job.SetPreflight(0, len(text.ExtractedText))
	return nil
}

func (w *Worker) analyze(ctx context.Context, job *Job, data []byte, log *slog.Logger) (*casefile.Record, error) {
	var lastErr error
	for attempt := range MaxRetries {
		job.IncrAttempts()
		rec, err := w.analyzer.Analyze(ctx, job.Filename, data)
		if err == nil {
			return rec, nil
		}
		lastErr = err
		if !IsRetryable(err) || attempt == MaxRetries-1 {
			break
		}
		log.Warn("retryable analysis error", "attempt", attempt, "error", err)
		select {
		case <-time.After(w.backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

// applyCustomSummary replaces the hearing summary with one generated from the
// configured section list. Failure keeps the standard summary.
func (w *Worker) applyCustomSummary(ctx context.Context, job *Job, data []byte, rec *casefile.Record, log *slog.Logger) {
	prompt := analysis.BuildSummaryPrompt(w.summarySections)
	res, err := w.analyzer.Process(ctx, job.Filename, data, prompt, w.summaryMaxTokens)
	if err != nil {
		log.Warn("custom summary failed, keeping standard summary", "error", err)
		job.AddError(fmt.Sprintf("custom summary: %s", err))
		return
	}
	if strings.TrimSpace(res.MarkdownSummary) == "" {
		return
	}
	rec.MarkdownSummary = res.MarkdownSummary
	if res.SummaryType != "" {
		rec.SummaryType = res.SummaryType
	}
}
