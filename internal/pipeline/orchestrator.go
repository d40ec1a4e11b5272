package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/casereport/internal/analysis"
	"github.com/dgallion1/casereport/internal/casefile"
	"github.com/dgallion1/casereport/internal/casestore"
	"github.com/dgallion1/casereport/internal/config"
	"github.com/dgallion1/casereport/internal/parser"
)

// ErrQueueFull is returned by Submit when no worker slot is free.
var ErrQueueFull = errors.New("job queue is full")

// ErrStopped is returned by Submit once Stop has been called.
var ErrStopped = errors.New("pipeline is stopped")

// Analyzer is the subset of the analysis client the pipeline uses.
type Analyzer interface {
	Analyze(ctx context.Context, filename string, data []byte) (*casefile.Record, error)
	Process(ctx context.Context, filename string, data []byte, prompt string, maxTokens int) (*analysis.ProcessResult, error)
	ExtractText(ctx context.Context, filename string, data []byte) (*analysis.TextResult, error)
}

// Orchestrator manages the upload pipeline.
type Orchestrator struct {
	jobs     *JobStore
	queue    chan *Job
	analyzer Analyzer
	cases    *casestore.Store
	parser   *parser.PDFParser
	log      *slog.Logger
	cfg      config.Config
	backoff  func(attempt int) time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex // guards stopped and sends on queue
	stopped bool
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, analyzer Analyzer, cases *casestore.Store, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:     NewJobStore(cfg.JobTTL),
		queue:    make(chan *Job, cfg.MaxQueueSize),
		analyzer: analyzer,
		cases:    cases,
		parser:   &parser.PDFParser{FallbackPdftotext: cfg.PDFFallbackPdftotext},
		log:      log,
		cfg:      cfg,
		backoff:  Backoff,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range max(o.cfg.WorkerCount, 1) {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := o.newWorker()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

func (o *Orchestrator) newWorker() *Worker {
	return &Worker{
		analyzer:         o.analyzer,
		cases:            o.cases,
		parser:           o.parser,
		log:              o.log,
		backoff:          o.backoff,
		customSummary:    o.cfg.CustomSummary,
		summarySections:  o.cfg.Report.SummarySections,
		summaryMaxTokens: o.cfg.SummaryMaxTokens,
	}
}

// Stop gracefully shuts down the pipeline.
// Calling it more than once is safe.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		job.AddError(ErrStopped.Error())
		job.SetStatus(StatusFailed, "stopped")
		return ErrStopped
	}
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.AddError(ErrQueueFull.Error())
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Cases returns the case store records are written to.
func (o *Orchestrator) Cases() *casestore.Store {
	return o.cases
}
