// Package engine orchestrates repository analysis: it wires the walker, the
// worker pool, and the analyzers into one pipeline, and exposes it both as a
// blocking call and as an asynchronous submit/poll job interface.
package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/omniforge/omniforge/internal/analyzer"
	"github.com/omniforge/omniforge/internal/fileproc"
	"github.com/omniforge/omniforge/internal/report"
	"github.com/omniforge/omniforge/internal/walker"
	"github.com/omniforge/omniforge/pkg/config"
	"github.com/omniforge/omniforge/pkg/lang"
	"github.com/omniforge/omniforge/pkg/models"
	"github.com/omniforge/omniforge/pkg/parser"
)

// progressCeiling is the highest progress value reported while per-file work
// is still running; 100 is reserved for the finalize step, so a poller never
// sees 100 before the result exists.
const progressCeiling = 95

// Engine runs analyses. It is safe for concurrent use; each analysis gets
// its own walker stream and worker pool.
type Engine struct {
	cfg     *config.Config
	log     *logrus.Logger
	metrics *analyzer.MetricsAnalyzer
	scanner *analyzer.SecurityScanner

	mu   sync.Mutex
	jobs map[string]*jobRecord
	// jobOrder preserves submission order; terminal jobs are evicted oldest
	// first once retention is exceeded.
	jobOrder []string
}

// jobRecord is the engine-owned live job. The embedded Job is mutated under
// Engine.mu; Poll hands out copies.
type jobRecord struct {
	job    models.Job
	cancel context.CancelFunc
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger replaces the default logger.
func WithLogger(log *logrus.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithCatalog overrides the security pattern catalog, bypassing the
// configured catalog path.
func WithCatalog(catalog *analyzer.Catalog) Option {
	return func(e *Engine) { e.scanner = analyzer.NewSecurity(catalog) }
}

// New creates an engine from configuration. The security catalog is loaded
// from cfg.Security.CatalogPath when set, otherwise the built-in catalog is
// used.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	e := &Engine{
		cfg:     cfg,
		log:     log,
		metrics: analyzer.NewMetrics(cfg.Analysis.MaxFileSizeFullLoad),
		jobs:    map[string]*jobRecord{},
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.scanner == nil {
		if cfg.Security.CatalogPath != "" {
			catalog, err := analyzer.LoadCatalog(cfg.Security.CatalogPath)
			if err != nil {
				return nil, fmt.Errorf("load security catalog: %w", err)
			}
			e.scanner = analyzer.NewSecurity(catalog)
		} else {
			e.scanner = analyzer.NewSecurity(analyzer.DefaultCatalog())
		}
	}

	return e, nil
}

// RunSynchronous analyzes root and blocks until the report is ready or ctx
// ends. The result is all-or-nothing: a complete report, or an error and no
// report. Deadline expiry maps to ErrTimeout, cancellation to ErrCancelled.
func (e *Engine) RunSynchronous(ctx context.Context, root string) (*models.AnalysisReport, error) {
	if err := walker.Validate(root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRepositoryInvalid, err)
	}
	return e.runPipeline(ctx, root, nil)
}

// Submit validates root and starts an asynchronous analysis, returning the
// job id. No job is created for an invalid root.
func (e *Engine) Submit(root string) (string, error) {
	if err := walker.Validate(root); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRepositoryInvalid, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()
	rec := &jobRecord{
		job: models.Job{
			ID:          id,
			Root:        root,
			State:       models.JobPending,
			SubmittedAt: time.Now(),
		},
		cancel: cancel,
	}

	e.mu.Lock()
	e.jobs[id] = rec
	e.jobOrder = append(e.jobOrder, id)
	e.mu.Unlock()

	e.log.WithFields(logrus.Fields{"job": id, "root": root}).Info("job submitted")
	go e.runJob(ctx, rec)

	return id, nil
}

// Poll returns a snapshot of the job. Unknown or evicted ids return
// ErrJobNotFound.
func (e *Engine) Poll(id string) (models.Job, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.jobs[id]
	if !ok {
		return models.Job{}, ErrJobNotFound
	}

	snapshot := rec.job
	if rec.job.FinishedAt != nil {
		t := *rec.job.FinishedAt
		snapshot.FinishedAt = &t
	}
	return snapshot, nil
}

// Cancel signals the job's context. Workers stop pulling new files and
// in-flight files finish; the job then ends failed. Cancelling a terminal
// job is a no-op.
func (e *Engine) Cancel(id string) error {
	e.mu.Lock()
	rec, ok := e.jobs[id]
	e.mu.Unlock()
	if !ok {
		return ErrJobNotFound
	}

	rec.cancel()
	return nil
}

// runJob drives one asynchronous job through its lifecycle.
func (e *Engine) runJob(ctx context.Context, rec *jobRecord) {
	defer rec.cancel()

	e.setJobState(rec, models.JobRunning)

	result, err := e.runPipeline(ctx, rec.job.Root, func(pct int) {
		e.mu.Lock()
		if pct > rec.job.Progress && rec.job.State == models.JobRunning {
			rec.job.Progress = pct
		}
		e.mu.Unlock()
	})

	now := time.Now()
	e.mu.Lock()
	rec.job.FinishedAt = &now
	if err != nil {
		rec.job.State = models.JobFailed
		rec.job.Error = err.Error()
	} else {
		rec.job.State = models.JobCompleted
		rec.job.Progress = 100
		rec.job.Result = result
	}
	e.evictLocked()
	e.mu.Unlock()

	if err != nil {
		e.log.WithFields(logrus.Fields{"job": rec.job.ID}).WithError(err).Warn("job failed")
	} else {
		e.log.WithFields(logrus.Fields{"job": rec.job.ID}).Info("job completed")
	}
}

func (e *Engine) setJobState(rec *jobRecord, state models.JobState) {
	e.mu.Lock()
	rec.job.State = state
	e.mu.Unlock()
}

// evictLocked drops the oldest terminal jobs beyond the retention bound.
// Running and pending jobs are never evicted. Caller holds e.mu.
func (e *Engine) evictLocked() {
	retention := e.cfg.Jobs.Retention
	if retention <= 0 {
		return
	}

	terminal := 0
	for _, id := range e.jobOrder {
		if e.jobs[id].job.State.Terminal() {
			terminal++
		}
	}

	if terminal <= retention {
		return
	}

	kept := e.jobOrder[:0]
	for _, id := range e.jobOrder {
		if terminal > retention && e.jobs[id].job.State.Terminal() {
			delete(e.jobs, id)
			terminal--
			continue
		}
		kept = append(kept, id)
	}
	e.jobOrder = kept
}

// fileOutcome is one worker's result for one file.
type fileOutcome struct {
	metrics  models.FileMetrics
	findings []models.SecurityFinding
	edges    []models.DependencyEdge
	source   models.SourceFile
}

// runPipeline executes discovery, per-file analysis, and aggregation.
// onProgress, when non-nil, receives percentages in [0, 95] during per-file
// work; the caller reports 100 after the report exists.
func (e *Engine) runPipeline(ctx context.Context, root string, onProgress func(pct int)) (*models.AnalysisReport, error) {
	start := time.Now()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRepositoryInvalid, err)
	}

	w := walker.New(e.cfg)
	stream, err := w.Walk(ctx, absRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRepositoryInvalid, err)
	}

	deps := analyzer.NewDeps(absRoot)

	// The forwarder counts discovery so progress can be expressed as a
	// fraction of files seen so far, and retains the file list for the
	// architecture pass.
	var discovered atomic.Int64
	var done atomic.Int64
	var allFiles []models.SourceFile
	forwarded := make(chan models.SourceFile, 64)
	forwarderDone := make(chan struct{})
	go func() {
		defer close(forwarded)
		defer close(forwarderDone)
		for f := range stream.Files {
			discovered.Add(1)
			allFiles = append(allFiles, f)
			select {
			case forwarded <- f:
			case <-ctx.Done():
				// Drain so the walker can finish and close the stream.
				for range stream.Files {
				}
				return
			}
		}
	}()

	var issueMu sync.Mutex
	var issues []models.Issue
	addIssue := func(file models.SourceFile, err error) {
		issueMu.Lock()
		issues = append(issues, models.Issue{Path: file.Path, Reason: err.Error()})
		issueMu.Unlock()
	}

	reportProgress := func() {
		n := done.Add(1)
		if onProgress == nil {
			return
		}
		total := discovered.Load()
		if total == 0 {
			return
		}
		onProgress(int(n * progressCeiling / total))
	}

	outcomes := fileproc.ForEachSource(ctx, forwarded, e.cfg.Analysis.Workers,
		func(psr *parser.Parser, file models.SourceFile) (fileOutcome, error) {
			content, sniff, err := analyzer.ReadForAnalysis(file, e.cfg.Analysis.MaxFileSizeFullLoad)
			if err != nil {
				return fileOutcome{}, err
			}
			file.Language = lang.DetectWithContent(file.AbsPath, sniff)

			out := fileOutcome{source: file}
			out.metrics, err = e.metrics.AnalyzeFile(psr, file, content)
			if err != nil {
				// Binary or unreadable content: the file still counts, but
				// it carries no measurable metrics.
				addIssue(file, err)
				return out, nil
			}

			out.findings = e.scanner.ScanFile(file, content)
			out.edges = deps.ExtractFile(file, content)
			return out, nil
		},
		func(models.SourceFile) { reportProgress() },
		addIssue,
	)

	// Barrier: everything past this point sees the complete result set.
	<-forwarderDone
	if err := ctx.Err(); err != nil {
		return nil, mapContextErr(err)
	}
	if err := stream.Err(); err != nil {
		if mapped := mapContextErr(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	issues = append(issues, stream.Issues()...)

	var (
		files    []models.FileMetrics
		findings []models.SecurityFinding
		edges    []models.DependencyEdge
	)
	for _, o := range outcomes {
		files = append(files, o.metrics)
		findings = append(findings, o.findings...)
		edges = append(edges, o.edges...)
	}

	arch := analyzer.ClassifyArchitecture(allFiles, edges)

	builder := report.NewBuilder(e.cfg.Limits)
	rep := builder.Build(report.Input{
		Repository: models.RepositoryDescriptor{
			Root:         absRoot,
			DiscoveredAt: start,
			TotalFiles:   int(discovered.Load()),
		},
		Files:          files,
		Findings:       findings,
		Dependencies:   edges,
		Issues:         issues,
		Architecture:   arch,
		CatalogVersion: e.scanner.Catalog().Version(),
		GeneratedAt:    time.Now(),
	})

	e.log.WithFields(logrus.Fields{
		"root":     root,
		"files":    rep.Stats.TotalFiles,
		"findings": len(rep.Findings),
		"elapsed":  time.Since(start),
	}).Debug("analysis finished")

	return rep, nil
}

// mapContextErr translates context termination into the engine's sentinels.
func mapContextErr(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	case errors.Is(err, context.Canceled):
		return ErrCancelled
	default:
		return err
	}
}
