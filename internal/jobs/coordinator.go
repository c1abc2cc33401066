// -----------------------------------------------------------------------
// Job Coordinator - Single active scan, advanced one bounded batch per step
// -----------------------------------------------------------------------

package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/floodlight/altmon/internal/interfaces"
	"github.com/floodlight/altmon/internal/models"
	"github.com/floodlight/altmon/internal/scanner"
)

// Options fixes the per-scan configuration. The rule config is snapshotted
// at coordinator construction and never mutated mid-scan.
type Options struct {
	MediaBatchSize   int
	ContentBatchSize int
	Rules            models.RuleConfig
	Scope            models.ScanScope
}

// DefaultOptions mirrors the stock settings: media batches of 25, smaller
// content batches reflecting the heavier per-record recursive work.
func DefaultOptions() Options {
	return Options{
		MediaBatchSize:   25,
		ContentBatchSize: 10,
		Rules:            models.DefaultRuleConfig(),
		Scope:            models.DefaultScanScope(),
	}
}

// Coordinator owns the active scan's state machine and cursor. Each Step
// call advances exactly one bounded batch and persists the new state; the
// caller supplies the tick by invoking Step repeatedly until a terminal
// status is observed. Callers must not invoke Step concurrently with each
// other or with Start/Cancel.
type Coordinator struct {
	jobStore interfaces.ScanJobStorage
	findings interfaces.FindingsStorage
	media    *scanner.MediaScanner
	content  *scanner.ContentScanner
	opts     Options
	logger   arbor.ILogger
}

// NewCoordinator creates a scan coordinator
func NewCoordinator(jobStore interfaces.ScanJobStorage, findings interfaces.FindingsStorage, media *scanner.MediaScanner, content *scanner.ContentScanner, opts Options, logger arbor.ILogger) *Coordinator {
	if opts.MediaBatchSize <= 0 {
		opts.MediaBatchSize = DefaultOptions().MediaBatchSize
	}
	if opts.ContentBatchSize <= 0 {
		opts.ContentBatchSize = DefaultOptions().ContentBatchSize
	}
	return &Coordinator{
		jobStore: jobStore,
		findings: findings,
		media:    media,
		content:  content,
		opts:     opts,
		logger:   logger,
	}
}

// Start discards any existing job and creates a fresh running job with a
// zero cursor. Last start wins; there is no queue.
func (c *Coordinator) Start(ctx context.Context, scanType models.ScanType) (*models.ScanJob, error) {
	job := models.NewScanJob(scanType)
	if err := c.jobStore.SaveCurrent(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to persist scan job: %w", err)
	}

	c.logger.Info().
		Str("job_id", job.ID).
		Str("type", string(scanType)).
		Msg("Scan job started")

	return job, nil
}

// Step advances the current job by one bounded batch. It is an idempotent
// no-op when no job exists or the job is terminal. Batch failures and
// unrecognized job types are recorded on the job, never propagated.
func (c *Coordinator) Step(ctx context.Context) (*models.ScanJob, error) {
	job, err := c.jobStore.GetCurrent(ctx)
	if err != nil {
		if errors.Is(err, interfaces.ErrJobNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load scan job: %w", err)
	}
	if job.Status != models.JobStatusRunning {
		return job, nil
	}

	if !job.FindingsReady {
		if err := c.findings.Init(ctx, job.ID); err != nil {
			return nil, fmt.Errorf("failed to initialize findings: %w", err)
		}
		job.FindingsReady = true
	}

	var result *scanner.BatchResult
	switch job.Type {
	case models.ScanTypeMedia:
		result, err = c.media.ScanBatch(ctx, job.Cursor.Offset, c.opts.MediaBatchSize, c.opts.Rules)
	case models.ScanTypeContent:
		result, err = c.content.ScanBatch(ctx, job.Cursor.Offset, c.opts.ContentBatchSize, c.opts.Scope, c.opts.Rules)
	default:
		job.MarkError("Unknown scan type.", fmt.Sprintf("unrecognized scan type %q", job.Type))
		if saveErr := c.jobStore.SaveCurrent(ctx, job); saveErr != nil {
			return nil, fmt.Errorf("failed to persist scan job: %w", saveErr)
		}
		return job, nil
	}

	if err != nil {
		c.logger.Warn().Str("job_id", job.ID).Err(err).Msg("Scan batch failed")
		job.MarkError("Scan failed.", err.Error())
		if saveErr := c.jobStore.SaveCurrent(ctx, job); saveErr != nil {
			return nil, fmt.Errorf("failed to persist scan job: %w", saveErr)
		}
		return job, nil
	}

	if len(result.Rows) > 0 {
		if err := c.findings.AddMany(ctx, job.ID, result.Rows); err != nil {
			return nil, fmt.Errorf("failed to store findings: %w", err)
		}
	}

	job.Cursor.Offset = result.NextOffset
	job.Progress.Current = result.NextOffset
	job.Progress.Total = result.Total

	if result.Done {
		job.MarkCompleted(completionMessage(job.Type))
	} else {
		job.Message = progressMessage(job.Type)
		job.Touch()
	}

	if err := c.jobStore.SaveCurrent(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to persist scan job: %w", err)
	}

	return job, nil
}

// Cancel transitions a running job to cancelled. Work already returned by a
// scanner before the cancel is kept. Returns nil when no job exists.
func (c *Coordinator) Cancel(ctx context.Context) (*models.ScanJob, error) {
	job, err := c.jobStore.GetCurrent(ctx)
	if err != nil {
		if errors.Is(err, interfaces.ErrJobNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load scan job: %w", err)
	}
	if job.Status != models.JobStatusRunning {
		return job, nil
	}

	job.MarkCancelled()
	if err := c.jobStore.SaveCurrent(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to persist scan job: %w", err)
	}

	c.logger.Info().Str("job_id", job.ID).Msg("Scan job cancelled")
	return job, nil
}

// Current returns the current job, or nil when none has been started
func (c *Coordinator) Current(ctx context.Context) (*models.ScanJob, error) {
	job, err := c.jobStore.GetCurrent(ctx)
	if err != nil {
		if errors.Is(err, interfaces.ErrJobNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load scan job: %w", err)
	}
	return job, nil
}

// Findings returns a job's findings collection, or nil when none exists
func (c *Coordinator) Findings(ctx context.Context, jobID string) (*models.FindingsCollection, error) {
	collection, err := c.findings.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, interfaces.ErrFindingsNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load findings: %w", err)
	}
	return collection, nil
}

func progressMessage(scanType models.ScanType) string {
	if scanType == models.ScanTypeContent {
		return "Scanning content records."
	}
	return "Scanning media library."
}

func completionMessage(scanType models.ScanType) string {
	if scanType == models.ScanTypeContent {
		return "Content scan completed."
	}
	return "Media scan completed."
}
