package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/floodlight/altmon/internal/jobs"
	"github.com/floodlight/altmon/internal/models"
)

// Service runs scheduled scans and drives them to completion. Manual scans
// started over HTTP are advanced by the caller polling the step endpoint;
// scheduled scans have no external driver, so the service steps them itself
// on a fixed interval until the job reaches a terminal status.
type Service struct {
	coordinator  *jobs.Coordinator
	cron         *cron.Cron
	logger       arbor.ILogger
	stepInterval time.Duration
	scanType     models.ScanType

	mu           sync.Mutex
	started      bool          // cron is registered and running
	scanInFlight bool          // a scheduled scan is currently being driven
	quit         chan struct{} // closed by Stop to interrupt the step loop
	cronID       cron.EntryID
	lastRun      *time.Time
	lastError    string
}

// NewService creates a new scheduler service
func NewService(coordinator *jobs.Coordinator, scanType models.ScanType, stepInterval time.Duration, logger arbor.ILogger) *Service {
	return &Service{
		coordinator:  coordinator,
		cron:         cron.New(),
		logger:       logger,
		stepInterval: stepInterval,
		scanType:     scanType,
	}
}

// Start begins the scheduler with the given cron expression
func (s *Service) Start(cronExpr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("scheduler already running")
	}

	id, err := s.cron.AddFunc(cronExpr, func() {
		if err := s.runScheduledScan(); err != nil {
			s.logger.Error().Err(err).Msg("Scheduled scan failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to register scheduled scan: %w", err)
	}

	s.cronID = id
	s.quit = make(chan struct{})
	s.cron.Start()
	s.started = true

	s.logger.Info().
		Str("schedule", cronExpr).
		Str("scan_type", string(s.scanType)).
		Msg("Scheduler started")

	return nil
}

// Stop halts the scheduler. An in-flight scheduled scan is interrupted
// between batches; the persisted cursor lets a later step resume it.
// The wait for cron to drain must happen outside the lock, since the
// scan loop takes the lock to clear its in-flight state on exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	close(s.quit)
	s.mu.Unlock()

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.logger.Info().Msg("Scheduler stopped")
}

// IsRunning reports whether a scheduled scan is currently being driven
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scanInFlight
}

// LastRun returns the start time of the most recent scheduled scan
func (s *Service) LastRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

// runScheduledScan starts a scan and steps it until terminal. Only one
// scheduled scan runs at a time; overlapping cron fires are skipped.
func (s *Service) runScheduledScan() error {
	s.mu.Lock()
	if s.scanInFlight {
		s.mu.Unlock()
		s.logger.Warn().Msg("Scheduled scan skipped: previous run still in progress")
		return nil
	}
	s.scanInFlight = true
	now := time.Now()
	s.lastRun = &now
	quit := s.quit
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.scanInFlight = false
		s.mu.Unlock()
	}()

	ctx := context.Background()

	job, err := s.coordinator.Start(ctx, s.scanType)
	if err != nil {
		s.recordError(err)
		return fmt.Errorf("failed to start scheduled scan: %w", err)
	}

	s.logger.Info().
		Str("job_id", job.ID).
		Str("scan_type", string(s.scanType)).
		Msg("Scheduled scan started")

	if err := s.driveToCompletion(ctx, quit); err != nil {
		s.recordError(err)
		return err
	}

	s.mu.Lock()
	s.lastError = ""
	s.mu.Unlock()
	return nil
}

// driveToCompletion steps the current job on the configured interval until
// it reports a terminal status or the scheduler is stopped
func (s *Service) driveToCompletion(ctx context.Context, quit <-chan struct{}) error {
	ticker := time.NewTicker(s.stepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-quit:
			s.logger.Info().Msg("Scheduler stopping, leaving scan for a later driver")
			return nil
		case <-ticker.C:
		}

		job, err := s.coordinator.Step(ctx)
		if err != nil {
			return fmt.Errorf("scheduled scan step failed: %w", err)
		}
		if job == nil {
			// Job slot was cleared underneath us, nothing left to drive
			return nil
		}
		if job.IsTerminal() {
			s.logger.Info().
				Str("job_id", job.ID).
				Str("status", string(job.Status)).
				Int("scanned", job.Progress.Current).
				Int("total", job.Progress.Total).
				Msg("Scheduled scan finished")
			return nil
		}
	}
}

func (s *Service) recordError(err error) {
	s.mu.Lock()
	s.lastError = err.Error()
	s.mu.Unlock()
}
