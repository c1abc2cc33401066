package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/floodlight/altmon/internal/interfaces"
	"github.com/floodlight/altmon/internal/models"
)

const currentJobSlot = "current_scan_job"

// currentJobPointer references the active scan job. Jobs are stored by id;
// the pointer makes "the current scan" an explicit slot so a new start can
// overwrite it without touching prior job rows.
type currentJobPointer struct {
	Slot  string `badgerhold:"key"`
	JobID string
}

// ScanJobStorage implements the ScanJobStorage interface for Badger
type ScanJobStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewScanJobStorage creates a new ScanJobStorage instance
func NewScanJobStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ScanJobStorage {
	return &ScanJobStorage{
		db:     db,
		logger: logger,
	}
}

// GetCurrent resolves the current pointer to its job row
func (s *ScanJobStorage) GetCurrent(ctx context.Context) (*models.ScanJob, error) {
	var pointer currentJobPointer
	err := s.db.Store().Get(currentJobSlot, &pointer)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current job pointer: %w", err)
	}

	var job models.ScanJob
	err = s.db.Store().Get(pointer.JobID, &job)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan job: %w", err)
	}

	return &job, nil
}

// SaveCurrent upserts the job row and points the current slot at it
func (s *ScanJobStorage) SaveCurrent(ctx context.Context, job *models.ScanJob) error {
	if job.ID == "" {
		return fmt.Errorf("scan job ID is required")
	}

	if err := s.db.Store().Upsert(job.ID, job); err != nil {
		return fmt.Errorf("failed to save scan job: %w", err)
	}

	pointer := currentJobPointer{Slot: currentJobSlot, JobID: job.ID}
	if err := s.db.Store().Upsert(currentJobSlot, &pointer); err != nil {
		return fmt.Errorf("failed to save current job pointer: %w", err)
	}

	return nil
}

// ClearCurrent removes the current pointer, keeping the job row for the
// retrieval window
func (s *ScanJobStorage) ClearCurrent(ctx context.Context) error {
	err := s.db.Store().Delete(currentJobSlot, &currentJobPointer{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to clear current job pointer: %w", err)
	}
	return nil
}
