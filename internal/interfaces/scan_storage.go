package interfaces

import (
	"context"
	"errors"

	"github.com/floodlight/altmon/internal/models"
)

// ErrJobNotFound is returned when no current scan job exists
var ErrJobNotFound = errors.New("scan job not found")

// ErrFindingsNotFound is returned when a job has no findings collection
var ErrFindingsNotFound = errors.New("findings not found")

// ScanJobStorage persists scan jobs. Jobs are stored by id with a separate
// current-job pointer, so "the active scan" is an explicit slot rather than
// ambient global state. Callers guarantee single-writer discipline: steps
// for a job are never invoked concurrently with each other or with a
// cancel/start for the same job.
type ScanJobStorage interface {
	// GetCurrent returns the job the current pointer references.
	// Returns ErrJobNotFound when no job has been started.
	GetCurrent(ctx context.Context) (*models.ScanJob, error)

	// SaveCurrent upserts the job and points the current slot at it
	SaveCurrent(ctx context.Context, job *models.ScanJob) error

	// ClearCurrent removes the current pointer (the job row itself is kept
	// for the retrieval window)
	ClearCurrent(ctx context.Context) error
}

// FindingsStorage persists per-job findings collections. Collections are
// created once per job and only ever appended to.
type FindingsStorage interface {
	// Init creates an empty collection for the job, replacing any prior one
	Init(ctx context.Context, jobID string) error

	// Get returns the collection, or ErrFindingsNotFound
	Get(ctx context.Context, jobID string) (*models.FindingsCollection, error)

	// AddMany appends rows and updates severity counts in one write
	AddMany(ctx context.Context, jobID string, rows []models.Finding) error
}
