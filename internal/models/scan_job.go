// -----------------------------------------------------------------------
// Scan Job - Persisted run state for one scan, advanced one batch per step
// -----------------------------------------------------------------------

package models

import (
	"time"

	"github.com/google/uuid"
)

// ScanType selects which corpus a scan walks
type ScanType string

const (
	ScanTypeMedia   ScanType = "media"
	ScanTypeContent ScanType = "content"
)

// JobStatus is the scan job lifecycle state
type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusCancelled JobStatus = "cancelled"
	JobStatusError     JobStatus = "error"
)

// Cursor marks resumable progress through the scanned collection.
// Offset is monotonically non-decreasing within one job and advances by
// exactly the number of items consumed in the prior batch.
type Cursor struct {
	Offset int `json:"offset"`
}

// Progress reports current/total items for operator display
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// ScanJob is the persisted state of one scan. Exactly one job is active
// process-wide; starting a new one replaces any prior job unconditionally.
type ScanJob struct {
	ID       string    `json:"id" badgerhold:"key"`
	Type     ScanType  `json:"type"`
	Status   JobStatus `json:"status"`
	Cursor   Cursor    `json:"cursor"`
	Progress Progress  `json:"progress"`
	Message  string    `json:"message"`
	Error    string    `json:"error,omitempty"`

	// FindingsReady flips on the first step, once the findings collection
	// for this job exists.
	FindingsReady bool `json:"findings_ready"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewScanJob creates a fresh running job with a zero cursor
func NewScanJob(scanType ScanType) *ScanJob {
	now := time.Now()
	return &ScanJob{
		ID:        "scan_" + uuid.New().String(),
		Type:      scanType,
		Status:    JobStatusRunning,
		Cursor:    Cursor{Offset: 0},
		Progress:  Progress{Current: 0, Total: 0},
		Message:   "Scan started.",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsTerminal returns true once the job can no longer be stepped
func (j *ScanJob) IsTerminal() bool {
	return j.Status == JobStatusCompleted ||
		j.Status == JobStatusCancelled ||
		j.Status == JobStatusError
}

// MarkCompleted transitions the job to completed
func (j *ScanJob) MarkCompleted(message string) {
	j.Status = JobStatusCompleted
	j.Message = message
	j.Touch()
}

// MarkCancelled transitions the job to cancelled
func (j *ScanJob) MarkCancelled() {
	j.Status = JobStatusCancelled
	j.Message = "Scan cancelled."
	j.Touch()
}

// MarkError records a configuration or delegation failure on the job
func (j *ScanJob) MarkError(message, detail string) {
	j.Status = JobStatusError
	j.Message = message
	j.Error = detail
	j.Touch()
}

// Touch bumps the modification timestamp
func (j *ScanJob) Touch() {
	j.UpdatedAt = time.Now()
}
