package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/floodlight/altmon/internal/interfaces"
	"github.com/floodlight/altmon/internal/models"
)

// FindingsStorage implements the FindingsStorage interface for Badger.
// AddMany is a read-modify-write; the coordinator's single-writer discipline
// keeps it from interleaving with another writer for the same job.
type FindingsStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewFindingsStorage creates a new FindingsStorage instance
func NewFindingsStorage(db *BadgerDB, logger arbor.ILogger) interfaces.FindingsStorage {
	return &FindingsStorage{
		db:     db,
		logger: logger,
	}
}

// Init creates an empty findings collection for the job
func (s *FindingsStorage) Init(ctx context.Context, jobID string) error {
	collection := models.NewFindingsCollection(jobID)
	if err := s.db.Store().Upsert(jobID, collection); err != nil {
		return fmt.Errorf("failed to initialize findings: %w", err)
	}

	s.logger.Debug().Str("job_id", jobID).Msg("Findings collection initialized")
	return nil
}

// Get returns the collection for a job
func (s *FindingsStorage) Get(ctx context.Context, jobID string) (*models.FindingsCollection, error) {
	var collection models.FindingsCollection
	err := s.db.Store().Get(jobID, &collection)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrFindingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get findings: %w", err)
	}
	return &collection, nil
}

// AddMany appends rows and updates the severity counts in one write
func (s *FindingsStorage) AddMany(ctx context.Context, jobID string, rows []models.Finding) error {
	if len(rows) == 0 {
		return nil
	}

	collection, err := s.Get(ctx, jobID)
	if err != nil {
		return err
	}

	collection.Append(rows...)

	if err := s.db.Store().Upsert(jobID, collection); err != nil {
		return fmt.Errorf("failed to append findings: %w", err)
	}

	return nil
}
