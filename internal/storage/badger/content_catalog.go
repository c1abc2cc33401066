package badger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/floodlight/altmon/internal/models"
)

// storedContentRecord wraps a record's JSON payload with the fields the
// catalog indexes. Field values are heterogeneous (maps, sequences,
// scalars), so the tree round-trips through JSON rather than gob.
type storedContentRecord struct {
	ID         int64 `badgerhold:"key"`
	ModifiedAt time.Time
	Payload    []byte
}

// ContentCatalog is the badger-backed ContentRepository holding synced
// content records with their resolved field trees
type ContentCatalog struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewContentCatalog creates a new ContentCatalog instance
func NewContentCatalog(db *BadgerDB, logger arbor.ILogger) *ContentCatalog {
	return &ContentCatalog{
		db:     db,
		logger: logger,
	}
}

// ListContentRecords lists records under the given scope. Scope "all" orders
// by ascending id; recency scopes order most-recently-modified first.
func (c *ContentCatalog) ListContentRecords(ctx context.Context, offset, limit int, scope models.ScanScope) ([]*models.ContentRecord, int, error) {
	query := c.scopeQuery(scope)

	total, err := c.db.Store().Count(&storedContentRecord{}, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count content records: %w", err)
	}

	page := c.scopeQuery(scope).Skip(offset).Limit(limit)
	var stored []storedContentRecord
	if err := c.db.Store().Find(&stored, page); err != nil {
		return nil, 0, fmt.Errorf("failed to list content records: %w", err)
	}

	records := make([]*models.ContentRecord, 0, len(stored))
	for _, row := range stored {
		var record models.ContentRecord
		if err := json.Unmarshal(row.Payload, &record); err != nil {
			// a corrupt row degrades to a fieldless placeholder: it yields no
			// findings but keeps the page the same size as the rows paged
			// over, so the caller's offset never revisits an earlier record
			c.logger.Warn().Int64("record_id", row.ID).Err(err).Msg("Substituting unreadable content record")
			records = append(records, &models.ContentRecord{ID: row.ID, ModifiedAt: row.ModifiedAt})
			continue
		}
		records = append(records, &record)
	}

	return records, int(total), nil
}

// SaveRecord upserts one content record into the catalog
func (c *ContentCatalog) SaveRecord(ctx context.Context, record *models.ContentRecord) error {
	if record.ID <= 0 {
		return fmt.Errorf("content record ID is required")
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal content record: %w", err)
	}

	stored := storedContentRecord{
		ID:         record.ID,
		ModifiedAt: record.ModifiedAt,
		Payload:    payload,
	}
	if err := c.db.Store().Upsert(stored.ID, &stored); err != nil {
		return fmt.Errorf("failed to save content record: %w", err)
	}
	return nil
}

// DeleteRecord removes one content record from the catalog
func (c *ContentCatalog) DeleteRecord(ctx context.Context, id int64) error {
	err := c.db.Store().Delete(id, &storedContentRecord{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete content record: %w", err)
	}
	return nil
}

func (c *ContentCatalog) scopeQuery(scope models.ScanScope) *badgerhold.Query {
	switch scope.Mode {
	case models.ScopeModifiedWithin:
		cutoff := time.Now().AddDate(0, 0, -scope.Days)
		return badgerhold.Where("ModifiedAt").Ge(cutoff).SortBy("ModifiedAt").Reverse()
	case models.ScopeMostRecent:
		return badgerhold.Where("ID").Gt(int64(0)).SortBy("ModifiedAt").Reverse()
	default:
		return badgerhold.Where("ID").Gt(int64(0)).SortBy("ID")
	}
}
