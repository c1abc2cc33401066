package interfaces

import (
	"context"

	"github.com/floodlight/altmon/internal/models"
)

// ContentRepository is the injected content-corpus capability. Records come
// back with their field schema and values already resolved.
//
// Ordering is part of the contract: scope "all" lists by ascending id;
// recency-bounded scopes list most-recently-modified first. Total is the
// repository's matching-record count at call time and may drift between
// batches as the corpus changes.
type ContentRepository interface {
	ListContentRecords(ctx context.Context, offset, limit int, scope models.ScanScope) (records []*models.ContentRecord, total int, err error)
}
