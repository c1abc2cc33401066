// -----------------------------------------------------------------------
// Media Batch Scanner - One bounded slice of the media library per call
// -----------------------------------------------------------------------

package scanner

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/floodlight/altmon/internal/interfaces"
	"github.com/floodlight/altmon/internal/models"
)

// BatchResult is the outcome of one bounded scan batch. Total is the
// repository's matching count at call time and may drift between batches;
// Done is recomputed from the latest Total each call.
type BatchResult struct {
	Rows       []models.Finding
	NextOffset int
	Total      int
	Done       bool
}

// MediaScanner paginates the media library and evaluates each asset's
// stored alt text
type MediaScanner struct {
	assets interfaces.AssetRepository
	eval   *AttachmentEvaluator
	logger arbor.ILogger
}

// NewMediaScanner creates a media batch scanner
func NewMediaScanner(assets interfaces.AssetRepository, eval *AttachmentEvaluator, logger arbor.ILogger) *MediaScanner {
	return &MediaScanner{
		assets: assets,
		eval:   eval,
		logger: logger,
	}
}

// ScanBatch evaluates up to limit assets starting at offset, in ascending-id
// order. NextOffset advances by exactly the number of assets returned.
func (s *MediaScanner) ScanBatch(ctx context.Context, offset, limit int, rules models.RuleConfig) (*BatchResult, error) {
	ids, total, err := s.assets.ListImageAssets(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list image assets: %w", err)
	}

	rows := make([]models.Finding, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, s.eval.Evaluate(ctx, id, rules))
	}

	nextOffset := offset + len(ids)
	result := &BatchResult{
		Rows:       rows,
		NextOffset: nextOffset,
		Total:      total,
		Done:       nextOffset >= total || len(ids) == 0,
	}

	s.logger.Debug().
		Int("offset", offset).
		Int("batch", len(ids)).
		Int("total", total).
		Bool("done", result.Done).
		Msg("Media batch scanned")

	return result, nil
}
