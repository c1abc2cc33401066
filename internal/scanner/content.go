// -----------------------------------------------------------------------
// Content Batch Scanner - One bounded slice of content records per call
// -----------------------------------------------------------------------

package scanner

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/floodlight/altmon/internal/interfaces"
	"github.com/floodlight/altmon/internal/models"
)

// ContentScanner paginates content records and walks each record's field
// tree for embedded images
type ContentScanner struct {
	content interfaces.ContentRepository
	walker  *FieldWalker
	logger  arbor.ILogger
}

// NewContentScanner creates a content batch scanner
func NewContentScanner(content interfaces.ContentRepository, walker *FieldWalker, logger arbor.ILogger) *ContentScanner {
	return &ContentScanner{
		content: content,
		walker:  walker,
		logger:  logger,
	}
}

// ScanBatch walks up to limit records starting at offset. When the scope is
// most_recent the reported total is clamped to the scope's cap and the
// record list is truncated so NextOffset never exceeds the clamped total.
func (s *ContentScanner) ScanBatch(ctx context.Context, offset, limit int, scope models.ScanScope, rules models.RuleConfig) (*BatchResult, error) {
	records, total, err := s.content.ListContentRecords(ctx, offset, limit, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list content records: %w", err)
	}

	if scope.Mode == models.ScopeMostRecent && scope.Count > 0 && total > scope.Count {
		total = scope.Count
	}
	if remaining := total - offset; remaining >= 0 && len(records) > remaining {
		records = records[:remaining]
	}

	var rows []models.Finding
	for _, record := range records {
		rows = append(rows, s.walker.WalkRecord(ctx, record, rules)...)
	}

	nextOffset := offset + len(records)
	result := &BatchResult{
		Rows:       rows,
		NextOffset: nextOffset,
		Total:      total,
		Done:       nextOffset >= total || len(records) == 0,
	}

	s.logger.Debug().
		Int("offset", offset).
		Int("batch", len(records)).
		Int("rows", len(rows)).
		Int("total", total).
		Bool("done", result.Done).
		Msg("Content batch scanned")

	return result, nil
}
