// -----------------------------------------------------------------------
// Attachment Evaluator - Finding row for a single media asset
// -----------------------------------------------------------------------

package scanner

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/ternarybob/arbor"

	"github.com/floodlight/altmon/internal/interfaces"
	"github.com/floodlight/altmon/internal/models"
)

// AttachmentEvaluator wraps the rule evaluator with asset metadata lookup
type AttachmentEvaluator struct {
	assets interfaces.AssetRepository
	logger arbor.ILogger
}

// NewAttachmentEvaluator creates an attachment evaluator backed by the
// given asset repository
func NewAttachmentEvaluator(assets interfaces.AssetRepository, logger arbor.ILogger) *AttachmentEvaluator {
	return &AttachmentEvaluator{
		assets: assets,
		logger: logger,
	}
}

// Evaluate builds the finding row for one asset. An asset that cannot be
// resolved (deleted mid-scan) degrades to a row with empty alt and filename
// instead of aborting the batch.
func (e *AttachmentEvaluator) Evaluate(ctx context.Context, assetID int64, rules models.RuleConfig) models.Finding {
	meta, err := e.assets.GetAssetMetadata(ctx, assetID)
	if err != nil {
		e.logger.Debug().Int64("asset_id", assetID).Err(err).Msg("Asset metadata unavailable, evaluating as empty")
		meta = &models.AssetMetadata{ID: assetID}
	}

	row := e.buildRow(meta, rules)
	row.Source = models.SourceMedia
	return row
}

// buildRow evaluates stored alt text and assembles the common row fields
func (e *AttachmentEvaluator) buildRow(meta *models.AssetMetadata, rules models.RuleConfig) models.Finding {
	altTrimmed := strings.TrimSpace(meta.AltText)
	verdict := Evaluate(altTrimmed, rules)

	return models.Finding{
		Severity:     verdict.Severity,
		Issues:       verdict.Issues,
		MatchedRule:  verdict.MatchedRule,
		AltRaw:       meta.AltText,
		AltTrimmed:   altTrimmed,
		AltLength:    utf8.RuneCountInString(altTrimmed),
		AttachmentID: meta.ID,
		FileName:     meta.FileName,
		MimeType:     meta.MimeType,
		Title:        meta.Title,
	}
}
