// -----------------------------------------------------------------------
// Field Tree Walker - Recursive image discovery across nested field values
// -----------------------------------------------------------------------

package scanner

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ternarybob/arbor"

	"github.com/floodlight/altmon/internal/interfaces"
	"github.com/floodlight/altmon/internal/models"
)

// FieldWalker discovers every embedded image reference inside a content
// record's field tree and emits one finding per discovered image, annotated
// with the path of its location.
//
// The walker degrades gracefully on schema drift: unknown field kinds,
// unregistered layout tags and mistyped values emit no rows and no errors.
type FieldWalker struct {
	eval   *AttachmentEvaluator
	assets interfaces.AssetRepository
	markup *MarkupExtractor
	logger arbor.ILogger
}

// NewFieldWalker creates a walker sharing the attachment evaluator and
// asset repository with the batch scanners
func NewFieldWalker(eval *AttachmentEvaluator, assets interfaces.AssetRepository, logger arbor.ILogger) *FieldWalker {
	return &FieldWalker{
		eval:   eval,
		assets: assets,
		markup: NewMarkupExtractor(logger),
		logger: logger,
	}
}

// WalkRecord walks every top-level field of a record in declaration order
func (w *FieldWalker) WalkRecord(ctx context.Context, record *models.ContentRecord, rules models.RuleConfig) []models.Finding {
	var rows []models.Finding
	for _, field := range record.Fields {
		rows = append(rows, w.Walk(ctx, field, field.Value, field.Name, record, rules)...)
	}
	return rows
}

// Walk recurses into one field node. The path describes the node's location
// using the grammar name, name[i], name.sub, name[i].sub and
// name[i].layout.sub for flexible layouts.
func (w *FieldWalker) Walk(ctx context.Context, field *models.FieldObject, value any, path string, record *models.ContentRecord, rules models.RuleConfig) []models.Finding {
	switch field.Type {
	case models.FieldTypeImage:
		return w.walkImage(ctx, value, path, record, rules)
	case models.FieldTypeGallery:
		return w.walkGallery(ctx, value, path, record, rules)
	case models.FieldTypeGroup:
		return w.walkGroup(ctx, field, value, path, record, rules)
	case models.FieldTypeRepeater:
		return w.walkRepeater(ctx, field, value, path, record, rules)
	case models.FieldTypeFlexible:
		return w.walkFlexible(ctx, field, value, path, record, rules)
	case models.FieldTypeRichText:
		return w.walkRichText(ctx, value, path, record, rules)
	default:
		// unhandled node kinds are not an error
		return nil
	}
}

func (w *FieldWalker) walkImage(ctx context.Context, value any, path string, record *models.ContentRecord, rules models.RuleConfig) []models.Finding {
	assetID := w.resolveAssetID(ctx, value)
	if assetID <= 0 || !w.isImageAsset(ctx, assetID) {
		return nil
	}
	return []models.Finding{w.contentRow(ctx, assetID, models.SourceContentImage, path, record, rules)}
}

func (w *FieldWalker) walkGallery(ctx context.Context, value any, path string, record *models.ContentRecord, rules models.RuleConfig) []models.Finding {
	items, ok := value.([]any)
	if !ok {
		return nil
	}

	var rows []models.Finding
	for i, item := range items {
		assetID := w.resolveAssetID(ctx, item)
		if assetID <= 0 || !w.isImageAsset(ctx, assetID) {
			continue
		}
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		rows = append(rows, w.contentRow(ctx, assetID, models.SourceContentGallery, itemPath, record, rules))
	}
	return rows
}

func (w *FieldWalker) walkGroup(ctx context.Context, field *models.FieldObject, value any, path string, record *models.ContentRecord, rules models.RuleConfig) []models.Finding {
	bundle, ok := value.(map[string]any)
	if !ok {
		return nil
	}

	var rows []models.Finding
	for _, sub := range field.SubFields {
		if sub == nil || sub.Name == "" {
			continue
		}
		rows = append(rows, w.Walk(ctx, sub, bundle[sub.Name], path+"."+sub.Name, record, rules)...)
	}
	return rows
}

func (w *FieldWalker) walkRepeater(ctx context.Context, field *models.FieldObject, value any, path string, record *models.ContentRecord, rules models.RuleConfig) []models.Finding {
	items, ok := value.([]any)
	if !ok {
		return nil
	}

	var rows []models.Finding
	for i, item := range items {
		bundle, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for _, sub := range field.SubFields {
			if sub == nil || sub.Name == "" {
				continue
			}
			subPath := fmt.Sprintf("%s[%d].%s", path, i, sub.Name)
			rows = append(rows, w.Walk(ctx, sub, bundle[sub.Name], subPath, record, rules)...)
		}
	}
	return rows
}

func (w *FieldWalker) walkFlexible(ctx context.Context, field *models.FieldObject, value any, path string, record *models.ContentRecord, rules models.RuleConfig) []models.Finding {
	items, ok := value.([]any)
	if !ok {
		return nil
	}

	var rows []models.Finding
	for i, item := range items {
		bundle, ok := item.(map[string]any)
		if !ok {
			continue
		}
		tag, _ := bundle[models.FlexibleLayoutKey].(string)
		layout := field.LayoutByName(tag)
		if layout == nil {
			// unregistered layout tags are skipped, preserving forward
			// compatibility with schema evolution
			continue
		}
		for _, sub := range layout.SubFields {
			if sub == nil || sub.Name == "" {
				continue
			}
			subPath := fmt.Sprintf("%s[%d].%s.%s", path, i, layout.Name, sub.Name)
			rows = append(rows, w.Walk(ctx, sub, bundle[sub.Name], subPath, record, rules)...)
		}
	}
	return rows
}

// walkRichText extracts inline images from a markup value. Each image's own
// alt attribute is evaluated directly, whether or not an owning asset
// resolves; a resolved owner contributes its stored alt as context only.
func (w *FieldWalker) walkRichText(ctx context.Context, value any, path string, record *models.ContentRecord, rules models.RuleConfig) []models.Finding {
	markup, ok := value.(string)
	if !ok || strings.TrimSpace(markup) == "" {
		return nil
	}

	images := w.markup.ExtractImages(markup)
	if len(images) == 0 {
		return nil
	}

	rows := make([]models.Finding, 0, len(images))
	for _, img := range images {
		altTrimmed := strings.TrimSpace(img.Alt)
		verdict := Evaluate(altTrimmed, rules)

		row := models.Finding{
			Source:         models.SourceInlineMarkup,
			Severity:       verdict.Severity,
			Issues:         verdict.Issues,
			MatchedRule:    verdict.MatchedRule,
			AltRaw:         img.Alt,
			AltTrimmed:     altTrimmed,
			AltLength:      utf8.RuneCountInString(altTrimmed),
			FieldPath:      path,
			ContainerID:    record.ID,
			ContainerTitle: record.Title,
		}

		if assetID := w.resolveInlineOwner(ctx, img); assetID > 0 {
			row.AttachmentID = assetID
			if meta, err := w.assets.GetAssetMetadata(ctx, assetID); err == nil {
				row.ContextAlt = meta.AltText
				row.FileName = meta.FileName
				row.MimeType = meta.MimeType
				row.Title = meta.Title
			}
		}

		rows = append(rows, row)
	}
	return rows
}

// resolveInlineOwner finds the asset owning an inline image. Priority:
// explicit id class token, numeric data attribute, then reverse URL lookup
// with any query string stripped.
func (w *FieldWalker) resolveInlineOwner(ctx context.Context, img InlineImage) int64 {
	if img.ClassID > 0 {
		return img.ClassID
	}
	if img.DataID > 0 {
		return img.DataID
	}
	if img.Src == "" {
		return 0
	}

	src := img.Src
	if i := strings.IndexByte(src, '?'); i >= 0 {
		src = src[:i]
	}
	assetID, err := w.assets.ResolveAssetIDFromURL(ctx, src)
	if err != nil {
		return 0
	}
	return assetID
}

// contentRow evaluates an asset and stamps the content location fields
func (w *FieldWalker) contentRow(ctx context.Context, assetID int64, source models.FindingSource, path string, record *models.ContentRecord, rules models.RuleConfig) models.Finding {
	row := w.eval.Evaluate(ctx, assetID, rules)
	row.Source = source
	row.FieldPath = path
	row.ContainerID = record.ID
	row.ContainerTitle = record.Title
	return row
}

// resolveAssetID normalizes the shapes an image value can take: a raw id,
// a digit string, an object carrying an id field, or a delivery URL.
func (w *FieldWalker) resolveAssetID(ctx context.Context, value any) int64 {
	switch v := value.(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	case string:
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			return id
		}
		if strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") {
			id, err := w.assets.ResolveAssetIDFromURL(ctx, v)
			if err != nil {
				return 0
			}
			return id
		}
		return 0
	case map[string]any:
		if id := scalarID(v["id"]); id > 0 {
			return id
		}
		return scalarID(v["ID"])
	default:
		return 0
	}
}

// isImageAsset checks the asset exists and has an image mime type
func (w *FieldWalker) isImageAsset(ctx context.Context, assetID int64) bool {
	meta, err := w.assets.GetAssetMetadata(ctx, assetID)
	if err != nil {
		return false
	}
	return meta.IsImage()
}

// scalarID converts a scalar id value (number or digit string) to int64
func scalarID(value any) int64 {
	switch v := value.(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	case string:
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			return id
		}
	}
	return 0
}
