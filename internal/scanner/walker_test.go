package scanner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/floodlight/altmon/internal/interfaces"
	"github.com/floodlight/altmon/internal/models"
)

// fakeAssetRepo is an in-memory asset repository shared by the scanner tests
type fakeAssetRepo struct {
	assets  map[int64]*models.AssetMetadata
	byURL   map[string]int64
	ids     []int64 // listing order for ListImageAssets
	listErr error
}

func (f *fakeAssetRepo) GetAssetMetadata(ctx context.Context, id int64) (*models.AssetMetadata, error) {
	if meta, ok := f.assets[id]; ok {
		return meta, nil
	}
	return nil, interfaces.ErrAssetNotFound
}

func (f *fakeAssetRepo) ListImageAssets(ctx context.Context, offset, limit int) ([]int64, int, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	total := len(f.ids)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return append([]int64{}, f.ids[offset:end]...), total, nil
}

func (f *fakeAssetRepo) ResolveAssetIDFromURL(ctx context.Context, url string) (int64, error) {
	if id, ok := f.byURL[url]; ok {
		return id, nil
	}
	return 0, interfaces.ErrAssetNotFound
}

func imageAsset(id int64, alt string) *models.AssetMetadata {
	return &models.AssetMetadata{
		ID:       id,
		AltText:  alt,
		FileName: "file.jpg",
		MimeType: "image/jpeg",
	}
}

func newTestWalker(repo *fakeAssetRepo) *FieldWalker {
	logger := arbor.NewLogger()
	eval := NewAttachmentEvaluator(repo, logger)
	return NewFieldWalker(eval, repo, logger)
}

func TestFieldWalker_NestedGroupRepeater(t *testing.T) {
	repo := &fakeAssetRepo{
		assets: map[int64]*models.AssetMetadata{
			11: imageAsset(11, ""),
			12: imageAsset(12, "A descriptive caption here"),
		},
	}
	walker := newTestWalker(repo)

	record := &models.ContentRecord{
		ID:    100,
		Title: "About us",
		Fields: []*models.FieldObject{
			{
				Name: "hero",
				Type: models.FieldTypeGroup,
				Value: map[string]any{
					"slides": []any{
						map[string]any{"photo": float64(11)},
						map[string]any{"photo": "12"},
					},
				},
				SubFields: []*models.FieldObject{
					{
						Name: "slides",
						Type: models.FieldTypeRepeater,
						SubFields: []*models.FieldObject{
							{Name: "photo", Type: models.FieldTypeImage},
						},
					},
				},
			},
		},
	}

	rows := walker.WalkRecord(context.Background(), record, models.DefaultRuleConfig())

	require.Len(t, rows, 2)
	assert.Equal(t, "hero.slides[0].photo", rows[0].FieldPath)
	assert.Equal(t, "hero.slides[1].photo", rows[1].FieldPath)
	assert.Equal(t, models.SourceContentImage, rows[0].Source)
	assert.Equal(t, int64(11), rows[0].AttachmentID)
	assert.Equal(t, int64(12), rows[1].AttachmentID)
	assert.Equal(t, int64(100), rows[0].ContainerID)
	assert.Equal(t, "About us", rows[0].ContainerTitle)
	assert.Equal(t, models.SeverityError, rows[0].Severity)
	assert.Equal(t, models.SeverityOK, rows[1].Severity)
}

func TestFieldWalker_Gallery(t *testing.T) {
	repo := &fakeAssetRepo{
		assets: map[int64]*models.AssetMetadata{
			1: imageAsset(1, "First image in the gallery"),
			2: {ID: 2, MimeType: "application/pdf", FileName: "doc.pdf"},
			3: imageAsset(3, "Third image in the gallery"),
		},
	}
	walker := newTestWalker(repo)

	record := &models.ContentRecord{
		ID:    7,
		Title: "Gallery page",
		Fields: []*models.FieldObject{
			{
				Name:  "gallery",
				Type:  models.FieldTypeGallery,
				Value: []any{float64(1), float64(2), float64(99), float64(3)},
			},
		},
	}

	rows := walker.WalkRecord(context.Background(), record, models.DefaultRuleConfig())

	// the pdf and the unresolvable id contribute nothing, indexes are
	// positions in the stored sequence
	require.Len(t, rows, 2)
	assert.Equal(t, "gallery[0]", rows[0].FieldPath)
	assert.Equal(t, "gallery[3]", rows[1].FieldPath)
	assert.Equal(t, models.SourceContentGallery, rows[0].Source)
}

func TestFieldWalker_FlexibleLayouts(t *testing.T) {
	repo := &fakeAssetRepo{
		assets: map[int64]*models.AssetMetadata{
			21: imageAsset(21, ""),
		},
	}
	walker := newTestWalker(repo)

	record := &models.ContentRecord{
		ID:    8,
		Title: "Landing page",
		Fields: []*models.FieldObject{
			{
				Name: "sections",
				Type: models.FieldTypeFlexible,
				Value: []any{
					map[string]any{"layout": "media_block", "img": float64(21)},
					map[string]any{"layout": "retired_block", "img": float64(21)},
					map[string]any{"img": float64(21)}, // no layout tag
				},
				Layouts: []*models.FieldLayout{
					{
						Name: "media_block",
						SubFields: []*models.FieldObject{
							{Name: "img", Type: models.FieldTypeImage},
						},
					},
				},
			},
		},
	}

	rows := walker.WalkRecord(context.Background(), record, models.DefaultRuleConfig())

	// unregistered and untagged rows are skipped silently
	require.Len(t, rows, 1)
	assert.Equal(t, "sections[0].media_block.img", rows[0].FieldPath)
}

func TestFieldWalker_RichText(t *testing.T) {
	t.Run("inline alt is judged directly, owner alt is context only", func(t *testing.T) {
		repo := &fakeAssetRepo{
			assets: map[int64]*models.AssetMetadata{
				42: {
					ID:       42,
					AltText:  "Stored alt on the owning asset",
					FileName: "y.jpg",
					MimeType: "image/jpeg",
					Title:    "Y",
				},
			},
		}
		walker := newTestWalker(repo)

		record := &models.ContentRecord{
			ID:    9,
			Title: "Post",
			Fields: []*models.FieldObject{
				{
					Name:  "body",
					Type:  models.FieldTypeRichText,
					Value: `<p>text<img src="https://x/y.jpg" class="wp-image-42" alt="">more</p>`,
				},
			},
		}

		rows := walker.WalkRecord(context.Background(), record, models.DefaultRuleConfig())

		require.Len(t, rows, 1)
		row := rows[0]
		assert.Equal(t, models.SourceInlineMarkup, row.Source)
		assert.Equal(t, "body", row.FieldPath)
		assert.Equal(t, int64(42), row.AttachmentID)
		assert.Equal(t, []string{models.IssueMissingAlt}, row.Issues)
		assert.Equal(t, models.SeverityError, row.Severity)
		assert.Equal(t, "Stored alt on the owning asset", row.ContextAlt)
		assert.Equal(t, "y.jpg", row.FileName)
	})

	t.Run("owner falls back to URL lookup with query string stripped", func(t *testing.T) {
		repo := &fakeAssetRepo{
			assets: map[int64]*models.AssetMetadata{
				5: imageAsset(5, "Stored"),
			},
			byURL: map[string]int64{
				"https://cdn.example.com/a.jpg": 5,
			},
		}
		walker := newTestWalker(repo)

		record := &models.ContentRecord{
			ID: 10,
			Fields: []*models.FieldObject{
				{
					Name:  "body",
					Type:  models.FieldTypeRichText,
					Value: `<img src="https://cdn.example.com/a.jpg?w=300&h=200" alt="A long enough caption">`,
				},
			},
		}

		rows := walker.WalkRecord(context.Background(), record, models.DefaultRuleConfig())

		require.Len(t, rows, 1)
		assert.Equal(t, int64(5), rows[0].AttachmentID)
		assert.Equal(t, models.SeverityOK, rows[0].Severity)
	})

	t.Run("unresolvable owner still yields a judged row", func(t *testing.T) {
		walker := newTestWalker(&fakeAssetRepo{})

		record := &models.ContentRecord{
			ID: 11,
			Fields: []*models.FieldObject{
				{
					Name:  "body",
					Type:  models.FieldTypeRichText,
					Value: `<img src="https://elsewhere.example.com/ext.jpg" alt="">`,
				},
			},
		}

		rows := walker.WalkRecord(context.Background(), record, models.DefaultRuleConfig())

		require.Len(t, rows, 1)
		assert.Equal(t, int64(0), rows[0].AttachmentID)
		assert.Equal(t, []string{models.IssueMissingAlt}, rows[0].Issues)
	})
}

func TestFieldWalker_Degradation(t *testing.T) {
	walker := newTestWalker(&fakeAssetRepo{})
	rules := models.DefaultRuleConfig()

	tests := []struct {
		name  string
		field *models.FieldObject
	}{
		{
			name:  "unknown field kind",
			field: &models.FieldObject{Name: "widget", Type: "carousel", Value: float64(1)},
		},
		{
			name:  "mistyped repeater value",
			field: &models.FieldObject{Name: "rows", Type: models.FieldTypeRepeater, Value: "not a list"},
		},
		{
			name:  "mistyped group value",
			field: &models.FieldObject{Name: "box", Type: models.FieldTypeGroup, Value: []any{1}},
		},
		{
			name:  "empty richtext",
			field: &models.FieldObject{Name: "body", Type: models.FieldTypeRichText, Value: "   "},
		},
		{
			name:  "non-string richtext",
			field: &models.FieldObject{Name: "body", Type: models.FieldTypeRichText, Value: float64(3)},
		},
		{
			name:  "image value of unsupported shape",
			field: &models.FieldObject{Name: "img", Type: models.FieldTypeImage, Value: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := &models.ContentRecord{ID: 1, Fields: []*models.FieldObject{tt.field}}
			rows := walker.WalkRecord(context.Background(), record, rules)
			assert.Empty(t, rows)
		})
	}
}

func TestFieldWalker_ResolvesObjectShapedImageValues(t *testing.T) {
	repo := &fakeAssetRepo{
		assets: map[int64]*models.AssetMetadata{
			31: imageAsset(31, "A perfectly fine caption"),
		},
	}
	walker := newTestWalker(repo)

	record := &models.ContentRecord{
		ID: 12,
		Fields: []*models.FieldObject{
			{
				Name:  "img",
				Type:  models.FieldTypeImage,
				Value: map[string]any{"id": float64(31), "url": "https://x/a.jpg"},
			},
		},
	}

	rows := walker.WalkRecord(context.Background(), record, models.DefaultRuleConfig())

	require.Len(t, rows, 1)
	assert.Equal(t, int64(31), rows[0].AttachmentID)
}
