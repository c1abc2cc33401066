package scanner

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/floodlight/altmon/internal/models"
)

// fakeContentRepo pages over a fixed record list, ignoring scope filtering
// (the scanners only rely on the repository's ordering contract)
type fakeContentRepo struct {
	records []*models.ContentRecord
	err     error
}

func (f *fakeContentRepo) ListContentRecords(ctx context.Context, offset, limit int, scope models.ScanScope) ([]*models.ContentRecord, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	total := len(f.records)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return f.records[offset:end], total, nil
}

func recordWithImage(id int64, assetID int64) *models.ContentRecord {
	return &models.ContentRecord{
		ID:    id,
		Title: fmt.Sprintf("Record %d", id),
		Fields: []*models.FieldObject{
			{Name: "img", Type: models.FieldTypeImage, Value: float64(assetID)},
		},
	}
}

func newTestContentScanner(content *fakeContentRepo, repo *fakeAssetRepo) *ContentScanner {
	logger := arbor.NewLogger()
	return NewContentScanner(content, newTestWalker(repo), logger)
}

func TestContentScanner_ScanBatch(t *testing.T) {
	repo := &fakeAssetRepo{
		assets: map[int64]*models.AssetMetadata{
			1: imageAsset(1, ""),
			2: imageAsset(2, "A long enough description"),
			3: imageAsset(3, ""),
		},
	}
	content := &fakeContentRepo{
		records: []*models.ContentRecord{
			recordWithImage(101, 1),
			recordWithImage(102, 2),
			recordWithImage(103, 3),
		},
	}
	scanner := newTestContentScanner(content, repo)
	scope := models.DefaultScanScope()
	rules := models.DefaultRuleConfig()

	result, err := scanner.ScanBatch(context.Background(), 0, 2, scope, rules)

	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, 2, result.NextOffset)
	assert.Equal(t, 3, result.Total)
	assert.False(t, result.Done)
	assert.Equal(t, int64(101), result.Rows[0].ContainerID)
	assert.Equal(t, "img", result.Rows[0].FieldPath)

	result, err = scanner.ScanBatch(context.Background(), 2, 2, scope, rules)

	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, 3, result.NextOffset)
	assert.True(t, result.Done)
}

func TestContentScanner_MostRecentClampsTotal(t *testing.T) {
	repo := &fakeAssetRepo{assets: map[int64]*models.AssetMetadata{1: imageAsset(1, "")}}

	records := make([]*models.ContentRecord, 0, 12)
	for i := int64(1); i <= 12; i++ {
		records = append(records, recordWithImage(i, 1))
	}
	scanner := newTestContentScanner(&fakeContentRepo{records: records}, repo)

	scope := models.ScanScope{Mode: models.ScopeMostRecent, Count: 5}
	rules := models.DefaultRuleConfig()

	result, err := scanner.ScanBatch(context.Background(), 0, 4, scope, rules)

	require.NoError(t, err)
	assert.Len(t, result.Rows, 4)
	assert.Equal(t, 4, result.NextOffset)
	assert.Equal(t, 5, result.Total)
	assert.False(t, result.Done)

	// the second batch is truncated so the cursor lands exactly on the cap
	result, err = scanner.ScanBatch(context.Background(), 4, 4, scope, rules)

	require.NoError(t, err)
	assert.Len(t, result.Rows, 1)
	assert.Equal(t, 5, result.NextOffset)
	assert.Equal(t, 5, result.Total)
	assert.True(t, result.Done)
}

func TestContentScanner_EmptyCorpus(t *testing.T) {
	scanner := newTestContentScanner(&fakeContentRepo{}, &fakeAssetRepo{})

	result, err := scanner.ScanBatch(context.Background(), 0, 10, models.DefaultScanScope(), models.DefaultRuleConfig())

	require.NoError(t, err)
	assert.Empty(t, result.Rows)
	assert.True(t, result.Done)
}

func TestContentScanner_RecordWithNoImagesYieldsNoRows(t *testing.T) {
	content := &fakeContentRepo{
		records: []*models.ContentRecord{
			{
				ID: 1,
				Fields: []*models.FieldObject{
					{Name: "headline", Type: "text", Value: "hello"},
				},
			},
		},
	}
	scanner := newTestContentScanner(content, &fakeAssetRepo{})

	result, err := scanner.ScanBatch(context.Background(), 0, 10, models.DefaultScanScope(), models.DefaultRuleConfig())

	require.NoError(t, err)
	assert.Empty(t, result.Rows)
	assert.Equal(t, 1, result.NextOffset)
	assert.True(t, result.Done)
}

func TestContentScanner_RepositoryError(t *testing.T) {
	scanner := newTestContentScanner(&fakeContentRepo{err: errors.New("store unavailable")}, &fakeAssetRepo{})

	result, err := scanner.ScanBatch(context.Background(), 0, 10, models.DefaultScanScope(), models.DefaultRuleConfig())

	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list content records")
}
