package scanner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/floodlight/altmon/internal/models"
)

func newTestMediaScanner(repo *fakeAssetRepo) *MediaScanner {
	logger := arbor.NewLogger()
	return NewMediaScanner(repo, NewAttachmentEvaluator(repo, logger), logger)
}

func TestMediaScanner_ScanBatch(t *testing.T) {
	repo := &fakeAssetRepo{
		assets: map[int64]*models.AssetMetadata{
			1: imageAsset(1, ""),
			2: imageAsset(2, "A long enough description"),
			3: imageAsset(3, "logo"),
		},
		ids: []int64{1, 2, 3},
	}
	scanner := newTestMediaScanner(repo)
	rules := models.DefaultRuleConfig()

	t.Run("first batch", func(t *testing.T) {
		result, err := scanner.ScanBatch(context.Background(), 0, 2, rules)

		require.NoError(t, err)
		require.Len(t, result.Rows, 2)
		assert.Equal(t, 2, result.NextOffset)
		assert.Equal(t, 3, result.Total)
		assert.False(t, result.Done)

		assert.Equal(t, models.SourceMedia, result.Rows[0].Source)
		assert.Equal(t, int64(1), result.Rows[0].AttachmentID)
		assert.Equal(t, models.SeverityError, result.Rows[0].Severity)
		assert.Equal(t, models.SeverityOK, result.Rows[1].Severity)
	})

	t.Run("final batch", func(t *testing.T) {
		result, err := scanner.ScanBatch(context.Background(), 2, 2, rules)

		require.NoError(t, err)
		require.Len(t, result.Rows, 1)
		assert.Equal(t, 3, result.NextOffset)
		assert.True(t, result.Done)
		assert.True(t, result.Rows[0].HasIssue(models.IssueAltGeneric))
	})

	t.Run("offset past the end", func(t *testing.T) {
		result, err := scanner.ScanBatch(context.Background(), 10, 2, rules)

		require.NoError(t, err)
		assert.Empty(t, result.Rows)
		assert.True(t, result.Done)
	})
}

func TestMediaScanner_EmptyLibrary(t *testing.T) {
	scanner := newTestMediaScanner(&fakeAssetRepo{})

	result, err := scanner.ScanBatch(context.Background(), 0, 25, models.DefaultRuleConfig())

	require.NoError(t, err)
	assert.Empty(t, result.Rows)
	assert.Equal(t, 0, result.Total)
	assert.True(t, result.Done)
}

func TestMediaScanner_DeletedAssetDegrades(t *testing.T) {
	// id 2 is listed but its metadata is gone (deleted mid-scan)
	repo := &fakeAssetRepo{
		assets: map[int64]*models.AssetMetadata{
			1: imageAsset(1, "A long enough description"),
		},
		ids: []int64{1, 2},
	}
	scanner := newTestMediaScanner(repo)

	result, err := scanner.ScanBatch(context.Background(), 0, 5, models.DefaultRuleConfig())

	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, int64(2), result.Rows[1].AttachmentID)
	assert.Equal(t, []string{models.IssueMissingAlt}, result.Rows[1].Issues)
}

func TestMediaScanner_RepositoryError(t *testing.T) {
	repo := &fakeAssetRepo{listErr: errors.New("store unavailable")}
	scanner := newTestMediaScanner(repo)

	result, err := scanner.ScanBatch(context.Background(), 0, 25, models.DefaultRuleConfig())

	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list image assets")
}
