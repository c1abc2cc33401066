package badger

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/floodlight/altmon/internal/interfaces"
	"github.com/floodlight/altmon/internal/models"
)

// AssetCatalog is the badger-backed AssetRepository. It holds a synced
// snapshot of the media library's descriptive metadata; the scan core only
// sees the AssetRepository interface.
type AssetCatalog struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAssetCatalog creates a new AssetCatalog instance
func NewAssetCatalog(db *BadgerDB, logger arbor.ILogger) *AssetCatalog {
	return &AssetCatalog{
		db:     db,
		logger: logger,
	}
}

// GetAssetMetadata returns the stored description of one asset
func (c *AssetCatalog) GetAssetMetadata(ctx context.Context, id int64) (*models.AssetMetadata, error) {
	var meta models.AssetMetadata
	err := c.db.Store().Get(id, &meta)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrAssetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset metadata: %w", err)
	}
	return &meta, nil
}

// ListImageAssets returns image asset ids in ascending-id order starting at
// offset, plus the total image-asset count at call time
func (c *AssetCatalog) ListImageAssets(ctx context.Context, offset, limit int) ([]int64, int, error) {
	query := imageAssetQuery()

	total, err := c.db.Store().Count(&models.AssetMetadata{}, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count image assets: %w", err)
	}

	var assets []models.AssetMetadata
	page := imageAssetQuery().SortBy("ID").Skip(offset).Limit(limit)
	if err := c.db.Store().Find(&assets, page); err != nil {
		return nil, 0, fmt.Errorf("failed to list image assets: %w", err)
	}

	ids := make([]int64, len(assets))
	for i := range assets {
		ids[i] = assets[i].ID
	}
	return ids, int(total), nil
}

// ResolveAssetIDFromURL reverse-looks-up an asset by its delivery URL.
// Callers strip query parameters before resolving.
func (c *AssetCatalog) ResolveAssetIDFromURL(ctx context.Context, url string) (int64, error) {
	if url == "" {
		return 0, interfaces.ErrAssetNotFound
	}

	var assets []models.AssetMetadata
	err := c.db.Store().Find(&assets, badgerhold.Where("URL").Eq(url).Limit(1))
	if err != nil {
		return 0, fmt.Errorf("failed to resolve asset URL: %w", err)
	}
	if len(assets) == 0 {
		return 0, interfaces.ErrAssetNotFound
	}
	return assets[0].ID, nil
}

// SaveAsset upserts one asset's metadata into the catalog
func (c *AssetCatalog) SaveAsset(ctx context.Context, meta *models.AssetMetadata) error {
	if meta.ID <= 0 {
		return fmt.Errorf("asset ID is required")
	}
	if err := c.db.Store().Upsert(meta.ID, meta); err != nil {
		return fmt.Errorf("failed to save asset: %w", err)
	}
	return nil
}

// DeleteAsset removes one asset from the catalog
func (c *AssetCatalog) DeleteAsset(ctx context.Context, id int64) error {
	err := c.db.Store().Delete(id, &models.AssetMetadata{})
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrAssetNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	return nil
}

// ListRecentAssets returns the most recently added image assets
// (descending id), for the recent-uploads review view
func (c *AssetCatalog) ListRecentAssets(ctx context.Context, limit int) ([]models.AssetMetadata, error) {
	var assets []models.AssetMetadata
	query := imageAssetQuery().SortBy("ID").Reverse().Limit(limit)
	if err := c.db.Store().Find(&assets, query); err != nil {
		return nil, fmt.Errorf("failed to list recent assets: %w", err)
	}
	return assets, nil
}

func imageAssetQuery() *badgerhold.Query {
	return badgerhold.Where("MimeType").MatchFunc(func(ra *badgerhold.RecordAccess) (bool, error) {
		mime, ok := ra.Field().(string)
		return ok && strings.HasPrefix(mime, "image/"), nil
	})
}
