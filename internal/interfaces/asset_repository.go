package interfaces

import (
	"context"
	"errors"

	"github.com/floodlight/altmon/internal/models"
)

// ErrAssetNotFound is returned when an asset id or URL resolves to nothing
var ErrAssetNotFound = errors.New("asset not found")

// AssetRepository is the injected media-library capability. Scanning code
// depends only on this interface; the badger-backed catalog is one
// implementation.
type AssetRepository interface {
	// GetAssetMetadata returns the stored description of one asset.
	// Returns ErrAssetNotFound when the asset no longer exists.
	GetAssetMetadata(ctx context.Context, id int64) (*models.AssetMetadata, error)

	// ListImageAssets returns image asset ids in ascending-id order starting
	// at offset, plus the total matching-asset count at call time.
	ListImageAssets(ctx context.Context, offset, limit int) (ids []int64, total int, err error)

	// ResolveAssetIDFromURL reverse-looks-up an asset by its delivery URL.
	// Returns ErrAssetNotFound when no asset owns the URL.
	ResolveAssetIDFromURL(ctx context.Context, url string) (int64, error)
}
