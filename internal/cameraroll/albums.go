package cameraroll

import (
	"context"

	"github.com/arawak/cameraroll/internal/photos"
)

// GetAlbums lists user albums with the number of assets of the requested
// type. Albums without any are left out.
func (s *Service) GetAlbums(ctx context.Context, params GetAlbumsParams) ([]Album, error) {
	if err := s.EnsureAuthorized(ctx); err != nil {
		return nil, err
	}
	kind, ok := parseAssetType(params.AssetType)
	if !ok {
		s.logger.ErrorContext(ctx, "unknown asset type, using all", "assetType", params.AssetType)
	}
	opts := photos.AssetFetchOptions{Predicate: kind.predicate()}

	collections, err := s.library.FetchCollections(ctx, photos.CollectionTypeAlbum, photos.CollectionSubtypeAny, photos.CollectionFetchOptions{})
	if err != nil {
		return nil, s.fetchFailed(ctx, err)
	}
	albums := []Album{}
	for _, c := range collections {
		count := 0
		err := s.library.FetchAssetsInCollection(ctx, c, opts, func(photos.Asset) bool {
			count++
			return true
		})
		if err != nil {
			return nil, s.fetchFailed(ctx, err)
		}
		if count > 0 {
			albums = append(albums, Album{Title: c.Title, Count: count})
		}
	}
	return albums, nil
}
