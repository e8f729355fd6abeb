package cameraroll

import (
	"context"

	"github.com/arawak/cameraroll/internal/photos"
)

// DeletePhotos removes the assets behind uris in one transaction. Unknown
// uris are ignored.
func (s *Service) DeletePhotos(ctx context.Context, uris []string) (bool, error) {
	if err := s.EnsureAuthorized(ctx); err != nil {
		return false, err
	}
	ids := make([]string, len(uris))
	for i, uri := range uris {
		ids[i] = photos.IdentifierFromURI(uri)
	}

	var (
		fetchErr error
		deleted  int
	)
	err := s.library.PerformChanges(ctx, func(r *photos.ChangeRequest) {
		assets, err := s.library.FetchAssetsWithLocalIdentifiers(ctx, ids)
		if err != nil {
			fetchErr = err
			return
		}
		if len(assets) > 0 {
			r.DeleteAssets(assets)
		}
		deleted = len(assets)
	})
	if err == nil {
		err = fetchErr
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "delete assets failed", "count", len(uris), "err", err)
		return false, wrap(ErrDeleteFailed, err)
	}
	s.logger.InfoContext(ctx, "assets deleted", "count", deleted, "requested", len(uris))
	return true, nil
}
