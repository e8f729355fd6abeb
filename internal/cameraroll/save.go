package cameraroll

import (
	"context"
	"errors"
	"image"

	"github.com/arawak/cameraroll/internal/photos"
)

// SaveToCameraRoll imports sourceRef and returns the uri of the new asset.
// An album created along the way is kept even if the import fails.
func (s *Service) SaveToCameraRoll(ctx context.Context, sourceRef string, opts SaveOptions) (string, error) {
	if err := s.EnsureAuthorized(ctx); err != nil {
		return "", err
	}

	video := opts.Type == "video"
	var img image.Image
	if !video {
		loaded, err := s.loader.Load(ctx, sourceRef)
		if err != nil {
			s.logger.ErrorContext(ctx, "load image failed", "uri", sourceRef, "err", err)
			return "", wrap(ErrUnableToLoad, err)
		}
		img = loaded
	}

	var album *photos.Collection
	if opts.Album != "" {
		c, err := s.resolveAlbum(ctx, opts.Album)
		if err != nil {
			s.logger.ErrorContext(ctx, "resolve album failed", "album", opts.Album, "err", err)
			return "", wrap(ErrUnableToSave, err)
		}
		album = c
	}

	var created photos.Placeholder
	err := s.library.PerformChanges(ctx, func(r *photos.ChangeRequest) {
		if video {
			created = r.CreateAssetFromVideo(sourceRef)
		} else {
			created = r.CreateAssetFromImage(img)
		}
		if album != nil {
			r.AddAssets(album.LocalIdentifier, created)
		}
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "save to camera roll failed", "err", err)
		return "", wrap(ErrUnableToSave, err)
	}
	s.logger.InfoContext(ctx, "saved to camera roll", "id", created.LocalIdentifier, "type", opts.Type, "album", opts.Album)
	return photos.URIForIdentifier(created.LocalIdentifier), nil
}

// resolveAlbum returns the first album titled title, creating it in its own
// transaction when there is none.
func (s *Service) resolveAlbum(ctx context.Context, title string) (*photos.Collection, error) {
	existing, err := s.library.FetchCollections(ctx, photos.CollectionTypeAlbum, photos.CollectionSubtypeAny, photos.CollectionFetchOptions{Title: title})
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return &existing[0], nil
	}

	var placeholder photos.Placeholder
	if err := s.library.PerformChanges(ctx, func(r *photos.ChangeRequest) {
		placeholder = r.CreateCollection(title)
	}); err != nil {
		return nil, err
	}
	created, err := s.library.FetchCollectionsWithLocalIdentifiers(ctx, []string{placeholder.LocalIdentifier})
	if err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return nil, errors.New("created album not found")
	}
	s.logger.InfoContext(ctx, "album created", "title", title, "id", placeholder.LocalIdentifier)
	return &created[0], nil
}
