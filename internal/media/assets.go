package media

import (
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/arawak/cameraroll/internal/photos"
)

// LocalPath resolves a file URL, or a bare path, to a filesystem path.
func LocalPath(fileURL string) (string, error) {
	u, err := url.Parse(fileURL)
	if err != nil {
		return "", fmt.Errorf("parse file url: %w", err)
	}
	switch u.Scheme {
	case "":
		return fileURL, nil
	case "file":
		if u.Path == "" {
			return "", fmt.Errorf("file url has no path: %s", fileURL)
		}
		return filepath.FromSlash(u.Path), nil
	default:
		return "", fmt.Errorf("unsupported file url scheme: %s", u.Scheme)
	}
}

// ImageAsset describes a still created from decoded pixels.
func ImageAsset(id string, res *SaveResult, created time.Time) photos.Asset {
	return photos.Asset{
		LocalIdentifier: id,
		MediaType:       photos.MediaTypeImage,
		PixelWidth:      res.Width,
		PixelHeight:     res.Height,
		CreationDate:    created,
		Resources: []photos.Resource{{
			OriginalFilename:      photos.DefaultImageFilename(id),
			UniformTypeIdentifier: "public.jpeg",
			StorageKey:            res.Key,
			Bytes:                 res.Bytes,
		}},
	}
}

// FileAsset describes an asset imported from a file on disk.
func FileAsset(id, path string, res *SaveResult, created time.Time, fallback photos.MediaType) photos.Asset {
	uti := photos.UTIForFilename(path)
	kind := photos.MediaTypeForUTI(uti)
	if kind == photos.MediaTypeUnknown {
		kind = fallback
	}
	return photos.Asset{
		LocalIdentifier: id,
		MediaType:       kind,
		PixelWidth:      res.Width,
		PixelHeight:     res.Height,
		CreationDate:    created,
		Resources: []photos.Resource{{
			OriginalFilename:      filepath.Base(path),
			UniformTypeIdentifier: uti,
			StorageKey:            res.Key,
			Bytes:                 res.Bytes,
		}},
	}
}
