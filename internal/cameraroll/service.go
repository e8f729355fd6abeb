// Package cameraroll exposes the camera roll operations: saving media into the
// photo library, paging through it, listing albums and deleting assets.
package cameraroll

import (
	"context"
	"image"
	"log/slog"
	"sync"

	"github.com/arawak/cameraroll/internal/photos"
)

// Loader decodes the image a uri refers to.
type Loader interface {
	Load(ctx context.Context, uri string) (image.Image, error)
}

type Options struct {
	// UsageDescription is the text shown when access is requested. Its absence
	// is only reported.
	UsageDescription string
	Logger           *slog.Logger
}

// Service holds no per-call state; every result is built fresh.
type Service struct {
	library          photos.Library
	auth             photos.Authorizer
	loader           Loader
	usageDescription string
	logger           *slog.Logger
	warnUsage        sync.Once
}

func New(library photos.Library, auth photos.Authorizer, loader Loader, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		library:          library,
		auth:             auth,
		loader:           loader,
		usageDescription: opts.UsageDescription,
		logger:           logger,
	}
}
