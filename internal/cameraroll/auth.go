package cameraroll

import (
	"context"

	"github.com/arawak/cameraroll/internal/photos"
)

// EnsureAuthorized fails unless photo library access is granted. An
// undetermined state is resolved by a single prompt.
func (s *Service) EnsureAuthorized(ctx context.Context) error {
	status := s.auth.AuthorizationStatus(ctx)
	if status == photos.AuthorizationStatusNotDetermined {
		status = s.auth.RequestAuthorization(ctx)
		s.logger.DebugContext(ctx, "photo library authorization requested", "status", status.String())
	}
	switch status {
	case photos.AuthorizationStatusAuthorized:
		return nil
	case photos.AuthorizationStatusRestricted:
		return ErrAuthRestricted
	default:
		return ErrAuthDenied
	}
}
