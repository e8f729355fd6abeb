// Package permission owns the process-wide photo library authorization state.
package permission

import (
	"context"
	"log/slog"
	"sync"

	"github.com/arawak/cameraroll/internal/photos"
)

// Gate is a photos.Authorizer whose prompt is answered from configuration.
// The prompt is shown at most once per process.
type Gate struct {
	mu     sync.Mutex
	status photos.AuthorizationStatus
	answer photos.AuthorizationStatus
	prompt sync.Once
	logger *slog.Logger
}

func New(initial, answer photos.AuthorizationStatus, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{status: initial, answer: answer, logger: logger}
}

func (g *Gate) AuthorizationStatus(context.Context) photos.AuthorizationStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

func (g *Gate) RequestAuthorization(ctx context.Context) photos.AuthorizationStatus {
	g.prompt.Do(func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.status != photos.AuthorizationStatusNotDetermined {
			return
		}
		g.logger.InfoContext(ctx, "photo library access prompt answered", "status", g.answer.String())
		g.status = g.answer
	})
	return g.AuthorizationStatus(ctx)
}

// Set replaces the current state, as when access is changed in settings.
func (g *Gate) Set(status photos.AuthorizationStatus) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.status = status
}
