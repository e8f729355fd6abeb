package permission

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/arawak/cameraroll/internal/photos"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequestAuthorizationAppliesAnswerOnce(t *testing.T) {
	g := New(photos.AuthorizationStatusNotDetermined, photos.AuthorizationStatusAuthorized, quietLogger())
	ctx := context.Background()

	if got := g.RequestAuthorization(ctx); got != photos.AuthorizationStatusAuthorized {
		t.Fatalf("expected authorized, got %s", got)
	}
	g.Set(photos.AuthorizationStatusNotDetermined)
	if got := g.RequestAuthorization(ctx); got != photos.AuthorizationStatusNotDetermined {
		t.Fatalf("expected prompt not to be shown twice, got %s", got)
	}
}

func TestRequestAuthorizationKeepsDecidedState(t *testing.T) {
	g := New(photos.AuthorizationStatusRestricted, photos.AuthorizationStatusAuthorized, quietLogger())
	if got := g.RequestAuthorization(context.Background()); got != photos.AuthorizationStatusRestricted {
		t.Fatalf("expected restricted to stick, got %s", got)
	}
}

func TestRequestAuthorizationConcurrent(t *testing.T) {
	g := New(photos.AuthorizationStatusNotDetermined, photos.AuthorizationStatusDenied, quietLogger())
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := g.RequestAuthorization(context.Background()); got != photos.AuthorizationStatusDenied {
				t.Errorf("expected denied, got %s", got)
			}
		}()
	}
	wg.Wait()
}
