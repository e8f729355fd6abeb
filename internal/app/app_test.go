package app

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arawak/cameraroll/internal/cameraroll"
	"github.com/arawak/cameraroll/internal/config"
	"github.com/arawak/cameraroll/internal/photos"
	"github.com/arawak/cameraroll/internal/store/memory"
)

func memoryConfig(t *testing.T) *config.Config {
	return &config.Config{
		Backend:        config.BackendMemory,
		StorageRoot:    t.TempDir(),
		ThumbSize:      config.DefaultThumbSize,
		LibraryAccess:  photos.AuthorizationStatusNotDetermined,
		PromptResponse: photos.AuthorizationStatusAuthorized,
	}
}

func TestBuildMemoryBackend(t *testing.T) {
	a, err := Build(memoryConfig(t), nil, nil)
	require.NoError(t, err)
	defer a.Close()

	_, ok := a.Library.(*memory.Library)
	assert.True(t, ok)
	require.NoError(t, a.Ready(context.Background()))

	page, err := a.Service.GetPhotos(context.Background(), cameraroll.GetPhotosParams{First: 5, GroupTypes: "all"})
	require.NoError(t, err)
	assert.Empty(t, page.Edges)
	assert.Equal(t, photos.AuthorizationStatusAuthorized, a.Auth.AuthorizationStatus(context.Background()))
}

func TestBuildDeniedPrompt(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.PromptResponse = photos.AuthorizationStatusDenied
	a, err := Build(cfg, nil, nil)
	require.NoError(t, err)

	_, err = a.Service.GetPhotos(context.Background(), cameraroll.GetPhotosParams{First: 1, GroupTypes: "all"})
	assert.ErrorIs(t, err, cameraroll.ErrAuthDenied)
}

func TestNormalizeDSN(t *testing.T) {
	dsn, err := NormalizeDSN("user:pass@tcp(localhost:3306)/cameraroll")
	require.NoError(t, err)
	assert.True(t, strings.Contains(dsn, "parseTime=true"), dsn)

	_, err = NormalizeDSN("not a dsn")
	assert.Error(t, err)
}
