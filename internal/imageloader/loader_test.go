package imageloader_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arawak/cameraroll/internal/imageloader"
	"github.com/arawak/cameraroll/internal/media"
	"github.com/arawak/cameraroll/internal/photos"
	"github.com/arawak/cameraroll/internal/store/memory"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{G: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLoadDataURI(t *testing.T) {
	l := imageloader.New(imageloader.Options{})
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(encodePNG(t, 3, 2))
	img, err := l.Load(context.Background(), uri)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(3, 2), img.Bounds().Size())

	_, err = l.Load(context.Background(), "data:image/png;base64")
	assert.Error(t, err)
}

func TestLoadFileAndBarePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pic.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, 5, 5), 0o644))
	l := imageloader.New(imageloader.Options{})

	img, err := l.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 5, img.Bounds().Dx())

	img, err = l.Load(context.Background(), "file://"+filepath.ToSlash(path))
	require.NoError(t, err)
	assert.Equal(t, 5, img.Bounds().Dy())

	_, err = l.Load(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, imageloader.ErrNotFound)
}

func TestLoadRemote(t *testing.T) {
	body := encodePNG(t, 4, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(body)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := imageloader.New(imageloader.Options{HTTPClient: srv.Client(), RemoteLoadsPerSecond: 100})
	img, err := l.Load(context.Background(), srv.URL+"/ok.png")
	require.NoError(t, err)
	assert.Equal(t, image.Pt(4, 4), img.Bounds().Size())

	_, err = l.Load(context.Background(), srv.URL+"/nope.png")
	assert.ErrorIs(t, err, imageloader.ErrNotFound)

	small := imageloader.New(imageloader.Options{HTTPClient: srv.Client(), MaxBytes: 8, RemoteLoadsPerSecond: 100})
	_, err = small.Load(context.Background(), srv.URL+"/ok.png")
	assert.ErrorIs(t, err, imageloader.ErrTooLarge)
}

func TestLoadLibraryAsset(t *testing.T) {
	lib := memory.New(media.NewManager(t.TempDir(), media.DefaultThumbSize), nil)
	ctx := context.Background()
	var id string
	require.NoError(t, lib.PerformChanges(ctx, func(r *photos.ChangeRequest) {
		id = r.CreateAssetFromImage(image.NewRGBA(image.Rect(0, 0, 6, 3))).LocalIdentifier
	}))

	l := imageloader.New(imageloader.Options{Library: lib})
	img, err := l.Load(ctx, photos.URIForIdentifier(id))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(6, 3), img.Bounds().Size())

	_, err = l.Load(ctx, "ph://nothing/L0/001")
	assert.ErrorIs(t, err, imageloader.ErrNotFound)
}

func TestLoadUnsupportedScheme(t *testing.T) {
	l := imageloader.New(imageloader.Options{})
	_, err := l.Load(context.Background(), "ftp://example.com/a.png")
	assert.ErrorIs(t, err, imageloader.ErrUnsupportedScheme)
}

func TestLoadRejectsOversizedDimensions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2000, 1000))))
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	l := imageloader.New(imageloader.Options{MaxBytes: 1 << 20, MaxPixels: 1_000_000})
	require.Less(t, buf.Len(), 1<<20)
	_, err := l.Load(context.Background(), uri)
	assert.ErrorIs(t, err, imageloader.ErrTooManyPixels)

	roomy := imageloader.New(imageloader.Options{MaxBytes: 1 << 20, MaxPixels: 2_000_000})
	img, err := roomy.Load(context.Background(), uri)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(2000, 1000), img.Bounds().Size())
}
