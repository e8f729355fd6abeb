// Package imageloader decodes images referenced by uri: local files, data
// uris, remote http(s) resources and existing library assets.
package imageloader

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/time/rate"

	"github.com/arawak/cameraroll/internal/media"
	"github.com/arawak/cameraroll/internal/photos"
)

const (
	DefaultMaxBytes             = 50 << 20
	DefaultMaxPixels            = 50_000_000
	DefaultRemoteLoadsPerSecond = 5
)

var (
	ErrUnsupportedScheme = errors.New("unsupported uri scheme")
	ErrTooLarge          = errors.New("image exceeds size limit")
	ErrNotFound          = errors.New("image not found")
	ErrTooManyPixels     = errors.New("image exceeds pixel limit")
)

// Resolver reads library assets for ph:// uris.
type Resolver interface {
	FetchAssetsWithLocalIdentifiers(ctx context.Context, ids []string) ([]photos.Asset, error)
	OpenResource(ctx context.Context, r photos.Resource) (io.ReadCloser, error)
}

type Options struct {
	// MaxBytes caps the encoded size of any source; <= 0 uses DefaultMaxBytes.
	MaxBytes             int64
	// MaxPixels caps width*height of a decoded image; <= 0 uses DefaultMaxPixels.
	MaxPixels            int
	RemoteLoadsPerSecond float64
	HTTPClient           *http.Client
	Library              Resolver
}

type Loader struct {
	maxBytes  int64
	maxPixels int
	client   *http.Client
	throttle *rate.Limiter
	library  Resolver
}

func New(opts Options) *Loader {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.MaxPixels <= 0 {
		opts.MaxPixels = DefaultMaxPixels
	}
	if opts.RemoteLoadsPerSecond <= 0 {
		opts.RemoteLoadsPerSecond = DefaultRemoteLoadsPerSecond
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Loader{
		maxBytes:  opts.MaxBytes,
		maxPixels: opts.MaxPixels,
		client:    opts.HTTPClient,
		throttle:  rate.NewLimiter(rate.Limit(opts.RemoteLoadsPerSecond), 1),
		library:   opts.Library,
	}
}

func (l *Loader) Load(ctx context.Context, uri string) (image.Image, error) {
	scheme := ""
	if i := strings.Index(uri, ":"); i > 0 {
		scheme = strings.ToLower(uri[:i])
	}
	switch scheme {
	case "data":
		return l.loadData(uri)
	case "http", "https":
		return l.loadRemote(ctx, uri)
	case "ph":
		return l.loadAsset(ctx, photos.IdentifierFromURI(uri))
	case "", "file":
		return l.loadFile(uri)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
	}
}

func (l *Loader) loadFile(uri string) (image.Image, error) {
	path, err := media.LocalPath(uri)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return l.decode(f)
}

// loadData decodes an RFC 2397 data uri.
func (l *Loader) loadData(uri string) (image.Image, error) {
	header, payload, ok := strings.Cut(uri[len("data:"):], ",")
	if !ok {
		return nil, errors.New("malformed data uri")
	}
	var raw []byte
	if strings.HasSuffix(strings.ToLower(header), ";base64") {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			b, err = base64.URLEncoding.DecodeString(payload)
		}
		if err != nil {
			return nil, fmt.Errorf("decode data uri: %w", err)
		}
		raw = b
	} else {
		s, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("decode data uri: %w", err)
		}
		raw = []byte(s)
	}
	if int64(len(raw)) > l.maxBytes {
		return nil, ErrTooLarge
	}
	return l.decode(bytes.NewReader(raw))
}

func (l *Loader) loadRemote(ctx context.Context, uri string) (image.Image, error) {
	if err := l.throttle.Wait(ctx); err != nil {
		return nil, fmt.Errorf("throttler wait error: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", uri, err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uri)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch %s: unexpected status %s", uri, resp.Status)
	}
	if resp.ContentLength > l.maxBytes {
		return nil, ErrTooLarge
	}
	return l.decode(resp.Body)
}

func (l *Loader) loadAsset(ctx context.Context, id string) (image.Image, error) {
	if l.library == nil {
		return nil, fmt.Errorf("%w: ph", ErrUnsupportedScheme)
	}
	assets, err := l.library.FetchAssetsWithLocalIdentifiers(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, photos.URIForIdentifier(id))
	}
	res, ok := assets[0].PrimaryResource()
	if !ok {
		return nil, photos.ErrNoResource
	}
	rc, err := l.library.OpenResource(ctx, res)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return l.decode(rc)
}

func (l *Loader) decode(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > l.maxBytes {
		return nil, ErrTooLarge
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > int64(l.maxPixels) {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
