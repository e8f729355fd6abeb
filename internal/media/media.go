package media

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/arawak/cameraroll/internal/photos"
)

const (
	VariantOriginal = "original"
	VariantThumb    = "thumb"
)

const (
	DefaultThumbSize   = 300
	DefaultJPEGQuality = 90
	// MaxDecodePixels bounds originals decoded for thumbnails and previews.
	MaxDecodePixels = 50_000_000
)

var ErrTooLarge = errors.New("file too large")
var ErrNotFound = errors.New("media not found")
var ErrTooManyPixels = errors.New("image exceeds pixel limit")

// Manager handles filesystem operations for library resources.
type Manager struct {
	root      string
	thumbSize int
}

func NewManager(root string, thumbSize int) *Manager {
	if thumbSize <= 0 {
		thumbSize = DefaultThumbSize
	}
	return &Manager{root: root, thumbSize: thumbSize}
}

// SaveResult describes a stored original. Key addresses it in later calls.
type SaveResult struct {
	Key    string
	SHA256 string
	Bytes  int64
	Mime   string
	Width  int
	Height int
	Ext    string
}

// SaveImage JPEG-encodes decoded pixels and stores them as a new original.
func (m *Manager) SaveImage(ctx context.Context, img image.Image) (*SaveResult, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: DefaultJPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return m.ingest(ctx, &buf, ".jpg", -1)
}

// ImportFile copies a local file into the store. maxBytes < 0 disables the limit.
func (m *Manager) ImportFile(ctx context.Context, path string, maxBytes int64) (*SaveResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return m.ingest(ctx, f, strings.ToLower(filepath.Ext(path)), maxBytes)
}

// StageUpload spools r to a temp file under the root and returns its path.
// The caller removes the file.
func (m *Manager) StageUpload(r io.Reader, filename string, maxBytes int64) (string, error) {
	dir := filepath.Join(m.root, "staging")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(dir, "upload-*"+strings.ToLower(filepath.Ext(filename)))
	if err != nil {
		return "", err
	}
	lim := &io.LimitedReader{R: r, N: maxBytes + 1}
	written, err := io.Copy(tmp, lim)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > maxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func (m *Manager) ingest(ctx context.Context, r io.Reader, ext string, maxBytes int64) (*SaveResult, error) {
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return nil, err
	}

	if maxBytes >= 0 {
		r = &io.LimitedReader{R: r, N: maxBytes + 1}
	}
	br := bufio.NewReader(r)
	peek, _ := br.Peek(8192)
	mimeType := http.DetectContentType(peek)

	tmp, err := os.CreateTemp(m.root, "ingest-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	hash := sha256.New()
	mw := io.MultiWriter(tmp, hash)
	written, err := io.Copy(mw, br)
	if err != nil {
		return nil, err
	}
	if maxBytes >= 0 && written > maxBytes {
		return nil, ErrTooLarge
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &SaveResult{Bytes: written, Mime: mimeType, Ext: ext}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	cfg, format, decodeErr := image.DecodeConfig(tmp)
	if decodeErr == nil {
		res.Width = cfg.Width
		res.Height = cfg.Height
		if res.Ext == "" {
			res.Ext = "." + format
		}
	}
	if res.Ext == "" {
		res.Ext = ".bin"
	}

	res.SHA256 = hex.EncodeToString(hash.Sum(nil))
	res.Key = keyFor(res.SHA256, res.Ext)

	origPath := m.pathFor(res.Key, VariantOriginal)
	if err := m.ensureDir(origPath); err != nil {
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}
	if err := os.Rename(tmp.Name(), origPath); err != nil {
		if !errors.Is(err, os.ErrExist) {
			return nil, err
		}
		if err := copyFile(tmp.Name(), origPath); err != nil {
			return nil, err
		}
	}

	if decodeErr == nil && withinPixelLimit(cfg) {
		if err := m.generateThumb(res.Key); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (m *Manager) generateThumb(key string) error {
	thumbPath := m.pathFor(key, VariantThumb)
	if _, err := os.Stat(thumbPath); err == nil {
		return nil
	}
	src, err := decodeFile(m.pathFor(key, VariantOriginal))
	if err != nil {
		return err
	}
	thumb := Scale(src, image.Pt(m.thumbSize, m.thumbSize), photos.ContentModeAspectFill, photos.DeliveryModeHighQuality)
	if err := m.ensureDir(thumbPath); err != nil {
		return err
	}
	w, err := os.Create(thumbPath)
	if err != nil {
		return err
	}
	defer w.Close()
	return jpeg.Encode(w, thumb, &jpeg.Options{Quality: DefaultJPEGQuality})
}

// Open returns the stored original for key.
func (m *Manager) Open(key string) (io.ReadCloser, error) {
	f, err := os.Open(m.pathFor(key, VariantOriginal))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

// Preview renders key at the requested size. Opportunistic and fast requests
// are served from the thumbnail when it is large enough.
func (m *Manager) Preview(key string, opts photos.ImageRequestOptions) (image.Image, error) {
	if opts.DeliveryMode != photos.DeliveryModeHighQuality &&
		opts.TargetSize.X <= m.thumbSize && opts.TargetSize.Y <= m.thumbSize {
		if img, err := decodeFile(m.pathFor(key, VariantThumb)); err == nil {
			return Scale(img, opts.TargetSize, opts.ContentMode, opts.DeliveryMode), nil
		}
	}
	img, err := decodeFile(m.pathFor(key, VariantOriginal))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", photos.ErrNoPreview, err)
	}
	return Scale(img, opts.TargetSize, opts.ContentMode, opts.DeliveryMode), nil
}

// Remove deletes the original and its thumbnail. Missing files are ignored.
func (m *Manager) Remove(key string) error {
	for _, variant := range []string{VariantOriginal, VariantThumb} {
		if err := os.Remove(m.pathFor(key, variant)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, err
	}
	if !withinPixelLimit(cfg) {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(f)
	return img, err
}

func withinPixelLimit(cfg image.Config) bool {
	return cfg.Width > 0 && cfg.Height > 0 && int64(cfg.Width)*int64(cfg.Height) <= MaxDecodePixels
}

func (m *Manager) ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

func copyFile(src, dst string) error {
	r, err := os.Open(src)
	if err != nil {
		return err
	}
	defer r.Close()
	w, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer w.Close()
	_, err = io.Copy(w, r)
	return err
}

func keyFor(sha, ext string) string {
	return filepath.ToSlash(filepath.Join(sha[0:2], sha[2:4], sha+ext))
}

func (m *Manager) pathFor(key, variant string) string {
	switch variant {
	case VariantThumb:
		base := strings.TrimSuffix(key, filepath.Ext(key))
		return filepath.Join(m.root, VariantThumb, filepath.FromSlash(base)+".jpg")
	default:
		return filepath.Join(m.root, variant, filepath.FromSlash(key))
	}
}

func (m *Manager) PathForVariant(key, variant string) string {
	return m.pathFor(key, variant)
}

func (m *Manager) IsWritable() error {
	testPath := filepath.Join(m.root, ".writetest")
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(testPath, []byte("ok"), 0o644); err != nil {
		return err
	}
	return os.Remove(testPath)
}
