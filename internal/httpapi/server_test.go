package httpapi

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arawak/cameraroll/internal/app"
	"github.com/arawak/cameraroll/internal/cameraroll"
	"github.com/arawak/cameraroll/internal/config"
	"github.com/arawak/cameraroll/internal/photos"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Backend:              config.BackendMemory,
		StorageRoot:          t.TempDir(),
		ThumbSize:            config.DefaultThumbSize,
		MaxLoadBytes:         config.DefaultMaxLoadBytes,
		MaxUploadBytes:       config.DefaultMaxUploadBytes,
		RemoteLoadsPerSecond: config.DefaultRemoteLoadsPerSecond,
		LibraryAccess:        photos.AuthorizationStatusNotDetermined,
		PromptResponse:       photos.AuthorizationStatusAuthorized,
		UsageDescription:     "tests",
		AuthMode:             config.AuthNone,
		SwaggerUIPath:        "/swagger",
		OpenAPIPath:          "/openapi.yaml",
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *httptest.Server {
	a, err := app.Build(cfg, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	ts := httptest.NewServer(NewRouter(cfg, a.Service, a, a.Media, nil, nil))
	t.Cleanup(ts.Close)
	return ts
}

func pngBytes(t *testing.T, w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func dataURI(t *testing.T, w, h int) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, w, h))
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func getPage(t *testing.T, url string) cameraroll.Page {
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page cameraroll.Page
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	return page
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, testConfig(t))
	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestSaveQueryDelete(t *testing.T) {
	ts := newTestServer(t, testConfig(t))

	resp := postJSON(t, ts.URL+"/api/camera-roll", SaveRequest{URI: dataURI(t, 8, 6), Album: "Trips"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var saved SaveResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&saved))
	assert.True(t, strings.HasPrefix(saved.URI, "ph://"), saved.URI)

	page := getPage(t, ts.URL+"/api/photos?first=10")
	require.Len(t, page.Edges, 1)
	node := page.Edges[0].Node
	assert.Equal(t, saved.URI, node.Image.URI)
	assert.Equal(t, "image", node.Type)
	assert.Equal(t, cameraroll.AllPhotosGroupName, node.GroupName)
	assert.Equal(t, 8, node.Image.Width)
	assert.NotEmpty(t, node.Image.Thumbnail)
	assert.False(t, page.PageInfo.HasNextPage)

	page = getPage(t, ts.URL+"/api/photos?first=10&groupTypes=Album&groupName=Trips")
	require.Len(t, page.Edges, 1)
	assert.Equal(t, "Trips", page.Edges[0].Node.GroupName)

	albumsResp, err := http.Get(ts.URL + "/api/albums")
	require.NoError(t, err)
	defer albumsResp.Body.Close()
	var albums []cameraroll.Album
	require.NoError(t, json.NewDecoder(albumsResp.Body).Decode(&albums))
	assert.Equal(t, []cameraroll.Album{{Title: "Trips", Count: 1}}, albums)

	resp = postJSON(t, ts.URL+"/api/photos/delete", DeleteRequest{URIs: []string{saved.URI}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var deleted DeleteResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&deleted))
	assert.True(t, deleted.Success)

	page = getPage(t, ts.URL+"/api/photos?first=10")
	assert.Empty(t, page.Edges)
}

func TestSaveMultipartUpload(t *testing.T) {
	ts := newTestServer(t, testConfig(t))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	w, err := mw.CreateFormFile("file", "sample.png")
	require.NoError(t, err)
	_, err = w.Write(pngBytes(t, 10, 10))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("type", "photo"))
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.URL+"/api/camera-roll", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	page := getPage(t, ts.URL+"/api/photos?first=1")
	require.Len(t, page.Edges, 1)
	assert.Equal(t, 10, page.Edges[0].Node.Image.Height)
}

func TestPaginationOverHTTP(t *testing.T) {
	ts := newTestServer(t, testConfig(t))
	for i := 0; i < 3; i++ {
		resp := postJSON(t, ts.URL+"/api/camera-roll", SaveRequest{URI: dataURI(t, 4+i, 4)})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	first := getPage(t, ts.URL+"/api/photos?first=2")
	require.Len(t, first.Edges, 2)
	assert.True(t, first.PageInfo.HasNextPage)

	rest := getPage(t, ts.URL+"/api/photos?first=2&after="+url.QueryEscape(first.PageInfo.EndCursor))
	require.Len(t, rest.Edges, 1)
	assert.False(t, rest.PageInfo.HasNextPage)
	assert.NotEqual(t, first.Edges[1].Node.Image.URI, rest.Edges[0].Node.Image.URI)
}

func TestGetPhotosRequiresFirst(t *testing.T) {
	ts := newTestServer(t, testConfig(t))
	resp, err := http.Get(ts.URL + "/api/photos")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSaveRejectsServerLocalPaths(t *testing.T) {
	ts := newTestServer(t, testConfig(t))
	private := filepath.Join(t.TempDir(), "private.png")
	require.NoError(t, os.WriteFile(private, pngBytes(t, 4, 4), 0o600))

	for _, req := range []SaveRequest{
		{URI: "file://" + filepath.ToSlash(private)},
		{URI: private},
		{URI: "FILE://" + filepath.ToSlash(private), Type: "video"},
	} {
		resp := postJSON(t, ts.URL+"/api/camera-roll", req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, req.URI)
	}

	page := getPage(t, ts.URL+"/api/photos?first=5&assetType=All")
	assert.Empty(t, page.Edges)
}

func TestSaveUnloadableImage(t *testing.T) {
	ts := newTestServer(t, testConfig(t))
	resp := postJSON(t, ts.URL+"/api/camera-roll", SaveRequest{URI: "data:image/png;base64,bm90IGFuIGltYWdl"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body Error
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, cameraroll.CodeUnableToLoad, body.Code)
	require.NotNil(t, body.NativeError)
}

func TestDeniedLibraryAccess(t *testing.T) {
	cfg := testConfig(t)
	cfg.PromptResponse = photos.AuthorizationStatusDenied
	ts := newTestServer(t, cfg)

	resp, err := http.Get(ts.URL + "/api/photos?first=1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	var body Error
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, cameraroll.CodeAuthDenied, body.Code)
	assert.Equal(t, "Access to photo library was denied", body.Message)
}

func TestAPIKeyPermissionsOnRoutes(t *testing.T) {
	cfg := testConfig(t)
	cfg.AuthMode = config.AuthAPIKey
	a, err := app.Build(cfg, nil, nil)
	require.NoError(t, err)
	keys := &APIKeyStore{byKey: map[string]*APIKey{
		"reader": {ID: "reader", Permissions: []string{PermCanRead}},
	}}
	ts := httptest.NewServer(NewRouter(cfg, a.Service, a, a.Media, keys, nil))
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/photos?first=1", nil)
	req.Header.Set("X-Api-Key", "reader")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, _ = http.NewRequest(http.MethodPost, ts.URL+"/api/photos/delete", strings.NewReader(`{"uris":[]}`))
	req.Header.Set("X-Api-Key", "reader")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
