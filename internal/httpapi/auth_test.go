package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arawak/cameraroll/internal/app"
	"github.com/arawak/cameraroll/internal/config"
)

func apiKeyServer(t *testing.T) *httptest.Server {
	cfg := testConfig(t)
	cfg.AuthMode = config.AuthAPIKey
	a, err := app.Build(cfg, nil, nil)
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	keys := &APIKeyStore{byKey: map[string]*APIKey{
		"viewer-key":  {ID: "viewer", Permissions: []string{PermCanRead}},
		"camera-key":  {ID: "camera", Permissions: []string{PermCanRead, PermCanSave}},
		"curator-key": {ID: "curator", Permissions: []string{PermCanRead, PermCanDelete}},
	}}
	ts := httptest.NewServer(NewRouter(cfg, a.Service, a, a.Media, keys, nil))
	t.Cleanup(ts.Close)
	return ts
}

func TestCameraRollRoutePermissions(t *testing.T) {
	ts := apiKeyServer(t)
	saveBody := func() string {
		b, _ := json.Marshal(SaveRequest{URI: dataURI(t, 3, 3)})
		return string(b)
	}

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		key    string
		want   int
	}{
		{"health needs no key", http.MethodGet, "/healthz", "", "", http.StatusOK},
		{"listing without key", http.MethodGet, "/api/photos?first=1", "", "", http.StatusUnauthorized},
		{"listing with unknown key", http.MethodGet, "/api/photos?first=1", "", "stolen", http.StatusUnauthorized},
		{"viewer lists photos", http.MethodGet, "/api/photos?first=1", "", "viewer-key", http.StatusOK},
		{"viewer lists albums", http.MethodGet, "/api/albums", "", "viewer-key", http.StatusOK},
		{"viewer cannot save", http.MethodPost, "/api/camera-roll", saveBody(), "viewer-key", http.StatusForbidden},
		{"viewer cannot delete", http.MethodPost, "/api/photos/delete", `{"uris":[]}`, "viewer-key", http.StatusForbidden},
		{"camera saves", http.MethodPost, "/api/camera-roll", saveBody(), "camera-key", http.StatusCreated},
		{"camera cannot delete", http.MethodPost, "/api/photos/delete", `{"uris":[]}`, "camera-key", http.StatusForbidden},
		{"curator cannot save", http.MethodPost, "/api/camera-roll", saveBody(), "curator-key", http.StatusForbidden},
		{"curator deletes", http.MethodPost, "/api/photos/delete", `{"uris":[]}`, "curator-key", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(tc.method, ts.URL+tc.path, strings.NewReader(tc.body))
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if tc.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			if tc.key != "" {
				req.Header.Set("X-Api-Key", tc.key)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("do: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, resp.StatusCode)
			}
		})
	}
}

func TestForbiddenNamesMissingPermission(t *testing.T) {
	ts := apiKeyServer(t)
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/photos/delete", strings.NewReader(`{"uris":["ph://x"]}`))
	req.Header.Set("X-Api-Key", "camera-key")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	var body Error
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != "forbidden" || !strings.Contains(body.Message, PermCanDelete) {
		t.Fatalf("unexpected error body %+v", body)
	}
}

func TestOpenLibrarySkipsPermissionChecks(t *testing.T) {
	s := &Server{cfg: &config.Config{AuthMode: config.AuthNone}}
	called := false
	h := s.authMiddleware()(s.requirePermissions(PermCanSave, PermCanDelete)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/photos/delete", nil))
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through, called=%v code=%d", called, rec.Code)
	}
}
