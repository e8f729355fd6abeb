package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/oapi-codegen/runtime"

	"github.com/arawak/cameraroll/internal/cameraroll"
	"github.com/arawak/cameraroll/internal/config"
	"github.com/arawak/cameraroll/internal/logger"
	"github.com/arawak/cameraroll/internal/media"
	"github.com/arawak/cameraroll/internal/swaggerui"
)

// Readiness reports whether the backing library and storage can serve requests.
type Readiness interface {
	Ready(ctx context.Context) error
}

type Server struct {
	cfg     *config.Config
	service *cameraroll.Service
	ready   Readiness
	media   *media.Manager
	apiKeys *APIKeyStore
	logger  *slog.Logger
}

var (
	openapiOnce sync.Once
	openapiData []byte
	openapiErr  error
)

func loadOpenAPI() ([]byte, error) {
	openapiOnce.Do(func() {
		path := filepath.Clean("openapi.yaml")
		openapiData, openapiErr = os.ReadFile(path)
	})
	return openapiData, openapiErr
}

func NewRouter(cfg *config.Config, svc *cameraroll.Service, ready Readiness, mediaMgr *media.Manager, apiKeys *APIKeyStore, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}
	s := &Server{cfg: cfg, service: svc, ready: ready, media: mediaMgr, apiKeys: apiKeys, logger: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(loggingMiddleware(log))

	if len(cfg.CORSAllowedOrigins) > 0 {
		c := cors.New(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"X-Api-Key", "Content-Type", "Accept"},
			AllowCredentials: true,
		})
		r.Use(c.Handler)
	}

	r.Get("/healthz", s.GetHealthz)
	r.Get("/readyz", s.GetReadyz)
	r.Get(cfg.OpenAPIPath, s.serveOpenAPI)
	r.Mount(cfg.SwaggerUIPath, swaggerui.Handler(cfg.SwaggerUIPath, cfg.OpenAPIPath))

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware())
		r.With(s.requirePermissions(PermCanSave)).Post("/api/camera-roll", s.SaveToCameraRoll)
		r.With(s.requirePermissions(PermCanRead)).Get("/api/photos", s.GetPhotos)
		r.With(s.requirePermissions(PermCanDelete)).Post("/api/photos/delete", s.DeletePhotos)
		r.With(s.requirePermissions(PermCanRead)).Get("/api/albums", s.GetAlbums)
	})

	return r
}

func (s *Server) serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	data, err := loadOpenAPI()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "unable to load openapi.yaml", map[string]any{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) GetHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Health{Status: StatusOK})
}

func (s *Server) GetReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.ready.Ready(ctx); err != nil {
		writeError(w, http.StatusServiceUnavailable, "not_ready", "library unavailable", map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, Health{Status: StatusOK})
}

func (s *Server) SaveToCameraRoll(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		staged, ok := s.stageUpload(w, r, &req)
		if !ok {
			return
		}
		defer os.Remove(staged)
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "invalid json", nil)
			return
		}
		if req.URI == "" {
			writeError(w, http.StatusBadRequest, "bad_request", "uri is required", nil)
			return
		}
		// server-local paths are reachable only through multipart staging
		if !remoteURI(req.URI) {
			writeError(w, http.StatusBadRequest, "bad_request", "uri must be a data:, http(s):// or ph:// reference", nil)
			return
		}
	}

	uri, err := s.service.SaveToCameraRoll(r.Context(), req.URI, cameraroll.SaveOptions{Type: req.Type, Album: req.Album})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, SaveResponse{URI: uri})
}

// stageUpload copies the multipart file into staging and points req at it.
func (s *Server) stageUpload(w http.ResponseWriter, r *http.Request, req *SaveRequest) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "failed to parse multipart", map[string]any{"error": err.Error()})
		return "", false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "file is required", nil)
		return "", false
	}
	defer file.Close()

	staged, err := s.media.StageUpload(file, header.Filename, s.cfg.MaxUploadBytes)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, media.ErrTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, status, "upload_failed", err.Error(), nil)
		return "", false
	}
	req.URI = "file://" + filepath.ToSlash(staged)
	req.Type = formValue(r.MultipartForm.Value, "type")
	req.Album = formValue(r.MultipartForm.Value, "album")
	return staged, true
}

func remoteURI(uri string) bool {
	scheme, _, ok := strings.Cut(uri, ":")
	if !ok {
		return false
	}
	switch strings.ToLower(scheme) {
	case "data", "http", "https", "ph":
		return true
	default:
		return false
	}
}

func (s *Server) GetPhotos(w http.ResponseWriter, r *http.Request) {
	params, err := bindGetPhotosParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	log := logger.FromContext(r.Context(), s.logger)
	log.Debug("get photos", "first", params.First, "groupTypes", params.GroupTypes, "assetType", params.AssetType, "after", params.After)

	page, err := s.service.GetPhotos(r.Context(), params)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func bindGetPhotosParams(r *http.Request) (cameraroll.GetPhotosParams, error) {
	q := r.URL.Query()
	var (
		first      int
		after      *string
		groupName  *string
		groupTypes *string
		assetType  *string
		mimeTypes  *[]string
		fromTime   *int64
		toTime     *int64
	)
	binds := []struct {
		name     string
		required bool
		dest     any
	}{
		{"first", true, &first},
		{"after", false, &after},
		{"groupName", false, &groupName},
		{"groupTypes", false, &groupTypes},
		{"assetType", false, &assetType},
		{"mimeTypes", false, &mimeTypes},
		{"fromTime", false, &fromTime},
		{"toTime", false, &toTime},
	}
	for _, b := range binds {
		if err := runtime.BindQueryParameter("form", true, b.required, b.name, q, b.dest); err != nil {
			return cameraroll.GetPhotosParams{}, err
		}
	}
	return cameraroll.GetPhotosParams{
		First:      first,
		After:      getStringPtr(after),
		GroupName:  getStringPtr(groupName),
		GroupTypes: getStringOr(groupTypes, cameraroll.GroupTypesAll),
		AssetType:  getStringOr(assetType, "photos"),
		MimeTypes:  derefStringSlice(mimeTypes),
		FromTime:   derefInt64(fromTime),
		ToTime:     derefInt64(toTime),
	}, nil
}

func (s *Server) DeletePhotos(w http.ResponseWriter, r *http.Request) {
	var req DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json", nil)
		return
	}
	ok, err := s.service.DeletePhotos(r.Context(), req.URIs)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{Success: ok})
}

func (s *Server) GetAlbums(w http.ResponseWriter, r *http.Request) {
	var assetType *string
	if err := runtime.BindQueryParameter("form", true, false, "assetType", r.URL.Query(), &assetType); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	albums, err := s.service.GetAlbums(r.Context(), cameraroll.GetAlbumsParams{AssetType: getStringOr(assetType, "all")})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, albums)
}

// writeServiceError maps operation failures onto HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var e *cameraroll.Error
	if !errors.As(err, &e) {
		logger.FromContext(r.Context(), s.logger).Error("unexpected error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", err.Error(), nil)
		return
	}
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, cameraroll.ErrAuthRestricted), errors.Is(err, cameraroll.ErrAuthDenied):
		status = http.StatusForbidden
	case errors.Is(err, cameraroll.ErrUnableToLoad):
		status = http.StatusBadRequest
	}
	body := Error{Code: e.Code, Message: e.Message}
	if e.Native != nil {
		native := e.Native.Error()
		body.NativeError = &native
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string, details map[string]any) {
	writeJSON(w, status, Error{Code: code, Message: message, Details: details})
}

func loggingMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLog := log.With("request_id", middleware.GetReqID(r.Context()))
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), reqLog)))
			reqLog.Info("request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "duration", time.Since(start).String())
		})
	}
}

func getStringPtr(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func getStringOr(v *string, def string) string {
	if v == nil || *v == "" {
		return def
	}
	return *v
}

func derefStringSlice(v *[]string) []string {
	if v == nil {
		return nil
	}
	return *v
}

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

func formValue(values map[string][]string, key string) string {
	if values == nil {
		return ""
	}
	vals := values[key]
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}
