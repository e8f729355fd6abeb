package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/arawak/cameraroll/internal/photos"
)

const (
	DefaultBind                       = ":8080"
	DefaultStorageRoot                = "/srv/cameraroll"
	DefaultMaxLoadBytes         int64 = 50 * 1024 * 1024
	DefaultMaxUploadBytes       int64 = 200 * 1024 * 1024
	DefaultMaxLoadPixels              = 50_000_000
	DefaultRemoteLoadsPerSecond       = 5.0
	DefaultThumbSize                  = 300
)

type Backend string

const (
	BackendMySQL  Backend = "mysql"
	BackendMemory Backend = "memory"
)

type AuthMode string

const (
	AuthNone   AuthMode = "none"
	AuthAPIKey AuthMode = "apikey"
)

type Config struct {
	Bind                 string
	Backend              Backend
	DBDSN                string
	StorageRoot          string
	ThumbSize            int
	MaxLoadBytes         int64
	MaxUploadBytes       int64
	MaxLoadPixels        int
	RemoteLoadsPerSecond float64
	LibraryAccess        photos.AuthorizationStatus
	PromptResponse       photos.AuthorizationStatus
	UsageDescription     string
	AuthMode             AuthMode
	APIKeysFile          string
	CORSAllowedOrigins   []string
	LogLevel             string
	LogFormat            string
	SwaggerUIPath        string
	OpenAPIPath          string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Bind:                 getenv("CAMERAROLL_BIND", DefaultBind),
		Backend:              Backend(strings.ToLower(getenv("CAMERAROLL_BACKEND", string(BackendMySQL)))),
		DBDSN:                os.Getenv("CAMERAROLL_DB_DSN"),
		StorageRoot:          getenv("CAMERAROLL_STORAGE_ROOT", DefaultStorageRoot),
		ThumbSize:            getInt("CAMERAROLL_THUMB_SIZE", DefaultThumbSize),
		MaxLoadBytes:         getInt64("CAMERAROLL_MAX_LOAD_BYTES", DefaultMaxLoadBytes),
		MaxUploadBytes:       getInt64("CAMERAROLL_MAX_UPLOAD_BYTES", DefaultMaxUploadBytes),
		MaxLoadPixels:        getInt("CAMERAROLL_MAX_LOAD_PIXELS", DefaultMaxLoadPixels),
		RemoteLoadsPerSecond: getFloat("CAMERAROLL_REMOTE_LOADS_PER_SECOND", DefaultRemoteLoadsPerSecond),
		UsageDescription:     os.Getenv("CAMERAROLL_PHOTO_LIBRARY_USAGE_DESCRIPTION"),
		AuthMode:             AuthMode(getenv("CAMERAROLL_AUTH_MODE", string(AuthNone))),
		CORSAllowedOrigins:   splitAndTrim(os.Getenv("CAMERAROLL_CORS_ALLOWED_ORIGINS")),
		LogLevel:             os.Getenv("CAMERAROLL_LOG_LEVEL"),
		LogFormat:            getenv("CAMERAROLL_LOG_FORMAT", "text"),
		SwaggerUIPath:        "/swagger",
		OpenAPIPath:          "/openapi.yaml",
	}

	var err error
	cfg.LibraryAccess, err = photos.ParseAuthorizationStatus(getenv("CAMERAROLL_PHOTO_LIBRARY_ACCESS", "not-determined"))
	if err != nil {
		return nil, fmt.Errorf("invalid CAMERAROLL_PHOTO_LIBRARY_ACCESS: %w", err)
	}
	cfg.PromptResponse, err = photos.ParseAuthorizationStatus(getenv("CAMERAROLL_PROMPT_RESPONSE", "authorized"))
	if err != nil {
		return nil, fmt.Errorf("invalid CAMERAROLL_PROMPT_RESPONSE: %w", err)
	}

	switch cfg.Backend {
	case BackendMySQL:
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("CAMERAROLL_DB_DSN is required when CAMERAROLL_BACKEND=mysql")
		}
	case BackendMemory:
	default:
		return nil, fmt.Errorf("invalid CAMERAROLL_BACKEND: %s", cfg.Backend)
	}

	switch cfg.AuthMode {
	case AuthNone, AuthAPIKey:
	default:
		return nil, fmt.Errorf("invalid CAMERAROLL_AUTH_MODE: %s", cfg.AuthMode)
	}

	if cfg.AuthMode == AuthAPIKey {
		cfg.APIKeysFile = getenv("CAMERAROLL_API_KEYS_FILE", "api-keys.yaml")
	}

	if cfg.MaxLoadPixels <= 0 {
		return nil, fmt.Errorf("CAMERAROLL_MAX_LOAD_PIXELS must be positive")
	}

	if cfg.ThumbSize <= 0 {
		return nil, fmt.Errorf("CAMERAROLL_THUMB_SIZE must be positive")
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func splitAndTrim(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
