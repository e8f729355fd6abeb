// Package app assembles the camera roll service from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/arawak/cameraroll/internal/cameraroll"
	"github.com/arawak/cameraroll/internal/config"
	"github.com/arawak/cameraroll/internal/imageloader"
	"github.com/arawak/cameraroll/internal/media"
	"github.com/arawak/cameraroll/internal/permission"
	"github.com/arawak/cameraroll/internal/photos"
	"github.com/arawak/cameraroll/internal/store"
	"github.com/arawak/cameraroll/internal/store/memory"
	"github.com/arawak/cameraroll/migrations"
)

// Library is a photos.Library that can report its health.
type Library interface {
	photos.Library
	Ping(ctx context.Context) error
}

type App struct {
	Config  *config.Config
	Library Library
	Media   *media.Manager
	Auth    photos.Authorizer
	Loader  *imageloader.Loader
	Service *cameraroll.Service
	Logger  *slog.Logger

	closers []func() error
}

// Options overrides collaborators, mostly for tests.
type Options struct {
	Clock      photos.Clock
	Library    Library
	Authorizer photos.Authorizer
}

func Build(cfg *config.Config, logger *slog.Logger, opts *Options) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts == nil {
		opts = &Options{}
	}
	clock := opts.Clock
	if clock == nil {
		clock = photos.RealClock{}
	}

	a := &App{Config: cfg, Logger: logger}
	a.Media = media.NewManager(cfg.StorageRoot, cfg.ThumbSize)

	switch {
	case opts.Library != nil:
		a.Library = opts.Library
	case cfg.Backend == config.BackendMemory:
		a.Library = memory.New(a.Media, clock)
	default:
		db, err := OpenDB(cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		a.Library = store.New(db, a.Media, clock)
	}

	if opts.Authorizer != nil {
		a.Auth = opts.Authorizer
	} else {
		a.Auth = permission.New(cfg.LibraryAccess, cfg.PromptResponse, logger)
	}

	a.Loader = imageloader.New(imageloader.Options{
		MaxBytes:             cfg.MaxLoadBytes,
		MaxPixels:            cfg.MaxLoadPixels,
		RemoteLoadsPerSecond: cfg.RemoteLoadsPerSecond,
		Library:              a.Library,
	})
	a.Service = cameraroll.New(a.Library, a.Auth, a.Loader, cameraroll.Options{
		UsageDescription: cfg.UsageDescription,
		Logger:           logger,
	})
	return a, nil
}

// OpenDB connects to MySQL and applies pending migrations.
func OpenDB(dsn string) (*sqlx.DB, error) {
	normalized, err := NormalizeDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open("mysql", normalized)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := migrations.Up(normalized); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NormalizeDSN makes the driver scan DATETIME columns into UTC time.Time values.
func NormalizeDSN(dsn string) (string, error) {
	c, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	c.ParseTime = true
	c.Loc = time.UTC
	return c.FormatDSN(), nil
}

func (a *App) Ready(ctx context.Context) error {
	if err := a.Library.Ping(ctx); err != nil {
		return fmt.Errorf("library: %w", err)
	}
	if err := a.Media.IsWritable(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	return nil
}

func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
