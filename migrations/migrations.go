// Package migrations holds the camera roll schema: assets, albums and album
// membership.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed *.sql
var FS embed.FS

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Status is the schema version recorded in schema_migrations.
type Status struct {
	Version uint
	Dirty   bool
	// Applied is false on a database no migration has touched.
	Applied bool
}

// Up brings the library schema to the latest version.
func Up(dsn string) error {
	return Run(dsn, DirectionUp, nil)
}

// Run migrates the library schema in one direction. Already being at the
// target is not an error.
func Run(dsn string, dir Direction, log *slog.Logger) error {
	if dir != DirectionUp && dir != DirectionDown {
		return fmt.Errorf("unknown migration direction %q", dir)
	}
	if log == nil {
		log = slog.Default()
	}
	m, err := migrator(dsn)
	if err != nil {
		return err
	}
	defer closeMigrator(m, log)

	switch dir {
	case DirectionUp:
		err = m.Up()
	case DirectionDown:
		err = m.Down()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		log.Debug("library schema unchanged", "direction", string(dir))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", dir, err)
	}
	if v, dirty, verr := m.Version(); verr == nil {
		log.Info("library schema migrated", "direction", string(dir), "version", v, "dirty", dirty)
	}
	return nil
}

func CurrentStatus(dsn string) (Status, error) {
	m, err := migrator(dsn)
	if err != nil {
		return Status{}, err
	}
	defer closeMigrator(m, slog.Default())

	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("schema version: %w", err)
	}
	return Status{Version: v, Dirty: dirty, Applied: true}, nil
}

func migrator(dsn string) (*migrate.Migrate, error) {
	src, err := iofs.New(FS, ".")
	if err != nil {
		return nil, fmt.Errorf("create migration source: %w", err)
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	driver, err := mysql.WithInstance(db, &mysql.Config{})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "mysql", driver)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

func closeMigrator(m *migrate.Migrate, log *slog.Logger) {
	srcErr, dbErr := m.Close()
	if err := errors.Join(srcErr, dbErr); err != nil {
		log.Warn("close migrator", "error", err)
	}
}
