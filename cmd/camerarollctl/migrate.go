package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arawak/cameraroll/internal/app"
	"github.com/arawak/cameraroll/internal/config"
	"github.com/arawak/cameraroll/migrations"
)

type configLoader func() (*config.Config, error)

var errNotMySQL = errors.New("migrations apply only to the mysql backend")

// newMigrateCmd manages the library schema without building the app, which
// would migrate up on its own.
func newMigrateCmd(load configLoader) *cobra.Command {
	var dsn string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the MySQL library schema",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if cfg.Backend != config.BackendMySQL {
				return errNotMySQL
			}
			dsn, err = app.NormalizeDSN(cfg.DBDSN)
			return err
		},
	}

	for _, dir := range []migrations.Direction{migrations.DirectionUp, migrations.DirectionDown} {
		cmd.AddCommand(&cobra.Command{
			Use:   string(dir),
			Short: fmt.Sprintf("Apply every %s migration", dir),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := migrations.Run(dsn, dir, nil); err != nil {
					return err
				}
				return printStatus(cmd, dsn)
			},
		})
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printStatus(cmd, dsn)
		},
	})
	return cmd
}

func printStatus(cmd *cobra.Command, dsn string) error {
	st, err := migrations.CurrentStatus(dsn)
	if err != nil {
		return err
	}
	return printJSON(cmd, map[string]any{"version": st.Version, "dirty": st.Dirty, "applied": st.Applied})
}
