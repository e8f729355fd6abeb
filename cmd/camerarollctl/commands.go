package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/arawak/cameraroll/internal/app"
	"github.com/arawak/cameraroll/internal/cameraroll"
	"github.com/arawak/cameraroll/internal/config"
	"github.com/arawak/cameraroll/internal/logger"
)

type appLoader func() (*app.App, error)

func loadApp() (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	// stderr keeps stdout parseable
	log := logger.NewWriter(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	return app.Build(cfg, log, nil)
}

func newRootCmd(out io.Writer, load appLoader, loadConfig configLoader) *cobra.Command {
	var a *app.App
	root := &cobra.Command{
		Use:           "camerarollctl",
		Short:         "Operate on the camera roll library",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			a, err = load()
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a == nil {
				return nil
			}
			return a.Close()
		},
	}
	root.SetOut(out)
	service := func() *cameraroll.Service { return a.Service }

	root.AddCommand(
		newSaveCmd(service),
		newPhotosCmd(service),
		newDeleteCmd(service),
		newAlbumsCmd(service),
		newMigrateCmd(loadConfig),
	)
	return root
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newSaveCmd(service func() *cameraroll.Service) *cobra.Command {
	var opts cameraroll.SaveOptions
	cmd := &cobra.Command{
		Use:   "save <uri>",
		Short: "Save an image or video to the camera roll",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uri, err := service().SaveToCameraRoll(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), uri)
			return err
		},
	}
	cmd.Flags().StringVar(&opts.Type, "type", "auto", "photo, video or auto")
	cmd.Flags().StringVar(&opts.Album, "album", "", "album to add the asset to")
	return cmd
}

func newPhotosCmd(service func() *cameraroll.Service) *cobra.Command {
	var p cameraroll.GetPhotosParams
	cmd := &cobra.Command{
		Use:   "photos",
		Short: "List a page of assets as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := service().GetPhotos(cmd.Context(), p)
			if err != nil {
				return err
			}
			return printJSON(cmd, page)
		},
	}
	f := cmd.Flags()
	f.IntVar(&p.First, "first", 20, "maximum number of assets")
	f.StringVar(&p.After, "after", "", "cursor from a previous page")
	f.StringVar(&p.GroupName, "group-name", "", "album title to restrict to")
	f.StringVar(&p.GroupTypes, "group-types", cameraroll.GroupTypesAll, "collection kind to enumerate")
	f.StringVar(&p.AssetType, "asset-type", "photos", "photos, videos or all")
	f.StringSliceVar(&p.MimeTypes, "mime-types", nil, "accepted MIME types")
	f.Int64Var(&p.FromTime, "from-time", 0, "exclusive lower bound, ms since epoch")
	f.Int64Var(&p.ToTime, "to-time", 0, "inclusive upper bound, ms since epoch")
	return cmd
}

func newDeleteCmd(service func() *cameraroll.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <ph-uri>...",
		Short: "Delete assets",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := service().DeletePhotos(cmd.Context(), args)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]bool{"success": ok})
		},
	}
}

func newAlbumsCmd(service func() *cameraroll.Service) *cobra.Command {
	var p cameraroll.GetAlbumsParams
	cmd := &cobra.Command{
		Use:   "albums",
		Short: "List albums with matching asset counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			albums, err := service().GetAlbums(cmd.Context(), p)
			if err != nil {
				return err
			}
			return printJSON(cmd, albums)
		},
	}
	cmd.Flags().StringVar(&p.AssetType, "asset-type", "all", "photos, videos or all")
	return cmd
}
