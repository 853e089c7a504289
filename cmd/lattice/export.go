package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/vango-dev/lattice/internal/config"
	"github.com/vango-dev/lattice/internal/demo"
	"github.com/vango-dev/lattice/pkg/dom"
	"github.com/vango-dev/lattice/pkg/export"
	"github.com/vango-dev/lattice/pkg/render"
	"github.com/vango-dev/lattice/pkg/telemetry"
)

func exportCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the counter pages as static HTML",
		Long: `Render every page on a dry tree and write it to the export target
configured in lattice.json: a directory, or an S3 bucket.

S3 credentials are read from AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and
AWS_SESSION_TOKEN.

Examples:
  lattice export
  lattice export -o public`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "" {
				a.cfg.Export.Target = config.ExportDir
				a.cfg.Export.Output = output
			}

			store, err := newStore(a.cfg)
			if err != nil {
				return err
			}

			renderer := render.NewRenderer(render.RendererConfig{
				MountID: a.cfg.Render.MountID,
				Lang:    a.cfg.Render.Lang,
			})
			exp := export.New(store, renderer,
				export.WithLogger(a.logger),
				export.WithTracer(telemetry.Tracer(a.cfg.Tracing.TracerName, a.cfg.Tracing.Enabled)))

			result, err := exp.Export(cmd.Context(), pages(a.cfg))
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, key := range result.Keys {
				info(w, "%s", key)
			}
			success(w, "Exported %d pages (%d bytes) in %s", len(result.Keys), result.Bytes, result.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Export to this directory, overriding lattice.json")

	return cmd
}

func newStore(cfg *config.Config) (export.Store, error) {
	if cfg.Export.Target == config.ExportS3 {
		client := export.NewS3Client(export.S3Options{
			Region:   cfg.Export.Region,
			Endpoint: cfg.Export.Endpoint,
		})
		return export.NewS3Store(client, cfg.Export.Bucket, cfg.Export.Prefix), nil
	}
	return export.NewDirStore(cfg.OutputPath())
}

func pages(cfg *config.Config) []export.Page {
	counterAt := func(start int, title string) export.BuildFunc {
		return func(t *dom.Tree) (render.PageData, error) {
			c, err := demo.NewCounter(t, start)
			if err != nil {
				return render.PageData{}, err
			}
			return render.PageData{
				Title:       title,
				StyleSheets: cfg.Render.StyleSheets,
				Body:        c.Root(),
			}, nil
		}
	}
	return []export.Page{
		{Path: "/", Build: counterAt(0, "Counter")},
		{Path: "/even", Build: counterAt(2, "Even counter")},
	}
}
