package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vango-dev/lattice/internal/demo"
	"github.com/vango-dev/lattice/pkg/dom"
	"github.com/vango-dev/lattice/pkg/render"
	"github.com/vango-dev/lattice/pkg/ssr"
	"github.com/vango-dev/lattice/pkg/telemetry"
)

func serveCmd(a *app) *cobra.Command {
	var (
		port int
		host string
		live bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the counter over HTTP",
		Long: `Serve the counter page rendered on dry trees at /, and, with --live,
a shared live counter at /live-counter kept in sync over a websocket.

Examples:
  lattice serve
  lattice serve --port=8080 --live`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port > 0 {
				a.cfg.Server.Port = port
			}
			if host != "" {
				a.cfg.Server.Host = host
			}
			if cmd.Flags().Changed("live") {
				a.cfg.Server.Live = live
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, a, cmd)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from lattice.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from lattice.json)")
	cmd.Flags().BoolVar(&live, "live", false, "Serve the live counter")

	return cmd
}

func runServe(ctx context.Context, a *app, cmd *cobra.Command) error {
	cfg := a.cfg
	tracer := telemetry.Tracer(cfg.Tracing.TracerName, cfg.Tracing.Enabled)

	var metrics *telemetry.Metrics
	if cfg.Metrics.Enabled {
		metrics = telemetry.NewMetrics(telemetry.WithNamespace(cfg.Metrics.Namespace))
	}

	server := ssr.New(ssr.Config{
		Addr:         cfg.Address(),
		MountID:      cfg.Render.MountID,
		Lang:         cfg.Render.Lang,
		StyleSheets:  cfg.Render.StyleSheets,
		ClientScript: cfg.Render.ClientScript,
		LivePath:     cfg.Server.LivePath,
		MetricsPath:  cfg.Metrics.Path,
		Metrics:      metrics,
		Tracer:       tracer,
		Logger:       a.logger,
	})

	server.Handle("/", func(_ *http.Request, t *dom.Tree) (render.PageData, error) {
		page, err := demo.Page(t)
		if err != nil {
			return page, err
		}
		if cfg.Render.Title != "" {
			page.Title = cfg.Render.Title
		}
		return page, nil
	})

	if dir := cfg.StaticPath(); dir != "" {
		server.Static(cfg.Server.StaticPrefix, os.DirFS(dir), ssr.ParseCachePolicy(cfg.Server.CacheControl))
	}

	if cfg.Server.Live {
		opts := []ssr.LiveOption{ssr.WithLiveLogger(a.logger), ssr.WithLiveTracer(tracer)}
		if metrics != nil {
			opts = append(opts, ssr.WithLiveMetrics(metrics))
		}
		live, err := ssr.NewLive(demo.Build, opts...)
		if err != nil {
			return err
		}
		server.HandleLive("/live-counter", live, render.PageData{Title: "Live counter"})
	}

	w := cmd.OutOrStdout()
	printBanner(w)
	info(w, "Serving on %s", cfg.URL())
	if cfg.Server.Live {
		info(w, "Live counter at %s/live-counter", cfg.URL())
	}
	if metrics != nil {
		info(w, "Metrics at %s%s", cfg.URL(), cfg.Metrics.Path)
	}

	return server.ListenAndServe(ctx)
}
