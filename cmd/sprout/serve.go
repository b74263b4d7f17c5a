package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/sprout/internal/archive"
	"github.com/vango-dev/sprout/internal/config"
	"github.com/vango-dev/sprout/internal/errors"
	"github.com/vango-dev/sprout/internal/scenario"
	"github.com/vango-dev/sprout/pkg/devtools"
	"github.com/vango-dev/sprout/pkg/telemetry"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		addr      string
		noArchive bool
	)

	cmd := &cobra.Command{
		Use:   "serve <scenario.yaml>",
		Short: "Serve a live devtools view of a scenario",
		Long: `Mount a scenario and serve it over HTTP.

The devtools server exposes the host tree, the op log, Prometheus
metrics and a websocket stream of host operations. POST /api/step
advances the scenario by one step.

Examples:
  sprout serve rotate.yaml
  sprout serve rotate.yaml --addr=0.0.0.0:7070`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("E160").
					WithDetail("serve needs exactly one scenario file").
					WithSuggestion("sprout serve path/to/scenario.yaml")
			}
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			logger := setupLogger(cfg, cmd.ErrOrStderr())

			sc, err := scenario.Load(args[0])
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Devtools.Addr
			}

			dcfg := devtools.Config{
				WebSocketPath: cfg.Devtools.WebSocketPath,
				Buffer:        cfg.Devtools.Buffer,
				Namespace:     cfg.Metrics.Namespace,
				Logger:        logger,
			}
			if cfg.Tracing.Enabled {
				dcfg.Tracer = telemetry.NewTracer(telemetry.WithTracerName(cfg.Tracing.TracerName))
			}
			if !noArchive {
				st, err := archive.Open(cfg.Archive, baseDir(cfg.Path()))
				if err != nil {
					return err
				}
				dcfg.Store = st
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := cmd.OutOrStdout()
			printBanner(w)
			success(w, "serving %s on http://%s", sc.Name, addr)
			info(w, "stream:  ws://%s%s", addr, wsPath(dcfg))
			info(w, "metrics: http://%s/metrics", addr)
			if dcfg.Store == nil {
				warn(w, "trace archive disabled")
			}

			return devtools.New(sc, dcfg).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default devtools.addr)")
	cmd.Flags().BoolVar(&noArchive, "no-archive", false, "Disable the /api/traces routes")

	return cmd
}

func wsPath(c devtools.Config) string {
	if c.WebSocketPath == "" {
		return config.DefaultWebSocketPath
	}
	return c.WebSocketPath
}
