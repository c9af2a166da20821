package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/evcraddock/client-visits/internal/blob"
	"github.com/evcraddock/client-visits/internal/logging"
	"github.com/evcraddock/client-visits/internal/metrics"
	"github.com/evcraddock/client-visits/internal/visit"
	"github.com/evcraddock/client-visits/internal/web"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start an HTTP server exposing the visit store as a JSON API, with /health and /metrics endpoints.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "port to listen on (default: CV_PORT or 8080)")

	return cmd
}

func runServe(cmd *cobra.Command, port int) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}
	logging.Setup(cfg.DevMode)

	if port == 0 {
		port, err = strconv.Atoi(cfg.Port)
		if err != nil {
			return fmt.Errorf("invalid CV_PORT %q", cfg.Port)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	blobs, closeFn, err := blob.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("opening %s storage: %w", cfg.Storage.Driver, err)
	}
	defer func() {
		if cerr := closeFn(); cerr != nil {
			slog.Warn("closing storage", "error", cerr)
		}
	}()

	m := metrics.New()
	store, err := visit.Open(ctx, blobs, visit.WithLogger(slog.Default()), visit.WithMetrics(m))
	if err != nil {
		return err
	}
	slog.Info("visit store ready", "storage", cfg.Storage.Driver, "visits", len(store.List("")))

	srv := web.NewServer(store, web.Options{Scoping: cfg.Scoping, Metrics: m})
	return srv.ListenAndServe(ctx, port)
}
