package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/huangsam/githours/core"
	"github.com/huangsam/githours/internal/contract"
	"github.com/huangsam/githours/internal/metrics"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// shutdownTimeout bounds how long in-flight scrapes may take on exit.
const shutdownTimeout = 10 * time.Second

// serveCmd exposes the report as Prometheus metrics.
var serveCmd = &cobra.Command{
	Use:   "serve [repo...]",
	Short: "Serve contributor hours as Prometheus metrics.",
	Long: `Run the analysis on a schedule and expose the latest result over HTTP.

Endpoints:
  /metrics - Prometheus and OpenMetrics exposition
  /healthz - 200 once the first refresh succeeded, 503 before

A failed refresh is logged and counted; the previous report stays exported.

Examples:
  # Refresh every 15 minutes on the default port
  githours serve ~/src/api ~/src/web

  # Watch a GitHub repository every hour with a persistent cache
  githours serve --provider github acme/app --refresh 1h --cache-backend sqlite`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runServer(rootCtx); err != nil {
			contract.LogFatal("Cannot run metrics server", err)
		}
	},
}

// runServer blocks until SIGINT or SIGTERM, refreshing in the background.
func runServer(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector()
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           metrics.NewRouter(collector),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go core.RefreshLoop(ctx, cfg, cacheManager, collector, cfg.Refresh)

	errCh := make(chan error, 1)
	go func() {
		contract.Logger().Info("metrics server listening", zap.String("addr", cfg.ListenAddr), zap.Duration("refresh", cfg.Refresh))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
