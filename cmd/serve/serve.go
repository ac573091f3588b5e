// Package serve provides the serve command.
package serve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/docexport/internal/config"
	"github.com/leefowlercu/docexport/internal/document"
	"github.com/leefowlercu/docexport/internal/drive"
	"github.com/leefowlercu/docexport/internal/export"
	"github.com/leefowlercu/docexport/internal/metrics"
	"github.com/leefowlercu/docexport/internal/server"
	"github.com/leefowlercu/docexport/internal/version"
	"github.com/leefowlercu/docexport/internal/xlsx"
)

// ServeCmd runs the HTTP server in the foreground.
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the send-to-drive HTTP server",
	Long: "Run the send-to-drive HTTP server in the foreground.\n\n" +
		"The server exposes GET /api/docs/{docID}/send-to-drive, which exports the document " +
		"as a spreadsheet, uploads it to the caller's Google Drive using the access_token " +
		"query parameter, and responds with the share link. Health endpoints are served at " +
		"/healthz and /readyz, Prometheus metrics at /metrics.",
	Example: `  # Start the server with the configured bind address and port
  docexport serve

  # Override the port through the environment
  DOCEXPORT_SERVER_HTTP_PORT=8080 docexport serve`,
	PreRunE: validateServe,
	RunE:    runServe,
}

func validateServe(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	logger := slog.Default()

	docsDir := config.ExpandPath(cfg.Documents.Dir)

	uploader := drive.NewUploader(
		drive.WithEndpoint(cfg.Drive.Endpoint),
		drive.WithSourceMIMEType(cfg.Drive.SourceMIMEType),
		drive.WithTargetMIMEType(cfg.Drive.TargetMIMEType),
		drive.WithUserAgent(version.UserAgent()),
		drive.WithLogger(logger),
	)
	orchestrator := export.NewOrchestrator(xlsx.NewExporter(), uploader, logger)

	store := document.NewStore(docsDir)

	srv := server.New(server.Config{
		Port:              cfg.Server.HTTPPort,
		Bind:              cfg.Server.HTTPBind,
		ReadHeaderTimeout: time.Duration(cfg.Server.ReadHeaderTimeout) * time.Second,
		UserHeader:        cfg.Server.UserHeader,
	}, store, orchestrator, logger)
	srv.SetMetricsHandler(metrics.Handler())
	srv.SetReadyFunc(server.DirReady(store.Root()))

	metrics.RecordBuildInfo(version.Get().Version)
	metrics.StartTime.SetToCurrentTime()

	// Create context that cancels on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting server",
		"config_file", config.ConfigFilePath(),
		"http_bind", cfg.Server.HTTPBind,
		"http_port", cfg.Server.HTTPPort,
		"documents_dir", docsDir,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server stopped with error; %w", err)
	}

	return nil
}
