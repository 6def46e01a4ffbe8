package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sensevoice-asr/internal/api/middleware"
	"sensevoice-asr/internal/api/server"
	"sensevoice-asr/internal/app"
	"sensevoice-asr/internal/config"
)

var (
	reload bool
	host   string
	port   int
)

func init() {
	Cmd.Flags().BoolVar(&reload, "reload", false, "development mode: gin debug output and console logs")
	Cmd.Flags().StringVar(&host, "host", "", "listen host (default $SENSEVOICE_HOST or 0.0.0.0)")
	Cmd.Flags().IntVar(&port, "port", 0, "listen port (default $SENSEVOICE_PORT or 8001)")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Load the model and serve the ASR HTTP API",
	Long: `Load the model and serve the ASR HTTP API

- The model is loaded once before the listener opens; a load failure exits non-zero
- SIGINT or SIGTERM drains in-flight requests before exiting`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, logger, err := app.Bootstrap(func(s *config.Settings) {
			if cmd.Flags().Changed("reload") {
				s.Reload = reload
			}
			if host != "" {
				s.Host = host
			}
			if port != 0 {
				s.Port = port
			}
		})
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return Run(ctx, settings, logger)
	},
}

// Run performs the startup sequence and serves until ctx is cancelled.
func Run(ctx context.Context, settings *config.Settings, logger *zap.Logger) error {
	service, cleanup, err := app.InitializeService(settings, logger)
	if err != nil {
		return fmt.Errorf("failed to initialise backend: %w", err)
	}
	defer cleanup()

	loadCtx, cancel := context.WithTimeout(ctx, config.DefaultLoadTimeout)
	err = service.Handle().Load(loadCtx)
	cancel()
	if err != nil {
		return err
	}

	srv := server.NewServer(server.Config{
		Addr: settings.Addr(),
		CORS: middleware.CORSConfig{
			AllowOrigins: settings.CORSOrigins(),
			AllowAll:     settings.AllowAllOrigins(),
		},
		MaxUploadBytes:    settings.MaxUploadBytes(),
		ReadHeaderTimeout: config.DefaultReadHeaderTimeout,
		IdleTimeout:       config.DefaultIdleTimeout,
		Development:       settings.Development(),
	}, service, logger)

	if err := srv.Start(); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", settings.Addr(), err)
	}

	select {
	case <-ctx.Done():
	case err, ok := <-srv.Errors():
		if ok {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.DefaultShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
