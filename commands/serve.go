package commands

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stevemurr/string-analysis-server/config"
	"github.com/stevemurr/string-analysis-server/engine"
	"github.com/stevemurr/string-analysis-server/errors"
	"github.com/stevemurr/string-analysis-server/handler"
	"github.com/stevemurr/string-analysis-server/logger"
	"github.com/stevemurr/string-analysis-server/metrics"
	"github.com/stevemurr/string-analysis-server/store"
)

// NewServeCommand creates the serve command.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server. It stops gracefully on SIGINT or SIGTERM,
waiting up to server.shutdown_timeout for in-flight requests.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.Config()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg, nil)
		},
	}

	cmd.Flags().Int("port", config.DefaultPort, "port to listen on")
	cmd.Flags().String("host", "0.0.0.0", "interface to bind")
	cmd.Flags().String("backend", "memory", "store backend (memory|sqlite)")
	_ = opts.v.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	_ = opts.v.BindPFlag("server.host", cmd.Flags().Lookup("host"))
	_ = opts.v.BindPFlag("store.backend", cmd.Flags().Lookup("backend"))
	return cmd
}

// runServer serves until ctx is cancelled, then shuts down gracefully. When
// ready is not nil it receives the bound address once the listener is up.
func runServer(ctx context.Context, cfg *config.Config, ready chan<- string) error {
	log := logger.Logger

	s, err := store.New(cfg.Store.Backend)
	if err != nil {
		return errors.Wrapf(err, "failed to create store (backend=%s)", cfg.Store.Backend)
	}
	defer s.Close()

	reg, m, err := metrics.NewRegistry()
	if err != nil {
		return errors.Wrap(err, "failed to register metrics")
	}

	e := engine.New(s, engine.WithLogger(log), engine.WithMetrics(m))
	h := handler.New(e,
		handler.WithLogger(log),
		handler.WithMetrics(m, reg),
		handler.WithAllowedOrigins(cfg.Server.AllowedOrigins))

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", addr)
	}
	srv := &http.Server{Handler: h}

	log.Infow("String Analysis Server starting",
		"addr", ln.Addr().String(),
		"store", cfg.Store.Backend)
	if ready != nil {
		ready <- ln.Addr().String()
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Serve(ln)
	}()

	select {
	case err := <-errChan:
		return errors.Wrap(err, "server error")
	case <-ctx.Done():
	}

	log.Infow("Shutting down gracefully", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown error")
	}
	log.Infow("Server stopped cleanly")
	return nil
}
