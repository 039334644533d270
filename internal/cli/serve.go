package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/dropscope/internal/api"
	"github.com/roach88/dropscope/internal/importer"
)

// shutdownTimeout bounds how long in-flight requests may run after a stop
// signal.
const shutdownTimeout = 10 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr         string
	AllowOrigins []string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the HTTP API:

  GET  /api/airdrops   ranked listing (chain, status, q, riskMin, riskMax, sort)
  POST /api/import     import a batch ({"items": [...]})
  GET  /healthz        row counts
  GET  /metrics        Prometheus metrics

The database is prepared on the first API request. Stops gracefully on
SIGINT or SIGTERM.

Example:
  dropscope serve --addr :8080
  DROPSCOPE_ADDR=127.0.0.1:9000 dropscope serve --cors-origin http://localhost:3000`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", envOr(EnvAddr, DefaultAddr), "listen address (env "+EnvAddr+")")
	cmd.Flags().StringSliceVar(&opts.AllowOrigins, "cors-origin", nil, "allowed CORS origin (repeatable, default any)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	log := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	st, err := openStore(opts.RootOptions, log)
	if err != nil {
		return fail(formatter, "failed to open database", err)
	}
	defer closeStore(st, log)

	im, err := importer.New(st, importer.WithLogger(log))
	if err != nil {
		return fail(formatter, "failed to create importer", err)
	}

	srv, err := api.New(st, im, api.Config{AllowOrigins: opts.AllowOrigins, Logger: log})
	if err != nil {
		return fail(formatter, "failed to create server", err)
	}

	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return usageError(formatter, fmt.Sprintf("listen on %s: %v", opts.Addr, err))
	}

	httpSrv := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Setup signal handling for graceful shutdown.
	// The command's context lets tests stop the server.
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpSrv.Serve(ln)
	}()

	log.Info("server starting", "addr", ln.Addr().String(), "db", st.Path())
	fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", ln.Addr())

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fail(formatter, "server error", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fail(formatter, "shutdown error", err)
	}

	log.Info("server stopped gracefully")
	return nil
}
