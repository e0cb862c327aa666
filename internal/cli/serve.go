package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/rtlgraph/rtlgraph/pkg/server"
)

// serveOpts holds the command-line flags for the serve command. Flags
// override the corresponding config file settings when set.
type serveOpts struct {
	addr      string
	redisAddr string
	ttl       time.Duration
}

// newServeCmd creates the serve command running the HTTP design store.
func newServeCmd() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the design store over HTTP",
		Long: `Run an HTTP server that imports uploaded JSON netlists and stores
their canonical exports for later retrieval.

Endpoints:
  POST   /designs                      upload a netlist, returns id and statistics
  GET    /designs/{id}                 per-module statistics
  GET    /designs/{id}/document        the canonical JSON document
  GET    /designs/{id}/modules         module summaries
  GET    /designs/{id}/modules/{name}  one serialized module
  DELETE /designs/{id}                 remove a design
  GET    /healthz                      liveness check

Designs live in memory by default; point --redis at a Redis instance for a
persistent store shared between replicas.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cmd, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, \":8080\")")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", "", "redis address for persistent storage")
	cmd.Flags().DurationVar(&opts.ttl, "ttl", 0, "design lifetime, 0 means config default")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, opts *serveOpts) error {
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx).Server

	addr := cfg.Addr
	if opts.addr != "" {
		addr = opts.addr
	}
	redisAddr := cfg.RedisAddr
	if opts.redisAddr != "" {
		redisAddr = opts.redisAddr
	}
	ttl := cfg.TTL.Std()
	if cmd.Flags().Changed("ttl") {
		ttl = opts.ttl
	}

	var store server.Store
	if redisAddr != "" {
		rs, err := server.NewRedisStore(ctx, redisAddr)
		if err != nil {
			return err
		}
		defer rs.Close()
		logger.Infof("Using redis store at %s", redisAddr)
		store = rs
	} else {
		logger.Info("Using in-memory store")
		store = server.NewMemoryStore()
	}

	srv := server.New(store, server.Options{
		Import: importOptions(ctx, false, false),
		TTL:    ttl,
		Logger: func(msg string, args ...any) { logger.Infof(msg, args...) },
	})

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Shut down gracefully when the command context is canceled.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Infof("Listening on %s", addr)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return ctx.Err()
}
