package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getmockd/dogql/pkg/cli/internal/output"
	"github.com/getmockd/dogql/pkg/config"
	"github.com/getmockd/dogql/pkg/server"
	"github.com/spf13/cobra"
)

// serveFlags are bound to the serve command and to the root command, which
// serves by default.
type serveFlags struct {
	upstreamFlags

	port            int
	host            string
	path            string
	shutdownTimeout time.Duration
	noTracing       bool
	noIntrospection bool
	traceExporter   string
	traceSampler    float64
}

func (f *serveFlags) register(cmd *cobra.Command) {
	f.upstreamFlags.register(cmd)

	flags := cmd.Flags()
	flags.IntVarP(&f.port, "port", "p", config.DefaultPort, "HTTP server port (0 picks a free port)")
	flags.StringVar(&f.host, "host", "", "Interface to bind (default: all)")
	flags.StringVar(&f.path, "path", config.DefaultPath, "GraphQL endpoint path, served in addition to /")
	flags.DurationVar(&f.shutdownTimeout, "shutdown-timeout", config.DefaultShutdownTimeout, "Maximum time to wait for graceful shutdown")
	flags.BoolVar(&f.noTracing, "no-tracing", false, "Omit the Apollo tracing extension from responses")
	flags.BoolVar(&f.noIntrospection, "no-introspection", false, "Disable __schema and __type")
	flags.StringVar(&f.traceExporter, "trace-exporter", "", "Span exporter (stdout); empty disables span export")
	flags.Float64Var(&f.traceSampler, "trace-sampler", 1.0, "Fraction of traces to sample (0.0-1.0)")
}

func (f *serveFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	f.upstreamFlags.apply(cmd, cfg)

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Server.Port = f.port
	}
	if flags.Changed("host") {
		cfg.Server.Host = f.host
	}
	if flags.Changed("path") {
		cfg.Server.Path = f.path
	}
	if flags.Changed("shutdown-timeout") {
		cfg.Server.ShutdownTimeout = f.shutdownTimeout
	}
	if flags.Changed("no-tracing") {
		cfg.GraphQL.Tracing = !f.noTracing
	}
	if flags.Changed("no-introspection") {
		cfg.GraphQL.Introspection = !f.noIntrospection
	}
	if flags.Changed("trace-exporter") {
		cfg.Trace.Exporter = f.traceExporter
	}
	if flags.Changed("trace-sampler") {
		cfg.Trace.Sampler = f.traceSampler
	}
}

func newServeCmd(rf *rootFlags) *cobra.Command {
	sf := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the GraphQL server (foreground)",
		Long: `Start the GraphQL server. The endpoint is served at / and at --path
(default /graphql), with a health check at /health. The server stops
gracefully on SIGINT or SIGTERM.`,
		Example: `  # Start with defaults on :4000
  dogql serve

  # Start on a free port against a local upstream
  dogql serve --port 0 --upstream http://localhost:8080/api/

  # Log JSON and export spans to stdout
  dogql serve --log-format json --trace-exporter stdout`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, rf, sf)
		},
	}
	sf.register(cmd)
	return cmd
}

// runServe starts the server and blocks until a shutdown signal arrives,
// the command context is cancelled, or the listener fails.
func runServe(cmd *cobra.Command, rf *rootFlags, sf *serveFlags) error {
	cfg, err := rf.load()
	if err != nil {
		return err
	}
	sf.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	a, err := newApp(cfg, cmd.ErrOrStderr(), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	srv := server.New(cfg.Server, a.executor, a.clients,
		server.WithLogger(a.log),
		server.WithTracer(a.tracer),
	)
	if err := srv.Start(); err != nil {
		return err
	}

	ctx := cmd.Context()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var serveErr error
	select {
	case sig := <-sigChan:
		a.log.Info("shutting down", "signal", sig.String())
	case <-ctx.Done():
		a.log.Info("shutting down", "reason", context.Cause(ctx).Error())
	case serveErr = <-srv.Done():
		a.log.Error("server stopped unexpectedly", "error", serveErr)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		output.Warn(cmd.ErrOrStderr(), "server shutdown error: %v", err)
	}
	// Flush remaining spans.
	if err := a.tracer.Shutdown(shutdownCtx); err != nil {
		output.Warn(cmd.ErrOrStderr(), "tracer shutdown error: %v", err)
	}
	return serveErr
}
