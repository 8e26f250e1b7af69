package cli

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/getmockd/dogql/pkg/config"
	"github.com/getmockd/dogql/pkg/dogapi"
	"github.com/getmockd/dogql/pkg/dogql"
	"github.com/getmockd/dogql/pkg/graphql"
	"github.com/getmockd/dogql/pkg/logging"
	"github.com/getmockd/dogql/pkg/tracing"
	"github.com/spf13/cobra"
)

const serviceName = "dogql"

// load resolves the configuration from defaults, the config file, the
// environment and the persistent flags. Commands apply their own flags on
// top and validate again.
func (rf *rootFlags) load() (*config.Config, error) {
	cfg, err := config.Load(rf.configFile)
	if err != nil {
		return nil, err
	}
	if rf.logLevel != "" {
		cfg.Log.Level = rf.logLevel
	}
	if rf.logFormat != "" {
		cfg.Log.Format = rf.logFormat
	}
	return cfg, nil
}

// upstreamFlags are shared by the commands that execute queries.
type upstreamFlags struct {
	url     string
	timeout time.Duration
	noHusky bool
}

func (f *upstreamFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "upstream", config.DefaultUpstreamURL, "dog.ceo API base URL")
	cmd.Flags().DurationVar(&f.timeout, "upstream-timeout", 0, "Timeout for a single upstream request (0 = none)")
	cmd.Flags().BoolVar(&f.noHusky, "no-husky", false, "Leave huskyCrazy out of the schema")
}

func (f *upstreamFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("upstream") {
		cfg.Upstream.BaseURL = f.url
	}
	if flags.Changed("upstream-timeout") {
		cfg.Upstream.Timeout = f.timeout
	}
	if flags.Changed("no-husky") {
		cfg.GraphQL.Husky = !f.noHusky
	}
}

// app holds the components shared by serve and query.
type app struct {
	log      *slog.Logger
	tracer   *tracing.Tracer
	clients  *dogapi.Factory
	executor *graphql.Executor
}

// newApp wires logging, tracing, the upstream client factory and the
// executor from cfg. Logs go to logOut and exported spans to traceOut.
func newApp(cfg *config.Config, logOut, traceOut io.Writer) (*app, error) {
	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: logging.ParseFormat(cfg.Log.Format),
		Output: logOut,
		Attrs:  []slog.Attr{slog.String("service", serviceName)},
	})

	var tracer *tracing.Tracer
	if cfg.Trace.Exporter == config.ExporterStdout {
		tracer = tracing.NewTracer(serviceName,
			tracing.WithExporter(tracing.NewStdoutExporter(traceOut)),
			tracing.WithSampler(tracing.NewSampler(cfg.Trace.Sampler)),
		)
	}

	clients, err := dogapi.NewFactory(cfg.Upstream.BaseURL,
		dogapi.WithHTTPClient(&http.Client{Timeout: cfg.Upstream.Timeout}),
		dogapi.WithTracer(tracer),
		dogapi.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream client: %w", err)
	}

	executor, err := dogql.NewExecutor(cfg.GraphQL.Husky,
		graphql.WithIntrospection(cfg.GraphQL.Introspection),
		graphql.WithTracing(cfg.GraphQL.Tracing),
		graphql.WithTracer(tracer),
		graphql.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build schema: %w", err)
	}

	return &app{log: log, tracer: tracer, clients: clients, executor: executor}, nil
}
