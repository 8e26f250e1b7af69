package config

import "time"

const (
	// DefaultPort matches the port Apollo-style GraphQL servers listen on.
	DefaultPort = 4000

	// DefaultPath is the GraphQL endpoint path.
	DefaultPath = "/graphql"

	// DefaultUpstreamURL is the dog.ceo API root.
	DefaultUpstreamURL = "https://dog.ceo/api/"

	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 30 * time.Second

	// ExporterStdout writes finished spans as JSON lines.
	ExporterStdout = "stdout"
)

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			Path:            DefaultPath,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Upstream: UpstreamConfig{
			BaseURL: DefaultUpstreamURL,
		},
		GraphQL: GraphQLConfig{
			Tracing:       true,
			Introspection: true,
			Husky:         true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Trace: TraceConfig{
			Sampler: 1.0,
		},
	}
}
