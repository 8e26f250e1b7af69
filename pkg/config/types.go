package config

import "time"

// Config is the complete dogql configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" json:"server"`
	Upstream UpstreamConfig `yaml:"upstream" json:"upstream"`
	GraphQL  GraphQLConfig  `yaml:"graphql" json:"graphql"`
	Log      LogConfig      `yaml:"log" json:"log"`
	Trace    TraceConfig    `yaml:"trace" json:"trace"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Host is the interface to bind. Empty binds all interfaces.
	Host string `yaml:"host" json:"host"`
	// Port is the TCP port. 0 picks a free port.
	Port int `yaml:"port" json:"port"`
	// Path is the GraphQL endpoint path; the endpoint is also served at "/".
	Path string `yaml:"path" json:"path"`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" json:"shutdownTimeout"`
}

// UpstreamConfig configures the dog.ceo client.
type UpstreamConfig struct {
	BaseURL string `yaml:"baseURL" json:"baseURL"`
	// Timeout for a single upstream request. 0 leaves the http.Client default (none).
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// GraphQLConfig toggles GraphQL features.
type GraphQLConfig struct {
	// Tracing adds the Apollo tracing extension to every response.
	Tracing bool `yaml:"tracing" json:"tracing"`
	// Introspection enables __schema and __type.
	Introspection bool `yaml:"introspection" json:"introspection"`
	// Husky exposes the huskyCrazy query. false serves the two-query schema.
	Husky bool `yaml:"husky" json:"husky"`
}

// LogConfig configures the slog logger.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// TraceConfig configures span export.
type TraceConfig struct {
	// Exporter is "" (spans disabled) or "stdout".
	Exporter string `yaml:"exporter" json:"exporter"`
	// Sampler is the sampled fraction of traces, 0.0-1.0.
	Sampler float64 `yaml:"sampler" json:"sampler"`
}
