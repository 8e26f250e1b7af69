package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, "/graphql", cfg.Server.Path)
	assert.Equal(t, "https://dog.ceo/api/", cfg.Upstream.BaseURL)
	assert.True(t, cfg.GraphQL.Tracing)
	assert.True(t, cfg.GraphQL.Husky)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, ":4000", cfg.Addr())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dogql.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 8080
  shutdownTimeout: 5s
upstream:
  timeout: 2s
graphql:
  husky: false
log:
  format: json
`), 0o600))

	cfg := Default()
	require.NoError(t, LoadFile(cfg, path))

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 2*time.Second, cfg.Upstream.Timeout)
	assert.False(t, cfg.GraphQL.Husky)
	assert.True(t, cfg.GraphQL.Tracing, "unset keys keep their defaults")
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/graphql", cfg.Server.Path)
}

func TestLoadFile_SyntaxError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: [1, 2\n"), 0o600))

	err := LoadFile(Default(), path)
	require.Error(t, err)

	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, path, cerr.Path)
	assert.Positive(t, cerr.Line)
	assert.Contains(t, err.Error(), path)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadEnv(t *testing.T) {
	cfg := Default()
	err := LoadEnv(cfg, envMap(map[string]string{
		EnvPort:          "9000",
		EnvHost:          "127.0.0.1",
		EnvUpstreamURL:   "http://localhost:1234/api/",
		EnvTracing:       "false",
		EnvIntrospection: "0",
		EnvLogLevel:      "debug",
		EnvLogFormat:     "json",
	}))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "http://localhost:1234/api/", cfg.Upstream.BaseURL)
	assert.False(t, cfg.GraphQL.Tracing)
	assert.False(t, cfg.GraphQL.Introspection)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
}

func TestLoadEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"port", map[string]string{EnvPort: "abc"}},
		{"tracing", map[string]string{EnvTracing: "maybe"}},
		{"introspection", map[string]string{EnvIntrospection: "sometimes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := LoadEnv(Default(), envMap(tt.env))
			var cerr *Error
			assert.ErrorAs(t, err, &cerr)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"negative port", func(c *Config) { c.Server.Port = -1 }, "server.port"},
		{"relative path", func(c *Config) { c.Server.Path = "graphql" }, "server.path"},
		{"relative upstream", func(c *Config) { c.Upstream.BaseURL = "dog.ceo/api" }, "upstream.baseURL"},
		{"ftp upstream", func(c *Config) { c.Upstream.BaseURL = "ftp://dog.ceo/api/" }, "upstream.baseURL"},
		{"negative timeout", func(c *Config) { c.Upstream.Timeout = -time.Second }, "upstream.timeout"},
		{"unknown exporter", func(c *Config) { c.Trace.Exporter = "jaeger" }, "trace.exporter"},
		{"sampler", func(c *Config) { c.Trace.Sampler = 1.5 }, "trace.sampler"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	cfg := Default()
	cfg.Trace.Exporter = ExporterStdout
	cfg.Server.Port = 0
	assert.NoError(t, cfg.Validate())
}

func TestError(t *testing.T) {
	assert.Equal(t, "boom", (&Error{Message: "boom"}).Error())
	assert.Equal(t, "a.yaml: boom", (&Error{Path: "a.yaml", Message: "boom"}).Error())
	assert.Equal(t, "a.yaml (line 3): boom", (&Error{Path: "a.yaml", Line: 3, Message: "boom"}).Error())
}
