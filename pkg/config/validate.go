package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for out-of-range or malformed values.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return &Error{Message: fmt.Sprintf("server.port %d is out of range (0-65535)", c.Server.Port)}
	}
	if c.Server.Path == "" || !strings.HasPrefix(c.Server.Path, "/") {
		return &Error{Message: fmt.Sprintf("server.path %q must start with /", c.Server.Path)}
	}
	if c.Server.ShutdownTimeout < 0 {
		return &Error{Message: "server.shutdownTimeout must not be negative"}
	}

	u, err := url.Parse(c.Upstream.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &Error{Message: fmt.Sprintf("upstream.baseURL %q must be an absolute http(s) URL", c.Upstream.BaseURL)}
	}
	if c.Upstream.Timeout < 0 {
		return &Error{Message: "upstream.timeout must not be negative"}
	}

	switch c.Trace.Exporter {
	case "", ExporterStdout:
	default:
		return &Error{Message: fmt.Sprintf("trace.exporter %q is not supported (use %q or leave empty)", c.Trace.Exporter, ExporterStdout)}
	}
	if c.Trace.Sampler < 0 || c.Trace.Sampler > 1 {
		return &Error{Message: fmt.Sprintf("trace.sampler %v is out of range (0.0-1.0)", c.Trace.Sampler)}
	}
	return nil
}

// Addr returns the listen address for the server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
