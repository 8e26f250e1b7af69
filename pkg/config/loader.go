package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LocalConfigFileNames are searched, in order, in the working directory.
var LocalConfigFileNames = []string{"dogql.yaml", "dogql.yml"}

// Environment variable names.
const (
	EnvPort          = "PORT"
	EnvHost          = "HOST"
	EnvUpstreamURL   = "DOGQL_UPSTREAM_URL"
	EnvTracing       = "DOGQL_TRACING"
	EnvIntrospection = "DOGQL_INTROSPECTION"
	EnvLogLevel      = "LOG_LEVEL"
	EnvLogFormat     = "LOG_FORMAT"
)

// Error is a configuration error with optional file location.
type Error struct {
	Path    string
	Line    int
	Message string
}

func (e *Error) Error() string {
	switch {
	case e.Path == "":
		return e.Message
	case e.Line > 0:
		return e.Path + " (line " + strconv.Itoa(e.Line) + "): " + e.Message
	default:
		return e.Path + ": " + e.Message
	}
}

var yamlLinePattern = regexp.MustCompile(`line (\d+):\s*(.*)`)

// FindLocalConfig returns the first local config file that exists, or "".
func FindLocalConfig() string {
	for _, name := range LocalConfigFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// LoadFile decodes the YAML file at path on top of cfg.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return decode(cfg, path, data)
}

func decode(cfg *Config, path string, data []byte) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cerr := &Error{Path: path, Message: strings.TrimPrefix(err.Error(), "yaml: ")}
		if m := yamlLinePattern.FindStringSubmatch(err.Error()); m != nil {
			cerr.Line, _ = strconv.Atoi(m[1])
			cerr.Message = m[2]
		}
		return cerr
	}
	return nil
}

// LoadEnv applies environment overrides to cfg.
func LoadEnv(cfg *Config, getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}

	if v := getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return &Error{Message: fmt.Sprintf("invalid %s %q: %v", EnvPort, v, err)}
		}
		cfg.Server.Port = port
	}
	if v := getenv(EnvHost); v != "" {
		cfg.Server.Host = v
	}
	if v := getenv(EnvUpstreamURL); v != "" {
		cfg.Upstream.BaseURL = v
	}
	if v := getenv(EnvTracing); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return &Error{Message: fmt.Sprintf("invalid %s %q: %v", EnvTracing, v, err)}
		}
		cfg.GraphQL.Tracing = b
	}
	if v := getenv(EnvIntrospection); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return &Error{Message: fmt.Sprintf("invalid %s %q: %v", EnvIntrospection, v, err)}
		}
		cfg.GraphQL.Introspection = b
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := getenv(EnvLogFormat); v != "" {
		cfg.Log.Format = v
	}
	return nil
}

// Load builds the configuration from defaults, the config file and the
// environment. An empty path falls back to FindLocalConfig; an explicitly
// named file that does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = FindLocalConfig()
	}
	if path != "" {
		if err := LoadFile(cfg, path); err != nil {
			if !explicit && errors.Is(err, fs.ErrNotExist) {
				path = ""
			} else {
				return nil, err
			}
		}
	}

	if err := LoadEnv(cfg, os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
