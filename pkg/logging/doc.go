// Package logging builds the structured loggers used across dogql.
//
// Everything logs through log/slog. The server, the upstream client and the
// GraphQL executor all accept a *slog.Logger and fall back to Nop() when none
// is given, so library use stays silent by default.
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.ParseLevel("debug"),
//	    Format: logging.FormatJSON,
//	})
//	logger.Info("server ready", "url", "http://localhost:4000/")
package logging
