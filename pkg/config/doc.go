// Package config holds the dogql server configuration.
//
// Values are resolved with the following precedence:
//  1. Command-line flags (applied by the cli package)
//  2. Environment variables (PORT, HOST, DOGQL_UPSTREAM_URL, DOGQL_TRACING,
//     DOGQL_INTROSPECTION, LOG_LEVEL, LOG_FORMAT)
//  3. Config file (--config, or ./dogql.yaml when present)
//  4. Defaults
//
// Example dogql.yaml:
//
//	server:
//	  port: 4000
//	  path: /graphql
//	upstream:
//	  baseURL: https://dog.ceo/api/
//	graphql:
//	  tracing: true
//	  husky: true
//	log:
//	  level: info
//	  format: json
package config
