// Package config provides the apisim server configuration.
//
// Values are layered, later layers winning:
//  1. Default values
//  2. A YAML file (--config)
//  3. Environment variables with the APISIM_ prefix
//  4. Command-line flags, applied by the CLI
//
// Example file:
//
//	host: 127.0.0.1
//	port: 5050
//	mock_prefix: mock
//	backend: sqlite
//	log:
//	  level: info
//	  format: text
//	rate_limit:
//	  rps: 100
//	  burst: 200
//
// Environment variables mirror the file keys: APISIM_PORT,
// APISIM_LOG_LEVEL, APISIM_RATE_LIMIT_RPS, APISIM_CORS_ORIGINS (comma
// separated) and so on.
package config
