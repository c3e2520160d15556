// Package cli provides the command-line interface for apisim.
//
// Commands:
//   - serve: run the management API and the mock gateway in the foreground
//   - health: check that a running server answers GET /health
//   - export: download a collection and its mock APIs as JSON or YAML
//   - version: print build information
//
// health and export talk to a running server through its management API;
// --url (or APISIM_URL) selects which one.
//
// Usage:
//
//	apisim serve --port 5050 --data-dir ./data
//	apisim serve --ephemeral --log-level debug
//	apisim health
//	apisim export 0b9d... --format yaml --output shop.yaml
package cli
