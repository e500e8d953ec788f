// Package config loads and validates the service configuration from
// DEALMEMO_-prefixed environment variables: HTTP server settings, the
// Postgres URL, JWT verification, Gemini access, and the worker mode with
// its launch-wait ceiling.
package config
