// Package logger configures structured JSON logging on log/slog and carries
// request-scoped loggers through context, so handlers and the generation
// worker log with the trace ID of the request that started them.
package logger
