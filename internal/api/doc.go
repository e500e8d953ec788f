// Package api contains the HTTP handlers for deals and memo generation jobs:
// launching generation, reading job status, and the server-sent-events
// streaming variant. Handlers translate between HTTP and the service layer
// and never expose raw internal errors to clients.
package api
