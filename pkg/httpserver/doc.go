// Package httpserver wraps net/http with environment-driven configuration,
// graceful shutdown on context cancellation or termination signals, and a
// composable health-check handler.
package httpserver
