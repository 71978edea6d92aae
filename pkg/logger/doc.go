// Package logger builds configured slog.Logger instances with optional
// context attribute extraction.
//
// The factory supports JSON and text output, static service attributes, and
// extractors that inject request-scoped values (request ids, tenant ids)
// into every record logged with a context.
package logger
