// Package logger wraps a process-wide zap logger writing to stderr.
// Helpers take a context so run-scoped fields and names travel with the call chain.
package logger
