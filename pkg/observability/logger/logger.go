// Package logger provides structured logging for the service.
package logger

// Logger is the structured logging interface used throughout the service.
// All log methods accept a message followed by key-value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// With creates a child logger whose entries all carry the given
	// key-value pairs.
	With(args ...any) Logger
}
