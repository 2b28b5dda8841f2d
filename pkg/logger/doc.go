// Package logger builds configured slog loggers with environment presets:
// JSON at info level for production, text at debug level for development.
package logger
