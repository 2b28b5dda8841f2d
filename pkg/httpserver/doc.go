// Package httpserver wraps net/http with graceful shutdown, signal handling
// and env-driven configuration.
package httpserver
