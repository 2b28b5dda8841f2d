// Package ratelimit provides a fixed-window rate limiter with in-memory and
// Redis-backed counter stores, plus HTTP middleware for per-user abuse
// protection on write endpoints.
package ratelimit
