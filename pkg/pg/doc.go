// Package pg manages the PostgreSQL connection pool: connect with retries,
// goose migrations and a healthcheck closure for the health endpoint.
package pg
