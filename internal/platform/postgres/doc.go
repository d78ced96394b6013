// Package postgres provides PostgreSQL-backed implementations of the
// persistence interfaces defined in internal/store.
package postgres
