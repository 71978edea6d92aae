// Package pg manages the PostgreSQL connection pool and schema migrations.
//
// Connect opens a pgx pool with startup retry, Migrate applies goose SQL
// migrations through the pool, and Healthcheck produces a probe function
// for readiness endpoints. The error helpers classify common pg failure
// modes (no rows, unique violations) without leaking driver types into
// calling packages.
package pg
