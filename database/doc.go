// Package database provides connection management for MySQL, PostgreSQL and
// SQLite on top of Bun, configuration types, query logging hooks, driver error
// classification, a model registry and idempotent table bootstrap.
package database
