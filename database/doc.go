// Package database provides connection management for mysql, postgres and
// sqlite on top of Bun, layered configuration loading, migrations for
// registered models, logging, slow query reporting, health checks and SQL
// error classification.
package database
