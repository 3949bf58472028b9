// Package repository provides a generic repository that turns entity type,
// identifier and example filters into backend criteria, with a Bun-backed
// session for SQL databases and a registry for dispatch by entity type.
package repository
