// Package repository defines the data access interfaces for sentinel.
//
// Discovery state lives in the store actor and never touches a database.
// Compliance policies are relational data that clients filter and fetch by
// id, so they sit behind PolicyRepository instead.
//
// # SQLite Implementation
//
// The sqlite subpackage implements PolicyRepository on an in-memory SQLite
// database (modernc.org/sqlite, no cgo). The schema is migrated on open and
// the table disappears with the process.
//
// # Testing
//
// The sqlite repository is tested against a private ":memory:" database per
// test.
package repository
