// Package sqlite adapts the generic store to SQLite through the pure-Go
// modernc.org/sqlite driver. It is used for local development and tests.
package sqlite
