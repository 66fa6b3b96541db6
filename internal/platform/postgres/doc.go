// Package postgres adapts the generic store to PostgreSQL: $n placeholders
// and translation of pgconn error codes into store errors. Connections are
// made through pgx's database/sql driver.
package postgres
