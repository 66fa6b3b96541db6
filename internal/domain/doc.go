// Package domain contains the core entities of the application and the
// inputs used to create and update them. Creation inputs are complete and
// validated; update inputs are sparse, built from Field values that record
// whether the caller supplied them.
package domain
