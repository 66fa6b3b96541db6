package store

// Dialect adapts generated SQL and driver errors to one database engine.
type Dialect interface {
	// Name identifies the engine, e.g. "postgres" or "sqlite".
	Name() string

	// Placeholder returns the bind parameter for the n-th argument, 1-based.
	Placeholder(n int) string

	// MapError translates a driver error into ErrDuplicate or
	// ErrInvalidEntity where it recognises a constraint violation, wrapping
	// the original. Unrecognised errors are returned unchanged.
	MapError(err error) error
}
