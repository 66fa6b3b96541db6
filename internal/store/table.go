package store

import (
	"strings"

	"github.com/phrazzld/scaffold-api/internal/domain"
)

// Column maps one SQL column onto a field of E.
type Column[E any] struct {
	Name string
	// Field returns a pointer to the column's field in e. It is used as a
	// scan destination.
	Field func(e *E) any
	// Immutable columns are written on insert but never by Update.
	Immutable bool
}

// Table describes how an entity is stored.
type Table[E any] struct {
	// Name is the SQL table name.
	Name string
	// Entity names the entity in errors and logs.
	Entity string
	// Key is the storage-assigned identifier column.
	Key Column[E]
	// Columns are the data columns, in a fixed order.
	Columns []Column[E]
}

func (t Table[E]) column(name string) (Column[E], bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column[E]{}, false
}

func (t Table[E]) selectList() string {
	names := make([]string, 0, len(t.Columns)+1)
	names = append(names, t.Key.Name)
	for _, c := range t.Columns {
		names = append(names, c.Name)
	}
	return strings.Join(names, ", ")
}

func (t Table[E]) scanDest(e *E) []any {
	dest := make([]any, 0, len(t.Columns)+1)
	dest = append(dest, t.Key.Field(e))
	for _, c := range t.Columns {
		dest = append(dest, c.Field(e))
	}
	return dest
}

// insertable returns the known data columns present in f, in table order.
func (t Table[E]) insertable(f domain.Fields) ([]string, []any) {
	var names []string
	var values []any
	for _, c := range t.Columns {
		if v, ok := f[c.Name]; ok {
			names = append(names, c.Name)
			values = append(values, v)
		}
	}
	return names, values
}

// updatable is insertable restricted to mutable columns.
func (t Table[E]) updatable(f domain.Fields) ([]string, []any) {
	var names []string
	var values []any
	for _, c := range t.Columns {
		if c.Immutable {
			continue
		}
		if v, ok := f[c.Name]; ok {
			names = append(names, c.Name)
			values = append(values, v)
		}
	}
	return names, values
}
