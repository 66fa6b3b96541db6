package domain

import "encoding/json"

// Field is an optional value in a sparse update. Set records whether the
// caller supplied the field at all, independently of its value: a field
// explicitly set to null is present, a missing field is absent.
type Field[T any] struct {
	Value T
	Set   bool
}

// Some returns a present field holding v.
func Some[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// UnmarshalJSON marks the field present. It is only invoked when the key
// appears in the document, which is what distinguishes absent from null.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	return json.Unmarshal(data, &f.Value)
}

// MarshalJSON encodes the wrapped value.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Value)
}
