package task

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
)

// PanicError reports a handler that panicked.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.Value)
}

// TestCeleryArgs is the payload of TaskTestCelery.
type TestCeleryArgs struct {
	Word string `json:"word"`
}

// TestCelery echoes the received word.
func TestCelery(_ context.Context, args json.RawMessage) (any, error) {
	var in TestCeleryArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
		}
	}
	return "test task return " + in.Word, nil
}

// RegisterDefaults binds the built-in tasks to r.
func RegisterDefaults(r *Registry) {
	r.Register(TaskTestCelery, TestCelery)
}
