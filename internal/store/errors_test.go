package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "generic error", err: errors.New("some error"), expected: false},
		{name: "ErrNotFound", err: ErrNotFound, expected: true},
		{name: "wrapped ErrNotFound", err: fmt.Errorf("failed: %w", ErrNotFound), expected: true},
		{name: "ErrUserNotFound", err: ErrUserNotFound, expected: true},
		{name: "ErrItemNotFound", err: ErrItemNotFound, expected: true},
		{name: "ErrDuplicate", err: ErrDuplicate, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestStorageError(t *testing.T) {
	cause := fmt.Errorf("%w: users_email_key", ErrDuplicate)
	err := NewStorageError("user", "create", "failed to create entity", cause)

	assert.Equal(t, "create operation on user failed: failed to create entity: entity already exists: users_email_key", err.Error())
	assert.ErrorIs(t, err, ErrDuplicate)

	var serr *StorageError
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &serr))
	assert.Equal(t, "user", serr.Entity)

	bare := NewStorageError("item", "list", "failed", nil)
	assert.Equal(t, "list operation on item failed: failed", bare.Error())
	assert.Nil(t, bare.Unwrap())
}

func TestPageValidate(t *testing.T) {
	assert.NoError(t, Page{}.Validate())
	assert.NoError(t, DefaultPage.Validate())
	assert.Equal(t, DefaultLimit, DefaultPage.Limit)
	assert.ErrorIs(t, Page{Skip: -1}.Validate(), ErrInvalidPage)
	assert.ErrorIs(t, Page{Limit: -1}.Validate(), ErrInvalidPage)
}
