// Package cache provides a small key/value cache with an in-process backend
// for development and tests and a Redis backend for deployments with more
// than one instance.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/scaffold-api/internal/config"
)

// ErrNotFound is returned by Get when the key does not exist or has expired.
var ErrNotFound = errors.New("cache: key not found")

// Client defines the cache operations.
type Client interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key. A zero ttl uses the client's default.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// SetIfAbsent stores value only when key does not exist and reports
	// whether it did. The check and the write are atomic.
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend.
	Close() error
}

// New creates the Client selected by cfg.Driver.
func New(cfg config.CacheConfig) (Client, error) {
	switch cfg.Driver {
	case "redis":
		return NewRedis(cfg)
	case "memory", "":
		return NewMemory(cfg.DefaultTTL), nil
	default:
		return nil, fmt.Errorf("cache: unsupported driver %q", cfg.Driver)
	}
}
