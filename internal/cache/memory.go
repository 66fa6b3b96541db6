package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is an in-process Client backed by go-cache.
type Memory struct {
	c          *gocache.Cache
	defaultTTL time.Duration
}

var _ Client = (*Memory)(nil)

// NewMemory creates a Memory cache. Expired entries are purged every minute.
func NewMemory(defaultTTL time.Duration) *Memory {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	return &Memory{
		c:          gocache.New(defaultTTL, time.Minute),
		defaultTTL: defaultTTL,
	}
}

func (m *Memory) ttl(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return m.defaultTTL
	}
	return ttl
}

// Get implements Client.
func (m *Memory) Get(_ context.Context, key string) (string, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return "", ErrNotFound
	}
	s, _ := v.(string)
	return s, nil
}

// Set implements Client.
func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.c.Set(key, value, m.ttl(ttl))
	return nil
}

// SetIfAbsent implements Client.
func (m *Memory) SetIfAbsent(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	if err := m.c.Add(key, value, m.ttl(ttl)); err != nil {
		return false, nil
	}
	return true, nil
}

// Delete implements Client.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

// Ping implements Client.
func (m *Memory) Ping(context.Context) error { return nil }

// Close implements Client.
func (m *Memory) Close() error {
	m.c.Flush()
	return nil
}
