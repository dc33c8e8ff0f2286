package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/uiuifree/go-jismeshcode/internal/cache"
)

// adapter exposes the client through the context-free cache interface, with a
// per-operation deadline.
type adapter struct {
	cli     *Client
	timeout time.Duration
}

// NewAdapter wraps the client as a cache.Interface. Each operation runs under
// its own timeout so a slow Redis cannot stall request handling.
func NewAdapter(c *Client, timeout time.Duration) cache.Interface {
	return &adapter{cli: c, timeout: timeout}
}

func (a *adapter) withTimeout() (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), a.timeout)
}

func (a *adapter) MGet(keys []string) (map[string][]byte, error) {
	ctx, cancel := a.withTimeout()
	defer cancel()
	m, err := a.cli.MGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("cache mget: %w", err)
	}
	return m, nil
}

func (a *adapter) Set(key string, val []byte, ttl time.Duration) error {
	ctx, cancel := a.withTimeout()
	defer cancel()
	if err := a.cli.Set(ctx, key, val, ttl); err != nil {
		return fmt.Errorf("cache set %q: %w", key, err)
	}
	return nil
}

func (a *adapter) Del(keys ...string) error {
	ctx, cancel := a.withTimeout()
	defer cancel()
	if err := a.cli.Del(ctx, keys...); err != nil {
		return fmt.Errorf("cache del %d keys: %w", len(keys), err)
	}
	return nil
}
