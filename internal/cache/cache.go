// Package cache wraps the key/value store used for hot directory lookups.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent.
var ErrMiss = errors.New("cache miss")

// Provider is the cache the services depend on.
type Provider interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// Noop never stores anything; every Get misses.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }
func (Noop) Set(context.Context, string, []byte, time.Duration) error     { return nil }
func (Noop) Delete(context.Context, ...string) error                      { return nil }
func (Noop) DeletePrefix(context.Context, string) error                   { return nil }

// Remember returns the cached JSON value for key, or calls load, caches its
// result for ttl and returns it. Cache failures never fail the call.
func Remember[T any](ctx context.Context, p Provider, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if b, err := p.Get(ctx, key); err == nil {
		var v T
		if json.Unmarshal(b, &v) == nil {
			return v, nil
		}
	}
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if b, err := json.Marshal(v); err == nil {
		_ = p.Set(ctx, key, b, ttl)
	}
	return v, nil
}
