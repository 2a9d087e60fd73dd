// Package enable provides the pollable signal that lets an external selector
// start and stop the demonstration between cycles.
package enable

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	backend "github.com/redis/go-redis/v9"
)

// DefaultKey is the Redis key the selector writes.
const DefaultKey = "hanoi:enabled"

// Flag is an in-process enable flag.
type Flag struct {
	v atomic.Bool
}

// NewFlag returns a flag with the given initial value.
func NewFlag(enabled bool) *Flag {
	f := &Flag{}
	f.v.Store(enabled)
	return f
}

// Enabled implements choreo.EnableSignal.
func (f *Flag) Enabled(context.Context) (bool, error) {
	return f.v.Load(), nil
}

// Set stores a new value.
func (f *Flag) Set(enabled bool) {
	f.v.Store(enabled)
}

// Toggle flips the flag and returns the new value.
func (f *Flag) Toggle() bool {
	for {
		old := f.v.Load()
		if f.v.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// RedisFlag reads the enable flag from a Redis key owned by another process.
// A missing key counts as the fallback value.
type RedisFlag struct {
	client   *backend.Client
	key      string
	fallback bool
}

// NewRedisFlag creates a flag backed by key.
func NewRedisFlag(client *backend.Client, key string, fallback bool) *RedisFlag {
	if key == "" {
		key = DefaultKey
	}
	return &RedisFlag{
		client:   client,
		key:      key,
		fallback: fallback,
	}
}

// Enabled implements choreo.EnableSignal.
func (r *RedisFlag) Enabled(ctx context.Context) (bool, error) {
	val, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, backend.Nil) {
		return r.fallback, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", r.key, err)
	}
	return parseBool(val)
}

// Set writes the flag, for selectors living in this process.
func (r *RedisFlag) Set(ctx context.Context, enabled bool) error {
	if err := r.client.Set(ctx, r.key, strconv.FormatBool(enabled), 0).Err(); err != nil {
		return fmt.Errorf("write %s: %w", r.key, err)
	}
	return nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes", "enabled":
		return true, nil
	case "0", "false", "off", "no", "disabled", "":
		return false, nil
	}
	return false, fmt.Errorf("unrecognized enable value %q", s)
}
