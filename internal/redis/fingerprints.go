package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	DefaultPrefix = "indexschema:clean"
	DefaultTTL    = 24 * time.Hour
)

// Fingerprints remembers, per index, the fingerprint of the last live schema that
// validated clean. It is shared by every process reconciling against the same engine.
type Fingerprints struct {
	RDB    goredis.Cmdable
	Prefix string
	TTL    time.Duration
}

func (f Fingerprints) key(index string) string {
	prefix := f.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return fmt.Sprintf("%s:%s", prefix, index)
}

// Seen reports whether fp is the remembered clean fingerprint for index.
func (f Fingerprints) Seen(ctx context.Context, index, fp string) (bool, error) {
	if index == "" || fp == "" {
		return false, fmt.Errorf("index and fingerprint required")
	}
	v, err := f.RDB.Get(ctx, f.key(index)).Result()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get: %w", err)
	}
	return v == fp, nil
}

// Remember replaces the clean fingerprint for index.
func (f Fingerprints) Remember(ctx context.Context, index, fp string) error {
	if index == "" || fp == "" {
		return fmt.Errorf("index and fingerprint required")
	}
	ttl := f.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	if err := f.RDB.Set(ctx, f.key(index), fp, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Forget drops the remembered fingerprint, forcing the next pass to validate.
func (f Fingerprints) Forget(ctx context.Context, index string) error {
	if err := f.RDB.Del(ctx, f.key(index)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
