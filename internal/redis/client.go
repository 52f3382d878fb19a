package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const pingTimeout = 3 * time.Second

type Config struct {
	Addr     string
	Password string
	DB       int

	// TTL bounds how long a clean validation is trusted.
	TTL time.Duration
	// Prefix namespaces keys when several deployments share a database.
	Prefix string
}

func (c Config) options() *goredis.Options {
	return &goredis.Options{
		Addr:         c.Addr,
		Password:     c.Password,
		DB:           c.DB,
		DialTimeout:  pingTimeout,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}
}

// Connect dials Redis and checks it answers before returning the client.
func Connect(ctx context.Context, cfg Config) (*goredis.Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis addr required")
	}
	rdb := goredis.NewClient(cfg.options())

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// Open connects and returns a fingerprint store over the connection. close releases it.
func Open(ctx context.Context, cfg Config) (store Fingerprints, closeFn func() error, err error) {
	rdb, err := Connect(ctx, cfg)
	if err != nil {
		return Fingerprints{}, nil, err
	}
	return Fingerprints{RDB: rdb, Prefix: cfg.Prefix, TTL: cfg.TTL}, rdb.Close, nil
}
