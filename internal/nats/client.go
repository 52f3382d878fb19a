package nats

import (
	"context"
	"fmt"
	"time"

	nats "github.com/nats-io/nats.go"
)

type ConnConfig struct {
	URL     string
	Name    string
	Timeout time.Duration
}

func DefaultConnConfig() ConnConfig {
	return ConnConfig{
		URL:     nats.DefaultURL,
		Name:    "indexschema",
		Timeout: 5 * time.Second,
	}
}

func (c ConnConfig) withDefaults() ConnConfig {
	def := DefaultConnConfig()
	if c.URL == "" {
		c.URL = def.URL
	}
	if c.Name == "" {
		c.Name = def.Name
	}
	if c.Timeout == 0 {
		c.Timeout = def.Timeout
	}
	return c
}

// Connect opens a connection and its JetStream context.
func Connect(ctx context.Context, cfg ConnConfig) (*nats.Conn, nats.JetStreamContext, error) {
	cfg = cfg.withDefaults()

	nc, err := nats.Connect(cfg.URL, nats.Name(cfg.Name), nats.Timeout(cfg.Timeout))
	if err != nil {
		return nil, nil, fmt.Errorf("connect nats %s: %w", cfg.URL, err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("jetstream: %w", err)
	}

	return nc, js, nil
}
