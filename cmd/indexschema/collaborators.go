package main

import (
	"context"
	"errors"

	osclient "github.com/opensearch-project/opensearch-go/v4"

	"github.com/Rorical/indexschema/internal/engine"
	"github.com/Rorical/indexschema/internal/fingerprint"
	"github.com/Rorical/indexschema/internal/logging"
	internalnats "github.com/Rorical/indexschema/internal/nats"
	"github.com/Rorical/indexschema/internal/opensearch"
	internalredis "github.com/Rorical/indexschema/internal/redis"
)

// live bundles what commands talking to a cluster need. close releases every
// connection that was opened.
type live struct {
	client  *osclient.Client
	profile *engine.Profile
	opts    opensearch.ReconcileOptions

	closers []func()
}

func (l *live) close() {
	for i := len(l.closers) - 1; i >= 0; i-- {
		l.closers[i]()
	}
}

// connect opens the engine client and the optional Redis and NATS collaborators. Without
// Redis, clean fingerprints are kept in process.
func (a *app) connect(ctx context.Context, mode opensearch.Mode) (*live, error) {
	logger := logging.FromContext(ctx)
	l := &live{}

	c, err := opensearch.New(opensearch.Config{
		URL:      a.cfg.OpenSearch.URL,
		Username: a.cfg.OpenSearch.Username,
		Password: a.cfg.OpenSearch.Password,
		Insecure: a.cfg.OpenSearch.Insecure,
	})
	if err != nil {
		return nil, err
	}
	l.client = c

	p, err := opensearch.DetectProfile(ctx, c, a.engine)
	if err != nil {
		return nil, err
	}
	l.profile = p
	l.opts = opensearch.ReconcileOptions{Profile: p, Mode: mode}

	if a.cfg.Redis.Addr != "" {
		fps, closeRedis, err := internalredis.Open(ctx, internalredis.Config{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
			TTL:      a.cfg.Redis.TTL,
		})
		if err != nil {
			l.close()
			return nil, err
		}
		l.closers = append(l.closers, func() { _ = closeRedis() })
		l.opts.Fingerprints = fps
	} else {
		l.opts.Fingerprints = fingerprint.NewMemory(fingerprint.DefaultSize)
	}

	if a.cfg.NATS.URL != "" {
		nc, js, err := internalnats.Connect(ctx, a.cfg.NATS)
		if err != nil {
			l.close()
			return nil, err
		}
		l.closers = append(l.closers, func() { _ = nc.Drain() })
		if err := internalnats.EnsureStream(ctx, js); err != nil {
			l.close()
			return nil, err
		}
		l.opts.Sink = internalnats.ReportSink{JS: js}
	}

	logger.Info("engine connected", "url", a.cfg.OpenSearch.URL, "line", p.Line.String(),
		"redis", a.cfg.Redis.Addr != "", "nats", a.cfg.NATS.URL != "")
	return l, nil
}

func (l *live) checker() *opensearch.Checker {
	return &opensearch.Checker{Client: l.client, Options: l.opts}
}

var errNoCatalogs = errors.New("no catalogs: pass --catalog or set INDEXSCHEMA_CATALOG")
