package opensearch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"

	opensearch "github.com/opensearch-project/opensearch-go/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type Config struct {
	URL      string
	Username string
	Password string
	Insecure bool
}

func New(cfg Config) (*opensearch.Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("opensearch url required")
	}

	tr := &http.Transport{}
	if cfg.Insecure {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	c, err := opensearch.NewClient(opensearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: tr,
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

const tracerName = "indexschema/opensearch"

func tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// response is a fully read engine response.
type response struct {
	status int
	body   []byte
}

func (r response) ok() bool { return r.status >= 200 && r.status < 300 }

// statusErr describes a non-2xx response, with the engine's error body when it sent one.
func (r response) statusErr(op string) error {
	if len(r.body) == 0 {
		return fmt.Errorf("%s http status %d", op, r.status)
	}
	body := r.body
	if len(body) > 512 {
		body = body[:512]
	}
	return fmt.Errorf("%s http status %d: %s", op, r.status, body)
}

// do executes req and reads the whole body. Error statuses are returned as a response,
// not as an error, so callers can branch on 404.
func do(ctx context.Context, c *opensearch.Client, req opensearch.Request, op string) (response, error) {
	res, err := c.Do(ctx, req, nil)
	if res == nil {
		if err == nil {
			err = errors.New("no response")
		}
		return response{}, fmt.Errorf("%s: %w", op, err)
	}
	out := response{status: res.StatusCode}
	if res.Body != nil {
		defer func() { _ = res.Body.Close() }()
		b, rerr := io.ReadAll(res.Body)
		if rerr != nil && out.ok() {
			return response{}, fmt.Errorf("%s: read body: %w", op, rerr)
		}
		out.body = b
	}
	return out, nil
}
