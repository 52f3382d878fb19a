package opensearch

import (
	"context"
	"encoding/json"
	"fmt"

	opensearch "github.com/opensearch-project/opensearch-go/v4"
	osapi "github.com/opensearch-project/opensearch-go/v4/opensearchapi"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Rorical/indexschema/internal/engine"
)

type infoBody struct {
	Version struct {
		Number       string `json:"number"`
		Distribution string `json:"distribution"`
	} `json:"version"`
}

// Detect reads the engine distribution and version from the root endpoint.
// Elasticsearch does not report a distribution; OpenSearch reports "opensearch".
func Detect(ctx context.Context, c *opensearch.Client) (engine.Version, error) {
	ctx, span := tracer().Start(ctx, "Detect")
	defer span.End()

	res, err := do(ctx, c, osapi.InfoReq{}, "info")
	if err != nil {
		return engine.Version{}, err
	}
	if !res.ok() {
		return engine.Version{}, res.statusErr("info")
	}
	return parseInfo(res.body)
}

func parseInfo(body []byte) (engine.Version, error) {
	var info infoBody
	if err := json.Unmarshal(body, &info); err != nil {
		return engine.Version{}, fmt.Errorf("info: decode: %w", err)
	}
	if info.Version.Number == "" {
		return engine.Version{}, fmt.Errorf("info: missing version.number")
	}
	s := info.Version.Number
	if info.Version.Distribution != "" {
		s = info.Version.Distribution + ":" + s
	}
	return engine.ParseVersion(s)
}

// DetectProfile resolves the profile for the connected engine, or for override when set.
func DetectProfile(ctx context.Context, c *opensearch.Client, override string) (*engine.Profile, error) {
	var (
		v   engine.Version
		err error
	)
	if override != "" {
		v, err = engine.ParseVersion(override)
	} else {
		v, err = Detect(ctx, c)
	}
	if err != nil {
		return nil, err
	}
	p, err := engine.ProfileForVersion(v)
	if err != nil {
		return nil, err
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("engine.version", v.String()), attribute.String("engine.line", p.Line.String()))
	return p, nil
}
