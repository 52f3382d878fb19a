package opensearch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"

	opensearch "github.com/opensearch-project/opensearch-go/v4"
	osapi "github.com/opensearch-project/opensearch-go/v4/opensearchapi"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Rorical/indexschema/internal/codec"
	"github.com/Rorical/indexschema/internal/engine"
	"github.com/Rorical/indexschema/internal/schema"
)

// live is what the engine reported for one index, with the raw documents kept for
// fingerprinting.
type live struct {
	index    *schema.Index
	mapping  []byte
	settings []byte
}

func (l live) fingerprint(desired []byte) string {
	h := sha256.New()
	for _, part := range [][]byte{desired, l.mapping, l.settings} {
		h.Write(part)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Exists reports whether an index or alias exists.
func Exists(ctx context.Context, c *opensearch.Client, index string) (bool, error) {
	res, err := do(ctx, c, osapi.IndicesExistsReq{Indices: []string{index}}, "indices exists")
	if err != nil {
		return false, err
	}
	switch {
	case res.ok():
		return true, nil
	case res.status == http.StatusNotFound:
		return false, nil
	default:
		return false, res.statusErr("indices exists")
	}
}

// Fetch reads the live mapping and analysis settings of an index. found is false when
// the index does not exist.
func Fetch(ctx context.Context, c *opensearch.Client, index string, p *engine.Profile) (*schema.Index, bool, error) {
	l, found, err := fetch(ctx, c, index, p)
	if err != nil || !found {
		return nil, found, err
	}
	return l.index, true, nil
}

func fetch(ctx context.Context, c *opensearch.Client, index string, p *engine.Profile) (live, bool, error) {
	ctx, span := tracer().Start(ctx, "Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("index", index))

	if index == "" {
		return live{}, false, fmt.Errorf("index required")
	}

	mres, err := do(ctx, c, osapi.MappingGetReq{Indices: []string{index}}, "get mapping")
	if err != nil {
		return live{}, false, err
	}
	if mres.status == http.StatusNotFound {
		return live{}, false, nil
	}
	if !mres.ok() {
		return live{}, false, mres.statusErr("get mapping")
	}

	sres, err := do(ctx, c, osapi.SettingsGetReq{Indices: []string{index}}, "get settings")
	if err != nil {
		return live{}, false, err
	}
	if sres.status == http.StatusNotFound {
		return live{}, false, nil
	}
	if !sres.ok() {
		return live{}, false, sres.statusErr("get settings")
	}

	d := codec.NewDialect(p)
	mapping, typeName, err := schema.DecodeMappingResponse(index, mres.body, d)
	if err != nil {
		return live{}, false, err
	}
	analysis, err := schema.DecodeSettingsResponse(index, sres.body)
	if err != nil {
		return live{}, false, err
	}

	return live{
		index: &schema.Index{
			Name:     index,
			TypeName: typeName,
			Mapping:  mapping,
			Analysis: analysis,
		},
		mapping:  mres.body,
		settings: sres.body,
	}, true, nil
}
