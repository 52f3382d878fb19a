package opensearch

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	opensearch "github.com/opensearch-project/opensearch-go/v4"
	osapi "github.com/opensearch-project/opensearch-go/v4/opensearchapi"

	"github.com/Rorical/indexschema/internal/codec"
	"github.com/Rorical/indexschema/internal/schema"
)

// Create creates the index with its analysis settings and mapping.
func Create(ctx context.Context, c *opensearch.Client, ix *schema.Index, d codec.Dialect) error {
	ctx, span := tracer().Start(ctx, "Create")
	defer span.End()

	if ix.Name == "" {
		return fmt.Errorf("index name required")
	}
	body, err := ix.MarshalCreateBody(d)
	if err != nil {
		return fmt.Errorf("create body: %w", err)
	}
	res, err := do(ctx, c, osapi.IndicesCreateReq{Index: ix.Name, Body: bytes.NewReader(body)}, "indices create")
	if err != nil {
		return err
	}
	if !res.ok() {
		return res.statusErr("indices create")
	}
	return nil
}

// PutMapping sends the desired mapping to an existing index. The engine merges it into
// the live mapping and refuses changes to existing fields.
func PutMapping(ctx context.Context, c *opensearch.Client, ix *schema.Index, d codec.Dialect) error {
	ctx, span := tracer().Start(ctx, "PutMapping")
	defer span.End()

	m := ix.Mapping
	if m == nil {
		m = schema.NewTypeMapping()
	}
	body, err := m.Encode(d)
	if err != nil {
		return fmt.Errorf("mapping body: %w", err)
	}

	var req opensearch.Request = osapi.MappingPutReq{Indices: []string{ix.Name}, Body: bytes.NewReader(body)}
	if p := d.Profile(); p.TypeWrapper {
		typeName := ix.TypeName
		if typeName == "" {
			typeName = p.TypeName
		}
		req = typedMappingPutReq{index: ix.Name, typeName: typeName, body: body}
	}

	res, err := do(ctx, c, req, "put mapping")
	if err != nil {
		return err
	}
	if !res.ok() {
		return res.statusErr("put mapping")
	}
	return nil
}

// typedMappingPutReq targets /{index}/_mapping/{type}, which engine lines with document
// types require.
type typedMappingPutReq struct {
	index    string
	typeName string
	body     []byte
}

func (r typedMappingPutReq) GetRequest() (*http.Request, error) {
	req, err := http.NewRequest(http.MethodPut, "/"+r.index+"/_mapping/"+r.typeName, bytes.NewReader(r.body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}
