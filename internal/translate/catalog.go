package translate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Rorical/indexschema/internal/engine"
	"github.com/Rorical/indexschema/internal/schema"
)

// Catalog is the on-disk description of one index.
//
//	index: products
//	dynamic: strict
//	fields:
//	  - path: title
//	    kind: string
//	    analyzer: english
//	    searchable: true
//	    scoring: true
//	analysis:
//	  analyzer:
//	    folding: {tokenizer: standard, filter: [lowercase, asciifolding]}
type Catalog struct {
	Index    string            `yaml:"index" json:"index"`
	Dynamic  string            `yaml:"dynamic,omitempty" json:"dynamic,omitempty"`
	Fields   []FieldDescriptor `yaml:"fields" json:"fields"`
	Analysis map[string]any    `yaml:"analysis,omitempty" json:"analysis,omitempty"`
}

// UnmarshalJSON keeps numbers in the analysis block as written and rejects unknown keys,
// matching LoadCatalog.
func (c *Catalog) UnmarshalJSON(b []byte) error {
	type plain Catalog
	var v plain
	if err := decodeExact(b, &v); err != nil {
		return err
	}
	*c = Catalog(v)
	return nil
}

// UnmarshalJSON keeps a numeric null_value as written. A float64 round trip would
// change longs above 2^53.
func (d *FieldDescriptor) UnmarshalJSON(b []byte) error {
	type plain FieldDescriptor
	var v plain
	if err := decodeExact(b, &v); err != nil {
		return err
	}
	*d = FieldDescriptor(v)
	return nil
}

func decodeExact(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// LoadCatalog decodes a YAML catalog. Unknown keys are rejected so typos in capability
// flags do not silently drop a requirement.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if c.Index == "" {
		return nil, fmt.Errorf("decode catalog: index name is required")
	}
	return &c, nil
}

func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadCatalog(f)
}

// AnalysisSettings decodes the analysis block into schema components.
func (c *Catalog) AnalysisSettings() (*schema.Analysis, error) {
	if len(c.Analysis) == 0 {
		return &schema.Analysis{}, nil
	}
	raw, err := json.Marshal(c.Analysis)
	if err != nil {
		return nil, fmt.Errorf("analysis: %w", err)
	}
	a, err := schema.DecodeAnalysis(raw)
	if err != nil {
		return nil, fmt.Errorf("analysis: %w", err)
	}
	return a, nil
}

// Translate produces the desired index for the engine line of p.
func (c *Catalog) Translate(p *engine.Profile) (*schema.Index, error) {
	analysis, err := c.AnalysisSettings()
	if err != nil {
		return nil, err
	}
	ix, err := Translate(p, c.Fields, analysis)
	if err != nil {
		return nil, err
	}
	ix.Name = c.Index
	if c.Dynamic != "" {
		dyn, err := parseDynamic(c.Dynamic)
		if err != nil {
			return nil, wrapf("", err, "invalid root dynamic policy")
		}
		ix.Mapping.Dynamic = schema.Some(dyn)
	}
	return ix, nil
}
