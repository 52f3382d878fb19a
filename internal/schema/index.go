package schema

import (
	"encoding/json"
	"fmt"

	"github.com/Rorical/indexschema/internal/codec"
)

// Index is everything the engine needs to know about one index: the mapping tree and the
// named analysis components it references.
type Index struct {
	Name     string
	TypeName string
	Mapping  *TypeMapping
	Analysis *Analysis
}

// mappingMetaKeys are root-level mapping keys that can never be a document type name.
var mappingMetaKeys = map[string]struct{}{
	attrDynamic:         {},
	attrProperties:      {},
	"_source":           {},
	"_meta":             {},
	"_routing":          {},
	"_all":              {},
	"_field_names":      {},
	"dynamic_templates": {},
	"date_detection":    {},
	"numeric_detection": {},
	"runtime":           {},
}

// MarshalMapping writes the mapping, nested under the type name on lines that need it.
func (ix *Index) MarshalMapping(d codec.Dialect) (json.RawMessage, error) {
	m := ix.Mapping
	if m == nil {
		m = NewTypeMapping()
	}
	raw, err := m.Encode(d)
	if err != nil {
		return nil, err
	}
	if !d.Profile().TypeWrapper {
		return raw, nil
	}
	name := ix.TypeName
	if name == "" {
		name = d.Profile().TypeName
	}
	var w objectWriter
	w.raw(name, raw)
	return w.bytes(), nil
}

// MarshalCreateBody writes the body of an index creation request.
func (ix *Index) MarshalCreateBody(d codec.Dialect) (json.RawMessage, error) {
	var w objectWriter
	if !ix.Analysis.Empty() {
		analysis, err := ix.Analysis.Encode()
		if err != nil {
			return nil, err
		}
		var settings objectWriter
		settings.raw("analysis", analysis)
		w.raw("settings", settings.bytes())
	}
	mapping, err := ix.MarshalMapping(d)
	if err != nil {
		return nil, err
	}
	w.raw("mappings", mapping)
	return w.bytes(), nil
}

// DecodeMappings reads the value of a "mappings" key, typeless or type-wrapped.
func DecodeMappings(raw json.RawMessage, d codec.Dialect) (*TypeMapping, string, error) {
	typeName := ""
	inner := raw

	var members []string
	var first json.RawMessage
	err := eachMember(raw, func(key string, val json.RawMessage) error {
		members = append(members, key)
		if first == nil {
			first = val
		}
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("mappings: %w", err)
	}
	if len(members) == 1 && isObject(first) {
		if _, meta := mappingMetaKeys[members[0]]; !meta {
			typeName = members[0]
			inner = first
		}
	}
	if typeName == "" {
		typeName = d.Profile().TypeName
	}

	m, err := DecodeTypeMapping(inner, d)
	if err != nil {
		return nil, "", fmt.Errorf("mappings: %w", err)
	}
	return m, typeName, nil
}

// DecodeCreateBody reads a body in the shape produced by MarshalCreateBody.
func DecodeCreateBody(name string, raw json.RawMessage, d codec.Dialect) (*Index, error) {
	ix := &Index{Name: name, TypeName: d.Profile().TypeName, Mapping: NewTypeMapping(), Analysis: &Analysis{}}
	err := eachMember(raw, func(key string, val json.RawMessage) error {
		switch key {
		case "mappings":
			m, typeName, err := DecodeMappings(val, d)
			if err != nil {
				return err
			}
			ix.Mapping, ix.TypeName = m, typeName
		case "settings":
			a, err := decodeSettings(val)
			if err != nil {
				return err
			}
			ix.Analysis = a
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("index %q: %w", name, err)
	}
	return ix, nil
}

// DecodeMappingResponse reads GET /{index}/_mapping.
func DecodeMappingResponse(index string, raw json.RawMessage, d codec.Dialect) (*TypeMapping, string, error) {
	var resp map[string]struct {
		Mappings json.RawMessage `json:"mappings"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, "", fmt.Errorf("mapping response: %w", err)
	}
	entry, ok := resp[index]
	if !ok {
		// Aliases resolve to the concrete index name.
		if len(resp) != 1 {
			return nil, "", fmt.Errorf("mapping response: index %q not found", index)
		}
		for _, v := range resp {
			entry = v
		}
	}
	if len(entry.Mappings) == 0 || isNull(entry.Mappings) {
		return NewTypeMapping(), d.Profile().TypeName, nil
	}
	return DecodeMappings(entry.Mappings, d)
}

// DecodeSettingsResponse reads the analysis part of GET /{index}/_settings.
func DecodeSettingsResponse(index string, raw json.RawMessage) (*Analysis, error) {
	var resp map[string]struct {
		Settings json.RawMessage `json:"settings"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("settings response: %w", err)
	}
	entry, ok := resp[index]
	if !ok {
		if len(resp) != 1 {
			return nil, fmt.Errorf("settings response: index %q not found", index)
		}
		for _, v := range resp {
			entry = v
		}
	}
	return decodeSettings(entry.Settings)
}

// decodeSettings accepts both {"index":{"analysis":…}} and {"analysis":…}.
func decodeSettings(raw json.RawMessage) (*Analysis, error) {
	if len(raw) == 0 || isNull(raw) {
		return &Analysis{}, nil
	}
	var s struct {
		Index struct {
			Analysis json.RawMessage `json:"analysis"`
		} `json:"index"`
		Analysis json.RawMessage `json:"analysis"`
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	analysis := s.Index.Analysis
	if len(analysis) == 0 {
		analysis = s.Analysis
	}
	a, err := DecodeAnalysis(analysis)
	if err != nil {
		return nil, fmt.Errorf("settings.analysis: %w", err)
	}
	return a, nil
}
