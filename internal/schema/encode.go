package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/Rorical/indexschema/internal/codec"
)

// Encode writes the mapping tree in the engine's native shape. Unset attributes are
// omitted, null attributes are written as null, extras follow the typed attributes.
func (m *TypeMapping) Encode(d codec.Dialect) (json.RawMessage, error) {
	var w objectWriter
	if err := m.encodeBody(&w, d, ""); err != nil {
		return nil, err
	}
	if err := m.encodeProperties(&w, d, ""); err != nil {
		return nil, err
	}
	m.encodeExtras(&w)
	return w.bytes(), nil
}

func (m *TypeMapping) encodeBody(w *objectWriter, d codec.Dialect, path string) error {
	if err := writeOpt(w, attrDynamic, m.Dynamic, func(v Dynamic) (json.RawMessage, error) {
		return d.DynamicToken(string(v))
	}); err != nil {
		return pathErr(path, err)
	}
	return nil
}

func (m *TypeMapping) encodeProperties(w *objectWriter, d codec.Dialect, path string) error {
	return encodeNamed(w, attrProperties, m.properties, d, path)
}

func (m *TypeMapping) encodeExtras(w *objectWriter) {
	for _, k := range m.extras.keys {
		w.raw(k, m.extras.vals[k])
	}
}

// Encode writes a single property mapping.
func (p *PropertyMapping) Encode(d codec.Dialect) (json.RawMessage, error) {
	return p.encode(d, "")
}

func (p *PropertyMapping) encode(d codec.Dialect, path string) (json.RawMessage, error) {
	var w objectWriter

	switch {
	case p.Type.IsZero():
	case !p.Type.Recognized():
		if err := w.value(attrType, p.Type.String()); err != nil {
			return nil, pathErr(path, err)
		}
	default:
		tok, err := d.TypeToken(p.Type.String())
		if err != nil {
			return nil, pathErr(path, err)
		}
		if err := w.value(attrType, tok); err != nil {
			return nil, pathErr(path, err)
		}
	}

	if err := p.TypeMapping.encodeBody(&w, d, path); err != nil {
		return nil, err
	}

	steps := []func() error{
		func() error { return writeOpt(&w, attrIndex, p.Index, encodeBool) },
		func() error { return writeOpt(&w, attrNorms, p.Norms, encodeBool) },
		func() error { return writeOpt(&w, attrDocValues, p.DocValues, encodeBool) },
		func() error { return writeOpt(&w, attrStore, p.Store, encodeBool) },
		func() error {
			return writeOpt(&w, attrNullValue, p.NullValue, func(s Scalar) (json.RawMessage, error) { return s.Raw(), nil })
		},
		func() error { return writeOpt(&w, attrAnalyzer, p.Analyzer, encodeJSON[string]) },
		func() error { return writeOpt(&w, attrNormalizer, p.Normalizer, encodeJSON[string]) },
		func() error { return writeOpt(&w, attrFormat, p.Format, codec.EncodeFormats) },
		func() error {
			return writeOpt(&w, attrScalingFactor, p.ScalingFactor, func(f float64) (json.RawMessage, error) {
				if math.IsInf(f, 0) || math.IsNaN(f) {
					return nil, fmt.Errorf("scaling_factor %v is not a finite number", f)
				}
				return json.RawMessage(strconv.FormatFloat(f, 'g', -1, 64)), nil
			})
		},
		func() error {
			return writeOpt(&w, attrTermVector, p.TermVector, func(v TermVector) (json.RawMessage, error) {
				if !v.Recognized() {
					return encodeJSON(string(v))
				}
				tok, err := d.TermVectorToken(string(v))
				if err != nil {
					return nil, err
				}
				return encodeJSON(tok)
			})
		},
		func() error { return p.encodeProperties(&w, d, path) },
		func() error { return encodeNamed(&w, attrFields, p.fields, d, path) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, pathErr(path, err)
		}
	}

	p.encodeExtras(&w)
	return w.bytes(), nil
}

func encodeNamed(w *objectWriter, key string, props Properties, d codec.Dialect, path string) error {
	if !props.IsSet() {
		return nil
	}
	var inner objectWriter
	for _, name := range props.names {
		raw, err := props.items[name].encode(d, joinPath(path, name))
		if err != nil {
			return err
		}
		inner.raw(name, raw)
	}
	w.raw(key, inner.bytes())
	return nil
}

func writeOpt[T any](w *objectWriter, key string, o Opt[T], enc func(T) (json.RawMessage, error)) error {
	if !o.IsSet() {
		return nil
	}
	if o.IsNull() {
		w.raw(key, json.RawMessage("null"))
		return nil
	}
	v, _ := o.Get()
	raw, err := enc(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	w.raw(key, raw)
	return nil
}

func encodeBool(b bool) (json.RawMessage, error) {
	return json.RawMessage(strconv.FormatBool(b)), nil
}

func encodeJSON[T any](v T) (json.RawMessage, error) {
	return json.Marshal(v)
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

// pathErr prefixes err with the absolute property path, once.
func pathErr(path string, err error) error {
	if path == "" {
		return err
	}
	var pe *PathError
	if asPathError(err, &pe) {
		return err
	}
	return &PathError{Path: path, Err: err}
}
