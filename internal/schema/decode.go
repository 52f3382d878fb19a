package schema

import (
	"encoding/json"
	"fmt"

	"github.com/Rorical/indexschema/internal/codec"
)

// DecodeTypeMapping reads a mapping tree. Attributes it does not model are kept as extras.
func DecodeTypeMapping(raw json.RawMessage, d codec.Dialect) (*TypeMapping, error) {
	m := NewTypeMapping()
	err := eachMember(raw, func(key string, val json.RawMessage) error {
		handled, err := m.decodeCommon(key, val, d, "")
		if err != nil || handled {
			return err
		}
		return m.extras.set(key, val)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// DecodeProperty reads a single property mapping.
func DecodeProperty(raw json.RawMessage, d codec.Dialect) (*PropertyMapping, error) {
	return decodeProperty(raw, d, "")
}

func (m *TypeMapping) decodeCommon(key string, val json.RawMessage, d codec.Dialect, path string) (bool, error) {
	switch key {
	case attrDynamic:
		if isNull(val) {
			m.Dynamic = Null[Dynamic]()
			return true, nil
		}
		v, err := d.ParseDynamic(val)
		if err != nil {
			return true, pathErr(path, err)
		}
		m.Dynamic = Some(Dynamic(v))
		return true, nil
	case attrProperties:
		props, err := decodeNamed(val, d, path)
		if err != nil {
			return true, err
		}
		m.properties = props
		return true, nil
	}
	return false, nil
}

func decodeNamed(raw json.RawMessage, d codec.Dialect, path string) (Properties, error) {
	if isNull(raw) {
		return NoProperties(), nil
	}
	props := EmptyProperties()
	err := eachMember(raw, func(name string, val json.RawMessage) error {
		child, err := decodeProperty(val, d, joinPath(path, name))
		if err != nil {
			return err
		}
		props.put(name, child)
		return nil
	})
	if err != nil {
		return Properties{}, err
	}
	return props, nil
}

func decodeProperty(raw json.RawMessage, d codec.Dialect, path string) (*PropertyMapping, error) {
	p := &PropertyMapping{}
	err := eachMember(raw, func(key string, val json.RawMessage) error {
		handled, err := p.TypeMapping.decodeCommon(key, val, d, path)
		if err != nil || handled {
			return err
		}
		if err := p.decodeAttr(key, val, d, path); err != nil {
			return pathErr(path, fmt.Errorf("%s: %w", key, err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *PropertyMapping) decodeAttr(key string, val json.RawMessage, d codec.Dialect, path string) error {
	null := isNull(val)
	switch key {
	case attrType:
		tok, err := decodeString(val)
		if err != nil {
			return err
		}
		if logical, ok := d.ParseType(tok); ok {
			p.Type = dataTypes[logical]
		} else {
			p.Type = UnrecognizedType(tok)
		}
	case attrIndex:
		return decodeOptBool(&p.Index, val, null)
	case attrNorms:
		// Older engines report norms as {"enabled": bool}.
		if isObject(val) {
			var legacy struct {
				Enabled *bool `json:"enabled"`
			}
			if err := json.Unmarshal(val, &legacy); err != nil || legacy.Enabled == nil {
				return fmt.Errorf("unrecognized norms object %s", string(val))
			}
			p.Norms = Some(*legacy.Enabled)
			return nil
		}
		return decodeOptBool(&p.Norms, val, null)
	case attrDocValues:
		return decodeOptBool(&p.DocValues, val, null)
	case attrStore:
		return decodeOptBool(&p.Store, val, null)
	case attrNullValue:
		if null {
			p.NullValue = Null[Scalar]()
			return nil
		}
		s, err := ParseScalar(val)
		if err != nil {
			return err
		}
		p.NullValue = Some(s)
	case attrAnalyzer:
		return decodeOptString(&p.Analyzer, val, null)
	case attrNormalizer:
		return decodeOptString(&p.Normalizer, val, null)
	case attrFormat:
		formats, err := codec.DecodeFormats(val)
		if err != nil {
			return err
		}
		if formats == nil {
			p.Format = Null[[]string]()
		} else {
			p.Format = Some(formats)
		}
	case attrScalingFactor:
		if null {
			p.ScalingFactor = Null[float64]()
			return nil
		}
		f, err := decodeFloat(val)
		if err != nil {
			return err
		}
		p.ScalingFactor = Some(f)
	case attrTermVector:
		if null {
			p.TermVector = Null[TermVector]()
			return nil
		}
		tok, err := decodeString(val)
		if err != nil {
			return err
		}
		// Spellings from newer engines are kept as-is and compared literally.
		v, _ := d.ParseTermVector(tok)
		p.TermVector = Some(TermVector(v))
	case attrFields:
		fields, err := decodeNamed(val, d, path)
		if err != nil {
			return err
		}
		p.fields = fields
	default:
		return p.extras.set(key, val)
	}
	return nil
}

func decodeOptBool(dst *Opt[bool], val json.RawMessage, null bool) error {
	if null {
		*dst = Null[bool]()
		return nil
	}
	b, err := decodeBool(val)
	if err != nil {
		return err
	}
	*dst = Some(b)
	return nil
}

func decodeOptString(dst *Opt[string], val json.RawMessage, null bool) error {
	if null {
		*dst = Null[string]()
		return nil
	}
	s, err := decodeString(val)
	if err != nil {
		return err
	}
	*dst = Some(s)
	return nil
}
