package schema

import (
	"encoding/json"
	"fmt"
)

const (
	attrType          = "type"
	attrDynamic       = "dynamic"
	attrProperties    = "properties"
	attrIndex         = "index"
	attrNorms         = "norms"
	attrDocValues     = "doc_values"
	attrStore         = "store"
	attrNullValue     = "null_value"
	attrFields        = "fields"
	attrAnalyzer      = "analyzer"
	attrNormalizer    = "normalizer"
	attrFormat        = "format"
	attrScalingFactor = "scaling_factor"
	attrTermVector    = "term_vector"
)

var typeMappingAttrs = map[string]struct{}{
	attrDynamic:    {},
	attrProperties: {},
}

var propertyMappingAttrs = map[string]struct{}{
	attrType:          {},
	attrDynamic:       {},
	attrProperties:    {},
	attrIndex:         {},
	attrNorms:         {},
	attrDocValues:     {},
	attrStore:         {},
	attrNullValue:     {},
	attrFields:        {},
	attrAnalyzer:      {},
	attrNormalizer:    {},
	attrFormat:        {},
	attrScalingFactor: {},
	attrTermVector:    {},
}

// TypeMapping is the root of a mapping tree.
type TypeMapping struct {
	Dynamic Opt[Dynamic]

	properties Properties
	extras     Extras
}

func NewTypeMapping() *TypeMapping { return &TypeMapping{} }

// AddProperty attaches or replaces a named property.
func (m *TypeMapping) AddProperty(name string, p *PropertyMapping) *TypeMapping {
	m.properties.put(name, p)
	return m
}

// RemoveProperty detaches a property. Removing the last one makes the map absent again.
func (m *TypeMapping) RemoveProperty(name string) *TypeMapping {
	m.properties.remove(name)
	return m
}

// WithEmptyProperties marks the properties map present even if it has no entries.
func (m *TypeMapping) WithEmptyProperties() *TypeMapping {
	if !m.properties.IsSet() {
		m.properties = EmptyProperties()
	}
	return m
}

func (m *TypeMapping) Properties() Properties { return m.properties }

func (m *TypeMapping) Property(name string) (*PropertyMapping, bool) {
	return m.properties.Get(name)
}

func (m *TypeMapping) Extras() Extras { return m.extras }

// SetExtra stores an attribute this package does not model.
func (m *TypeMapping) SetExtra(name string, raw json.RawMessage) error {
	return setExtra(&m.extras, typeMappingAttrs, name, raw)
}

// PropertyMapping is a node below the root. Which attributes are meaningful depends on Type.
type PropertyMapping struct {
	TypeMapping

	// Type is required on leaves; a zero Type denotes an implicit object.
	Type DataType

	Index         Opt[bool]
	Norms         Opt[bool]
	DocValues     Opt[bool]
	Store         Opt[bool]
	NullValue     Opt[Scalar]
	Analyzer      Opt[string]
	Normalizer    Opt[string]
	Format        Opt[[]string]
	ScalingFactor Opt[float64]
	TermVector    Opt[TermVector]

	fields Properties
}

func NewProperty(t DataType) *PropertyMapping {
	return &PropertyMapping{Type: t}
}

// AddProperty is TypeMapping.AddProperty returning the property for chaining.
func (p *PropertyMapping) AddProperty(name string, child *PropertyMapping) *PropertyMapping {
	p.TypeMapping.AddProperty(name, child)
	return p
}

// AddField attaches an alternate representation of the same source value.
func (p *PropertyMapping) AddField(name string, f *PropertyMapping) *PropertyMapping {
	p.fields.put(name, f)
	return p
}

// RemoveField detaches a sub-field; removing the last one makes the map absent again.
func (p *PropertyMapping) RemoveField(name string) *PropertyMapping {
	p.fields.remove(name)
	return p
}

func (p *PropertyMapping) Fields() Properties { return p.fields }

func (p *PropertyMapping) Field(name string) (*PropertyMapping, bool) {
	return p.fields.Get(name)
}

// SetFormat sets the ordered date formats. The first one is the output format.
func (p *PropertyMapping) SetFormat(formats ...string) error {
	if len(formats) == 0 {
		return fmt.Errorf("format: at least one format required")
	}
	for i, f := range formats {
		if f == "" {
			return fmt.Errorf("format[%d]: empty", i)
		}
	}
	p.Format = Some(append([]string(nil), formats...))
	return nil
}

func (p *PropertyMapping) SetExtra(name string, raw json.RawMessage) error {
	return setExtra(&p.extras, propertyMappingAttrs, name, raw)
}

func setExtra(e *Extras, reserved map[string]struct{}, name string, raw json.RawMessage) error {
	if _, ok := reserved[name]; ok {
		return fmt.Errorf("%q: %w", name, ErrReservedAttribute)
	}
	return e.set(name, raw)
}

func (m *TypeMapping) RemoveExtra(name string) { m.extras.remove(name) }
