package translate

import (
	"fmt"

	"github.com/Rorical/indexschema/internal/schema"
)

// Kind is the semantic kind of a field, independent of any engine.
type Kind string

const (
	// KindString picks text when an analyzer is assigned and keyword otherwise.
	KindString        Kind = "string"
	KindText          Kind = "text"
	KindKeyword       Kind = "keyword"
	KindInteger       Kind = "integer"
	KindLong          Kind = "long"
	KindShort         Kind = "short"
	KindByte          Kind = "byte"
	KindFloat         Kind = "float"
	KindDouble        Kind = "double"
	KindHalfFloat     Kind = "half_float"
	KindScaledDecimal Kind = "scaled_decimal"
	KindBoolean       Kind = "boolean"
	KindDate          Kind = "date"
	KindGeoPoint      Kind = "geo_point"
	KindVector        Kind = "vector"
	KindFlattened     Kind = "flattened"
	KindObject        Kind = "object"
	KindNested        Kind = "nested"
)

var kindTypes = map[Kind]schema.DataType{
	KindText:          schema.Text,
	KindKeyword:       schema.Keyword,
	KindInteger:       schema.Integer,
	KindLong:          schema.Long,
	KindShort:         schema.Short,
	KindByte:          schema.Byte,
	KindFloat:         schema.Float,
	KindDouble:        schema.Double,
	KindHalfFloat:     schema.HalfFloat,
	KindScaledDecimal: schema.ScaledFloat,
	KindBoolean:       schema.Boolean,
	KindDate:          schema.Date,
	KindGeoPoint:      schema.GeoPoint,
	KindVector:        schema.Vector,
	KindFlattened:     schema.Flattened,
	KindObject:        schema.Object,
	KindNested:        schema.Nested,
}

// FieldDescriptor is what the application knows about one indexed field.
type FieldDescriptor struct {
	// Path is dotted for fields below an object, e.g. "author.name".
	Path string `yaml:"path" json:"path"`
	Kind Kind   `yaml:"kind" json:"kind"`

	Searchable    bool `yaml:"searchable" json:"searchable"`
	Sortable      bool `yaml:"sortable" json:"sortable"`
	Projectable   bool `yaml:"projectable" json:"projectable"`
	Aggregable    bool `yaml:"aggregable" json:"aggregable"`
	Highlightable bool `yaml:"highlightable" json:"highlightable"`
	Scoring       bool `yaml:"scoring" json:"scoring"`

	Analyzer       string   `yaml:"analyzer,omitempty" json:"analyzer,omitempty"`
	SearchAnalyzer string   `yaml:"search_analyzer,omitempty" json:"search_analyzer,omitempty"`
	Normalizer     string   `yaml:"normalizer,omitempty" json:"normalizer,omitempty"`
	DecimalScale   *int     `yaml:"decimal_scale,omitempty" json:"decimal_scale,omitempty"`
	Formats        []string `yaml:"formats,omitempty" json:"formats,omitempty"`
	NullValue      any      `yaml:"null_value,omitempty" json:"null_value,omitempty"`
	Dynamic        string   `yaml:"dynamic,omitempty" json:"dynamic,omitempty"`

	// Fields are alternate representations of the same value. Their Path is a bare name.
	Fields []FieldDescriptor `yaml:"fields,omitempty" json:"fields,omitempty"`
}

func (d FieldDescriptor) container() bool {
	return d.Kind == KindObject || d.Kind == KindNested
}

// dataType resolves the concrete type for the descriptor.
func (d FieldDescriptor) dataType() (schema.DataType, error) {
	if d.Kind == KindString {
		if d.Analyzer != "" {
			return schema.Text, nil
		}
		return schema.Keyword, nil
	}
	t, ok := kindTypes[d.Kind]
	if !ok {
		return schema.DataType{}, fmt.Errorf("unknown kind %q", d.Kind)
	}
	return t, nil
}
