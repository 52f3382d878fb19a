package schema

import (
	"fmt"

	"github.com/Rorical/indexschema/internal/codec"
)

// DataType is a closed set of logical property types. A type read from the engine that
// this package does not model is kept as an unrecognized DataType carrying its raw token.
type DataType struct {
	name         string
	unrecognized bool
}

var (
	Text        = DataType{name: codec.TypeText}
	Keyword     = DataType{name: codec.TypeKeyword}
	Integer     = DataType{name: codec.TypeInteger}
	Long        = DataType{name: codec.TypeLong}
	Short       = DataType{name: codec.TypeShort}
	Byte        = DataType{name: codec.TypeByte}
	Float       = DataType{name: codec.TypeFloat}
	HalfFloat   = DataType{name: codec.TypeHalfFloat}
	Double      = DataType{name: codec.TypeDouble}
	ScaledFloat = DataType{name: codec.TypeScaledFloat}
	Boolean     = DataType{name: codec.TypeBoolean}
	Date        = DataType{name: codec.TypeDate}
	GeoPoint    = DataType{name: codec.TypeGeoPoint}
	Object      = DataType{name: codec.TypeObject}
	Nested      = DataType{name: codec.TypeNested}
	Vector      = DataType{name: codec.TypeVector}
	Flattened   = DataType{name: codec.TypeFlattened}
)

var dataTypes = map[string]DataType{}

func init() {
	for _, t := range []DataType{
		Text, Keyword, Integer, Long, Short, Byte, Float, HalfFloat, Double,
		ScaledFloat, Boolean, Date, GeoPoint, Object, Nested, Vector, Flattened,
	} {
		dataTypes[t.name] = t
	}
}

// ParseDataType resolves a logical type name such as "keyword" or "vector".
func ParseDataType(name string) (DataType, error) {
	t, ok := dataTypes[name]
	if !ok {
		return DataType{}, fmt.Errorf("unknown data type %q", name)
	}
	return t, nil
}

func UnrecognizedType(token string) DataType {
	return DataType{name: token, unrecognized: true}
}

func (t DataType) String() string { return t.name }

func (t DataType) IsZero() bool { return t.name == "" }

func (t DataType) Recognized() bool { return t.name != "" && !t.unrecognized }

// Analyzed reports whether values are tokenized by an analyzer before indexing.
func (t DataType) Analyzed() bool { return t == Text }

// Container reports whether the type holds sub-properties rather than values.
func (t DataType) Container() bool { return t == Object || t == Nested }

func (t DataType) Numeric() bool {
	switch t {
	case Integer, Long, Short, Byte, Float, HalfFloat, Double, ScaledFloat:
		return true
	}
	return false
}

// SupportsDocValues reports whether the engine can build columnar values for the type.
func (t DataType) SupportsDocValues() bool {
	switch t {
	case Text, Object, Nested, Vector:
		return false
	}
	return t.Recognized()
}

// SupportsNorms reports whether the type carries scoring norms.
func (t DataType) SupportsNorms() bool { return t == Text || t == Keyword }

type TermVector string

const (
	TermVectorNo                           TermVector = "no"
	TermVectorYes                          TermVector = "yes"
	TermVectorWithPositions                TermVector = "with_positions"
	TermVectorWithOffsets                  TermVector = "with_offsets"
	TermVectorWithPositionsOffsets         TermVector = "with_positions_offsets"
	TermVectorWithPositionsPayloads        TermVector = "with_positions_payloads"
	TermVectorWithPositionsOffsetsPayloads TermVector = "with_positions_offsets_payloads"
)

var knownTermVectors = map[TermVector]struct{}{
	TermVectorNo:                           {},
	TermVectorYes:                          {},
	TermVectorWithPositions:                {},
	TermVectorWithOffsets:                  {},
	TermVectorWithPositionsOffsets:         {},
	TermVectorWithPositionsPayloads:        {},
	TermVectorWithPositionsOffsetsPayloads: {},
}

// Recognized is false for spellings read from an engine newer than this tool.
func (v TermVector) Recognized() bool {
	_, ok := knownTermVectors[v]
	return ok
}

type Dynamic string

const (
	DynamicTrue   Dynamic = "true"
	DynamicFalse  Dynamic = "false"
	DynamicStrict Dynamic = "strict"
)
