package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Rorical/indexschema/internal/engine"
)

// ErrNoWireToken means an enumeration variant cannot be spelled for the active engine.
// It is a configuration error and is raised at translation time.
var ErrNoWireToken = errors.New("no wire token for engine")

// Logical data type names. Wire spellings are resolved per dialect.
const (
	TypeText        = "text"
	TypeKeyword     = "keyword"
	TypeInteger     = "integer"
	TypeLong        = "long"
	TypeShort       = "short"
	TypeByte        = "byte"
	TypeFloat       = "float"
	TypeHalfFloat   = "half_float"
	TypeDouble      = "double"
	TypeScaledFloat = "scaled_float"
	TypeBoolean     = "boolean"
	TypeDate        = "date"
	TypeGeoPoint    = "geo_point"
	TypeObject      = "object"
	TypeNested      = "nested"
	TypeVector      = "vector"
	TypeFlattened   = "flattened"
)

var commonTypeTokens = map[string]string{
	TypeText:        "text",
	TypeKeyword:     "keyword",
	TypeInteger:     "integer",
	TypeLong:        "long",
	TypeShort:       "short",
	TypeByte:        "byte",
	TypeFloat:       "float",
	TypeHalfFloat:   "half_float",
	TypeDouble:      "double",
	TypeScaledFloat: "scaled_float",
	TypeBoolean:     "boolean",
	TypeDate:        "date",
	TypeGeoPoint:    "geo_point",
	TypeObject:      "object",
	TypeNested:      "nested",
}

var familyTypeTokens = map[engine.Family]map[string]string{
	engine.FamilyElastic: {
		TypeVector:    "dense_vector",
		TypeFlattened: "flattened",
	},
	engine.FamilyOpenSearch: {
		TypeVector:    "knn_vector",
		TypeFlattened: "flat_object",
	},
}

var termVectorTokens = map[string]struct{}{
	"no":                              {},
	"yes":                             {},
	"with_positions":                  {},
	"with_offsets":                    {},
	"with_positions_offsets":          {},
	"with_positions_payloads":         {},
	"with_positions_offsets_payloads": {},
}

// Dialect spells enumerations for one engine line.
type Dialect struct {
	profile *engine.Profile
	tokens  map[string]string
	parse   map[string]string
}

func NewDialect(p *engine.Profile) Dialect {
	d := Dialect{
		profile: p,
		tokens:  make(map[string]string, len(commonTypeTokens)+2),
		parse:   make(map[string]string, len(commonTypeTokens)+2),
	}
	for logical, tok := range commonTypeTokens {
		d.tokens[logical] = tok
	}
	for logical, tok := range familyTypeTokens[p.Family] {
		if logical == TypeVector && !p.VectorType {
			continue
		}
		if logical == TypeFlattened && !p.FlattenedType {
			continue
		}
		d.tokens[logical] = tok
	}
	for logical, tok := range d.tokens {
		d.parse[tok] = logical
	}
	return d
}

func (d Dialect) Profile() *engine.Profile { return d.profile }

// TypeToken returns the wire spelling of a logical data type.
func (d Dialect) TypeToken(logical string) (string, error) {
	tok, ok := d.tokens[logical]
	if !ok {
		return "", fmt.Errorf("data type %q on %s: %w", logical, d.profile.Line, ErrNoWireToken)
	}
	return tok, nil
}

// ParseType maps a wire token back to its logical name. Unknown tokens report false.
func (d Dialect) ParseType(token string) (string, bool) {
	logical, ok := d.parse[token]
	return logical, ok
}

func (d Dialect) TermVectorToken(v string) (string, error) {
	if _, ok := termVectorTokens[v]; !ok {
		return "", fmt.Errorf("term_vector %q on %s: %w", v, d.profile.Line, ErrNoWireToken)
	}
	return v, nil
}

func (d Dialect) ParseTermVector(token string) (string, bool) {
	_, ok := termVectorTokens[token]
	return token, ok
}

// ParseDynamic accepts both JSON booleans and the strings "true", "false" and "strict".
func (d Dialect) ParseDynamic(raw json.RawMessage) (string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("dynamic: %w", err)
	}
	switch x := v.(type) {
	case bool:
		return strconv.FormatBool(x), nil
	case string:
		if s := strings.ToLower(strings.TrimSpace(x)); s != "" {
			return s, nil
		}
	}
	return "", fmt.Errorf("dynamic: unrecognized value %s", string(raw))
}

// DynamicToken spells true/false as JSON booleans and every other policy as a string,
// so policies added by newer engines survive a read-modify-write cycle.
func (d Dialect) DynamicToken(v string) (json.RawMessage, error) {
	switch v {
	case "":
		return nil, fmt.Errorf("dynamic: empty policy on %s: %w", d.profile.Line, ErrNoWireToken)
	case "true", "false":
		return json.RawMessage(v), nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("dynamic: %w", err)
		}
		return b, nil
	}
}
