package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
)

type ScalarKind uint8

const (
	ScalarString ScalarKind = iota + 1
	ScalarNumber
	ScalarBool
)

// Scalar keeps a raw JSON scalar and interprets it lazily, so integer literals are
// never widened to float64 on the way through.
type Scalar struct {
	raw  json.RawMessage
	kind ScalarKind
}

func ParseScalar(raw json.RawMessage) (Scalar, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Scalar{}, fmt.Errorf("scalar: empty value")
	}
	var kind ScalarKind
	switch c := raw[0]; {
	case c == '"':
		kind = ScalarString
	case c == 't' || c == 'f':
		kind = ScalarBool
	case c == '-' || (c >= '0' && c <= '9'):
		kind = ScalarNumber
	default:
		return Scalar{}, fmt.Errorf("scalar: not a scalar: %s", string(raw))
	}
	if !json.Valid(raw) {
		return Scalar{}, fmt.Errorf("scalar: invalid json: %s", string(raw))
	}
	return Scalar{raw: append(json.RawMessage(nil), raw...), kind: kind}, nil
}

func StringScalar(s string) Scalar {
	b, _ := json.Marshal(s)
	return Scalar{raw: b, kind: ScalarString}
}

func IntScalar(i int64) Scalar {
	return Scalar{raw: json.RawMessage(strconv.FormatInt(i, 10)), kind: ScalarNumber}
}

func BoolScalar(v bool) Scalar {
	return Scalar{raw: json.RawMessage(strconv.FormatBool(v)), kind: ScalarBool}
}

func (s Scalar) Kind() ScalarKind { return s.kind }

func (s Scalar) Raw() json.RawMessage { return s.raw }

func (s Scalar) String() string {
	if s.kind == ScalarString {
		var out string
		if err := json.Unmarshal(s.raw, &out); err == nil {
			return out
		}
	}
	return string(s.raw)
}

func (s Scalar) Int64() (int64, error) {
	if s.kind != ScalarNumber {
		return 0, fmt.Errorf("scalar: %s is not a number", string(s.raw))
	}
	return strconv.ParseInt(string(s.raw), 10, 64)
}

func (s Scalar) rat() (*big.Rat, bool) {
	if s.kind != ScalarNumber {
		return nil, false
	}
	return new(big.Rat).SetString(string(s.raw))
}

// Equal compares numbers exactly, strings and booleans by value. Kinds never coerce.
func (s Scalar) Equal(o Scalar) bool {
	if s.kind != o.kind {
		return false
	}
	switch s.kind {
	case ScalarNumber:
		a, ok1 := s.rat()
		b, ok2 := o.rat()
		if ok1 && ok2 {
			return a.Cmp(b) == 0
		}
		return bytes.Equal(s.raw, o.raw)
	case ScalarString:
		return s.String() == o.String()
	default:
		return bytes.Equal(s.raw, o.raw)
	}
}
