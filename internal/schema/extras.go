package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// ErrReservedAttribute is returned when an extra attribute would shadow a typed one.
var ErrReservedAttribute = errors.New("attribute is modelled and cannot be stored as extra")

// Extras holds attributes this package does not interpret, in the order they were added.
// Values are kept as raw bytes and written back verbatim.
type Extras struct {
	keys []string
	vals map[string]json.RawMessage
}

func (e Extras) Len() int { return len(e.keys) }

func (e Extras) Names() []string { return slices.Clone(e.keys) }

func (e Extras) Get(name string) (json.RawMessage, bool) {
	v, ok := e.vals[name]
	return v, ok
}

func (e *Extras) set(name string, raw json.RawMessage) error {
	if name == "" {
		return fmt.Errorf("extra attribute: empty name")
	}
	if !json.Valid(raw) {
		return fmt.Errorf("extra attribute %q: invalid json", name)
	}
	if e.vals == nil {
		e.vals = map[string]json.RawMessage{}
	}
	if _, ok := e.vals[name]; !ok {
		e.keys = append(e.keys, name)
	}
	e.vals[name] = bytes.Clone(raw)
	return nil
}

func (e *Extras) remove(name string) {
	if _, ok := e.vals[name]; !ok {
		return
	}
	delete(e.vals, name)
	e.keys = slices.DeleteFunc(e.keys, func(k string) bool { return k == name })
}
