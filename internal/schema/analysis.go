package schema

import (
	"encoding/json"
	"fmt"
	"slices"
)

type ComponentKind int

const (
	KindAnalyzer ComponentKind = iota + 1
	KindNormalizer
	KindTokenizer
	KindCharFilter
	KindTokenFilter
)

// ComponentKinds lists kinds in the order the validator visits them.
var ComponentKinds = []ComponentKind{KindAnalyzer, KindNormalizer, KindTokenizer, KindCharFilter, KindTokenFilter}

// WireKey is the key under settings.analysis.
func (k ComponentKind) WireKey() string {
	switch k {
	case KindAnalyzer:
		return "analyzer"
	case KindNormalizer:
		return "normalizer"
	case KindTokenizer:
		return "tokenizer"
	case KindCharFilter:
		return "char_filter"
	case KindTokenFilter:
		return "filter"
	default:
		return ""
	}
}

// composite kinds reference other components by name.
func (k ComponentKind) composite() bool { return k == KindAnalyzer || k == KindNormalizer }

const (
	paramType        = "type"
	paramTokenizer   = "tokenizer"
	paramCharFilter  = "char_filter"
	paramTokenFilter = "filter"
)

// Component is a named analysis definition. Analyzers and normalizers reference a
// tokenizer and filter chains; every kind may carry type-specific parameters.
type Component struct {
	Type        string
	Tokenizer   string
	CharFilters []string
	Filters     []string

	params Extras
}

// SetParam stores a type-specific parameter verbatim.
func (c *Component) SetParam(name string, raw json.RawMessage) error {
	switch name {
	case paramType, paramTokenizer, paramCharFilter, paramTokenFilter:
		return fmt.Errorf("%q: %w", name, ErrReservedAttribute)
	}
	return c.params.set(name, raw)
}

func (c *Component) Param(name string) (json.RawMessage, bool) { return c.params.Get(name) }

// ParamNames returns parameter names in insertion order.
func (c *Component) ParamNames() []string { return c.params.Names() }

// ComponentSet is a name-sorted set of components of one kind.
type ComponentSet struct {
	names []string
	items map[string]*Component
}

func (s *ComponentSet) Put(name string, c *Component) {
	if s.items == nil {
		s.items = map[string]*Component{}
	}
	if _, ok := s.items[name]; !ok {
		i, _ := slices.BinarySearch(s.names, name)
		s.names = slices.Insert(s.names, i, name)
	}
	s.items[name] = c
}

func (s ComponentSet) Get(name string) (*Component, bool) {
	c, ok := s.items[name]
	return c, ok
}

func (s ComponentSet) Names() []string { return slices.Clone(s.names) }

func (s ComponentSet) Len() int { return len(s.names) }

type Analysis struct {
	Analyzers    ComponentSet
	Normalizers  ComponentSet
	Tokenizers   ComponentSet
	CharFilters  ComponentSet
	TokenFilters ComponentSet
}

func (a *Analysis) Set(k ComponentKind) *ComponentSet {
	switch k {
	case KindAnalyzer:
		return &a.Analyzers
	case KindNormalizer:
		return &a.Normalizers
	case KindTokenizer:
		return &a.Tokenizers
	case KindCharFilter:
		return &a.CharFilters
	case KindTokenFilter:
		return &a.TokenFilters
	default:
		panic(fmt.Sprintf("schema: unknown component kind %d", int(k)))
	}
}

func (a *Analysis) Empty() bool {
	if a == nil {
		return true
	}
	for _, k := range ComponentKinds {
		if a.Set(k).Len() > 0 {
			return false
		}
	}
	return true
}

// Encode writes the settings.analysis object; kinds without components are omitted.
func (a *Analysis) Encode() (json.RawMessage, error) {
	var w objectWriter
	if a == nil {
		return w.bytes(), nil
	}
	for _, k := range ComponentKinds {
		set := a.Set(k)
		if set.Len() == 0 {
			continue
		}
		var inner objectWriter
		for _, name := range set.names {
			raw, err := set.items[name].encode(k)
			if err != nil {
				return nil, fmt.Errorf("%s %q: %w", k.WireKey(), name, err)
			}
			inner.raw(name, raw)
		}
		w.raw(k.WireKey(), inner.bytes())
	}
	return w.bytes(), nil
}

func (c *Component) encode(k ComponentKind) (json.RawMessage, error) {
	var w objectWriter
	if c.Type != "" {
		if err := w.value(paramType, c.Type); err != nil {
			return nil, err
		}
	}
	if k.composite() {
		if c.Tokenizer != "" {
			if err := w.value(paramTokenizer, c.Tokenizer); err != nil {
				return nil, err
			}
		}
		if c.CharFilters != nil {
			if err := w.value(paramCharFilter, c.CharFilters); err != nil {
				return nil, err
			}
		}
		if c.Filters != nil {
			if err := w.value(paramTokenFilter, c.Filters); err != nil {
				return nil, err
			}
		}
	}
	for _, name := range c.params.keys {
		w.raw(name, c.params.vals[name])
	}
	return w.bytes(), nil
}

// DecodeAnalysis reads a settings.analysis object. Unknown kinds are ignored.
func DecodeAnalysis(raw json.RawMessage) (*Analysis, error) {
	a := &Analysis{}
	if len(raw) == 0 || isNull(raw) {
		return a, nil
	}
	err := eachMember(raw, func(key string, val json.RawMessage) error {
		var kind ComponentKind
		for _, k := range ComponentKinds {
			if k.WireKey() == key {
				kind = k
			}
		}
		if kind == 0 {
			return nil
		}
		set := a.Set(kind)
		return eachMember(val, func(name string, def json.RawMessage) error {
			c, err := decodeComponent(kind, def)
			if err != nil {
				return fmt.Errorf("%s %q: %w", key, name, err)
			}
			set.Put(name, c)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func decodeComponent(k ComponentKind, raw json.RawMessage) (*Component, error) {
	c := &Component{}
	err := eachMember(raw, func(key string, val json.RawMessage) error {
		switch {
		case key == paramType:
			s, err := decodeString(val)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			c.Type = s
		case k.composite() && key == paramTokenizer:
			s, err := decodeString(val)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			c.Tokenizer = s
		case k.composite() && key == paramCharFilter:
			v, err := decodeStrings(val)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			c.CharFilters = v
		case k.composite() && key == paramTokenFilter:
			v, err := decodeStrings(val)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			c.Filters = v
		default:
			return c.params.set(key, val)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}
