package report

import (
	"slices"
	"strings"
)

type ElementKind int

const (
	KindIndex ElementKind = iota + 1
	KindMapping
	KindProperty
	KindField
	KindAnalyzer
	KindNormalizer
	KindCharFilter
	KindTokenizer
	KindTokenFilter
)

func (k ElementKind) String() string {
	switch k {
	case KindIndex:
		return "index"
	case KindMapping:
		return "mapping"
	case KindProperty:
		return "property"
	case KindField:
		return "field"
	case KindAnalyzer:
		return "analyzer"
	case KindNormalizer:
		return "normalizer"
	case KindCharFilter:
		return "char_filter"
	case KindTokenizer:
		return "tokenizer"
	case KindTokenFilter:
		return "token_filter"
	default:
		return "unknown"
	}
}

type Element struct {
	Kind ElementKind
	Name string
}

func (e Element) String() string {
	return e.Kind.String() + " '" + e.Name + "'"
}

// Context is an immutable breadcrumb path. Push returns a new Context and never
// modifies the receiver, so a Context can be shared freely between goroutines.
type Context struct {
	elems []Element
}

// Root is the empty context.
var Root = Context{}

func (c Context) Push(kind ElementKind, name string) Context {
	elems := make([]Element, len(c.elems), len(c.elems)+1)
	copy(elems, c.elems)
	return Context{elems: append(elems, Element{Kind: kind, Name: name})}
}

func (c Context) Index(name string) Context       { return c.Push(KindIndex, name) }
func (c Context) Mapping(name string) Context     { return c.Push(KindMapping, name) }
func (c Context) Property(name string) Context    { return c.Push(KindProperty, name) }
func (c Context) Field(name string) Context       { return c.Push(KindField, name) }
func (c Context) Analyzer(name string) Context    { return c.Push(KindAnalyzer, name) }
func (c Context) Normalizer(name string) Context  { return c.Push(KindNormalizer, name) }
func (c Context) CharFilter(name string) Context  { return c.Push(KindCharFilter, name) }
func (c Context) Tokenizer(name string) Context   { return c.Push(KindTokenizer, name) }
func (c Context) TokenFilter(name string) Context { return c.Push(KindTokenFilter, name) }

func (c Context) Elements() []Element { return slices.Clone(c.elems) }

func (c Context) Len() int { return len(c.elems) }

// Equal is structural: same sequence of kinds and names.
func (c Context) Equal(o Context) bool { return slices.Equal(c.elems, o.elems) }

// String renders the breadcrumb, e.g. index 'products'.mapping 'doc'.property 'price'.
func (c Context) String() string {
	parts := make([]string, len(c.elems))
	for i, e := range c.elems {
		parts[i] = e.String()
	}
	return strings.Join(parts, ".")
}

// Key is a comparable form of the context, usable as a map key.
func (c Context) Key() string {
	var b strings.Builder
	for _, e := range c.elems {
		b.WriteString(e.Kind.String())
		b.WriteByte(0)
		b.WriteString(e.Name)
		b.WriteByte(0)
	}
	return b.String()
}
