// Package translate turns application field descriptors into the desired index schema.
package translate

import (
	"encoding/json"
	"errors"
	"math"
	"strings"

	"github.com/Rorical/indexschema/internal/codec"
	"github.com/Rorical/indexschema/internal/engine"
	"github.com/Rorical/indexschema/internal/schema"
)

// Analyzers and normalizers every engine line ships without any settings.
var (
	builtinAnalyzers = map[string]struct{}{
		"standard": {}, "simple": {}, "whitespace": {}, "stop": {}, "keyword": {},
		"pattern": {}, "fingerprint": {}, "english": {}, "german": {}, "french": {},
		"spanish": {}, "italian": {}, "portuguese": {}, "russian": {}, "cjk": {},
	}
	builtinNormalizers = map[string]struct{}{
		"lowercase": {},
	}
)

// Translate builds the desired index for one engine line. Descriptors are applied in order;
// the first inconsistent descriptor aborts the whole translation with a *TranslationError.
//
// When analysis is non-empty, every analyzer and normalizer a field names must either be
// declared there or be built into the engine.
func Translate(p *engine.Profile, descriptors []FieldDescriptor, analysis *schema.Analysis) (*schema.Index, error) {
	t := &translator{
		profile:  p,
		dialect:  codec.NewDialect(p),
		analysis: analysis,
		root:     schema.NewTypeMapping(),
		nodes:    map[string]*node{},
	}
	for _, d := range descriptors {
		if err := t.add(d); err != nil {
			return nil, err
		}
	}
	return &schema.Index{
		TypeName: p.TypeName,
		Mapping:  t.root,
		Analysis: analysis,
	}, nil
}

type node struct {
	prop     *schema.PropertyMapping
	leaf     bool
	explicit bool
}

type translator struct {
	profile  *engine.Profile
	dialect  codec.Dialect
	analysis *schema.Analysis
	root     *schema.TypeMapping
	nodes    map[string]*node
}

func (t *translator) add(d FieldDescriptor) error {
	segs := strings.Split(d.Path, ".")
	for _, s := range segs {
		if s == "" {
			return failf(d.Path, "invalid path")
		}
	}

	attach := func(name string, p *schema.PropertyMapping) { t.root.AddProperty(name, p) }
	for i := range segs[:len(segs)-1] {
		prefix := strings.Join(segs[:i+1], ".")
		n, ok := t.nodes[prefix]
		if ok && n.leaf {
			return failf(d.Path, "%q is a %s field and cannot hold properties", prefix, n.prop.Type)
		}
		if !ok {
			n = &node{prop: &schema.PropertyMapping{}}
			t.nodes[prefix] = n
			attach(segs[i], n.prop)
		}
		owner := n.prop
		attach = func(name string, p *schema.PropertyMapping) { owner.AddProperty(name, p) }
	}

	prop, err := t.property(d.Path, d, false)
	if err != nil {
		return err
	}

	if n, ok := t.nodes[d.Path]; ok {
		if n.explicit {
			return failf(d.Path, "duplicate field")
		}
		if !d.container() {
			return failf(d.Path, "already used as an object holding other fields")
		}
		// Promote the implicit object created for earlier children.
		n.prop.Type = prop.Type
		n.prop.Dynamic = prop.Dynamic
		n.explicit = true
		return nil
	}

	t.nodes[d.Path] = &node{prop: prop, leaf: !d.container(), explicit: true}
	attach(segs[len(segs)-1], prop)
	return nil
}

// property translates one descriptor without its position in the tree.
func (t *translator) property(path string, d FieldDescriptor, subField bool) (*schema.PropertyMapping, error) {
	typ, err := d.dataType()
	if err != nil {
		return nil, wrapf(path, err, "cannot choose a type")
	}
	if _, err := t.dialect.TypeToken(typ.String()); err != nil {
		return nil, wrapf(path, err, "type %s is not available on %s", typ, t.profile.Line)
	}

	p := schema.NewProperty(typ)

	if typ.Container() {
		if subField {
			return nil, failf(path, "a sub-field cannot be an %s", typ)
		}
		if d.Searchable || d.Sortable || d.Projectable || d.Aggregable || d.Highlightable || d.Scoring {
			return nil, failf(path, "%s fields have no capabilities of their own", typ)
		}
		if len(d.Fields) > 0 {
			return nil, failf(path, "%s fields cannot have sub-fields", typ)
		}
		if d.Dynamic != "" {
			dyn, err := parseDynamic(d.Dynamic)
			if err != nil {
				return nil, wrapf(path, err, "invalid dynamic policy")
			}
			p.Dynamic = schema.Some(dyn)
		}
		if err := checkNoHints(path, d, typ); err != nil {
			return nil, err
		}
		return p, nil
	}
	if d.Dynamic != "" {
		return nil, failf(path, "dynamic policy only applies to object and nested fields")
	}

	if err := t.analyzers(path, d, typ, p); err != nil {
		return nil, err
	}
	if err := t.capabilities(path, d, typ, p); err != nil {
		return nil, err
	}
	if err := t.values(path, d, typ, p); err != nil {
		return nil, err
	}

	for _, sub := range d.Fields {
		if subField {
			return nil, failf(path, "sub-fields cannot have sub-fields")
		}
		if sub.Path == "" || strings.Contains(sub.Path, ".") {
			return nil, failf(path, "sub-field name %q must be a single segment", sub.Path)
		}
		subPath := path + "." + sub.Path
		if _, dup := p.Field(sub.Path); dup {
			return nil, failf(subPath, "duplicate field")
		}
		f, err := t.property(subPath, sub, true)
		if err != nil {
			return nil, err
		}
		p.AddField(sub.Path, f)
	}
	return p, nil
}

func (t *translator) analyzers(path string, d FieldDescriptor, typ schema.DataType, p *schema.PropertyMapping) error {
	if d.Analyzer != "" || d.SearchAnalyzer != "" {
		if !typ.Analyzed() {
			return failf(path, "analyzer requires an analyzed text field, got %s", typ)
		}
	}
	if d.Normalizer != "" && typ != schema.Keyword {
		return failf(path, "normalizer requires a keyword field, got %s", typ)
	}

	if d.Analyzer != "" {
		if err := t.declared(path, schema.KindAnalyzer, d.Analyzer); err != nil {
			return err
		}
		p.Analyzer = schema.Some(d.Analyzer)
	}
	if d.SearchAnalyzer != "" {
		if err := t.declared(path, schema.KindAnalyzer, d.SearchAnalyzer); err != nil {
			return err
		}
		raw, _ := json.Marshal(d.SearchAnalyzer)
		if err := p.SetExtra("search_analyzer", raw); err != nil {
			return wrapf(path, err, "search analyzer")
		}
	}
	if d.Normalizer != "" {
		if err := t.declared(path, schema.KindNormalizer, d.Normalizer); err != nil {
			return err
		}
		p.Normalizer = schema.Some(d.Normalizer)
	}
	return nil
}

func (t *translator) declared(path string, kind schema.ComponentKind, name string) error {
	if t.analysis.Empty() {
		return nil
	}
	if _, ok := t.analysis.Set(kind).Get(name); ok {
		return nil
	}
	builtin := builtinAnalyzers
	if kind == schema.KindNormalizer {
		builtin = builtinNormalizers
	}
	if _, ok := builtin[name]; ok {
		return nil
	}
	return failf(path, "%s %q is not declared in the analysis settings", kind.WireKey(), name)
}

// capabilities derives index, norms, doc_values, store and term_vector. Only values that
// differ from the engine line's defaults are written.
func (t *translator) capabilities(path string, d FieldDescriptor, typ schema.DataType, p *schema.PropertyMapping) error {
	if d.Searchable != t.profile.IndexDefault {
		p.Index = schema.Some(d.Searchable)
	}

	if d.Scoring && !typ.SupportsNorms() {
		return failf(path, "scoring requires a text or keyword field, got %s", typ)
	}
	if typ.SupportsNorms() && d.Scoring != t.profile.NormsDefault(typ.Analyzed()) {
		p.Norms = schema.Some(d.Scoring)
	}

	columnar := d.Sortable || d.Aggregable
	if columnar && typ.Analyzed() {
		return failf(path, "analyzed text cannot be sorted or aggregated; add a keyword sub-field")
	}
	if columnar && !typ.SupportsDocValues() {
		return failf(path, "%s fields cannot be sorted or aggregated", typ)
	}
	if typ.SupportsDocValues() && columnar != t.profile.DocValuesDefault {
		p.DocValues = schema.Some(columnar)
	}

	if d.Projectable {
		p.Store = schema.Some(true)
	}

	if d.Highlightable {
		if !typ.Analyzed() {
			return failf(path, "only analyzed text can be highlighted, got %s", typ)
		}
		if t.profile.HighlightTermVector != "" {
			p.TermVector = schema.Some(schema.TermVector(t.profile.HighlightTermVector))
		}
	}
	return nil
}

// maxDecimalScale keeps 10^scale an exact, finite float64 that fits a long after scaling.
const maxDecimalScale = 18

func (t *translator) values(path string, d FieldDescriptor, typ schema.DataType, p *schema.PropertyMapping) error {
	switch {
	case typ == schema.ScaledFloat:
		if d.DecimalScale == nil {
			return failf(path, "scaled_decimal requires a decimal scale")
		}
		scale := *d.DecimalScale
		if scale < 0 || scale > maxDecimalScale {
			return failf(path, "decimal scale %d out of range 0..%d", scale, maxDecimalScale)
		}
		p.ScalingFactor = schema.Some(math.Pow10(scale))
	case d.DecimalScale != nil:
		return failf(path, "decimal scale only applies to scaled_decimal fields")
	}

	if len(d.Formats) > 0 {
		if typ != schema.Date {
			return failf(path, "formats only apply to date fields, got %s", typ)
		}
		for _, f := range d.Formats {
			if strings.Contains(f, codec.FormatSeparator) {
				return wrapf(path, codec.ErrSeparatorInFormat, "format %q", f)
			}
		}
		if err := p.SetFormat(d.Formats...); err != nil {
			return wrapf(path, err, "invalid formats")
		}
	}

	if d.NullValue != nil {
		if typ.Analyzed() || typ == schema.Vector || typ == schema.Flattened {
			return failf(path, "%s fields cannot have a null value", typ)
		}
		raw, err := json.Marshal(d.NullValue)
		if err != nil {
			return wrapf(path, err, "null value")
		}
		s, err := schema.ParseScalar(raw)
		if err != nil {
			return wrapf(path, err, "null value")
		}
		p.NullValue = schema.Some(s)
	}
	return nil
}

func checkNoHints(path string, d FieldDescriptor, typ schema.DataType) error {
	if d.Analyzer != "" || d.SearchAnalyzer != "" || d.Normalizer != "" {
		return failf(path, "%s fields cannot be analyzed or normalized", typ)
	}
	if d.DecimalScale != nil || len(d.Formats) > 0 || d.NullValue != nil {
		return failf(path, "%s fields cannot carry value options", typ)
	}
	return nil
}

var errUnknownDynamic = errors.New("expected true, false or strict")

func parseDynamic(s string) (schema.Dynamic, error) {
	switch v := schema.Dynamic(s); v {
	case schema.DynamicTrue, schema.DynamicFalse, schema.DynamicStrict:
		return v, nil
	}
	return "", errUnknownDynamic
}
