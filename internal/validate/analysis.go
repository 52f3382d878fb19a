package validate

import (
	"bytes"
	"encoding/json"
	"math/big"
	"regexp"
	"slices"

	"github.com/Rorical/indexschema/internal/report"
	"github.com/Rorical/indexschema/internal/schema"
)

type componentKind struct {
	kind  schema.ComponentKind
	label string
	push  func(report.Context, string) report.Context
}

var componentKinds = []componentKind{
	{schema.KindAnalyzer, "analyzer", report.Context.Analyzer},
	{schema.KindNormalizer, "normalizer", report.Context.Normalizer},
	{schema.KindTokenizer, "tokenizer", report.Context.Tokenizer},
	{schema.KindCharFilter, "char filter", report.Context.CharFilter},
	{schema.KindTokenFilter, "token filter", report.Context.TokenFilter},
}

// defaultComponentType is assumed for analyzers and normalizers declared without a type.
const defaultComponentType = "custom"

func (w *walker) analysis(ctx report.Context, exp, act *schema.Analysis) {
	if exp.Empty() {
		return
	}
	if act == nil {
		act = &schema.Analysis{}
	}
	for _, k := range componentKinds {
		want, got := exp.Set(k.kind), act.Set(k.kind)
		for _, name := range want.Names() {
			c := k.push(ctx, name)
			ec, _ := want.Get(name)
			ac, ok := got.Get(name)
			if !ok {
				w.c.Addf(c, "missing %s definition", k.label)
				continue
			}
			w.component(c, k.kind, ec, ac)
		}
	}
}

func (w *walker) component(ctx report.Context, kind schema.ComponentKind, exp, act *schema.Component) {
	eq := w.profile.Equivalences

	wantType, gotType := exp.Type, act.Type
	if kind == schema.KindAnalyzer || kind == schema.KindNormalizer {
		if wantType == "" {
			wantType = defaultComponentType
		}
		if gotType == "" {
			gotType = defaultComponentType
		}
	}
	if wantType != "" && !eq.Equivalent("type", wantType, gotType) {
		w.c.Addf(ctx, "invalid type: expected '%s', actual '%s'", wantType, gotType)
	}

	if exp.Tokenizer != "" && !eq.Equivalent("tokenizer", exp.Tokenizer, act.Tokenizer) {
		w.c.Addf(ctx, "invalid tokenizer: expected '%s', actual '%s'", exp.Tokenizer, act.Tokenizer)
	}
	if exp.CharFilters != nil && !slices.Equal(exp.CharFilters, act.CharFilters) {
		w.c.Addf(ctx, "invalid char filters: expected %s, actual %s", showList(exp.CharFilters), showList(act.CharFilters))
	}
	if exp.Filters != nil && !slices.Equal(exp.Filters, act.Filters) {
		w.c.Addf(ctx, "invalid token filters: expected %s, actual %s", showList(exp.Filters), showList(act.Filters))
	}

	for _, name := range exp.ParamNames() {
		want, _ := exp.Param(name)
		got, ok := act.Param(name)
		if !ok {
			w.c.Addf(ctx, "missing value for parameter '%s': expected %s", name, compact(want))
			continue
		}
		if !w.paramEqual(name, want, got) {
			w.c.Addf(ctx, "invalid value for parameter '%s': expected %s, actual %s", name, compact(want), compact(got))
		}
	}
}

// paramEqual compares analysis parameters the way engines echo them back: settings are
// returned as strings, and single values may come back as one-element lists.
func (w *walker) paramEqual(name string, a, b json.RawMessage) bool {
	var va, vb any
	if decode(a, &va) != nil || decode(b, &vb) != nil {
		return bytes.Equal(a, b)
	}
	return w.valueEqual(name, va, vb)
}

func (w *walker) valueEqual(name string, a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case []any:
		if y, ok := b.([]any); ok {
			if len(x) != len(y) {
				return false
			}
			for i := range x {
				if !w.valueEqual(name, x[i], y[i]) {
					return false
				}
			}
			return true
		}
		if len(x) == 1 {
			return w.valueEqual(name, x[0], b)
		}
		return false
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, v := range x {
			if !w.valueEqual(k, v, y[k]) {
				return false
			}
		}
		return true
	}
	if y, ok := b.([]any); ok && len(y) == 1 {
		return w.valueEqual(name, a, y[0])
	}

	sa, oka := scalarText(a)
	sb, okb := scalarText(b)
	if !oka || !okb {
		return false
	}
	if decimalLiteral.MatchString(sa) && decimalLiteral.MatchString(sb) {
		ra, oka := new(big.Rat).SetString(sa)
		rb, okb := new(big.Rat).SetString(sb)
		if oka && okb {
			return ra.Cmp(rb) == 0
		}
	}
	return w.profile.Equivalences.Equivalent(name, sa, sb)
}

// decimalLiteral matches JSON number syntax, so fractions like "1/2" and hex stay strings.
var decimalLiteral = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

func scalarText(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case bool:
		if x {
			return "true", true
		}
		return "false", true
	}
	return "", false
}

func decode(raw json.RawMessage, v *any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

func compact(raw json.RawMessage) string {
	var b bytes.Buffer
	if err := json.Compact(&b, raw); err != nil {
		return string(raw)
	}
	return b.String()
}
