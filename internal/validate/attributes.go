package validate

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/Rorical/indexschema/internal/report"
	"github.com/Rorical/indexschema/internal/schema"
)

// attr describes how one optional attribute is compared.
type attr[T any] struct {
	name string
	eq   func(a, b T) bool
	show func(T) string

	// def is what the engine applies when the attribute is absent; hasDef is false for
	// attributes without an engine default.
	def    T
	hasDef bool
}

// check compares one attribute. An unset expected value means no opinion. An expected
// value equal to the engine default is already satisfied. An explicit null requires the
// live value to resolve to the default.
func check[T any](w *walker, ctx report.Context, a attr[T], exp, act schema.Opt[T]) {
	if !exp.IsSet() {
		return
	}
	want, isValue := exp.Get()
	switch {
	case !isValue && !a.hasDef:
		if got, ok := act.Get(); ok {
			w.c.Addf(ctx, "invalid value for attribute '%s': expected none, actual '%s'", a.name, a.show(got))
		}
		return
	case !isValue:
		want = a.def
	case a.hasDef && a.eq(want, a.def):
		return
	}

	got, ok := act.Get()
	if !ok {
		if !a.hasDef {
			w.c.Addf(ctx, "invalid value for attribute '%s': expected '%s', actual none", a.name, a.show(want))
			return
		}
		got = a.def
	}
	if !a.eq(want, got) {
		w.c.Addf(ctx, "invalid value for attribute '%s': expected '%s', actual '%s'", a.name, a.show(want), a.show(got))
	}
}

func boolAttr(name string, def bool) attr[bool] {
	return attr[bool]{
		name:   name,
		eq:     func(a, b bool) bool { return a == b },
		show:   strconv.FormatBool,
		def:    def,
		hasDef: true,
	}
}

func stringAttr[T ~string](name string, def T, hasDef bool) attr[T] {
	return attr[T]{
		name:   name,
		eq:     func(a, b T) bool { return a == b },
		show:   func(v T) string { return string(v) },
		def:    def,
		hasDef: hasDef,
	}
}

var (
	nullValueAttr = attr[schema.Scalar]{
		name: "null_value",
		eq:   schema.Scalar.Equal,
		show: schema.Scalar.String,
	}
	scalingFactorAttr = attr[float64]{
		name: "scaling_factor",
		eq:   func(a, b float64) bool { return a == b },
		show: func(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) },
	}
)

func (w *walker) dynamic(ctx report.Context, exp, act schema.Opt[schema.Dynamic]) {
	check(w, ctx, stringAttr("dynamic", schema.Dynamic(w.profile.DynamicDefault), true), exp, act)
}

// leafAttributes compares the type-conditional attributes of a value-holding property.
// Attributes that are irrelevant to the type are neither required nor rejected.
func (w *walker) leafAttributes(ctx report.Context, typ schema.DataType, exp, act *schema.PropertyMapping) {
	p := w.profile

	check(w, ctx, boolAttr("index", p.IndexDefault), exp.Index, act.Index)
	if typ.SupportsNorms() {
		check(w, ctx, boolAttr("norms", p.NormsDefault(typ.Analyzed())), exp.Norms, act.Norms)
	}
	if typ.SupportsDocValues() {
		check(w, ctx, boolAttr("doc_values", p.DocValuesDefault), exp.DocValues, act.DocValues)
	}
	check(w, ctx, boolAttr("store", false), exp.Store, act.Store)
	check(w, ctx, nullValueAttr, exp.NullValue, act.NullValue)

	if typ.Analyzed() {
		check(w, ctx, stringAttr("analyzer", p.DefaultAnalyzer, true), exp.Analyzer, act.Analyzer)
		check(w, ctx, stringAttr("term_vector", schema.TermVector(p.TermVectorDefault), true), exp.TermVector, act.TermVector)
	}
	if typ == schema.Keyword {
		check(w, ctx, stringAttr("normalizer", "", false), exp.Normalizer, act.Normalizer)
	}
	if typ == schema.Date {
		w.formats(ctx, exp.Format, act.Format)
	}
	if typ == schema.ScaledFloat {
		check(w, ctx, scalingFactorAttr, exp.ScalingFactor, act.ScalingFactor)
	}
}

// formats compares date formats. The first format is used for output and must match
// exactly; the whole list is accepted on input, so the input check ignores order.
func (w *walker) formats(ctx report.Context, exp, act schema.Opt[[]string]) {
	if !exp.IsSet() {
		return
	}
	def := w.profile.DefaultDateFormats
	want, isValue := exp.Get()
	if !isValue {
		want = def
	} else if slices.Equal(want, def) {
		return
	}
	got, ok := act.Get()
	if !ok || len(got) == 0 {
		got = def
	}
	if len(want) == 0 {
		return
	}

	if want[0] != got[0] {
		w.c.Addf(ctx, "invalid output format: expected '%s', actual '%s'", want[0], got[0])
	}
	missing := difference(want, got)
	unexpected := difference(got, want)
	if len(missing) > 0 || len(unexpected) > 0 {
		w.c.Addf(ctx, "invalid input formats: expected %s, actual %s (missing %s, unexpected %s)",
			showList(want), showList(got), showList(missing), showList(unexpected))
	}
}

// difference returns the elements of a not present in b, in a's order.
func difference(a, b []string) []string {
	var out []string
	for _, s := range a {
		if !slices.Contains(b, s) {
			out = append(out, s)
		}
	}
	return out
}

func showList(v []string) string {
	return fmt.Sprintf("[%s]", strings.Join(v, ", "))
}
