// Package validate compares a desired index schema with the one live on an engine.
//
// A single traversal serves every engine line; the line's engine.Profile supplies the
// defaults used when an attribute is absent from the live mapping.
package validate

import (
	"errors"
	"fmt"

	"github.com/Rorical/indexschema/internal/engine"
	"github.com/Rorical/indexschema/internal/report"
	"github.com/Rorical/indexschema/internal/schema"
)

// ErrMalformedExpected is returned when the desired schema itself cannot be interpreted.
// Mismatches between desired and live schema are never errors; they go into the report.
var ErrMalformedExpected = errors.New("malformed expected schema")

const (
	msgMissingProperty = "missing property mapping"
	msgMissingField    = "missing field mapping"
)

type Validator struct {
	profile *engine.Profile
}

func New(p *engine.Profile) *Validator {
	return &Validator{profile: p}
}

func (v *Validator) Profile() *engine.Profile { return v.profile }

// Validate checks the mapping and the analysis components of actual against expected.
func (v *Validator) Validate(expected, actual *schema.Index) (report.Report, error) {
	w := v.walker()
	root := report.Root.Index(expected.Name)

	var actMapping *schema.TypeMapping
	var actAnalysis *schema.Analysis
	if actual != nil {
		actMapping, actAnalysis = actual.Mapping, actual.Analysis
	}
	if err := w.mapping(root.Mapping(v.typeName(expected)), expected.Mapping, actMapping); err != nil {
		return report.Report{}, err
	}
	w.analysis(root, expected.Analysis, actAnalysis)
	return w.c.Report(expected.Name), nil
}

// ValidateMapping checks only the mapping tree.
func (v *Validator) ValidateMapping(index string, expected, actual *schema.TypeMapping) (report.Report, error) {
	w := v.walker()
	ctx := report.Root.Index(index).Mapping(v.profile.TypeName)
	if err := w.mapping(ctx, expected, actual); err != nil {
		return report.Report{}, err
	}
	return w.c.Report(index), nil
}

func (v *Validator) typeName(ix *schema.Index) string {
	if ix.TypeName != "" {
		return ix.TypeName
	}
	return v.profile.TypeName
}

func (v *Validator) walker() *walker {
	return &walker{profile: v.profile, c: &report.Collector{}}
}

// walker carries the collector through one pass. It reads both trees and writes neither.
type walker struct {
	profile *engine.Profile
	c       *report.Collector
}

func (w *walker) mapping(ctx report.Context, exp, act *schema.TypeMapping) error {
	if exp == nil {
		return nil
	}
	if act == nil {
		act = schema.NewTypeMapping()
	}
	w.dynamic(ctx, exp.Dynamic, act.Dynamic)
	return w.named(ctx, exp.Properties(), act.Properties(), report.Context.Property, msgMissingProperty)
}

// named walks properties or fields. Entries only present in actual are ignored.
func (w *walker) named(ctx report.Context, exp, act schema.Properties, push func(report.Context, string) report.Context, missing string) error {
	return exp.Each(func(name string, pe *schema.PropertyMapping) error {
		c := push(ctx, name)
		pa, ok := act.Get(name)
		if !ok {
			w.c.Add(c, missing)
			return nil
		}
		return w.property(c, pe, pa)
	})
}

func (w *walker) property(ctx report.Context, exp, act *schema.PropertyMapping) error {
	if !exp.Type.IsZero() && !exp.Type.Recognized() {
		return fmt.Errorf("%s: type %q: %w", ctx, exp.Type, ErrMalformedExpected)
	}

	typ := effectiveType(exp.Type)
	if got := effectiveType(act.Type); !exp.Type.IsZero() && typ != got {
		w.c.Addf(ctx, "invalid type: expected '%s', actual '%s'", typ, got)
		return nil
	}

	if typ.Container() {
		w.dynamic(ctx, exp.Dynamic, act.Dynamic)
	} else {
		w.leafAttributes(ctx, typ, exp, act)
	}

	if err := w.named(ctx, exp.Properties(), act.Properties(), report.Context.Property, msgMissingProperty); err != nil {
		return err
	}
	return w.named(ctx, exp.Fields(), act.Fields(), report.Context.Field, msgMissingField)
}

// effectiveType treats a node without a type as the object it implicitly is.
func effectiveType(t schema.DataType) schema.DataType {
	if t.IsZero() {
		return schema.Object
	}
	return t
}
