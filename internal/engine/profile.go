package engine

import "fmt"

// Family selects the wire dialect for enumerations whose spelling differs between vendors.
type Family int

const (
	FamilyElastic Family = iota + 1
	FamilyOpenSearch
)

func (f Family) String() string {
	switch f {
	case FamilyElastic:
		return "elasticsearch"
	case FamilyOpenSearch:
		return "opensearch"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// Profile is the read-only, per-line table of defaults and dialect rules.
// Profiles are shared between goroutines and must never be mutated.
type Profile struct {
	Line   Line
	Family Family

	// TypeName names the mapping context; TypeWrapper nests mappings under it on the wire.
	TypeName    string
	TypeWrapper bool

	IndexDefault      bool
	NormsDefaultText  bool
	NormsDefaultOther bool
	DocValuesDefault  bool
	DynamicDefault    string
	TermVectorDefault string
	DefaultAnalyzer   string

	// DefaultDateFormats applies to date properties without an explicit format.
	DefaultDateFormats []string

	// HighlightTermVector is the term_vector a highlightable text field needs, "" when none.
	HighlightTermVector string

	// VectorType and FlattenedType report whether the line has those data types at all.
	VectorType    bool
	FlattenedType bool

	Equivalences *Equivalences
}

var defaultDateFormats = []string{"strict_date_optional_time", "epoch_millis"}

var profiles = map[Line]*Profile{
	LineES56: {
		Line:                LineES56,
		Family:              FamilyElastic,
		TypeName:            "doc",
		TypeWrapper:         true,
		IndexDefault:        true,
		NormsDefaultText:    true,
		NormsDefaultOther:   true,
		DocValuesDefault:    true,
		DynamicDefault:      "true",
		TermVectorDefault:   "no",
		DefaultAnalyzer:     "standard",
		DefaultDateFormats:  defaultDateFormats,
		HighlightTermVector: "with_positions_offsets",
		Equivalences:        baseEquivalences,
	},
	LineES6: {
		Line:                LineES6,
		Family:              FamilyElastic,
		TypeName:            "doc",
		TypeWrapper:         true,
		IndexDefault:        true,
		NormsDefaultText:    true,
		NormsDefaultOther:   false,
		DocValuesDefault:    true,
		DynamicDefault:      "true",
		TermVectorDefault:   "no",
		DefaultAnalyzer:     "standard",
		DefaultDateFormats:  defaultDateFormats,
		HighlightTermVector: "with_positions_offsets",
		Equivalences:        es6Equivalences,
	},
	LineES7: {
		Line:               LineES7,
		Family:             FamilyElastic,
		TypeName:           "_doc",
		IndexDefault:       true,
		NormsDefaultText:   true,
		NormsDefaultOther:  false,
		DocValuesDefault:   true,
		DynamicDefault:     "true",
		TermVectorDefault:  "no",
		DefaultAnalyzer:    "standard",
		DefaultDateFormats: defaultDateFormats,
		VectorType:         true,
		FlattenedType:      true,
		Equivalences:       es7Equivalences,
	},
	LineOpenSearch: {
		Line:               LineOpenSearch,
		Family:             FamilyOpenSearch,
		TypeName:           "_doc",
		IndexDefault:       true,
		NormsDefaultText:   true,
		NormsDefaultOther:  false,
		DocValuesDefault:   true,
		DynamicDefault:     "true",
		TermVectorDefault:  "no",
		DefaultAnalyzer:    "standard",
		DefaultDateFormats: defaultDateFormats,
		VectorType:         true,
		FlattenedType:      true,
		Equivalences:       es7Equivalences,
	},
}

// ProfileFor returns the shared profile for a line.
func ProfileFor(l Line) (*Profile, error) {
	p, ok := profiles[l]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedVersion, l)
	}
	return p, nil
}

// ProfileForVersion resolves the line of v and returns its profile.
func ProfileForVersion(v Version) (*Profile, error) {
	l, err := v.Line()
	if err != nil {
		return nil, err
	}
	return ProfileFor(l)
}

// Lines lists every supported line, oldest first.
func Lines() []Line {
	return []Line{LineES56, LineES6, LineES7, LineOpenSearch}
}

// NormsDefault resolves the norms default for a property; text is the analyzed kind.
func (p *Profile) NormsDefault(analyzedText bool) bool {
	if analyzedText {
		return p.NormsDefaultText
	}
	return p.NormsDefaultOther
}
