package engine

// Equivalences records which pairs of textually different wire values an engine line
// treats as the same logical value for a given analysis parameter.
type Equivalences struct {
	byParam map[string]map[[2]string]struct{}
}

type equivalent struct {
	param string
	a, b  string
}

func newEquivalences(parent *Equivalences, pairs ...equivalent) *Equivalences {
	e := &Equivalences{byParam: map[string]map[[2]string]struct{}{}}
	if parent != nil {
		for param, set := range parent.byParam {
			cp := make(map[[2]string]struct{}, len(set))
			for k := range set {
				cp[k] = struct{}{}
			}
			e.byParam[param] = cp
		}
	}
	for _, p := range pairs {
		set := e.byParam[p.param]
		if set == nil {
			set = map[[2]string]struct{}{}
			e.byParam[p.param] = set
		}
		set[[2]string{p.a, p.b}] = struct{}{}
		set[[2]string{p.b, p.a}] = struct{}{}
	}
	return e
}

// Equivalent reports whether a and b are equal or declared equivalent for param.
func (e *Equivalences) Equivalent(param, a, b string) bool {
	if a == b {
		return true
	}
	if e == nil {
		return false
	}
	_, ok := e.byParam[param][[2]string{a, b}]
	return ok
}

var (
	baseEquivalences = newEquivalences(nil)

	es6Equivalences = newEquivalences(baseEquivalences,
		equivalent{"type", "nGram", "ngram"},
		equivalent{"type", "edgeNGram", "edge_ngram"},
	)

	es7Equivalences = newEquivalences(es6Equivalences,
		equivalent{"type", "delimited_payload_filter", "delimited_payload"},
	)
)
