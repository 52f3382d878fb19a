package schema

type optState uint8

const (
	optUnset optState = iota
	optNull
	optValue
)

// Opt is a tri-state attribute. Unset means "no opinion" and is omitted on the wire;
// Null explicitly asks for the engine default and is written as JSON null.
type Opt[T any] struct {
	state optState
	v     T
}

func Some[T any](v T) Opt[T] { return Opt[T]{state: optValue, v: v} }

func Null[T any]() Opt[T] { return Opt[T]{state: optNull} }

// IsSet reports whether the attribute is present, including present-but-null.
func (o Opt[T]) IsSet() bool { return o.state != optUnset }

func (o Opt[T]) IsNull() bool { return o.state == optNull }

func (o Opt[T]) Get() (T, bool) { return o.v, o.state == optValue }

// Or returns the value, or def when unset or null.
func (o Opt[T]) Or(def T) T {
	if o.state == optValue {
		return o.v
	}
	return def
}
