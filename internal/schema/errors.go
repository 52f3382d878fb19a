package schema

import (
	"errors"
	"fmt"
)

// PathError attaches the dotted path of the offending property.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }

func (e *PathError) Unwrap() error { return e.Err }

func asPathError(err error, target **PathError) bool {
	return errors.As(err, target)
}
