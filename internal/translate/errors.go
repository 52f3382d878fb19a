package translate

import (
	"errors"
	"fmt"
)

// ErrTranslation marks every failure to produce a schema from field descriptors.
var ErrTranslation = errors.New("translation failed")

// TranslationError is a fail-fast error tied to the absolute path of the offending field.
type TranslationError struct {
	Path   string
	Reason string
	Err    error
}

func (e *TranslationError) Error() string {
	msg := fmt.Sprintf("field %q: %s", e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TranslationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTranslation}
	}
	return []error{ErrTranslation, e.Err}
}

func failf(path string, format string, args ...any) error {
	return &TranslationError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

func wrapf(path string, err error, format string, args ...any) error {
	return &TranslationError{Path: path, Reason: fmt.Sprintf(format, args...), Err: err}
}
