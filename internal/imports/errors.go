package imports

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrDuplicateBundle   = errors.New("duplicated bundle name")
	ErrUnknownFile       = errors.New("file not found in any bundle")
	ErrUnsupportedImport = errors.New("unsupported import format")
	ErrUnparsableImport  = errors.New("unable to parse import line")
)

// Error carries the offending file or line next to its kind.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
