package builder

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

var (
	ErrConfig     = errors.New("invalid build configuration")
	ErrResolution = errors.New("unable to process sources")
	ErrState      = errors.New("invalid builder state")
)

// Error is a fatal build error carrying the offending destination or source.
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

func configErrorf(format string, args ...interface{}) error {
	return &Error{Kind: ErrConfig, Msg: fmt.Sprintf(format, args...)}
}

// ResolutionError lists every task source that could not be found.
type ResolutionError struct {
	Missing []string
	errs    *multierror.Error
}

func (e *ResolutionError) add(src string) {
	e.Missing = append(e.Missing, src)
	e.errs = multierror.Append(e.errs, errors.Errorf("not found src: %s", src))
}

func (e *ResolutionError) orNil() error {
	if len(e.Missing) == 0 {
		return nil
	}
	e.errs.ErrorFormat = func(errs []error) string {
		lines := make([]string, 0, len(errs))
		for _, err := range errs {
			lines = append(lines, "\t"+err.Error())
		}
		return fmt.Sprintf("%s (%d missing):\n%s", ErrResolution.Error(), len(errs), strings.Join(lines, "\n"))
	}
	return e
}

func (e *ResolutionError) Error() string {
	return e.errs.Error()
}

func (e *ResolutionError) Unwrap() error { return ErrResolution }
