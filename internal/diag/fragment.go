package diag

import (
	"fmt"
	"strings"
)

// Fragment is a diagnostic message key plus its arguments. Engine queries
// return fragments instead of reporting, so the caller decides the subject.
type Fragment struct {
	Code Code
	Args []any
}

func Frag(code Code, args ...any) Fragment {
	return Fragment{Code: code, Args: args}
}

func (f Fragment) IsZero() bool { return f.Code == UnknownCode && len(f.Args) == 0 }

// Mentions reports whether f or a fragment nested in its arguments has
// the given code.
func (f Fragment) Mentions(code Code) bool {
	if f.Code == code {
		return true
	}
	for _, a := range f.Args {
		if nested, ok := a.(Fragment); ok && nested.Mentions(code) {
			return true
		}
	}
	return false
}

func (f Fragment) String() string {
	if len(f.Args) == 0 {
		return f.Code.Title()
	}
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		parts[i] = fmt.Sprint(a)
	}
	return f.Code.Title() + ": " + strings.Join(parts, ", ")
}

// FragmentError carries a Fragment through error returns.
type FragmentError struct {
	Fragment Fragment
}

func (e *FragmentError) Error() string { return e.Fragment.String() }

// Err wraps a fragment as an error.
func Err(code Code, args ...any) error {
	return &FragmentError{Fragment: Frag(code, args...)}
}
