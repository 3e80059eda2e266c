package diag

import (
	"fmt"

	"tlog.app/go/loc"
)

type (
	// Error is a user-facing semantic error. The first one aborts compilation.
	Error struct {
		Line int
		Msg  string
	}

	// InternalError means the checker and a later pass disagree.
	// It is raised by panic and never reported as a semantic error.
	InternalError struct {
		Msg string
		PC  loc.PC
	}
)

func Errorf(line int, format string, args ...any) *Error {
	return &Error{
		Line: line,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// At tags err with a source line.
func At(line int, err error) *Error {
	return &Error{
		Line: line,
		Msg:  err.Error(),
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: Semantic error: %s", e.Line, e.Msg)
}

// Internalf panics with an *InternalError pointing at its caller.
func Internalf(format string, args ...any) {
	panic(&InternalError{
		Msg: fmt.Sprintf(format, args...),
		PC:  loc.Caller(1),
	})
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error: %s (at %v)", e.Msg, e.PC)
}

// Recover converts an *InternalError panic into *errp.
// Other panics are re-raised.
func Recover(errp *error) {
	p := recover()
	if p == nil {
		return
	}

	ie, ok := p.(*InternalError)
	if !ok {
		panic(p)
	}

	*errp = ie
}
