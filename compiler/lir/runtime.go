package lir

import (
	"github.com/nikandfor/hacked/hfmt"
)

type runtimeError struct {
	name string
	text string
}

// Labels of the runtime check routines.
const (
	CheckNullRef     = "__checkNullRef"
	CheckArrayAccess = "__checkArrayAccess"
	CheckSize        = "__checkSize"
	CheckZero        = "__checkZero"
)

var (
	errNullPtr    = runtimeError{"str_err_null_ptr", "Runtime Error: Null pointer dereference!"}
	errOutOfRange = runtimeError{"str_err_arr_out_of_bounds", "Runtime Error: Array index out of bounds!"}
	errNegSize    = runtimeError{"str_err_neg_arr_size", "Runtime Error: Array allocation with negative array size!"}
	errDivByZero  = runtimeError{"str_err_div_by_zero", "Runtime Error: Division by zero!"}

	runtimeErrors = []runtimeError{errNullPtr, errOutOfRange, errNegSize, errDivByZero}
)

func errorLiterals(b []byte) []byte {
	b = append(b, "\n# runtime check messages #\n"...)

	for _, e := range runtimeErrors {
		b = hfmt.Appendf(b, "%s: \"%s\"\n", e.name, escape(e.text))
	}

	return b
}

// runtimeChecks emits the check routines. Each one returns normally or
// prints its message and exits with status 1.
func runtimeChecks(b []byte) []byte {
	b = append(b, "\n# runtime checks #\n"...)

	b = hfmt.Appendf(b, `
%[1]s:
	Move a,R0
	Compare 0,R0
	JumpTrue %[1]s_error
	Return %[2]s
`, CheckNullRef, VoidResult)
	b = fail(b, CheckNullRef, errNullPtr)

	b = hfmt.Appendf(b, `
%[1]s:
	Move a,R0
	Move i,R1
	Compare 0,R1
	JumpL %[1]s_error
	ArrayLength R0,R0
	Compare R0,R1
	JumpGE %[1]s_error
	Return %[2]s
`, CheckArrayAccess, VoidResult)
	b = fail(b, CheckArrayAccess, errOutOfRange)

	b = hfmt.Appendf(b, `
%[1]s:
	Move n,R0
	Compare 0,R0
	JumpL %[1]s_error
	Return %[2]s
`, CheckSize, VoidResult)
	b = fail(b, CheckSize, errNegSize)

	b = hfmt.Appendf(b, `
%[1]s:
	Move b,R0
	Compare 0,R0
	JumpTrue %[1]s_error
	Return %[2]s
`, CheckZero, VoidResult)
	b = fail(b, CheckZero, errDivByZero)

	return b
}

func fail(b []byte, routine string, e runtimeError) []byte {
	return hfmt.Appendf(b, `%s_error:
	Library __println(%s),Rdummy
	Library __exit(1),Rdummy
`, routine, e.name)
}

// checkNull emits a null reference check of register r.
func checkNull(b []byte, r int) []byte {
	return hfmt.Appendf(b, "\tStaticCall %s(a=R%d),Rdummy\n", CheckNullRef, r)
}

func checkArrayAccess(b []byte, arr, idx int) []byte {
	return hfmt.Appendf(b, "\tStaticCall %s(a=R%d,i=R%d),Rdummy\n", CheckArrayAccess, arr, idx)
}

func checkSize(b []byte, r int) []byte {
	return hfmt.Appendf(b, "\tStaticCall %s(n=R%d),Rdummy\n", CheckSize, r)
}

func checkZero(b []byte, r int) []byte {
	return hfmt.Appendf(b, "\tStaticCall %s(b=R%d),Rdummy\n", CheckZero, r)
}
