package typing

import (
	"strings"

	"tlog.app/go/errors"

	"github.com/slowlang/oolc/compiler/ast"
	"github.com/slowlang/oolc/compiler/sym"
	"github.com/slowlang/oolc/compiler/tp"
)

func Unary(op ast.Op, x tp.Type) (tp.Type, error) {
	switch op {
	case ast.Neg:
		if x != tp.Int {
			return nil, errors.New("operand of %v must be of type int", op)
		}

		return tp.Int, nil
	case ast.Not:
		if x != tp.Boolean {
			return nil, errors.New("operand of %v must be of type boolean", op)
		}

		return tp.Boolean, nil
	}

	return nil, errors.New("unsupported unary operator: %v", op)
}

func Binary(op ast.Op, l, r tp.Type) (tp.Type, error) {
	switch op {
	case ast.And, ast.Or:
		if l != tp.Boolean || r != tp.Boolean {
			return nil, errors.New("operands of %v must be of type boolean", op)
		}

		return tp.Boolean, nil
	case ast.Less, ast.LessEq, ast.Greater, ast.GreaterEq:
		if l != tp.Int || r != tp.Int {
			return nil, errors.New("operands of %v must be of type int", op)
		}

		return tp.Boolean, nil
	case ast.Add:
		switch {
		case l == tp.String && r == tp.String:
			return tp.String, nil
		case l == tp.Int && r == tp.Int:
			return tp.Int, nil
		}

		return nil, errors.New("operands of + must be both of type int or both of type string")
	case ast.Sub, ast.Mul, ast.Div, ast.Mod:
		if l != tp.Int || r != tp.Int {
			return nil, errors.New("operands of %v must be of type int", op)
		}

		return tp.Int, nil
	case ast.Equal, ast.NotEqual:
		if l == tp.Void || r == tp.Void || !tp.Like(l, r) {
			return nil, errors.New("operands of %v must be of the same type, got %v and %v", op, l, r)
		}

		return tp.Boolean, nil
	}

	return nil, errors.New("unsupported binary operator: %v", op)
}

// Element is the element type of an array type.
func Element(t tp.Type) (tp.Type, error) {
	a, ok := t.(*tp.Array)
	if !ok {
		return nil, errors.New("expected an array type, got %v", t)
	}

	return a.Elem, nil
}

func Assign(actual, declared tp.Type) error {
	if !tp.Assignable(actual, declared) {
		return errors.New("type mismatch, not of type %v", declared)
	}

	return nil
}

func Condition(t tp.Type) error {
	if t != tp.Boolean {
		return errors.New("condition must be of type boolean, got %v", t)
	}

	return nil
}

func Index(t tp.Type) error {
	if t != tp.Int {
		return errors.New("array index must be of type int, got %v", t)
	}

	return nil
}

func Size(t tp.Type) error {
	if t != tp.Int {
		return errors.New("array size must be of type int, got %v", t)
	}

	return nil
}

// Args checks argument count and per-position compatibility.
func Args(m *sym.Method, args []tp.Type) error {
	ok := len(args) == len(m.Params)

	for i := 0; ok && i < len(args); i++ {
		ok = tp.Assignable(args[i], m.Params[i].Type)
	}

	if ok {
		return nil
	}

	return errors.New("wrong arguments for %v, expected (%v)", m.Name, typeList(m.ParamTypes()))
}

func typeList(ts []tp.Type) string {
	var b strings.Builder

	for i, t := range ts {
		if i != 0 {
			b.WriteString(", ")
		}

		b.WriteString(t.String())
	}

	return b.String()
}
