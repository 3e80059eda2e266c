package typing

import (
	"github.com/slowlang/oolc/compiler/ast"
	"github.com/slowlang/oolc/compiler/diag"
	"github.com/slowlang/oolc/compiler/sym"
	"github.com/slowlang/oolc/compiler/tp"
)

type (
	// Resolver computes static expression types against the scope stack as
	// it is at the point of the query. It is the only implementation of
	// expression typing: the checker runs it with OnUse set, the translator
	// runs it bare.
	Resolver struct {
		Types *tp.Table
		Syms  *sym.Table

		Class  *sym.Class
		Method *sym.Method

		// OnUse is called for every read of an unqualified local variable.
		OnUse func(x *ast.VarLocation, l *sym.Local) error
	}
)

// Expr returns the static type of x or the first *diag.Error found in it.
func (r *Resolver) Expr(x ast.Expr) (tp.Type, error) {
	switch x := x.(type) {
	case *ast.Literal:
		return literal(x)
	case *ast.This:
		if r.Method == nil || r.Method.Static {
			return nil, diag.Errorf(x.Line, "this used in static method")
		}

		return r.Class.Type, nil
	case *ast.VarLocation:
		s, err := r.variable(x)
		if err != nil {
			return nil, err
		}

		if l, ok := s.(*sym.Local); ok && x.Recv == nil && r.OnUse != nil {
			if err := r.OnUse(x, l); err != nil {
				return nil, err
			}
		}

		return s.Sym().Type, nil
	case *ast.ArrayLocation:
		return r.element(x)
	case *ast.Length:
		at, err := r.Expr(x.Array)
		if err != nil {
			return nil, err
		}

		if _, err := Element(at); err != nil {
			return nil, diag.At(x.Line, err)
		}

		return tp.Int, nil
	case *ast.NewObject:
		if x.Class == sym.LibraryName {
			return nil, diag.Errorf(x.Line, "cannot instantiate %v", x.Class)
		}

		c, err := r.Types.ResolveClass(x.Class)
		if err != nil {
			return nil, diag.At(x.Line, err)
		}

		return c, nil
	case *ast.NewArray:
		elem, err := r.Types.Resolve(x.Elem.String())
		if err != nil {
			return nil, diag.At(x.Line, err)
		}

		at, err := r.Types.ArrayOf(elem)
		if err != nil {
			return nil, diag.At(x.Line, err)
		}

		st, err := r.Expr(x.Size)
		if err != nil {
			return nil, err
		}

		if err := Size(st); err != nil {
			return nil, diag.At(x.Size.Pos(), err)
		}

		return at, nil
	case *ast.UnaryOp:
		t, err := r.Expr(x.X)
		if err != nil {
			return nil, err
		}

		t, err = Unary(x.Op, t)
		if err != nil {
			return nil, diag.At(x.Line, err)
		}

		return t, nil
	case *ast.BinaryOp:
		l, err := r.Expr(x.L)
		if err != nil {
			return nil, err
		}

		rt, err := r.Expr(x.R)
		if err != nil {
			return nil, err
		}

		t, err := Binary(x.Op, l, rt)
		if err != nil {
			return nil, diag.At(x.Line, err)
		}

		return t, nil
	case *ast.StaticCall, *ast.VirtualCall:
		m, err := r.Callee(x)
		if err != nil {
			return nil, err
		}

		return m.Type, nil
	}

	return nil, diag.Errorf(x.Pos(), "unsupported expression: %T", x)
}

// Location types an assignment target. Unlike Expr it does not count
// as a read of the variable.
func (r *Resolver) Location(x ast.Expr) (tp.Type, error) {
	switch x := x.(type) {
	case *ast.VarLocation:
		s, err := r.variable(x)
		if err != nil {
			return nil, err
		}

		return s.Sym().Type, nil
	case *ast.ArrayLocation:
		return r.element(x)
	}

	return nil, diag.Errorf(x.Pos(), "invalid assignment target")
}

// Variable resolves a variable reference to its symbol:
// *sym.Local, *sym.Param or *sym.Field.
func (r *Resolver) Variable(x *ast.VarLocation) (sym.Symbol, error) {
	return r.variable(x)
}

// FieldOf resolves a qualified field reference through the static type of its receiver.
func (r *Resolver) FieldOf(x *ast.VarLocation) (*sym.Field, error) {
	rt, err := r.Expr(x.Recv)
	if err != nil {
		return nil, err
	}

	c, err := r.classOf(x.Line, rt)
	if err != nil {
		return nil, err
	}

	f, ok := c.FieldRec(x.Name)
	if !ok {
		return nil, diag.Errorf(x.Line, "there is no field %v in class %v", x.Name, c.Name)
	}

	return f, nil
}

// Callee resolves the method a call expression invokes and checks its arguments.
func (r *Resolver) Callee(x ast.Expr) (m *sym.Method, err error) {
	var args []ast.Expr

	switch x := x.(type) {
	case *ast.StaticCall:
		c, ok := r.Syms.Class(x.Class)
		if !ok {
			return nil, diag.Errorf(x.Line, "undefined class: %v", x.Class)
		}

		m, ok = c.MethodRec(x.Method)
		if !ok {
			return nil, diag.Errorf(x.Line, "method %v does not exist in class %v", x.Method, c.Name)
		}

		if !m.Static {
			return nil, diag.Errorf(x.Line, "method %v.%v is not static", c.Name, x.Method)
		}

		args = x.Args
	case *ast.VirtualCall:
		m, err = r.virtualCallee(x)
		if err != nil {
			return nil, err
		}

		args = x.Args
	default:
		return nil, diag.Errorf(x.Pos(), "not a call: %T", x)
	}

	ts := make([]tp.Type, len(args))

	for i, a := range args {
		ts[i], err = r.Expr(a)
		if err != nil {
			return nil, err
		}
	}

	if err = Args(m, ts); err != nil {
		return nil, diag.At(x.Pos(), err)
	}

	return m, nil
}

func (r *Resolver) virtualCallee(x *ast.VirtualCall) (*sym.Method, error) {
	if x.Recv == nil {
		if r.Class == nil {
			return nil, diag.Errorf(x.Line, "method %v called outside of a class", x.Method)
		}

		m, ok := r.Class.MethodRec(x.Method)
		if !ok {
			return nil, diag.Errorf(x.Line, "method %v does not exist in class %v", x.Method, r.Class.Name)
		}

		if !m.Static && (r.Method == nil || r.Method.Static) {
			return nil, diag.Errorf(x.Line, "virtual method %v called from static method", x.Method)
		}

		return m, nil
	}

	rt, err := r.Expr(x.Recv)
	if err != nil {
		return nil, err
	}

	c, err := r.classOf(x.Line, rt)
	if err != nil {
		return nil, err
	}

	m, ok := c.MethodRec(x.Method)
	if !ok {
		return nil, diag.Errorf(x.Line, "method %v does not exist in class %v", x.Method, c.Name)
	}

	if m.Static {
		return nil, diag.Errorf(x.Line, "static method %v.%v called through an instance", c.Name, x.Method)
	}

	return m, nil
}

func (r *Resolver) variable(x *ast.VarLocation) (sym.Symbol, error) {
	if x.Recv != nil {
		return r.FieldOf(x)
	}

	s, ok := r.Syms.Find(x.Name)
	if !ok {
		return nil, diag.Errorf(x.Line, "undefined variable: %v", x.Name)
	}

	switch s := s.(type) {
	case *sym.Local, *sym.Param:
		return s, nil
	case *sym.Field:
		if r.Method == nil || r.Method.Static {
			return nil, diag.Errorf(x.Line, "field %v used in static method", x.Name)
		}

		return s, nil
	}

	return nil, diag.Errorf(x.Line, "undefined variable: %v", x.Name)
}

func (r *Resolver) element(x *ast.ArrayLocation) (tp.Type, error) {
	at, err := r.Expr(x.Array)
	if err != nil {
		return nil, err
	}

	et, err := Element(at)
	if err != nil {
		return nil, diag.At(x.Line, err)
	}

	it, err := r.Expr(x.Index)
	if err != nil {
		return nil, err
	}

	if err := Index(it); err != nil {
		return nil, diag.At(x.Index.Pos(), err)
	}

	return et, nil
}

func (r *Resolver) classOf(line int, t tp.Type) (*sym.Class, error) {
	ct, ok := t.(*tp.Class)
	if !ok {
		return nil, diag.Errorf(line, "%v is not a class type", t)
	}

	c, ok := r.Syms.Class(ct.Name)
	if !ok {
		return nil, diag.Errorf(line, "undefined class: %v", ct.Name)
	}

	return c, nil
}

func literal(x *ast.Literal) (tp.Type, error) {
	switch x.Kind {
	case ast.IntLit:
		return tp.Int, nil
	case ast.StringLit:
		return tp.String, nil
	case ast.TrueLit, ast.FalseLit:
		return tp.Boolean, nil
	case ast.NullLit:
		return tp.NullType, nil
	}

	return nil, diag.Errorf(x.Line, "unsupported literal: %v", x.Kind)
}
