package check

import (
	"github.com/slowlang/oolc/compiler/ast"
	"github.com/slowlang/oolc/compiler/diag"
	"github.com/slowlang/oolc/compiler/sym"
	"github.com/slowlang/oolc/compiler/tp"
	"github.com/slowlang/oolc/compiler/typing"
)

func (c *checker) stmt(s ast.Stmt) error {
	switch s := s.(type) {
	case *ast.Assign:
		return c.assign(s)
	case *ast.Return:
		return c.ret(s)
	case *ast.If:
		if err := c.cond(s.Cond); err != nil {
			return err
		}

		if err := c.scoped(s.Then); err != nil {
			return err
		}

		if s.Else == nil {
			return nil
		}

		return c.scoped(s.Else)
	case *ast.While:
		if err := c.cond(s.Cond); err != nil {
			return err
		}

		c.loops++
		defer func() { c.loops-- }()

		return c.scoped(s.Body)
	case *ast.Break:
		if c.loops == 0 {
			return diag.Errorf(s.Line, "break statement outside of loop")
		}

		return nil
	case *ast.Continue:
		if c.loops == 0 {
			return diag.Errorf(s.Line, "continue statement outside of loop")
		}

		return nil
	case *ast.LocalVar:
		return c.localVar(s)
	case *ast.Block:
		defer c.syms.EnterScope()()

		for _, x := range s.Stmts {
			if err := c.stmt(x); err != nil {
				return err
			}
		}

		return nil
	case *ast.ExprStmt:
		switch s.Call.(type) {
		case *ast.StaticCall, *ast.VirtualCall:
		default:
			return diag.Errorf(s.Line, "not a statement")
		}

		_, err := c.res.Expr(s.Call)

		return err
	}

	return diag.Errorf(s.Pos(), "unsupported statement: %T", s)
}

// scoped checks s in a frame of its own.
func (c *checker) scoped(s ast.Stmt) error {
	defer c.syms.EnterScope()()

	return c.stmt(s)
}

func (c *checker) cond(x ast.Expr) error {
	t, err := c.res.Expr(x)
	if err != nil {
		return err
	}

	if err = typing.Condition(t); err != nil {
		return diag.At(x.Pos(), err)
	}

	return nil
}

func (c *checker) assign(s *ast.Assign) error {
	lt, err := c.res.Location(s.Lhs)
	if err != nil {
		return err
	}

	rt, err := c.res.Expr(s.Rhs)
	if err != nil {
		return err
	}

	if err = typing.Assign(rt, lt); err != nil {
		return diag.At(s.Line, err)
	}

	if v, ok := s.Lhs.(*ast.VarLocation); ok && v.Recv == nil {
		if x, _ := c.syms.Find(v.Name); x != nil {
			if l, ok := x.(*sym.Local); ok {
				l.Assigned = true
			}
		}
	}

	return nil
}

func (c *checker) ret(s *ast.Return) error {
	want := c.method.Type

	if s.Value == nil {
		if want != tp.Void {
			return diag.Errorf(s.Line, "return statement must return a value of type %v", want)
		}

		return nil
	}

	if want == tp.Void {
		return diag.Errorf(s.Line, "void method %v cannot return a value", c.method.Name)
	}

	t, err := c.res.Expr(s.Value)
	if err != nil {
		return err
	}

	if err = typing.Assign(t, want); err != nil {
		return diag.At(s.Line, err)
	}

	return nil
}

func (c *checker) localVar(s *ast.LocalVar) error {
	if _, ok := c.syms.FindLocal(s.Name); ok {
		return diag.Errorf(s.Line, "variable redefinition: %v", s.Name)
	}

	t, err := c.resolveType(s.Type)
	if err != nil {
		return err
	}

	if t == tp.Void {
		return diag.Errorf(s.Line, "variable %v cannot be of type void", s.Name)
	}

	if s.Init != nil {
		it, err := c.res.Expr(s.Init)
		if err != nil {
			return err
		}

		if err = typing.Assign(it, t); err != nil {
			return diag.At(s.Line, err)
		}
	}

	l := sym.NewLocal(s.Name, t, c.locals, s.Init != nil)
	c.locals++

	if err = c.syms.Add(l); err != nil {
		return diag.At(s.Line, err)
	}

	return nil
}

// Returns reports whether a statement list cannot complete normally.
func Returns(ss []ast.Stmt) bool {
	for _, s := range ss {
		if terminates(s) {
			return true
		}
	}

	return false
}

func terminates(s ast.Stmt) bool {
	switch s := s.(type) {
	case *ast.Return:
		return true
	case *ast.Block:
		return Returns(s.Stmts)
	case *ast.If:
		return s.Else != nil && terminates(s.Then) && terminates(s.Else)
	case *ast.While:
		l, ok := s.Cond.(*ast.Literal)

		return ok && l.Kind == ast.TrueLit && !breaks(s.Body)
	}

	return false
}

// breaks reports whether s contains a break bound to the enclosing loop.
func breaks(s ast.Stmt) bool {
	switch s := s.(type) {
	case *ast.Break:
		return true
	case *ast.Block:
		for _, x := range s.Stmts {
			if breaks(x) {
				return true
			}
		}
	case *ast.If:
		return breaks(s.Then) || s.Else != nil && breaks(s.Else)
	}

	return false
}
