package lir

import (
	"github.com/nikandfor/hacked/hfmt"

	"github.com/slowlang/oolc/compiler/ast"
	"github.com/slowlang/oolc/compiler/diag"
	"github.com/slowlang/oolc/compiler/sym"
)

// stmt lowers s. Every statement starts from R0.
func (t *translator) stmt(b []byte, s ast.Stmt) []byte {
	switch s := s.(type) {
	case *ast.Assign:
		var v value

		b, v = t.expr(b, s.Lhs, 0)
		b = t.reg(b, s.Rhs, v.next)

		return store(b, v, v.next)
	case *ast.Return:
		if s.Value == nil {
			return hfmt.Appendf(b, "\tReturn %s\n", VoidResult)
		}

		b = t.reg(b, s.Value, 0)

		return hfmt.Appendf(b, "\tReturn R0\n")
	case *ast.If:
		return t.ifStmt(b, s)
	case *ast.While:
		return t.while(b, s)
	case *ast.Break:
		if t.loop == nil {
			diag.Internalf("line %d: break outside of loop", s.Line)
		}

		return hfmt.Appendf(b, "\tJump %s\n", t.loop.end)
	case *ast.Continue:
		if t.loop == nil {
			diag.Internalf("line %d: continue outside of loop", s.Line)
		}

		return hfmt.Appendf(b, "\tJump %s\n", t.loop.test)
	case *ast.LocalVar:
		return t.localVar(b, s)
	case *ast.Block:
		defer t.syms.EnterScope()()

		for _, x := range s.Stmts {
			b = t.stmt(b, x)
		}

		return b
	case *ast.ExprStmt:
		b, _ = t.expr(b, s.Call, 0)

		return b
	}

	diag.Internalf("line %d: unsupported statement %T", s.Pos(), s)

	return nil
}

// scoped lowers s in a frame of its own, as the checker does.
func (t *translator) scoped(b []byte, s ast.Stmt) []byte {
	defer t.syms.EnterScope()()

	return t.stmt(b, s)
}

func (t *translator) ifStmt(b []byte, s *ast.If) []byte {
	n := t.newLabel()
	els, end := label("false", n), label("end", n)

	if s.Else == nil {
		els = end
	}

	b = t.reg(b, s.Cond, 0)
	b = hfmt.Appendf(b, "\tCompare 0,R0\n\tJumpTrue %s\n", els)

	b = t.scoped(b, s.Then)

	if s.Else != nil {
		b = hfmt.Appendf(b, "\tJump %s\n%s:\n", end, els)
		b = t.scoped(b, s.Else)
	}

	return hfmt.Appendf(b, "%s:\n", end)
}

func (t *translator) while(b []byte, s *ast.While) []byte {
	n := t.newLabel()

	l := &loop{
		test: label("test", n),
		end:  label("end", n),
	}

	b = hfmt.Appendf(b, "%s:\n", l.test)
	b = t.reg(b, s.Cond, 0)
	b = hfmt.Appendf(b, "\tCompare 0,R0\n\tJumpTrue %s\n", l.end)

	outer := t.loop
	t.loop = l

	b = t.scoped(b, s.Body)

	t.loop = outer

	return hfmt.Appendf(b, "\tJump %s\n%s:\n", l.test, l.end)
}

// localVar binds the variable after its initializer is lowered
// so the initializer still sees any outer variable of the same name.
func (t *translator) localVar(b []byte, s *ast.LocalVar) []byte {
	typ, err := t.info.Types.Resolve(s.Type.String())
	if err != nil {
		diag.Internalf("line %d: local %v: %v", s.Line, s.Name, err)
	}

	if s.Init != nil {
		b = t.reg(b, s.Init, 0)
	}

	if err := t.syms.Add(sym.NewLocal(s.Name, typ, 0, true)); err != nil {
		diag.Internalf("line %d: %v", s.Line, err)
	}

	if s.Init != nil {
		b = hfmt.Appendf(b, "\tMove R0,%s\n", slot(t.syms.Depth(), s.Name))
	}

	return b
}
