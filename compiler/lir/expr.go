package lir

import (
	"strconv"

	"github.com/nikandfor/hacked/hfmt"

	"github.com/slowlang/oolc/compiler/ast"
	"github.com/slowlang/oolc/compiler/diag"
	"github.com/slowlang/oolc/compiler/sym"
	"github.com/slowlang/oolc/compiler/tp"
)

// expr lowers x using registers from r up.
func (t *translator) expr(b []byte, x ast.Expr, r int) ([]byte, value) {
	switch x := x.(type) {
	case *ast.Literal:
		return b, t.literal(x, r)
	case *ast.This:
		b = hfmt.Appendf(b, "\tMove this,R%d\n", r)

		return b, inReg(r)
	case *ast.VarLocation:
		return t.varLocation(b, x, r)
	case *ast.ArrayLocation:
		b = t.reg(b, x.Array, r)
		b = checkNull(b, r)
		b = t.reg(b, x.Index, r+1)
		b = checkArrayAccess(b, r, r+1)

		return b, element(r, r+1)
	case *ast.Length:
		b = t.reg(b, x.Array, r)
		b = checkNull(b, r)
		b = hfmt.Appendf(b, "\tArrayLength R%d,R%d\n", r, r)

		return b, inReg(r)
	case *ast.NewObject:
		cs, ok := t.syms.Class(x.Class)
		if !ok {
			diag.Internalf("line %d: class %v not found", x.Line, x.Class)
		}

		b = hfmt.Appendf(b, "\tLibrary __allocateObject(%d),R%d\n", cs.BytesInMemory(), r)
		b = hfmt.Appendf(b, "\tMoveField %s,R%d.0\n", dispatchLabel(cs), r)

		return b, inReg(r)
	case *ast.NewArray:
		b = t.reg(b, x.Size, r)
		b = checkSize(b, r)
		b = hfmt.Appendf(b, "\tMul %d,R%d\n", t.WordSize, r)
		b = hfmt.Appendf(b, "\tLibrary __allocateArray(R%d),R%d\n", r, r)

		return b, inReg(r)
	case *ast.UnaryOp:
		return t.unary(b, x, r)
	case *ast.BinaryOp:
		return t.binary(b, x, r)
	case *ast.StaticCall, *ast.VirtualCall:
		return t.call(b, x, r)
	}

	diag.Internalf("line %d: unsupported expression %T", x.Pos(), x)

	return nil, value{}
}

// reg lowers x into register r.
func (t *translator) reg(b []byte, x ast.Expr, r int) []byte {
	b, v := t.expr(b, x, r)

	return load(b, v, r)
}

func (t *translator) literal(x *ast.Literal, r int) value {
	switch x.Kind {
	case ast.IntLit:
		return imm(strconv.FormatInt(x.Int, 10), r)
	case ast.StringLit:
		return imm(t.str(x.Str), r)
	case ast.TrueLit:
		return imm("1", r)
	case ast.FalseLit, ast.NullLit:
		return imm("0", r)
	}

	diag.Internalf("line %d: unsupported literal %v", x.Line, x.Kind)

	return value{}
}

func (t *translator) varLocation(b []byte, x *ast.VarLocation, r int) ([]byte, value) {
	if x.Recv != nil {
		f, err := t.res.FieldOf(x)
		if err != nil {
			diag.Internalf("field: %v", err)
		}

		b = t.reg(b, x.Recv, r)
		b = checkNull(b, r)

		return b, field(r, f.Offset)
	}

	s, err := t.res.Variable(x)
	if err != nil {
		diag.Internalf("variable: %v", err)
	}

	switch s := s.(type) {
	case *sym.Local, *sym.Param:
		return b, local(slot(t.syms.DepthOf(x.Name), x.Name), r)
	case *sym.Field:
		b = hfmt.Appendf(b, "\tMove this,R%d\n", r)

		return b, field(r, s.Offset)
	}

	diag.Internalf("line %d: %v is %T", x.Line, x.Name, s)

	return nil, value{}
}

func (t *translator) unary(b []byte, x *ast.UnaryOp, r int) ([]byte, value) {
	b = t.reg(b, x.X, r)

	switch x.Op {
	case ast.Neg:
		b = hfmt.Appendf(b, "\tNeg R%d\n", r)
	case ast.Not:
		n := t.newLabel()

		b = hfmt.Appendf(b, "\tCompare 0,R%d\n", r)
		b = t.setBool(b, "JumpTrue", r, n)
	default:
		diag.Internalf("line %d: unsupported unary operator %v", x.Line, x.Op)
	}

	return b, inReg(r)
}

var jumps = map[ast.Op]string{
	ast.Less:      "JumpL",
	ast.LessEq:    "JumpLE",
	ast.Greater:   "JumpG",
	ast.GreaterEq: "JumpGE",
	ast.Equal:     "JumpTrue",
	ast.NotEqual:  "JumpFalse",
}

var arith = map[ast.Op]string{
	ast.Add: "Add",
	ast.Sub: "Sub",
	ast.Mul: "Mul",
	ast.Div: "Div",
	ast.Mod: "Mod",
}

func (t *translator) binary(b []byte, x *ast.BinaryOp, r int) ([]byte, value) {
	if x.Op == ast.And || x.Op == ast.Or {
		return t.logical(b, x, r), inReg(r)
	}

	b = t.reg(b, x.L, r)
	b = t.reg(b, x.R, r+1)

	if j, ok := jumps[x.Op]; ok {
		n := t.newLabel()

		b = hfmt.Appendf(b, "\tCompare R%d,R%d\n", r+1, r)
		b = t.setBool(b, j, r, n)

		return b, inReg(r)
	}

	in, ok := arith[x.Op]
	if !ok {
		diag.Internalf("line %d: unsupported binary operator %v", x.Line, x.Op)
	}

	switch x.Op {
	case ast.Add:
		lt, err := t.res.Expr(x.L)
		if err != nil {
			diag.Internalf("operand: %v", err)
		}

		if lt == tp.String {
			b = hfmt.Appendf(b, "\tLibrary __stringCat(R%d,R%d),R%d\n", r, r+1, r)

			return b, inReg(r)
		}
	case ast.Div, ast.Mod:
		b = checkZero(b, r+1)
	}

	b = hfmt.Appendf(b, "\t%s R%d,R%d\n", in, r+1, r)

	return b, inReg(r)
}

// setBool sets r to 1 if jump is taken after a compare and to 0 otherwise.
func (t *translator) setBool(b []byte, jump string, r, n int) []byte {
	tl, end := label("true", n), label("end", n)

	return hfmt.Appendf(b, `	%s %s
	Move 0,R%d
	Jump %s
%s:
	Move 1,R%[3]d
%[4]s:
`, jump, tl, r, end, tl)
}

// logical lowers && and ||. The left operand alone decides the result
// when it is false for && and true for ||.
func (t *translator) logical(b []byte, x *ast.BinaryOp, r int) []byte {
	jump := "JumpTrue"
	if x.Op == ast.Or {
		jump = "JumpFalse"
	}

	n := t.newLabel()
	end := label("end", n)

	b = t.reg(b, x.L, r)

	if t.ShortCircuit {
		b = hfmt.Appendf(b, "\tCompare 0,R%d\n\t%s %s\n", r, jump, end)
		b = t.reg(b, x.R, r)

		return hfmt.Appendf(b, "%s:\n", end)
	}

	b = t.reg(b, x.R, r+1)

	return hfmt.Appendf(b, `	Compare 0,R%d
	%s %s
	Move R%d,R%[1]d
%[3]s:
`, r, jump, end, r+1)
}

// call lowers static, library and virtual calls. Arguments go to
// consecutive registers after the receiver, if there is one.
func (t *translator) call(b []byte, x ast.Expr, r int) ([]byte, value) {
	m, err := t.res.Callee(x)
	if err != nil {
		diag.Internalf("call: %v", err)
	}

	var recv ast.Expr
	var args []ast.Expr

	switch x := x.(type) {
	case *ast.StaticCall:
		args = x.Args
	case *ast.VirtualCall:
		recv, args = x.Recv, x.Args
	}

	res := "Rdummy"
	if m.Type != tp.Void {
		res = "R" + strconv.Itoa(r)
	}

	switch {
	case m.Owner == t.info.Library:
		for i, a := range args {
			b = t.reg(b, a, r+i)
		}

		b = hfmt.Appendf(b, "\tLibrary __%s(", m.Name)

		for i := range args {
			if i != 0 {
				b = append(b, ',')
			}

			b = hfmt.Appendf(b, "R%d", r+i)
		}

		b = hfmt.Appendf(b, "),%s\n", res)
	case m.Static:
		for i, a := range args {
			b = t.reg(b, a, r+i)
		}

		b = hfmt.Appendf(b, "\tStaticCall %s(", methodLabel(m))
		b = bindArgs(b, m, r)
		b = hfmt.Appendf(b, "),%s\n", res)
	default:
		if recv == nil {
			b = hfmt.Appendf(b, "\tMove this,R%d\n", r)
		} else {
			b = t.reg(b, recv, r)
		}

		b = checkNull(b, r)

		for i, a := range args {
			b = t.reg(b, a, r+1+i)
		}

		b = hfmt.Appendf(b, "\tVirtualCall R%d.%d(", r, m.Slot)
		b = bindArgs(b, m, r+1)
		b = hfmt.Appendf(b, "),%s\n", res)
	}

	return b, inReg(r)
}

// bindArgs binds arguments in registers from r up to the callee parameter slots.
func bindArgs(b []byte, m *sym.Method, r int) []byte {
	for i, p := range m.Params {
		if i != 0 {
			b = append(b, ',')
		}

		b = hfmt.Appendf(b, "%s=R%d", slot(sym.MethodDepth, p.Name), r+i)
	}

	return b
}
