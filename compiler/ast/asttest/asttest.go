// Package asttest builds program trees for tests.
package asttest

import (
	"github.com/slowlang/oolc/compiler/ast"
)

// At sets the source line of n.
func At[N interface{ SetPos(int) }](line int, n N) N {
	n.SetPos(line)
	return n
}

func Prog(cs ...*ast.Class) *ast.Program {
	return &ast.Program{Base: ast.Base{Line: 1}, Classes: cs}
}

// Class takes *ast.Field and *ast.Method members.
func Class(name, super string, members ...any) *ast.Class {
	c := &ast.Class{Name: name, Super: super}

	for _, m := range members {
		switch m := m.(type) {
		case *ast.Field:
			c.Fields = append(c.Fields, m)
		case *ast.Method:
			c.Methods = append(c.Methods, m)
		default:
			panic(m)
		}
	}

	return c
}

// T parses a type spelling like "int[][]".
func T(spelling string) *ast.Type {
	return ast.ParseType(spelling)
}

func Field(typ, name string) *ast.Field {
	return &ast.Field{Type: T(typ), Name: name}
}

// Formals takes type, name pairs.
func Formals(pairs ...string) []*ast.Formal {
	var r []*ast.Formal

	for i := 0; i+1 < len(pairs); i += 2 {
		r = append(r, &ast.Formal{Type: T(pairs[i]), Name: pairs[i+1]})
	}

	return r
}

func Virtual(ret, name string, formals []*ast.Formal, body ...ast.Stmt) *ast.Method {
	return &ast.Method{Type: T(ret), Name: name, Formals: formals, Body: body}
}

func Static(ret, name string, formals []*ast.Formal, body ...ast.Stmt) *ast.Method {
	return &ast.Method{Static: true, Type: T(ret), Name: name, Formals: formals, Body: body}
}

// Main is static void main(string[] args).
func Main(body ...ast.Stmt) *ast.Method {
	return Static("void", "main", Formals("string[]", "args"), body...)
}

func Var(typ, name string, init ast.Expr) *ast.LocalVar {
	return &ast.LocalVar{Type: T(typ), Name: name, Init: init}
}

func Set(lhs, rhs ast.Expr) *ast.Assign { return &ast.Assign{Lhs: lhs, Rhs: rhs} }

func Ret(x ast.Expr) *ast.Return { return &ast.Return{Value: x} }

func If(c ast.Expr, then, els ast.Stmt) *ast.If { return &ast.If{Cond: c, Then: then, Else: els} }

func While(c ast.Expr, body ast.Stmt) *ast.While { return &ast.While{Cond: c, Body: body} }

func Block(ss ...ast.Stmt) *ast.Block { return &ast.Block{Stmts: ss} }

func Do(call ast.Expr) *ast.ExprStmt { return &ast.ExprStmt{Call: call} }

func Break() *ast.Break { return &ast.Break{} }

func Continue() *ast.Continue { return &ast.Continue{} }

func Id(name string) *ast.VarLocation { return &ast.VarLocation{Name: name} }

func Dot(recv ast.Expr, name string) *ast.VarLocation {
	return &ast.VarLocation{Recv: recv, Name: name}
}

func Idx(arr, i ast.Expr) *ast.ArrayLocation { return &ast.ArrayLocation{Array: arr, Index: i} }

func This() *ast.This { return &ast.This{} }

func New(class string) *ast.NewObject { return &ast.NewObject{Class: class} }

func NewArr(elem string, size ast.Expr) *ast.NewArray {
	return &ast.NewArray{Elem: T(elem), Size: size}
}

func Len(x ast.Expr) *ast.Length { return &ast.Length{Array: x} }

func Int(n int64) *ast.Literal { return &ast.Literal{Kind: ast.IntLit, Int: n} }

func Str(s string) *ast.Literal { return &ast.Literal{Kind: ast.StringLit, Str: s} }

func True() *ast.Literal { return &ast.Literal{Kind: ast.TrueLit} }

func False() *ast.Literal { return &ast.Literal{Kind: ast.FalseLit} }

func Null() *ast.Literal { return &ast.Literal{Kind: ast.NullLit} }

func Bin(op ast.Op, l, r ast.Expr) *ast.BinaryOp { return &ast.BinaryOp{Op: op, L: l, R: r} }

func Un(op ast.Op, x ast.Expr) *ast.UnaryOp { return &ast.UnaryOp{Op: op, X: x} }

func SCall(class, method string, args ...ast.Expr) *ast.StaticCall {
	return &ast.StaticCall{Class: class, Method: method, Args: args}
}

// VCall with a nil receiver calls through this.
func VCall(recv ast.Expr, method string, args ...ast.Expr) *ast.VirtualCall {
	return &ast.VirtualCall{Recv: recv, Method: method, Args: args}
}

func Println(x ast.Expr) *ast.ExprStmt {
	return Do(SCall("Library", "println", x))
}
