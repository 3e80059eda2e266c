package ast

import "strings"

type (
	Node interface {
		Pos() int
	}

	Expr interface {
		Node
		expr()
	}

	Stmt interface {
		Node
		stmt()
	}

	// Base carries the source line every node is reported at.
	Base struct {
		Line int
	}

	Op      string
	LitKind int

	Program struct {
		Base

		Classes []*Class
	}

	Class struct {
		Base

		Name  string
		Super string // empty if none

		Fields  []*Field
		Methods []*Method
	}

	Field struct {
		Base

		Type *Type
		Name string
	}

	Method struct {
		Base

		Static  bool
		Type    *Type
		Name    string
		Formals []*Formal

		Body []Stmt
	}

	Formal struct {
		Base

		Type *Type
		Name string
	}

	// Type is a type spelling: a primitive or class name plus array dimensions.
	Type struct {
		Base

		Name string
		Dims int
	}
)

// Statements.
type (
	Assign struct {
		Base

		Lhs Expr
		Rhs Expr
	}

	Return struct {
		Base

		Value Expr // nil for bare return
	}

	If struct {
		Base

		Cond Expr
		Then Stmt
		Else Stmt
	}

	While struct {
		Base

		Cond Expr
		Body Stmt
	}

	Break struct {
		Base
	}

	Continue struct {
		Base
	}

	LocalVar struct {
		Base

		Type *Type
		Name string
		Init Expr
	}

	Block struct {
		Base

		Stmts []Stmt
	}

	ExprStmt struct {
		Base

		Call Expr
	}
)

// Expressions.
type (
	StaticCall struct {
		Base

		Class  string
		Method string
		Args   []Expr
	}

	VirtualCall struct {
		Base

		Recv   Expr // nil means this
		Method string
		Args   []Expr
	}

	VarLocation struct {
		Base

		Recv Expr // nil for unqualified names
		Name string
	}

	ArrayLocation struct {
		Base

		Array Expr
		Index Expr
	}

	This struct {
		Base
	}

	NewObject struct {
		Base

		Class string
	}

	NewArray struct {
		Base

		Elem *Type
		Size Expr
	}

	Length struct {
		Base

		Array Expr
	}

	UnaryOp struct {
		Base

		Op Op
		X  Expr
	}

	BinaryOp struct {
		Base

		Op Op
		L  Expr
		R  Expr
	}

	Literal struct {
		Base

		Kind LitKind
		Int  int64
		Str  string
	}
)

const (
	Neg Op = "-"
	Not Op = "!"

	Add Op = "+"
	Sub Op = "-"
	Mul Op = "*"
	Div Op = "/"
	Mod Op = "%"

	And Op = "&&"
	Or  Op = "||"

	Less      Op = "<"
	LessEq    Op = "<="
	Greater   Op = ">"
	GreaterEq Op = ">="

	Equal    Op = "=="
	NotEqual Op = "!="
)

const (
	IntLit LitKind = iota
	StringLit
	TrueLit
	FalseLit
	NullLit
)

func (x Base) Pos() int { return x.Line }

func (x *Base) SetPos(line int) { x.Line = line }

func (*Assign) stmt()   {}
func (*Return) stmt()   {}
func (*If) stmt()       {}
func (*While) stmt()    {}
func (*Break) stmt()    {}
func (*Continue) stmt() {}
func (*LocalVar) stmt() {}
func (*Block) stmt()    {}
func (*ExprStmt) stmt() {}

func (*StaticCall) expr()    {}
func (*VirtualCall) expr()   {}
func (*VarLocation) expr()   {}
func (*ArrayLocation) expr() {}
func (*This) expr()          {}
func (*NewObject) expr()     {}
func (*NewArray) expr()      {}
func (*Length) expr()        {}
func (*UnaryOp) expr()       {}
func (*BinaryOp) expr()      {}
func (*Literal) expr()       {}

// ParseType splits a spelling like "int[][]" into name and dimensions.
func ParseType(spelling string) *Type {
	name := strings.TrimRight(spelling, "[]")

	return &Type{Name: name, Dims: strings.Count(spelling[len(name):], "[]")}
}

// String returns the canonical spelling, e.g. "int[][]".
func (t *Type) String() string {
	return t.Name + strings.Repeat("[]", t.Dims)
}

func (k LitKind) String() string {
	switch k {
	case IntLit:
		return "integer"
	case StringLit:
		return "string"
	case TrueLit:
		return "true"
	case FalseLit:
		return "false"
	case NullLit:
		return "null"
	default:
		return "unknown"
	}
}

// IsEntryPoint reports whether m is static void main(string[] args).
// The parameter name is not part of the signature.
func (m *Method) IsEntryPoint() bool {
	return m.Static &&
		m.Name == "main" &&
		m.Type.String() == "void" &&
		len(m.Formals) == 1 &&
		m.Formals[0].Type.String() == "string[]"
}

// Find returns the class named name or nil.
func (p *Program) Find(name string) *Class {
	for _, c := range p.Classes {
		if c.Name == name {
			return c
		}
	}

	return nil
}
