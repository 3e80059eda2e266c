// Package decode reads program trees written as YAML.
//
// A program is a mapping with a classes list. Statements and compound
// expressions are single-key mappings naming the node kind:
//
//	classes:
//	  - name: Main
//	    methods:
//	      - name: main
//	        static: true
//	        formals: [{type: "string[]", name: args}]
//	        body:
//	          - var: {type: int, name: x, init: 2}
//	          - do: {scall: {class: Library, method: printi, args: [{bin: ["*", x, x]}]}}
//
// Plain scalars are shorthands: integers, true, false, null, this,
// and any other word is a variable. String literals are {str: text}.
// Every node takes its line from an optional line key or else from
// its position in the YAML text.
package decode

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
	"tlog.app/go/errors"

	"github.com/slowlang/oolc/compiler/ast"
)

type (
	SyntaxError struct {
		Line int
		Msg  string
	}

	// entries is a mapping node split into its keys.
	entries struct {
		node *yaml.Node
		keys map[string]*yaml.Node
		line int
	}
)

var unaryOps = map[string]ast.Op{
	"-": ast.Neg,
	"!": ast.Not,
}

var binaryOps = map[ast.Op]bool{
	ast.Add: true, ast.Sub: true, ast.Mul: true, ast.Div: true, ast.Mod: true,
	ast.And: true, ast.Or: true,
	ast.Less: true, ast.LessEq: true, ast.Greater: true, ast.GreaterEq: true,
	ast.Equal: true, ast.NotEqual: true,
}

// Decode parses a YAML program tree.
func Decode(data []byte) (*ast.Program, error) {
	var doc yaml.Node

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, errors.Wrap(err, "yaml")
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New("empty document")
	}

	return program(doc.Content[0])
}

func program(n *yaml.Node) (*ast.Program, error) {
	m, err := mapping(n, "classes")
	if err != nil {
		return nil, err
	}

	p := &ast.Program{}
	p.SetPos(m.line)

	cs, err := m.seq("classes")
	if err != nil {
		return nil, err
	}

	for _, x := range cs {
		c, err := class(x)
		if err != nil {
			return nil, err
		}

		p.Classes = append(p.Classes, c)
	}

	return p, nil
}

func class(n *yaml.Node) (*ast.Class, error) {
	m, err := mapping(n, "name", "extends", "fields", "methods")
	if err != nil {
		return nil, err
	}

	c := &ast.Class{}
	c.SetPos(m.line)

	if c.Name, err = m.name("name"); err != nil {
		return nil, err
	}

	if c.Super, err = m.str("extends"); err != nil {
		return nil, err
	}

	fs, err := m.seq("fields")
	if err != nil {
		return nil, err
	}

	for _, x := range fs {
		f := &ast.Field{}

		f.Type, f.Name, f.Line, err = typedName(x)
		if err != nil {
			return nil, err
		}

		c.Fields = append(c.Fields, f)
	}

	ms, err := m.seq("methods")
	if err != nil {
		return nil, err
	}

	for _, x := range ms {
		md, err := method(x)
		if err != nil {
			return nil, err
		}

		c.Methods = append(c.Methods, md)
	}

	return c, nil
}

func method(n *yaml.Node) (_ *ast.Method, err error) {
	m, err := mapping(n, "name", "type", "static", "formals", "body")
	if err != nil {
		return nil, err
	}

	md := &ast.Method{}
	md.SetPos(m.line)

	if md.Name, err = m.name("name"); err != nil {
		return nil, err
	}

	if md.Type, err = m.typ("type", "void"); err != nil {
		return nil, err
	}

	if md.Static, err = m.flag("static"); err != nil {
		return nil, err
	}

	fs, err := m.seq("formals")
	if err != nil {
		return nil, err
	}

	for _, x := range fs {
		f := &ast.Formal{}

		f.Type, f.Name, f.Line, err = typedName(x)
		if err != nil {
			return nil, err
		}

		md.Formals = append(md.Formals, f)
	}

	md.Body, err = stmts(m.keys["body"])
	if err != nil {
		return nil, err
	}

	return md, nil
}

func typedName(n *yaml.Node) (t *ast.Type, name string, line int, err error) {
	m, err := mapping(n, "type", "name")
	if err != nil {
		return
	}

	if t, err = m.typ("type", ""); err != nil {
		return
	}

	if name, err = m.name("name"); err != nil {
		return
	}

	return t, name, m.line, nil
}

func stmts(n *yaml.Node) ([]ast.Stmt, error) {
	if n == nil || isNull(n) {
		return nil, nil
	}

	if n.Kind != yaml.SequenceNode {
		return nil, syntax(n, "expected a statement list")
	}

	var ss []ast.Stmt

	for _, x := range n.Content {
		s, err := stmt(x)
		if err != nil {
			return nil, err
		}

		ss = append(ss, s)
	}

	return ss, nil
}

func stmt(n *yaml.Node) (s ast.Stmt, err error) {
	if n.Kind == yaml.ScalarNode {
		switch n.Value {
		case "break":
			s = &ast.Break{}
		case "continue":
			s = &ast.Continue{}
		default:
			return nil, syntax(n, "unknown statement: %v", n.Value)
		}

		s.(interface{ SetPos(int) }).SetPos(n.Line)

		return s, nil
	}

	kind, arg, line, err := tagged(n)
	if err != nil {
		return nil, err
	}

	switch kind {
	case "var":
		m, err := mapping(arg, "type", "name", "init")
		if err != nil {
			return nil, err
		}

		x := &ast.LocalVar{}

		if x.Type, err = m.typ("type", ""); err != nil {
			return nil, err
		}

		if x.Name, err = m.name("name"); err != nil {
			return nil, err
		}

		if x.Init, err = m.optExpr("init"); err != nil {
			return nil, err
		}

		s = x
	case "assign":
		m, err := mapping(arg, "lhs", "rhs")
		if err != nil {
			return nil, err
		}

		x := &ast.Assign{}

		if x.Lhs, err = m.expr("lhs"); err != nil {
			return nil, err
		}

		if x.Rhs, err = m.expr("rhs"); err != nil {
			return nil, err
		}

		s = x
	case "return":
		x := &ast.Return{}

		if !isNull(arg) {
			if x.Value, err = expr(arg); err != nil {
				return nil, err
			}
		}

		s = x
	case "if":
		m, err := mapping(arg, "cond", "then", "else")
		if err != nil {
			return nil, err
		}

		x := &ast.If{}

		if x.Cond, err = m.expr("cond"); err != nil {
			return nil, err
		}

		if x.Then, err = m.stmt("then"); err != nil {
			return nil, err
		}

		if e := m.keys["else"]; e != nil {
			if x.Else, err = stmt(e); err != nil {
				return nil, err
			}
		}

		s = x
	case "while":
		m, err := mapping(arg, "cond", "body")
		if err != nil {
			return nil, err
		}

		x := &ast.While{}

		if x.Cond, err = m.expr("cond"); err != nil {
			return nil, err
		}

		if x.Body, err = m.stmt("body"); err != nil {
			return nil, err
		}

		s = x
	case "break":
		s = &ast.Break{}
	case "continue":
		s = &ast.Continue{}
	case "block":
		x := &ast.Block{}

		if x.Stmts, err = stmts(arg); err != nil {
			return nil, err
		}

		s = x
	case "do":
		x := &ast.ExprStmt{}

		if x.Call, err = expr(arg); err != nil {
			return nil, err
		}

		s = x
	default:
		return nil, syntax(n, "unknown statement: %v", kind)
	}

	s.(interface{ SetPos(int) }).SetPos(line)

	return s, nil
}

func expr(n *yaml.Node) (x ast.Expr, err error) {
	if n.Kind == yaml.ScalarNode {
		return scalar(n)
	}

	kind, arg, line, err := tagged(n)
	if err != nil {
		return nil, err
	}

	switch kind {
	case "int":
		v, err := strconv.ParseInt(arg.Value, 0, 64)
		if err != nil {
			return nil, syntax(arg, "bad integer: %v", arg.Value)
		}

		x = &ast.Literal{Kind: ast.IntLit, Int: v}
	case "str":
		if arg.Kind != yaml.ScalarNode {
			return nil, syntax(arg, "expected a string")
		}

		x = &ast.Literal{Kind: ast.StringLit, Str: arg.Value}
	case "id":
		x = &ast.VarLocation{Name: arg.Value}
	case "dot":
		m, err := mapping(arg, "recv", "name")
		if err != nil {
			return nil, err
		}

		v := &ast.VarLocation{}

		if v.Recv, err = m.expr("recv"); err != nil {
			return nil, err
		}

		if v.Name, err = m.name("name"); err != nil {
			return nil, err
		}

		x = v
	case "idx":
		m, err := mapping(arg, "array", "index")
		if err != nil {
			return nil, err
		}

		v := &ast.ArrayLocation{}

		if v.Array, err = m.expr("array"); err != nil {
			return nil, err
		}

		if v.Index, err = m.expr("index"); err != nil {
			return nil, err
		}

		x = v
	case "new":
		if arg.Kind != yaml.ScalarNode || arg.Value == "" {
			return nil, syntax(arg, "expected a class name")
		}

		x = &ast.NewObject{Class: arg.Value}
	case "newarr":
		m, err := mapping(arg, "type", "size")
		if err != nil {
			return nil, err
		}

		v := &ast.NewArray{}

		if v.Elem, err = m.typ("type", ""); err != nil {
			return nil, err
		}

		if v.Size, err = m.expr("size"); err != nil {
			return nil, err
		}

		x = v
	case "len":
		v := &ast.Length{}

		if v.Array, err = expr(arg); err != nil {
			return nil, err
		}

		x = v
	case "un":
		op, args, err := operation(arg, 1)
		if err != nil {
			return nil, err
		}

		o, ok := unaryOps[op]
		if !ok {
			return nil, syntax(arg, "unknown unary operator: %v", op)
		}

		x = &ast.UnaryOp{Op: o, X: args[0]}
	case "bin":
		op, args, err := operation(arg, 2)
		if err != nil {
			return nil, err
		}

		if !binaryOps[ast.Op(op)] {
			return nil, syntax(arg, "unknown binary operator: %v", op)
		}

		x = &ast.BinaryOp{Op: ast.Op(op), L: args[0], R: args[1]}
	case "scall":
		m, err := mapping(arg, "class", "method", "args")
		if err != nil {
			return nil, err
		}

		v := &ast.StaticCall{}

		if v.Class, err = m.name("class"); err != nil {
			return nil, err
		}

		if v.Method, err = m.name("method"); err != nil {
			return nil, err
		}

		if v.Args, err = m.exprs("args"); err != nil {
			return nil, err
		}

		x = v
	case "vcall":
		m, err := mapping(arg, "recv", "method", "args")
		if err != nil {
			return nil, err
		}

		v := &ast.VirtualCall{}

		if v.Recv, err = m.optExpr("recv"); err != nil {
			return nil, err
		}

		if v.Method, err = m.name("method"); err != nil {
			return nil, err
		}

		if v.Args, err = m.exprs("args"); err != nil {
			return nil, err
		}

		x = v
	default:
		return nil, syntax(n, "unknown expression: %v", kind)
	}

	x.(interface{ SetPos(int) }).SetPos(line)

	return x, nil
}

func scalar(n *yaml.Node) (x ast.Expr, err error) {
	switch n.ShortTag() {
	case "!!int":
		v, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			return nil, syntax(n, "bad integer: %v", n.Value)
		}

		x = &ast.Literal{Kind: ast.IntLit, Int: v}
	case "!!bool":
		var v bool

		if err = n.Decode(&v); err != nil {
			return nil, syntax(n, "bad boolean: %v", n.Value)
		}

		k := ast.FalseLit
		if v {
			k = ast.TrueLit
		}

		x = &ast.Literal{Kind: k}
	case "!!null":
		x = &ast.Literal{Kind: ast.NullLit}
	case "!!str":
		if n.Value == "this" {
			x = &ast.This{}
		} else {
			x = &ast.VarLocation{Name: n.Value}
		}
	default:
		return nil, syntax(n, "unexpected scalar %v", n.Value)
	}

	x.(interface{ SetPos(int) }).SetPos(n.Line)

	return x, nil
}

// operation decodes [op, arg...].
func operation(n *yaml.Node, nargs int) (op string, args []ast.Expr, err error) {
	if n.Kind != yaml.SequenceNode || len(n.Content) != nargs+1 {
		return "", nil, syntax(n, "expected [op, %d operand(s)]", nargs)
	}

	op = n.Content[0].Value

	for _, a := range n.Content[1:] {
		x, err := expr(a)
		if err != nil {
			return "", nil, err
		}

		args = append(args, x)
	}

	return op, args, nil
}

// tagged splits a single-kind mapping like {while: ..., line: 3}.
func tagged(n *yaml.Node) (kind string, arg *yaml.Node, line int, err error) {
	if n.Kind != yaml.MappingNode {
		return "", nil, 0, syntax(n, "expected a mapping")
	}

	line = n.Line

	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]

		if k.Value == "line" {
			if err = v.Decode(&line); err != nil {
				return "", nil, 0, syntax(v, "bad line: %v", v.Value)
			}

			continue
		}

		if kind != "" {
			return "", nil, 0, syntax(k, "more than one node kind: %v and %v", kind, k.Value)
		}

		kind, arg = k.Value, v
	}

	if kind == "" {
		return "", nil, 0, syntax(n, "node kind missing")
	}

	return kind, arg, line, nil
}

// mapping checks n is a mapping with only the allowed keys and "line".
func mapping(n *yaml.Node, allowed ...string) (m entries, err error) {
	if n.Kind != yaml.MappingNode {
		return m, syntax(n, "expected a mapping")
	}

	m = entries{
		node: n,
		keys: map[string]*yaml.Node{},
		line: n.Line,
	}

outer:
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]

		if k.Value == "line" {
			if err = v.Decode(&m.line); err != nil {
				return m, syntax(v, "bad line: %v", v.Value)
			}

			continue
		}

		for _, a := range allowed {
			if a == k.Value {
				m.keys[a] = v
				continue outer
			}
		}

		return m, syntax(k, "unexpected key: %v", k.Value)
	}

	return m, nil
}

func (m entries) str(key string) (string, error) {
	v := m.keys[key]
	if v == nil || isNull(v) {
		return "", nil
	}

	if v.Kind != yaml.ScalarNode {
		return "", syntax(v, "%v: expected a scalar", key)
	}

	return v.Value, nil
}

func (m entries) name(key string) (string, error) {
	s, err := m.str(key)
	if err != nil {
		return "", err
	}

	if s == "" {
		return "", syntax(m.node, "%v is required", key)
	}

	return s, nil
}

func (m entries) flag(key string) (v bool, err error) {
	n := m.keys[key]
	if n == nil {
		return false, nil
	}

	if err = n.Decode(&v); err != nil {
		return false, syntax(n, "%v: expected a boolean", key)
	}

	return v, nil
}

// typ decodes a type spelling. An empty default makes the key required.
func (m entries) typ(key, def string) (*ast.Type, error) {
	s, err := m.str(key)
	if err != nil {
		return nil, err
	}

	line := m.line

	if s == "" {
		if def == "" {
			return nil, syntax(m.node, "%v is required", key)
		}

		s = def
	} else {
		line = m.keys[key].Line
	}

	t := ast.ParseType(s)
	t.SetPos(line)

	return t, nil
}

func (m entries) seq(key string) ([]*yaml.Node, error) {
	v := m.keys[key]
	if v == nil || isNull(v) {
		return nil, nil
	}

	if v.Kind != yaml.SequenceNode {
		return nil, syntax(v, "%v: expected a list", key)
	}

	return v.Content, nil
}

func (m entries) expr(key string) (ast.Expr, error) {
	v := m.keys[key]
	if v == nil {
		return nil, syntax(m.node, "%v is required", key)
	}

	return expr(v)
}

func (m entries) optExpr(key string) (ast.Expr, error) {
	v := m.keys[key]
	if v == nil {
		return nil, nil
	}

	return expr(v)
}

func (m entries) exprs(key string) ([]ast.Expr, error) {
	vs, err := m.seq(key)
	if err != nil {
		return nil, err
	}

	var r []ast.Expr

	for _, v := range vs {
		x, err := expr(v)
		if err != nil {
			return nil, err
		}

		r = append(r, x)
	}

	return r, nil
}

func (m entries) stmt(key string) (ast.Stmt, error) {
	v := m.keys[key]
	if v == nil {
		return nil, syntax(m.node, "%v is required", key)
	}

	return stmt(v)
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

func syntax(n *yaml.Node, format string, args ...any) SyntaxError {
	return SyntaxError{
		Line: n.Line,
		Msg:  fmt.Sprintf(format, args...),
	}
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}
