package format

import (
	"context"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/slowlang/oolc/compiler/ast"
)

// Format appends a source-like rendering of x to b.
// x is a *ast.Program, *ast.Class, ast.Stmt or ast.Expr.
func Format(ctx context.Context, b []byte, x any) ([]byte, error) {
	return format(ctx, b, x, 0)
}

func format(ctx context.Context, b []byte, x any, d int) ([]byte, error) {
	switch x := x.(type) {
	case *ast.Program:
		return formatProgram(ctx, b, x, d)
	case *ast.Class:
		return formatClass(ctx, b, x, d)
	case ast.Stmt:
		return formatStmt(ctx, b, x, d)
	case ast.Expr:
		return formatExpr(ctx, b, x, d)
	default:
		return nil, errors.New("unsupported type: %T", x)
	}
}

func formatProgram(ctx context.Context, b []byte, x *ast.Program, d int) (_ []byte, err error) {
	for i, c := range x.Classes {
		if i != 0 {
			b = append(b, '\n')
		}

		b, err = formatClass(ctx, b, c, d)
		if err != nil {
			return nil, errors.Wrap(err, "class %v", c.Name)
		}
	}

	return b, nil
}

func formatClass(ctx context.Context, b []byte, x *ast.Class, d int) (_ []byte, err error) {
	b = app(b, d, "class %v", x.Name)

	if x.Super != "" {
		b = app(b, 0, " extends %v", x.Super)
	}

	b = append(b, " {\n"...)

	for _, f := range x.Fields {
		b = app(b, d+1, "%v %v;\n", f.Type, f.Name)
	}

	for _, m := range x.Methods {
		b = append(b, '\n')

		b, err = formatMethod(ctx, b, m, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "method %v", m.Name)
		}
	}

	b = app(b, d, "}\n")

	return b, nil
}

func formatMethod(ctx context.Context, b []byte, x *ast.Method, d int) (_ []byte, err error) {
	b = app(b, d, "")

	if x.Static {
		b = append(b, "static "...)
	}

	b = app(b, 0, "%v %v(", x.Type, x.Name)

	for i, f := range x.Formals {
		if i != 0 {
			b = append(b, ", "...)
		}

		b = app(b, 0, "%v %v", f.Type, f.Name)
	}

	b = append(b, ") {\n"...)

	for _, s := range x.Body {
		b, err = formatStmt(ctx, b, s, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "body")
		}
	}

	b = app(b, d, "}\n")

	return b, nil
}

func formatStmt(ctx context.Context, b []byte, s ast.Stmt, d int) (_ []byte, err error) {
	switch s := s.(type) {
	case *ast.Return:
		if s.Value == nil {
			return app(b, d, "return;\n"), nil
		}

		b = app(b, d, "return ")

		b, err = formatExpr(ctx, b, s.Value, d)
		if err != nil {
			return nil, errors.Wrap(err, "expr")
		}

		b = append(b, ";\n"...)
	case *ast.Assign:
		b = app(b, d, "")

		b, err = formatExpr(ctx, b, s.Lhs, d)
		if err != nil {
			return nil, errors.Wrap(err, "lhs")
		}

		b = append(b, " = "...)

		b, err = formatExpr(ctx, b, s.Rhs, d)
		if err != nil {
			return nil, errors.Wrap(err, "rhs")
		}

		b = append(b, ";\n"...)
	case *ast.LocalVar:
		b = app(b, d, "%v %v", s.Type, s.Name)

		if s.Init != nil {
			b = append(b, " = "...)

			b, err = formatExpr(ctx, b, s.Init, d)
			if err != nil {
				return nil, errors.Wrap(err, "init")
			}
		}

		b = append(b, ";\n"...)
	case *ast.ExprStmt:
		b = app(b, d, "")

		b, err = formatExpr(ctx, b, s.Call, d)
		if err != nil {
			return nil, errors.Wrap(err, "call")
		}

		b = append(b, ";\n"...)
	case *ast.If:
		b = app(b, d, "if (")

		b, err = formatExpr(ctx, b, s.Cond, d)
		if err != nil {
			return nil, errors.Wrap(err, "cond")
		}

		b = append(b, ")"...)

		b, err = formatBody(ctx, b, s.Then, d)
		if err != nil {
			return nil, errors.Wrap(err, "then")
		}

		if s.Else != nil {
			b = app(b, d, "else")

			b, err = formatBody(ctx, b, s.Else, d)
			if err != nil {
				return nil, errors.Wrap(err, "else")
			}
		}
	case *ast.While:
		b = app(b, d, "while (")

		b, err = formatExpr(ctx, b, s.Cond, d)
		if err != nil {
			return nil, errors.Wrap(err, "cond")
		}

		b = append(b, ")"...)

		b, err = formatBody(ctx, b, s.Body, d)
		if err != nil {
			return nil, errors.Wrap(err, "body")
		}
	case *ast.Break:
		b = app(b, d, "break;\n")
	case *ast.Continue:
		b = app(b, d, "continue;\n")
	case *ast.Block:
		b = app(b, d, "{\n")

		for _, x := range s.Stmts {
			b, err = formatStmt(ctx, b, x, d+1)
			if err != nil {
				return nil, err
			}
		}

		b = app(b, d, "}\n")
	default:
		return nil, errors.New("unsupported stmt: %T", s)
	}

	return b, nil
}

// formatBody puts a block on the same line and anything else on the next one.
func formatBody(ctx context.Context, b []byte, s ast.Stmt, d int) (_ []byte, err error) {
	blk, ok := s.(*ast.Block)
	if !ok {
		b = append(b, '\n')

		return formatStmt(ctx, b, s, d+1)
	}

	b = append(b, " {\n"...)

	for _, x := range blk.Stmts {
		b, err = formatStmt(ctx, b, x, d+1)
		if err != nil {
			return nil, err
		}
	}

	b = app(b, d, "}\n")

	return b, nil
}

func formatExpr(ctx context.Context, b []byte, x ast.Expr, d int) (_ []byte, err error) {
	switch x := x.(type) {
	case *ast.Literal:
		switch x.Kind {
		case ast.IntLit:
			b = app(b, 0, "%d", x.Int)
		case ast.StringLit:
			b = app(b, 0, "%q", x.Str)
		case ast.TrueLit:
			b = append(b, "true"...)
		case ast.FalseLit:
			b = append(b, "false"...)
		case ast.NullLit:
			b = append(b, "null"...)
		default:
			return nil, errors.New("unsupported literal: %v", x.Kind)
		}
	case *ast.This:
		b = append(b, "this"...)
	case *ast.VarLocation:
		if x.Recv != nil {
			b, err = formatOperand(ctx, b, x.Recv, d)
			if err != nil {
				return nil, errors.Wrap(err, "receiver")
			}

			b = append(b, '.')
		}

		b = append(b, x.Name...)
	case *ast.ArrayLocation:
		b, err = formatOperand(ctx, b, x.Array, d)
		if err != nil {
			return nil, errors.Wrap(err, "array")
		}

		b = append(b, '[')

		b, err = formatExpr(ctx, b, x.Index, d)
		if err != nil {
			return nil, errors.Wrap(err, "index")
		}

		b = append(b, ']')
	case *ast.Length:
		b, err = formatOperand(ctx, b, x.Array, d)
		if err != nil {
			return nil, errors.Wrap(err, "array")
		}

		b = append(b, ".length"...)
	case *ast.NewObject:
		b = app(b, 0, "new %v()", x.Class)
	case *ast.NewArray:
		b = app(b, 0, "new %v[", x.Elem)

		b, err = formatExpr(ctx, b, x.Size, d)
		if err != nil {
			return nil, errors.Wrap(err, "size")
		}

		b = append(b, ']')
	case *ast.UnaryOp:
		b = append(b, string(x.Op)...)

		b, err = formatOperand(ctx, b, x.X, d)
		if err != nil {
			return nil, errors.Wrap(err, "operand")
		}
	case *ast.BinaryOp:
		b, err = formatOperand(ctx, b, x.L, d)
		if err != nil {
			return nil, errors.Wrap(err, "left")
		}

		b = app(b, 0, " %v ", x.Op)

		b, err = formatOperand(ctx, b, x.R, d)
		if err != nil {
			return nil, errors.Wrap(err, "right")
		}
	case *ast.StaticCall:
		b = app(b, 0, "%v.%v", x.Class, x.Method)

		b, err = formatArgs(ctx, b, x.Args, d)
		if err != nil {
			return nil, err
		}
	case *ast.VirtualCall:
		if x.Recv != nil {
			b, err = formatOperand(ctx, b, x.Recv, d)
			if err != nil {
				return nil, errors.Wrap(err, "receiver")
			}

			b = append(b, '.')
		}

		b = append(b, x.Method...)

		b, err = formatArgs(ctx, b, x.Args, d)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("unsupported expr: %T", x)
	}

	return b, nil
}

// formatOperand parenthesizes operator expressions.
func formatOperand(ctx context.Context, b []byte, x ast.Expr, d int) (_ []byte, err error) {
	switch x.(type) {
	case *ast.BinaryOp, *ast.UnaryOp:
	default:
		return formatExpr(ctx, b, x, d)
	}

	b = append(b, '(')

	b, err = formatExpr(ctx, b, x, d)
	if err != nil {
		return nil, err
	}

	return append(b, ')'), nil
}

func formatArgs(ctx context.Context, b []byte, args []ast.Expr, d int) (_ []byte, err error) {
	b = append(b, '(')

	for i, a := range args {
		if i != 0 {
			b = append(b, ", "...)
		}

		b, err = formatExpr(ctx, b, a, d)
		if err != nil {
			return nil, errors.Wrap(err, "arg %d", i)
		}
	}

	return append(b, ')'), nil
}

func app(b []byte, d int, f string, args ...any) []byte {
	const tabs = "\t\t\t\t\t\t\t\t\t\t\t\t\t\t\t"
	b = append(b, tabs[:d]...)
	b = hfmt.Appendf(b, f, args...)
	return b
}
