package compiler

import (
	"context"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/oolc/compiler/ast"
	"github.com/slowlang/oolc/compiler/check"
	"github.com/slowlang/oolc/compiler/decode"
	"github.com/slowlang/oolc/compiler/diag"
	"github.com/slowlang/oolc/compiler/lir"
)

type (
	Options struct {
		// WordSize is the size in bytes of a field, an array element and the dispatch table pointer.
		WordSize int

		ShortCircuit   bool
		StrictOverride bool
	}
)

var DefaultOptions = Options{WordSize: 4}

// ParseFile reads a YAML program tree.
func ParseFile(ctx context.Context, name string) (*ast.Program, error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	prog, err := decode.Decode(text)
	if err != nil {
		return nil, errors.Wrap(err, "decode %v", name)
	}

	return prog, nil
}

// Check runs semantic checks only.
func Check(ctx context.Context, prog *ast.Program, opts Options) (info *check.Info, err error) {
	defer diag.Recover(&err)

	return check.Check(ctx, prog, opts.check())
}

// Compile checks prog and lowers it to LIR text.
// A semantic error is returned as *diag.Error, a compiler bug as *diag.InternalError.
func Compile(ctx context.Context, prog *ast.Program, opts Options) (obj []byte, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile", "word_size", opts.WordSize)
	defer tr.Finish("err", &err)

	defer diag.Recover(&err)

	info, err := check.Check(ctx, prog, opts.check())
	if err != nil {
		return nil, err
	}

	obj, err = lir.Translate(ctx, nil, prog, info, opts.lir())
	if err != nil {
		return nil, err
	}

	return obj, nil
}

func CompileFile(ctx context.Context, name string, opts Options) (obj []byte, err error) {
	prog, err := ParseFile(ctx, name)
	if err != nil {
		return nil, err
	}

	return Compile(ctx, prog, opts)
}

func (o Options) check() check.Options {
	return check.Options{
		WordSize:       o.WordSize,
		StrictOverride: o.StrictOverride,
	}
}

func (o Options) lir() lir.Options {
	return lir.Options{
		WordSize:     o.WordSize,
		ShortCircuit: o.ShortCircuit,
	}
}
