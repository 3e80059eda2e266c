package lir

import (
	"context"
	"strings"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/tlog"

	"github.com/slowlang/oolc/compiler/ast"
	"github.com/slowlang/oolc/compiler/check"
	"github.com/slowlang/oolc/compiler/diag"
	"github.com/slowlang/oolc/compiler/sym"
	"github.com/slowlang/oolc/compiler/tp"
	"github.com/slowlang/oolc/compiler/typing"
)

type (
	Options struct {
		WordSize int

		// ShortCircuit skips the right operand of && and || once the left one decides.
		ShortCircuit bool
	}

	// translator is the state of one translation. It is never reused.
	translator struct {
		Options

		info *check.Info
		syms *sym.Table
		res  typing.Resolver

		class  *sym.Class
		method *sym.Method

		strs  map[string]string
		order []string

		labels int
		loop   *loop
	}

	loop struct {
		test, end string
	}
)

// EntryLabel is the label of the program entry point.
const EntryLabel = "_ic_main"

// VoidResult is returned from void methods.
const VoidResult = "9999"

var DefaultOptions = Options{WordSize: 4}

// Translate lowers a checked program into LIR text appended to b.
// info must come from a successful check.Check of the same prog.
func Translate(ctx context.Context, b []byte, prog *ast.Program, info *check.Info, opts Options) (_ []byte, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "lir: translate", "classes", len(prog.Classes), "short_circuit", opts.ShortCircuit)
	defer tr.Finish("err", &err)

	defer diag.Recover(&err)

	if opts.WordSize == 0 {
		opts.WordSize = DefaultOptions.WordSize
	}

	t := &translator{
		Options: opts,
		info:    info,
		syms:    sym.NewTable(),
		strs:    map[string]string{},
	}

	t.res = typing.Resolver{
		Types: info.Types,
		Syms:  t.syms,
	}

	t.bindGlobal(info.Library)

	for _, cs := range info.Classes {
		t.bindGlobal(cs)
	}

	var code, main []byte

	for i, cl := range prog.Classes {
		if i >= len(info.Classes) || info.Classes[i].Name != cl.Name {
			diag.Internalf("class %v is not in check info", cl.Name)
		}

		code, main = t.classBody(ctx, code, main, cl, info.Classes[i])
	}

	st := len(b)

	b = t.header(b)
	b = t.stringPool(b)
	b = errorLiterals(b)
	b = t.dispatchTables(ctx, b)
	b = runtimeChecks(b)

	b = append(b, "\n# methods #\n"...)
	b = append(b, code...)

	b = append(b, "\n# main #\n"...)
	b = append(b, main...)

	if tr.If("dump_lir") {
		tr.Printw("lir", "text", b[st:])
	}

	return b, nil
}

func (t *translator) bindGlobal(cs *sym.Class) {
	if err := t.syms.Add(cs); err != nil {
		diag.Internalf("bind class %v: %v", cs.Name, err)
	}
}

func (t *translator) header(b []byte) []byte {
	b = append(b, "# LIR\n"...)

	for _, cs := range t.info.Classes {
		b = hfmt.Appendf(b, "# class %s: %d bytes, %d slots\n", cs.Name, cs.BytesInMemory(), cs.Slots())
	}

	return b
}

// str returns the pooled name of a string literal.
func (t *translator) str(s string) string {
	if name, ok := t.strs[s]; ok {
		return name
	}

	name := string(hfmt.Appendf(nil, "str%d", len(t.order)+1))

	t.strs[s] = name
	t.order = append(t.order, s)

	return name
}

func (t *translator) stringPool(b []byte) []byte {
	b = append(b, "\n# string literals #\n"...)

	for _, s := range t.order {
		b = hfmt.Appendf(b, "%s: \"%s\"\n", t.strs[s], escape(s))
	}

	return b
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\t", `\t`,
	"\r", `\r`,
)

func escape(s string) string { return escaper.Replace(s) }

func (t *translator) dispatchTables(ctx context.Context, b []byte) []byte {
	tr := tlog.SpanFromContext(ctx)

	b = append(b, "\n# dispatch tables #\n"...)

	for _, cs := range t.info.Classes {
		d := cs.Dispatch()

		b = hfmt.Appendf(b, "%s: [", dispatchLabel(cs))

		for i, m := range d {
			if i != 0 {
				b = append(b, ',')
			}

			b = append(b, methodLabel(m)...)
		}

		b = append(b, "]\n"...)

		if tr.If("dump_dispatch") {
			tr.Printw("dispatch table", "class", cs.Name, "slots", len(d), "overridden", cs.Overridden())
		}
	}

	return b
}

func dispatchLabel(cs *sym.Class) string {
	return "_DV_" + cs.Name
}

func methodLabel(m *sym.Method) string {
	if m.Entry {
		return EntryLabel
	}

	return "_" + m.Owner.Name + "_" + m.Name
}

// slot names a local or parameter bound at depth.
func slot(depth int, name string) string {
	return string(hfmt.Appendf(nil, "v%d_%s", depth, name))
}

// newLabel reserves a label number for one construct.
func (t *translator) newLabel() int {
	t.labels++

	return t.labels
}

func label(kind string, n int) string {
	return string(hfmt.Appendf(nil, "_%s_label%d", kind, n))
}

func (t *translator) classBody(ctx context.Context, code, main []byte, cl *ast.Class, cs *sym.Class) ([]byte, []byte) {
	defer t.syms.EnterScope()()

	t.class = cs
	t.res.Class = cs

	defer func() {
		t.class = nil
		t.res.Class = nil
	}()

	check.BindMembers(t.syms, cs)

	for _, m := range cl.Methods {
		ms, ok := cs.Method(m.Name)
		if !ok {
			diag.Internalf("method %v.%v not declared", cs.Name, m.Name)
		}

		if ms.Entry {
			main = t.methodBody(ctx, main, m, ms)
		} else {
			code = t.methodBody(ctx, code, m, ms)
		}
	}

	return code, main
}

func (t *translator) methodBody(ctx context.Context, b []byte, m *ast.Method, ms *sym.Method) []byte {
	defer t.syms.EnterScope()()

	t.method = ms
	t.res.Method = ms
	t.loop = nil

	defer func() {
		t.method = nil
		t.res.Method = nil
	}()

	check.BindParams(t.syms, ms)

	st := len(b)

	b = hfmt.Appendf(b, "\n%s:\n", methodLabel(ms))

	for _, s := range m.Body {
		b = t.stmt(b, s)
	}

	if ms.Type == tp.Void && !check.Returns(m.Body) {
		b = hfmt.Appendf(b, "\tReturn %s\n", VoidResult)
	}

	tlog.SpanFromContext(ctx).V("method").Printw("method lowered", "class", t.class.Name, "method", ms.Name, "label", methodLabel(ms), "bytes", len(b)-st)

	return b
}
