package check

import (
	"context"

	"tlog.app/go/tlog"

	"github.com/slowlang/oolc/compiler/ast"
	"github.com/slowlang/oolc/compiler/diag"
	"github.com/slowlang/oolc/compiler/sym"
	"github.com/slowlang/oolc/compiler/tp"
	"github.com/slowlang/oolc/compiler/typing"
)

type (
	Options struct {
		WordSize int

		// StrictOverride requires an override to keep the overridden signature.
		StrictOverride bool
	}

	// Info is what later passes need from a successful check.
	// Class symbols are immutable from here on.
	Info struct {
		Types   *tp.Table
		Library *sym.Class
		Classes []*sym.Class // program classes in declaration order
		Entry   *sym.Method
	}

	checker struct {
		Options

		types *tp.Table
		syms  *sym.Table
		info  *Info

		res typing.Resolver

		class  *sym.Class
		method *sym.Method

		loops  int
		locals int
	}
)

var DefaultOptions = Options{WordSize: 4}

// Check validates prog. It returns the first semantic error as *diag.Error.
func Check(ctx context.Context, prog *ast.Program, opts Options) (info *Info, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "check program", "classes", len(prog.Classes))
	defer tr.Finish("err", &err)

	if opts.WordSize == 0 {
		opts.WordSize = DefaultOptions.WordSize
	}

	c := &checker{
		Options: opts,
		types:   tp.NewTable(),
		syms:    sym.NewTable(),
	}

	c.info = &Info{Types: c.types}

	c.res = typing.Resolver{
		Types: c.types,
		Syms:  c.syms,
		OnUse: c.use,
	}

	err = c.program(ctx, prog)
	if err != nil {
		return nil, err
	}

	if tr.If("dump_classes") {
		for _, cl := range c.info.Classes {
			tr.Printw("class", "name", cl.Name, "fields", cl.FieldCountRec(), "bytes", cl.BytesInMemory(), "slots", cl.Slots(), "overridden", cl.Overridden())
		}
	}

	return c.info, nil
}

func (c *checker) program(ctx context.Context, prog *ast.Program) (err error) {
	lib, err := sym.NewLibrary(c.types, c.WordSize)
	if err != nil {
		diag.Internalf("library: %v", err)
	}

	c.info.Library = lib
	c.addGlobal(lib)

	for _, cl := range prog.Classes {
		if _, err := c.types.DeclareClass(cl.Name, cl.Super); err != nil {
			return diag.At(cl.Line, err)
		}
	}

	for _, cl := range prog.Classes {
		cs, err := c.declareMembers(cl)
		if err != nil {
			return err
		}

		c.info.Classes = append(c.info.Classes, cs)
		c.addGlobal(cs)

		tlog.SpanFromContext(ctx).V("class").Printw("class declared", "name", cs.Name, "fields", len(cs.Fields()), "methods", len(cs.Methods()))
	}

	if c.info.Entry == nil {
		return diag.Errorf(prog.Line, "no main method found")
	}

	for i, cl := range prog.Classes {
		err = c.classBody(ctx, cl, c.info.Classes[i])
		if err != nil {
			return err
		}
	}

	return nil
}

func (c *checker) addGlobal(cs *sym.Class) {
	if err := c.syms.Add(cs); err != nil {
		diag.Internalf("class %v bound twice: %v", cs.Name, err)
	}
}

// declareMembers builds the class symbol: field offsets, method slots, entry point.
func (c *checker) declareMembers(cl *ast.Class) (*sym.Class, error) {
	ct, err := c.types.ResolveClass(cl.Name)
	if err != nil {
		diag.Internalf("class %v not declared: %v", cl.Name, err)
	}

	var super *sym.Class
	if cl.Super != "" {
		var ok bool

		super, ok = c.syms.Class(cl.Super)
		if !ok {
			return nil, diag.Errorf(cl.Line, "super class is undefined: %v", cl.Super)
		}
	}

	cs := sym.NewClass(ct, super, c.WordSize)

	for _, f := range cl.Fields {
		t, err := c.resolveType(f.Type)
		if err != nil {
			return nil, err
		}

		if t == tp.Void {
			return nil, diag.Errorf(f.Line, "field %v cannot be of type void", f.Name)
		}

		if err = cs.AddField(sym.NewField(f.Name, t)); err != nil {
			return nil, diag.At(f.Line, err)
		}
	}

	for _, m := range cl.Methods {
		ms, err := c.methodSymbol(m)
		if err != nil {
			return nil, err
		}

		if err = cs.AddMethod(ms); err != nil {
			return nil, diag.At(m.Line, err)
		}

		if o := ms.Overrides; o != nil && c.StrictOverride && !ms.SameSignature(o) {
			return nil, diag.Errorf(m.Line, "method %v overrides %v.%v with a different signature", m.Name, o.Owner.Name, o.Name)
		}

		if m.IsEntryPoint() {
			if c.info.Entry != nil {
				return nil, diag.Errorf(m.Line, "main function already defined")
			}

			ms.Entry = true
			c.info.Entry = ms
		}
	}

	return cs, nil
}

func (c *checker) methodSymbol(m *ast.Method) (*sym.Method, error) {
	ret, err := c.resolveType(m.Type)
	if err != nil {
		return nil, err
	}

	ps := make([]*sym.Param, len(m.Formals))

	for i, f := range m.Formals {
		for _, p := range ps[:i] {
			if p.Name == f.Name {
				return nil, diag.Errorf(f.Line, "parameter with this name already exists: %v", f.Name)
			}
		}

		t, err := c.resolveType(f.Type)
		if err != nil {
			return nil, err
		}

		if t == tp.Void {
			return nil, diag.Errorf(f.Line, "parameter %v cannot be of type void", f.Name)
		}

		ps[i] = sym.NewParam(f.Name, t, i)
	}

	return sym.NewMethod(m.Name, ret, m.Static, ps), nil
}

func (c *checker) classBody(ctx context.Context, cl *ast.Class, cs *sym.Class) (err error) {
	defer c.syms.EnterScope()()

	c.class = cs
	c.res.Class = cs

	defer func() {
		c.class = nil
		c.res.Class = nil
	}()

	BindMembers(c.syms, cs)

	for _, m := range cl.Methods {
		ms, ok := cs.Method(m.Name)
		if !ok {
			diag.Internalf("method %v.%v not declared", cs.Name, m.Name)
		}

		err = c.methodBody(ctx, m, ms)
		if err != nil {
			return err
		}
	}

	return nil
}

// BindMembers binds every field and visible method of cs in the current frame.
func BindMembers(st *sym.Table, cs *sym.Class) {
	fs, ms := cs.Members()

	for _, f := range fs {
		if err := st.Add(f); err != nil {
			diag.Internalf("bind field %v.%v: %v", cs.Name, f.Name, err)
		}
	}

	for _, m := range ms {
		if err := st.Add(m); err != nil {
			diag.Internalf("bind method %v.%v: %v", cs.Name, m.Name, err)
		}
	}
}

// BindParams binds method parameters in the current frame.
func BindParams(st *sym.Table, ms *sym.Method) {
	for _, p := range ms.Params {
		if err := st.Add(p); err != nil {
			diag.Internalf("bind param %v.%v: %v", ms.Name, p.Name, err)
		}
	}
}

func (c *checker) methodBody(ctx context.Context, m *ast.Method, ms *sym.Method) (err error) {
	defer c.syms.EnterScope()()

	c.method = ms
	c.res.Method = ms
	c.locals = 0
	c.loops = 0

	defer func() {
		c.method = nil
		c.res.Method = nil
	}()

	BindParams(c.syms, ms)

	for _, s := range m.Body {
		err = c.stmt(s)
		if err != nil {
			return err
		}
	}

	if ms.Type != tp.Void && !Returns(m.Body) {
		return diag.Errorf(m.Line, "missing return statement in method %v", m.Name)
	}

	tlog.SpanFromContext(ctx).V("method").Printw("method checked", "class", c.class.Name, "method", ms.Name, "locals", c.locals)

	return nil
}

func (c *checker) resolveType(t *ast.Type) (tp.Type, error) {
	x, err := c.types.Resolve(t.String())
	if err != nil {
		return nil, diag.At(t.Line, err)
	}

	return x, nil
}

func (c *checker) use(x *ast.VarLocation, l *sym.Local) error {
	if !l.Assigned {
		return diag.Errorf(x.Line, "variable %v might not have been initialized", x.Name)
	}

	return nil
}
