package sym

import (
	"github.com/slowlang/oolc/compiler/tp"
)

type (
	// Symbol is one of *Field, *Param, *Local, *Method, *Class.
	Symbol interface {
		Sym() *Base
	}

	Base struct {
		Name string
		Type tp.Type
	}

	// Field is an instance field. Fields are zero-initialized on
	// allocation so they count as assigned.
	Field struct {
		Base

		Owner  *Class
		Offset int
	}

	Param struct {
		Base

		Offset int
	}

	Local struct {
		Base

		Offset   int
		Assigned bool
	}

	// Method Type is its return type.
	Method struct {
		Base

		Static bool
		Params []*Param

		Owner *Class
		Slot  int // -1 for static methods

		Overrides *Method
		Entry     bool
	}
)

func (b *Base) Sym() *Base { return b }

func NewField(name string, t tp.Type) *Field {
	return &Field{Base: Base{Name: name, Type: t}}
}

func NewParam(name string, t tp.Type, off int) *Param {
	return &Param{Base: Base{Name: name, Type: t}, Offset: off}
}

func NewLocal(name string, t tp.Type, off int, assigned bool) *Local {
	return &Local{Base: Base{Name: name, Type: t}, Offset: off, Assigned: assigned}
}

func NewMethod(name string, ret tp.Type, static bool, params []*Param) *Method {
	return &Method{
		Base:   Base{Name: name, Type: ret},
		Static: static,
		Params: params,
		Slot:   -1,
	}
}

// ParamTypes lists declared parameter types in order.
func (m *Method) ParamTypes() []tp.Type {
	r := make([]tp.Type, len(m.Params))

	for i, p := range m.Params {
		r[i] = p.Type
	}

	return r
}

// SameSignature reports whether x and m have identical return and parameter types.
func (m *Method) SameSignature(x *Method) bool {
	if m.Type != x.Type || len(m.Params) != len(x.Params) {
		return false
	}

	for i, p := range m.Params {
		if p.Type != x.Params[i].Type {
			return false
		}
	}

	return true
}
