package sym

import (
	"github.com/slowlang/oolc/compiler/tp"
)

// LibraryName is the class of external runtime primitives.
const LibraryName = "Library"

type libMethod struct {
	name   string
	ret    string
	params []string
}

var library = []libMethod{
	{"println", "void", []string{"string"}},
	{"print", "void", []string{"string"}},
	{"printi", "void", []string{"int"}},
	{"printb", "void", []string{"boolean"}},
	{"readi", "int", nil},
	{"readln", "string", nil},
	{"eof", "boolean", nil},
	{"stoi", "int", []string{"string", "int"}},
	{"itos", "string", []string{"int"}},
	{"stoa", "int[]", []string{"string"}},
	{"atos", "string", []string{"int[]"}},
	{"random", "int", []string{"int"}},
	{"time", "int", nil},
	{"exit", "void", []string{"int"}},
}

var libParamNames = []string{"a", "b"}

// NewLibrary declares the Library class in types and returns its symbol.
// All its methods are static.
func NewLibrary(types *tp.Table, word int) (*Class, error) {
	ct, err := types.DeclareClass(LibraryName, "")
	if err != nil {
		return nil, err
	}

	c := NewClass(ct, nil, word)

	for _, lm := range library {
		ret, err := types.Resolve(lm.ret)
		if err != nil {
			return nil, err
		}

		var ps []*Param

		for i, pt := range lm.params {
			t, err := types.Resolve(pt)
			if err != nil {
				return nil, err
			}

			ps = append(ps, NewParam(libParamNames[i], t, i))
		}

		err = c.AddMethod(NewMethod(lm.name, ret, true, ps))
		if err != nil {
			return nil, err
		}
	}

	return c, nil
}
