package tp

import "strings"

type (
	// Type is one of *Primitive, *Null, *Array, *Class.
	// Types are canonical: compare them with ==.
	Type interface {
		String() string

		isType()
	}

	Kind int

	Primitive struct {
		Kind Kind
	}

	Null struct{}

	Array struct {
		Elem Type

		name string
	}

	Class struct {
		Name  string
		Super *Class
	}
)

const (
	KindInt Kind = iota
	KindBoolean
	KindString
	KindVoid
)

var (
	Int     = &Primitive{Kind: KindInt}
	Boolean = &Primitive{Kind: KindBoolean}
	String  = &Primitive{Kind: KindString}
	Void    = &Primitive{Kind: KindVoid}

	NullType = &Null{}
)

func (*Primitive) isType() {}
func (*Null) isType()      {}
func (*Array) isType()     {}
func (*Class) isType()     {}

func (x *Primitive) String() string {
	switch x.Kind {
	case KindInt:
		return "int"
	case KindBoolean:
		return "boolean"
	case KindString:
		return "string"
	case KindVoid:
		return "void"
	default:
		return "primitive"
	}
}

func (*Null) String() string { return "null" }

func (x *Array) String() string { return x.name }

func (x *Class) String() string { return x.Name }

// Rank is the number of array dimensions.
func (x *Array) Rank() int {
	return strings.Count(x.name, "[]")
}

// Base returns the innermost non-array element type.
func (x *Array) Base() Type {
	var t Type = x

	for {
		a, ok := t.(*Array)
		if !ok {
			return t
		}

		t = a.Elem
	}
}

// IsSubclassOf reports whether d is x or one of its ancestors.
func (x *Class) IsSubclassOf(d *Class) bool {
	for c := x; c != nil; c = c.Super {
		if c == d {
			return true
		}
	}

	return false
}

// Assignable reports whether a value of type actual may be stored
// into a location declared as declared.
func Assignable(actual, declared Type) bool {
	if actual == declared {
		return true
	}

	switch a := actual.(type) {
	case *Null:
		_, ok := declared.(*Class)
		return ok
	case *Class:
		d, ok := declared.(*Class)
		return ok && a.IsSubclassOf(d)
	}

	return false
}

// Like is Assignable in either direction.
func Like(a, b Type) bool {
	return Assignable(a, b) || Assignable(b, a)
}
