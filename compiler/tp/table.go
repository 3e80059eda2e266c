package tp

import (
	"fmt"
	"strings"
)

type (
	Table struct {
		arrays  map[string]*Array
		classes map[string]*Class

		order []*Class
	}

	UnknownTypeError struct {
		Name string
	}

	DuplicateClassError struct {
		Name string
	}

	UndefinedSuperclassError struct {
		Name  string
		Super string
	}
)

func NewTable() *Table {
	return &Table{
		arrays:  map[string]*Array{},
		classes: map[string]*Class{},
	}
}

// Resolve returns the canonical type for a type spelling.
func (t *Table) Resolve(name string) (Type, error) {
	switch name {
	case "int":
		return Int, nil
	case "boolean":
		return Boolean, nil
	case "string":
		return String, nil
	case "void":
		return Void, nil
	}

	if strings.HasSuffix(name, "[]") {
		return t.ResolveArray(name)
	}

	return t.ResolveClass(name)
}

// ResolveArray resolves T[] by resolving T first.
// The array type is created on first use and memoized by spelling.
func (t *Table) ResolveArray(name string) (*Array, error) {
	if a, ok := t.arrays[name]; ok {
		return a, nil
	}

	elemName, ok := strings.CutSuffix(name, "[]")
	if !ok || elemName == "" {
		return nil, NewUnknownType(name)
	}

	elem, err := t.Resolve(elemName)
	if err != nil {
		return nil, err
	}

	if elem == Void {
		return nil, NewUnknownType(name)
	}

	a := &Array{
		Elem: elem,
		name: name,
	}

	t.arrays[name] = a

	return a, nil
}

// ArrayOf is ResolveArray for an already resolved element type.
func (t *Table) ArrayOf(elem Type) (*Array, error) {
	return t.ResolveArray(elem.String() + "[]")
}

func (t *Table) ResolveClass(name string) (*Class, error) {
	c, ok := t.classes[name]
	if !ok {
		return nil, NewUnknownType(name)
	}

	return c, nil
}

// DeclareClass registers a class. The superclass, if any, must be declared before.
func (t *Table) DeclareClass(name, super string) (*Class, error) {
	if _, ok := t.classes[name]; ok {
		return nil, DuplicateClassError{Name: name}
	}

	c := &Class{Name: name}

	if super != "" {
		s, ok := t.classes[super]
		if !ok {
			return nil, UndefinedSuperclassError{Name: name, Super: super}
		}

		c.Super = s
	}

	t.classes[name] = c
	t.order = append(t.order, c)

	return c, nil
}

// IsArray reports whether x is an array type memoized by this table.
func (t *Table) IsArray(x Type) bool {
	a, ok := x.(*Array)
	if !ok {
		return false
	}

	return t.arrays[a.name] == a
}

// Classes returns declared classes in declaration order.
func (t *Table) Classes() []*Class {
	return t.order
}

func NewUnknownType(name string) UnknownTypeError {
	return UnknownTypeError{Name: name}
}

func (e UnknownTypeError) Error() string {
	return fmt.Sprintf("undefined type: %v", e.Name)
}

func (e DuplicateClassError) Error() string {
	return fmt.Sprintf("class already defined: %v", e.Name)
}

func (e UndefinedSuperclassError) Error() string {
	return fmt.Sprintf("super class is undefined: %v (extended by %v)", e.Super, e.Name)
}
