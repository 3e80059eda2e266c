package sym

import (
	"fmt"

	"github.com/slowlang/oolc/compiler/set"
	"github.com/slowlang/oolc/compiler/tp"
)

type (
	// Class holds members declared by this class only.
	// Inherited members are reached through Super.
	Class struct {
		Base

		Super *Class

		fields  map[string]*Field
		forder  []*Field
		methods map[string]*Method
		morder  []*Method

		nslots     int
		overridden set.Bitmap

		word int
	}

	MemberError struct {
		Class  string
		Name   string
		Reason string
	}
)

func NewClass(t *tp.Class, super *Class, word int) *Class {
	c := &Class{
		Base:    Base{Name: t.Name, Type: t},
		Super:   super,
		fields:  map[string]*Field{},
		methods: map[string]*Method{},
		word:    word,
	}

	if super != nil {
		c.nslots = super.nslots
	}

	return c
}

func (c *Class) ClassType() *tp.Class {
	return c.Type.(*tp.Class)
}

// AddField appends a field. The name must be unused by every field and
// method of the class and its ancestors.
func (c *Class) AddField(f *Field) error {
	if _, ok := c.FieldRec(f.Name); ok {
		return c.memberError(f.Name, "field name already in use")
	}

	if _, ok := c.MethodRec(f.Name); ok {
		return c.memberError(f.Name, "field name already in use by a method")
	}

	f.Owner = c
	f.Offset = c.FieldCountRec() + 1

	c.fields[f.Name] = f
	c.forder = append(c.forder, f)

	return nil
}

// AddMethod registers a method and assigns its dispatch slot.
// Overriding an inherited virtual method by a virtual method reuses its slot.
// Anything else sharing a name with an existing member is rejected.
func (c *Class) AddMethod(m *Method) error {
	if _, ok := c.FieldRec(m.Name); ok {
		return c.memberError(m.Name, "method already defined as a field")
	}

	if _, ok := c.methods[m.Name]; ok {
		return c.memberError(m.Name, "method already defined, method overloading not supported")
	}

	m.Owner = c
	m.Slot = -1

	if c.Super != nil {
		if sm, ok := c.Super.MethodRec(m.Name); ok {
			if m.Static || sm.Static {
				return c.memberError(m.Name, "method defined in super, overloading not allowed")
			}

			m.Overrides = sm
			m.Slot = sm.Slot
			c.overridden.Set(m.Slot)
		}
	}

	if !m.Static && m.Slot < 0 {
		m.Slot = c.nslots
		c.nslots++
	}

	c.methods[m.Name] = m
	c.morder = append(c.morder, m)

	return nil
}

func (c *Class) Field(name string) (*Field, bool) {
	f, ok := c.fields[name]
	return f, ok
}

// FieldRec looks name up in c and then its ancestors.
func (c *Class) FieldRec(name string) (*Field, bool) {
	for x := c; x != nil; x = x.Super {
		if f, ok := x.fields[name]; ok {
			return f, true
		}
	}

	return nil, false
}

func (c *Class) Method(name string) (*Method, bool) {
	m, ok := c.methods[name]
	return m, ok
}

// MethodRec looks name up in c and then its ancestors.
func (c *Class) MethodRec(name string) (*Method, bool) {
	for x := c; x != nil; x = x.Super {
		if m, ok := x.methods[name]; ok {
			return m, true
		}
	}

	return nil, false
}

// Fields returns own fields in declaration order.
func (c *Class) Fields() []*Field { return c.forder }

// Methods returns own methods in declaration order.
func (c *Class) Methods() []*Method { return c.morder }

// Members returns every field and the most derived version of every method
// visible in c, ancestors first.
func (c *Class) Members() (fs []*Field, ms []*Method) {
	if c.Super != nil {
		fs, ms = c.Super.Members()
	}

	fs = append(fs, c.forder...)

	for _, m := range c.morder {
		if m.Overrides != nil {
			for i, x := range ms {
				if x.Name == m.Name {
					ms[i] = m
				}
			}

			continue
		}

		ms = append(ms, m)
	}

	return fs, ms
}

func (c *Class) FieldCountRec() int {
	n := 0

	for x := c; x != nil; x = x.Super {
		n += len(x.forder)
	}

	return n
}

// BytesInMemory is the object size including the dispatch table pointer at offset 0.
func (c *Class) BytesInMemory() int {
	return (c.FieldCountRec() + 1) * c.word
}

// Overridden is the set of inherited slots this class rebinds.
func (c *Class) Overridden() set.Bitmap { return c.overridden }

// Slots is the dispatch table length.
func (c *Class) Slots() int { return c.nslots }

// Dispatch returns the dispatch table: slot index to the method that runs for it.
// Each entry's Owner is the class whose body executes.
func (c *Class) Dispatch() []*Method {
	var d []*Method

	if c.Super != nil {
		d = c.Super.Dispatch()
	}

	for _, m := range c.morder {
		switch {
		case m.Static:
		case c.overridden.IsSet(m.Slot):
			d[m.Slot] = m
		default:
			d = append(d, m)
		}
	}

	return d
}

func (c *Class) memberError(name, reason string) MemberError {
	return MemberError{Class: c.Name, Name: name, Reason: reason}
}

func (e MemberError) Error() string {
	return fmt.Sprintf("%s: %s.%s", e.Reason, e.Class, e.Name)
}
