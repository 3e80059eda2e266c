package sym

import (
	"fmt"

	"github.com/slowlang/oolc/compiler/diag"
)

type (
	// Table is a stack of lexical scope frames.
	// The outermost frame holds classes and is never popped.
	Table struct {
		names  map[string][]binding // innermost last
		frames [][]string
	}

	binding struct {
		sym   Symbol
		depth int
	}

	RedeclaredError struct {
		Name string
	}
)

// Frame depths of the fixed outer levels.
const (
	GlobalDepth = 1
	ClassDepth  = 2
	MethodDepth = 3
)

func NewTable() *Table {
	return &Table{
		names:  map[string][]binding{},
		frames: [][]string{nil},
	}
}

// Depth is the current nesting depth, GlobalDepth for the outermost frame.
func (t *Table) Depth() int { return len(t.frames) }

// EnterScope pushes a frame. The returned func pops it; call it with defer.
func (t *Table) EnterScope() (exit func()) {
	t.frames = append(t.frames, nil)
	d := t.Depth()

	return func() {
		if t.Depth() != d {
			diag.Internalf("scope exit at depth %d, expected %d", t.Depth(), d)
		}

		t.ExitScope()
	}
}

// ExitScope pops the innermost frame, restoring whatever its bindings shadowed.
func (t *Table) ExitScope() {
	if t.Depth() == GlobalDepth {
		diag.Internalf("exit from global scope")
	}

	last := len(t.frames) - 1

	for _, name := range t.frames[last] {
		bs := t.names[name]
		bs = bs[:len(bs)-1]

		if len(bs) == 0 {
			delete(t.names, name)
		} else {
			t.names[name] = bs
		}
	}

	t.frames = t.frames[:last]
}

// Add binds s in the innermost frame.
// Rebinding a name already bound in the same frame is an error.
func (t *Table) Add(s Symbol) error {
	name := s.Sym().Name

	if _, ok := t.FindLocal(name); ok {
		return RedeclaredError{Name: name}
	}

	t.names[name] = append(t.names[name], binding{sym: s, depth: t.Depth()})

	last := len(t.frames) - 1
	t.frames[last] = append(t.frames[last], name)

	return nil
}

// Find searches from the innermost frame outwards.
func (t *Table) Find(name string) (Symbol, bool) {
	bs := t.names[name]
	if len(bs) == 0 {
		return nil, false
	}

	return bs[len(bs)-1].sym, true
}

// FindLocal finds name only if it is bound in the innermost frame.
func (t *Table) FindLocal(name string) (Symbol, bool) {
	bs := t.names[name]
	if len(bs) == 0 || bs[len(bs)-1].depth != t.Depth() {
		return nil, false
	}

	return bs[len(bs)-1].sym, true
}

// DepthOf returns the depth of the frame holding the visible binding of name, 0 if none.
func (t *Table) DepthOf(name string) int {
	bs := t.names[name]
	if len(bs) == 0 {
		return 0
	}

	return bs[len(bs)-1].depth
}

// Class finds a class bound in the global frame, ignoring inner shadowing.
func (t *Table) Class(name string) (*Class, bool) {
	bs := t.names[name]
	if len(bs) == 0 || bs[0].depth != GlobalDepth {
		return nil, false
	}

	c, ok := bs[0].sym.(*Class)

	return c, ok
}

func (e RedeclaredError) Error() string {
	return fmt.Sprintf("variable redefinition: %v", e.Name)
}
