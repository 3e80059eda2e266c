package sym

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tlog.app/go/errors"

	"github.com/slowlang/oolc/compiler/tp"
)

type classes struct {
	tt *tp.Table
}

func (x classes) class(t *testing.T, name string, super *Class) *Class {
	t.Helper()

	sname := ""
	if super != nil {
		sname = super.Name
	}

	ct, err := x.tt.DeclareClass(name, sname)
	require.NoError(t, err)

	return NewClass(ct, super, 4)
}

func TestPointLayout(t *testing.T) {
	x := classes{tt: tp.NewTable()}

	point := x.class(t, "Point", nil)
	require.NoError(t, point.AddField(NewField("x", tp.Int)))
	require.NoError(t, point.AddMethod(NewMethod("getX", tp.Int, false, nil)))

	point3 := x.class(t, "Point3D", point)
	require.NoError(t, point3.AddField(NewField("z", tp.Int)))

	assert.Equal(t, 8, point.BytesInMemory())
	assert.Equal(t, 12, point3.BytesInMemory())

	fx, ok := point3.FieldRec("x")
	require.True(t, ok)
	assert.Equal(t, 1, fx.Offset)
	assert.True(t, fx.Owner == point)

	fz, ok := point3.Field("z")
	require.True(t, ok)
	assert.Equal(t, 2, fz.Offset)

	_, ok = point3.Field("x")
	assert.False(t, ok)

	pd := point.Dispatch()
	cd := point3.Dispatch()

	require.Len(t, pd, 1)
	require.Len(t, cd, 1)
	assert.True(t, pd[0] == cd[0])
	assert.Equal(t, "Point", cd[0].Owner.Name)
	assert.Equal(t, 0, cd[0].Slot)
}

func TestFieldOffsetsDoNotOverlap(t *testing.T) {
	x := classes{tt: tp.NewTable()}

	a := x.class(t, "A", nil)
	require.NoError(t, a.AddField(NewField("a1", tp.Int)))
	require.NoError(t, a.AddField(NewField("a2", tp.String)))

	b := x.class(t, "B", a)
	require.NoError(t, b.AddField(NewField("b1", tp.Int)))

	c := x.class(t, "C", b)
	require.NoError(t, c.AddField(NewField("c1", tp.Boolean)))
	require.NoError(t, c.AddField(NewField("c2", tp.Boolean)))

	top := 0
	for _, f := range a.Fields() {
		if f.Offset > top {
			top = f.Offset
		}
	}

	for _, f := range b.Fields() {
		assert.Greater(t, f.Offset, top)
	}

	offs := []int{}
	fs, _ := c.Members()
	for _, f := range fs {
		offs = append(offs, f.Offset)
	}

	assert.Equal(t, []int{1, 2, 3, 4, 5}, offs)
	assert.GreaterOrEqual(t, b.BytesInMemory(), a.BytesInMemory())
	assert.Equal(t, 24, c.BytesInMemory())
}

func TestOverridePreservesSlot(t *testing.T) {
	x := classes{tt: tp.NewTable()}

	a := x.class(t, "A", nil)
	require.NoError(t, a.AddMethod(NewMethod("f", tp.Int, false, nil)))
	require.NoError(t, a.AddMethod(NewMethod("s", tp.Int, true, nil)))
	require.NoError(t, a.AddMethod(NewMethod("g", tp.Int, false, nil)))

	b := x.class(t, "B", a)
	h := NewMethod("h", tp.Void, false, nil)
	g := NewMethod("g", tp.Int, false, nil)
	require.NoError(t, b.AddMethod(h))
	require.NoError(t, b.AddMethod(g))

	sa, _ := a.Method("s")
	assert.Equal(t, -1, sa.Slot)

	ga, _ := a.Method("g")
	assert.Equal(t, ga.Slot, g.Slot)
	assert.True(t, g.Overrides == ga)
	assert.Equal(t, 2, h.Slot)
	assert.True(t, b.Overridden().IsSet(g.Slot))
	assert.Equal(t, 1, b.Overridden().Size())

	d := b.Dispatch()
	require.Len(t, d, 3)

	names := []string{}
	for _, m := range d {
		names = append(names, m.Owner.Name+"."+m.Name)
	}

	assert.Equal(t, []string{"A.f", "B.g", "B.h"}, names)

	_, ms := b.Members()
	assert.Len(t, ms, 4)
}

func TestMemberConflicts(t *testing.T) {
	x := classes{tt: tp.NewTable()}

	a := x.class(t, "A", nil)
	require.NoError(t, a.AddField(NewField("v", tp.Int)))
	require.NoError(t, a.AddMethod(NewMethod("f", tp.Int, false, nil)))
	require.NoError(t, a.AddMethod(NewMethod("s", tp.Int, true, nil)))

	b := x.class(t, "B", a)

	var me MemberError

	for _, err := range []error{
		a.AddField(NewField("v", tp.Int)),
		a.AddField(NewField("f", tp.Int)),
		a.AddMethod(NewMethod("v", tp.Int, false, nil)),
		a.AddMethod(NewMethod("f", tp.Int, false, nil)),
		b.AddField(NewField("v", tp.Int)),
		b.AddField(NewField("f", tp.Int)),
		b.AddMethod(NewMethod("v", tp.Int, false, nil)),
		b.AddMethod(NewMethod("f", tp.Int, true, nil)),
		b.AddMethod(NewMethod("s", tp.Int, true, nil)),
		b.AddMethod(NewMethod("s", tp.Int, false, nil)),
	} {
		assert.True(t, errors.As(err, &me), "%v", err)
	}
}

func TestSameSignature(t *testing.T) {
	tt := tp.NewTable()
	ints, _ := tt.Resolve("int[]")

	f := NewMethod("f", tp.Int, false, []*Param{NewParam("a", tp.Int, 0)})
	g := NewMethod("f", tp.Int, false, []*Param{NewParam("b", tp.Int, 0)})
	h := NewMethod("f", tp.Int, false, []*Param{NewParam("a", ints, 0)})
	k := NewMethod("f", tp.Void, false, []*Param{NewParam("a", tp.Int, 0)})

	assert.True(t, f.SameSignature(g))
	assert.False(t, f.SameSignature(h))
	assert.False(t, f.SameSignature(k))
	assert.Equal(t, []tp.Type{ints}, h.ParamTypes())
}
