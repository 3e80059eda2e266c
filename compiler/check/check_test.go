package check

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tlog.app/go/errors"

	. "github.com/slowlang/oolc/compiler/ast/asttest"

	"github.com/slowlang/oolc/compiler/ast"
	"github.com/slowlang/oolc/compiler/diag"
)

func run(t *testing.T, prog *ast.Program, opts ...Options) (*Info, error) {
	t.Helper()

	o := DefaultOptions
	if len(opts) != 0 {
		o = opts[0]
	}

	info, err := Check(context.Background(), prog, o)
	if err != nil {
		var de *diag.Error
		require.True(t, errors.As(err, &de), "not a semantic error: %v", err)
	}

	return info, err
}

// withMain wraps body into class Main's entry point.
func withMain(body ...ast.Stmt) *ast.Class {
	return Class("Main", "", Main(body...))
}

func TestCheckMinimal(t *testing.T) {
	info, err := run(t, Prog(withMain(Println(Str("hello")))))
	require.NoError(t, err)

	require.Len(t, info.Classes, 1)
	assert.Equal(t, "Main", info.Classes[0].Name)
	require.NotNil(t, info.Entry)
	assert.True(t, info.Entry.Entry)
	assert.Equal(t, "main", info.Entry.Name)
	assert.Equal(t, "Library", info.Library.Name)
}

func TestCheckEntryPoint(t *testing.T) {
	_, err := run(t, Prog(Class("A", "", Virtual("void", "main", Formals("string[]", "args")))))
	assert.ErrorContains(t, err, "no main method found")

	_, err = run(t, Prog(Class("A", "", Static("int", "main", Formals("string[]", "args"), Ret(Int(0))))))
	assert.ErrorContains(t, err, "no main method found")

	_, err = run(t, Prog(Class("A", "", Static("void", "main", Formals("string", "args")))))
	assert.ErrorContains(t, err, "no main method found")

	_, err = run(t, Prog(
		withMain(),
		Class("B", "", At(9, Main())),
	))
	assert.EqualError(t, err, "9: Semantic error: main function already defined")

	_, err = run(t, Prog(Class("A", "", Static("void", "main", Formals("string[]", "argv")))))
	assert.NoError(t, err)
}

func TestCheckClassDeclarations(t *testing.T) {
	_, err := run(t, Prog(withMain(), At(3, Class("A", "B")), Class("B", "")))
	assert.EqualError(t, err, "3: Semantic error: super class is undefined: B (extended by A)")

	_, err = run(t, Prog(withMain(), Class("A", ""), At(4, Class("A", ""))))
	assert.EqualError(t, err, "4: Semantic error: class already defined: A")

	_, err = run(t, Prog(withMain(), At(5, Class("Library", ""))))
	assert.EqualError(t, err, "5: Semantic error: class already defined: Library")

	_, err = run(t, Prog(withMain(), Class("A", "", At(6, Field("Nope", "x")))))
	assert.ErrorContains(t, err, "undefined type: Nope")

	// forward references between class bodies are fine
	_, err = run(t, Prog(
		withMain(),
		Class("A", "", Field("B", "b")),
		Class("B", "", Field("A", "a")),
	))
	assert.NoError(t, err)
}

func TestCheckMembers(t *testing.T) {
	_, err := run(t, Prog(withMain(), Class("A", "",
		Virtual("int", "f", nil, Ret(Int(1))),
		At(7, Virtual("int", "f", Formals("int", "x"), Ret(Int(1)))),
	)))
	assert.EqualError(t, err, "7: Semantic error: method already defined, method overloading not supported: A.f")

	_, err = run(t, Prog(withMain(),
		Class("A", "", Field("int", "f")),
		Class("B", "A", At(8, Virtual("void", "f", nil))),
	))
	assert.EqualError(t, err, "8: Semantic error: method already defined as a field: B.f")

	_, err = run(t, Prog(withMain(),
		Class("A", "", Static("void", "f", nil)),
		Class("B", "A", Virtual("void", "f", nil)),
	))
	assert.ErrorContains(t, err, "overloading not allowed")

	_, err = run(t, Prog(withMain(), Class("A", "",
		Virtual("void", "f", Formals("int", "x", "string", "x")),
	)))
	assert.ErrorContains(t, err, "parameter with this name already exists: x")
}

func TestCheckOverride(t *testing.T) {
	prog := func() *ast.Program {
		return Prog(withMain(),
			Class("A", "", Virtual("int", "f", Formals("int", "x"), Ret(Id("x")))),
			Class("B", "A", Virtual("int", "f", Formals("string", "s"), Ret(Int(2)))),
		)
	}

	info, err := run(t, prog())
	require.NoError(t, err)

	b := info.Classes[2]
	f, ok := b.Method("f")
	require.True(t, ok)
	require.NotNil(t, f.Overrides)
	assert.Equal(t, "A", f.Overrides.Owner.Name)
	assert.Equal(t, f.Overrides.Slot, f.Slot)

	_, err = run(t, prog(), Options{StrictOverride: true})
	assert.ErrorContains(t, err, "overrides A.f with a different signature")
}

func TestCheckOperatorTypes(t *testing.T) {
	_, err := run(t, Prog(withMain(
		If(At(5, Bin(ast.Equal, Int(1), True())), Println(Str("x")), nil),
	)))
	assert.EqualError(t, err, "5: Semantic error: operands of == must be of the same type, got int and boolean")

	_, err = run(t, Prog(withMain(
		Var("string", "s", Bin(ast.Add, Str("a"), Str("b"))),
		Var("int", "i", Bin(ast.Add, Int(1), Int(2))),
		Var("boolean", "b", Bin(ast.And, Bin(ast.Less, Id("i"), Int(3)), Bin(ast.NotEqual, Id("s"), Null()))),
	)))
	assert.ErrorContains(t, err, "operands of != must be of the same type")

	_, err = run(t, Prog(withMain(
		Var("string", "s", At(3, Bin(ast.Add, Str("a"), Int(2)))),
	)))
	assert.EqualError(t, err, "3: Semantic error: operands of + must be both of type int or both of type string")

	_, err = run(t, Prog(withMain(
		If(At(4, Int(1)), Println(Str("x")), nil),
	)))
	assert.EqualError(t, err, "4: Semantic error: condition must be of type boolean, got int")
}

func TestCheckAssignments(t *testing.T) {
	_, err := run(t, Prog(withMain(
		Var("A", "a", New("B")),
		Set(Id("a"), Null()),
		Var("int[]", "xs", NewArr("int", Int(3))),
		Set(Idx(Id("xs"), Int(0)), Len(Id("xs"))),
	),
		Class("A", ""),
		Class("B", "A"),
	))
	assert.NoError(t, err)

	_, err = run(t, Prog(withMain(
		Var("B", "b", nil),
		At(6, Set(Id("b"), New("A"))),
	),
		Class("A", ""),
		Class("B", "A"),
	))
	assert.EqualError(t, err, "6: Semantic error: type mismatch, not of type B")

	_, err = run(t, Prog(withMain(
		At(2, Var("int", "i", Null())),
	)))
	assert.EqualError(t, err, "2: Semantic error: type mismatch, not of type int")

	_, err = run(t, Prog(withMain(
		At(2, Do(Bin(ast.Add, Int(1), Int(2)))),
	)))
	assert.EqualError(t, err, "2: Semantic error: not a statement")
}

func TestCheckDefiniteAssignment(t *testing.T) {
	_, err := run(t, Prog(withMain(
		Var("int", "x", nil),
		Do(SCall("Library", "printi", At(4, Id("x")))),
	)))
	assert.EqualError(t, err, "4: Semantic error: variable x might not have been initialized")

	_, err = run(t, Prog(withMain(
		Var("int", "x", nil),
		Set(Id("x"), Int(3)),
		Do(SCall("Library", "printi", Id("x"))),
	)))
	assert.NoError(t, err)

	_, err = run(t, Prog(withMain(
		Var("int", "x", nil),
		Set(Id("x"), Bin(ast.Add, At(3, Id("x")), Int(1))),
	)))
	assert.EqualError(t, err, "3: Semantic error: variable x might not have been initialized")

	_, err = run(t, Prog(withMain(
		Var("int", "x", At(5, Id("x"))),
	)))
	assert.EqualError(t, err, "5: Semantic error: undefined variable: x")

	// fields and parameters are always assigned
	_, err = run(t, Prog(withMain(), Class("A", "",
		Field("int", "f"),
		Virtual("int", "g", Formals("int", "p"), Ret(Bin(ast.Add, Id("f"), Id("p")))),
	)))
	assert.NoError(t, err)
}

func TestCheckScopes(t *testing.T) {
	_, err := run(t, Prog(withMain(
		Var("int", "x", Int(1)),
		At(3, Var("string", "x", Str("a"))),
	)))
	assert.EqualError(t, err, "3: Semantic error: variable redefinition: x")

	_, err = run(t, Prog(withMain(
		Var("int", "x", Int(1)),
		Block(
			Var("string", "x", Str("a")),
			Println(Id("x")),
		),
		Do(SCall("Library", "printi", Id("x"))),
	)))
	assert.NoError(t, err)

	_, err = run(t, Prog(withMain(
		Block(Var("int", "y", Int(1))),
		Do(SCall("Library", "printi", At(7, Id("y")))),
	)))
	assert.EqualError(t, err, "7: Semantic error: undefined variable: y")

	_, err = run(t, Prog(withMain(
		At(2, Var("int", "args", Int(1))),
	)))
	assert.EqualError(t, err, "2: Semantic error: variable redefinition: args")

	// a local may shadow a field
	_, err = run(t, Prog(withMain(), Class("A", "",
		Field("int", "f"),
		Virtual("string", "g", nil, Var("string", "f", Str("s")), Ret(Id("f"))),
	)))
	assert.NoError(t, err)
}

func TestCheckInheritedMembers(t *testing.T) {
	_, err := run(t, Prog(withMain(
		Var("B", "b", New("B")),
		Do(SCall("Library", "printi", VCall(Id("b"), "get"))),
		Do(SCall("Library", "printi", Dot(Id("b"), "x"))),
	),
		Class("A", "", Field("int", "x"), Virtual("int", "get", nil, Ret(Id("x")))),
		Class("B", "A", Virtual("int", "twice", nil, Ret(Bin(ast.Mul, Id("x"), VCall(nil, "get"))))),
	))
	assert.NoError(t, err)
}

func TestCheckControlFlow(t *testing.T) {
	_, err := run(t, Prog(withMain(At(3, Break()))))
	assert.EqualError(t, err, "3: Semantic error: break statement outside of loop")

	_, err = run(t, Prog(withMain(If(True(), At(4, Continue()), nil))))
	assert.EqualError(t, err, "4: Semantic error: continue statement outside of loop")

	_, err = run(t, Prog(withMain(
		While(True(), Block(
			While(False(), Continue()),
			Break(),
		)),
	)))
	assert.NoError(t, err)

	_, err = run(t, Prog(withMain(
		At(5, Do(SCall("Library", "printi", This()))),
	)))
	assert.ErrorContains(t, err, "this used in static method")
}

func TestCheckReturns(t *testing.T) {
	_, err := run(t, Prog(withMain(), Class("A", "",
		At(3, Virtual("int", "f", Formals("boolean", "b"), If(Id("b"), Ret(Int(1)), nil))),
	)))
	assert.EqualError(t, err, "3: Semantic error: missing return statement in method f")

	_, err = run(t, Prog(withMain(), Class("A", "",
		Virtual("int", "f", Formals("boolean", "b"), If(Id("b"), Ret(Int(1)), Block(Ret(Int(2))))),
		Virtual("int", "g", nil, While(True(), Block())),
		Virtual("void", "h", nil),
	)))
	assert.NoError(t, err)

	_, err = run(t, Prog(withMain(), Class("A", "",
		At(4, Virtual("int", "g", nil, While(True(), Block(If(True(), Break(), nil))))),
	)))
	assert.EqualError(t, err, "4: Semantic error: missing return statement in method g")

	_, err = run(t, Prog(withMain(), Class("A", "",
		Virtual("int", "f", nil, At(5, Ret(Str("s")))),
	)))
	assert.EqualError(t, err, "5: Semantic error: type mismatch, not of type int")

	_, err = run(t, Prog(withMain(), Class("A", "",
		Virtual("void", "f", nil, At(6, Ret(Int(1)))),
	)))
	assert.EqualError(t, err, "6: Semantic error: void method f cannot return a value")

	_, err = run(t, Prog(withMain(), Class("A", "",
		Virtual("int", "f", nil, At(7, Ret(nil))),
	)))
	assert.EqualError(t, err, "7: Semantic error: return statement must return a value of type int")
}

func TestCheckCalls(t *testing.T) {
	_, err := run(t, Prog(withMain(
		Do(At(3, SCall("A", "f", Str("x")))),
	), Class("A", "", Static("void", "f", Formals("int", "n", "boolean", "b")))))
	assert.EqualError(t, err, "3: Semantic error: wrong arguments for f, expected (int, boolean)")

	_, err = run(t, Prog(withMain(
		Do(SCall("A", "f", Int(1), True())),
		Do(VCall(New("A"), "g", New("A"))),
	), Class("A", "",
		Static("void", "f", Formals("int", "n", "boolean", "b")),
		Virtual("void", "g", Formals("A", "a"), Do(VCall(nil, "g", Null())), Do(VCall(nil, "f", Int(2), False()))),
	)))
	assert.NoError(t, err)
}

func TestReturns(t *testing.T) {
	assert.False(t, Returns(nil))
	assert.True(t, Returns([]ast.Stmt{Println(Str("x")), Ret(nil)}))
	assert.True(t, Returns([]ast.Stmt{While(True(), Block(While(True(), Break())))}))
	assert.False(t, Returns([]ast.Stmt{While(Id("c"), Ret(nil))}))
}
