package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"

	"github.com/slowlang/oolc/compiler/diag"
)

const (
	point   = "../../compiler/testdata/point.yaml"
	badCond = "../../compiler/testdata/bad_cond.yaml"
)

func oolc(t *testing.T, args ...string) (status int, stdout, stderr string) {
	t.Helper()

	var o, e bytes.Buffer

	app := newApp()
	app.Stdout = &o
	app.Stderr = &e

	status = run(app, append([]string{"oolc"}, args...), nil)

	return status, o.String(), e.String()
}

func TestCheck(t *testing.T) {
	st, out, errout := oolc(t, "check", point)
	assert.Equal(t, 0, st, errout)
	assert.Empty(t, out)

	st, out, errout = oolc(t, "check", point, badCond)
	assert.Equal(t, 1, st)
	assert.Equal(t, "8: Semantic error: operands of == must be of the same type, got int and boolean\n", out)
	assert.Empty(t, errout)
}

func TestStrictOverride(t *testing.T) {
	st, out, errout := oolc(t, "check", "testdata/override.yaml")
	assert.Equal(t, 0, st, errout)
	assert.Empty(t, out)

	st, out, errout = oolc(t, "--strict-override", "check", "testdata/override.yaml")
	assert.Equal(t, 1, st)
	assert.Equal(t, "15: Semantic error: method f overrides A.f with a different signature\n", out)
	assert.Empty(t, errout)
}

func TestFmt(t *testing.T) {
	st, out, errout := oolc(t, "fmt", point)
	assert.Equal(t, 0, st, errout)
	assert.Contains(t, out, "class Point3D extends Point {\n\tint z;\n}\n")
	assert.Contains(t, out, "\tstatic void main(string[] args) {\n")
	assert.Contains(t, out, "\t\twhile (i < 3) {\n")
}

func TestLir(t *testing.T) {
	st, out, errout := oolc(t, "lir", point)
	assert.Equal(t, 0, st, errout)
	assert.Contains(t, out, "\n_ic_main:\n")
	assert.Contains(t, out, "\tLibrary __allocateObject(12),R0\n")

	st, out, errout = oolc(t, "--word-size=8", "lir", point)
	assert.Equal(t, 0, st, errout)
	assert.Contains(t, out, "\tLibrary __allocateObject(24),R0\n")

	st, out, errout = oolc(t, "lir", badCond)
	assert.Equal(t, 1, st)
	assert.Equal(t, "8: Semantic error: operands of == must be of the same type, got int and boolean\n", out)
	assert.Empty(t, errout)

	st, out, errout = oolc(t, "lir", point, badCond)
	assert.Equal(t, 1, st)
	assert.Empty(t, out)
	assert.Contains(t, errout, "expected one input file")
}

func TestLirOutput(t *testing.T) {
	name := filepath.Join(t.TempDir(), "point.lir")

	st, out, errout := oolc(t, "lir", "--output="+name, point)
	assert.Equal(t, 0, st, errout)
	assert.Empty(t, out)

	obj, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Contains(t, string(obj), "\n_ic_main:\n")
}

func TestLirShortCircuit(t *testing.T) {
	st, out, errout := oolc(t, "lir", "testdata/logic.yaml")
	assert.Equal(t, 0, st, errout)
	assert.Contains(t, out, "\tMove 1,R0\n\tMove 0,R1\n\tCompare 0,R0\n\tJumpTrue _end_label1\n\tMove R1,R0\n_end_label1:\n")

	st, out, errout = oolc(t, "lir", "--short-circuit", "testdata/logic.yaml")
	assert.Equal(t, 0, st, errout)
	assert.Contains(t, out, "\tMove 1,R0\n\tCompare 0,R0\n\tJumpTrue _end_label1\n\tMove 0,R0\n_end_label1:\n")
}

func TestRunStatus(t *testing.T) {
	for _, tc := range []struct {
		name   string
		err    error
		status int
		stdout string
		stderr string
	}{
		{"ok", nil, 0, "", ""},
		{"semantic", errors.Wrap(diag.Errorf(3, "undefined variable x"), "check"), 1, "3: Semantic error: undefined variable x\n", ""},
		{"internal", errors.Wrap(&diag.InternalError{Msg: "boom"}, "lir"), 2, "", "internal error: boom"},
		{"other", errors.New("read file"), 1, "", "error: read file"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var o, e bytes.Buffer

			app := &cli.Command{
				Name:   "oolc",
				Action: func(*cli.Command) error { return tc.err },
				Stdout: &o,
				Stderr: &e,
			}

			st := run(app, []string{"oolc"}, nil)
			assert.Equal(t, tc.status, st)
			assert.Equal(t, tc.stdout, o.String())
			assert.Contains(t, e.String(), tc.stderr)
		})
	}

	st, out, errout := oolc(t, "check", "testdata/missing.yaml")
	assert.Equal(t, 1, st)
	assert.Empty(t, out)
	assert.Contains(t, errout, "missing.yaml")
}
