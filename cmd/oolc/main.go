package main

import (
	"context"
	"fmt"
	"os"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/oolc/compiler"
	"github.com/slowlang/oolc/compiler/diag"
	"github.com/slowlang/oolc/compiler/format"
)

func main() {
	app := newApp()

	os.Exit(run(app, os.Args, os.Environ()))
}

func newApp() *cli.Command {
	checkCmd := &cli.Command{
		Name:        "check",
		Description: "check program semantics",
		Action:      checkAct,
		Args:        cli.Args{},
	}

	lirCmd := &cli.Command{
		Name:        "lir",
		Description: "compile program to LIR",
		Action:      lirAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("output,o", "-", "output file"),
			cli.NewFlag("short-circuit", false, "skip the right operand of && and || when the left one decides"),
		},
	}

	fmtCmd := &cli.Command{
		Name:        "fmt",
		Description: "print program tree as source",
		Action:      fmtAct,
		Args:        cli.Args{},
	}

	return &cli.Command{
		Name:        "oolc",
		Description: "oolc checks and compiles object-oriented programs given as YAML program trees",
		Flags: []*cli.Flag{
			cli.NewFlag("word-size", compiler.DefaultOptions.WordSize, "word size in bytes"),
			cli.NewFlag("strict-override", false, "overrides must keep the overridden signature"),
		},
		Commands: []*cli.Command{
			checkCmd,
			lirCmd,
			fmtCmd,
		},
	}
}

// run executes the command tree and returns the process exit status.
// Semantic errors go to stdout with status 1, internal errors to stderr with status 2.
func run(app *cli.Command, args, env []string) int {
	err := cli.Run(app, args, env)
	if err == nil {
		return 0
	}

	stdout, stderr := app.Stdout, app.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	var de *diag.Error
	if errors.As(err, &de) {
		fmt.Fprintln(stdout, de.Error())
		return 1
	}

	var ie *diag.InternalError
	if errors.As(err, &ie) {
		fmt.Fprintln(stderr, ie.Error())
		return 2
	}

	fmt.Fprintf(stderr, "error: %v\n", err)

	return 1
}

// setup reads the options shared by all subcommands.
// Command specific flags are read by the command itself.
func setup(c *cli.Command) (context.Context, compiler.Options) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	opts := compiler.Options{
		WordSize:       c.Int("word-size"),
		StrictOverride: c.Bool("strict-override"),
	}

	return ctx, opts
}

func checkAct(c *cli.Command) (err error) {
	ctx, opts := setup(c)

	if len(c.Args) == 0 {
		return errors.New("expected input files")
	}

	for _, a := range c.Args {
		prog, err := compiler.ParseFile(ctx, a)
		if err != nil {
			return errors.Wrap(err, "check %v", a)
		}

		_, err = compiler.Check(ctx, prog, opts)
		if err != nil {
			return errors.Wrap(err, "check %v", a)
		}
	}

	return nil
}

func lirAct(c *cli.Command) (err error) {
	ctx, opts := setup(c)
	opts.ShortCircuit = c.Bool("short-circuit")

	if len(c.Args) != 1 {
		return errors.New("expected one input file")
	}

	obj, err := compiler.CompileFile(ctx, c.Args[0], opts)
	if err != nil {
		return errors.Wrap(err, "compile %v", c.Args[0])
	}

	if out := c.String("output"); out != "" && out != "-" {
		return os.WriteFile(out, obj, 0o644)
	}

	_, err = c.Stdout.Write(obj)

	return err
}

func fmtAct(c *cli.Command) (err error) {
	ctx, _ := setup(c)

	var b []byte

	for _, a := range c.Args {
		prog, err := compiler.ParseFile(ctx, a)
		if err != nil {
			return errors.Wrap(err, "parse %v", a)
		}

		b, err = format.Format(ctx, b[:0], prog)
		if err != nil {
			return errors.Wrap(err, "format %v", a)
		}

		_, err = c.Stdout.Write(b)
		if err != nil {
			return errors.Wrap(err, "write")
		}
	}

	return nil
}
