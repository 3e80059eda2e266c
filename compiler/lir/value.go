package lir

import (
	"github.com/nikandfor/hacked/hfmt"

	"github.com/slowlang/oolc/compiler/diag"
)

type (
	mode int

	// value is where a lowered expression can be found.
	// Registers at and above next are free.
	value struct {
		mode mode

		imm string // immediate text or local slot name
		reg int    // register, object or array base
		idx int    // array index register
		off int    // field offset

		next int
	}
)

const (
	modeImm mode = iota
	modeReg
	modeLocal
	modeField
	modeArray
)

func imm(s string, next int) value { return value{mode: modeImm, imm: s, next: next} }

func inReg(r int) value { return value{mode: modeReg, reg: r, next: r + 1} }

func local(name string, next int) value { return value{mode: modeLocal, imm: name, next: next} }

func field(r, off int) value { return value{mode: modeField, reg: r, off: off, next: r + 1} }

func element(r, idx int) value { return value{mode: modeArray, reg: r, idx: idx, next: idx + 1} }

// load materializes v into register t.
func load(b []byte, v value, t int) []byte {
	switch v.mode {
	case modeImm, modeLocal:
		return hfmt.Appendf(b, "\tMove %s,R%d\n", v.imm, t)
	case modeReg:
		if v.reg == t {
			return b
		}

		return hfmt.Appendf(b, "\tMove R%d,R%d\n", v.reg, t)
	case modeField:
		return hfmt.Appendf(b, "\tMoveField R%d.%d,R%d\n", v.reg, v.off, t)
	case modeArray:
		return hfmt.Appendf(b, "\tMoveArray R%d[R%d],R%d\n", v.reg, v.idx, t)
	}

	diag.Internalf("load: bad value mode %d", v.mode)

	return nil
}

// store writes register s into location v.
func store(b []byte, v value, s int) []byte {
	switch v.mode {
	case modeLocal:
		return hfmt.Appendf(b, "\tMove R%d,%s\n", s, v.imm)
	case modeField:
		return hfmt.Appendf(b, "\tMoveField R%d,R%d.%d\n", s, v.reg, v.off)
	case modeArray:
		return hfmt.Appendf(b, "\tMoveArray R%d,R%d[R%d]\n", s, v.reg, v.idx)
	}

	diag.Internalf("store: value mode %d is not a location", v.mode)

	return nil
}
