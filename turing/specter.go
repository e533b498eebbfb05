package turing

import (
	"sync/atomic"
)

// UpdatableProgram holds a Program that can be replaced at any time.
//
// Reload installs a new Program with one atomic store, and only when
// the source loaded without Diagnostics.
type UpdatableProgram struct {
	p atomic.Pointer[Program]
}

// NewUpdatableProgram makes one holding the given (possibly nil)
// program.
func NewUpdatableProgram(p *Program) *UpdatableProgram {
	u := &UpdatableProgram{}
	u.p.Store(p)
	return u
}

// Program returns the current program.
func (u *UpdatableProgram) Program() *Program {
	return u.p.Load()
}

// SetProgram atomically changes the underlying program.
func (u *UpdatableProgram) SetProgram(p *Program) {
	u.p.Store(p)
}

// Reload loads the source and installs the result if there were no
// Diagnostics.
func (u *UpdatableProgram) Reload(src string) Diagnostics {
	p, diags := Load(src)
	if 0 < len(diags) {
		return diags
	}
	u.SetProgram(p)
	return nil
}
