// Package turing loads and runs Turing machine programs.
//
// A program declares its states and symbols, an action for each
// (state, symbol) pair it handles, test tapes, and the expected
// results for those tapes:
//
//	states scan
//	symbols 1
//	action scan 1 scan 1 r
//	action scan - *halt* 1 -
//	tape two [1] 1
//	result two 1 1 [1]
//
// Load reports every problem it finds rather than stopping at the
// first one.  A Program's Checksum covers its tapes and results, so
// an assignment's "checkoff" statement can tell when the fixtures
// were edited.
package turing
