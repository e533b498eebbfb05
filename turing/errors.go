package turing

import (
	"strconv"
	"strings"
)

// DiagnosticKind distinguishes malformed source from well-formed
// source that doesn't make sense.
type DiagnosticKind int

const (
	SyntaxError DiagnosticKind = iota
	SemanticError
)

func (k DiagnosticKind) String() string {
	if k == SemanticError {
		return "semantic error"
	}
	return "syntax error"
}

// Diagnostic is a problem found while loading a program.
type Diagnostic struct {
	Kind   DiagnosticKind `json:"kind"`
	Offset int            `json:"offset"`
	Line   int            `json:"line"`
	Msg    string         `json:"msg"`
}

func (d *Diagnostic) Error() string {
	return "line " + strconv.Itoa(d.Line) + ": " + d.Kind.String() + ": " + d.Msg
}

// Diagnostics is everything wrong with a program.
//
// Loading keeps going after a problem so that all of them can be
// reported at once.
type Diagnostics []*Diagnostic

func (ds Diagnostics) Error() string {
	acc := make([]string, len(ds))
	for i, d := range ds {
		acc[i] = d.Error()
	}
	return strings.Join(acc, "\n")
}

// Err returns the Diagnostics as an error, or nil if there aren't
// any.
func (ds Diagnostics) Err() error {
	if len(ds) == 0 {
		return nil
	}
	return ds
}
