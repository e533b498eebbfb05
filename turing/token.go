package turing

import (
	"sort"
	"strings"
)

// Token is a word of Turing program source.
type Token struct {
	Text string

	// Offset is the byte offset of the token's first character.
	Offset int

	// Line is the 1-based line number.
	Line int

	// Quoted is true if the token was written as a "quoted" string.
	// A quoted token is never a keyword.
	Quoted bool
}

// lexer splits source into Tokens.
//
// Whitespace separates tokens.  "//" starts a comment that runs to
// the end of the line, and "/*" starts one that runs to "*/".  A
// double-quoted string is one token (without the quotes); "\"" and
// "\\" escape inside quotes.
type lexer struct {
	src        string
	pos        int
	lineStarts []int
	diags      Diagnostics
}

func newLexer(src string) *lexer {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lexer{
		src:        src,
		lineStarts: starts,
	}
}

// line returns the 1-based line number for the byte offset.
func (l *lexer) line(offset int) int {
	return sort.Search(len(l.lineStarts), func(i int) bool {
		return offset < l.lineStarts[i]
	})
}

func (l *lexer) errorf(offset int, msg string) {
	l.diags = append(l.diags, &Diagnostic{
		Kind:   SyntaxError,
		Offset: offset,
		Line:   l.line(offset),
		Msg:    msg,
	})
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

// skip skips whitespace and comments.
func (l *lexer) skip() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case isSpace(c):
			l.pos++
		case strings.HasPrefix(l.src[l.pos:], "//"):
			if i := strings.IndexByte(l.src[l.pos:], '\n'); i < 0 {
				l.pos = len(l.src)
			} else {
				l.pos += i + 1
			}
		case strings.HasPrefix(l.src[l.pos:], "/*"):
			start := l.pos
			if i := strings.Index(l.src[l.pos+2:], "*/"); i < 0 {
				l.errorf(start, "unterminated comment")
				l.pos = len(l.src)
			} else {
				l.pos += i + 4
			}
		default:
			return
		}
	}
}

// next returns the next token or false at the end.
func (l *lexer) next() (*Token, bool) {
	l.skip()
	if len(l.src) <= l.pos {
		return nil, false
	}
	start := l.pos
	if l.src[l.pos] == '"' {
		return l.quoted(start), true
	}
	for l.pos < len(l.src) && !isSpace(l.src[l.pos]) {
		if strings.HasPrefix(l.src[l.pos:], "//") || strings.HasPrefix(l.src[l.pos:], "/*") {
			break
		}
		l.pos++
	}
	return &Token{
		Text:   l.src[start:l.pos],
		Offset: start,
		Line:   l.line(start),
	}, true
}

func (l *lexer) quoted(start int) *Token {
	var b strings.Builder
	l.pos++
	for {
		if len(l.src) <= l.pos {
			l.errorf(start, "unterminated string")
			break
		}
		c := l.src[l.pos]
		if c == '"' {
			l.pos++
			break
		}
		if c == '\\' && l.pos+1 < len(l.src) {
			l.pos++
			c = l.src[l.pos]
		}
		b.WriteByte(c)
		l.pos++
	}
	return &Token{
		Text:   b.String(),
		Offset: start,
		Line:   l.line(start),
		Quoted: true,
	}
}

// Tokenize splits the source into Tokens.  Unterminated comments and
// strings are reported as Diagnostics.
func Tokenize(src string) ([]*Token, Diagnostics) {
	l := newLexer(src)
	acc := make([]*Token, 0, 64)
	for {
		t, ok := l.next()
		if !ok {
			break
		}
		acc = append(acc, t)
	}
	return acc, l.diags
}
