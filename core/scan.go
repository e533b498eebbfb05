package core

import "strings"

// Line is one line of source text.
//
// Start and End are byte offsets into the complete source.  End
// excludes the terminating newline.
type Line struct {
	// Num is the 1-based line number.
	Num   int
	Start int
	End   int
	Text  string
}

// Lines splits the source at '\n'.
//
// A final line without a newline is included.  A trailing newline
// does not produce an empty final line.
func Lines(src string) []Line {
	acc := make([]Line, 0, strings.Count(src, "\n")+1)
	start, num := 0, 1
	for i := 0; i < len(src); i++ {
		if src[i] != '\n' {
			continue
		}
		acc = append(acc, Line{
			Num:   num,
			Start: start,
			End:   i,
			Text:  src[start:i],
		})
		start = i + 1
		num++
	}
	if start < len(src) {
		acc = append(acc, Line{
			Num:   num,
			Start: start,
			End:   len(src),
			Text:  src[start:],
		})
	}
	return acc
}

// CommentPrefix starts a whole-line comment.
const CommentPrefix = ';'

// Skippable reports whether the line is blank or a comment.
func (l Line) Skippable() bool {
	s := strings.TrimLeft(l.Text, " \t\r\f\v")
	return s == "" || s[0] == CommentPrefix
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\f', '\v':
		return true
	}
	return false
}

func isIdentChar(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}

// cursor reads tokens from a single Line.
type cursor struct {
	line Line
	pos  int
}

func (c *cursor) skipSpace() {
	for c.pos < len(c.line.Text) && isSpace(c.line.Text[c.pos]) {
		c.pos++
	}
}

// offset is the byte offset of the cursor in the complete source.
func (c *cursor) offset() int {
	return c.line.Start + c.pos
}

// eol skips whitespace and reports whether nothing remains.
func (c *cursor) eol() bool {
	c.skipSpace()
	return len(c.line.Text) <= c.pos
}

// ident reads an alphanumeric run after any whitespace.
func (c *cursor) ident() (string, bool) {
	c.skipSpace()
	start := c.pos
	for c.pos < len(c.line.Text) && isIdentChar(c.line.Text[c.pos]) {
		c.pos++
	}
	return c.line.Text[start:c.pos], start < c.pos
}

// char reads a single non-space character.  The cursor does not
// advance when the line is exhausted.
func (c *cursor) char() (byte, bool) {
	if c.eol() {
		return 0, false
	}
	b := c.line.Text[c.pos]
	c.pos++
	return b, true
}

// peek returns the next non-space character without consuming it.
func (c *cursor) peek() (byte, bool) {
	if c.eol() {
		return 0, false
	}
	return c.line.Text[c.pos], true
}
