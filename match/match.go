/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package match implements the core pattern matcher.
//
// A Pattern is a fixed-width sequence of cells, each of which is
// '0', '1', or the don't-care '-'.  Patterns are matched against
// concrete Bits (sensor readings).
package match

import (
	"errors"
	"strings"
)

// Cell is one position in a Pattern.
type Cell byte

const (
	Zero     Cell = '0'
	One      Cell = '1'
	DontCare Cell = '-'
)

// ParseCell returns the Cell for the given character.
//
// If anyOK is false, then the don't-care '-' is rejected.  Output
// patterns are parsed that way.
func ParseCell(c byte, anyOK bool) (Cell, bool) {
	switch c {
	case '0':
		return Zero, true
	case '1':
		return One, true
	case '-':
		return DontCare, anyOK
	}
	return 0, false
}

// Matches reports whether the cell accepts the bit.
func (c Cell) Matches(b bool) bool {
	switch c {
	case DontCare:
		return true
	case One:
		return b
	default:
		return !b
	}
}

// Bits is a concrete sequence of binary values.
type Bits []bool

// ParseBits parses a string like "010".  Whitespace is ignored.
func ParseBits(s string) (Bits, error) {
	acc := make(Bits, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
			acc = append(acc, false)
		case '1':
			acc = append(acc, true)
		case ' ', '\t', ',':
		default:
			return nil, errors.New(`bad bit '` + s[i:i+1] + `' in "` + s + `"`)
		}
	}
	return acc, nil
}

// MustParseBits is ParseBits that panics on error.
func MustParseBits(s string) Bits {
	bs, err := ParseBits(s)
	if err != nil {
		panic(err)
	}
	return bs
}

func (bs Bits) String() string {
	var b strings.Builder
	for _, x := range bs {
		if x {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// Spaced renders the bits separated by spaces, which is the source
// syntax of truth tables.
func (bs Bits) Spaced() string {
	s := bs.String()
	return strings.Join(strings.Split(s, ""), " ")
}

// Equal reports whether both have the same width and values.
func (bs Bits) Equal(other Bits) bool {
	if len(bs) != len(other) {
		return false
	}
	for i, b := range bs {
		if other[i] != b {
			return false
		}
	}
	return true
}

// Copy makes a copy of the Bits.
func (bs Bits) Copy() Bits {
	acc := make(Bits, len(bs))
	copy(acc, bs)
	return acc
}

// Pattern is a sequence of Cells.
type Pattern []Cell

// ParsePattern parses a string like "01-".  Whitespace is ignored.
func ParsePattern(s string) (Pattern, error) {
	acc := make(Pattern, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' || s[i] == '\t' {
			continue
		}
		c, ok := ParseCell(s[i], true)
		if !ok {
			return nil, errors.New(`bad pattern cell '` + s[i:i+1] + `' in "` + s + `"`)
		}
		acc = append(acc, c)
	}
	return acc, nil
}

func (p Pattern) String() string {
	bs := make([]byte, len(p))
	for i, c := range p {
		bs[i] = byte(c)
	}
	return string(bs)
}

// Spaced renders the cells separated by spaces.
func (p Pattern) Spaced() string {
	return strings.Join(strings.Split(p.String(), ""), " ")
}

// Matches reports whether every cell accepts the corresponding bit.
//
// A width mismatch never matches.
func (p Pattern) Matches(bs Bits) bool {
	if len(p) != len(bs) {
		return false
	}
	for i, c := range p {
		if !c.Matches(bs[i]) {
			return false
		}
	}
	return true
}

// Overlaps reports whether some concrete input matches both patterns.
func (p Pattern) Overlaps(q Pattern) bool {
	_, ok := p.Witness(q)
	return ok
}

// Witness returns a concrete input that matches both patterns (if
// any).  Positions where both patterns don't care are 0.
func (p Pattern) Witness(q Pattern) (Bits, bool) {
	if len(p) != len(q) {
		return nil, false
	}
	acc := make(Bits, len(p))
	for i, c := range p {
		d := q[i]
		switch {
		case c == DontCare && d == DontCare:
		case c == DontCare:
			acc[i] = d == One
		case d == DontCare || c == d:
			acc[i] = c == One
		default:
			return nil, false
		}
	}
	return acc, true
}

// Concrete reports whether the pattern has no don't-care cells.
func (p Pattern) Concrete() bool {
	for _, c := range p {
		if c == DontCare {
			return false
		}
	}
	return true
}

// Bits converts a concrete pattern to Bits.  Don't-care cells become
// 0.
func (p Pattern) Bits() Bits {
	acc := make(Bits, len(p))
	for i, c := range p {
		acc[i] = c == One
	}
	return acc
}

// MaxEnumerateWidth limits Enumerate.
var MaxEnumerateWidth = 16

// Enumerate calls f for every concrete input of the given width in
// ascending binary order (the first bit is the most significant).
//
// Stops early if f returns false.  Widths above MaxEnumerateWidth
// are refused.
func Enumerate(width int, f func(Bits) bool) error {
	if width < 0 || MaxEnumerateWidth < width {
		return errors.New("width out of range for enumeration")
	}
	n := 1 << uint(width)
	for i := 0; i < n; i++ {
		bs := make(Bits, width)
		for j := 0; j < width; j++ {
			bs[j] = i&(1<<uint(width-1-j)) != 0
		}
		if !f(bs) {
			break
		}
	}
	return nil
}
