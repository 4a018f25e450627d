// Package atom implements the scalar text decoder. An atom describes a raw,
// still unquoted span of input belonging to one scalar, together with its
// style, chomping mode and a set of precomputed property bits. Iterating an
// atom yields the logical character contents: folding, whitespace trimming,
// indentation stripping, chomping and escape decoding are all resolved by
// the iterator, which hands out chunks that alias either the input buffer
// or a small inline copy.
package atom

import (
	"bytes"

	"github.com/esainane/libfyaml/internal/utf8x"
)

// Style is the scalar style an atom was scanned with.
type Style int

const (
	StylePlain Style = iota
	StyleSingleQuoted
	StyleDoubleQuoted
	StyleLiteral
	StyleFolded
	StyleURI
	StyleDoubleQuotedManual
	StyleComment
)

// IsQuoted reports the single or double quoted styles.
func (s Style) IsQuoted() bool {
	return s == StyleSingleQuoted || s == StyleDoubleQuoted
}

// IsBlock reports the literal or folded block styles.
func (s Style) IsBlock() bool {
	return s == StyleLiteral || s == StyleFolded
}

func (s Style) String() string {
	switch s {
	case StylePlain:
		return "plain"
	case StyleSingleQuoted:
		return "single-quoted"
	case StyleDoubleQuoted:
		return "double-quoted"
	case StyleLiteral:
		return "literal"
	case StyleFolded:
		return "folded"
	case StyleURI:
		return "uri"
	case StyleDoubleQuotedManual:
		return "double-quoted-manual"
	case StyleComment:
		return "comment"
	}
	return "<unknown style>"
}

// Chomp is the trailing line break policy of a block scalar.
type Chomp int

const (
	ChompStrip Chomp = iota // drop all trailing breaks
	ChompClip               // keep at most one
	ChompKeep               // keep all
)

func (c Chomp) String() string {
	switch c {
	case ChompStrip:
		return "strip"
	case ChompClip:
		return "clip"
	case ChompKeep:
		return "keep"
	}
	return "<unknown chomp>"
}

// Mark is a position within an input buffer.
type Mark struct {
	Index  int // byte offset
	Line   int
	Column int // in code points, tabs expanded by the consumer
}

// Atom describes a contiguous region of an input buffer plus decoding
// hints. Atoms are immutable views; the input buffer must outlive every
// atom pointing into it.
type Atom struct {
	Input []byte // the whole input buffer the marks index into
	Start Mark
	End   Mark

	Style     Style
	Chomp     Chomp
	Increment int // block style indentation, in columns

	StorageHint      int // logical byte length, valid once cached
	StorageHintValid bool

	DirectOutput bool // raw bytes equal logical bytes
	Empty        bool // whitespace and line breaks only
	HasLB        bool
	HasWS        bool
	StartsWithWS bool
	StartsWithLB bool
	EndsWithWS   bool
	EndsWithLB   bool
	TrailingLB   bool // ends with two or more line breaks
	Size0        bool // contains absolutely nothing
}

// IsSet reports whether the atom points at an input.
func (a *Atom) IsSet() bool {
	return a != nil && a.Input != nil
}

// Data returns the raw span the atom describes.
func (a *Atom) Data() []byte {
	return a.Input[a.Start.Index:a.End.Index]
}

// Size returns the raw span length in bytes.
func (a *Atom) Size() int {
	return a.End.Index - a.Start.Index
}

// spanTraits are the presence and positional bits of one byte span.
type spanTraits struct {
	empty        bool
	hasLB        bool
	hasWS        bool
	startsWithWS bool
	startsWithLB bool
	endsWithWS   bool
	endsWithLB   bool
	trailingLB   bool
	lines        int
	lastColumn   int
}

func scanTraits(data []byte) spanTraits {
	t := spanTraits{empty: true}
	first := true
	trailingBreaks := 0
	col := 0
	for i := 0; i < len(data); {
		c, w := utf8x.Get(data[i:])
		if c == utf8x.NoChar {
			// treat a malformed byte as opaque content
			c, w = rune(data[i]), 1
		}
		switch {
		case utf8x.IsLB(c):
			t.hasLB = true
			if first {
				t.startsWithLB = true
			}
			trailingBreaks++
			t.lines++
			col = 0
		case utf8x.IsWS(c):
			t.hasWS = true
			if first {
				t.startsWithWS = true
			}
			trailingBreaks = 0
			col++
		default:
			t.empty = false
			trailingBreaks = 0
			col++
		}
		first = false
		i += w
	}
	t.lastColumn = col
	if len(data) > 0 {
		last, _ := utf8x.GetRight(data)
		t.endsWithLB = utf8x.IsLB(last)
		t.endsWithWS = utf8x.IsWS(last)
	}
	t.trailingLB = trailingBreaks > 1
	return t
}

// Build constructs an atom over data, computing the property bits the
// scanner would have precomputed. The presence bits (empty, has-lb,
// has-ws) describe the raw span; the positional bits (starts/ends with,
// trailing) describe the logical contents, which is what the emitter's
// block hints consume; direct-output is set iff the raw bytes equal the
// logical bytes. Build is the input adapter used by tests, the node
// builders and the converter; the scanner of a full parser produces the
// same shape.
func Build(data []byte, style Style, chomp Chomp, increment int) *Atom {
	a := &Atom{
		Input:     data,
		Start:     Mark{},
		End:       Mark{Index: len(data)},
		Style:     style,
		Chomp:     chomp,
		Increment: increment,
	}

	raw := scanTraits(data)
	a.End.Line = raw.lines
	a.End.Column = raw.lastColumn

	a.Size0 = len(data) == 0
	a.Empty = raw.empty
	a.HasLB = raw.hasLB
	a.HasWS = raw.hasWS
	a.StartsWithWS = raw.startsWithWS
	a.StartsWithLB = raw.startsWithLB
	a.EndsWithWS = raw.endsWithWS
	a.EndsWithLB = raw.endsWithLB
	a.TrailingLB = raw.trailingLB

	decoded, ok := decodeAll(a)
	if !ok {
		return a
	}
	a.StorageHint = len(decoded)
	a.StorageHintValid = true
	a.DirectOutput = bytes.Equal(decoded, data)

	if !a.DirectOutput {
		logical := scanTraits(decoded)
		a.StartsWithWS = logical.startsWithWS
		a.StartsWithLB = logical.startsWithLB
		a.EndsWithWS = logical.endsWithWS
		a.EndsWithLB = logical.endsWithLB
		a.TrailingLB = logical.trailingLB
	}
	return a
}

// decodeAll materializes the logical contents, reporting failure on a
// malformed escape.
func decodeAll(a *Atom) ([]byte, bool) {
	it := NewIter(a)
	var out []byte
	var ic []byte
	var err error
	for {
		ic, err = it.NextChunk(ic)
		if ic == nil {
			break
		}
		out = append(out, ic...)
	}
	if err != nil {
		return nil, false
	}
	return out, true
}
