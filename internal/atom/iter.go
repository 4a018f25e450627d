package atom

import (
	"errors"

	"github.com/esainane/libfyaml/internal/utf8x"
)

// ErrMalformedEscape is latched on an iterator that hits a bad backslash
// or percent escape; every call after that returns it again.
var ErrMalformedEscape = errors.New("malformed escape in scalar")

const startupChunks = 8

var (
	nlChunk  = []byte("\n")
	sepChunk = []byte(" ")
)

// Iter is a decoding cursor over an atom. It is not safe for concurrent
// use; chunks it hands out are valid only until the next call that may
// produce chunks.
type Iter struct {
	atom    *Atom
	data    []byte
	chomp   int // block style indent threshold, in columns
	tabsize int

	singleLine       bool
	danglingEndQuote bool
	empty            bool
	done             bool

	cur, next lineInfo

	chunks [][]byte
	read   int

	ungetC rune
	err    error
}

// NewIter returns an iterator positioned at the start of the atom.
func NewIter(a *Atom) *Iter {
	it := &Iter{}
	it.Start(a)
	return it
}

// Start resets the iterator onto atom.
func (it *Iter) Start(a *Atom) {
	*it = Iter{
		atom:    a,
		data:    a.Data(),
		chomp:   a.Increment,
		tabsize: 8,
		chunks:  make([][]byte, 0, startupChunks),
		ungetC:  utf8x.NoChar,
	}

	it.analyzeLine(&it.next, 0)
	it.next.first = true

	// a quote on a line of its own ends the atom at column zero
	it.danglingEndQuote = a.End.Column == 0
	it.singleLine = a.Start.Line == a.End.Line
	it.empty = a.Empty
}

// Err returns the latched iteration error, if any.
func (it *Iter) Err() error {
	return it.err
}

// nextLine makes the lookahead line current, analyzes the one after it,
// and computes the effective output slice and separator needs for the new
// current line. Returns nil when the atom is exhausted.
func (it *Iter) nextLine() *lineInfo {
	it.cur, it.next = it.next, it.cur
	li := &it.cur

	if li.start >= len(it.data) {
		return nil
	}

	// scan the next line, starting past our terminating break
	ss := len(it.data)
	if li.end < len(it.data) {
		w := utf8x.WidthByFirstOctet(it.data[li.end])
		if w == 0 {
			w = 1
		}
		ss = li.end + w
		if ss > len(it.data) {
			ss = len(it.data)
		}
	}
	it.analyzeLine(&it.next, ss)

	var nli *lineInfo
	if it.next.start < len(it.data) {
		nli = &it.next
	}

	style := it.atom.Style
	switch {
	case style.IsQuoted():
		// quoted styles keep edge whitespace on the first and last line
		li.s, li.e = li.nwsStart, li.nwsEnd
		if li.first {
			li.s = li.start
		}
		if li.last {
			li.e = li.end
		}
		if li.empty && li.first && li.last && !it.singleLine {
			li.s = li.e
		}
	case style.IsBlock():
		li.s, li.e = li.chompStart, li.end
		if li.empty && li.first && li.last && !it.singleLine {
			li.s = li.e
		}
	default:
		li.s, li.e = li.nwsStart, li.nwsEnd
	}
	if li.s > li.e {
		li.s = li.e
	}

	li.needNL = false
	li.needSep = false

	switch style {
	case StylePlain, StyleURI, StyleDoubleQuotedManual:
		li.needNL = !li.last && li.empty
		li.needSep = !li.needNL && nli != nil && !nli.empty

	case StyleComment:
		li.needNL = !li.final

	case StyleSingleQuoted, StyleDoubleQuoted:
		li.needNL = (!li.last && !li.first && li.empty) ||
			(nli != nil && it.empty && !li.first)
		if li.needNL {
			break
		}
		li.needSep = (nli != nil && !nli.empty) ||
			(nli == nil && li.last && it.danglingEndQuote) ||
			(nli != nil && nli.final && nli.empty)
		// a trailing backslash is a line continuation
		if style == StyleDoubleQuoted && li.needSep &&
			li.nwsEnd > li.nwsStart && it.data[li.nwsEnd-1] == '\\' {
			li.needSep = false
		}

	case StyleLiteral:
		li.needNL = true

	case StyleFolded:
		li.needNL = !li.last && (li.empty || li.indented || li.trailingBreaksWS ||
			(nli != nil && nli.indented))
		if !li.needNL {
			li.needSep = nli != nil && !nli.indented && !nli.empty
		}
	}

	return li
}

func (it *Iter) resetChunks() {
	it.chunks = it.chunks[:0]
	it.read = 0
}

func (it *Iter) addChunk(b []byte) {
	if len(b) == 0 {
		return
	}
	it.chunks = append(it.chunks, b)
}

// addChunkCopy copies b so that the chunk survives the source scratch
// buffer; escape replacements are at most a handful of bytes.
func (it *Iter) addChunkCopy(b []byte) {
	if len(b) == 0 {
		return
	}
	c := make([]byte, len(b))
	copy(c, b)
	it.chunks = append(it.chunks, c)
}

// formatLine pulls in the next logical line and converts it to chunks.
// Returns false when the atom is exhausted or an error is latched.
func (it *Iter) formatLine() bool {
	if it.err != nil {
		return false
	}
	li := it.nextLine()
	if li == nil {
		it.done = true
		return false
	}
	if it.done {
		return false
	}

	data := it.data
	s, e := li.s, li.e

	switch it.atom.Style {
	case StyleLiteral, StylePlain, StyleFolded, StyleComment:
		it.addChunk(data[s:e])

	case StyleSingleQuoted:
		for s < e {
			t := utf8x.Memchr(data[s:e], '\'')
			if t < 0 {
				it.addChunk(data[s:e])
				break
			}
			it.addChunk(data[s : s+t])
			s += t
			// an embedded pair collapses to one quote
			if e-s >= 2 && data[s+1] == '\'' {
				it.addChunk(data[s : s+1])
				s++
			}
			s++
		}

	case StyleDoubleQuoted:
		for s < e {
			t := utf8x.Memchr(data[s:e], '\\')
			if t < 0 {
				it.addChunk(data[s:e])
				break
			}
			it.addChunk(data[s : s+t])
			s += t
			if e-s < 2 {
				break
			}
			c, n, err := utf8x.ParseEscape(data[s:e])
			if err != nil {
				it.err = ErrMalformedEscape
				return false
			}
			s += n
			var code [4]byte
			w := utf8x.Put(code[:], c)
			if w == 0 {
				it.err = ErrMalformedEscape
				return false
			}
			it.addChunkCopy(code[:w])
		}

	case StyleURI:
		for s < e {
			t := utf8x.Memchr(data[s:e], '%')
			if t < 0 {
				it.addChunk(data[s:e])
				break
			}
			it.addChunk(data[s : s+t])
			s += t
			code, n, err := utf8x.ParseURIEscape(data[s:e])
			if err != nil {
				it.err = ErrMalformedEscape
				return false
			}
			it.addChunk(code)
			s += n
		}

	case StyleDoubleQuotedManual:
		it.formatManual(data[s:e])
	}

	if li.last && it.atom.Style.IsBlock() {
		it.formatChomp(li)
		it.done = true
		return true
	}

	if li.needSep {
		it.addChunk(sepChunk)
	}
	if li.needNL {
		it.addChunk(nlChunk)
	}
	return true
}

// formatManual re-escapes raw bytes back into double quoted form.
func (it *Iter) formatManual(b []byte) {
	var digits [12]byte
	for len(b) > 0 {
		c, w := utf8x.Get(b)
		if c == utf8x.NoChar {
			c, w = rune(b[0]), 1
		}
		if c != '"' && c != '\\' && !utf8x.IsLB(c) &&
			utf8x.IsPrint(c) && !isBidiControl(c) {
			it.addChunk(b[:w])
			b = b[w:]
			continue
		}

		it.addChunk([]byte{'\\'})
		if name, ok := escapeShortName(c); ok {
			it.addChunkCopy([]byte{name})
		} else {
			it.addChunkCopy(formatHexEscape(digits[:0], c))
		}
		b = b[w:]
	}
}

// formatChomp applies the chomping policy after the last content line of
// a block scalar.
func (it *Iter) formatChomp(li *lineInfo) {
	switch it.atom.Chomp {
	case ChompStrip, ChompClip:
		// trailing interior blank lines accumulate; the counter is
		// flushed only before the next non blank content line
		pendingNL := 0
		if !li.empty {
			pendingNL++
		}
		for {
			li = it.nextLine()
			if li == nil {
				break
			}
			if !it.empty && li.chompStart < li.end {
				for pendingNL > 0 {
					it.addChunk(nlChunk)
					pendingNL--
				}
				it.addChunk(it.data[li.chompStart:li.end])
			}
			if li.lbEnd && !it.empty {
				pendingNL++
			}
		}
		if it.atom.Chomp == ChompClip && pendingNL > 0 {
			it.addChunk(nlChunk)
		}

	case ChompKeep:
		if li.lbEnd {
			it.addChunk(nlChunk)
		}
		for {
			li = it.nextLine()
			if li == nil {
				break
			}
			if !it.empty && li.chompStart < li.end {
				it.addChunk(it.data[li.chompStart:li.end])
			}
			if li.lbEnd {
				it.addChunk(nlChunk)
			}
		}
	}
}

// PeekChunk returns the chunk at the read cursor without advancing, or
// nil if the buffered chunks are exhausted.
func (it *Iter) PeekChunk() []byte {
	if it.read >= len(it.chunks) {
		return nil
	}
	return it.chunks[it.read]
}

// Advance consumes n bytes from the buffered chunks.
func (it *Iter) Advance(n int) {
	for n > 0 && it.read < len(it.chunks) {
		c := it.chunks[it.read]
		run := n
		if run > len(c) {
			run = len(c)
		}
		it.chunks[it.read] = c[run:]
		if len(it.chunks[it.read]) == 0 {
			it.read++
		}
		n -= run
	}
	if it.read >= len(it.chunks) {
		it.resetChunks()
	}
}

// NextChunk consumes curr (if it is the chunk at the cursor) and returns
// the next one, pulling lines through the formatter as needed. It returns
// nil at the end of the atom, or nil with an error if decoding failed.
func (it *Iter) NextChunk(curr []byte) ([]byte, error) {
	ic := it.PeekChunk()
	if len(curr) > 0 && len(ic) > 0 && &curr[0] == &ic[0] {
		it.Advance(len(ic))
	}

	ic = it.PeekChunk()
	if curr == nil || ic == nil {
		it.resetChunks()
		for it.PeekChunk() == nil {
			if !it.formatLine() {
				return nil, it.err
			}
		}
	}
	return it.PeekChunk(), nil
}

// Read copies up to len(buf) decoded bytes into buf, returning the number
// read; 0 at end of atom.
func (it *Iter) Read(buf []byte) (int, error) {
	nread := 0
	for len(buf) > 0 {
		ic := it.PeekChunk()
		if ic != nil {
			run := len(buf)
			if run > len(ic) {
				run = len(ic)
			}
			copy(buf, ic[:run])
			buf = buf[run:]
			nread += run
			it.Advance(run)
			continue
		}
		it.resetChunks()
		for it.PeekChunk() == nil {
			if !it.formatLine() {
				if it.err != nil {
					return nread, it.err
				}
				return nread, nil
			}
		}
	}
	return nread, nil
}

// Getc returns the next decoded byte, or NoChar at the end of the atom.
func (it *Iter) Getc() rune {
	if it.ungetC != utf8x.NoChar {
		c := it.ungetC
		it.ungetC = utf8x.NoChar
		return c & 0xFF
	}
	var b [1]byte
	n, err := it.Read(b[:])
	if err != nil || n != 1 {
		return utf8x.NoChar
	}
	return rune(b[0])
}

// Ungetc pushes back one byte; only a single byte of pushback exists.
func (it *Iter) Ungetc(c rune) rune {
	if it.ungetC != utf8x.NoChar {
		return utf8x.NoChar
	}
	if c == utf8x.NoChar {
		return 0
	}
	it.ungetC = c & 0xFF
	return it.ungetC
}

// Peekc returns the next decoded byte without consuming it.
func (it *Iter) Peekc() rune {
	c := it.Getc()
	if c == utf8x.NoChar {
		return utf8x.NoChar
	}
	return it.Ungetc(c)
}

// UTF8Get assembles and returns the next decoded code point.
func (it *Iter) UTF8Get() rune {
	if it.ungetC != utf8x.NoChar {
		c := it.ungetC
		it.ungetC = utf8x.NoChar
		return c
	}
	var buf [4]byte
	n, err := it.Read(buf[:1])
	if err != nil || n != 1 {
		return utf8x.NoChar
	}
	w := utf8x.WidthByFirstOctet(buf[0])
	if w == 0 {
		return utf8x.NoChar
	}
	if w > 1 {
		n, err = it.Read(buf[1:w])
		if err != nil || n != w-1 {
			return utf8x.NoChar
		}
	}
	c, _ := utf8x.Get(buf[:w])
	return c
}

// UTF8Unget pushes back one code point.
func (it *Iter) UTF8Unget(c rune) rune {
	if it.ungetC != utf8x.NoChar {
		return utf8x.NoChar
	}
	if c == utf8x.NoChar {
		return 0
	}
	it.ungetC = c
	return c
}

// UTF8Peek returns the next code point without consuming it.
func (it *Iter) UTF8Peek() rune {
	c := it.UTF8Get()
	if c == utf8x.NoChar {
		return utf8x.NoChar
	}
	return it.UTF8Unget(c)
}
