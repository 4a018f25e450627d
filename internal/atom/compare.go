package atom

import (
	"bytes"

	"github.com/esainane/libfyaml/internal/utf8x"
)

// lengthError is the negative sentinel returned by the length and
// comparison queries when iteration fails.
const lengthError = -1

// FormatLength returns the logical byte length of the atom, caching the
// result in the storage hint. Returns a negative value on a decode error.
func (a *Atom) FormatLength() int {
	if a == nil {
		return lengthError
	}
	if a.StorageHintValid {
		return a.StorageHint
	}

	it := NewIter(a)
	length := 0
	var ic []byte
	var err error
	for {
		ic, err = it.NextChunk(ic)
		if ic == nil {
			break
		}
		length += len(ic)
	}
	if err != nil {
		return lengthError
	}

	a.StorageHint = length
	a.StorageHintValid = true
	return length
}

// FormatInto materializes the atom into buf, returning the number of
// bytes written, or a negative value if buf is too small or decoding
// failed.
func (a *Atom) FormatInto(buf []byte) int {
	if a == nil {
		return lengthError
	}
	it := NewIter(a)
	pos := 0
	var ic []byte
	var err error
	for {
		ic, err = it.NextChunk(ic)
		if ic == nil {
			break
		}
		if len(buf)-pos < len(ic) {
			return lengthError
		}
		copy(buf[pos:], ic)
		pos += len(ic)
	}
	if err != nil {
		return lengthError
	}
	return pos
}

// Text materializes the logical contents as a string. Direct output
// atoms skip the iterator.
func (a *Atom) Text() string {
	if a == nil {
		return ""
	}
	if a.DirectOutput {
		return string(a.Data())
	}
	n := a.FormatLength()
	if n <= 0 {
		return ""
	}
	buf := make([]byte, n)
	if a.FormatInto(buf) != n {
		return ""
	}
	return string(buf)
}

// Memcmp compares the atom's logical contents against ptr, with the
// usual negative/zero/positive result. A direct output atom reduces to
// bytes.Compare; otherwise the iterator is driven byte by byte.
func (a *Atom) Memcmp(ptr []byte) int {
	if a == nil || a.Size0 {
		if len(ptr) == 0 {
			return 0
		}
		return -1
	}

	if a.DirectOutput {
		d := a.Data()
		l := len(d)
		if len(ptr) < l {
			l = len(ptr)
		}
		if r := bytes.Compare(d[:l], ptr[:l]); r != 0 {
			return r
		}
		switch {
		case len(d) == len(ptr):
			return 0
		case len(ptr) > len(d):
			return -1
		default:
			return 1
		}
	}

	it := NewIter(a)
	i := 0
	var c, ct rune
	ct = utf8x.NoChar
	for {
		c = it.Getc()
		if c < 0 || i >= len(ptr) {
			break
		}
		ct = rune(ptr[i])
		if ct != c {
			break
		}
		i++
	}
	switch {
	case c < 0 && i >= len(ptr):
		return 0
	case c < 0:
		// the atom ends first
		return -1
	case i >= len(ptr):
		// ptr ends first
		return 1
	case ct > c:
		return -1
	}
	return 1
}

// Strcmp compares against a string.
func (a *Atom) Strcmp(s string) int {
	return a.Memcmp([]byte(s))
}

// Cmp compares two atoms' logical contents.
func Cmp(a1, a2 *Atom) int {
	if a1 == a2 {
		return 0
	}
	if a1 == nil {
		return -1
	}
	if a2 == nil {
		return 1
	}

	var d1, d2 []byte
	if a1.DirectOutput {
		d1 = a1.Data()
	}
	if a2.DirectOutput {
		d2 = a2.Data()
	}

	if d1 != nil && d2 != nil {
		l := len(d1)
		if len(d2) < l {
			l = len(d2)
		}
		if r := bytes.Compare(d1[:l], d2[:l]); r != 0 {
			return r
		}
		switch {
		case len(d1) == len(d2):
			return 0
		case len(d2) > len(d1):
			return -1
		default:
			return 1
		}
	}
	if d2 != nil {
		return a1.Memcmp(d2)
	}
	if d1 != nil {
		return -a2.Memcmp(d1)
	}

	it1 := NewIter(a1)
	it2 := NewIter(a2)
	var c1, c2 rune
	for {
		c1 = it1.Getc()
		c2 = it2.Getc()
		if c1 != c2 || c1 < 0 || c2 < 0 {
			break
		}
	}
	if c1 < 0 && c2 < 0 {
		return 0
	}
	if c2 > c1 {
		return -1
	}
	return 1
}

// IsNumber reports whether the logical contents form a numeric literal:
// optional sign, decimal digits, optional fraction, optional exponent,
// with the whole content consumed.
func (a *Atom) IsNumber() bool {
	if a == nil || a.Size0 {
		return false
	}

	it := NewIter(a)
	length := 0

	isDigit := func(c rune) bool { return c >= '0' && c <= '9' }
	skipDigits := func() {
		for {
			c := it.Peekc()
			if c < 0 || !isDigit(c) {
				return
			}
			it.Getc()
			length++
		}
	}

	c := it.Peekc()
	if c == '+' || c == '-' {
		it.Getc()
		length++
	}
	skipDigits()

	if it.Peekc() == '.' {
		it.Getc()
		length++
		skipDigits()
	}

	c = it.Peekc()
	if c == 'e' || c == 'E' {
		it.Getc()
		length++
		c = it.Peekc()
		if c == '+' || c == '-' {
			it.Getc()
			length++
		}
		skipDigits()
	}

	return it.Peekc() < 0 && length > 0
}
