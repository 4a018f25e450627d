package utf8x

import "errors"

// ErrBadEscape is returned for an unknown or truncated escape sequence.
var ErrBadEscape = errors.New("malformed escape sequence")

// escape replacement table for the single character YAML 1.2 escapes
var escTable = map[byte]rune{
	'0':  0x00,
	'a':  0x07,
	'b':  0x08,
	't':  0x09,
	'\t': 0x09,
	'n':  0x0A,
	'v':  0x0B,
	'f':  0x0C,
	'r':  0x0D,
	'e':  0x1B,
	' ':  0x20,
	'"':  0x22,
	'/':  0x2F,
	'\\': 0x5C,
	'N':  0x85,
	'_':  0xA0,
	'L':  0x2028,
	'P':  0x2029,
}

func hexVal(b byte) (int, bool) {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0'), true
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10, true
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10, true
	}
	return 0, false
}

// ParseEscape parses a backslash escape at the start of b (b[0] must be
// the backslash) and returns the decoded code point and the total number
// of bytes consumed including the backslash.
func ParseEscape(b []byte) (rune, int, error) {
	if len(b) < 2 || b[0] != '\\' {
		return NoChar, 0, ErrBadEscape
	}
	if c, ok := escTable[b[1]]; ok {
		return c, 2, nil
	}

	var digits int
	switch b[1] {
	case 'x':
		digits = 2
	case 'u':
		digits = 4
	case 'U':
		digits = 8
	default:
		return NoChar, 0, ErrBadEscape
	}

	if len(b) < 2+digits {
		return NoChar, 0, ErrBadEscape
	}
	var c rune
	for i := 0; i < digits; i++ {
		v, ok := hexVal(b[2+i])
		if !ok {
			return NoChar, 0, ErrBadEscape
		}
		c = c<<4 | rune(v)
	}
	if !Valid(c) {
		return NoChar, 0, ErrBadEscape
	}
	return c, 2 + digits, nil
}

// ParseURIEscape parses one percent escaped code point at the start of b
// (b[0] must be '%'). Multi byte code points are encoded as consecutive
// %HH groups; the groups are collected until the sequence is complete.
// Returns the raw UTF-8 bytes and the number of input bytes consumed.
func ParseURIEscape(b []byte) ([]byte, int, error) {
	var out [4]byte
	n := 0
	width := 0
	consumed := 0
	for {
		if len(b) < consumed+3 || b[consumed] != '%' {
			return nil, 0, ErrBadEscape
		}
		hi, ok1 := hexVal(b[consumed+1])
		lo, ok2 := hexVal(b[consumed+2])
		if !ok1 || !ok2 {
			return nil, 0, ErrBadEscape
		}
		octet := byte(hi<<4 | lo)
		consumed += 3

		if n == 0 {
			width = WidthByFirstOctet(octet)
			if width == 0 {
				return nil, 0, ErrBadEscape
			}
		} else if octet&0xC0 != 0x80 {
			return nil, 0, ErrBadEscape
		}
		out[n] = octet
		n++
		if n == width {
			break
		}
	}
	if c, w := Get(out[:n]); c == NoChar || w != n {
		return nil, 0, ErrBadEscape
	}
	res := make([]byte, n)
	copy(res, out[:n])
	return res, consumed, nil
}
