package utf8x

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetPutRoundTrip(t *testing.T) {
	// representative points across every width, plus the boundaries
	points := []rune{
		0x01, 0x41, 0x7F,
		0x80, 0x7FF,
		0x800, 0x2713, 0xD7FF, 0xE000, 0xFFFD,
		0x10000, 0x1F600, 0x10FFFF,
	}
	for _, c := range points {
		var buf [4]byte
		w := Put(buf[:], c)
		require.Equal(t, Width(c), w, "width of %U", c)

		got, gw := Get(buf[:w])
		require.Equal(t, c, got, "round trip of %U", c)
		require.Equal(t, w, gw)
		require.Equal(t, w, WidthByFirstOctet(buf[0]))

		rc, rw := GetRight(buf[:w])
		require.Equal(t, c, rc, "right decode of %U", c)
		require.Equal(t, w, rw)
	}
}

func TestGetInvalid(t *testing.T) {
	cases := [][]byte{
		nil,
		{0x80},             // bare continuation
		{0xC2},             // truncated 2 byte
		{0xE2, 0x80},       // truncated 3 byte
		{0xC0, 0xAF},       // overlong
		{0xED, 0xA0, 0x80}, // surrogate
		{0xF8, 0x80, 0x80}, // invalid lead
	}
	for _, b := range cases {
		c, w := Get(b)
		require.Equal(t, NoChar, c, "%x", b)
		require.Equal(t, 0, w, "%x", b)
	}
}

func TestValid(t *testing.T) {
	require.True(t, Valid(0x41))
	require.True(t, Valid(0x10FFFF))
	require.False(t, Valid(-1))
	require.False(t, Valid(0xD800))
	require.False(t, Valid(0xDFFF))
	require.False(t, Valid(0x110000))
}

func TestGetRight(t *testing.T) {
	b := []byte("ab✓")
	c, w := GetRight(b)
	require.Equal(t, rune(0x2713), c)
	require.Equal(t, 3, w)

	c, w = GetRight([]byte("ab"))
	require.Equal(t, 'b', c)
	require.Equal(t, 1, w)

	c, w = GetRight(nil)
	require.Equal(t, NoChar, c)
	require.Equal(t, 0, w)
}

func TestMemchr(t *testing.T) {
	b := []byte("hello ✓ world")
	require.Equal(t, 4, Memchr(b, 'o'))
	require.Equal(t, 6, Memchr(b, 0x2713))
	require.Equal(t, -1, Memchr(b, 'z'))
	require.Equal(t, -1, Memchr(b, NoChar))
}

func TestCount(t *testing.T) {
	require.Equal(t, 0, Count(nil))
	require.Equal(t, 5, Count([]byte("hello")))
	require.Equal(t, 2, Count([]byte("a✓")))
}

func TestParseEscape(t *testing.T) {
	tests := []struct {
		in   string
		want rune
		n    int
	}{
		{`\0`, 0x00, 2},
		{`\a`, 0x07, 2},
		{`\t`, 0x09, 2},
		{`\n`, 0x0A, 2},
		{`\r`, 0x0D, 2},
		{`\e`, 0x1B, 2},
		{`\ `, 0x20, 2},
		{`\"`, '"', 2},
		{`\/`, '/', 2},
		{`\\`, '\\', 2},
		{`\N`, 0x85, 2},
		{`\_`, 0xA0, 2},
		{`\L`, 0x2028, 2},
		{`\P`, 0x2029, 2},
		{`\x41`, 'A', 4},
		{`\u2713`, 0x2713, 6},
		{`\U0001F600`, 0x1F600, 10},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, n, err := ParseEscape([]byte(tt.in))
			require.NoError(t, err)
			require.Equal(t, tt.want, c)
			require.Equal(t, tt.n, n)
		})
	}
}

func TestParseEscapeMalformed(t *testing.T) {
	for _, in := range []string{`\`, `\q`, `\x4`, `\xZZ`, `\u12`, `\UDDDDDDDD`, `x`} {
		_, _, err := ParseEscape([]byte(in))
		require.ErrorIs(t, err, ErrBadEscape, "%q", in)
	}
}

func TestParseURIEscape(t *testing.T) {
	b, n, err := ParseURIEscape([]byte("%41rest"))
	require.NoError(t, err)
	require.Equal(t, []byte("A"), b)
	require.Equal(t, 3, n)

	// U+2713 as three percent groups
	b, n, err = ParseURIEscape([]byte("%E2%9C%93"))
	require.NoError(t, err)
	require.Equal(t, []byte("✓"), b)
	require.Equal(t, 9, n)

	for _, in := range []string{"%", "%4", "%ZZ", "%E2%9C", "%E2%41%41", "%80"} {
		_, _, err = ParseURIEscape([]byte(in))
		require.ErrorIs(t, err, ErrBadEscape, "%q", in)
	}
}

func TestIsPrint(t *testing.T) {
	require.True(t, IsPrint('a'))
	require.True(t, IsPrint('\t'))
	require.True(t, IsPrint('\n'))
	require.True(t, IsPrint(0x2713))
	require.False(t, IsPrint(0x07))
	require.False(t, IsPrint(0x1B))
	require.False(t, IsPrint(BOM))
}
