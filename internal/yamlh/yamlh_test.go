package yamlh

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/esainane/libfyaml/internal/atom"
)

func tok(text string) *Token {
	return &Token{
		Type: SCALAR_TOKEN,
		Atom: atom.Build([]byte(text), atom.StylePlain, atom.ChompClip, 0),
	}
}

func TestTokenText(t *testing.T) {
	fyt := tok("hello")
	require.Equal(t, "hello", fyt.Text())
	require.Equal(t, 5, fyt.TextLength())
	require.Equal(t, []byte("hello"), fyt.DirectOutput())

	var nilTok *Token
	require.Equal(t, "", nilTok.Text())
	require.Zero(t, nilTok.TextLength())
	require.Nil(t, nilTok.DirectOutput())
}

func TestAnalyzeSimple(t *testing.T) {
	ta := tok("plain").Analyze()
	require.True(t, ta.DirectOutput)
	require.True(t, ta.CanBeSimpleKey)
	require.True(t, ta.FlowPlainAllowed)
	require.True(t, ta.BlockPlainAllowed)
	require.False(t, ta.Multiline)
}

func TestAnalyzeIndicators(t *testing.T) {
	// leading indicators rule out plain
	for _, s := range []string{"#x", "[x", "{x", "&x", "*x", "!x", "|x", ">x", "'x", `"x`, "%x", "@x", "- x", "? x", ": x", "---", "..."} {
		ta := tok(s).Analyze()
		require.False(t, ta.BlockPlainAllowed, "%q", s)
	}

	// interior flow indicators rule out flow plain only
	ta := tok("a,b").Analyze()
	require.False(t, ta.FlowPlainAllowed)
	require.True(t, ta.BlockPlainAllowed)

	// a hash after whitespace is a comment in both contexts
	ta = tok("a #b").Analyze()
	require.False(t, ta.FlowPlainAllowed)
	require.False(t, ta.BlockPlainAllowed)
}

func TestAnalyzeWhitespaceEdges(t *testing.T) {
	ta := analyzeText(" x")
	require.False(t, ta.FlowPlainAllowed)
	require.False(t, ta.BlockPlainAllowed)

	ta = analyzeText("x ")
	require.False(t, ta.BlockAllowed)

	ta = analyzeText("tab\tbed")
	require.False(t, ta.SingleQuotedAllowed)
}

func TestAnalyzeMultiline(t *testing.T) {
	ta := analyzeText("a\nb")
	require.True(t, ta.Multiline)
	require.False(t, ta.CanBeSimpleKey)
	require.True(t, ta.BlockAllowed)
	require.False(t, ta.BlockPlainAllowed)
}

func TestAnalyzeEmpty(t *testing.T) {
	ta := analyzeText("")
	require.True(t, ta.Empty)
	require.True(t, ta.CanBeSimpleKey)
	require.True(t, ta.DirectOutput)
}

func TestNodeCompare(t *testing.T) {
	a := &Node{Type: ScalarNode, Scalar: tok("a")}
	b := &Node{Type: ScalarNode, Scalar: tok("b")}
	seq := &Node{Type: SequenceNode}

	require.Negative(t, Compare(a, b))
	require.Positive(t, Compare(b, a))
	require.Zero(t, Compare(a, a))
	require.Negative(t, Compare(a, seq))
	require.Negative(t, Compare(nil, a))
}

func TestEventValueToken(t *testing.T) {
	v := tok("x")
	require.Equal(t, v, (&Event{Type: SCALAR_EVENT, Value: v}).ValueToken())

	m := &Token{Type: FLOW_SEQUENCE_START_TOKEN}
	fyep := &Event{Type: SEQUENCE_START_EVENT, Marker: m}
	require.Equal(t, m, fyep.ValueToken())
	require.True(t, fyep.FlowMarker())

	fyep = &Event{Type: SEQUENCE_START_EVENT, Marker: &Token{Type: BLOCK_SEQUENCE_START_TOKEN}}
	require.False(t, fyep.FlowMarker())
}

func TestDefaultTagDirectives(t *testing.T) {
	require.True(t, IsDefaultTagDirective(TagDirective{Handle: "!!", Prefix: "tag:yaml.org,2002:"}))
	require.False(t, IsDefaultTagDirective(TagDirective{Handle: "!e!", Prefix: "tag:example.com:"}))
}

func TestStrings(t *testing.T) {
	require.Equal(t, "SCALAR_TOKEN", SCALAR_TOKEN.String())
	require.Equal(t, "scalar", SCALAR_EVENT.String())
	require.Equal(t, "mapping", MappingNode.String())
}
