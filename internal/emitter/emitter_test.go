package emitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/esainane/libfyaml/internal/atom"
	"github.com/esainane/libfyaml/internal/yamlh"
)

func testScalarAtom(text string) *atom.Atom {
	b := []byte(text)
	a := atom.Build(b, atom.StylePlain, atom.ChompClip, 0)
	if a.DirectOutput {
		return a
	}
	return atom.Build(b, atom.StyleLiteral, atom.ChompKeep, 0)
}

func scalarTok(text string) *yamlh.Token {
	return &yamlh.Token{Type: yamlh.SCALAR_TOKEN, Atom: testScalarAtom(text)}
}

func sc(text string) *yamlh.Node {
	return scStyled(text, yamlh.AnyStyle)
}

func scStyled(text string, style yamlh.NodeStyle) *yamlh.Node {
	return &yamlh.Node{Type: yamlh.ScalarNode, Style: style, Scalar: scalarTok(text)}
}

func seq(children ...*yamlh.Node) *yamlh.Node {
	return &yamlh.Node{
		Type:     yamlh.SequenceNode,
		Marker:   &yamlh.Token{Type: yamlh.BLOCK_SEQUENCE_START_TOKEN},
		Children: children,
	}
}

func mapping(pairs ...yamlh.NodePair) *yamlh.Node {
	return &yamlh.Node{
		Type:   yamlh.MappingNode,
		Marker: &yamlh.Token{Type: yamlh.BLOCK_MAPPING_START_TOKEN},
		Pairs:  pairs,
	}
}

func pair(k, v *yamlh.Node) yamlh.NodePair {
	return yamlh.NodePair{Key: k, Value: v}
}

func emitDoc(t *testing.T, cfg Config, root *yamlh.Node) string {
	t.Helper()
	var sb strings.Builder
	e := New(cfg, func(_ WriteType, b []byte) int {
		n, _ := sb.Write(b)
		return n
	})
	doc := &yamlh.Document{State: yamlh.NewDocumentState(), Root: root}
	require.NoError(t, e.EmitDocument(doc))
	return sb.String()
}

func TestEmitBlockMapping(t *testing.T) {
	out := emitDoc(t, Config{}, mapping(pair(sc("k"), sc("v"))))
	require.Equal(t, "k: v\n", out)
}

func TestEmitBlockSequence(t *testing.T) {
	out := emitDoc(t, Config{}, seq(sc("a"), sc("b")))
	require.Equal(t, "- a\n- b\n", out)
}

func TestEmitSequenceUnderKey(t *testing.T) {
	out := emitDoc(t, Config{}, mapping(pair(sc("k"), seq(sc("a"), sc("b")))))
	require.Equal(t, "k:\n- a\n- b\n", out)
}

func TestEmitNestedMapping(t *testing.T) {
	out := emitDoc(t, Config{}, mapping(pair(sc("a"), mapping(pair(sc("b"), sc("c"))))))
	require.Equal(t, "a:\n  b: c\n", out)
}

func TestEmitNullValue(t *testing.T) {
	out := emitDoc(t, Config{}, mapping(pair(sc("k"), sc(""))))
	require.Equal(t, "k:\n", out)
}

func TestEmitEmptyContainers(t *testing.T) {
	out := emitDoc(t, Config{}, mapping(
		pair(sc("k"), seq()),
		pair(sc("m"), mapping()),
	))
	require.Equal(t, "k: []\nm: {}\n", out)
}

func TestEmitLiteralKeep(t *testing.T) {
	out := emitDoc(t, Config{}, mapping(
		pair(sc("key"), scStyled("line1\nline2\n\n", yamlh.LiteralStyle)),
	))
	require.Equal(t, "key: |+\n  line1\n  line2\n\n", out)
}

func TestEmitLiteralClip(t *testing.T) {
	out := emitDoc(t, Config{}, mapping(
		pair(sc("key"), scStyled("l1\nl2\n", yamlh.LiteralStyle)),
	))
	require.Equal(t, "key: |\n  l1\n  l2\n", out)
}

func TestEmitLiteralStrip(t *testing.T) {
	out := emitDoc(t, Config{}, mapping(
		pair(sc("key"), scStyled("solo", yamlh.LiteralStyle)),
	))
	require.Equal(t, "key: |-\n  solo\n", out)
}

func TestEmitFolded(t *testing.T) {
	out := emitDoc(t, Config{}, mapping(
		pair(sc("key"), scStyled("fold me\nplease\n", yamlh.FoldedStyle)),
	))
	require.Equal(t, "key: >\n  fold me\n\n  please\n", out)
}

func TestEmitSingleQuoted(t *testing.T) {
	out := emitDoc(t, Config{}, scStyled("it's", yamlh.SingleQuotedStyle))
	require.Equal(t, "'it''s'\n", out)
}

func TestEmitDoubleQuotedEscapes(t *testing.T) {
	out := emitDoc(t, Config{}, scStyled("a\nb\x07", yamlh.DoubleQuotedStyle))
	require.Equal(t, "\"a\\nb\\a\"\n", out)
}

func TestEmitPlainDirect(t *testing.T) {
	out := emitDoc(t, Config{}, sc("hello world"))
	require.Equal(t, "hello world\n", out)
}

func TestEmitAnyWithIndicatorsQuotes(t *testing.T) {
	// a leading indicator makes plain illegal
	out := emitDoc(t, Config{}, sc("[not a list]"))
	require.Equal(t, "\"[not a list]\"\n", out)
}

func TestEmitWidthFolding(t *testing.T) {
	cfg := Config{Width: 8}
	out := emitDoc(t, cfg, sc("aaaaaaaaaa bbbbbbbbbb cccccccccc"))
	require.Equal(t, "aaaaaaaaaa\nbbbbbbbbbb\ncccccccccc\n", out)
	for _, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
		require.LessOrEqual(t, len(line), 10)
		require.NotContains(t, line, " ")
	}
}

func TestEmitUnboundedWidth(t *testing.T) {
	cfg := Config{Width: -1}
	long := strings.Repeat("word ", 40) + "end"
	out := emitDoc(t, cfg, sc(long))
	require.Equal(t, long+"\n", out)
}

func TestEmitComplexKey(t *testing.T) {
	out := emitDoc(t, Config{}, mapping(pair(sc("multi\nline"), sc("v"))))
	require.Equal(t, "? \"multi\\nline\"\n: v\n", out)
}

// scp builds a plain styled scalar, the shape parsed trees carry.
func scp(text string) *yamlh.Node {
	return scStyled(text, yamlh.PlainStyle)
}

func TestEmitFlowMode(t *testing.T) {
	cfg := Config{Mode: ModeFlow}
	out := emitDoc(t, cfg, mapping(pair(scp("a"), scp("1")), pair(scp("b"), scp("2"))))
	require.Equal(t, "{\n  a: 1,\n  b: 2\n}\n", out)
}

func TestEmitFlowOneline(t *testing.T) {
	cfg := Config{Mode: ModeFlowOneline}
	out := emitDoc(t, cfg, mapping(pair(scp("a"), scp("1")), pair(scp("b"), scp("2"))))
	require.Equal(t, "{a: 1, b: 2}\n", out)
}

func TestEmitFlowOnelineSequence(t *testing.T) {
	cfg := Config{Mode: ModeFlowOneline}
	out := emitDoc(t, cfg, seq(scp("a"), scp("b")))
	require.Equal(t, "[a, b]\n", out)
}

func TestEmitFlowModeQuotesAnyScalars(t *testing.T) {
	// a scalar with no requested style gets quoted in flow mode
	cfg := Config{Mode: ModeFlowOneline}
	out := emitDoc(t, cfg, seq(sc("x")))
	require.Equal(t, "['x']\n", out)
}

func TestEmitJSONOneline(t *testing.T) {
	cfg := Config{Mode: ModeJSONOneline}
	out := emitDoc(t, cfg, mapping(pair(sc("k"), scStyled("true", yamlh.DoubleQuotedStyle))))
	require.Equal(t, "{\"k\":\"true\"}\n", out)
}

func TestEmitJSON(t *testing.T) {
	cfg := Config{Mode: ModeJSON}
	out := emitDoc(t, cfg, mapping(pair(sc("k"), scStyled("true", yamlh.DoubleQuotedStyle))))
	require.Equal(t, "{\n  \"k\": \"true\"\n}\n", out)
}

func TestEmitJSONCoercion(t *testing.T) {
	cfg := Config{Mode: ModeJSONOneline}
	out := emitDoc(t, cfg, mapping(
		pair(sc("a"), sc("true")),
		pair(sc("b"), sc("123")),
		pair(sc("c"), sc("hello")),
		pair(sc("d"), sc("null")),
	))
	require.Equal(t, "{\"a\":true,\"b\":123,\"c\":\"hello\",\"d\":null}\n", out)
}

func TestEmitSortKeys(t *testing.T) {
	cfg := Config{SortKeys: true}
	out := emitDoc(t, cfg, mapping(
		pair(sc("b"), sc("2")),
		pair(sc("a"), sc("1")),
	))
	require.Equal(t, "a: 1\nb: 2\n", out)
}

func TestEmitInsertionOrderWithoutSort(t *testing.T) {
	out := emitDoc(t, Config{}, mapping(
		pair(sc("b"), sc("2")),
		pair(sc("a"), sc("1")),
	))
	require.Equal(t, "b: 2\na: 1\n", out)
}

func TestEmitIndentStep(t *testing.T) {
	cfg := Config{Indent: 4}
	out := emitDoc(t, cfg, mapping(pair(sc("a"), mapping(pair(sc("b"), sc("c"))))))
	require.Equal(t, "a:\n    b: c\n", out)
}

func TestEmitComments(t *testing.T) {
	cfg := Config{OutputComments: true}
	value := sc("v")
	value.Scalar.Comments[yamlh.CommentRight] = atom.Build(
		[]byte("# note"), atom.StyleComment, atom.ChompClip, 0)
	out := emitDoc(t, cfg, mapping(pair(sc("k"), value)))
	require.Equal(t, "k: v # note\n", out)

	// comments are dropped unless enabled
	out = emitDoc(t, Config{}, mapping(pair(sc("k"), value)))
	require.Equal(t, "k: v\n", out)
}

func TestEmitAnchorsAndAliases(t *testing.T) {
	anchored := sc("x")
	anchored.Anchor = &yamlh.Token{Type: yamlh.ANCHOR_TOKEN, Atom: testScalarAtom("anc")}
	alias := &yamlh.Node{
		Type:   yamlh.ScalarNode,
		Style:  yamlh.AliasStyle,
		Scalar: &yamlh.Token{Type: yamlh.ALIAS_TOKEN, Atom: testScalarAtom("anc")},
	}
	out := emitDoc(t, Config{}, mapping(
		pair(sc("a"), anchored),
		pair(sc("b"), alias),
	))
	require.Equal(t, "a: &anc x\nb: *anc\n", out)
}

func TestEmitStripLabels(t *testing.T) {
	anchored := sc("x")
	anchored.Anchor = &yamlh.Token{Type: yamlh.ANCHOR_TOKEN, Atom: testScalarAtom("anc")}
	cfg := Config{StripLabels: true}
	out := emitDoc(t, cfg, mapping(pair(sc("a"), anchored)))
	require.Equal(t, "a: x\n", out)
}

func TestEmitTags(t *testing.T) {
	tagged := sc("1")
	tagged.Tag = &yamlh.Token{Type: yamlh.TAG_TOKEN, Atom: testScalarAtom("tag:yaml.org,2002:str")}
	out := emitDoc(t, Config{}, mapping(pair(sc("a"), tagged)))
	require.Equal(t, "a: !!str 1\n", out)

	out = emitDoc(t, Config{StripTags: true}, mapping(pair(sc("a"), tagged)))
	require.Equal(t, "a: 1\n", out)
}

func TestEmitVerbatimTag(t *testing.T) {
	tagged := sc("v")
	tagged.Tag = &yamlh.Token{Type: yamlh.TAG_TOKEN, Atom: testScalarAtom("tag:example.com,2000:foo")}
	out := emitDoc(t, Config{}, mapping(pair(sc("a"), tagged)))
	require.Equal(t, "a: !<tag:example.com,2000:foo> v\n", out)
}

func TestEmitDocumentMarks(t *testing.T) {
	cfg := Config{DocStartMark: PolicyOn, DocEndMark: PolicyOn}
	out := emitDoc(t, cfg, mapping(pair(sc("k"), sc("v"))))
	require.Equal(t, "---\nk: v\n...\n", out)
}

func TestEmitScalarRootAfterMark(t *testing.T) {
	cfg := Config{DocStartMark: PolicyOn}
	out := emitDoc(t, cfg, sc("hello"))
	require.Equal(t, "--- hello\n", out)
}

func TestEmitVersionDirective(t *testing.T) {
	var sb strings.Builder
	e := New(Config{}, func(_ WriteType, b []byte) int {
		n, _ := sb.Write(b)
		return n
	})
	st := yamlh.NewDocumentState()
	st.Version = yamlh.VersionDirective{Major: 1, Minor: 1}
	st.VersionExplicit = true
	doc := &yamlh.Document{State: st, Root: mapping(pair(sc("k"), sc("v")))}
	require.NoError(t, e.EmitDocument(doc))
	require.Equal(t, "%YAML 1.1\n---\nk: v\n", sb.String())
}

func TestEmitTagDirective(t *testing.T) {
	var sb strings.Builder
	e := New(Config{}, func(_ WriteType, b []byte) int {
		n, _ := sb.Write(b)
		return n
	})
	st := yamlh.NewDocumentState()
	st.TagsExplicit = true
	st.TagDirectives = []yamlh.TagDirective{
		{Handle: "!e!", Prefix: "tag:example.com,2000:app/"},
	}
	root := sc("bar")
	root.Tag = &yamlh.Token{Type: yamlh.TAG_TOKEN, Atom: testScalarAtom("tag:example.com,2000:app/foo")}
	doc := &yamlh.Document{State: st, Root: root}
	require.NoError(t, e.EmitDocument(doc))
	require.Equal(t, "%TAG !e! tag:example.com,2000:app/\n--- !e!foo bar\n", sb.String())
}

func TestEmitMultiDocument(t *testing.T) {
	var sb strings.Builder
	e := New(Config{}, func(_ WriteType, b []byte) int {
		n, _ := sb.Write(b)
		return n
	})
	d1 := &yamlh.Document{State: yamlh.NewDocumentState(), Root: mapping(pair(sc("a"), sc("1")))}
	d2 := &yamlh.Document{State: yamlh.NewDocumentState(), Root: mapping(pair(sc("b"), sc("2")))}
	require.NoError(t, e.EmitDocument(d1))
	require.NoError(t, e.EmitDocument(d2))
	require.Equal(t, "a: 1\n---\nb: 2\n", sb.String())
}

func TestEmitJSONSuppressesFraming(t *testing.T) {
	var sb strings.Builder
	e := New(Config{Mode: ModeJSONOneline, DocStartMark: PolicyOn, DocEndMark: PolicyOn},
		func(_ WriteType, b []byte) int {
			n, _ := sb.Write(b)
			return n
		})
	st := yamlh.NewDocumentState()
	st.VersionExplicit = true
	doc := &yamlh.Document{State: st, Root: mapping(pair(sc("k"), sc("hello")))}
	require.NoError(t, e.EmitDocument(doc))
	require.Equal(t, "{\"k\":\"hello\"}\n", sb.String())
}

func TestEmitNoTrailingWhitespace(t *testing.T) {
	outs := []string{
		emitDoc(t, Config{}, mapping(
			pair(sc("a"), scStyled("x\n\ny\n", yamlh.LiteralStyle)),
			pair(sc("b"), scStyled("p\n\nq\n", yamlh.FoldedStyle)),
			pair(sc("c"), sc("")),
		)),
		emitDoc(t, Config{Mode: ModeFlow}, mapping(pair(sc("a"), sc("1")))),
	}
	for _, out := range outs {
		for _, line := range strings.Split(out, "\n") {
			require.Equal(t, strings.TrimRight(line, " \t"), line)
		}
	}
}

func TestEmitWriteTypes(t *testing.T) {
	var types []WriteType
	e := New(Config{}, func(wt WriteType, b []byte) int {
		types = append(types, wt)
		return len(b)
	})
	doc := &yamlh.Document{State: yamlh.NewDocumentState(),
		Root: mapping(pair(sc("k"), scStyled("v", yamlh.DoubleQuotedStyle)))}
	require.NoError(t, e.EmitDocument(doc))
	require.Contains(t, types, WritePlainScalarKey)
	require.Contains(t, types, WriteIndicator)
	require.Contains(t, types, WriteDoubleQuotedScalar)
	require.Contains(t, types, WriteLinebreak)
}

func TestEmitOutputErrorLatches(t *testing.T) {
	e := New(Config{}, func(_ WriteType, b []byte) int {
		return 0
	})
	doc := &yamlh.Document{State: yamlh.NewDocumentState(), Root: mapping(pair(sc("k"), sc("v")))}
	require.ErrorIs(t, e.EmitDocument(doc), ErrOutput)
}
