package emitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/esainane/libfyaml/internal/yamlh"
)

func ev(et yamlh.EventType) *yamlh.Event {
	return &yamlh.Event{Type: et, Implicit: true}
}

func scalarEv(text string) *yamlh.Event {
	return &yamlh.Event{Type: yamlh.SCALAR_EVENT, Value: scalarTok(text)}
}

func seqStartEv(flow bool) *yamlh.Event {
	tt := yamlh.BLOCK_SEQUENCE_START_TOKEN
	if flow {
		tt = yamlh.FLOW_SEQUENCE_START_TOKEN
	}
	return &yamlh.Event{Type: yamlh.SEQUENCE_START_EVENT, Marker: &yamlh.Token{Type: tt}}
}

func mapStartEv(flow bool) *yamlh.Event {
	tt := yamlh.BLOCK_MAPPING_START_TOKEN
	if flow {
		tt = yamlh.FLOW_MAPPING_START_TOKEN
	}
	return &yamlh.Event{Type: yamlh.MAPPING_START_EVENT, Marker: &yamlh.Token{Type: tt}}
}

func emitEvents(t *testing.T, cfg Config, events ...*yamlh.Event) string {
	t.Helper()
	var sb strings.Builder
	e := New(cfg, func(_ WriteType, b []byte) int {
		n, _ := sb.Write(b)
		return n
	})
	for _, fyep := range events {
		require.NoError(t, e.EmitEvent(fyep))
	}
	return sb.String()
}

func TestStreamingSequence(t *testing.T) {
	out := emitEvents(t, Config{},
		ev(yamlh.STREAM_START_EVENT),
		ev(yamlh.DOCUMENT_START_EVENT),
		seqStartEv(true),
		scalarEv("a"),
		scalarEv("b"),
		ev(yamlh.SEQUENCE_END_EVENT),
		ev(yamlh.DOCUMENT_END_EVENT),
		ev(yamlh.STREAM_END_EVENT),
	)
	require.Equal(t, "- a\n- b\n", out)
}

func TestStreamingMapping(t *testing.T) {
	out := emitEvents(t, Config{},
		ev(yamlh.STREAM_START_EVENT),
		ev(yamlh.DOCUMENT_START_EVENT),
		mapStartEv(false),
		scalarEv("k"),
		scalarEv("v"),
		scalarEv("k2"),
		scalarEv("v2"),
		ev(yamlh.MAPPING_END_EVENT),
		ev(yamlh.DOCUMENT_END_EVENT),
		ev(yamlh.STREAM_END_EVENT),
	)
	require.Equal(t, "k: v\nk2: v2\n", out)
}

func TestStreamingNested(t *testing.T) {
	out := emitEvents(t, Config{},
		ev(yamlh.STREAM_START_EVENT),
		ev(yamlh.DOCUMENT_START_EVENT),
		mapStartEv(false),
		scalarEv("outer"),
		seqStartEv(false),
		scalarEv("1"),
		scalarEv("2"),
		ev(yamlh.SEQUENCE_END_EVENT),
		scalarEv("next"),
		scalarEv("x"),
		ev(yamlh.MAPPING_END_EVENT),
		ev(yamlh.DOCUMENT_END_EVENT),
		ev(yamlh.STREAM_END_EVENT),
	)
	require.Equal(t, "outer:\n  - 1\n  - 2\nnext: x\n", out)
}

func TestStreamingFlowOnelineSequence(t *testing.T) {
	out := emitEvents(t, Config{Mode: ModeFlowOneline},
		ev(yamlh.STREAM_START_EVENT),
		ev(yamlh.DOCUMENT_START_EVENT),
		seqStartEv(false),
		scalarEv("a"),
		scalarEv("b"),
		ev(yamlh.SEQUENCE_END_EVENT),
		ev(yamlh.DOCUMENT_END_EVENT),
		ev(yamlh.STREAM_END_EVENT),
	)
	require.Equal(t, "[a, b]\n", out)
}

func TestStreamingEmptyContainers(t *testing.T) {
	out := emitEvents(t, Config{},
		ev(yamlh.STREAM_START_EVENT),
		ev(yamlh.DOCUMENT_START_EVENT),
		mapStartEv(false),
		scalarEv("k"),
		seqStartEv(false),
		ev(yamlh.SEQUENCE_END_EVENT),
		ev(yamlh.MAPPING_END_EVENT),
		ev(yamlh.DOCUMENT_END_EVENT),
		ev(yamlh.STREAM_END_EVENT),
	)
	require.Equal(t, "k: []\n", out)
}

func TestStreamingScalarDocument(t *testing.T) {
	out := emitEvents(t, Config{},
		ev(yamlh.STREAM_START_EVENT),
		ev(yamlh.DOCUMENT_START_EVENT),
		scalarEv("hello"),
		ev(yamlh.DOCUMENT_END_EVENT),
		ev(yamlh.STREAM_END_EVENT),
	)
	require.Equal(t, "hello\n", out)
}

func TestStreamingStateMisuse(t *testing.T) {
	e := New(Config{}, func(_ WriteType, b []byte) int { return len(b) })

	err := e.EmitEvent(scalarEv("oops"))
	require.ErrorIs(t, err, ErrState)

	// after a state error the emitter is parked in the end state
	err = e.EmitEvent(ev(yamlh.STREAM_START_EVENT))
	require.ErrorIs(t, err, ErrState)
}

func TestStreamingLookaheadBuffers(t *testing.T) {
	var sb strings.Builder
	e := New(Config{}, func(_ WriteType, b []byte) int {
		n, _ := sb.Write(b)
		return n
	})

	require.NoError(t, e.EmitEvent(ev(yamlh.STREAM_START_EVENT)))
	require.NoError(t, e.EmitEvent(ev(yamlh.DOCUMENT_START_EVENT)))
	require.NoError(t, e.EmitEvent(mapStartEv(false)))
	require.NoError(t, e.EmitEvent(scalarEv("k")))
	// a mapping start needs three events of lookahead, so nothing has
	// been decided yet
	require.Empty(t, sb.String())

	require.NoError(t, e.EmitEvent(scalarEv("v")))
	require.NoError(t, e.EmitEvent(ev(yamlh.MAPPING_END_EVENT)))
	require.NoError(t, e.EmitEvent(ev(yamlh.DOCUMENT_END_EVENT)))
	require.NoError(t, e.EmitEvent(ev(yamlh.STREAM_END_EVENT)))
	require.Equal(t, "k: v\n", sb.String())
}

func TestStreamingStateStackDiscipline(t *testing.T) {
	e := New(Config{}, func(_ WriteType, b []byte) int { return len(b) })

	feed := []*yamlh.Event{
		ev(yamlh.STREAM_START_EVENT),
		ev(yamlh.DOCUMENT_START_EVENT),
		mapStartEv(false),
		scalarEv("k"),
		seqStartEv(false),
		scalarEv("1"),
		scalarEv("2"),
	}
	for _, fyep := range feed {
		require.NoError(t, e.EmitEvent(fyep))
	}
	// one open mapping and one open sequence
	require.Len(t, e.scStack, 2)
	require.Len(t, e.stateStack, 2)

	require.NoError(t, e.EmitEvent(ev(yamlh.SEQUENCE_END_EVENT)))
	require.NoError(t, e.EmitEvent(ev(yamlh.MAPPING_END_EVENT)))
	require.Len(t, e.scStack, 0)
	require.Len(t, e.stateStack, 0)
}
