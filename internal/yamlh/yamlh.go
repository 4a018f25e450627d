// Package yamlh holds the data model shared between the scanner, the
// parser and the emitter: tokens carrying atoms, events, nodes, documents
// and directives.
package yamlh

import (
	"fmt"

	"github.com/esainane/libfyaml/internal/atom"
)

type VersionDirective struct {
	Major int // The Major version number.
	Minor int // The Minor version number.
}

type TagDirective struct {
	Handle string // The tag Handle.
	Prefix string // The tag Prefix.
}

// DefaultTagDirectives are implied by every document.
var DefaultTagDirectives = []TagDirective{
	{Handle: "!", Prefix: "!"},
	{Handle: "!!", Prefix: "tag:yaml.org,2002:"},
}

// IsDefaultTagDirective reports whether td is one of the implied pair.
func IsDefaultTagDirective(td TagDirective) bool {
	for _, d := range DefaultTagDirectives {
		if d.Handle == td.Handle && d.Prefix == td.Prefix {
			return true
		}
	}
	return false
}

type TokenType int

// Token types.
const (
	// An empty token.
	NO_TOKEN TokenType = iota

	STREAM_START_TOKEN // A STREAM-START token.
	STREAM_END_TOKEN   // A STREAM-END token.

	VERSION_DIRECTIVE_TOKEN // A VERSION-DIRECTIVE token.
	TAG_DIRECTIVE_TOKEN     // A TAG-DIRECTIVE token.
	DOCUMENT_START_TOKEN    // A DOCUMENT-START token.
	DOCUMENT_END_TOKEN      // A DOCUMENT-END token.

	BLOCK_SEQUENCE_START_TOKEN // A BLOCK-SEQUENCE-START token.
	BLOCK_MAPPING_START_TOKEN  // A BLOCK-MAPPING-START token.
	BLOCK_END_TOKEN            // A BLOCK-END token.

	FLOW_SEQUENCE_START_TOKEN // A FLOW-SEQUENCE-START token.
	FLOW_SEQUENCE_END_TOKEN   // A FLOW-SEQUENCE-END token.
	FLOW_MAPPING_START_TOKEN  // A FLOW-MAPPING-START token.
	FLOW_MAPPING_END_TOKEN    // A FLOW-MAPPING-END token.

	BLOCK_ENTRY_TOKEN // A BLOCK-ENTRY token.
	FLOW_ENTRY_TOKEN  // A FLOW-ENTRY token.
	KEY_TOKEN         // A KEY token.
	VALUE_TOKEN       // A VALUE token.

	ALIAS_TOKEN  // An ALIAS token.
	ANCHOR_TOKEN // An ANCHOR token.
	TAG_TOKEN    // A TAG token.
	SCALAR_TOKEN // A SCALAR token.
)

func (tt TokenType) String() string {
	switch tt {
	case NO_TOKEN:
		return "NO_TOKEN"
	case STREAM_START_TOKEN:
		return "STREAM_START_TOKEN"
	case STREAM_END_TOKEN:
		return "STREAM_END_TOKEN"
	case VERSION_DIRECTIVE_TOKEN:
		return "VERSION_DIRECTIVE_TOKEN"
	case TAG_DIRECTIVE_TOKEN:
		return "TAG_DIRECTIVE_TOKEN"
	case DOCUMENT_START_TOKEN:
		return "DOCUMENT_START_TOKEN"
	case DOCUMENT_END_TOKEN:
		return "DOCUMENT_END_TOKEN"
	case BLOCK_SEQUENCE_START_TOKEN:
		return "BLOCK_SEQUENCE_START_TOKEN"
	case BLOCK_MAPPING_START_TOKEN:
		return "BLOCK_MAPPING_START_TOKEN"
	case BLOCK_END_TOKEN:
		return "BLOCK_END_TOKEN"
	case FLOW_SEQUENCE_START_TOKEN:
		return "FLOW_SEQUENCE_START_TOKEN"
	case FLOW_SEQUENCE_END_TOKEN:
		return "FLOW_SEQUENCE_END_TOKEN"
	case FLOW_MAPPING_START_TOKEN:
		return "FLOW_MAPPING_START_TOKEN"
	case FLOW_MAPPING_END_TOKEN:
		return "FLOW_MAPPING_END_TOKEN"
	case BLOCK_ENTRY_TOKEN:
		return "BLOCK_ENTRY_TOKEN"
	case FLOW_ENTRY_TOKEN:
		return "FLOW_ENTRY_TOKEN"
	case KEY_TOKEN:
		return "KEY_TOKEN"
	case VALUE_TOKEN:
		return "VALUE_TOKEN"
	case ALIAS_TOKEN:
		return "ALIAS_TOKEN"
	case ANCHOR_TOKEN:
		return "ANCHOR_TOKEN"
	case TAG_TOKEN:
		return "TAG_TOKEN"
	case SCALAR_TOKEN:
		return "SCALAR_TOKEN"
	}
	return "<unknown token>"
}

// CommentPlacement selects one of the three comment slots a token can
// carry.
type CommentPlacement int

const (
	CommentTop CommentPlacement = iota
	CommentRight
	CommentBottom

	commentMax
)

// Token is produced by the scanner. The atom carries the raw span and
// the decoding hints; tokens own their atoms, which in turn borrow the
// input buffer.
type Token struct {
	Type TokenType

	// The value Atom (for SCALAR, ALIAS, ANCHOR and TAG tokens).
	Atom *atom.Atom

	// Up to three independently attached comments.
	Comments [commentMax]*atom.Atom

	analysis      TextAnalysis
	analysisValid bool
}

// Comment returns the comment atom at the given placement, or nil.
func (t *Token) Comment(cp CommentPlacement) *atom.Atom {
	if t == nil || cp < 0 || cp >= commentMax {
		return nil
	}
	h := t.Comments[cp]
	if !h.IsSet() {
		return nil
	}
	return h
}

// Text materializes the token's logical text.
func (t *Token) Text() string {
	if t == nil || t.Atom == nil {
		return ""
	}
	return t.Atom.Text()
}

// TextLength returns the logical text length.
func (t *Token) TextLength() int {
	if t == nil || t.Atom == nil {
		return 0
	}
	n := t.Atom.FormatLength()
	if n < 0 {
		return 0
	}
	return n
}

// DirectOutput returns the raw span when it equals the logical text, or
// nil when the token must go through the iterator.
func (t *Token) DirectOutput() []byte {
	if t == nil || t.Atom == nil || !t.Atom.DirectOutput {
		return nil
	}
	return t.Atom.Data()
}

type EventType int8

// Event types.
const (
	NO_EVENT EventType = iota

	STREAM_START_EVENT   // A STREAM-START event.
	STREAM_END_EVENT     // A STREAM-END event.
	DOCUMENT_START_EVENT // A DOCUMENT-START event.
	DOCUMENT_END_EVENT   // A DOCUMENT-END event.
	ALIAS_EVENT          // An ALIAS event.
	SCALAR_EVENT         // A SCALAR event.
	SEQUENCE_START_EVENT // A SEQUENCE-START event.
	SEQUENCE_END_EVENT   // A SEQUENCE-END event.
	MAPPING_START_EVENT  // A MAPPING-START event.
	MAPPING_END_EVENT    // A MAPPING-END event.
)

var eventStrings = []string{
	NO_EVENT:             "none",
	STREAM_START_EVENT:   "stream start",
	STREAM_END_EVENT:     "stream end",
	DOCUMENT_START_EVENT: "document start",
	DOCUMENT_END_EVENT:   "document end",
	ALIAS_EVENT:          "alias",
	SCALAR_EVENT:         "scalar",
	SEQUENCE_START_EVENT: "sequence start",
	SEQUENCE_END_EVENT:   "sequence end",
	MAPPING_START_EVENT:  "mapping start",
	MAPPING_END_EVENT:    "mapping end",
}

func (e EventType) String() string {
	if e < 0 || int(e) >= len(eventStrings) {
		return fmt.Sprintf("unknown event %d", e)
	}
	return eventStrings[e]
}

// Event is produced by the parser for the streaming path. Tokens attached
// to an event are taken ownership of by the emitter on consumption.
type Event struct {
	Type EventType

	// The document state (for DOCUMENT_START_EVENT). Ownership moves to
	// the emitter when the event is consumed.
	DocumentState *DocumentState

	// The Anchor token (ANCHOR for SCALAR/SEQUENCE-START/MAPPING-START,
	// the alias target for ALIAS).
	Anchor *Token

	// The Tag token (for SCALAR, SEQUENCE-START, MAPPING-START).
	Tag *Token

	// The scalar Value token (for SCALAR_EVENT).
	Value *Token

	// The structural Marker token (for SEQUENCE-START and MAPPING-START);
	// its type records whether the container came in via flow syntax and
	// it carries the container's comments.
	Marker *Token

	// Is the document start/end indicator Implicit?
	Implicit bool
}

// FlowMarker reports whether the event's marker token is a flow
// collection start.
func (e *Event) FlowMarker() bool {
	return e.Marker != nil &&
		(e.Marker.Type == FLOW_SEQUENCE_START_TOKEN ||
			e.Marker.Type == FLOW_MAPPING_START_TOKEN)
}

// ValueToken returns the token whose comments and text represent the
// event's node.
func (e *Event) ValueToken() *Token {
	switch e.Type {
	case ALIAS_EVENT:
		return e.Anchor
	case SCALAR_EVENT:
		return e.Value
	case SEQUENCE_START_EVENT, MAPPING_START_EVENT:
		return e.Marker
	}
	return nil
}
