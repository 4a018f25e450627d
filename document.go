// Package libfyaml provides the public surface of the core: document and
// node construction, conversion from parsed yaml.v3 trees, and emission
// of trees or event streams as YAML or JSON text.
package libfyaml

import (
	"github.com/esainane/libfyaml/internal/atom"
	"github.com/esainane/libfyaml/internal/emitter"
	"github.com/esainane/libfyaml/internal/yamlh"
)

// Core model and configuration types, re-exported for callers.
type (
	Document      = yamlh.Document
	DocumentState = yamlh.DocumentState
	Node          = yamlh.Node
	NodePair      = yamlh.NodePair
	NodeStyle     = yamlh.NodeStyle
	Token         = yamlh.Token
	Event         = yamlh.Event

	Config    = emitter.Config
	Mode      = emitter.Mode
	Policy    = emitter.Policy
	WriteType = emitter.WriteType
	WriteFunc = emitter.WriteFunc
)

const (
	ModeBlock       = emitter.ModeBlock
	ModeFlow        = emitter.ModeFlow
	ModeFlowOneline = emitter.ModeFlowOneline
	ModeJSON        = emitter.ModeJSON
	ModeJSONTP      = emitter.ModeJSONTP
	ModeJSONOneline = emitter.ModeJSONOneline

	PolicyAuto = emitter.PolicyAuto
	PolicyOn   = emitter.PolicyOn
	PolicyOff  = emitter.PolicyOff

	AnyStyle          = yamlh.AnyStyle
	FlowStyle         = yamlh.FlowStyle
	BlockStyle        = yamlh.BlockStyle
	PlainStyle        = yamlh.PlainStyle
	SingleQuotedStyle = yamlh.SingleQuotedStyle
	DoubleQuotedStyle = yamlh.DoubleQuotedStyle
	LiteralStyle      = yamlh.LiteralStyle
	FoldedStyle       = yamlh.FoldedStyle
)

// scalarAtom builds an atom whose decoded contents equal text exactly.
// Single line text without edge whitespace reads back through the plain
// style untouched; everything else goes through literal/keep, which
// preserves breaks and edge whitespace.
func scalarAtom(text string) *atom.Atom {
	b := []byte(text)
	a := atom.Build(b, atom.StylePlain, atom.ChompClip, 0)
	if a.DirectOutput {
		return a
	}
	return atom.Build(b, atom.StyleLiteral, atom.ChompKeep, 0)
}

func scalarToken(text string) *yamlh.Token {
	return &yamlh.Token{Type: yamlh.SCALAR_TOKEN, Atom: scalarAtom(text)}
}

func nameToken(tt yamlh.TokenType, text string) *yamlh.Token {
	return &yamlh.Token{
		Type: tt,
		Atom: atom.Build([]byte(text), atom.StylePlain, atom.ChompClip, 0),
	}
}

// NewDocument returns an empty implicit document.
func NewDocument() *Document {
	return &Document{
		State:   yamlh.NewDocumentState(),
		Anchors: map[string]*Node{},
	}
}

// NewScalar builds a scalar node with the style left to the emitter.
func NewScalar(text string) *Node {
	return NewScalarStyled(text, AnyStyle)
}

// NewScalarStyled builds a scalar node requesting a specific style.
func NewScalarStyled(text string, style NodeStyle) *Node {
	return &Node{
		Type:   yamlh.ScalarNode,
		Style:  style,
		Scalar: scalarToken(text),
	}
}

// NewAlias builds an alias node referring to anchor.
func NewAlias(anchor string) *Node {
	return &Node{
		Type:   yamlh.ScalarNode,
		Style:  yamlh.AliasStyle,
		Scalar: nameToken(yamlh.ALIAS_TOKEN, anchor),
	}
}

// NewSequence builds a sequence node.
func NewSequence(children ...*Node) *Node {
	return &Node{
		Type:     yamlh.SequenceNode,
		Marker:   &yamlh.Token{Type: yamlh.BLOCK_SEQUENCE_START_TOKEN},
		Children: children,
	}
}

// NewMapping builds a mapping node.
func NewMapping(pairs ...NodePair) *Node {
	return &Node{
		Type:   yamlh.MappingNode,
		Marker: &yamlh.Token{Type: yamlh.BLOCK_MAPPING_START_TOKEN},
		Pairs:  pairs,
	}
}

// Pair builds one mapping entry.
func Pair(key, value *Node) NodePair {
	return NodePair{Key: key, Value: value}
}

// WithFlow requests flow rendering for a composite node.
func WithFlow(n *Node) *Node {
	n.Style = yamlh.FlowStyle
	switch n.Type {
	case yamlh.SequenceNode:
		n.Marker = &yamlh.Token{Type: yamlh.FLOW_SEQUENCE_START_TOKEN}
	case yamlh.MappingNode:
		n.Marker = &yamlh.Token{Type: yamlh.FLOW_MAPPING_START_TOKEN}
	}
	return n
}

// WithAnchor labels a node with an anchor.
func WithAnchor(n *Node, anchor string) *Node {
	n.Anchor = nameToken(yamlh.ANCHOR_TOKEN, anchor)
	return n
}

// WithTag attaches an explicit tag to a node.
func WithTag(n *Node, tag string) *Node {
	n.Tag = nameToken(yamlh.TAG_TOKEN, tag)
	return n
}

// WithComment attaches a comment to a node's value token. The text must
// include its '#' markers, one per line.
func WithComment(n *Node, placement yamlh.CommentPlacement, text string) *Node {
	fyt := n.ValueToken()
	if fyt != nil {
		fyt.Comments[placement] = atom.Build([]byte(text), atom.StyleComment, atom.ChompClip, 0)
	}
	return n
}

// Comment placements for WithComment.
const (
	CommentTop    = yamlh.CommentTop
	CommentRight  = yamlh.CommentRight
	CommentBottom = yamlh.CommentBottom
)
