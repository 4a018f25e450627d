package yamlh

import "github.com/esainane/libfyaml/internal/atom"

type NodeType int

const (
	ScalarNode NodeType = iota
	SequenceNode
	MappingNode
)

func (nt NodeType) String() string {
	switch nt {
	case ScalarNode:
		return "scalar"
	case SequenceNode:
		return "sequence"
	case MappingNode:
		return "mapping"
	}
	return "<unknown node type>"
}

// NodeStyle is the requested rendering style of a node. The emitter may
// override it when the style is illegal in context.
type NodeStyle int

const (
	AnyStyle NodeStyle = iota
	FlowStyle
	BlockStyle
	PlainStyle
	SingleQuotedStyle
	DoubleQuotedStyle
	LiteralStyle
	FoldedStyle
	AliasStyle
)

// NodeStyleFromScalarStyle maps a scanned atom style onto the node style
// the emitter should reproduce.
func NodeStyleFromScalarStyle(s atom.Style) NodeStyle {
	switch s {
	case atom.StylePlain:
		return PlainStyle
	case atom.StyleSingleQuoted:
		return SingleQuotedStyle
	case atom.StyleDoubleQuoted, atom.StyleDoubleQuotedManual:
		return DoubleQuotedStyle
	case atom.StyleLiteral:
		return LiteralStyle
	case atom.StyleFolded:
		return FoldedStyle
	}
	return AnyStyle
}

// NodePair is one key/value entry of a mapping.
type NodePair struct {
	Key   *Node
	Value *Node
}

// Node is one vertex of a document tree. Nodes hold shared references to
// tokens; tokens own atoms; atoms borrow the input buffer.
type Node struct {
	Type  NodeType
	Style NodeStyle

	// The value token for scalars (and the alias text for AliasStyle).
	Scalar *Token

	Tag    *Token
	Anchor *Token

	// The container start token for composites; records flow syntax and
	// carries the container's comments.
	Marker *Token

	Children []*Node    // sequence items
	Pairs    []NodePair // mapping entries
}

// ValueToken returns the token whose comments represent the node.
func (n *Node) ValueToken() *Token {
	if n == nil {
		return nil
	}
	switch n.Type {
	case ScalarNode:
		return n.Scalar
	case SequenceNode, MappingNode:
		return n.Marker
	}
	return nil
}

// Compare orders nodes for sorted key emission: scalars before
// sequences before mappings, scalars by logical content.
func Compare(a, b *Node) int {
	if a == b {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	if a.Type != b.Type {
		return int(a.Type) - int(b.Type)
	}
	if a.Type == ScalarNode {
		var aa, ba *atom.Atom
		if a.Scalar != nil {
			aa = a.Scalar.Atom
		}
		if b.Scalar != nil {
			ba = b.Scalar.Atom
		}
		return atom.Cmp(aa, ba)
	}
	return 0
}

// DocumentState carries the directive and marker information of one
// document. A streaming emitter holds a shared reference so that it can
// outlive the parser that produced it.
type DocumentState struct {
	Version         VersionDirective
	VersionExplicit bool
	TagsExplicit    bool

	StartImplicit bool
	EndImplicit   bool

	TagDirectives []TagDirective
}

// NewDocumentState returns a default implicit YAML 1.2 document state.
func NewDocumentState() *DocumentState {
	return &DocumentState{
		Version:       VersionDirective{Major: 1, Minor: 2},
		StartImplicit: true,
		EndImplicit:   true,
	}
}

// Document is a parsed or built document tree.
type Document struct {
	State *DocumentState
	Root  *Node

	// Anchors maps anchor names to their nodes; a map, so it keeps no
	// definition order.
	Anchors map[string]*Node
}
