package libfyaml

import (
	"errors"
	"fmt"

	yamlv3 "gopkg.in/yaml.v3"

	"github.com/esainane/libfyaml/internal/yamlh"
)

// ErrConvert is wrapped by conversion failures.
var ErrConvert = errors.New("cannot convert yaml node")

// FromYAML parses data with yaml.v3 and converts the result into a
// document tree.
func FromYAML(data []byte) (*Document, error) {
	var yn yamlv3.Node
	if err := yamlv3.Unmarshal(data, &yn); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConvert, err)
	}
	return FromYAMLNode(&yn)
}

// FromYAMLNode converts a parsed yaml.v3 tree into a document. Styles,
// tags, anchors and comments carry over; directives are not exposed by
// yaml.v3 and default to an implicit YAML 1.2 document.
func FromYAMLNode(yn *yamlv3.Node) (*Document, error) {
	doc := NewDocument()

	if yn == nil || yn.Kind == 0 {
		return doc, nil
	}

	if yn.Kind == yamlv3.DocumentNode {
		if len(yn.Content) == 0 {
			return doc, nil
		}
		yn = yn.Content[0]
	}

	root, err := convertNode(doc, yn)
	if err != nil {
		return nil, err
	}
	doc.Root = root
	return doc, nil
}

func convertNode(doc *Document, yn *yamlv3.Node) (*Node, error) {
	var n *Node

	switch yn.Kind {
	case yamlv3.ScalarNode:
		n = NewScalarStyled(yn.Value, scalarNodeStyle(yn.Style))

	case yamlv3.AliasNode:
		n = NewAlias(yn.Value)

	case yamlv3.SequenceNode:
		children := make([]*Node, 0, len(yn.Content))
		for _, yc := range yn.Content {
			c, err := convertNode(doc, yc)
			if err != nil {
				return nil, err
			}
			children = append(children, c)
		}
		n = NewSequence(children...)
		if yn.Style&yamlv3.FlowStyle != 0 {
			WithFlow(n)
		}

	case yamlv3.MappingNode:
		if len(yn.Content)%2 != 0 {
			return nil, fmt.Errorf("%w: odd mapping content", ErrConvert)
		}
		pairs := make([]NodePair, 0, len(yn.Content)/2)
		for i := 0; i+1 < len(yn.Content); i += 2 {
			k, err := convertNode(doc, yn.Content[i])
			if err != nil {
				return nil, err
			}
			v, err := convertNode(doc, yn.Content[i+1])
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, Pair(k, v))
		}
		n = NewMapping(pairs...)
		if yn.Style&yamlv3.FlowStyle != 0 {
			WithFlow(n)
		}

	default:
		return nil, fmt.Errorf("%w: kind %d", ErrConvert, yn.Kind)
	}

	if yn.Anchor != "" {
		WithAnchor(n, yn.Anchor)
		doc.Anchors[yn.Anchor] = n
	}
	if yn.Style&yamlv3.TaggedStyle != 0 && yn.Tag != "" {
		WithTag(n, longTag(yn.Tag))
	}

	if yn.HeadComment != "" {
		WithComment(n, CommentTop, yn.HeadComment)
	}
	if yn.LineComment != "" {
		WithComment(n, CommentRight, yn.LineComment)
	}
	if yn.FootComment != "" {
		WithComment(n, CommentBottom, yn.FootComment)
	}

	return n, nil
}

func scalarNodeStyle(s yamlv3.Style) NodeStyle {
	switch {
	case s&yamlv3.DoubleQuotedStyle != 0:
		return yamlh.DoubleQuotedStyle
	case s&yamlv3.SingleQuotedStyle != 0:
		return yamlh.SingleQuotedStyle
	case s&yamlv3.LiteralStyle != 0:
		return yamlh.LiteralStyle
	case s&yamlv3.FoldedStyle != 0:
		return yamlh.FoldedStyle
	}
	// the parser folds plain scalars at scan time, so an unstyled value
	// is a valid plain and stays one
	return yamlh.PlainStyle
}

// longTag expands the !! shorthand the parser reports.
func longTag(tag string) string {
	if len(tag) > 2 && tag[:2] == "!!" {
		return "tag:yaml.org,2002:" + tag[2:]
	}
	return tag
}
