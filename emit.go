package libfyaml

import (
	"io"
	"strings"

	"github.com/esainane/libfyaml/internal/emitter"
)

// NewEmitter returns an emitter pushing output through out.
func NewEmitter(cfg Config, out WriteFunc) *emitter.Emitter {
	return emitter.New(cfg, out)
}

// WriterFunc adapts an io.Writer into an emitter callback. A write error
// reports a short count, which the emitter latches as an output error.
func WriterFunc(w io.Writer) WriteFunc {
	return func(_ WriteType, b []byte) int {
		n, _ := w.Write(b)
		return n
	}
}

// EmitDocument emits fyd to w under cfg.
func EmitDocument(w io.Writer, fyd *Document, cfg Config) error {
	return emitter.New(cfg, WriterFunc(w)).EmitDocument(fyd)
}

// EmitDocumentToString emits fyd and returns the output text.
func EmitDocumentToString(fyd *Document, cfg Config) (string, error) {
	var sb strings.Builder
	if err := EmitDocument(&sb, fyd, cfg); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// EmitNodeToString emits a bare node with no document framing.
func EmitNodeToString(fyn *Node, cfg Config) (string, error) {
	var sb strings.Builder
	e := emitter.New(cfg, WriterFunc(&sb))
	if err := e.EmitNode(fyn); err != nil {
		return "", err
	}
	return sb.String(), nil
}
