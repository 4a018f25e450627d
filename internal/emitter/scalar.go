package emitter

import (
	"strings"

	"github.com/esainane/libfyaml/internal/atom"
	"github.com/esainane/libfyaml/internal/utf8x"
	"github.com/esainane/libfyaml/internal/yamlh"
)

func tokenAtom(fyt *yamlh.Token) *atom.Atom {
	if fyt == nil {
		return nil
	}
	return fyt.Atom
}

// writeComment writes one (possibly multi line) comment, re-indenting
// continuation lines to the comment's own column.
func (e *Emitter) writeComment(text string) {
	if len(text) == 0 {
		return
	}
	if !e.whitespace() {
		e.writeWS()
	}
	indent := e.column

	b := []byte(text)
	sr := 0
	breaks := false
	for i := 0; i < len(b); {
		c, w := utf8x.Get(b[i:])
		if c == utf8x.NoChar {
			c, w = rune(b[i]), 1
		}
		if utf8x.IsLB(c) {
			e.write(WriteComment, b[sr:i])
			sr = i + w
			e.writeIndent(indent)
			e.flags |= efIndentation
			breaks = true
		} else {
			if breaks {
				e.write(WriteComment, b[sr:i])
				sr = i
				e.writeIndent(indent)
			}
			e.flags &^= efIndentation
			breaks = false
		}
		i += w
	}
	e.write(WriteComment, b[sr:])

	e.flags |= efWhitespace | efIndentation
}

// tokenComment emits the comment attached to fyt at the given placement,
// if present and comment output is enabled.
func (e *Emitter) tokenComment(fyt *yamlh.Token, indent int, placement yamlh.CommentPlacement) {
	if !e.cfg.OutputComments {
		return
	}
	handle := fyt.Comment(placement)
	if handle == nil {
		return
	}

	if placement == yamlh.CommentTop || placement == yamlh.CommentBottom {
		e.writeIndent(indent)
		e.flags |= efWhitespace
	}

	e.writeComment(handle.Text())
	e.flags &^= efIndentation

	if placement == yamlh.CommentTop || placement == yamlh.CommentBottom {
		e.writeIndent(indent)
		e.flags |= efWhitespace
	}
}

func (e *Emitter) tokenHasComment(fyt *yamlh.Token, placement yamlh.CommentPlacement) bool {
	return e.cfg.OutputComments && fyt.Comment(placement) != nil
}

// resolveTag splits a full tag into a directive handle and suffix,
// preferring the longest matching prefix among the document's directives
// and the defaults. An unmatched tag gets the verbatim !<...> form.
func (e *Emitter) resolveTag(tag string) (handle, suffix string) {
	best := -1
	if e.fyds != nil {
		for _, td := range e.fyds.TagDirectives {
			if strings.HasPrefix(tag, td.Prefix) && len(td.Prefix) > best {
				best = len(td.Prefix)
				handle = td.Handle
			}
		}
	}
	for _, td := range yamlh.DefaultTagDirectives {
		if strings.HasPrefix(tag, td.Prefix) && len(td.Prefix) > best {
			best = len(td.Prefix)
			handle = td.Handle
		}
	}
	if best < 0 {
		return "", tag
	}
	return handle, tag[best:]
}

func isTagURIChar(b byte) bool {
	switch b {
	case ';', '/', '?', ':', '@', '&', '=', '+', '$', ',', '_', '.', '~', '*', '\'', '(', ')', '[', ']':
		return true
	}
	return b >= '0' && b <= '9' || b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z' || b == '-'
}

// writeTagContent writes tag text, percent escaping anything outside the
// tag URI character set.
func (e *Emitter) writeTagContent(wt WriteType, value string) {
	const hex = "0123456789ABCDEF"
	b := []byte(value)
	for len(b) > 0 {
		if isTagURIChar(b[0]) {
			e.write(wt, b[:1])
			b = b[1:]
			continue
		}
		w := utf8x.WidthByFirstOctet(b[0])
		if w == 0 || w > len(b) {
			w = 1
		}
		for k := 0; k < w; k++ {
			octet := b[k]
			e.write(wt, []byte{'%', hex[octet>>4], hex[octet&0x0F]})
		}
		b = b[w:]
	}
	e.flags &^= efWhitespace | efIndentation
}

// nodePreamble writes the anchor and tag of a node, and forces root
// content onto a fresh line when a document start indicator did not
// already do so.
func (e *Emitter) nodePreamble(fytAnchor, fytTag *yamlh.Token, flags nodeFlags, indent int) {
	if !e.isJSONMode() {
		if !e.cfg.StripLabels && fytAnchor != nil {
			e.writeIndicator(diAmpersand, flags, indent, WriteAnchor)
			e.write(WriteAnchor, []byte(fytAnchor.Text()))
			e.flags &^= efWhitespace | efIndentation
		}

		if !e.cfg.StripTags && fytTag != nil {
			if !e.whitespace() {
				e.writeWS()
			}
			handle, suffix := e.resolveTag(fytTag.Text())
			if handle == "" {
				e.puts(WriteTag, "!<")
				e.writeTagContent(WriteTag, suffix)
				e.puts(WriteTag, ">")
			} else {
				e.puts(WriteTag, handle)
				e.writeTagContent(WriteTag, suffix)
			}
			e.flags &^= efWhitespace | efIndentation
		}
	}

	// content for the root always starts on a new line
	if flags&dnfRoot != 0 && e.column != 0 &&
		e.flags&efHadDocumentStart == 0 {
		e.putc(WriteLinebreak, '\n')
		e.flags = e.flags&^(efOpenEnded) | efWhitespace | efIndentation
	}
}

// writeAlias writes an alias reference.
func (e *Emitter) writeAlias(fyt *yamlh.Token, flags nodeFlags, indent int) {
	if fyt == nil {
		return
	}
	e.writeIndicator(diStar, flags, indent, WriteAlias)

	if str := fyt.DirectOutput(); str != nil {
		e.write(WriteAlias, str)
		return
	}

	it := atom.NewIter(fyt.Atom)
	e.ea.start(WriteAlias)
	for {
		c := it.UTF8Get()
		if c <= 0 {
			break
		}
		e.ea.putUTF8(c)
	}
	e.ea.output()
	e.ea.finish()
}

// writePlain writes a plain scalar, collapsing space runs and folding at
// the width when breaks are allowed.
func (e *Emitter) writePlain(fyt *yamlh.Token, flags nodeFlags, indent int) {
	defer func() {
		e.flags &^= efWhitespace | efIndentation
	}()

	if fyt == nil {
		return
	}

	wtype := WritePlainScalar
	if flags&dnfSimpleScalarKey != 0 {
		wtype = WritePlainScalarKey
	}

	a := tokenAtom(fyt)
	if a == nil {
		return
	}

	allowBreaks := flags&dnfSimple == 0 && !e.isJSONMode() && !e.isOneline()

	// simple case first (most of the cases): verbatim output is only
	// sound when the raw span is already in plain form and folding at
	// the width cannot be required
	if str := fyt.DirectOutput(); str != nil && a.Style == atom.StylePlain &&
		(!allowBreaks || e.column+len(str) <= e.width()) {
		e.write(wtype, str)
		return
	}

	spaces := false
	breaks := false

	it := atom.NewIter(a)
	e.ea.start(wtype)
	for {
		c := it.UTF8Get()
		if c <= 0 {
			break
		}

		switch {
		case utf8x.IsWS(c):
			shouldIndent := allowBreaks && !spaces &&
				e.ea.column() > e.width()
			if shouldIndent && !utf8x.IsWS(it.UTF8Peek()) {
				e.ea.output()
				e.flags &^= efIndentation
				e.writeIndent(indent)
			} else {
				e.ea.putUTF8(c)
			}
			spaces = true

		case utf8x.IsLB(c):
			if !allowBreaks {
				goto out
			}
			// a decoded break was a blank source line; fold it back as
			// one, without padding the blank line
			if !breaks {
				e.ea.output()
				e.putc(WriteLinebreak, '\n')
			}
			e.putc(WriteLinebreak, '\n')
			e.flags |= efWhitespace | efIndentation
			breaks = true

		default:
			if breaks {
				e.writeIndent(indent)
			}
			e.ea.putUTF8(c)
			e.flags &^= efIndentation
			spaces = false
			breaks = false
		}
	}
out:
	e.ea.output()
	e.ea.finish()

	if flags&dnfRoot != 0 {
		e.flags |= efOpenEnded
	}
}

// writeQuoted writes a single or double quoted scalar.
func (e *Emitter) writeQuoted(fyt *yamlh.Token, flags nodeFlags, indent int, qc rune) {
	var wtype WriteType
	var start, end indicator
	if qc == '\'' {
		start, end = diSingleQuoteStart, diSingleQuoteEnd
		wtype = WriteSingleQuotedScalar
		if flags&dnfSimpleScalarKey != 0 {
			wtype = WriteSingleQuotedScalarKey
		}
	} else {
		start, end = diDoubleQuoteStart, diDoubleQuoteEnd
		wtype = WriteDoubleQuotedScalar
		if flags&dnfSimpleScalarKey != 0 {
			wtype = WriteDoubleQuotedScalarKey
		}
	}

	e.writeIndicator(start, flags, indent, wtype)

	a := tokenAtom(fyt)
	if a == nil {
		e.writeIndicator(end, flags, indent, wtype)
		return
	}

	allowBreaks := flags&dnfSimple == 0 && !e.isJSONMode() && !e.isOneline()

	// verbatim output is only sound when the raw span was scanned in the
	// same quoting style and folding at the width cannot be required
	str := fyt.DirectOutput()
	if str != nil && ((qc == '\'' && a.Style == atom.StyleSingleQuoted) ||
		(qc == '"' && a.Style == atom.StyleDoubleQuoted)) &&
		(!allowBreaks || e.column+len(str) <= e.width()) {
		e.write(wtype, str)
		e.writeIndicator(end, flags, indent, wtype)
		return
	}

	spaces := false
	breaks := false

	it := atom.NewIter(a)
	e.ea.start(wtype)
	for {
		c := it.UTF8Get()
		if c < 0 {
			break
		}

		switch {
		case utf8x.IsWS(c):
			shouldIndent := allowBreaks && !spaces &&
				e.ea.column() > e.width()
			if shouldIndent &&
				((qc == '\'' && utf8x.IsWS(it.UTF8Peek())) || qc == '"') {
				e.ea.output()
				if qc == '"' && utf8x.IsWS(it.UTF8Peek()) {
					e.putc(wtype, '\\')
				}
				e.flags &^= efIndentation
				e.writeIndent(indent)
			} else {
				e.ea.putUTF8(c)
			}
			spaces = true
			breaks = false

		case qc == '\'' && utf8x.IsLB(c):
			if !allowBreaks {
				goto out
			}
			if !breaks {
				e.ea.output()
				e.putc(WriteLinebreak, '\n')
			}
			e.putc(WriteLinebreak, '\n')
			e.flags |= efWhitespace | efIndentation
			breaks = true

		default:
			if breaks {
				e.ea.output()
				e.writeIndent(indent)
			}

			switch {
			case qc == '\'' && c == '\'':
				e.ea.putUTF8('\'')
				e.ea.putUTF8('\'')
			case qc == '"' && (!utf8x.IsPrint(c) || c == utf8x.BOM ||
				utf8x.IsLB(c) || c == '"' || c == '\\'):
				e.writeEscapedUTF8(c)
			default:
				e.ea.putUTF8(c)
			}

			e.flags &^= efIndentation
			spaces = false
			breaks = false
		}
	}
out:
	e.ea.output()
	e.ea.finish()

	e.writeIndicator(end, flags, indent, wtype)
}

// writeEscapedUTF8 appends the double quoted escape for c to the
// accumulator.
func (e *Emitter) writeEscapedUTF8(c rune) {
	e.ea.putUTF8('\\')
	switch c {
	case 0x00:
		e.ea.putUTF8('0')
	case 0x07:
		e.ea.putUTF8('a')
	case 0x08:
		e.ea.putUTF8('b')
	case 0x09:
		e.ea.putUTF8('t')
	case 0x0A:
		e.ea.putUTF8('n')
	case 0x0B:
		e.ea.putUTF8('v')
	case 0x0C:
		e.ea.putUTF8('f')
	case 0x0D:
		e.ea.putUTF8('r')
	case 0x1B:
		e.ea.putUTF8('e')
	case '"':
		e.ea.putUTF8('"')
	case '\\':
		e.ea.putUTF8('\\')
	case 0x85:
		e.ea.putUTF8('N')
	case 0xA0:
		e.ea.putUTF8('_')
	case 0x2028:
		e.ea.putUTF8('L')
	case 0x2029:
		e.ea.putUTF8('P')
	default:
		var w int
		switch {
		case c <= 0xFF:
			e.ea.putUTF8('x')
			w = 2
		case c <= 0xFFFF:
			e.ea.putUTF8('u')
			w = 4
		default:
			e.ea.putUTF8('U')
			w = 8
		}
		for i := w - 1; i >= 0; i-- {
			digit := (c >> (uint(i) * 4)) & 15
			if digit <= 9 {
				e.ea.putUTF8('0' + digit)
			} else {
				e.ea.putUTF8('A' + digit - 10)
			}
		}
	}
}

// writeBlockHints emits the indentation indicator digit (when the scalar
// starts with whitespace or a break) and the chomp indicator.
func (e *Emitter) writeBlockHints(fyt *yamlh.Token) (chomp byte) {
	a := tokenAtom(fyt)
	if a == nil {
		e.flags &^= efOpenEnded
		chomp = '-'
		e.putc(WriteIndicator, rune(chomp))
		return chomp
	}

	if a.StartsWithWS || a.StartsWithLB {
		e.putc(WriteIndicator, rune('0'+byte(e.indentStep())))
	}

	switch {
	case !a.EndsWithLB:
		e.flags &^= efOpenEnded
		chomp = '-'
	case a.TrailingLB:
		e.flags |= efOpenEnded
		chomp = '+'
	default:
		e.flags &^= efOpenEnded
	}

	if chomp != 0 {
		e.putc(WriteIndicator, rune(chomp))
	}
	return chomp
}

// writeLiteral writes a literal block scalar.
func (e *Emitter) writeLiteral(fyt *yamlh.Token, flags nodeFlags, indent int) {
	e.writeIndicator(diBar, flags, indent, WriteIndicator)
	e.writeBlockHints(fyt)
	if flags&dnfRoot != 0 {
		indent += e.indentStep()
	}

	e.putc(WriteLinebreak, '\n')
	e.flags |= efWhitespace | efIndentation

	a := tokenAtom(fyt)
	if a == nil {
		e.flags &^= efIndentation
		return
	}

	breaks := true

	it := atom.NewIter(a)
	e.ea.start(WriteLiteralScalar)
	for {
		c := it.UTF8Get()
		if c <= 0 {
			break
		}
		if utf8x.IsLB(c) {
			// blank lines stay unpadded
			e.ea.output()
			e.putc(WriteLinebreak, '\n')
			e.flags |= efWhitespace | efIndentation
			breaks = true
			continue
		}
		if breaks {
			e.writeIndent(indent)
			breaks = false
		}
		e.ea.putUTF8(c)
	}
	e.ea.output()
	e.ea.finish()

	e.flags &^= efIndentation
}

// writeFolded writes a folded block scalar: single breaks fold to
// spaces, runs of breaks are preserved, indented and blank leading lines
// get a full break before them.
func (e *Emitter) writeFolded(fyt *yamlh.Token, flags nodeFlags, indent int) {
	e.writeIndicator(diGreater, flags, indent, WriteIndicator)
	e.writeBlockHints(fyt)
	if flags&dnfRoot != 0 {
		indent += e.indentStep()
	}

	e.putc(WriteLinebreak, '\n')
	e.flags |= efWhitespace | efIndentation

	a := tokenAtom(fyt)
	if a == nil {
		return
	}

	breaks := true
	leadingSpaces := true

	it := atom.NewIter(a)
	e.ea.start(WriteFoldedScalar)
	for {
		c := it.UTF8Get()
		if c <= 0 {
			break
		}

		if utf8x.IsLB(c) {
			// output run
			if e.ea.size() > 0 {
				e.ea.output()
				// no break at the very end or for a leading spaces line
				if !utf8x.IsZ(it.UTF8Peek()) && !leadingSpaces {
					e.putc(WriteLinebreak, '\n')
					e.flags |= efWhitespace | efIndentation
				}
			}

			// count consecutive breaks
			nrBreaks := 1
			for utf8x.IsLB(it.UTF8Peek()) {
				nrBreaks++
				it.UTF8Get()
			}

			// the number of written breaks depends on what follows:
			// content keeps all, a blank drops one, the end drops two
			next := it.UTF8Peek()
			nrBreaksLim := 0
			if utf8x.IsZ(next) {
				nrBreaksLim = 2
			} else if utf8x.IsWS(next) {
				nrBreaksLim = 1
			}
			for nrBreaks > nrBreaksLim {
				nrBreaks--
				e.putc(WriteLinebreak, '\n')
				e.flags |= efWhitespace | efIndentation
			}

			breaks = true
			continue
		}

		if breaks {
			e.writeIndent(indent)
			leadingSpaces = utf8x.IsWS(c)
		}

		if !breaks && utf8x.IsSpace(c) &&
			!utf8x.IsSpace(it.UTF8Peek()) &&
			e.ea.column() > e.width() {
			e.ea.output()
			e.flags &^= efIndentation
			e.writeIndent(indent)
		} else {
			e.ea.putUTF8(c)
		}
		breaks = false
	}
	e.ea.output()
	e.ea.finish()
}

// tokenScalarStyle decides the style a scalar is actually emitted with,
// honoring mode legality over the requested style.
func (e *Emitter) tokenScalarStyle(fyt *yamlh.Token, flags nodeFlags, style yamlh.NodeStyle) yamlh.NodeStyle {
	a := tokenAtom(fyt)

	// block styles are illegal in flow context
	if (flags&dnfFlow != 0 || e.flowLevel > 0) &&
		(style == yamlh.LiteralStyle || style == yamlh.FoldedStyle) {
		style = yamlh.AnyStyle
	}

	json := e.isJSONMode()

	if json && (style == yamlh.LiteralStyle || style == yamlh.FoldedStyle) {
		return yamlh.DoubleQuotedStyle
	}

	if json && (style == yamlh.PlainStyle || style == yamlh.AnyStyle) &&
		(a == nil || a.Size0 ||
			a.Strcmp("false") == 0 ||
			a.Strcmp("true") == 0 ||
			a.Strcmp("null") == 0 ||
			a.IsNumber()) {
		return yamlh.PlainStyle
	}

	if json {
		return yamlh.DoubleQuotedStyle
	}

	flow := e.isFlowMode()

	// a bare empty plain cannot stand in flow mode
	if flow && (fyt == nil || fyt.TextLength() == 0) {
		style = yamlh.DoubleQuotedStyle
	}

	if flow && (style == yamlh.AnyStyle || style == yamlh.LiteralStyle || style == yamlh.FoldedStyle) {
		ta := fyt.Analyze()
		if ta.Multiline {
			return yamlh.DoubleQuotedStyle
		}
		if !ta.HasNonPrintable {
			return yamlh.SingleQuotedStyle
		}
		return yamlh.DoubleQuotedStyle
	}

	if style == yamlh.AnyStyle {
		if fyt.Analyze().DirectOutput {
			style = yamlh.PlainStyle
		} else {
			style = yamlh.DoubleQuotedStyle
		}
	}

	// a requested plain that the text analysis rules out escalates to
	// quoting rather than emitting ambiguous output
	if style == yamlh.PlainStyle {
		ta := fyt.Analyze()
		if flow || e.flowLevel > 0 {
			if !ta.Empty && !ta.FlowPlainAllowed {
				style = yamlh.SingleQuotedStyle
			}
		} else if !ta.Empty && !ta.BlockPlainAllowed {
			style = yamlh.SingleQuotedStyle
		}
	}
	if style == yamlh.SingleQuotedStyle && !fyt.Analyze().SingleQuotedAllowed {
		style = yamlh.DoubleQuotedStyle
	}

	return style
}

// tokenScalar emits one scalar token in the resolved style.
func (e *Emitter) tokenScalar(fyt *yamlh.Token, flags nodeFlags, indent int, style yamlh.NodeStyle) {
	indent = e.increaseIndent(flags, indent)

	style = e.tokenScalarStyle(fyt, flags, style)

	// every style other than plain writes its leading indicator through
	// writeIndicator, which separates on its own; an empty plain scalar
	// writes nothing and must not leave a dangling space
	if style == yamlh.PlainStyle && fyt.TextLength() > 0 {
		e.sepSpace()
	}

	switch style {
	case yamlh.AliasStyle:
		e.writeAlias(fyt, flags, indent)
	case yamlh.PlainStyle:
		e.writePlain(fyt, flags, indent)
	case yamlh.DoubleQuotedStyle:
		e.writeQuoted(fyt, flags, indent, '"')
	case yamlh.SingleQuotedStyle:
		e.writeQuoted(fyt, flags, indent, '\'')
	case yamlh.LiteralStyle:
		e.writeLiteral(fyt, flags, indent)
	case yamlh.FoldedStyle:
		e.writeFolded(fyt, flags, indent)
	}
}
