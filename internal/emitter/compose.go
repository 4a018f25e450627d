package emitter

import (
	"fmt"
	"sort"

	"github.com/esainane/libfyaml/internal/yamlh"
)

// emitNodeInternal dispatches one node, writing its anchor/tag preamble
// first.
func (e *Emitter) emitNodeInternal(fyn *yamlh.Node, flags nodeFlags, indent int) {
	var fytAnchor, fytTag *yamlh.Token
	if fyn != nil {
		if !e.cfg.StripLabels {
			fytAnchor = fyn.Anchor
		}
		fytTag = fyn.Tag
	}

	e.nodePreamble(fytAnchor, fytTag, flags, indent)

	if fyn == nil {
		e.emitScalarNode(nil, flags, indent)
		return
	}

	if fyn.Type != yamlh.ScalarNode && flags&dnfRoot != 0 && e.column != 0 {
		e.putc(WriteLinebreak, '\n')
		e.flags |= efWhitespace | efIndentation
	}

	switch fyn.Type {
	case yamlh.ScalarNode:
		e.emitScalarNode(fyn, flags, indent)
	case yamlh.SequenceNode:
		e.emitSequence(fyn, flags, indent)
	case yamlh.MappingNode:
		e.emitMapping(fyn, flags, indent)
	}
}

func (e *Emitter) emitScalarNode(fyn *yamlh.Node, flags nodeFlags, indent int) {
	style := yamlh.AnyStyle
	var fyt *yamlh.Token
	if fyn != nil {
		fyt = fyn.Scalar
		style = fyn.Style
	}
	if style == yamlh.AliasStyle {
		e.writeAlias(fyt, flags, e.increaseIndent(flags, indent))
		return
	}
	e.tokenScalar(fyt, flags, indent, style)
}

func (e *Emitter) sequenceProlog(sc *saveContext) {
	json := e.isJSONMode()
	oneline := e.isOneline()

	sc.oldIndent = sc.indent
	if !json {
		switch {
		case e.isFlowMode():
			sc.flow = true
		case e.isBlockMode():
			// an empty sequence has no block form
			sc.flow = sc.empty
		default:
			sc.flow = e.flowLevel > 0 || sc.flowToken || sc.empty
		}

		if sc.flow {
			if e.flowLevel == 0 {
				sc.indent = e.increaseIndent(sc.flags, sc.indent)
				sc.oldIndent = sc.indent
			}
			sc.flags = (sc.flags | dnfFlow) &^ dnfIndentless
			e.writeIndicator(diLeftBracket, sc.flags, sc.indent, WriteIndicator)
		} else {
			sc.flags &^= dnfFlow
			if sc.flags&dnfMap != 0 {
				sc.flags |= dnfIndentless
			} else {
				sc.flags &^= dnfIndentless
			}
		}
	} else {
		sc.flags = (sc.flags | dnfFlow) &^ dnfIndentless
		e.writeIndicator(diLeftBracket, sc.flags, sc.indent, WriteIndicator)
	}

	if !oneline {
		sc.indent = e.increaseIndent(sc.flags, sc.indent)
	}

	sc.flags &^= dnfRoot
}

func (e *Emitter) sequenceEpilog(sc *saveContext) {
	if sc.flow || e.isJSONMode() {
		if !e.isOneline() && !sc.empty {
			e.writeIndent(sc.oldIndent)
		}
		e.writeIndicator(diRightBracket, sc.flags, sc.oldIndent, WriteIndicator)
	}
}

func (e *Emitter) sequenceItemProlog(sc *saveContext, fytValue *yamlh.Token) {
	sc.flags |= dnfSeq

	if !e.isOneline() {
		e.writeIndent(sc.indent)
	}

	if !sc.flow && !e.isJSONMode() {
		e.writeIndicator(diDash, sc.flags, sc.indent, WriteIndicator)
	}

	tmpIndent := sc.indent
	if e.tokenHasComment(fytValue, yamlh.CommentTop) {
		if !sc.flow && !e.isJSONMode() {
			tmpIndent = e.increaseIndent(sc.flags, sc.indent)
		}
		e.tokenComment(fytValue, tmpIndent, yamlh.CommentTop)
	}
}

func (e *Emitter) sequenceItemEpilog(sc *saveContext, last bool, fytValue *yamlh.Token) {
	if (sc.flow || e.isJSONMode()) && !last {
		e.writeIndicator(diComma, sc.flags, sc.indent, WriteIndicator)
	}

	e.tokenComment(fytValue, sc.indent, yamlh.CommentRight)

	if last && (sc.flow || e.isJSONMode()) && !e.isOneline() && !sc.empty {
		e.writeIndent(sc.oldIndent)
	}

	sc.flags &^= dnfSeq
}

func (e *Emitter) emitSequence(fyn *yamlh.Node, flags nodeFlags, indent int) {
	sc := saveContext{
		flags:     flags,
		indent:    indent,
		empty:     len(fyn.Children) == 0,
		flowToken: fyn.Style == yamlh.FlowStyle,
		oldIndent: indent,
	}

	e.sequenceProlog(&sc)

	for i, fyni := range fyn.Children {
		last := i == len(fyn.Children)-1
		fytValue := fyni.ValueToken()

		e.sequenceItemProlog(&sc, fytValue)
		e.emitNodeInternal(fyni, sc.flags, sc.indent)
		e.sequenceItemEpilog(&sc, last, fytValue)
	}

	e.sequenceEpilog(&sc)
}

func (e *Emitter) mappingProlog(sc *saveContext) {
	json := e.isJSONMode()
	oneline := e.isOneline()

	sc.oldIndent = sc.indent
	if !json {
		switch {
		case e.isFlowMode():
			sc.flow = true
		case e.isBlockMode():
			// an empty mapping has no block form
			sc.flow = sc.empty
		default:
			sc.flow = e.flowLevel > 0 || sc.flowToken || sc.empty
		}

		if sc.flow {
			if e.flowLevel == 0 {
				sc.indent = e.increaseIndent(sc.flags, sc.indent)
				sc.oldIndent = sc.indent
			}
			sc.flags = (sc.flags | dnfFlow) &^ dnfIndentless
			e.writeIndicator(diLeftBrace, sc.flags, sc.indent, WriteIndicator)
		} else {
			sc.flags &^= dnfFlow | dnfIndentless
		}
	} else {
		sc.flags = (sc.flags | dnfFlow) &^ dnfIndentless
		e.writeIndicator(diLeftBrace, sc.flags, sc.indent, WriteIndicator)
	}

	if !oneline && !sc.empty {
		sc.indent = e.increaseIndent(sc.flags, sc.indent)
	}

	sc.flags &^= dnfRoot
}

func (e *Emitter) mappingEpilog(sc *saveContext) {
	if sc.flow || e.isJSONMode() {
		if !e.isOneline() && !sc.empty {
			e.writeIndent(sc.oldIndent)
		}
		e.writeIndicator(diRightBrace, sc.flags, sc.oldIndent, WriteIndicator)
	}
}

func (e *Emitter) mappingKeyProlog(sc *saveContext, fytKey *yamlh.Token, simpleKey bool) {
	sc.flags = dnfMap | sc.flags&dnfFlow

	if simpleKey {
		sc.flags |= dnfSimple
		if fytKey != nil && fytKey.Type == yamlh.SCALAR_TOKEN {
			sc.flags |= dnfSimpleScalarKey
		}
	}

	if !e.isOneline() {
		e.writeIndent(sc.indent)
	}

	// complex keys get the explicit indicator
	if sc.flags&dnfSimple == 0 {
		e.writeIndicator(diQuestionMark, sc.flags, sc.indent, WriteIndicator)
	}
}

func (e *Emitter) mappingKeyEpilog(sc *saveContext, fytKey *yamlh.Token) {
	// an alias key always gets an extra whitespace before the colon
	if fytKey != nil && fytKey.Type == yamlh.ALIAS_TOKEN {
		e.writeWS()
	}

	sc.flags &^= dnfMap

	e.writeIndicator(diColon, sc.flags, sc.indent, WriteIndicator)

	if e.tokenHasComment(fytKey, yamlh.CommentRight) {
		tmpIndent := sc.indent
		if !sc.flow && !e.isJSONMode() {
			tmpIndent = e.increaseIndent(sc.flags, sc.indent)
		}
		e.tokenComment(fytKey, tmpIndent, yamlh.CommentRight)
		e.writeIndent(tmpIndent)
	}

	sc.flags = dnfMap | sc.flags&dnfFlow
}

func (e *Emitter) mappingValueProlog(sc *saveContext, fytValue *yamlh.Token) {
	// nothing
}

func (e *Emitter) mappingValueEpilog(sc *saveContext, last bool, fytValue *yamlh.Token) {
	if (sc.flow || e.isJSONMode()) && !last {
		e.writeIndicator(diComma, sc.flags, sc.indent, WriteIndicator)
	}

	e.tokenComment(fytValue, sc.indent, yamlh.CommentRight)

	if last && (sc.flow || e.isJSONMode()) && !e.isOneline() && !sc.empty {
		e.writeIndent(sc.oldIndent)
	}

	sc.flags &^= dnfMap
}

// nodeSimpleKey decides whether a mapping key may use the inline
// key: value form.
func nodeSimpleKey(fyn *yamlh.Node) bool {
	if fyn == nil {
		return false
	}
	switch fyn.Type {
	case yamlh.ScalarNode:
		if fyn.Style == yamlh.AliasStyle {
			return true
		}
		return fyn.Scalar.Analyze().CanBeSimpleKey
	case yamlh.SequenceNode:
		return len(fyn.Children) == 0
	case yamlh.MappingNode:
		return len(fyn.Pairs) == 0
	}
	return false
}

func (e *Emitter) emitMapping(fyn *yamlh.Node, flags nodeFlags, indent int) {
	sc := saveContext{
		flags:     flags,
		indent:    indent,
		empty:     len(fyn.Pairs) == 0,
		flowToken: fyn.Style == yamlh.FlowStyle,
		oldIndent: indent,
	}

	e.mappingProlog(&sc)

	pairs := fyn.Pairs
	if e.cfg.SortKeys {
		pairs = append([]yamlh.NodePair(nil), fyn.Pairs...)
		sort.SliceStable(pairs, func(i, j int) bool {
			return yamlh.Compare(pairs[i].Key, pairs[j].Key) < 0
		})
	}

	for i, fynp := range pairs {
		last := i == len(pairs)-1
		fytKey := fynp.Key.ValueToken()
		fytValue := fynp.Value.ValueToken()

		e.mappingKeyProlog(&sc, fytKey, nodeSimpleKey(fynp.Key))
		if fynp.Key != nil {
			e.emitNodeInternal(fynp.Key, sc.flags, sc.indent)
		}
		e.mappingKeyEpilog(&sc, fytKey)

		e.mappingValueProlog(&sc, fytValue)
		if fynp.Value != nil {
			e.emitNodeInternal(fynp.Value, sc.flags, sc.indent)
		}
		e.mappingValueEpilog(&sc, last, fytValue)
	}

	e.mappingEpilog(&sc)
}

// commonDocumentStart emits directives and the document start mark per
// configuration, and binds the document state to the emitter.
func (e *Emitter) commonDocumentStart(fyds *yamlh.DocumentState) error {
	if fyds == nil {
		return fmt.Errorf("%w: document start without document state", ErrState)
	}
	if e.fyds != nil {
		return fmt.Errorf("%w: document start while a document is open", ErrState)
	}
	e.fyds = fyds

	vd := (e.cfg.VersionDirective == PolicyAuto && fyds.VersionExplicit ||
		e.cfg.VersionDirective == PolicyOn) && !e.cfg.StripDoc
	td := (e.cfg.TagDirective == PolicyAuto && fyds.TagsExplicit ||
		e.cfg.TagDirective == PolicyOn) && !e.cfg.StripDoc

	// if directives exist and no previous explicit document end was
	// output, one is needed now
	if !e.isJSONMode() && (vd || td) && e.flags&efHadDocumentEnd == 0 {
		if e.column != 0 {
			e.putc(WriteLinebreak, '\n')
		}
		if !e.cfg.StripDoc {
			e.puts(WriteDocumentIndicator, "...")
			e.flags &^= efWhitespace
			e.flags |= efHadDocumentEnd
		}
	}

	if !e.isJSONMode() && vd {
		if e.column != 0 {
			e.putc(WriteLinebreak, '\n')
		}
		e.puts(WriteVersionDirective,
			fmt.Sprintf("%%YAML %d.%d", fyds.Version.Major, fyds.Version.Minor))
		e.putc(WriteLinebreak, '\n')
		e.flags |= efWhitespace | efIndentation
	}

	hadNonDefaultTag := false
	if !e.isJSONMode() && td {
		for _, tdir := range fyds.TagDirectives {
			if yamlh.IsDefaultTagDirective(tdir) {
				continue
			}
			hadNonDefaultTag = true
			if e.column != 0 {
				e.putc(WriteLinebreak, '\n')
			}
			e.puts(WriteTagDirective,
				fmt.Sprintf("%%TAG %s %s", tdir.Handle, tdir.Prefix))
			e.putc(WriteLinebreak, '\n')
			e.flags |= efWhitespace | efIndentation
		}
	}

	dsm := e.cfg.DocStartMark == PolicyOn ||
		(e.cfg.DocStartMark == PolicyAuto &&
			(!fyds.StartImplicit ||
				fyds.TagsExplicit || fyds.VersionExplicit ||
				hadNonDefaultTag))

	// previous output without a document end forces the mark
	if !dsm && e.flags&efHadDocumentOutput != 0 &&
		e.flags&efHadDocumentEnd == 0 {
		dsm = true
	}

	if !e.isJSONMode() && dsm {
		if e.column != 0 {
			e.putc(WriteLinebreak, '\n')
		}
		if !e.cfg.StripDoc {
			e.puts(WriteDocumentIndicator, "---")
			e.flags &^= efWhitespace
			e.flags |= efHadDocumentStart
		}
	} else {
		e.flags &^= efHadDocumentStart
	}

	e.flags &^= efHadDocumentEnd

	return e.err()
}

// commonDocumentEnd emits the document end mark per configuration and
// releases the document state.
func (e *Emitter) commonDocumentEnd(forceExplicit bool) error {
	if e.fyds == nil {
		return fmt.Errorf("%w: document end without document start", ErrState)
	}
	fyds := e.fyds

	if e.column != 0 {
		e.putc(WriteLinebreak, '\n')
		e.flags |= efWhitespace | efIndentation
	}

	dem := forceExplicit ||
		((e.cfg.DocEndMark == PolicyAuto && !fyds.EndImplicit ||
			e.cfg.DocEndMark == PolicyOn) && !e.cfg.StripDoc)
	if !e.isJSONMode() && dem {
		e.puts(WriteDocumentIndicator, "...")
		e.putc(WriteLinebreak, '\n')
		e.flags |= efWhitespace | efIndentation | efHadDocumentEnd
	} else {
		e.flags &^= efHadDocumentEnd
	}

	e.flags |= efHadDocumentOutput

	e.fyds = nil

	return e.err()
}

// DocumentStart begins tree mode emission of fyd.
func (e *Emitter) DocumentStart(fyd *yamlh.Document) error {
	if fyd == nil {
		return fmt.Errorf("%w: nil document", ErrState)
	}
	fyds := fyd.State
	if fyds == nil {
		fyds = yamlh.NewDocumentState()
	}
	if err := e.commonDocumentStart(fyds); err != nil {
		return err
	}
	e.doc = fyd
	return nil
}

// DocumentEnd finishes tree mode emission of the current document.
func (e *Emitter) DocumentEnd() error {
	err := e.commonDocumentEnd(false)
	e.doc = nil
	return err
}

// EmitRootNode emits fyn as document content, including its comments.
func (e *Emitter) EmitRootNode(fyn *yamlh.Node) error {
	if fyn == nil {
		return nil
	}
	fyt := fyn.ValueToken()

	e.tokenComment(fyt, -1, yamlh.CommentTop)
	e.emitNodeInternal(fyn, dnfRoot, -1)
	e.tokenComment(fyt, -1, yamlh.CommentRight)
	e.tokenComment(fyt, -1, yamlh.CommentBottom)

	return e.err()
}

// EmitDocument emits a whole document: marks, directives, root.
func (e *Emitter) EmitDocument(fyd *yamlh.Document) error {
	if err := e.DocumentStart(fyd); err != nil {
		return err
	}
	if err := e.EmitRootNode(fyd.Root); err != nil {
		return err
	}
	return e.DocumentEnd()
}

// EmitNode emits a bare node with no document framing.
func (e *Emitter) EmitNode(fyn *yamlh.Node) error {
	if fyn == nil {
		return nil
	}
	e.emitNodeInternal(fyn, dnfRoot, -1)
	return e.err()
}
