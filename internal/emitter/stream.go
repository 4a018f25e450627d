package emitter

import (
	"fmt"

	"github.com/esainane/libfyaml/internal/yamlh"
)

// EmitEvent queues one event and emits every complete unit the queue now
// holds. Tokens attached to consumed events are taken over by the
// emitter.
func (e *Emitter) EmitEvent(ev *yamlh.Event) error {
	if ev == nil {
		return fmt.Errorf("%w: nil event", ErrState)
	}

	if e.state == sNone {
		e.state = sStreamStart
	}

	e.queued = append(e.queued, ev)

	for {
		fyep := e.nextEvent()
		if fyep == nil {
			break
		}

		var err error
		switch e.state {
		case sStreamStart:
			err = e.handleStreamStart(fyep)

		case sFirstDocumentStart, sDocumentStart:
			err = e.handleDocumentStart(fyep, e.state == sFirstDocumentStart)

		case sDocumentContent:
			err = e.handleDocumentContent(fyep)

		case sDocumentEnd:
			err = e.handleDocumentEnd(fyep)

		case sSequenceFirstItem, sSequenceItem:
			err = e.handleSequenceItem(fyep, e.state == sSequenceFirstItem)

		case sMappingFirstKey, sMappingKey:
			err = e.handleMappingKey(fyep, e.state == sMappingFirstKey)

		case sMappingSimpleValue, sMappingValue:
			err = e.handleMappingValue(fyep, e.state == sMappingSimpleValue)

		case sEnd:
			err = fmt.Errorf("%w: event after STREAM-END", ErrState)

		default:
			err = fmt.Errorf("%w: invalid state %v", ErrState, e.state)
		}

		if err != nil {
			e.state = sEnd
			return err
		}
	}

	return e.err()
}

// ready checks whether enough lookahead is queued to emit the head
// event: 1 extra for DOCUMENT-START, 2 for SEQUENCE-START, 3 for
// MAPPING-START, or any complete unit (depth returning to zero).
func (e *Emitter) ready() bool {
	if len(e.queued) == 0 {
		return false
	}

	var need int
	switch e.queued[0].Type {
	case yamlh.DOCUMENT_START_EVENT:
		need = 1
	case yamlh.SEQUENCE_START_EVENT:
		need = 2
	case yamlh.MAPPING_START_EVENT:
		need = 3
	default:
		return true
	}

	if len(e.queued) > need {
		return true
	}

	level := 0
	for _, fyep := range e.queued {
		switch fyep.Type {
		case yamlh.STREAM_START_EVENT, yamlh.DOCUMENT_START_EVENT,
			yamlh.SEQUENCE_START_EVENT, yamlh.MAPPING_START_EVENT:
			level++
		case yamlh.STREAM_END_EVENT, yamlh.DOCUMENT_END_EVENT,
			yamlh.SEQUENCE_END_EVENT, yamlh.MAPPING_END_EVENT:
			level--
		}
		if level == 0 {
			return true
		}
	}
	return false
}

func (e *Emitter) nextEvent() *yamlh.Event {
	if !e.ready() {
		return nil
	}
	fyep := e.queued[0]
	e.queued = e.queued[1:]
	return fyep
}

func (e *Emitter) peekNextEvent() *yamlh.Event {
	if !e.ready() {
		return nil
	}
	return e.queued[0]
}

func (e *Emitter) streamingSequenceEmpty() bool {
	fyen := e.peekNextEvent()
	return fyen == nil || fyen.Type == yamlh.SEQUENCE_END_EVENT
}

func (e *Emitter) streamingMappingEmpty() bool {
	fyen := e.peekNextEvent()
	return fyen == nil || fyen.Type == yamlh.MAPPING_END_EVENT
}

func (e *Emitter) pushState(s state) {
	e.stateStack = append(e.stateStack, s)
}

func (e *Emitter) popState() state {
	if len(e.stateStack) == 0 {
		return sNone
	}
	s := e.stateStack[len(e.stateStack)-1]
	e.stateStack = e.stateStack[:len(e.stateStack)-1]
	return s
}

func (e *Emitter) pushSC(sc *saveContext) {
	e.scStack = append(e.scStack, *sc)
}

func (e *Emitter) popSC(sc *saveContext) error {
	if len(e.scStack) == 0 {
		return fmt.Errorf("%w: save context stack underflow", ErrState)
	}
	*sc = e.scStack[len(e.scStack)-1]
	e.scStack = e.scStack[:len(e.scStack)-1]
	return nil
}

// releaseEventTokens marks the event's tokens as consumed.
func releaseEventTokens(fyep *yamlh.Event) {
	fyep.Anchor = nil
	fyep.Tag = nil
	fyep.Value = nil
	fyep.Marker = nil
}

// streamingNode emits one node-shaped event, pushing a save context for
// container starts.
func (e *Emitter) streamingNode(fyep *yamlh.Event, flags nodeFlags) error {
	sc := &e.sc

	if fyep.Type != yamlh.ALIAS_EVENT && fyep.Type != yamlh.SCALAR_EVENT &&
		e.sFlags&dnfRoot != 0 && e.column != 0 {
		e.putc(WriteLinebreak, '\n')
		e.flags |= efWhitespace | efIndentation
	}

	e.sFlags = flags

	switch fyep.Type {
	case yamlh.ALIAS_EVENT:
		e.writeAlias(fyep.Anchor, e.sFlags, e.sIndent)
		e.state = e.popState()

	case yamlh.SCALAR_EVENT:
		e.nodePreamble(fyep.Anchor, fyep.Tag, e.sFlags, e.sIndent)
		style := yamlh.PlainStyle
		if fyep.Value != nil && fyep.Value.Atom != nil {
			style = yamlh.NodeStyleFromScalarStyle(fyep.Value.Atom.Style)
		}
		e.tokenScalar(fyep.Value, e.sFlags, e.sIndent, style)
		e.state = e.popState()

	case yamlh.SEQUENCE_START_EVENT:
		// save the caller's context
		e.pushSC(sc)

		savedFlags := e.sFlags
		savedIndent := e.sIndent

		e.nodePreamble(fyep.Anchor, fyep.Tag, e.sFlags, e.sIndent)

		*sc = saveContext{
			flags:       dnfSeq | e.sFlags&dnfRoot,
			indent:      e.sIndent,
			empty:       e.streamingSequenceEmpty(),
			flowToken:   fyep.FlowMarker(),
			oldIndent:   e.sIndent,
			savedFlags:  savedFlags,
			savedIndent: savedIndent,
		}

		e.sequenceProlog(sc)

		e.sFlags = sc.flags
		e.sIndent = sc.indent

		e.state = sSequenceFirstItem

	case yamlh.MAPPING_START_EVENT:
		// save the caller's context
		e.pushSC(sc)

		savedFlags := e.sFlags
		savedIndent := e.sIndent

		e.nodePreamble(fyep.Anchor, fyep.Tag, e.sFlags, e.sIndent)

		*sc = saveContext{
			flags:       dnfMap | e.sFlags&dnfRoot,
			indent:      e.sIndent,
			empty:       e.streamingMappingEmpty(),
			flowToken:   fyep.FlowMarker(),
			oldIndent:   e.sIndent,
			savedFlags:  savedFlags,
			savedIndent: savedIndent,
		}

		e.mappingProlog(sc)

		e.sFlags = sc.flags
		e.sIndent = sc.indent

		e.state = sMappingFirstKey

	default:
		return fmt.Errorf("%w: expected ALIAS, SCALAR, SEQUENCE-START or MAPPING-START, got %v",
			ErrState, fyep.Type)
	}

	return e.err()
}

func (e *Emitter) handleStreamStart(fyep *yamlh.Event) error {
	if fyep.Type != yamlh.STREAM_START_EVENT {
		return fmt.Errorf("%w: expected STREAM-START, got %v", ErrState, fyep.Type)
	}
	e.reset(false)
	e.state = sFirstDocumentStart
	return nil
}

func (e *Emitter) handleDocumentStart(fyep *yamlh.Event, first bool) error {
	if fyep.Type != yamlh.DOCUMENT_START_EVENT &&
		fyep.Type != yamlh.STREAM_END_EVENT {
		return fmt.Errorf("%w: expected DOCUMENT-START or STREAM-END, got %v", ErrState, fyep.Type)
	}

	if fyep.Type == yamlh.STREAM_END_EVENT {
		e.state = sEnd
		return e.err()
	}

	// the emitter takes ownership of the document state, since it may
	// outlive the parser that produced it
	fyds := fyep.DocumentState
	fyep.DocumentState = nil
	if fyds == nil {
		fyds = yamlh.NewDocumentState()
		fyds.StartImplicit = fyep.Implicit
	}

	if err := e.commonDocumentStart(fyds); err != nil {
		return err
	}

	e.state = sDocumentContent
	return nil
}

func (e *Emitter) handleDocumentContent(fyep *yamlh.Event) error {
	e.pushState(sDocumentEnd)
	return e.streamingNode(fyep, dnfRoot)
}

func (e *Emitter) handleDocumentEnd(fyep *yamlh.Event) error {
	if fyep.Type != yamlh.DOCUMENT_END_EVENT {
		return fmt.Errorf("%w: expected DOCUMENT-END, got %v", ErrState, fyep.Type)
	}

	if err := e.commonDocumentEnd(!fyep.Implicit); err != nil {
		return err
	}

	e.reset(false)
	e.state = sDocumentStart
	return nil
}

func (e *Emitter) handleSequenceItem(fyep *yamlh.Event, first bool) error {
	sc := &e.sc

	switch fyep.Type {
	case yamlh.SEQUENCE_END_EVENT:
		e.sequenceItemEpilog(sc, true, sc.lastValue)
		sc.lastValue = nil

		e.sequenceEpilog(sc)
		err := e.popSC(sc)
		e.state = e.popState()

		e.sIndent = sc.savedIndent
		e.sFlags = sc.savedFlags
		if err != nil {
			return err
		}
		return e.err()

	case yamlh.ALIAS_EVENT, yamlh.SCALAR_EVENT,
		yamlh.SEQUENCE_START_EVENT, yamlh.MAPPING_START_EVENT:
		// fall through to the item emission below

	default:
		return fmt.Errorf("%w: expected SEQUENCE-END, ALIAS, SCALAR, SEQUENCE-START or MAPPING-START, got %v",
			ErrState, fyep.Type)
	}

	fytItem := fyep.ValueToken()

	e.pushState(sSequenceItem)

	// reset indent and flags for each item
	e.sIndent = sc.indent
	e.sFlags = sc.flags

	if !first {
		e.sequenceItemEpilog(sc, false, sc.lastValue)
	}

	sc.lastValue = fytItem

	e.sequenceItemProlog(sc, fytItem)

	err := e.streamingNode(fyep, sc.flags)

	releaseEventTokens(fyep)

	return err
}

func (e *Emitter) handleMappingKey(fyep *yamlh.Event, first bool) error {
	sc := &e.sc

	sc.lastKey = nil

	simpleKey := false

	switch fyep.Type {
	case yamlh.MAPPING_END_EVENT:
		e.mappingValueEpilog(sc, true, sc.lastValue)
		sc.lastValue = nil

		e.mappingEpilog(sc)
		err := e.popSC(sc)
		e.state = e.popState()

		e.sIndent = sc.savedIndent
		e.sFlags = sc.savedFlags
		if err != nil {
			return err
		}
		return e.err()

	case yamlh.ALIAS_EVENT:
		simpleKey = true

	case yamlh.SCALAR_EVENT:
		simpleKey = fyep.Value.Analyze().CanBeSimpleKey

	case yamlh.SEQUENCE_START_EVENT:
		simpleKey = e.streamingSequenceEmpty()

	case yamlh.MAPPING_START_EVENT:
		simpleKey = e.streamingMappingEmpty()

	default:
		return fmt.Errorf("%w: expected MAPPING-END, ALIAS, SCALAR, SEQUENCE-START or MAPPING-START, got %v",
			ErrState, fyep.Type)
	}

	fytKey := fyep.ValueToken()

	e.pushState(sMappingValue)

	// reset indent and flags for each key/value pair
	e.sIndent = sc.indent
	e.sFlags = sc.flags

	if !first {
		e.mappingValueEpilog(sc, false, sc.lastValue)
		sc.lastValue = nil
	}

	sc.lastKey = fytKey

	e.mappingKeyProlog(sc, fytKey, simpleKey)

	err := e.streamingNode(fyep, sc.flags)

	releaseEventTokens(fyep)

	return err
}

func (e *Emitter) handleMappingValue(fyep *yamlh.Event, simple bool) error {
	sc := &e.sc

	switch fyep.Type {
	case yamlh.ALIAS_EVENT, yamlh.SCALAR_EVENT,
		yamlh.SEQUENCE_START_EVENT, yamlh.MAPPING_START_EVENT:
	default:
		return fmt.Errorf("%w: expected ALIAS, SCALAR, SEQUENCE-START or MAPPING-START, got %v",
			ErrState, fyep.Type)
	}

	fytValue := fyep.ValueToken()

	e.pushState(sMappingKey)

	e.mappingKeyEpilog(sc, sc.lastKey)

	sc.lastValue = fytValue

	e.mappingValueProlog(sc, fytValue)

	err := e.streamingNode(fyep, sc.flags)

	releaseEventTokens(fyep)

	return err
}
