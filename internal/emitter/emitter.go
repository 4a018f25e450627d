// Package emitter implements the YAML/JSON writer. It formats document
// trees or event streams through a caller supplied write callback,
// tracking output position, indentation discipline, flow nesting and
// style legality.
package emitter

import (
	"errors"
	"math"

	"github.com/esainane/libfyaml/internal/utf8x"
	"github.com/esainane/libfyaml/internal/yamlh"
)

// Mode selects the overall output shape.
type Mode int

const (
	ModeBlock Mode = iota
	ModeFlow
	ModeFlowOneline
	ModeJSON
	ModeJSONTP
	ModeJSONOneline
)

func (m Mode) String() string {
	switch m {
	case ModeBlock:
		return "block"
	case ModeFlow:
		return "flow"
	case ModeFlowOneline:
		return "flow-oneline"
	case ModeJSON:
		return "json"
	case ModeJSONTP:
		return "json-tp"
	case ModeJSONOneline:
		return "json-oneline"
	}
	return "<unknown mode>"
}

// Policy selects automatic, forced or suppressed emission of a marker or
// directive.
type Policy int

const (
	PolicyAuto Policy = iota
	PolicyOn
	PolicyOff
)

// Config is the emitter configuration. The zero value is block mode with
// an indent of 2 and a width of 80.
type Config struct {
	Mode   Mode
	Indent int // 1..9; out of range values fall back to 2
	Width  int // 0 means 80, negative means unbounded

	VersionDirective Policy
	TagDirective     Policy
	DocStartMark     Policy
	DocEndMark       Policy

	StripLabels    bool
	StripTags      bool
	StripDoc       bool
	SortKeys       bool
	OutputComments bool
}

// WriteType tags each callback invocation with what kind of output the
// bytes are. Non structural, but observable.
type WriteType int

const (
	WriteWhitespace WriteType = iota
	WriteIndent
	WriteLinebreak
	WriteIndicator
	WriteDocumentIndicator
	WriteVersionDirective
	WriteTagDirective
	WriteTag
	WriteAnchor
	WriteAlias
	WritePlainScalar
	WritePlainScalarKey
	WriteSingleQuotedScalar
	WriteSingleQuotedScalarKey
	WriteDoubleQuotedScalar
	WriteDoubleQuotedScalarKey
	WriteLiteralScalar
	WriteFoldedScalar
	WriteComment
	WriteTerminatingZero
)

// WriteFunc is the output callback. It must return the number of bytes
// it accepted; a short count latches a fatal output error.
type WriteFunc func(wt WriteType, b []byte) int

// ErrOutput is reported when the write callback accepted fewer bytes
// than requested.
var ErrOutput = errors.New("emitter output error")

// ErrState is reported when an event does not match the emitter state.
var ErrState = errors.New("emitter state error")

// node decoration flags, threaded through the composite writers
type nodeFlags int

const (
	dnfRoot nodeFlags = 1 << iota
	dnfSeq
	dnfMap
	dnfSimple
	dnfSimpleScalarKey
	dnfFlow
	dnfIndentless
)

// formatter state flags
type emitFlags int

const (
	efWhitespace emitFlags = 1 << iota // just wrote whitespace
	efIndentation                      // at indentation
	efOpenEnded                        // open ended block scalar output
	efHadDocumentStart
	efHadDocumentEnd
	efHadDocumentOutput
)

// streaming states
type state int

const (
	sNone state = iota
	sStreamStart
	sFirstDocumentStart
	sDocumentStart
	sDocumentContent
	sDocumentEnd
	sSequenceFirstItem
	sSequenceItem
	sMappingFirstKey
	sMappingKey
	sMappingSimpleValue
	sMappingValue
	sEnd
)

var stateStrings = []string{
	sNone:               "NONE",
	sStreamStart:        "STREAM_START",
	sFirstDocumentStart: "FIRST_DOCUMENT_START",
	sDocumentStart:      "DOCUMENT_START",
	sDocumentContent:    "DOCUMENT_CONTENT",
	sDocumentEnd:        "DOCUMENT_END",
	sSequenceFirstItem:  "SEQUENCE_FIRST_ITEM",
	sSequenceItem:       "SEQUENCE_ITEM",
	sMappingFirstKey:    "MAPPING_FIRST_KEY",
	sMappingKey:         "MAPPING_KEY",
	sMappingSimpleValue: "MAPPING_SIMPLE_VALUE",
	sMappingValue:       "MAPPING_VALUE",
	sEnd:                "END",
}

func (s state) String() string {
	if s < 0 || int(s) >= len(stateStrings) {
		return "<unknown state>"
	}
	return stateStrings[s]
}

// saveContext is the per container frame for streaming: the container's
// own flags/indent plus the caller's, restored on pop.
type saveContext struct {
	flags     nodeFlags
	indent    int
	oldIndent int
	empty     bool
	flowToken bool // the container came in via flow syntax
	flow      bool // the emitter chose flow for it

	savedFlags  nodeFlags // the caller's flags, restored on pop
	savedIndent int

	lastKey   *yamlh.Token
	lastValue *yamlh.Token
}

// Emitter is a stateful writer over one output callback. It is owned by
// exactly one logical activity at a time.
type Emitter struct {
	cfg Config
	out WriteFunc

	line   int
	column int

	flowLevel int
	flags     emitFlags

	outputError bool

	fyds *yamlh.DocumentState // active document state
	doc  *yamlh.Document      // tree mode document

	ea accum

	// streaming machinery
	queued     []*yamlh.Event
	state      state
	stateStack []state
	sc         saveContext
	scStack    []saveContext
	sIndent    int
	sFlags     nodeFlags
}

// New returns an emitter writing through out.
func New(cfg Config, out WriteFunc) *Emitter {
	e := &Emitter{cfg: cfg, out: out}
	e.ea.init(e)
	e.Reset()
	return e
}

// Reset returns the emitter to its initial state, dropping any queued
// events.
func (e *Emitter) Reset() {
	e.reset(true)
}

func (e *Emitter) reset(resetEvents bool) {
	e.line = 0
	e.column = 0
	e.flowLevel = 0
	e.outputError = false
	// start as if a previous document ended explicitly, so an implicit
	// document can start without an indicator
	e.flags = efWhitespace | efIndentation | efHadDocumentEnd

	e.state = sNone
	e.ea.reset()

	e.sIndent = -1
	e.sFlags = dnfRoot

	e.stateStack = e.stateStack[:0]
	e.scStack = e.scStack[:0]
	e.sc = saveContext{}

	if resetEvents {
		e.queued = e.queued[:0]
		e.fyds = nil
		e.doc = nil
	}
}

// Config returns the emitter configuration.
func (e *Emitter) Config() Config {
	return e.cfg
}

func (e *Emitter) isJSONMode() bool {
	return e.cfg.Mode == ModeJSON || e.cfg.Mode == ModeJSONTP || e.cfg.Mode == ModeJSONOneline
}

func (e *Emitter) isFlowMode() bool {
	return e.cfg.Mode == ModeFlow || e.cfg.Mode == ModeFlowOneline
}

func (e *Emitter) isBlockMode() bool {
	return e.cfg.Mode == ModeBlock
}

func (e *Emitter) isOneline() bool {
	return e.cfg.Mode == ModeFlowOneline || e.cfg.Mode == ModeJSONOneline
}

func (e *Emitter) indentStep() int {
	if e.cfg.Indent < 1 || e.cfg.Indent > 9 {
		return 2
	}
	return e.cfg.Indent
}

func (e *Emitter) width() int {
	if e.cfg.Width == 0 {
		return 80
	}
	if e.cfg.Width < 0 {
		return math.MaxInt32
	}
	return e.cfg.Width
}

func (e *Emitter) whitespace() bool {
	return e.flags&efWhitespace != 0
}

func (e *Emitter) indentation() bool {
	return e.flags&efIndentation != 0
}

// write pushes bytes through the callback and updates the position
// trackers. CR LF pairs collapse to one line break; ANSI CSI sequences of
// the form ESC [ ... m count as zero width; the column advances one per
// code point otherwise.
func (e *Emitter) write(wt WriteType, b []byte) {
	if len(b) == 0 || e.outputError {
		return
	}
	if n := e.out(wt, b); n != len(b) {
		e.outputError = true
	}

	for i := 0; i < len(b); {
		c, w := utf8x.Get(b[i:])
		if c == utf8x.NoChar {
			c, w = rune(b[i]), 1
		}

		if c == '\r' && i+1 < len(b) && b[i+1] == '\n' {
			i += 2
			e.column = 0
			e.line++
			continue
		}
		if utf8x.IsLB(c) {
			e.column = 0
			e.line++
			i += w
			continue
		}
		if c == 0x1B && i+2 < len(b) && b[i+1] == '[' {
			if m := utf8x.Memchr(b[i:], 'm'); m >= 0 {
				i += m + 1
				continue
			}
		}
		e.column++
		i += w
	}
}

func (e *Emitter) puts(wt WriteType, s string) {
	e.write(wt, []byte(s))
}

func (e *Emitter) putc(wt WriteType, c rune) {
	var buf [4]byte
	w := utf8x.Put(buf[:], c)
	e.write(wt, buf[:w])
}

// writeWS emits a single space and marks whitespace pending.
func (e *Emitter) writeWS() {
	e.putc(WriteWhitespace, ' ')
	e.flags |= efWhitespace
}

var indentPadding = []byte("                                                                ")

// writeIndent breaks the line if needed and pads with spaces to the
// given column.
func (e *Emitter) writeIndent(indent int) {
	if indent < 0 {
		indent = 0
	}

	if !e.indentation() || e.column > indent ||
		(e.column == indent && !e.whitespace()) {
		e.putc(WriteLinebreak, '\n')
	}

	for e.column < indent {
		n := indent - e.column
		if n > len(indentPadding) {
			n = len(indentPadding)
		}
		e.write(WriteIndent, indentPadding[:n])
	}

	e.flags |= efWhitespace | efIndentation
}

type indicator int

const (
	diQuestionMark indicator = iota
	diColon
	diDash
	diLeftBracket
	diRightBracket
	diLeftBrace
	diRightBrace
	diComma
	diBar
	diGreater
	diSingleQuoteStart
	diSingleQuoteEnd
	diDoubleQuoteStart
	diDoubleQuoteEnd
	diAmpersand
	diStar
)

// sepSpace writes the separating space before an indicator or scalar
// unless one is pending or the mode packs output tight.
func (e *Emitter) sepSpace() {
	if !e.whitespace() && e.cfg.Mode != ModeJSONOneline {
		e.writeWS()
	}
}

// writeIndicator emits one structural indicator with the leading
// whitespace, flow level adjustment and flag bookkeeping it requires.
func (e *Emitter) writeIndicator(ind indicator, flags nodeFlags, indent int, wt WriteType) {
	switch ind {
	case diQuestionMark:
		e.sepSpace()
		e.putc(wt, '?')
		e.flags &^= efWhitespace | efOpenEnded

	case diColon:
		if flags&dnfSimple == 0 {
			if e.flowLevel == 0 && !e.isOneline() {
				e.writeIndent(indent)
			}
			e.sepSpace()
		}
		e.putc(wt, ':')
		e.flags &^= efWhitespace | efOpenEnded

	case diDash:
		e.sepSpace()
		e.putc(wt, '-')
		e.flags &^= efWhitespace | efOpenEnded

	case diLeftBracket, diLeftBrace:
		e.flowLevel++
		e.sepSpace()
		if ind == diLeftBracket {
			e.putc(wt, '[')
		} else {
			e.putc(wt, '{')
		}
		e.flags |= efWhitespace
		e.flags &^= efIndentation | efOpenEnded

	case diRightBracket, diRightBrace:
		e.flowLevel--
		if ind == diRightBracket {
			e.putc(wt, ']')
		} else {
			e.putc(wt, '}')
		}
		e.flags &^= efWhitespace | efIndentation | efOpenEnded

	case diComma:
		e.putc(wt, ',')
		e.flags &^= efWhitespace | efIndentation | efOpenEnded

	case diBar, diGreater:
		e.sepSpace()
		if ind == diBar {
			e.putc(wt, '|')
		} else {
			e.putc(wt, '>')
		}
		e.flags &^= efWhitespace | efIndentation | efOpenEnded

	case diSingleQuoteStart, diDoubleQuoteStart:
		e.sepSpace()
		if ind == diSingleQuoteStart {
			e.putc(wt, '\'')
		} else {
			e.putc(wt, '"')
		}
		e.flags &^= efWhitespace | efIndentation | efOpenEnded

	case diSingleQuoteEnd, diDoubleQuoteEnd:
		if ind == diSingleQuoteEnd {
			e.putc(wt, '\'')
		} else {
			e.putc(wt, '"')
		}
		e.flags &^= efWhitespace | efIndentation | efOpenEnded

	case diAmpersand:
		e.sepSpace()
		e.putc(wt, '&')
		e.flags &^= efWhitespace | efIndentation

	case diStar:
		e.sepSpace()
		e.putc(wt, '*')
		e.flags &^= efWhitespace | efIndentation
	}
}

// increaseIndent returns the indent for a nested scope.
func (e *Emitter) increaseIndent(flags nodeFlags, indent int) int {
	if indent < 0 {
		if flags&dnfFlow != 0 {
			return e.indentStep()
		}
		return 0
	}
	if flags&dnfIndentless == 0 {
		return indent + e.indentStep()
	}
	return indent
}

// err surfaces the latched output error, if any.
func (e *Emitter) err() error {
	if e.outputError {
		return ErrOutput
	}
	return nil
}
