package atom

import "github.com/esainane/libfyaml/internal/utf8x"

// lineInfo describes one logical line within an atom. All positions are
// byte offsets into the iterator's data slice. Exactly two of these exist
// per iterator: the current line and the lookahead line.
type lineInfo struct {
	start      int
	end        int // position of the terminating break, or data end
	nwsStart   int // first non whitespace byte
	nwsEnd     int // one past the last non whitespace byte
	chompStart int // first byte at or past the chomp column (block styles)

	startWS int // leading whitespace, in columns
	endWS   int // trailing whitespace, in columns

	trailingWS       bool
	empty            bool
	trailingBreaks   bool // more breaks exist after the terminating one
	trailingBreaksWS bool // one of those trailing lines is indented past the chomp column
	first            bool
	last             bool // only whitespace and breaks remain afterwards
	final            bool // the scan reached the atom end
	indented         bool // the chomp point lands on whitespace
	lbEnd            bool // the line was terminated by a break

	// effective output slice and separators, filled by nextLine
	s, e    int
	needNL  bool
	needSep bool
}

const unset = -1

// analyzeLine walks from start to the next line break (or the atom end),
// classifying each code point and filling li.
func (it *Iter) analyzeLine(li *lineInfo, start int) {
	data := it.data
	end := len(data)
	isBlock := it.atom.Style.IsBlock()

	// short circuit non multiline, non whitespace atoms
	if it.atom.DirectOutput && !it.atom.HasLB && !it.atom.HasWS {
		*li = lineInfo{
			start:      start,
			end:        end,
			nwsStart:   start,
			nwsEnd:     end,
			chompStart: start,
			empty:      it.atom.Empty,
			first:      start == 0,
			last:       true,
			final:      true,
			lbEnd:      it.atom.EndsWithLB,
		}
		return
	}

	*li = lineInfo{
		start:      start,
		end:        unset,
		nwsStart:   unset,
		nwsEnd:     unset,
		chompStart: unset,
		startWS:    unset,
		endWS:      unset,
		first:      start == 0,
		empty:      true,
	}

	ts := it.tabsize
	lastWasWS := false
	col := 0
	cws := 0 // consecutive whitespace, in columns

	ss := start
	var c rune
	var w int
	for ss < end {
		c, w = utf8x.Get(data[ss:])
		if c == utf8x.NoChar {
			c, w = rune(data[ss]), 1
		}

		// mark the chomp point
		if isBlock && li.chompStart == unset && col >= it.chomp {
			li.chompStart = ss
			li.indented = utf8x.IsWS(c)
		}

		if utf8x.IsLB(c) {
			col = 0
			li.end = ss
			li.trailingWS = lastWasWS
			li.endWS = cws
			li.lbEnd = true
			if isBlock && li.chompStart == unset {
				li.chompStart = ss
			}
			if !lastWasWS {
				cws = 0
				li.nwsEnd = ss
				lastWasWS = true
			}
			break
		}

		if utf8x.IsWS(c) {
			advws := 1
			if utf8x.IsTab(c) {
				advws = ts - col%ts
			}
			col += advws
			cws += advws
			if !lastWasWS {
				li.nwsEnd = ss
				lastWasWS = true
			}
		} else {
			if li.nwsStart == unset {
				li.nwsStart = ss
			}
			li.empty = false
			if li.startWS == unset {
				li.startWS = cws
			}
			lastWasWS = false
			col++
		}
		ss += w
	}
	li.final = ss >= end

	if !lastWasWS {
		li.nwsEnd = ss
	}
	if li.nwsStart == unset {
		li.nwsStart = ss
	}
	if li.nwsEnd == unset {
		li.nwsEnd = ss
	}
	if isBlock && li.chompStart == unset {
		li.chompStart = ss
	}
	if li.startWS == unset {
		li.startWS = 0
	}

	// no break found: the line runs to the atom end
	if li.end == unset {
		li.end = end
		li.trailingWS = lastWasWS
		li.last = true
		li.endWS = cws
		li.lbEnd = false
		return
	}

	// step over the terminating break
	ss += w
	if ss >= end {
		li.last = true
		return
	}

	// find out whether trailing breaks exist afterwards
	for ss < end {
		c, w = utf8x.Get(data[ss:])
		if c == utf8x.NoChar {
			c, w = rune(data[ss]), 1
		}
		if !utf8x.IsWSLB(c) {
			break
		}
		if !li.trailingBreaks && utf8x.IsLB(c) {
			li.trailingBreaks = true
		}
		if !li.trailingBreaksWS && isBlock && col > it.chomp {
			li.trailingBreaksWS = true
		}
		if utf8x.IsLB(c) {
			col = 0
		} else if utf8x.IsTab(c) {
			col += ts - col%ts
		} else {
			col++
		}
		ss += w
	}

	// last iff only whitespace and breaks remain
	li.last = ss >= end
}
