package yamlh

import "github.com/esainane/libfyaml/internal/utf8x"

// TextAnalysis records which renderings a scalar's logical text allows.
type TextAnalysis struct {
	Empty     bool
	Multiline bool

	FlowPlainAllowed    bool
	BlockPlainAllowed   bool
	SingleQuotedAllowed bool
	BlockAllowed        bool

	HasNonPrintable bool

	// DirectOutput: no ambiguous indicators, no control codes, no
	// breaks; the text may be emitted plain, verbatim.
	DirectOutput bool

	// CanBeSimpleKey: short, single line, representable inline.
	CanBeSimpleKey bool
}

const simpleKeyMaxLength = 128

// Analyze classifies the token's logical text. The result is cached on
// the token.
func (t *Token) Analyze() TextAnalysis {
	if t == nil {
		return analyzeText("")
	}
	if t.analysisValid {
		return t.analysis
	}
	t.analysis = analyzeText(t.Text())
	t.analysisValid = true
	return t.analysis
}

func analyzeText(value string) TextAnalysis {
	var ta TextAnalysis

	if len(value) == 0 {
		ta.Empty = true
		ta.BlockPlainAllowed = true
		ta.SingleQuotedAllowed = true
		ta.CanBeSimpleKey = true
		ta.DirectOutput = true
		return ta
	}

	var blockIndicators, flowIndicators, lineBreaks bool
	var specialCharacters, tabCharacters bool
	var leadingSpace, leadingBreak, trailingSpace, trailingBreak bool
	var breakSpace, spaceBreak bool
	var previousSpace, previousBreak bool

	b := []byte(value)

	if len(b) >= 3 && (string(b[:3]) == "---" || string(b[:3]) == "...") {
		blockIndicators = true
		flowIndicators = true
	}

	precededByWhitespace := true
	for i := 0; i < len(b); {
		c, w := utf8x.Get(b[i:])
		if c == utf8x.NoChar {
			c, w = rune(b[i]), 1
		}
		var next rune = utf8x.NoChar
		if i+w < len(b) {
			next, _ = utf8x.Get(b[i+w:])
		}
		followedByWhitespace := utf8x.IsBlankz(next)

		if i == 0 {
			switch c {
			case '#', ',', '[', ']', '{', '}', '&', '*', '!', '|', '>', '\'', '"', '%', '@', '`':
				flowIndicators = true
				blockIndicators = true
			case '?', ':':
				flowIndicators = true
				if followedByWhitespace {
					blockIndicators = true
				}
			case '-':
				if followedByWhitespace {
					flowIndicators = true
					blockIndicators = true
				}
			}
		} else {
			switch c {
			case ',', '?', '[', ']', '{', '}':
				flowIndicators = true
			case ':':
				flowIndicators = true
				if followedByWhitespace {
					blockIndicators = true
				}
			case '#':
				if precededByWhitespace {
					flowIndicators = true
					blockIndicators = true
				}
			}
		}

		if utf8x.IsTab(c) {
			tabCharacters = true
		} else if !utf8x.IsPrint(c) {
			specialCharacters = true
		}

		switch {
		case utf8x.IsSpace(c):
			if i == 0 {
				leadingSpace = true
			}
			if i+w == len(b) {
				trailingSpace = true
			}
			if previousBreak {
				breakSpace = true
			}
			previousSpace = true
			previousBreak = false
		case utf8x.IsLB(c):
			lineBreaks = true
			if i == 0 {
				leadingBreak = true
			}
			if i+w == len(b) {
				trailingBreak = true
			}
			if previousSpace {
				spaceBreak = true
			}
			previousSpace = false
			previousBreak = true
		default:
			previousSpace = false
			previousBreak = false
		}

		precededByWhitespace = utf8x.IsBlankz(c)
		i += w
	}

	ta.Multiline = lineBreaks
	ta.HasNonPrintable = specialCharacters
	ta.FlowPlainAllowed = true
	ta.BlockPlainAllowed = true
	ta.SingleQuotedAllowed = true
	ta.BlockAllowed = true

	if leadingSpace || leadingBreak || trailingSpace || trailingBreak {
		ta.FlowPlainAllowed = false
		ta.BlockPlainAllowed = false
	}
	if trailingSpace {
		ta.BlockAllowed = false
	}
	if breakSpace {
		ta.FlowPlainAllowed = false
		ta.BlockPlainAllowed = false
		ta.SingleQuotedAllowed = false
	}
	if spaceBreak || tabCharacters || specialCharacters {
		ta.FlowPlainAllowed = false
		ta.BlockPlainAllowed = false
		ta.SingleQuotedAllowed = false
	}
	if spaceBreak || specialCharacters {
		ta.BlockAllowed = false
	}
	if lineBreaks {
		ta.FlowPlainAllowed = false
		ta.BlockPlainAllowed = false
	}
	if flowIndicators {
		ta.FlowPlainAllowed = false
	}
	if blockIndicators {
		ta.BlockPlainAllowed = false
	}

	ta.DirectOutput = ta.FlowPlainAllowed && ta.BlockPlainAllowed &&
		!lineBreaks && !specialCharacters
	ta.CanBeSimpleKey = !lineBreaks && !specialCharacters &&
		utf8x.Count(b) <= simpleKeyMaxLength
	return ta
}
