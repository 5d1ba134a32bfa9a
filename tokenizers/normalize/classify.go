// Package normalize implements the character-level classifiers and
// transforms shared by every pre-tokenizer: whitespace / control /
// punctuation / CJK predicates, NFKC decomposition, accent stripping,
// lowercasing, the control-character cleaner, and the
// byte<->printable-codepoint table used by byte-level BPE.
package normalize

import "unicode"

// IsWhitespace reports whether r is ASCII whitespace or a Unicode
// space-separator (Zs) codepoint: no-break space, ideographic space, etc.
func IsWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

// IsControl reports whether r is a Cc/Cf/Co/Cs control/format/private-use
// codepoint, excluding the three ASCII whitespace controls (\t \n \r),
// which Clean maps to space rather than dropping.
func IsControl(r rune) bool {
	switch r {
	case '\t', '\n', '\r':
		return false
	}
	return unicode.In(r, unicode.Cc, unicode.Cf, unicode.Co, unicode.Cs)
}

// IsPunctuation reports whether r is ASCII punctuation (the four ranges
// !-/, :-@, [-`, {-~) or any Unicode P* category codepoint.
func IsPunctuation(r rune) bool {
	if (r >= 33 && r <= 47) || (r >= 58 && r <= 64) ||
		(r >= 91 && r <= 96) || (r >= 123 && r <= 126) {
		return true
	}
	return unicode.IsPunct(r)
}

// cjkRanges enumerates the CJK ideograph Unicode blocks.
var cjkRanges = [][2]rune{
	{0x4E00, 0x9FFF},
	{0x3400, 0x4DBF},
	{0x20000, 0x2A6DF},
	{0x2A700, 0x2B73F},
	{0x2B740, 0x2B81F},
	{0x2B820, 0x2CEAF},
	{0xF900, 0xFAFF},
	{0x2F800, 0x2FA1F},
}

// IsCJK reports whether r falls in one of the CJK ideograph blocks.
func IsCJK(r rune) bool {
	for _, rg := range cjkRanges {
		if r >= rg[0] && r <= rg[1] {
			return true
		}
	}
	return false
}
