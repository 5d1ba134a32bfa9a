// Package fragment implements the token carrier passed between every stage
// of the pipeline (pre-tokenizer -> segmenter -> assembler): a text slice
// plus a per-character list of indices into the original input ("reference
// offsets") plus a mask tag.
package fragment

import "unicode/utf8"

// Mask tags why a fragment exists / how it was produced.
type Mask int

const (
	// None is the default: no special meaning attached.
	None Mask = iota
	// Whitespace marks a fragment produced by splitting on whitespace
	// (the whitespace itself is dropped, not carried as a fragment).
	Whitespace
	// Punctuation marks a single punctuation character split off on its
	// own by the pre-tokenizer.
	Punctuation
	// CJK marks a single CJK codepoint isolated by CJK-aware splitting.
	CJK
	// Special marks a fragment that matched a registered special-token
	// string; it must never be normalized or re-split.
	Special
	// Unknown marks a fragment that no vocabulary entry covered.
	Unknown
	// Continuation marks a non-initial subword piece (WordPiece "##",
	// a non-leading BPE/Unigram piece of the same word).
	Continuation
	// Begin marks the first subword piece produced for a word.
	Begin
)

func (m Mask) String() string {
	switch m {
	case None:
		return "None"
	case Whitespace:
		return "Whitespace"
	case Punctuation:
		return "Punctuation"
	case CJK:
		return "CJK"
	case Special:
		return "Special"
	case Unknown:
		return "Unknown"
	case Continuation:
		return "Continuation"
	case Begin:
		return "Begin"
	default:
		return "Unknown(Mask)"
	}
}

// Offset is a half-open codepoint range [Begin, End) into the original
// input, in the same codepoint indices ReferenceOffsets holds.
// When Begin >= End the offset is considered absent (Valid reports false).
type Offset struct {
	Begin int
	End   int
}

// Valid reports whether the offset designates a non-empty range.
func (o Offset) Valid() bool { return o.Begin < o.End }

// Fragment is the pipeline's unit of work: text plus, for every codepoint of
// Text, the index into the original input it descends from.
//
// Invariant: len(ReferenceOffsets) == utf8.RuneCountInString(Text) after any
// mutation.
type Fragment struct {
	Text             string
	ReferenceOffsets []int
	TokenOffset      Offset
	Mask             Mask
}

// New builds a fragment whose reference offsets are the identity mapping
// [start, start+1, start+2, ...), i.e. the fragment is a verbatim slice of
// the original input starting at byte/codepoint index start.
func New(text string, start int, mask Mask) Fragment {
	n := utf8.RuneCountInString(text)
	refs := make([]int, n)
	for i := range refs {
		refs[i] = start + i
	}
	end := start + n
	return Fragment{
		Text:             text,
		ReferenceOffsets: refs,
		TokenOffset:      Offset{Begin: start, End: end},
		Mask:             mask,
	}
}

// RuneCount returns the codepoint count of Text.
func (f Fragment) RuneCount() int { return utf8.RuneCountInString(f.Text) }

// CheckInvariant reports whether len(ReferenceOffsets) matches the codepoint
// count of Text. Intended for use in tests and defensive asserts, not the
// hot path.
func (f Fragment) CheckInvariant() bool {
	return len(f.ReferenceOffsets) == f.RuneCount()
}

// Slice returns the sub-fragment covering codepoints [start, end) of f,
// computed byte-range-safe via utf8 boundaries, carrying the matching
// ReferenceOffsets slice. The returned fragment's TokenOffset spans from the
// reference offset of its first codepoint to one past the reference offset
// of its last, which is correct only when the source offsets are
// monotonically non-decreasing (true for any fragment that has not been
// reordered).
func (f Fragment) Slice(start, end int) Fragment {
	runes := []rune(f.Text)
	text := string(runes[start:end])
	refs := make([]int, end-start)
	copy(refs, f.ReferenceOffsets[start:end])
	var off Offset
	if end > start {
		off = Offset{Begin: refs[0], End: refs[len(refs)-1] + 1}
	}
	return Fragment{
		Text:             text,
		ReferenceOffsets: refs,
		TokenOffset:      off,
		Mask:             f.Mask,
	}
}

// Runes returns the codepoints of Text as a slice, the natural
// representation for codepoint-indexed segmentation loops.
func (f Fragment) Runes() []rune { return []rune(f.Text) }
