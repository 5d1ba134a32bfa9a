package unigram

import "github.com/fractalnlp/tokengo/tokenizers/fragment"

// SplitTrailingDigit implements a corrected Albert-style punctuation
// post-fix: Albert's original post-processor reattaches a comma-digit
// sequence like "3,000" that Unigram segmented as one piece by splitting
// the trailing digit back off, but the original implementation computed
// the split point as end-1 regardless of how many trailing digits there
// were, corrupting any piece with more than one trailing digit. Here the
// trigger is narrow and exact: a piece ending in exactly one ASCII digit
// immediately preceded by ','. Disabled by default; callers opt in per
// model-family configuration.
func SplitTrailingDigit(pieces []fragment.Fragment) []fragment.Fragment {
	out := make([]fragment.Fragment, 0, len(pieces))
	for _, p := range pieces {
		runes := p.Runes()
		n := len(runes)
		if n < 2 || !isASCIIDigit(runes[n-1]) || runes[n-2] != ',' {
			out = append(out, p)
			continue
		}
		head := p.Slice(0, n-1)
		tail := p.Slice(n-1, n)
		tail.Mask = fragment.Continuation
		out = append(out, head, tail)
	}
	return out
}

func isASCIIDigit(r rune) bool { return r >= '0' && r <= '9' }
