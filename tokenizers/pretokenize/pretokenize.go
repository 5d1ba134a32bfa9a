// Package pretokenize implements the pre-tokenizer: split on special-token
// strings, then (per-fragment) clean / NFKC / lowercase / strip-accents /
// CJK-isolate / whitespace-split / punctuation-split. Every step carries
// fragment.Fragment offsets end to end instead of discarding them into
// bare strings.
package pretokenize

import (
	"github.com/fractalnlp/tokengo/tokenizers/fragment"
	"github.com/fractalnlp/tokengo/tokenizers/normalize"
	"github.com/fractalnlp/tokengo/tokenizers/vocab"
)

// Config selects which normalization/splitting steps run, mirroring a
// tokenizer's per-model-family configuration.
type Config struct {
	LowerCase    bool
	StripAccents bool
	IsolateCJK   bool
	SplitOnPunct bool
	// Clean, when true, runs the control/whitespace cleaner first (BERT
	// normalizer does; byte-level BPE pre-tokenizers typically don't).
	Clean bool
	// NFKC, when true, applies compatibility decomposition after cleaning.
	NFKC bool
	// NFD, when true, applies canonical decomposition after cleaning
	// (combining marks are kept, unlike StripAccents).
	NFD bool
}

// PreTokenize splits input into word-level fragments with offsets
// preserved.
func PreTokenize(input string, v *vocab.Vocab, cfg Config) []fragment.Fragment {
	base := splitOnSpecialTokens(input, v)
	var out []fragment.Fragment
	for _, f := range base {
		if f.Mask == fragment.Special {
			out = append(out, f)
			continue
		}
		out = append(out, processOrdinary(f, cfg)...)
	}
	return out
}

// SplitSpecials exposes step 1 of PreTokenize (isolating registered
// special-token strings) on its own, for segmenters like Unigram that need
// to run their own whitespace handling over the remainder (metaspace
// insertion) rather than PreTokenize's whitespace-splitting.
func SplitSpecials(input string, v *vocab.Vocab) []fragment.Fragment {
	return splitOnSpecialTokens(input, v)
}

// splitOnSpecialTokens scans input for any special-token string, longest
// match wins on ties, and emits alternating None/Special fragments with
// offsets equal to source indices.
func splitOnSpecialTokens(input string, v *vocab.Vocab) []fragment.Fragment {
	if v == nil {
		return []fragment.Fragment{fragment.New(input, 0, fragment.None)}
	}
	specials := v.SpecialTokens() // longest first, per vocab.SpecialTokens
	if len(specials) == 0 {
		return []fragment.Fragment{fragment.New(input, 0, fragment.None)}
	}

	var out []fragment.Fragment
	runes := []rune(input)
	n := len(runes)
	// pendingStart tracks the codepoint index (== reference offset, since this
	// is the unmodified original input) where the pending non-special run
	// began.
	pendingStart := 0
	i := 0
	for i < n {
		matchLen := 0
		for _, s := range specials {
			sr := []rune(s)
			if len(sr) == 0 || i+len(sr) > n {
				continue
			}
			if runesEqual(runes[i:i+len(sr)], sr) {
				matchLen = len(sr)
				break // specials is sorted longest-first: first hit wins
			}
		}
		if matchLen == 0 {
			i++
			continue
		}
		if i > pendingStart {
			out = append(out, fragment.New(string(runes[pendingStart:i]), pendingStart, fragment.None))
		}
		out = append(out, fragment.New(string(runes[i:i+matchLen]), i, fragment.Special))
		i += matchLen
		pendingStart = i
	}
	if pendingStart < n {
		out = append(out, fragment.New(string(runes[pendingStart:]), pendingStart, fragment.None))
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// processOrdinary applies clean -> NFKC -> lowercase -> strip-accents ->
// CJK-isolation -> whitespace-split -> punctuation-split to a single
// non-special fragment.
func processOrdinary(f fragment.Fragment, cfg Config) []fragment.Fragment {
	if cfg.Clean {
		f = normalize.Clean(f)
	}
	if cfg.NFKC {
		f = normalize.DecomposeNFKC(f)
	}
	if cfg.NFD {
		f = normalize.DecomposeNFD(f)
	}
	if cfg.LowerCase {
		f = normalize.Lowercase(f)
	}
	if cfg.StripAccents {
		f = normalize.StripAccents(f)
	}
	if cfg.IsolateCJK {
		f = isolateCJK(f)
	}

	var out []fragment.Fragment
	for _, wordFrag := range splitWhitespace(f) {
		if cfg.SplitOnPunct {
			out = append(out, splitPunctuation(wordFrag)...)
		} else {
			out = append(out, wordFrag)
		}
	}
	return out
}

// isolateCJK inserts a space before and after each CJK codepoint, so that
// splitWhitespace emits each one as its own single-character fragment
// (which splitWhitespace tags CJK). The fragment returned here keeps f's mask.
func isolateCJK(f fragment.Fragment) fragment.Fragment {
	runes := f.Runes()
	var outText []rune
	var outRefs []int
	for i, r := range runes {
		if normalize.IsCJK(r) {
			outText = append(outText, ' ', r, ' ')
			outRefs = append(outRefs, f.ReferenceOffsets[i], f.ReferenceOffsets[i], f.ReferenceOffsets[i])
		} else {
			outText = append(outText, r)
			outRefs = append(outRefs, f.ReferenceOffsets[i])
		}
	}
	return fragment.Fragment{
		Text:             string(outText),
		ReferenceOffsets: outRefs,
		TokenOffset:      f.TokenOffset,
		Mask:             f.Mask,
	}
}

// splitWhitespace drops whitespace codepoints and records a boundary at
// each run, collapsing consecutive whitespace to one boundary. A word that
// is a single CJK codepoint (as isolateCJK produces) is tagged CJK; every
// other word is tagged None.
func splitWhitespace(f fragment.Fragment) []fragment.Fragment {
	runes := f.Runes()
	var out []fragment.Fragment
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		text := string(runes[start:end])
		refs := append([]int(nil), f.ReferenceOffsets[start:end]...)
		mask := fragment.None
		if len(refs) == 1 && normalize.IsCJK(runes[start]) {
			mask = fragment.CJK
		}
		out = append(out, fragment.Fragment{
			Text:             text,
			ReferenceOffsets: refs,
			TokenOffset:      fragment.Offset{Begin: refs[0], End: refs[len(refs)-1] + 1},
			Mask:             mask,
		})
		start = -1
	}
	for i, r := range runes {
		if normalize.IsWhitespace(r) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(runes))
	return out
}

// splitPunctuation breaks a word fragment so each punctuation codepoint
// becomes its own fragment tagged Punctuation, breaking on both sides of
// letters adjacent to it.
func splitPunctuation(f fragment.Fragment) []fragment.Fragment {
	if f.Mask == fragment.CJK {
		// Already a single isolated CJK codepoint; nothing to split.
		return []fragment.Fragment{f}
	}
	runes := f.Runes()
	var out []fragment.Fragment
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		out = append(out, f.Slice(start, end))
		start = -1
	}
	for i, r := range runes {
		if normalize.IsPunctuation(r) {
			flush(i)
			piece := f.Slice(i, i+1)
			piece.Mask = fragment.Punctuation
			out = append(out, piece)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(runes))
	return out
}
