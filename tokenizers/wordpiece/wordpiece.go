// Package wordpiece implements the longest-match-first greedy WordPiece
// segmenter, with a configurable continuation prefix ("##" for BERT).
// Operates on fragment.Fragment so reference offsets and mask tags
// survive segmentation.
package wordpiece

import (
	"github.com/fractalnlp/tokengo/tokenizers/fragment"
	"github.com/fractalnlp/tokengo/tokenizers/vocab"
)

// Config parameterizes the segmenter.
type Config struct {
	// ContinuationPrefix marks non-initial pieces ("##" for BERT).
	ContinuationPrefix string
	// MaxWordLen caps the codepoint length of a fragment before it is
	// treated as unconditionally unknown.
	MaxWordLen int
}

// DefaultConfig matches BERT's defaults.
func DefaultConfig() Config {
	return Config{ContinuationPrefix: "##", MaxWordLen: 100}
}

// Segment decomposes a single word fragment into WordPiece subword
// fragments via longest-match-first search.
func Segment(f fragment.Fragment, v *vocab.Vocab, cfg Config) []fragment.Fragment {
	if f.Text == "" {
		return nil
	}
	n := f.RuneCount()
	if n > cfg.MaxWordLen {
		return []fragment.Fragment{unknownFragment(f)}
	}

	var out []fragment.Fragment
	start := 0
	first := true
	for start < n {
		end := n
		found := false
		for end > start {
			candidate := string(f.Runes()[start:end])
			if !first {
				candidate = cfg.ContinuationPrefix + candidate
			}
			if _, ok := v.Lookup(candidate); ok {
				piece := f.Slice(start, end)
				piece.Mask = fragment.Continuation
				if first {
					piece.Mask = fragment.Begin
				}
				out = append(out, piece)
				found = true
				break
			}
			end--
		}
		if !found {
			return []fragment.Fragment{unknownFragment(f)}
		}
		start = end
		first = false
	}
	return out
}

func unknownFragment(f fragment.Fragment) fragment.Fragment {
	uf := f
	uf.Mask = fragment.Unknown
	return uf
}
