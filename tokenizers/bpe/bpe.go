// Package bpe implements a byte-pair-encoding segmenter: byte-level (or
// classic, "</w>"-suffixed) symbol splitting, rank-greedy pair merging
// driven by a learned merge table, memoized behind a reader-writer lock.
// The BPE cache is the only shared mutable state anywhere in the
// pipeline; every other stage is a pure function of its input fragment.
package bpe

import (
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/fractalnlp/tokengo/tokenizers/fragment"
	"github.com/fractalnlp/tokengo/tokenizers/normalize"
	"github.com/fractalnlp/tokengo/tokenizers/vocab"
)

// Merges is the ranked pair table: rank(a, b) = smaller merges first.
type Merges struct {
	ranks map[pairKey]int
}

type pairKey struct{ a, b string }

// NewMerges builds a rank table from an ordered list of (a, b) pairs, line
// index == rank, matching the merges.txt format.
func NewMerges(pairs [][2]string) *Merges {
	m := &Merges{ranks: make(map[pairKey]int, len(pairs))}
	for i, p := range pairs {
		m.ranks[pairKey{p[0], p[1]}] = i
	}
	return m
}

func (m *Merges) rank(a, b string) (int, bool) {
	r, ok := m.ranks[pairKey{a, b}]
	return r, ok
}

// Config selects the byte-level vs. classic symbol-splitting variant.
type Config struct {
	// ByteLevel: split the word into UTF-8 bytes remapped through the
	// byte<->printable-codepoint table (GPT-2, RoBERTa).
	ByteLevel bool
	// EndOfWordSuffix, when non-empty and ByteLevel is false, is appended
	// to the final symbol before merging and stripped off afterward
	// (classic BPE's end-of-word handling).
	EndOfWordSuffix string
}

// Cache memoizes word -> decomposition, the sole shared-mutable structure
// in the pipeline. Lookups take the read lock; insertions take the write
// lock. Entries are never evicted.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]string
}

// NewCache returns an empty, ready-to-use cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string][]string)}
}

func (c *Cache) get(word string) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[word]
	return v, ok
}

func (c *Cache) put(word string, symbols []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Another goroutine may have raced us to the same word; that's fine,
	// BPE is a pure function of (word, merges) so both results agree.
	c.entries[word] = symbols
}

// Segmenter applies BPE to fragment.Fragment words, producing subpiece
// fragments with reference offsets sliced from the source.
type Segmenter struct {
	merges *Merges
	cfg    Config
	cache  *Cache
}

// New builds a Segmenter over the given merge table and cache. Passing a
// shared *Cache across calls/goroutines is what makes the memoization
// cross-call; passing a fresh Cache per call disables sharing.
func New(merges *Merges, cfg Config, cache *Cache) *Segmenter {
	if cache == nil {
		cache = NewCache()
	}
	return &Segmenter{merges: merges, cfg: cfg, cache: cache}
}

// Segment decomposes a single word fragment into BPE subpiece fragments.
func (s *Segmenter) Segment(f fragment.Fragment, v *vocab.Vocab) []fragment.Fragment {
	if f.Text == "" {
		return nil
	}
	word := f.Text
	symbols, ok := s.cache.get(word)
	if !ok {
		symbols = s.merge(s.initialSymbols(word))
		s.cache.put(word, symbols)
	}
	return s.toFragments(f, symbols, v)
}

// initialSymbols splits a word into codepoints (or, byte-level, the
// byte->printable-codepoint remap of the raw bytes).
func (s *Segmenter) initialSymbols(word string) []string {
	var symbols []string
	if s.cfg.ByteLevel {
		runes := normalize.BytesToRunes([]byte(word))
		symbols = make([]string, len(runes))
		for i, r := range runes {
			symbols[i] = string(r)
		}
	} else {
		for _, r := range word {
			symbols = append(symbols, string(r))
		}
		if s.cfg.EndOfWordSuffix != "" && len(symbols) > 0 {
			symbols[len(symbols)-1] += s.cfg.EndOfWordSuffix
		}
	}
	return symbols
}

// merge repeatedly fuses the minimum-rank adjacent pair, earliest
// occurrence winning ties, until no pair has a rank or a single symbol
// remains.
func (s *Segmenter) merge(symbols []string) []string {
	for len(symbols) > 1 {
		bestIdx := -1
		bestRank := -1
		for i := 0; i < len(symbols)-1; i++ {
			rank, ok := s.merges.rank(symbols[i], symbols[i+1])
			if !ok {
				continue
			}
			if bestIdx == -1 || rank < bestRank {
				bestIdx = i
				bestRank = rank
			}
		}
		if bestIdx == -1 {
			break
		}
		symbols = fuseAll(symbols, bestIdx)
	}
	return symbols
}

// fuseAll fuses every non-overlapping occurrence of the pair found at
// firstIdx in one left-to-right pass: the chosen pair is merged
// everywhere in one pass, not just at firstIdx.
func fuseAll(symbols []string, firstIdx int) []string {
	a, b := symbols[firstIdx], symbols[firstIdx+1]
	out := make([]string, 0, len(symbols)-1)
	i := 0
	for i < len(symbols) {
		if i < len(symbols)-1 && symbols[i] == a && symbols[i+1] == b {
			out = append(out, a+b)
			i += 2
			continue
		}
		out = append(out, symbols[i])
		i++
	}
	return out
}

func (s *Segmenter) toFragments(f fragment.Fragment, symbols []string, v *vocab.Vocab) []fragment.Fragment {
	if s.cfg.ByteLevel {
		return s.toFragmentsByteLevel(f, symbols, v)
	}
	return s.toFragmentsClassic(f, symbols, v)
}

// toFragmentsClassic handles non-byte-level BPE, where every pre-merge
// symbol is exactly one source codepoint, so a merged symbol's rune count
// (after stripping a terminal EndOfWordSuffix decoration, which consumes
// no source width) is exactly its source codepoint span.
func (s *Segmenter) toFragmentsClassic(f fragment.Fragment, symbols []string, v *vocab.Vocab) []fragment.Fragment {
	out := make([]fragment.Fragment, 0, len(symbols))
	srcIdx := 0
	for i, sym := range symbols {
		text := sym
		isLast := i == len(symbols)-1
		if isLast && s.cfg.EndOfWordSuffix != "" {
			text = strings.TrimSuffix(text, s.cfg.EndOfWordSuffix)
		}
		width := utf8.RuneCountInString(text)
		piece := f.Slice(srcIdx, srcIdx+width)
		piece.Text = text
		setPieceMask(&piece, i, v)
		out = append(out, piece)
		srcIdx += width
	}
	return out
}

// toFragmentsByteLevel handles byte-level BPE, where merges operate on the
// word's raw UTF-8 bytes (remapped through the printable-codepoint
// bijection) and are free to fuse across original codepoint boundaries,
// a real property of GPT-2-style byte-level BPE, not an artifact of this
// implementation. Reference offsets are recovered by tracking exact bytes
// consumed and rounding each piece's boundary up to the next complete
// source codepoint, so two adjacent pieces may (rarely, for a codepoint
// whose bytes a merge split across them) report overlapping reference
// offsets rather than dropping the shared codepoint from both.
func (s *Segmenter) toFragmentsByteLevel(f fragment.Fragment, symbols []string, v *vocab.Vocab) []fragment.Fragment {
	runes := f.Runes()
	cum := make([]int, len(runes)+1)
	for i, r := range runes {
		cum[i+1] = cum[i] + utf8.RuneLen(r)
	}
	ceilRune := func(byteTarget int) int {
		return sort.Search(len(cum), func(i int) bool { return cum[i] >= byteTarget })
	}

	out := make([]fragment.Fragment, 0, len(symbols))
	byteIdx := 0
	srcIdx := 0
	for i, sym := range symbols {
		decoded := string(normalize.RunesToBytes([]rune(sym)))
		byteIdx += len(decoded)
		endRune := ceilRune(byteIdx)
		if endRune > len(runes) {
			endRune = len(runes)
		}
		if endRune < srcIdx {
			endRune = srcIdx
		}
		piece := f.Slice(srcIdx, endRune)
		piece.Text = decoded
		setPieceMask(&piece, i, v)
		out = append(out, piece)
		srcIdx = endRune
	}
	return out
}

func setPieceMask(piece *fragment.Fragment, index int, v *vocab.Vocab) {
	if index == 0 {
		piece.Mask = fragment.Begin
	} else {
		piece.Mask = fragment.Continuation
	}
	if _, ok := v.Lookup(piece.Text); !ok {
		piece.Mask = fragment.Unknown
	}
}
