// Package vocab implements an immutable token vocabulary: two maps
// (token -> id, id -> token) plus a registered set of special tokens that
// must never be split by the pre-tokenizer, plus a designated unknown
// token that must be present. Factored out as a standalone type so every
// segmenter package can depend on it without depending on any one
// tokenizer's JSON schema.
package vocab

import (
	"sort"

	"github.com/fractalnlp/tokengo/tokenizers/tokerr"
)

// Vocab is an immutable token<->id mapping plus a special-token overlay.
// Safe for concurrent read-only use by any number of goroutines: nothing
// here is mutated after Build returns.
type Vocab struct {
	values         map[string]int
	indices        map[int]string
	specialValues  map[string]int
	specialIndices map[int]string
	unknownValue   string
	unknownID      int
}

// Builder accumulates entries before Build validates and freezes them.
type Builder struct {
	values        map[string]int
	specialValues map[string]int
	unknown       string
}

// NewBuilder returns an empty Builder. unknown is the token string that
// must resolve to an id once Build is called (construction-time error if
// it never does).
func NewBuilder(unknown string) *Builder {
	return &Builder{
		values:        make(map[string]int),
		specialValues: make(map[string]int),
		unknown:       unknown,
	}
}

// Add registers a normal vocabulary entry.
func (b *Builder) Add(token string, id int) *Builder {
	b.values[token] = id
	return b
}

// AddSpecial registers a special token: its string must never be split by
// the pre-tokenizer, and it is never subjected to normalization.
func (b *Builder) AddSpecial(token string, id int) *Builder {
	b.specialValues[token] = id
	return b
}

// Build validates and freezes the vocabulary. The unknown token must
// resolve via either the normal or special map; its absence is a
// construction-time VocabularyParsing error.
func (b *Builder) Build() (*Vocab, error) {
	v := &Vocab{
		values:         b.values,
		indices:        make(map[int]string, len(b.values)),
		specialValues:  b.specialValues,
		specialIndices: make(map[int]string, len(b.specialValues)),
		unknownValue:   b.unknown,
	}
	for tok, id := range b.values {
		v.indices[id] = tok
	}
	for tok, id := range b.specialValues {
		v.specialIndices[id] = tok
	}
	id, ok := v.specialValues[b.unknown]
	if !ok {
		id, ok = v.values[b.unknown]
	}
	if !ok {
		return nil, tokerr.New(tokerr.VocabularyParsing,
			"unknown token %q is not present in the vocabulary", b.unknown)
	}
	v.unknownID = id
	return v, nil
}

// TokenToID resolves token through the fallback chain: special values,
// then normal values, then the unknown token's id.
func (v *Vocab) TokenToID(token string) int {
	if id, ok := v.specialValues[token]; ok {
		return id
	}
	if id, ok := v.values[token]; ok {
		return id
	}
	return v.unknownID
}

// Lookup is TokenToID but reports whether token resolved without falling
// back to the unknown id, for callers that need to distinguish a genuine
// miss (e.g. WordPiece's longest-match search).
func (v *Vocab) Lookup(token string) (int, bool) {
	if id, ok := v.specialValues[token]; ok {
		return id, true
	}
	id, ok := v.values[token]
	return id, ok
}

// IDToToken implements the inverse lookup chain: special_indices[i] ??
// indices[i] ?? unknown_value.
func (v *Vocab) IDToToken(id int) string {
	if tok, ok := v.specialIndices[id]; ok {
		return tok
	}
	if tok, ok := v.indices[id]; ok {
		return tok
	}
	return v.unknownValue
}

// IDToTokenOK is IDToToken but reports whether id resolved to a real entry.
func (v *Vocab) IDToTokenOK(id int) (string, bool) {
	if tok, ok := v.specialIndices[id]; ok {
		return tok, true
	}
	tok, ok := v.indices[id]
	return tok, ok
}

// IsSpecial reports whether token is registered as a special token: the
// pre-tokenizer must never split, normalize, or alter it.
func (v *Vocab) IsSpecial(token string) bool {
	_, ok := v.specialValues[token]
	return ok
}

// SpecialTokens returns every registered special-token string, longest
// first, so a caller scanning for special-token boundaries can resolve
// overlapping specials correctly (longest match wins on ties).
func (v *Vocab) SpecialTokens() []string {
	out := make([]string, 0, len(v.specialValues))
	for tok := range v.specialValues {
		out = append(out, tok)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

// UnknownID returns the id the unknown token resolves to.
func (v *Vocab) UnknownID() int { return v.unknownID }

// UnknownToken returns the unknown token string.
func (v *Vocab) UnknownToken() string { return v.unknownValue }

// Size returns the number of distinct ids across both maps.
func (v *Vocab) Size() int {
	seen := make(map[int]struct{}, len(v.indices)+len(v.specialIndices))
	for id := range v.indices {
		seen[id] = struct{}{}
	}
	for id := range v.specialIndices {
		seen[id] = struct{}{}
	}
	return len(seen)
}

// Contains reports whether token has a direct (non-unknown-fallback) entry.
func (v *Vocab) Contains(token string) bool {
	if _, ok := v.specialValues[token]; ok {
		return true
	}
	_, ok := v.values[token]
	return ok
}
