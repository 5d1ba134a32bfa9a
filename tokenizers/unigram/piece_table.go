// Package unigram implements the SentencePiece Unigram segmenter: a trie
// of scored pieces and the Viterbi best-path decoder, including
// byte-fallback for unknown codepoints and the consecutive-unknown-node
// merge.
package unigram

import "sort"

// Piece is one SentencePiece vocabulary entry: a surface string and its
// log-probability score.
type Piece struct {
	Text  string
	Score float64
	// ID is the piece's vocabulary id, carried through so Segment can
	// report it directly without a second vocab lookup.
	ID int
}

type trieNode struct {
	children map[rune]*trieNode
	piece    *Piece // non-nil if a piece ends exactly here
}

// Table is a trie over piece strings supporting the "every piece that is a
// prefix of text[i..]" query Unigram decoding needs.
type Table struct {
	root         *trieNode
	byteFallback map[byte]*Piece // "<0xXX>" byte-fallback pieces, if any
	unkScore     float64
}

// NewTable builds a Table from the given pieces. unkScore is the large
// negative constant assigned to synthetic unknown nodes.
func NewTable(pieces []Piece, unkScore float64) *Table {
	t := &Table{root: &trieNode{children: make(map[rune]*trieNode)}, unkScore: unkScore}
	for _, p := range pieces {
		t.insert(p)
	}
	return t
}

func (t *Table) insert(p Piece) {
	node := t.root
	for _, r := range p.Text {
		child, ok := node.children[r]
		if !ok {
			child = &trieNode{children: make(map[rune]*trieNode)}
			node.children[r] = child
		}
		node = child
	}
	pp := p
	node.piece = &pp
	if b, ok := byteFallbackByte(p.Text); ok {
		if t.byteFallback == nil {
			t.byteFallback = make(map[byte]*Piece)
		}
		t.byteFallback[b] = &pp
	}
}

// byteFallbackByte parses SentencePiece's "<0xXX>" byte-fallback token
// form, returning the byte value it stands for.
func byteFallbackByte(text string) (byte, bool) {
	if len(text) != 6 || text[:3] != "<0x" || text[5] != '>' {
		return 0, false
	}
	hex := text[3:5]
	var b byte
	for _, c := range hex {
		b <<= 4
		switch {
		case c >= '0' && c <= '9':
			b |= byte(c - '0')
		case c >= 'a' && c <= 'f':
			b |= byte(c-'a') + 10
		case c >= 'A' && c <= 'F':
			b |= byte(c-'A') + 10
		default:
			return 0, false
		}
	}
	return b, true
}

// HasByteFallback reports whether the table carries "<0xXX>" byte pieces.
func (t *Table) HasByteFallback() bool { return len(t.byteFallback) > 0 }

// ByteFallback returns the byte-fallback piece for b, if present.
func (t *Table) ByteFallback(b byte) (Piece, bool) {
	p, ok := t.byteFallback[b]
	if !ok {
		return Piece{}, false
	}
	return *p, true
}

// UnkScore returns the score assigned to synthetic unknown nodes.
func (t *Table) UnkScore() float64 { return t.unkScore }

// prefixMatch is one vocabulary entry found as a prefix of a query, along
// with how many runes of the query it covers.
type prefixMatch struct {
	piece  Piece
	length int // in runes
}

// PrefixMatches returns every piece that is a prefix of runes[from:], in
// increasing length order.
func (t *Table) PrefixMatches(runes []rune, from int) []prefixMatch {
	var out []prefixMatch
	node := t.root
	for i := from; i < len(runes); i++ {
		child, ok := node.children[runes[i]]
		if !ok {
			break
		}
		node = child
		if node.piece != nil {
			out = append(out, prefixMatch{piece: *node.piece, length: i - from + 1})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].length < out[j].length })
	return out
}
