package unigram

import (
	"unicode/utf8"

	"github.com/fractalnlp/tokengo/tokenizers/fragment"
)

// Metaspace is the SentencePiece word-boundary marker: U+2581 LOWER ONE
// EIGHTH BLOCK, "▁".
const Metaspace = '▁'

// node is one step of the decoded Viterbi path.
type node struct {
	piece     Piece
	start     int
	end       int
	isUnknown bool
}

type cell struct {
	score float64
	prev  int
	node  node
	valid bool
}

// Segment decodes text into a sequence of SentencePiece nodes via the
// Viterbi best-path algorithm: forward pass fills a score table, backward
// pass walks parent pointers to recover the path, and adjacent unknown
// nodes are fused into one fragment.
func Segment(f fragment.Fragment, table *Table) []fragment.Fragment {
	if f.Text == "" {
		return nil
	}
	meta := insertMetaspace(f)
	runes := meta.Runes()
	n := len(runes)
	if n == 0 {
		return nil
	}

	best := make([]cell, n+1)
	best[0] = cell{score: 0, prev: -1, valid: true}

	for j := 0; j < n; j++ {
		if !best[j].valid {
			continue
		}
		for _, m := range table.PrefixMatches(runes, j) {
			k := j + m.length
			cand := best[j].score + m.piece.Score
			if !best[k].valid || cand > best[k].score {
				best[k] = cell{
					score: cand,
					prev:  j,
					node:  node{piece: m.piece, start: j, end: k},
					valid: true,
				}
			}
		}
		// Single-codepoint unknown fallback transition, so the path is
		// always complete even when no piece covers position j.
		k := j + 1
		cand := best[j].score + table.UnkScore()
		if !best[k].valid || cand > best[k].score {
			best[k] = cell{
				score: cand,
				prev:  j,
				node:  node{start: j, end: k, isUnknown: true},
				valid: true,
			}
		}
	}

	// Backward pass: walk parent pointers from best[n], then reverse.
	var nodes []node
	for i := n; i > 0; i = best[i].prev {
		nodes = append(nodes, best[i].node)
	}
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}

	return nodesToFragments(meta, fuseUnknownRuns(nodes), table)
}

// fuseUnknownRuns merges adjacent unknown nodes into one.
func fuseUnknownRuns(nodes []node) []node {
	var out []node
	for _, nd := range nodes {
		if nd.isUnknown && len(out) > 0 && out[len(out)-1].isUnknown {
			out[len(out)-1].end = nd.end
			continue
		}
		out = append(out, nd)
	}
	return out
}

func nodesToFragments(meta fragment.Fragment, nodes []node, table *Table) []fragment.Fragment {
	var out []fragment.Fragment
	for i, nd := range nodes {
		piece := meta.Slice(nd.start, nd.end)
		if nd.isUnknown {
			out = append(out, byteFallbackOrUnknown(piece, table)...)
			continue
		}
		piece.Mask = fragment.Continuation
		if i == 0 {
			piece.Mask = fragment.Begin
		}
		out = append(out, piece)
	}
	return out
}

// byteFallbackOrUnknown implements the ByteFallback supplement: when the
// vocabulary carries "<0xXX>" byte pieces, decompose an unknown run into
// its UTF-8 bytes and emit the corresponding byte pieces instead of one
// opaque Unknown fragment. Each byte piece's reference offset duplicates
// the source codepoint it was encoded from, the same duplication rule
// used for NFKC one-to-many expansions.
func byteFallbackOrUnknown(piece fragment.Fragment, table *Table) []fragment.Fragment {
	if !table.HasByteFallback() {
		piece.Mask = fragment.Unknown
		return []fragment.Fragment{piece}
	}
	runes := piece.Runes()
	var out []fragment.Fragment
	for i, r := range runes {
		buf := make([]byte, utf8.RuneLen(r))
		utf8.EncodeRune(buf, r)
		ok := true
		var bytePieces []fragment.Fragment
		for _, b := range buf {
			fp, found := table.ByteFallback(b)
			if !found {
				ok = false
				break
			}
			refs := make([]int, utf8.RuneCountInString(fp.Text))
			for k := range refs {
				refs[k] = piece.ReferenceOffsets[i]
			}
			bytePieces = append(bytePieces, fragment.Fragment{
				Text:             fp.Text,
				ReferenceOffsets: refs,
				TokenOffset:      fragment.Offset{Begin: piece.ReferenceOffsets[i], End: piece.ReferenceOffsets[i] + 1},
				Mask:             fragment.Unknown,
			})
		}
		if !ok {
			single := piece.Slice(i, i+1)
			single.Mask = fragment.Unknown
			out = append(out, single)
			continue
		}
		out = append(out, bytePieces...)
	}
	return out
}

// insertMetaspace replaces every whitespace run with a single ▁, carrying
// the reference offset of the run's first codepoint.
func insertMetaspace(f fragment.Fragment) fragment.Fragment {
	runes := f.Runes()
	var outText []rune
	var outRefs []int
	inRun := false
	for i, r := range runes {
		if isSpace(r) {
			if !inRun {
				outText = append(outText, Metaspace)
				outRefs = append(outRefs, f.ReferenceOffsets[i])
				inRun = true
			}
			continue
		}
		inRun = false
		outText = append(outText, r)
		outRefs = append(outRefs, f.ReferenceOffsets[i])
	}
	if len(outText) == 0 || outText[0] != Metaspace {
		outText = append([]rune{Metaspace}, outText...)
		lead := 0
		if len(outRefs) > 0 {
			lead = outRefs[0]
		}
		outRefs = append([]int{lead}, outRefs...)
	}
	var off fragment.Offset
	if len(outRefs) > 0 {
		off = fragment.Offset{Begin: outRefs[0], End: outRefs[len(outRefs)-1] + 1}
	}
	return fragment.Fragment{
		Text:             string(outText),
		ReferenceOffsets: outRefs,
		TokenOffset:      off,
		Mask:             f.Mask,
	}
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}
