// Package truncate implements truncation policies over a pair of
// already-segmented token streams, producing overflow tokens for
// downstream sliding-window use. Policy names and the "shorten whichever
// sequence is longer" rule match the usual truncate_sequences contract
// HuggingFace-compatible tokenizers expose.
package truncate

import (
	"github.com/fractalnlp/tokengo/tokenizers/assemble"
	"github.com/fractalnlp/tokengo/tokenizers/tokerr"
)

// Policy selects how to bring a pair of sequences under a length cap.
type Policy int

const (
	// LongestFirst repeatedly shortens whichever of the two sequences is
	// longer until both fit.
	LongestFirst Policy = iota
	// OnlyFirst shortens only the first sequence.
	OnlyFirst
	// OnlySecond shortens only the second sequence.
	OnlySecond
	// DoNotTruncate errors if the input is over cap.
	DoNotTruncate
)

// Result carries the truncated sequences plus whatever was cut off.
type Result struct {
	First       []assemble.Piece
	Second      []assemble.Piece
	Overflowing []assemble.Piece
}

// Truncate brings len(first)+len(second) down to at most maxLen-numSpecial
// (the budget left over once the assembler's added special tokens are
// accounted for), per policy. second may be nil for single-sequence input.
//
// stride controls how many already-kept tokens from a truncated sequence's
// tail are duplicated into Overflowing ahead of the removed tokens, so a
// caller re-encoding Overflowing as a follow-up window has the same
// left-context stride that sliding-window inference over long documents
// needs.
func Truncate(first, second []assemble.Piece, maxLen, numSpecial, stride int, policy Policy) (Result, error) {
	budget := maxLen - numSpecial
	if budget < 0 {
		budget = 0
	}
	total := len(first) + len(second)
	if total <= budget {
		return Result{First: first, Second: second}, nil
	}

	if policy == DoNotTruncate {
		return Result{}, tokerr.New(tokerr.Value,
			"input of %d tokens exceeds max_len %d (budget %d after %d special tokens) with DoNotTruncate",
			total, maxLen, budget, numSpecial)
	}

	switch policy {
	case OnlyFirst:
		return truncateOnly(first, second, budget, stride, true)
	case OnlySecond:
		return truncateOnly(first, second, budget, stride, false)
	default: // LongestFirst
		return truncateLongestFirst(first, second, budget, stride)
	}
}

func truncateOnly(first, second []assemble.Piece, budget, stride int, truncateFirst bool) (Result, error) {
	fixedLen := len(first)
	if truncateFirst {
		fixedLen = len(second)
	}
	if fixedLen >= budget {
		return Result{}, tokerr.New(tokerr.Value,
			"the untruncated sequence alone (%d tokens) already exceeds the budget (%d)", fixedLen, budget)
	}
	if truncateFirst {
		keepFirst := budget - len(second)
		overflow := withStride(first[:keepFirst], first[keepFirst:], stride)
		return Result{First: first[:keepFirst], Second: second, Overflowing: overflow}, nil
	}
	keepSecond := budget - len(first)
	overflow := withStride(second[:keepSecond], second[keepSecond:], stride)
	return Result{First: first, Second: second[:keepSecond], Overflowing: overflow}, nil
}

func truncateLongestFirst(first, second []assemble.Piece, budget, stride int) (Result, error) {
	aLen, bLen := len(first), len(second)
	for aLen+bLen > budget {
		switch {
		case aLen == 0 && bLen == 0:
			aLen, bLen = 0, 0 // unreachable: budget >= 0 already satisfied
		case bLen == 0 || aLen > bLen:
			aLen--
		default:
			bLen--
		}
	}
	overflow := append(
		withStride(first[:aLen], first[aLen:], stride),
		withStride(second[:bLen], second[bLen:], stride)...,
	)
	return Result{First: first[:aLen], Second: second[:bLen], Overflowing: overflow}, nil
}

// withStride prepends up to the last `stride` tokens of kept ahead of
// removed, so the caller can re-encode Overflowing with left context.
func withStride(kept, removed []assemble.Piece, stride int) []assemble.Piece {
	if len(removed) == 0 {
		return nil
	}
	if stride > len(kept) {
		stride = len(kept)
	}
	out := make([]assemble.Piece, 0, stride+len(removed))
	out = append(out, kept[len(kept)-stride:]...)
	out = append(out, removed...)
	return out
}
