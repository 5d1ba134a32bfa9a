package unigram

import (
	"testing"

	"github.com/fractalnlp/tokengo/tokenizers/fragment"
)

func pieceTexts(t *testing.T, frags []fragment.Fragment) []string {
	t.Helper()
	out := make([]string, len(frags))
	for i, f := range frags {
		if !f.CheckInvariant() {
			t.Errorf("fragment %d (%q) violates the reference-offset invariant", i, f.Text)
		}
		out[i] = f.Text
	}
	return out
}

func equalStrings(a, b []string) bool {
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

func TestSegment_PrefersHigherScoringPath(t *testing.T) {
	// "ab" could be one piece (score -0.1) or "a"+"b" (score -1 + -1 = -2);
	// Viterbi should pick the single-piece path.
	table := NewTable([]Piece{
		{Text: string(Metaspace), Score: 0, ID: 0},
		{Text: "ab", Score: -0.1, ID: 1},
		{Text: "a", Score: -1, ID: 2},
		{Text: "b", Score: -1, ID: 3},
	}, -10)
	f := fragment.New("ab", 0, fragment.None)
	got := pieceTexts(t, Segment(f, table))
	want := []string{string(Metaspace), "ab"}
	if !equalStrings(got, want) {
		t.Errorf("Segment() = %v, want %v", got, want)
	}
}

func TestSegment_FallsBackToUnknownCodepoints(t *testing.T) {
	table := NewTable([]Piece{
		{Text: string(Metaspace), Score: 0, ID: 0},
		{Text: "a", Score: -1, ID: 1},
	}, -100)
	f := fragment.New("az", 0, fragment.None)
	pieces := Segment(f, table)
	var sawUnknown bool
	for _, p := range pieces {
		if p.Mask == fragment.Unknown {
			sawUnknown = true
			if p.Text != "z" {
				t.Errorf("unknown fragment text = %q, want %q", p.Text, "z")
			}
		}
	}
	if !sawUnknown {
		t.Errorf("expected an Unknown fragment for the uncovered codepoint, got %v", pieceTexts(t, pieces))
	}
}

func TestSegment_EmptyFragment(t *testing.T) {
	table := NewTable(nil, -10)
	f := fragment.New("", 0, fragment.None)
	if got := Segment(f, table); got != nil {
		t.Errorf("Segment(empty) = %v, want nil", got)
	}
}

func TestSegment_FirstPieceMarkedBegin(t *testing.T) {
	table := NewTable([]Piece{
		{Text: string(Metaspace), Score: 0, ID: 0},
		{Text: "hi", Score: -0.1, ID: 1},
	}, -10)
	f := fragment.New("hi", 0, fragment.None)
	pieces := Segment(f, table)
	if len(pieces) == 0 {
		t.Fatal("expected at least one piece")
	}
	if pieces[0].Mask != fragment.Begin {
		t.Errorf("pieces[0].Mask = %v, want Begin", pieces[0].Mask)
	}
}

func TestSegment_ByteFallbackDecomposesUnknownRune(t *testing.T) {
	table := NewTable([]Piece{
		{Text: string(Metaspace), Score: 0, ID: 0},
		{Text: "<0xC3>", Score: -5, ID: 1},
		{Text: "<0xA9>", Score: -5, ID: 2},
	}, -100)
	// "é" encodes to the two UTF-8 bytes 0xC3 0xA9, neither of which has a
	// literal vocabulary entry, so byte-fallback should kick in.
	f := fragment.New("é", 0, fragment.None)
	pieces := Segment(f, table)
	got := pieceTexts(t, pieces)
	want := []string{string(Metaspace), "<0xC3>", "<0xA9>"}
	if !equalStrings(got, want) {
		t.Errorf("Segment() = %v, want %v", got, want)
	}
}

func TestSegment_NoByteFallbackEmitsOpaqueUnknown(t *testing.T) {
	table := NewTable([]Piece{
		{Text: string(Metaspace), Score: 0, ID: 0},
	}, -100)
	f := fragment.New("é", 0, fragment.None)
	pieces := Segment(f, table)
	var found bool
	for _, p := range pieces {
		if p.Mask == fragment.Unknown && p.Text == "é" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected one opaque Unknown fragment %q, got %v", "é", pieceTexts(t, pieces))
	}
}

func TestTable_HasByteFallback(t *testing.T) {
	withFallback := NewTable([]Piece{{Text: "<0x41>", Score: -1, ID: 0}}, -10)
	if !withFallback.HasByteFallback() {
		t.Error("expected HasByteFallback() == true")
	}
	without := NewTable([]Piece{{Text: "a", Score: -1, ID: 0}}, -10)
	if without.HasByteFallback() {
		t.Error("expected HasByteFallback() == false")
	}
}

func TestTable_PrefixMatches_OrderedByIncreasingLength(t *testing.T) {
	table := NewTable([]Piece{
		{Text: "a", Score: -1, ID: 0},
		{Text: "ab", Score: -1, ID: 1},
		{Text: "abc", Score: -1, ID: 2},
	}, -10)
	matches := table.PrefixMatches([]rune("abcd"), 0)
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3", len(matches))
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].length < matches[i-1].length {
			t.Errorf("matches not sorted by increasing length: %v", matches)
		}
	}
}

func TestSplitTrailingDigit_SingleTrailingDigitAfterComma(t *testing.T) {
	f := fragment.New("3,0", 0, fragment.None)
	out := SplitTrailingDigit([]fragment.Fragment{f})
	if len(out) != 2 {
		t.Fatalf("got %d fragments, want 2", len(out))
	}
	if out[0].Text != "3," || out[1].Text != "0" {
		t.Errorf("got %q + %q, want %q + %q", out[0].Text, out[1].Text, "3,", "0")
	}
	if out[1].Mask != fragment.Continuation {
		t.Errorf("tail mask = %v, want Continuation", out[1].Mask)
	}
}

func TestSplitTrailingDigit_MultipleTrailingDigitsLeftIntact(t *testing.T) {
	f := fragment.New("3,000", 0, fragment.None)
	// Manufacture a case with 2+ trailing digits directly: "x,00".
	f2 := fragment.New("x,00", 0, fragment.None)
	out := SplitTrailingDigit([]fragment.Fragment{f2})
	if len(out) != 1 || out[0].Text != "x,00" {
		t.Errorf("expected piece with >1 trailing digit left untouched, got %v", pieceTexts(t, out))
	}
	_ = f
}

func TestSplitTrailingDigit_NoCommaLeftIntact(t *testing.T) {
	f := fragment.New("abc9", 0, fragment.None)
	out := SplitTrailingDigit([]fragment.Fragment{f})
	if len(out) != 1 || out[0].Text != "abc9" {
		t.Errorf("expected untouched piece, got %v", pieceTexts(t, out))
	}
}

func TestSplitTrailingDigit_ShortPieceLeftIntact(t *testing.T) {
	f := fragment.New("5", 0, fragment.None)
	out := SplitTrailingDigit([]fragment.Fragment{f})
	if len(out) != 1 || out[0].Text != "5" {
		t.Errorf("expected untouched single-rune piece, got %v", pieceTexts(t, out))
	}
}
