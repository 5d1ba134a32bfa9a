package wordpiece

import (
	"testing"

	"github.com/fractalnlp/tokengo/tokenizers/fragment"
	"github.com/fractalnlp/tokengo/tokenizers/vocab"
)

func buildVocab(t *testing.T, entries map[string]int, unk string) *vocab.Vocab {
	t.Helper()
	b := vocab.NewBuilder(unk)
	for tok, id := range entries {
		b.Add(tok, id)
	}
	v, err := b.Build()
	if err != nil {
		t.Fatalf("vocab.Build: %v", err)
	}
	return v
}

func pieceTexts(pieces []fragment.Fragment) []string {
	out := make([]string, len(pieces))
	for i, p := range pieces {
		out[i] = p.Text
	}
	return out
}

func TestSegment_WholeWordMatch(t *testing.T) {
	v := buildVocab(t, map[string]int{"hello": 1, "[UNK]": 0}, "[UNK]")
	pieces := Segment(fragment.New("hello", 0, fragment.None), v, DefaultConfig())
	if got := pieceTexts(pieces); len(got) != 1 || got[0] != "hello" {
		t.Fatalf("got %v, want [hello]", got)
	}
	if pieces[0].Mask != fragment.Begin {
		t.Errorf("mask = %v, want Begin", pieces[0].Mask)
	}
}

func TestSegment_LongestMatchFirst(t *testing.T) {
	v := buildVocab(t, map[string]int{
		"test": 1, "##ing": 2, "##in": 3, "##g": 4, "[UNK]": 0,
	}, "[UNK]")
	pieces := Segment(fragment.New("testing", 0, fragment.None), v, DefaultConfig())
	got := pieceTexts(pieces)
	// Piece text carries no "##": the prefix is implied by the
	// Continuation mask and added back at id lookup.
	want := []string{"test", "ing"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v (longest ##-match should win over ##in + ##g)", got, want)
	}
	if pieces[1].Mask != fragment.Continuation {
		t.Errorf("second piece mask = %v, want Continuation", pieces[1].Mask)
	}
}

func TestSegment_NoMatchIsUnknown(t *testing.T) {
	v := buildVocab(t, map[string]int{"[UNK]": 0, "hello": 1}, "[UNK]")
	pieces := Segment(fragment.New("xyzzy", 0, fragment.None), v, DefaultConfig())
	if len(pieces) != 1 || pieces[0].Mask != fragment.Unknown {
		t.Fatalf("got %+v, want single Unknown fragment", pieces)
	}
	if pieces[0].Text != "xyzzy" {
		t.Errorf("unknown fragment text = %q, want original text preserved", pieces[0].Text)
	}
}

func TestSegment_ExceedsMaxWordLen(t *testing.T) {
	v := buildVocab(t, map[string]int{"[UNK]": 0, "ab": 1}, "[UNK]")
	pieces := Segment(fragment.New("ab", 0, fragment.None), v, Config{ContinuationPrefix: "##", MaxWordLen: 1})
	if len(pieces) != 1 || pieces[0].Mask != fragment.Unknown {
		t.Fatalf("got %+v, want Unknown because word exceeds MaxWordLen", pieces)
	}
}

func TestSegment_EmptyFragment(t *testing.T) {
	v := buildVocab(t, map[string]int{"[UNK]": 0}, "[UNK]")
	if pieces := Segment(fragment.New("", 0, fragment.None), v, DefaultConfig()); pieces != nil {
		t.Errorf("got %v, want nil for empty fragment", pieces)
	}
}

func TestSegment_OffsetsCoverSourceRange(t *testing.T) {
	v := buildVocab(t, map[string]int{"test": 1, "##ing": 2, "[UNK]": 0}, "[UNK]")
	f := fragment.New("testing", 5, fragment.None) // as if this word started at codepoint 5
	pieces := Segment(f, v, DefaultConfig())
	if pieces[0].TokenOffset.Begin != 5 || pieces[0].TokenOffset.End != 9 {
		t.Errorf("first piece offset = %+v, want [5,9)", pieces[0].TokenOffset)
	}
	if pieces[1].TokenOffset.Begin != 9 || pieces[1].TokenOffset.End != 12 {
		t.Errorf("second piece offset = %+v, want [9,12)", pieces[1].TokenOffset)
	}
}
