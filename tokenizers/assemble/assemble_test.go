package assemble

import (
	"testing"

	"github.com/fractalnlp/tokengo/tokenizers/fragment"
)

func piece(id int) Piece {
	return Piece{ID: id, Fragment: fragment.New("x", id, fragment.None)}
}

func TestAssemble_Classification_SingleSequence(t *testing.T) {
	cfg := Config{Layout: Classification, ClsID: 101, SepID: 102}
	enc := Assemble([]Piece{piece(1), piece(2)}, nil, cfg)

	if got, want := enc.IDs(), []int{101, 1, 2, 102}; !equalInts(got, want) {
		t.Fatalf("IDs() = %v, want %v", got, want)
	}
	if got, want := enc.SpecialTokensMask(), []int{1, 0, 0, 1}; !equalInts(got, want) {
		t.Fatalf("SpecialTokensMask() = %v, want %v", got, want)
	}
	if got, want := enc.SegmentIDs(), []int{0, 0, 0, 0}; !equalInts(got, want) {
		t.Fatalf("SegmentIDs() = %v, want %v", got, want)
	}
}

func TestAssemble_Classification_Pair(t *testing.T) {
	cfg := Config{Layout: Classification, ClsID: 101, SepID: 102}
	enc := Assemble([]Piece{piece(1)}, []Piece{piece(2)}, cfg)

	if got, want := enc.IDs(), []int{101, 1, 102, 2, 102}; !equalInts(got, want) {
		t.Fatalf("IDs() = %v, want %v", got, want)
	}
	// [CLS] A [SEP] are segment 0; B [SEP] are segment 1.
	if got, want := enc.SegmentIDs(), []int{0, 0, 0, 1, 1}; !equalInts(got, want) {
		t.Fatalf("SegmentIDs() = %v, want %v", got, want)
	}
}

func TestAssemble_Causal_NoAddedSpecials(t *testing.T) {
	cfg := Config{Layout: Causal}
	enc := Assemble([]Piece{piece(1), piece(2)}, nil, cfg)

	if got, want := enc.IDs(), []int{1, 2}; !equalInts(got, want) {
		t.Fatalf("IDs() = %v, want %v", got, want)
	}
	for _, m := range enc.SpecialTokensMask() {
		if m != 0 {
			t.Fatalf("SpecialTokensMask() = %v, want all zero", enc.SpecialTokensMask())
		}
	}
}

func TestAssemble_Translation_TrailingEOS(t *testing.T) {
	cfg := Config{Layout: Translation, EosID: 2}
	enc := Assemble([]Piece{piece(1)}, nil, cfg)
	if got, want := enc.IDs(), []int{1, 2}; !equalInts(got, want) {
		t.Fatalf("IDs() = %v, want %v", got, want)
	}
}

func TestAssemble_DualSeparator_DoublesSepBetweenSequences(t *testing.T) {
	cfg := Config{Layout: DualSeparator, BosID: 0, EosID: 2}
	enc := Assemble([]Piece{piece(10)}, []Piece{piece(20)}, cfg)

	// <s> A </s> </s> B </s>
	if got, want := enc.IDs(), []int{0, 10, 2, 2, 20, 2}; !equalInts(got, want) {
		t.Fatalf("IDs() = %v, want %v", got, want)
	}
	if got, want := enc.SegmentIDs(), []int{0, 0, 0, 1, 1, 1}; !equalInts(got, want) {
		t.Fatalf("SegmentIDs() = %v, want %v", got, want)
	}
}

func TestAssemble_TargetFirst_CodeBeforeEachSequence(t *testing.T) {
	cfg := Config{Layout: TargetFirst, TargetCodeID: 9, EosID: 2}
	enc := Assemble([]Piece{piece(10)}, []Piece{piece(20)}, cfg)

	// <code> A <code> B </s>
	if got, want := enc.IDs(), []int{9, 10, 9, 20, 2}; !equalInts(got, want) {
		t.Fatalf("IDs() = %v, want %v", got, want)
	}
}

func TestAssemble_OffsetsAndReferenceOffsetsPassThrough(t *testing.T) {
	cfg := Config{Layout: Classification, ClsID: 0, SepID: 1}
	f := fragment.New("hi", 5, fragment.None)
	enc := Assemble([]Piece{{ID: 2, Fragment: f}}, nil, cfg)

	offsets := enc.Offsets()
	if offsets[0].Valid() {
		t.Error("added special's offset should be invalid (zero value)")
	}
	if !offsets[1].Valid() || offsets[1] != f.TokenOffset {
		t.Errorf("content token offset = %+v, want %+v", offsets[1], f.TokenOffset)
	}
	refs := enc.ReferenceOffsets()
	if len(refs[0]) != 0 {
		t.Error("added special's reference offsets should be empty")
	}
	if len(refs[1]) != len(f.ReferenceOffsets) {
		t.Errorf("content token reference offsets = %v, want %v", refs[1], f.ReferenceOffsets)
	}
}

func equalInts(a, b []int) bool {
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
