package fragment

import "testing"

func TestNew_IdentityReferenceOffsets(t *testing.T) {
	f := New("hello", 5, None)
	want := []int{5, 6, 7, 8, 9}
	if len(f.ReferenceOffsets) != len(want) {
		t.Fatalf("len(ReferenceOffsets) = %d, want %d", len(f.ReferenceOffsets), len(want))
	}
	for i := range want {
		if f.ReferenceOffsets[i] != want[i] {
			t.Errorf("ReferenceOffsets[%d] = %d, want %d", i, f.ReferenceOffsets[i], want[i])
		}
	}
	if f.TokenOffset != (Offset{Begin: 5, End: 10}) {
		t.Errorf("TokenOffset = %+v, want {5 10}", f.TokenOffset)
	}
}

func TestNew_MultibyteRuneCount(t *testing.T) {
	f := New("世界", 0, None)
	if f.RuneCount() != 2 {
		t.Errorf("RuneCount() = %d, want 2", f.RuneCount())
	}
	if !f.CheckInvariant() {
		t.Error("CheckInvariant() = false, want true")
	}
}

func TestSlice(t *testing.T) {
	f := New("hello world", 100, None)
	sub := f.Slice(6, 11)
	if sub.Text != "world" {
		t.Errorf("Slice(6,11).Text = %q, want world", sub.Text)
	}
	if sub.TokenOffset != (Offset{Begin: 106, End: 111}) {
		t.Errorf("Slice(6,11).TokenOffset = %+v, want {106 111}", sub.TokenOffset)
	}
	if !sub.CheckInvariant() {
		t.Error("Slice result must satisfy the reference-offset invariant")
	}
}

func TestOffset_Valid(t *testing.T) {
	if !(Offset{Begin: 0, End: 1}).Valid() {
		t.Error("Offset{0,1}.Valid() = false, want true")
	}
	if (Offset{Begin: 1, End: 1}).Valid() {
		t.Error("Offset{1,1}.Valid() = true, want false (empty range)")
	}
}

func TestMask_String(t *testing.T) {
	cases := map[Mask]string{
		None: "None", Whitespace: "Whitespace", Punctuation: "Punctuation",
		CJK: "CJK", Special: "Special", Unknown: "Unknown",
		Continuation: "Continuation", Begin: "Begin",
	}
	for m, want := range cases {
		if got := m.String(); got != want {
			t.Errorf("Mask(%d).String() = %q, want %q", m, got, want)
		}
	}
}
