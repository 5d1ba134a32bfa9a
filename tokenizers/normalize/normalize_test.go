package normalize

import (
	"testing"

	"github.com/fractalnlp/tokengo/tokenizers/fragment"
)

func TestIsWhitespace(t *testing.T) {
	for _, r := range []rune{' ', '\t', '\n', '\r', 0x00A0} {
		if !IsWhitespace(r) {
			t.Errorf("IsWhitespace(%q) = false, want true", r)
		}
	}
	if IsWhitespace('a') {
		t.Error("IsWhitespace('a') = true, want false")
	}
}

func TestIsControl(t *testing.T) {
	if !IsControl(0x0001) {
		t.Error("IsControl(U+0001) = false, want true")
	}
	if IsControl('\t') || IsControl('\n') || IsControl('\r') {
		t.Error("ASCII whitespace controls must not be classified as control (clean() maps them to space)")
	}
}

func TestIsPunctuation(t *testing.T) {
	for _, r := range []rune{'.', ',', '!', '?', ';', ':', '"', '\''} {
		if !IsPunctuation(r) {
			t.Errorf("IsPunctuation(%q) = false, want true", r)
		}
	}
	for _, r := range []rune{'a', '1', ' '} {
		if IsPunctuation(r) {
			t.Errorf("IsPunctuation(%q) = true, want false", r)
		}
	}
}

func TestIsCJK(t *testing.T) {
	if !IsCJK('世') {
		t.Error("IsCJK(世) = false, want true")
	}
	if IsCJK('a') {
		t.Error("IsCJK(a) = true, want false")
	}
}

func TestClean_NullAndControlBecomeSpace(t *testing.T) {
	f := fragment.New("hello\x00world", 0, fragment.None)
	got := Clean(f)
	if want := "hello world"; got.Text != want {
		t.Errorf("Clean(%q).Text = %q, want %q", f.Text, got.Text, want)
	}
	if !got.CheckInvariant() {
		t.Error("Clean must preserve the reference-offset invariant")
	}
}

func TestClean_WhitespaceMapsToASCIISpace(t *testing.T) {
	f := fragment.New("hello\tworld", 0, fragment.None)
	got := Clean(f)
	if want := "hello world"; got.Text != want {
		t.Errorf("Clean(%q).Text = %q, want %q", f.Text, got.Text, want)
	}
}

func TestLowercase(t *testing.T) {
	f := fragment.New("HELLO", 0, fragment.None)
	got := Lowercase(f)
	if got.Text != "hello" {
		t.Errorf("Lowercase(HELLO) = %q, want hello", got.Text)
	}
	if !got.CheckInvariant() {
		t.Error("Lowercase must preserve the reference-offset invariant")
	}
}

func TestStripAccents(t *testing.T) {
	f := fragment.New("café", 0, fragment.None)
	got := StripAccents(f)
	if got.Text != "cafe" {
		t.Errorf("StripAccents(café) = %q, want cafe", got.Text)
	}
}

func TestDecomposeNFD_KeepsCombiningMark(t *testing.T) {
	f := fragment.New("é", 0, fragment.None)
	got := DecomposeNFD(f)
	if got.RuneCount() != 2 {
		t.Errorf("DecomposeNFD(é).RuneCount() = %d, want 2 (e + combining acute)", got.RuneCount())
	}
	if !got.CheckInvariant() {
		t.Error("DecomposeNFD must preserve the reference-offset invariant")
	}
}

func TestDecomposeNFKC_Ligature(t *testing.T) {
	f := fragment.New("ﬁ", 0, fragment.None) // ﬁ ligature
	got := DecomposeNFKC(f)
	if got.Text != "fi" {
		t.Errorf("DecomposeNFKC(ﬁ) = %q, want fi", got.Text)
	}
	if !got.CheckInvariant() {
		t.Error("DecomposeNFKC must preserve the reference-offset invariant")
	}
}

func TestByteRuneBijection_RoundTrips(t *testing.T) {
	for b := 0; b < 256; b++ {
		r := ByteToRune(byte(b))
		back, ok := RuneToByte(r)
		if !ok || back != byte(b) {
			t.Fatalf("byte %d did not round-trip through ByteToRune/RuneToByte", b)
		}
	}
}

func TestBytesToRunes_RunesToBytes_RoundTrip(t *testing.T) {
	raw := []byte("hello, 世界! \x00\xff")
	runes := BytesToRunes(raw)
	back := RunesToBytes(runes)
	if string(back) != string(raw) {
		t.Errorf("round-trip through BytesToRunes/RunesToBytes changed data: got %v, want %v", back, raw)
	}
}
