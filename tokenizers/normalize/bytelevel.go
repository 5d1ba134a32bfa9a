package normalize

// ByteToRune and RuneToByte implement the GPT-2 byte<->printable-codepoint
// bijection used by byte-level BPE: every one of the 256 byte values maps
// to a printable, non-whitespace Unicode codepoint. Bytes that are already
// printable ASCII or the printable half of Latin-1 Supplement map to
// themselves; the remaining 68 bytes map to codepoints starting at
// U+0100, in byte order. Built once into package-level tables at init.
var (
	byteToRune [256]rune
	runeToByte = make(map[rune]byte, 256)
)

func init() {
	n := rune(0)
	for b := 0; b < 256; b++ {
		printable := (b >= '!' && b <= '~') || (b >= 0xA1 && b <= 0xAC) || (b >= 0xAE && b <= 0xFF)
		if printable {
			byteToRune[b] = rune(b)
		} else {
			byteToRune[b] = 256 + n
			n++
		}
		runeToByte[byteToRune[b]] = byte(b)
	}
}

// ByteToRune returns the printable codepoint standing in for byte b.
func ByteToRune(b byte) rune { return byteToRune[b] }

// RuneToByte returns the byte a printable codepoint stands in for, and
// whether r is a member of the bijection's range.
func RuneToByte(r rune) (byte, bool) {
	b, ok := runeToByte[r]
	return b, ok
}

// BytesToRunes maps every byte of raw to its printable-codepoint stand-in,
// in order: the first step of byte-level BPE.
func BytesToRunes(raw []byte) []rune {
	out := make([]rune, len(raw))
	for i, b := range raw {
		out[i] = byteToRune[b]
	}
	return out
}

// RunesToBytes inverts BytesToRunes for decoding; a rune outside the
// bijection's range is passed through re-encoded as UTF-8 (defensive: it
// should not occur for output produced by this tokenizer, but decoding must
// never panic on adversarial input).
func RunesToBytes(runes []rune) []byte {
	out := make([]byte, 0, len(runes))
	for _, r := range runes {
		if b, ok := runeToByte[r]; ok {
			out = append(out, b)
		} else {
			out = append(out, []byte(string(r))...)
		}
	}
	return out
}
