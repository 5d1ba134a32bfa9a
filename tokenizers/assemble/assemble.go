// Package assemble implements the sequence assembler: given one or two
// already-segmented, already-ID-resolved token streams, wrap them with the
// model family's special tokens and produce the Encoded output record
// (ids, segment ids, special-tokens mask, per-token offsets, per-token
// reference-offset lists, per-token mask tags).
//
// Each model family (BERT, Marian, XLM-R, M2M100) wraps its sequences with
// a different, fixed arrangement of special tokens; this package factors
// that into a single data-driven pipeline: a tagged Layout value plus a
// small Config record naming the special-token ids that layout needs.
package assemble

import "github.com/fractalnlp/tokengo/tokenizers/fragment"

// Piece is one already-ID-resolved subword token ready for assembly: the
// vocabulary id a segmenter (or segmenter + vocab lookup) produced, paired
// with the fragment it came from so offsets and reference-offsets survive
// into the final Encoding.
type Piece struct {
	ID       int
	Fragment fragment.Fragment
}

// Layout selects which model family's special-token wrapping to apply.
// The concrete special-token ids are supplied by Config, not hard-coded
// here, since different vocabularies assign different ids to the same
// role.
type Layout int

const (
	// Classification wraps BERT-style: "[CLS] A [SEP]" / "[CLS] A [SEP] B [SEP]".
	Classification Layout = iota
	// Causal is GPT-style: "A" / "A B" (no added specials).
	Causal
	// Translation is Marian-style: "A </s>" / "A B </s>".
	Translation
	// DualSeparator is XLM-R style: "<s> A </s>" / "<s> A </s> </s> B </s>".
	// The doubled "</s>" before the second sequence matches the
	// fairseq XLM-R convention of inserting sep once per boundary.
	DualSeparator
	// TargetFirst is M2M100 style: "<code> A </s>" / "<code> A <code> B </s>".
	TargetFirst
)

// Config names the special-token ids a Layout needs. Only the fields a
// given Layout actually reads are meaningful; callers populate the rest
// with the model's configured role-to-id mapping regardless.
type Config struct {
	Layout       Layout
	ClsID        int
	SepID        int
	BosID        int
	EosID        int
	TargetCodeID int
}

// Token is one slot of the final assembled sequence: either an added
// special token (IsSpecial true, no offset) or a content subword carried
// through from a Piece.
type Token struct {
	ID               int
	IsSpecial        bool
	SegmentID        int
	Offset           fragment.Offset
	ReferenceOffsets []int
	Mask             fragment.Mask
}

// Encoding is the fully assembled output record.
type Encoding struct {
	Tokens []Token
}

// IDs returns the token id sequence.
func (e *Encoding) IDs() []int {
	out := make([]int, len(e.Tokens))
	for i, t := range e.Tokens {
		out[i] = t.ID
	}
	return out
}

// SegmentIDs returns 0/1 per token: 0 for the first sequence and its
// trailing special tokens, 1 for the second and its trailing specials.
func (e *Encoding) SegmentIDs() []int {
	out := make([]int, len(e.Tokens))
	for i, t := range e.Tokens {
		out[i] = t.SegmentID
	}
	return out
}

// SpecialTokensMask returns 1 at every added special-token position, 0
// elsewhere.
func (e *Encoding) SpecialTokensMask() []int {
	out := make([]int, len(e.Tokens))
	for i, t := range e.Tokens {
		if t.IsSpecial {
			out[i] = 1
		}
	}
	return out
}

// Offsets returns the per-token codepoint offset; an added special token's
// offset is the zero value (Valid() reports false).
func (e *Encoding) Offsets() []fragment.Offset {
	out := make([]fragment.Offset, len(e.Tokens))
	for i, t := range e.Tokens {
		out[i] = t.Offset
	}
	return out
}

// ReferenceOffsets returns the per-token list of input-character indices;
// an added special token's list is empty.
func (e *Encoding) ReferenceOffsets() [][]int {
	out := make([][]int, len(e.Tokens))
	for i, t := range e.Tokens {
		out[i] = t.ReferenceOffsets
	}
	return out
}

// Assemble wraps a and (optionally, when non-nil) b with cfg.Layout's
// special tokens.
func Assemble(a, b []Piece, cfg Config) *Encoding {
	bld := &builder{}
	switch cfg.Layout {
	case Classification:
		bld.special(cfg.ClsID)
		bld.sequence(a, false)
		bld.special(cfg.SepID)
		if b != nil {
			bld.sequence(b, true)
			bld.special(cfg.SepID)
		}
	case Causal:
		bld.sequence(a, false)
		if b != nil {
			bld.sequence(b, true)
		}
	case Translation:
		bld.sequence(a, false)
		if b != nil {
			bld.sequence(b, true)
		}
		bld.special(cfg.EosID)
	case DualSeparator:
		bld.special(cfg.BosID)
		bld.sequence(a, false)
		bld.special(cfg.EosID)
		if b != nil {
			bld.special(cfg.EosID) // sep inserted once per boundary
			bld.sequence(b, true)
			bld.special(cfg.EosID)
		}
	case TargetFirst:
		bld.special(cfg.TargetCodeID)
		bld.sequence(a, false)
		if b != nil {
			bld.special(cfg.TargetCodeID)
			bld.sequence(b, true)
		}
		bld.special(cfg.EosID)
	}
	return &Encoding{Tokens: bld.tokens}
}

// builder accumulates Tokens left to right, tracking which sequence
// (first or second) is currently being emitted so segment ids and
// trailing-special grouping fall out automatically: every token added
// before the second sequence's first piece is segment 0, everything from
// then on is segment 1.
type builder struct {
	tokens     []Token
	seenSecond bool
}

func (b *builder) group() int {
	if b.seenSecond {
		return 1
	}
	return 0
}

func (b *builder) special(id int) {
	b.tokens = append(b.tokens, Token{
		ID:        id,
		IsSpecial: true,
		SegmentID: b.group(),
		Mask:      fragment.Special,
	})
}

func (b *builder) sequence(pieces []Piece, isSecond bool) {
	if isSecond {
		b.seenSecond = true
	}
	group := b.group()
	for _, p := range pieces {
		b.tokens = append(b.tokens, Token{
			ID:               p.ID,
			SegmentID:        group,
			Offset:           p.Fragment.TokenOffset,
			ReferenceOffsets: p.Fragment.ReferenceOffsets,
			Mask:             p.Fragment.Mask,
		})
	}
}
