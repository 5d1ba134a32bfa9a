// Package sentencepiece implements api.Tokenizer over a raw SentencePiece
// ".model" protobuf: the piece table is consumed directly by this module's
// own unigram segmenter. Every model is segmented as Unigram; the model
// type recorded in the file is not read, so a SentencePiece BPE model is
// not segmented with BPE merges.
//
// Tokenizer exposes a SpecialTokenID method mapping to ModelInfo-style
// role ids (unknown, pad, beginning/end of sentence) resolved once at
// construction time from the piece list's well-known surface strings.
package sentencepiece

import (
	"strings"

	"github.com/fractalnlp/tokengo/tokenizers/api"
	"github.com/fractalnlp/tokengo/tokenizers/fragment"
	"github.com/fractalnlp/tokengo/tokenizers/normalize"
	"github.com/fractalnlp/tokengo/tokenizers/pretokenize"
	"github.com/fractalnlp/tokengo/tokenizers/tokerr"
	"github.com/fractalnlp/tokengo/tokenizers/unigram"
	"github.com/fractalnlp/tokengo/tokenizers/vocab"
	"github.com/fractalnlp/tokengo/tokenizers/vocabfile"
)

// ModelInfo names the role ids a SentencePiece model designates: unknown,
// pad, beginning-of-sentence, and end-of-sentence.
type ModelInfo struct {
	UnknownID             int
	PadID                 int
	BeginningOfSentenceID int
	EndOfSentenceID       int
}

// Tokenizer implements api.Tokenizer / api.TokenizerWithOffsets over a
// SentencePiece Unigram model.
type Tokenizer struct {
	vo    *vocab.Vocab
	table *unigram.Table
	Info  *ModelInfo

	// splitTrailingDigit enables the corrected Albert-style post-fix
	// (unigram.SplitTrailingDigit); off by default.
	splitTrailingDigit bool
}

var _ api.Tokenizer = (*Tokenizer)(nil)
var _ api.TokenizerWithOffsets = (*Tokenizer)(nil)

// NewFromFile loads a SentencePiece ".model" protobuf from local disk and
// builds a Tokenizer from its piece list.
func NewFromFile(path string, splitTrailingDigit bool) (*Tokenizer, error) {
	entries, err := vocabfile.LoadSentencePieceModel(path)
	if err != nil {
		return nil, err
	}
	return newFromEntries(entries, splitTrailingDigit)
}

func newFromEntries(entries []vocabfile.SentencePieceEntry, splitTrailingDigit bool) (*Tokenizer, error) {
	if len(entries) == 0 {
		return nil, tokerr.New(tokerr.VocabularyParsing, "SentencePiece model has no pieces")
	}

	unk := "<unk>"
	for _, e := range entries {
		if e.Type == 2 { // UNKNOWN
			unk = e.Piece
			break
		}
	}

	b := vocab.NewBuilder(unk)
	pieces := make([]unigram.Piece, 0, len(entries))
	info := &ModelInfo{UnknownID: -1, PadID: -1, BeginningOfSentenceID: -1, EndOfSentenceID: -1}
	for i, e := range entries {
		b.Add(e.Piece, i)
		pieces = append(pieces, unigram.Piece{Text: e.Piece, Score: float64(e.Score), ID: i})
		switch e.Piece {
		case "<unk>":
			info.UnknownID = i
		case "<pad>":
			info.PadID = i
		case "<s>":
			info.BeginningOfSentenceID = i
		case "</s>":
			info.EndOfSentenceID = i
		}
	}
	v, err := b.Build()
	if err != nil {
		return nil, err
	}
	if info.UnknownID == -1 {
		info.UnknownID = v.UnknownID()
	}

	return &Tokenizer{
		vo:                 v,
		table:              unigram.NewTable(pieces, -10.0),
		Info:               info,
		splitTrailingDigit: splitTrailingDigit,
	}, nil
}

// Encode returns text encoded into a sequence of ids.
func (t *Tokenizer) Encode(text string) []int {
	pieces := t.segment(text)
	ids := make([]int, len(pieces))
	for i, p := range pieces {
		ids[i] = t.idFor(p)
	}
	return ids
}

// EncodeWithOffsets returns ids along with their codepoint offsets into text.
func (t *Tokenizer) EncodeWithOffsets(text string) api.EncodingResult {
	pieces := t.segment(text)
	ids := make([]int, len(pieces))
	offsets := make([]api.TokenOffset, len(pieces))
	for i, p := range pieces {
		ids[i] = t.idFor(p)
		offsets[i] = api.TokenOffset{Start: p.TokenOffset.Begin, End: p.TokenOffset.End}
	}
	return api.EncodingResult{IDs: ids, Offsets: offsets}
}

// segment runs special-token isolation, then feeds every non-special run
// straight to the Unigram Viterbi decoder: unlike WordPiece/BPE, Unigram's
// own metaspace step needs the original whitespace intact, so this
// deliberately bypasses pretokenize.PreTokenize's whitespace split.
func (t *Tokenizer) segment(text string) []fragment.Fragment {
	runs := pretokenize.SplitSpecials(text, t.vo)
	var out []fragment.Fragment
	for _, f := range runs {
		if f.Mask == fragment.Special {
			out = append(out, f)
			continue
		}
		f = normalize.DecomposeNFKC(f)
		pieces := unigram.Segment(f, t.table)
		if t.splitTrailingDigit {
			pieces = unigram.SplitTrailingDigit(pieces)
		}
		out = append(out, pieces...)
	}
	return out
}

func (t *Tokenizer) idFor(p fragment.Fragment) int {
	if id, ok := t.vo.Lookup(p.Text); ok {
		return id
	}
	return t.vo.UnknownID()
}

// Decode returns the text for a sequence of ids, replacing the metaspace
// marker with spaces and trimming the artificial leading one.
func (t *Tokenizer) Decode(ids []int) string {
	var b strings.Builder
	for _, id := range ids {
		b.WriteString(t.vo.IDToToken(id))
	}
	return strings.TrimPrefix(strings.ReplaceAll(b.String(), string(unigram.Metaspace), " "), " ")
}

// SpecialTokenID returns the id for the given special token role.
func (t *Tokenizer) SpecialTokenID(token api.SpecialToken) (int, error) {
	var id int
	switch token {
	case api.TokUnknown:
		id = t.Info.UnknownID
	case api.TokPad:
		id = t.Info.PadID
	case api.TokBeginningOfSentence:
		id = t.Info.BeginningOfSentenceID
	case api.TokEndOfSentence:
		id = t.Info.EndOfSentenceID
	default:
		return 0, tokerr.New(tokerr.Value, "unknown special token role: %v", token)
	}
	if id < 0 {
		return 0, tokerr.New(tokerr.Value, "special token %v not found", token)
	}
	return id, nil
}
