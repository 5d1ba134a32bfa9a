// Package hftokenizer implements a tokenizer for HuggingFace's tokenizer.json
// format: a single JSON file naming a normalizer, a pre-tokenizer, a model
// (WordPiece, BPE, or Unigram), a post-processor, and a decoder. Every stage
// of actual segmentation delegates to this module's
// normalize/pretokenize/wordpiece/bpe/unigram/assemble/truncate packages,
// which track fragment offsets end to end rather than working over bare
// strings.
//
// Construction is local-file/content only; there is no model-hub download
// path here.
package hftokenizer

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/fractalnlp/tokengo/tokenizers/api"
	"github.com/fractalnlp/tokengo/tokenizers/assemble"
	"github.com/fractalnlp/tokengo/tokenizers/bpe"
	"github.com/fractalnlp/tokengo/tokenizers/fragment"
	"github.com/fractalnlp/tokengo/tokenizers/normalize"
	"github.com/fractalnlp/tokengo/tokenizers/pretokenize"
	"github.com/fractalnlp/tokengo/tokenizers/tokerr"
	"github.com/fractalnlp/tokengo/tokenizers/truncate"
	"github.com/fractalnlp/tokengo/tokenizers/unigram"
	"github.com/fractalnlp/tokengo/tokenizers/vocab"
	"github.com/fractalnlp/tokengo/tokenizers/wordpiece"
)

// TokenizerJSON represents the structure of HuggingFace's tokenizer.json file.
type TokenizerJSON struct {
	Version       string          `json:"version"`
	Truncation    json.RawMessage `json:"truncation"`
	Padding       json.RawMessage `json:"padding"`
	AddedTokens   []AddedToken    `json:"added_tokens"`
	Normalizer    *Normalizer     `json:"normalizer"`
	PreTokenizer  *PreTokenizer   `json:"pre_tokenizer"`
	PostProcessor *PostProcessor  `json:"post_processor"`
	Decoder       *Decoder        `json:"decoder"`
	Model         Model           `json:"model"`
}

// AddedToken represents a special token added to the vocabulary.
type AddedToken struct {
	ID         int    `json:"id"`
	Content    string `json:"content"`
	SingleWord bool   `json:"single_word"`
	Lstrip     bool   `json:"lstrip"`
	Rstrip     bool   `json:"rstrip"`
	Normalized bool   `json:"normalized"`
	Special    bool   `json:"special"`
}

// Normalizer represents the normalizer configuration.
type Normalizer struct {
	Type        string       `json:"type"`
	Lowercase   bool         `json:"lowercase"`
	Normalizer  *Normalizer  `json:"normalizer"`
	Pattern     *Pattern     `json:"pattern"`
	Normalizers []Normalizer `json:"normalizers"`
}

// Pattern for regex-based operations.
type Pattern struct {
	Regex  string `json:"Regex,omitempty"`
	String string `json:"String,omitempty"`
}

// PreTokenizer represents the pre-tokenizer configuration.
type PreTokenizer struct {
	Type           string         `json:"type"`
	AddPrefixSpace bool           `json:"add_prefix_space"`
	PreTokenizers  []PreTokenizer `json:"pretokenizers"`
	Pattern        *Pattern       `json:"pattern"`
	Behavior       string         `json:"behavior"`
	Invert         bool           `json:"invert"`
}

// PostProcessor represents the post-processor configuration: which family
// of special-token wrapping this tokenizer.json wants.
type PostProcessor struct {
	Type          string                          `json:"type"`
	Single        []PostProcItem                  `json:"single"`
	Pair          []PostProcItem                  `json:"pair"`
	SpecialTokens map[string]PostProcSpecialToken `json:"special_tokens"`
}

// PostProcItem is an item in post-processing.
type PostProcItem struct {
	ID           string `json:"id,omitempty"`
	TypeID       int    `json:"type_id"`
	SpecialToken *struct {
		ID     string `json:"id"`
		TypeID int    `json:"type_id"`
	} `json:"SpecialToken,omitempty"`
	Sequence *struct {
		ID     string `json:"id"`
		TypeID int    `json:"type_id"`
	} `json:"Sequence,omitempty"`
}

// PostProcSpecialToken defines a special token for post-processing.
type PostProcSpecialToken struct {
	ID     string   `json:"id"`
	IDs    []int    `json:"ids"`
	Tokens []string `json:"tokens"`
}

// Decoder represents the decoder configuration.
type Decoder struct {
	Type     string    `json:"type"`
	Prefix   string    `json:"prefix"`
	Suffix   string    `json:"suffix"`
	Decoders []Decoder `json:"decoders"`
	Pattern  *Pattern  `json:"pattern"`
	Content  string    `json:"content"`
}

// Model represents the tokenizer model (WordPiece, BPE, or Unigram). Vocab
// is kept raw because WordPiece/BPE encode it as a JSON object (token ->
// id) while Unigram encodes it as an array of [token, score] pairs; see
// decodeVocab.
type Model struct {
	Type                    string          `json:"type"`
	VocabRaw                json.RawMessage `json:"vocab"`
	Merges                  []string        `json:"merges"`
	UnkToken                string          `json:"unk_token"`
	ContinuingSubwordPrefix string          `json:"continuing_subword_prefix"`
	MaxInputCharsPerWord    int             `json:"max_input_chars_per_word"`
	FuseUnk                 bool            `json:"fuse_unk"`
	ByteFallback            bool            `json:"byte_fallback"`
	Dropout                 *float64        `json:"dropout"`
	EndOfWordSuffix         string          `json:"end_of_word_suffix"`
	UnkID                   *int            `json:"unk_id"`
}

// Tokenizer implements api.Tokenizer / api.TokenizerWithOffsets over a
// parsed tokenizer.json, delegating segmentation to this module's
// normalize/pretokenize/wordpiece/bpe/unigram packages and assembly to
// the assemble/truncate packages.
type Tokenizer struct {
	raw *TokenizerJSON
	vo  *vocab.Vocab

	preCfg pretokenize.Config

	segmenter   segmenterKind
	wp          wordpiece.Config
	bp          *bpe.Segmenter
	bpByteLevel bool
	uniTable    *unigram.Table

	assembleCfg assemble.Config
	maxLen      int
	truncation  truncate.Policy
	stride      int

	unkID, padID, bosID, eosID, clsID, sepID, maskID int
}

type segmenterKind int

const (
	segWordPiece segmenterKind = iota
	segBPE
	segUnigram
)

var _ api.Tokenizer = (*Tokenizer)(nil)
var _ api.TokenizerWithOffsets = (*Tokenizer)(nil)

// NewFromFile parses a tokenizer.json file on local disk.
func NewFromFile(path string) (*Tokenizer, error) {
	content, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return NewFromContent(content)
}

// NewFromContent parses in-memory tokenizer.json content.
func NewFromContent(content []byte) (*Tokenizer, error) {
	var tj TokenizerJSON
	if err := json.Unmarshal(content, &tj); err != nil {
		return nil, tokerr.Wrap(err, tokerr.VocabularyParsing, "parsing tokenizer.json")
	}

	t := &Tokenizer{raw: &tj, maxLen: 512, truncation: truncate.LongestFirst}
	if err := t.buildVocab(); err != nil {
		return nil, err
	}
	t.resolveSpecialTokens()
	t.buildPreTokenizeConfig()
	if err := t.buildSegmenter(); err != nil {
		return nil, err
	}
	t.buildAssembleConfig()
	return t, nil
}

func (t *Tokenizer) buildVocab() error {
	entries, scores, err := decodeVocab(t.raw.Model)
	if err != nil {
		return err
	}

	unk := t.raw.Model.UnkToken
	if unk == "" {
		unk = "<unk>"
	}
	b := vocab.NewBuilder(unk)
	for tok, id := range entries {
		b.Add(tok, id)
	}
	for _, at := range t.raw.AddedTokens {
		b.AddSpecial(at.Content, at.ID)
	}
	v, err := b.Build()
	if err != nil {
		return err
	}
	t.vo = v

	if t.raw.Model.Type == "Unigram" {
		pieces := make([]unigram.Piece, 0, len(scores))
		for tok, score := range scores {
			id, _ := v.Lookup(tok)
			pieces = append(pieces, unigram.Piece{Text: tok, Score: score, ID: id})
		}
		t.uniTable = unigram.NewTable(pieces, -10.0)
	}
	return nil
}

// decodeVocab parses Model.VocabRaw according to the model type: a JSON
// object (token -> id) for WordPiece/BPE, or an array of [token, score]
// pairs for Unigram (score also recorded, keyed by token, for piece-table
// construction).
func decodeVocab(m Model) (map[string]int, map[string]float64, error) {
	if len(m.VocabRaw) == 0 {
		return map[string]int{}, nil, nil
	}
	if m.Type == "Unigram" {
		var pairs [][2]interface{}
		if err := json.Unmarshal(m.VocabRaw, &pairs); err != nil {
			return nil, nil, tokerr.Wrap(err, tokerr.VocabularyParsing, "parsing Unigram vocab array")
		}
		entries := make(map[string]int, len(pairs))
		scores := make(map[string]float64, len(pairs))
		for i, p := range pairs {
			tok, _ := p[0].(string)
			score, _ := p[1].(float64)
			entries[tok] = i
			scores[tok] = score
		}
		return entries, scores, nil
	}
	var entries map[string]int
	if err := json.Unmarshal(m.VocabRaw, &entries); err != nil {
		return nil, nil, tokerr.Wrap(err, tokerr.VocabularyParsing, "parsing vocab object")
	}
	return entries, nil, nil
}

// resolveSpecialTokens maps well-known special-token surface strings to
// ids, matching either BERT-style bracket names or SentencePiece angle
// names.
func (t *Tokenizer) resolveSpecialTokens() {
	t.unkID, t.padID, t.bosID, t.eosID, t.clsID, t.sepID, t.maskID = -1, -1, -1, -1, -1, -1, -1

	if t.raw.Model.UnkToken != "" {
		if id, ok := t.vo.Lookup(t.raw.Model.UnkToken); ok {
			t.unkID = id
		}
	}
	for _, at := range t.raw.AddedTokens {
		if !at.Special {
			continue
		}
		switch at.Content {
		case "[UNK]", "<unk>":
			t.unkID = at.ID
		case "[PAD]", "<pad>":
			t.padID = at.ID
		case "[CLS]", "<s>":
			t.clsID = at.ID
		case "[SEP]", "</s>":
			t.sepID = at.ID
		case "[MASK]", "<mask>":
			t.maskID = at.ID
		}
		if strings.HasPrefix(at.Content, "<s") && t.bosID == -1 && (at.Content == "<s>" || at.Content == "<bos>") {
			t.bosID = at.ID
		}
		if (at.Content == "</s>" || at.Content == "<eos>") && t.eosID == -1 {
			t.eosID = at.ID
		}
	}
	if t.unkID == -1 {
		t.unkID = t.vo.UnknownID()
	}
}

func (t *Tokenizer) buildPreTokenizeConfig() {
	var cfg pretokenize.Config
	if n := t.raw.Normalizer; n != nil {
		walkNormalizer(n, &cfg)
	}
	if pt := t.raw.PreTokenizer; pt != nil {
		walkPreTokenizer(pt, &cfg)
	}
	t.preCfg = cfg
}

func walkNormalizer(n *Normalizer, cfg *pretokenize.Config) {
	switch n.Type {
	case "BertNormalizer":
		cfg.Clean = true
		cfg.LowerCase = n.Lowercase
		cfg.StripAccents = n.Lowercase
		cfg.IsolateCJK = true
		cfg.SplitOnPunct = true
	case "Lowercase":
		cfg.LowerCase = true
	case "StripAccents":
		cfg.StripAccents = true
	case "NFKC", "NFKD":
		cfg.NFKC = true
	case "NFD":
		cfg.NFD = true
	case "Sequence":
		for i := range n.Normalizers {
			walkNormalizer(&n.Normalizers[i], cfg)
		}
	}
}

func walkPreTokenizer(pt *PreTokenizer, cfg *pretokenize.Config) {
	switch pt.Type {
	case "BertPreTokenizer":
		cfg.SplitOnPunct = true
	case "Punctuation":
		cfg.SplitOnPunct = true
	case "Sequence":
		for i := range pt.PreTokenizers {
			walkPreTokenizer(&pt.PreTokenizers[i], cfg)
		}
	}
}

func (t *Tokenizer) buildSegmenter() error {
	switch t.raw.Model.Type {
	case "WordPiece":
		t.segmenter = segWordPiece
		prefix := t.raw.Model.ContinuingSubwordPrefix
		if prefix == "" {
			prefix = "##"
		}
		maxChars := t.raw.Model.MaxInputCharsPerWord
		if maxChars == 0 {
			maxChars = 100
		}
		t.wp = wordpiece.Config{ContinuationPrefix: prefix, MaxWordLen: maxChars}
	case "BPE":
		t.segmenter = segBPE
		var pairs [][2]string
		for _, m := range t.raw.Model.Merges {
			parts := strings.SplitN(m, " ", 2)
			if len(parts) == 2 {
				pairs = append(pairs, [2]string{parts[0], parts[1]})
			}
		}
		t.bpByteLevel = t.raw.PreTokenizer != nil && usesByteLevel(t.raw.PreTokenizer)
		t.bp = bpe.New(bpe.NewMerges(pairs), bpe.Config{
			ByteLevel:       t.bpByteLevel,
			EndOfWordSuffix: t.raw.Model.EndOfWordSuffix,
		}, bpe.NewCache())
	case "Unigram":
		t.segmenter = segUnigram
	default:
		return tokerr.New(tokerr.VocabularyParsing, "unsupported model type %q", t.raw.Model.Type)
	}
	return nil
}

func usesByteLevel(pt *PreTokenizer) bool {
	if pt.Type == "ByteLevel" {
		return true
	}
	for i := range pt.PreTokenizers {
		if usesByteLevel(&pt.PreTokenizers[i]) {
			return true
		}
	}
	return false
}

// buildAssembleConfig infers a sequence-assembler layout from the
// post-processor's type and the special-token ids resolved from
// added_tokens; the post_processor.special_tokens map is not consulted.
func (t *Tokenizer) buildAssembleConfig() {
	cfg := assemble.Config{Layout: assemble.Causal}
	pp := t.raw.PostProcessor
	if pp == nil {
		t.assembleCfg = cfg
		return
	}
	switch pp.Type {
	case "BertProcessing", "TemplateProcessing":
		if t.clsID >= 0 && t.sepID >= 0 {
			cfg.Layout = assemble.Classification
			cfg.ClsID, cfg.SepID = t.clsID, t.sepID
		} else if t.eosID >= 0 {
			cfg.Layout = assemble.Translation
			cfg.EosID = t.eosID
		}
	case "RobertaProcessing":
		cfg.Layout = assemble.DualSeparator
		cfg.BosID, cfg.EosID = t.bosID, t.eosID
	}
	t.assembleCfg = cfg
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, tokerr.Wrap(err, tokerr.FileNotFound, "opening %q", path)
	}
	return data, nil
}

// Encode converts text to a sequence of token IDs.
func (t *Tokenizer) Encode(text string) []int {
	enc := t.encodeOne(text)
	return enc.IDs()
}

// EncodeWithOffsets returns tokens with their character offsets.
func (t *Tokenizer) EncodeWithOffsets(text string) api.EncodingResult {
	enc := t.encodeOne(text)
	ids := enc.IDs()
	offsets := make([]api.TokenOffset, len(ids))
	for i, off := range enc.Offsets() {
		offsets[i] = api.TokenOffset{Start: off.Begin, End: off.End}
	}
	return api.EncodingResult{IDs: ids, Offsets: offsets}
}

// EncodePair encodes a two-sequence input under the configured assembler
// layout, truncating per policy before wrapping.
func (t *Tokenizer) EncodePair(textA, textB string) (*assemble.Encoding, []assemble.Piece, error) {
	a := t.segmentToPieces(textA)
	var b []assemble.Piece
	hasB := textB != ""
	if hasB {
		b = t.segmentToPieces(textB)
	}

	numSpecial := specialCountFor(t.assembleCfg.Layout, hasB)
	res, err := truncate.Truncate(a, b, t.maxLen, numSpecial, t.stride, t.truncation)
	if err != nil {
		return nil, nil, err
	}

	second := res.Second
	if !hasB {
		second = nil
	}
	return assemble.Assemble(res.First, second, t.assembleCfg), res.Overflowing, nil
}

func specialCountFor(layout assemble.Layout, hasSecond bool) int {
	switch layout {
	case assemble.Classification:
		if hasSecond {
			return 3
		}
		return 2
	case assemble.Translation:
		return 1
	case assemble.DualSeparator:
		if hasSecond {
			return 4
		}
		return 2
	case assemble.TargetFirst:
		if hasSecond {
			return 3
		}
		return 2
	default:
		return 0
	}
}

func (t *Tokenizer) encodeOne(text string) *assemble.Encoding {
	enc, _, err := t.EncodePair(text, "")
	if err != nil {
		// maxLen was violated under DoNotTruncate; Encode has no error
		// return, so fall back to the untruncated assembly rather than
		// silently dropping content.
		return assemble.Assemble(t.segmentToPieces(text), nil, t.assembleCfg)
	}
	return enc
}

// segmentToPieces runs the pre-tokenizer and the configured segmenter over
// text, then resolves each resulting fragment to a vocabulary id.
func (t *Tokenizer) segmentToPieces(text string) []assemble.Piece {
	fragments := pretokenize.PreTokenize(text, t.vo, t.preCfg)
	var out []assemble.Piece
	for _, f := range fragments {
		if f.Mask == fragment.Special {
			id, _ := t.vo.Lookup(f.Text)
			out = append(out, assemble.Piece{ID: id, Fragment: f})
			continue
		}
		var pieces []fragment.Fragment
		switch t.segmenter {
		case segWordPiece:
			pieces = wordpiece.Segment(f, t.vo, t.wp)
		case segBPE:
			pieces = t.bp.Segment(f, t.vo)
		case segUnigram:
			pieces = unigram.Segment(f, t.uniTable)
		}
		for _, p := range pieces {
			out = append(out, assemble.Piece{ID: t.resolveID(p), Fragment: p})
		}
	}
	return out
}

func (t *Tokenizer) resolveID(p fragment.Fragment) int {
	text := p.Text
	if t.segmenter == segWordPiece && p.Mask == fragment.Continuation {
		text = t.wp.ContinuationPrefix + text
	}
	if id, ok := t.vo.Lookup(text); ok {
		return id
	}
	return t.vo.UnknownID()
}

// SpecialTokenID returns the ID for a given special token role.
func (t *Tokenizer) SpecialTokenID(token api.SpecialToken) (int, error) {
	switch token {
	case api.TokUnknown:
		if t.unkID >= 0 {
			return t.unkID, nil
		}
	case api.TokPad:
		if t.padID >= 0 {
			return t.padID, nil
		}
	case api.TokBeginningOfSentence:
		if t.bosID >= 0 {
			return t.bosID, nil
		}
		if t.clsID >= 0 {
			return t.clsID, nil
		}
	case api.TokEndOfSentence:
		if t.eosID >= 0 {
			return t.eosID, nil
		}
		if t.sepID >= 0 {
			return t.sepID, nil
		}
	case api.TokMask:
		if t.maskID >= 0 {
			return t.maskID, nil
		}
	case api.TokClassification:
		if t.clsID >= 0 {
			return t.clsID, nil
		}
	}
	return 0, errors.Errorf("special token %s not found", token)
}

// VocabSize returns the size of the vocabulary.
func (t *Tokenizer) VocabSize() int { return t.vo.Size() }

// Decode converts a sequence of token IDs back to text.
func (t *Tokenizer) Decode(ids []int) string {
	return t.DecodeOpts(ids, false, true)
}

// DecodeOpts implements decode(ids, skip_special_tokens,
// clean_up_tokenization_spaces).
func (t *Tokenizer) DecodeOpts(ids []int, skipSpecial, cleanUp bool) string {
	var tokens []string
	for _, id := range ids {
		if skipSpecial && t.vo.IsSpecial(t.vo.IDToToken(id)) {
			continue
		}
		tokens = append(tokens, t.vo.IDToToken(id))
	}

	var result string
	switch t.segmenter {
	case segWordPiece:
		result = decodeWordPiece(tokens, t.wp.ContinuationPrefix)
	case segBPE:
		result = decodeBPE(tokens, t.raw.Model.EndOfWordSuffix, t.bpByteLevel)
	case segUnigram:
		result = decodeMetaspace(tokens)
	}
	if cleanUp {
		result = cleanUpTokenization(result)
	}
	return result
}

func decodeWordPiece(tokens []string, prefix string) string {
	if prefix == "" {
		prefix = "##"
	}
	var b strings.Builder
	for i, tok := range tokens {
		if strings.HasPrefix(tok, prefix) {
			b.WriteString(strings.TrimPrefix(tok, prefix))
			continue
		}
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(tok)
	}
	return b.String()
}

func decodeBPE(tokens []string, suffix string, byteLevel bool) string {
	if byteLevel {
		joined := strings.Join(tokens, "")
		return string(normalize.RunesToBytes([]rune(joined)))
	}
	var b strings.Builder
	for i, tok := range tokens {
		if suffix != "" && strings.HasSuffix(tok, suffix) {
			b.WriteString(strings.TrimSuffix(tok, suffix))
			if i < len(tokens)-1 {
				b.WriteString(" ")
			}
			continue
		}
		b.WriteString(tok)
	}
	return b.String()
}

func decodeMetaspace(tokens []string) string {
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteString(strings.ReplaceAll(tok, string(unigram.Metaspace), " "))
	}
	return strings.TrimPrefix(b.String(), " ")
}

func cleanUpTokenization(s string) string {
	replacer := strings.NewReplacer(
		" .", ".", " ?", "?", " !", "!", " ,", ",",
		" ' ", "'", " n't", "n't", " 'm", "'m", " 's", "'s", " 've", "'ve", " 're", "'re",
	)
	return replacer.Replace(s)
}
