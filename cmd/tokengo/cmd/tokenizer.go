package cmd

import (
	"fmt"

	"github.com/fractalnlp/tokengo/internal/config"
	"github.com/fractalnlp/tokengo/tokenizers/api"
	"github.com/fractalnlp/tokengo/tokenizers/hftokenizer"
	"github.com/fractalnlp/tokengo/tokenizers/sentencepiece"
)

// loadTokenizer builds whichever glue-layer tokenizer cfg.Tokenizer names.
// Exactly one of TokenizerJSON / SentencePieceModel must be set.
func loadTokenizer(cfg *config.Config) (api.TokenizerWithOffsets, error) {
	switch {
	case cfg.Tokenizer.TokenizerJSON != "" && cfg.Tokenizer.SentencePieceModel != "":
		return nil, fmt.Errorf("both --tokenizer-json and --sp-model were given; pass exactly one")
	case cfg.Tokenizer.TokenizerJSON != "":
		return hftokenizer.NewFromFile(cfg.Tokenizer.TokenizerJSON)
	case cfg.Tokenizer.SentencePieceModel != "":
		return sentencepiece.NewFromFile(cfg.Tokenizer.SentencePieceModel, cfg.Tokenizer.SplitTrailingDigit)
	default:
		return nil, fmt.Errorf("no tokenizer configured; pass --tokenizer-json or --sp-model")
	}
}
