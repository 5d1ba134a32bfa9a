package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fractalnlp/tokengo/tokenizers/api"
)

var vocabInfoCmd = &cobra.Command{
	Use:   "vocab-info",
	Short: "Print vocabulary size and resolved special-token ids",
	RunE: func(cmd *cobra.Command, args []string) error {
		tok, err := loadTokenizer(cfg)
		if err != nil {
			return err
		}
		return printJSON(vocabInfo(tok))
	},
}

type vocabInfoOutput struct {
	VocabSize     int            `json:"vocab_size,omitempty"`
	SpecialTokens map[string]int `json:"special_tokens"`
}

// sized is satisfied by glue layers that expose their vocabulary size;
// sentencepiece.Tokenizer does not, so vocab-info omits vocab_size for it.
type sized interface {
	VocabSize() int
}

// roleNames gives api.SpecialToken values readable JSON keys instead of
// bare integers.
var roleNames = map[api.SpecialToken]string{
	api.TokBeginningOfSentence: "beginning_of_sentence",
	api.TokEndOfSentence:       "end_of_sentence",
	api.TokUnknown:             "unknown",
	api.TokPad:                 "pad",
	api.TokMask:                "mask",
	api.TokClassification:      "classification",
}

func vocabInfo(tok api.TokenizerWithOffsets) vocabInfoOutput {
	out := vocabInfoOutput{SpecialTokens: make(map[string]int)}
	if s, ok := tok.(sized); ok {
		out.VocabSize = s.VocabSize()
	}
	for role, name := range roleNames {
		if id, err := tok.SpecialTokenID(role); err == nil {
			out.SpecialTokens[name] = id
		}
	}
	return out
}
