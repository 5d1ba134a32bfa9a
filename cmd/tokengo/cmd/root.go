// Package cmd provides the tokengo CLI's subcommands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fractalnlp/tokengo/internal/config"
)

var (
	cfgFile            string
	tokenizerJSONFlag  string
	sentencePieceFlag  string
	splitTrailingDigit bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd is tokengo's base command.
var rootCmd = &cobra.Command{
	Use:   "tokengo",
	Short: "tokengo - encode, decode, and inspect Hugging Face / SentencePiece tokenizers",
	Long: `tokengo is a command-line tool that exercises the tokengo tokenization
engine end to end: load a tokenizer.json or a SentencePiece .model file,
encode text to ids, decode ids back to text, and inspect vocabulary
metadata.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if tokenizerJSONFlag != "" {
			cfg.Tokenizer.TokenizerJSON = tokenizerJSONFlag
		}
		if sentencePieceFlag != "" {
			cfg.Tokenizer.SentencePieceModel = sentencePieceFlag
		}
		if splitTrailingDigit {
			cfg.Tokenizer.SplitTrailingDigit = true
		}
		logger, err = newLogger(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to tokengo config file (default: ./tokengo.yaml)")
	rootCmd.PersistentFlags().StringVar(&tokenizerJSONFlag, "tokenizer-json", "", "path to a HuggingFace tokenizer.json file")
	rootCmd.PersistentFlags().StringVar(&sentencePieceFlag, "sp-model", "", "path to a SentencePiece .model file")
	rootCmd.PersistentFlags().BoolVar(&splitTrailingDigit, "split-trailing-digit", false, "enable the corrected Albert-style trailing digit-comma post-fix (SentencePiece Unigram only)")

	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(vocabInfoCmd)
}

func newLogger(level, format string) (*zap.Logger, error) {
	var lvl zapcore.Level
	switch level {
	case "debug":
		lvl = zapcore.DebugLevel
	case "warn":
		lvl = zapcore.WarnLevel
	case "error":
		lvl = zapcore.ErrorLevel
	default:
		lvl = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}
	return zapCfg.Build()
}
