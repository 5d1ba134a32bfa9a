package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fractalnlp/tokengo/tokenizers/api"
	"github.com/fractalnlp/tokengo/tokenizers/batch"
)

var (
	encodeWithOffsets bool
	encodeFromStdin   bool
)

var encodeCmd = &cobra.Command{
	Use:   "encode [text]",
	Short: "Encode text into token ids",
	Long: `Encode text into token ids using the tokenizer named by --tokenizer-json
or --sp-model. With --stdin, each line of standard input is encoded as its
own input and run across a worker pool via the batch driver, preserving
input order in the output.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tok, err := loadTokenizer(cfg)
		if err != nil {
			return err
		}

		if encodeFromStdin {
			return runEncodeBatch(tok)
		}
		if len(args) != 1 {
			return fmt.Errorf("encode requires a text argument, or --stdin")
		}
		return runEncodeOne(tok, args[0])
	},
}

func init() {
	encodeCmd.Flags().BoolVar(&encodeWithOffsets, "offsets", false, "include character offsets for each token")
	encodeCmd.Flags().BoolVar(&encodeFromStdin, "stdin", false, "encode one input per line of standard input")
}

type encodeOutput struct {
	IDs     []int             `json:"ids"`
	Offsets []api.TokenOffset `json:"offsets,omitempty"`
}

func runEncodeOne(tok api.TokenizerWithOffsets, text string) error {
	out := encodeResult(tok, text)
	return printJSON(out)
}

func encodeResult(tok api.TokenizerWithOffsets, text string) encodeOutput {
	if !encodeWithOffsets {
		return encodeOutput{IDs: tok.Encode(text)}
	}
	res := tok.EncodeWithOffsets(text)
	return encodeOutput{IDs: res.IDs, Offsets: res.Offsets}
}

func runEncodeBatch(tok api.TokenizerWithOffsets) error {
	var lines []string
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}

	results, err := batch.RunWithLogger(lines, cfg.Batch.Workers, func(line string) (interface{}, error) {
		return encodeResult(tok, line), nil
	}, logger.With(zap.String("command", "encode")))
	if err != nil {
		return fmt.Errorf("batch encode: %w", err)
	}
	return printJSON(results)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
