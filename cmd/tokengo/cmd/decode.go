package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <ids>",
	Short: "Decode token ids back into text",
	Long: `Decode token ids into text using the tokenizer named by --tokenizer-json
or --sp-model. ids may be a comma-separated list (e.g. "101,7592,102") or a
JSON array (e.g. "[101,7592,102]").`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tok, err := loadTokenizer(cfg)
		if err != nil {
			return err
		}
		ids, err := parseIDs(args[0])
		if err != nil {
			return err
		}
		fmt.Println(tok.Decode(ids))
		return nil
	},
}

func parseIDs(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		var ids []int
		if err := json.Unmarshal([]byte(s), &ids); err != nil {
			return nil, fmt.Errorf("parsing ids as JSON array: %w", err)
		}
		return ids, nil
	}
	var ids []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("parsing id %q: %w", field, err)
		}
		ids = append(ids, n)
	}
	return ids, nil
}
