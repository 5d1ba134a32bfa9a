// Command tokengo drives the tokengo tokenization engine from the command
// line: encode text to ids, decode ids back to text, and inspect a loaded
// tokenizer's vocabulary.
package main

import (
	"fmt"
	"os"

	"github.com/fractalnlp/tokengo/cmd/tokengo/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
