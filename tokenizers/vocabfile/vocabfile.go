// Package vocabfile implements loaders for the on-disk vocabulary formats
// a tokenizer is built from: flat text, JSON object, SentencePiece
// protobuf piece list, merges.txt, and the special-token mapping JSON.
// Every loader here reads a file already on local disk; none of them
// fetch anything from a model hub.
package vocabfile

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"

	"github.com/fractalnlp/tokengo/tokenizers/tokerr"
)

// LoadFlatVocab parses the "flat text" vocab format: one token per line,
// identifier = 0-based line index, trailing newline stripped but other
// whitespace on the line preserved.
func LoadFlatVocab(path string) (map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapOpenErr(path, err)
	}
	defer f.Close()

	vocab := make(map[string]int)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	id := 0
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		vocab[line] = id
		id++
	}
	if err := scanner.Err(); err != nil {
		return nil, tokerr.Wrap(err, tokerr.VocabularyParsing, "reading flat vocab %q", path)
	}
	return vocab, nil
}

// LoadJSONVocab parses the JSON object vocab format: keys are tokens,
// values are integer ids.
func LoadJSONVocab(path string) (map[string]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapOpenErr(path, err)
	}
	var vocab map[string]int
	if err := json.Unmarshal(data, &vocab); err != nil {
		return nil, tokerr.Wrap(err, tokerr.VocabularyParsing, "parsing JSON vocab %q", path)
	}
	return vocab, nil
}

// MergePair is one ranked BPE merge rule; Rank == its line index.
type MergePair struct {
	A, B string
	Rank int
}

// LoadMerges parses the merge file format: one whitespace-separated pair
// per line, rank = line index, with an optional "#version:" header line
// (the format real merges.txt files ship with) skipped if present.
func LoadMerges(path string) ([]MergePair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapOpenErr(path, err)
	}
	defer f.Close()

	var merges []MergePair
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	rank := 0
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if first {
			first = false
			if strings.HasPrefix(line, "#") {
				continue
			}
		}
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) != 2 {
			return nil, tokerr.New(tokerr.VocabularyParsing,
				"merges file %q line %d: expected 2 whitespace-separated fields, got %d", path, rank+1, len(parts))
		}
		merges = append(merges, MergePair{A: parts[0], B: parts[1], Rank: rank})
		rank++
	}
	if err := scanner.Err(); err != nil {
		return nil, tokerr.Wrap(err, tokerr.VocabularyParsing, "reading merges %q", path)
	}
	return merges, nil
}

// SpecialTokensMap mirrors the special-token mapping JSON file.
type SpecialTokensMap struct {
	UnkToken                string   `json:"unk_token"`
	PadToken                string   `json:"pad_token,omitempty"`
	BosToken                string   `json:"bos_token,omitempty"`
	EosToken                string   `json:"eos_token,omitempty"`
	SepToken                string   `json:"sep_token,omitempty"`
	ClsToken                string   `json:"cls_token,omitempty"`
	MaskToken               string   `json:"mask_token,omitempty"`
	AdditionalSpecialTokens []string `json:"additional_special_tokens,omitempty"`
}

// LoadSpecialTokensMap parses the special-token mapping file. Missing
// optional fields are left as the zero value; callers fall back to their
// model family's defaults.
func LoadSpecialTokensMap(path string) (SpecialTokensMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SpecialTokensMap{}, wrapOpenErr(path, err)
	}
	var m SpecialTokensMap
	if err := json.Unmarshal(data, &m); err != nil {
		return SpecialTokensMap{}, tokerr.Wrap(err, tokerr.VocabularyParsing, "parsing special tokens map %q", path)
	}
	if m.UnkToken == "" {
		return SpecialTokensMap{}, tokerr.New(tokerr.VocabularyParsing,
			"special tokens map %q is missing required field unk_token", path)
	}
	return m, nil
}

func wrapOpenErr(path string, err error) error {
	return tokerr.Wrap(err, tokerr.FileNotFound, "opening %q", path)
}
