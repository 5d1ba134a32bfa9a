// Package config loads cmd/tokengo's configuration from a config file and
// environment variables, layering defaults, an optional YAML file, and
// TOKENGO_*-prefixed env vars through a single viper.Viper instance.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds every setting cmd/tokengo's subcommands read.
type Config struct {
	// Tokenizer selects which glue layer to load a tokenizer through.
	Tokenizer TokenizerConfig `mapstructure:"tokenizer"`
	// Log holds logging settings.
	Log LogConfig `mapstructure:"log"`
	// Batch holds the batch driver's worker count.
	Batch BatchConfig `mapstructure:"batch"`
}

// TokenizerConfig names the on-disk artifacts a tokenizer is built from.
// Exactly one of TokenizerJSON or SentencePieceModel is expected to be set;
// subcommands decide which glue package to use based on which is non-empty.
type TokenizerConfig struct {
	TokenizerJSON      string `mapstructure:"tokenizer_json"`
	SentencePieceModel string `mapstructure:"sentencepiece_model"`
	SplitTrailingDigit bool   `mapstructure:"split_trailing_digit"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// BatchConfig holds batch-driver settings.
type BatchConfig struct {
	Workers int `mapstructure:"workers"` // <= 0 defaults to runtime.NumCPU()
}

var defaults = map[string]interface{}{
	"tokenizer.split_trailing_digit": false,
	"log.level":                      "info",
	"log.format":                     "console",
	"batch.workers":                  0,
}

// Load builds a Config from an optional config file plus TOKENGO_* env
// vars, falling back to defaults for anything unset.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix("TOKENGO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("tokengo")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.tokengo")
		v.AddConfigPath("/etc/tokengo")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}
