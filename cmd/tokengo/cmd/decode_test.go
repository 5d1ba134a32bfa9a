package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIDs(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []int
	}{
		{"comma separated", "101,7592,102", []int{101, 7592, 102}},
		{"comma separated with spaces", "101, 7592, 102", []int{101, 7592, 102}},
		{"JSON array", "[101,7592,102]", []int{101, 7592, 102}},
		{"single id", "5", []int{5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := parseIDs(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestParseIDs_InvalidInput(t *testing.T) {
	_, err := parseIDs("101,not-a-number")
	assert.Error(t, err)
}

func TestParseIDs_InvalidJSON(t *testing.T) {
	_, err := parseIDs("[101,")
	assert.Error(t, err)
}
