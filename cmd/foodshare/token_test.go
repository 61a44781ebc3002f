package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePairs(t *testing.T) {
	payload, err := parsePairs([]string{"firstName=Ana", "email=ana@example.org", "lastGiftAmount=50.25", "totalGifts=3", "note=a=b"})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"firstName":      "Ana",
		"email":          "ana@example.org",
		"lastGiftAmount": 50.25,
		"totalGifts":     3.0,
		"note":           "a=b",
	}, payload)

	tests := []struct {
		name string
		args []string
	}{
		{name: "missing separator", args: []string{"firstName"}},
		{name: "empty key", args: []string{"=Ana"}},
		{name: "numeric key", args: []string{"lifetimeGiving=lots"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parsePairs(tt.args)
			assert.Error(t, err)
		})
	}
}
