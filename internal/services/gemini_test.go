package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateUTF8KeepsRunesWhole(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{name: "short", in: "Go", limit: 10, want: "Go"},
		{name: "ascii", in: "golang", limit: 2, want: "go"},
		{name: "cut inside two-byte rune", in: "café", limit: 4, want: "caf"},
		{name: "cut after two-byte rune", in: "café!", limit: 5, want: "café"},
		{name: "cut inside four-byte rune", in: "ok🚀", limit: 4, want: "ok"},
		{name: "zero", in: "é", limit: 0, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateUTF8(tt.in, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}

	long := strings.Repeat("ü", maxEmbeddingInput)
	got := truncateUTF8(long, maxEmbeddingInput)
	assert.LessOrEqual(t, len(got), maxEmbeddingInput)
	assert.True(t, utf8.ValidString(got))
}
