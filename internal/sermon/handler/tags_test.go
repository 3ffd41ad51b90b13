package handler

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "nil input",
			input: nil,
			want:  []string{},
		},
		{
			name:  "trims whitespace",
			input: []string{" grace ", "faith"},
			want:  []string{"grace", "faith"},
		},
		{
			name:  "drops blanks",
			input: []string{"", "  ", "hope"},
			want:  []string{"hope"},
		},
		{
			name:  "case-insensitive dedupe keeps first casing",
			input: []string{"Grace", "grace", "GRACE", "mercy"},
			want:  []string{"Grace", "mercy"},
		},
		{
			name:  "truncates long tags",
			input: []string{strings.Repeat("x", 40)},
			want:  []string{strings.Repeat("x", maxTagLength)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeTags(tt.input))
		})
	}
}

func TestNormalizeTags_CapsAtMax(t *testing.T) {
	var input []string
	for i := 0; i < maxTags+10; i++ {
		input = append(input, fmt.Sprintf("tag-%d", i))
	}

	got := normalizeTags(input)

	assert.Len(t, got, maxTags)
	assert.Equal(t, "tag-0", got[0])
}
