package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "nil slice",
			input:    nil,
			expected: nil,
		},
		{
			name:     "empty slice",
			input:    []string{},
			expected: []string{},
		},
		{
			name:     "single element",
			input:    []string{"nurse@example.com"},
			expected: []string{"nurse@example.com"},
		},
		{
			name:     "trims whitespace",
			input:    []string{"  a@example.com  ", "b@example.com  "},
			expected: []string{"a@example.com", "b@example.com"},
		},
		{
			name:     "removes duplicates preserving order",
			input:    []string{"a@x.com", "b@x.com", "a@x.com", "c@x.com", "b@x.com"},
			expected: []string{"a@x.com", "b@x.com", "c@x.com"},
		},
		{
			name:     "removes empty strings",
			input:    []string{"a@x.com", "", "  ", "b@x.com"},
			expected: []string{"a@x.com", "b@x.com"},
		},
		{
			name:     "case variants stay distinct",
			input:    []string{"Helper@Example.com", "helper@example.com"},
			expected: []string{"Helper@Example.com", "helper@example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DedupeAndTrim(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestDedupeAndTrimLower(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "nil slice",
			input:    nil,
			expected: nil,
		},
		{
			name:     "folds case variants to one identity",
			input:    []string{"Helper@Example.com", "helper@example.com", "HELPER@EXAMPLE.COM"},
			expected: []string{"helper@example.com"},
		},
		{
			name:     "trims, lowercases, and dedupes keeping first position",
			input:    []string{"  Zed@x.com ", "amy@x.com", "zed@x.com", "AMY@x.com"},
			expected: []string{"zed@x.com", "amy@x.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DedupeAndTrimLower(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}
