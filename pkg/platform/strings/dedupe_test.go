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
		{name: "nil slice", input: nil, expected: nil},
		{name: "only blanks", input: []string{"", "  "}, expected: nil},
		{name: "preserves order", input: []string{"b", "a"}, expected: []string{"b", "a"}},
		{name: "trims and dedupes", input: []string{"  foo ", "bar", "foo", "", "  "}, expected: []string{"foo", "bar"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}

func TestContainsAll(t *testing.T) {
	assert.True(t, ContainsAll([]string{"a", "b"}, nil))
	assert.True(t, ContainsAll([]string{"a", "b"}, []string{"b"}))
	assert.False(t, ContainsAll([]string{"a"}, []string{"a", "c"}))
	assert.False(t, ContainsAll(nil, []string{"a"}))
}
