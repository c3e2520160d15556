package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		maxSize int
		want    string
	}{
		{"short string no truncation", "hello", 100, "hello"},
		{"exact length", "12345", 5, "12345"},
		{"one over", "123456", 5, "12345...(truncated)"},
		{"zero maxSize uses default", "hello", 0, "hello"},
		{"negative maxSize uses default", "hello", -1, "hello"},
		{"empty string", "", 10, ""},
		{"large truncation", "abcdefghij", 3, "abc...(truncated)"},
		{"multibyte counted as characters", "héllo wörld", 5, "héllo...(truncated)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := TruncateBody(tt.data, tt.maxSize)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruncateBody_DefaultMaxSize(t *testing.T) {
	t.Parallel()

	data := strings.Repeat("x", MaxLogBodySize+100)

	result := TruncateBody(data, 0)
	assert.Equal(t, MaxLogBodySize+len(TruncationMarker), len(result))
	assert.True(t, strings.HasSuffix(result, TruncationMarker))

	// Under the limit, no truncation
	shortData := data[:MaxLogBodySize]
	assert.Equal(t, shortData, TruncateBody(shortData, 0))
}
