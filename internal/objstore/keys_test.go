package objstore

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey_RoundTripsThroughExtractKey(t *testing.T) {
	key := NewKey("report.pdf")
	got, ok := ExtractKey("https://bucket.s3.amazonaws.com/" + key)
	require.True(t, ok)
	assert.Equal(t, key, got)
}

func TestExtractKey_AcceptsWellFormedKey(t *testing.T) {
	key := "550e8400-e29b-41d4-a716-446655440000-document.pdf"

	got, ok := ExtractKey(key)
	require.True(t, ok)
	assert.Equal(t, key, got)

	got, ok = ExtractKey("https://cdn.example.com/files/" + key)
	require.True(t, ok, "key must be extractable from a full URL")
	assert.Equal(t, key, got)
}

// TestExtractKey_RejectsMalformedInput: anything that does not match the
// generation pattern yields "no access", never an attempted storage call.
func TestExtractKey_RejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty string", ""},
		{"path traversal", "../../etc/passwd"},
		{"traversal with valid-looking suffix", "../" + uuid.NewString() + "-doc.pdf"},
		{"embedded traversal", "https://bucket/" + uuid.NewString() + "-../secret"},
		{"plain filename without prefix", "document.pdf"},
		{"short garbage", "abc"},
		{"uuid without separator", strings.ReplaceAll(uuid.NewString(), "-", "") + "doc.pdf"},
		{"uuid with wrong separator", uuid.NewString() + "_document.pdf"},
		{"uuid only, no filename", uuid.NewString()},
		{"uuid with bare dash and nothing after", uuid.NewString() + "-"},
		{"invalid uuid prefix", "550e8400-e29b-41d4-a716-44665544zzzz-document.pdf"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractKey(tc.input)
			assert.False(t, ok, "input %q must be rejected", tc.input)
			assert.Empty(t, got)
		})
	}
}
