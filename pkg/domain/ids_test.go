package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "tome/pkg/domainerrors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs".
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseUserID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseUserID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseUserID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, UserID(validUUID), id)
	})
}

// TestTypeDistinction verifies the compiler enforces type safety.
// If this compiles, the invariant holds.
func TestTypeDistinction(t *testing.T) {
	userID := UserID(uuid.New())
	workspaceID := WorkspaceID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ UserID = workspaceID   // compile error
	// var _ WorkspaceID = userID   // compile error

	assert.NotEqual(t, uuid.UUID(userID), uuid.UUID(workspaceID))
}

// TestParseID_SecurityInvariants validates trust-boundary parsing rules:
// parsing must reject attack vectors at API entry points.
func TestParseID_SecurityInvariants(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"sql injection attempt", "'; DROP TABLE documents;--"},
		{"path traversal", "../../etc/passwd"},
		{"null byte suffix", uuid.New().String() + "\x00"},
		{"whitespace padded", " " + uuid.New().String() + " "},
		{"overlong", strings.Repeat("a", 4096)},
		{"uppercase braces variant rejected as-is", "{DEADBEEF-0000-0000-0000-000000000000"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseWorkspaceID(tc.input)
			require.Error(t, err, "input %q must be rejected", tc.input)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}

func TestIDStringRoundTrip(t *testing.T) {
	docID := NewDocumentID()
	parsed, err := ParseDocumentID(docID.String())
	require.NoError(t, err)
	assert.Equal(t, docID, parsed)
}

func TestIsNil(t *testing.T) {
	assert.True(t, UserID{}.IsNil())
	assert.False(t, NewUserID().IsNil())
	assert.True(t, ShareLinkID{}.IsNil())
}
