package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "lifeline/pkg/domain-errors"
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
		_, err := ParseRequestID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseSampleID(uuid.Nil.String())
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

// TestTypeDistinction verifies the compiler enforces type safety between
// entity IDs. If this compiles, the invariant holds.
func TestTypeDistinction(t *testing.T) {
	userID := UserID(uuid.New())
	requestID := RequestID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ UserID = requestID  // compile error
	// var _ RequestID = userID  // compile error

	assert.NotEqual(t, uuid.UUID(userID), uuid.UUID(requestID))
}

func TestParseBloodType(t *testing.T) {
	t.Run("accepts all eight groups", func(t *testing.T) {
		for _, s := range []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"} {
			bt, err := ParseBloodType(s)
			require.NoError(t, err, "group %q", s)
			assert.Equal(t, s, bt.String())
		}
	})

	t.Run("rejects unknown group", func(t *testing.T) {
		_, err := ParseBloodType("C+")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseBloodType("")
		require.Error(t, err)
	})
}
