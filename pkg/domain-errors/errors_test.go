package dErrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches direct error", func(t *testing.T) {
		err := New(CodeNotFound, "request missing")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeConflict))
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		inner := New(CodeConflict, "already reviewed")
		err := fmt.Errorf("review failed: %w", inner)
		assert.True(t, HasCode(err, CodeConflict))
	})

	t.Run("non-domain error has no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("plain"), CodeInternal))
	})
}

func TestErrorsIs_MatchesByCode(t *testing.T) {
	err := New(CodeUnauthorized, "token has expired")
	require.ErrorIs(t, err, New(CodeUnauthorized, "different message"))
	require.NotErrorIs(t, err, New(CodeForbidden, "token has expired"))
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "store unavailable")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "store unavailable: connection refused", err.Error())
	assert.Equal(t, CodeInternal, CodeOf(err))
}

func TestCodeOf_DefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("driver crashed")))
}
