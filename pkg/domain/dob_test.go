package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "lifeline/pkg/domain-errors"
)

func TestParseDOB(t *testing.T) {
	t.Run("parses valid date", func(t *testing.T) {
		date, err := ParseDOB("15-03-2000")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2000, time.March, 15, 0, 0, 0, 0, time.UTC), date)
	})

	t.Run("rejects wrong segment count", func(t *testing.T) {
		_, err := ParseDOB("15-03")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects non-numeric parts", func(t *testing.T) {
		for _, input := range []string{"xx-03-2000", "15-yy-2000", "15-03-zzzz"} {
			_, err := ParseDOB(input)
			require.Error(t, err, "input %q", input)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		}
	})

	t.Run("rejects impossible calendar dates", func(t *testing.T) {
		_, err := ParseDOB("31-02-2000")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseDOB("")
		require.Error(t, err)
	})
}

func TestAgeAt(t *testing.T) {
	dob := time.Date(2000, time.March, 15, 0, 0, 0, 0, time.UTC)

	t.Run("birthday not yet reached", func(t *testing.T) {
		now := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, 23, AgeAt(dob, now))
	})

	t.Run("birthday passed", func(t *testing.T) {
		now := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, 24, AgeAt(dob, now))
	})

	t.Run("birthday today counts the year", func(t *testing.T) {
		now := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, 24, AgeAt(dob, now))
	})

	t.Run("earlier month but later day still decrements", func(t *testing.T) {
		now := time.Date(2024, time.February, 20, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, 23, AgeAt(dob, now))
	})
}

func TestAgeFromDOB(t *testing.T) {
	now := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)

	age, ok := AgeFromDOB("15-03-2000", now)
	require.True(t, ok)
	assert.Equal(t, 24, age)

	_, ok = AgeFromDOB("not-a-date", now)
	assert.False(t, ok)

	_, ok = AgeFromDOB("", now)
	assert.False(t, ok)
}
