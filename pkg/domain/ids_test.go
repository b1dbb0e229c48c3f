package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "bisaathi/pkg/domain-errors"
)

func TestParseUserID(t *testing.T) {
	t.Run("round-trips a valid UUID", func(t *testing.T) {
		want := NewUserID()
		got, err := ParseUserID(want.String())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		for name, input := range map[string]string{
			"empty":     "",
			"malformed": "not-a-uuid",
			"nil uuid":  uuid.Nil.String(),
			"truncated": "123e4567-e89b-12d3-a456",
		} {
			t.Run(name, func(t *testing.T) {
				_, err := ParseUserID(input)
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			})
		}
	})
}

func TestParseComplaintID(t *testing.T) {
	want := NewComplaintID()
	got, err := ParseComplaintID(want.String())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = ParseComplaintID(uuid.Nil.String())
	require.Error(t, err)
}

func TestIsNil(t *testing.T) {
	assert.True(t, UserID{}.IsNil())
	assert.False(t, NewUserID().IsNil())
	assert.True(t, ComplaintID{}.IsNil())
}
