package kernel_test

import (
	"testing"

	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUUID(t *testing.T) {
	t.Run("generates valid distinct identifiers", func(t *testing.T) {
		a := kernel.NewUUID()
		b := kernel.NewUUID()

		require.NoError(t, a.Validate())
		assert.False(t, a.IsEqual(b))
	})
}

func TestUUIDFromString(t *testing.T) {
	const raw = "550e8400-e29b-41d4-a716-446655440000"

	t.Run("parses canonical form", func(t *testing.T) {
		id, err := kernel.UUIDFromString(raw)

		require.NoError(t, err)
		assert.Equal(t, raw, id.String())
	})

	t.Run("rejects garbage as invalid value", func(t *testing.T) {
		_, err := kernel.UUIDFromString("not-a-uuid")

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("rejects the nil uuid", func(t *testing.T) {
		_, err := kernel.UUIDFromString(uuid.Nil.String())

		require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	})
}

func TestUUIDFromGoogle(t *testing.T) {
	t.Run("round trips through the google value", func(t *testing.T) {
		original := kernel.NewUUID()

		restored, err := kernel.UUIDFromGoogle(original.Google())

		require.NoError(t, err)
		assert.True(t, original.IsEqual(restored))
	})

	t.Run("zero value does not validate", func(t *testing.T) {
		var id kernel.UUID

		require.ErrorIs(t, id.Validate(), errs.ErrValueIsRequired)
	})
}

func TestUUID_Less(t *testing.T) {
	low, _ := kernel.UUIDFromString("00000000-0000-0000-0000-000000000001")
	high, _ := kernel.UUIDFromString("00000000-0000-0000-0000-000000000002")

	assert.True(t, low.Less(high))
	assert.False(t, high.Less(low))
	assert.False(t, low.Less(low))
}
