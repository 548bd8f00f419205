package incident_test

import (
	"testing"
	"time"

	"sameday/internal/core/domain/model/incident"
	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reportedAt = time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC)

func TestType_RequiresReassignment(t *testing.T) {
	for _, kind := range incident.Types() {
		t.Run(kind.String(), func(t *testing.T) {
			want := kind == incident.InaccessibleZone || kind == incident.DelivererUnavailable

			assert.Equal(t, want, kind.RequiresReassignment())
		})
	}
}

func TestParseType(t *testing.T) {
	for _, kind := range incident.Types() {
		parsed, err := incident.ParseType(kind.String())

		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	_, err := incident.ParseType("ALIENS")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestNewIncident(t *testing.T) {
	t.Run("opens unresolved", func(t *testing.T) {
		shipmentID := kernel.NewUUID()

		i, err := incident.NewIncident(kernel.NewUUID(), shipmentID, nil, incident.Theft, "bag snatched", reportedAt)

		require.NoError(t, err)
		require.NoError(t, i.Validate())
		assert.True(t, i.ShipmentID().IsEqual(shipmentID))
		assert.Equal(t, incident.Theft, i.Type())
		assert.Equal(t, reportedAt, i.ReportedAt())
		assert.False(t, i.IsResolved())
		assert.Nil(t, i.ResolvedAt())
		assert.False(t, i.RequiresReassignment())
		assert.Nil(t, i.Deliverer())
	})

	t.Run("remembers the deliverer on duty", func(t *testing.T) {
		delivererID := kernel.NewUUID()

		i, err := incident.NewIncident(kernel.NewUUID(), kernel.NewUUID(), &delivererID,
			incident.DelivererUnavailable, "bike broke down", reportedAt)

		require.NoError(t, err)
		require.NotNil(t, i.Deliverer())
		assert.True(t, i.Deliverer().IsEqual(delivererID))
		assert.True(t, i.RequiresReassignment())
	})

	t.Run("description is required", func(t *testing.T) {
		_, err := incident.NewIncident(kernel.NewUUID(), kernel.NewUUID(), nil, incident.Other, "   ", reportedAt)

		require.ErrorIs(t, err, incident.ErrDescriptionIsRequired)
	})

	t.Run("type must be known", func(t *testing.T) {
		_, err := incident.NewIncident(kernel.NewUUID(), kernel.NewUUID(), nil, incident.TypeUnknown, "x", reportedAt)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestIncident_Resolve(t *testing.T) {
	t.Run("resolves exactly once", func(t *testing.T) {
		i, err := incident.NewIncident(kernel.NewUUID(), kernel.NewUUID(), nil, incident.InaccessibleZone, "flooded road", reportedAt)
		require.NoError(t, err)
		resolvedAt := reportedAt.Add(30 * time.Minute)

		require.NoError(t, i.Resolve("route via bridge", resolvedAt))

		assert.True(t, i.IsResolved())
		assert.Equal(t, "route via bridge", i.Resolution())
		assert.Equal(t, resolvedAt, *i.ResolvedAt())
		require.ErrorIs(t, i.Resolve("again", resolvedAt), incident.ErrIncidentAlreadyResolved)
		assert.Equal(t, "route via bridge", i.Resolution())
	})

	t.Run("solution is required", func(t *testing.T) {
		i, err := incident.NewIncident(kernel.NewUUID(), kernel.NewUUID(), nil, incident.Other, "x", reportedAt)
		require.NoError(t, err)

		require.ErrorIs(t, i.Resolve("", reportedAt), incident.ErrSolutionIsRequired)
		assert.False(t, i.IsResolved())
	})

	t.Run("restored resolved incident stays resolved", func(t *testing.T) {
		resolvedAt := reportedAt.Add(time.Hour)

		i, err := incident.RestoreIncident(kernel.NewUUID(), kernel.NewUUID(), nil, incident.WrongAddress,
			"house number missing", reportedAt, "called customer", &resolvedAt)

		require.NoError(t, err)
		assert.True(t, i.IsResolved())
		require.ErrorIs(t, i.Resolve("x", resolvedAt), incident.ErrIncidentAlreadyResolved)
	})
}
