package shipment_test

import (
	"testing"

	"sameday/internal/core/domain/model/shipment"
	"sameday/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_TransitionTableIsClosed(t *testing.T) {
	allowed := map[shipment.Status][]shipment.Status{
		shipment.Pending:             {shipment.Assigned, shipment.Cancelled},
		shipment.Assigned:            {shipment.InTransit, shipment.Incident, shipment.Cancelled},
		shipment.InTransit:           {shipment.Delivered, shipment.Incident},
		shipment.Incident:            {shipment.PendingReassignment, shipment.Cancelled},
		shipment.PendingReassignment: {shipment.Assigned, shipment.Cancelled},
	}

	for _, from := range shipment.Statuses() {
		for _, to := range shipment.Statuses() {
			t.Run(from.String()+"->"+to.String(), func(t *testing.T) {
				next, err := from.TransitionTo(to)

				want := false
				for _, a := range allowed[from] {
					if a == to {
						want = true
					}
				}

				if want {
					require.NoError(t, err)
					assert.Equal(t, to, next)
					return
				}
				require.ErrorIs(t, err, shipment.ErrInvalidTransition)
				assert.Equal(t, shipment.Unknown, next)
			})
		}
	}
}

func TestStatus_TerminalRefusalsAreTagged(t *testing.T) {
	for _, from := range []shipment.Status{shipment.Delivered, shipment.Cancelled} {
		t.Run(from.String(), func(t *testing.T) {
			_, err := from.TransitionTo(shipment.Assigned)

			require.ErrorIs(t, err, shipment.ErrTerminalShipment)
			require.ErrorIs(t, err, errs.ErrStateTransitionIsInvalid)
			assert.True(t, from.IsTerminal())
		})
	}

	_, err := shipment.Pending.TransitionTo(shipment.Delivered)
	require.NotErrorIs(t, err, shipment.ErrTerminalShipment)
}

func TestStatus_ParseAndString(t *testing.T) {
	for _, s := range shipment.Statuses() {
		parsed, err := shipment.ParseStatus(s.String())

		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	parsed, err := shipment.ParseStatus(" in_transit ")
	require.NoError(t, err)
	assert.Equal(t, shipment.InTransit, parsed)

	_, err = shipment.ParseStatus("LOST")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)

	assert.Equal(t, "UNKNOWN", shipment.Status(42).String())
	require.Error(t, shipment.Unknown.Validate())
}

func TestStatus_ValidateCanHaveDeliverer(t *testing.T) {
	cases := []struct {
		status       shipment.Status
		hasDeliverer bool
		valid        bool
	}{
		{shipment.Pending, false, true},
		{shipment.Pending, true, false},
		{shipment.Assigned, true, true},
		{shipment.Assigned, false, false},
		{shipment.InTransit, true, true},
		{shipment.Incident, false, false},
		{shipment.PendingReassignment, true, false},
		{shipment.Cancelled, true, false},
		{shipment.Cancelled, false, true},
		{shipment.Delivered, true, true},
		{shipment.Delivered, false, true},
	}

	for _, tc := range cases {
		t.Run(tc.status.String(), func(t *testing.T) {
			err := tc.status.ValidateCanHaveDeliverer(tc.hasDeliverer)
			if tc.valid {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, errs.ErrValueIsInvalid)
			}
		})
	}
}
