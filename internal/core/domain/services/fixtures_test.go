package services_test

import (
	"testing"
	"time"

	"sameday/internal/core/domain/model/deliverer"
	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/core/domain/model/shipment"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func gridAddress(t *testing.T, zone string, x, y float64) kernel.Address {
	t.Helper()
	loc, err := kernel.NewLocation(x, y)
	require.NoError(t, err)
	addr, err := kernel.NewAddress("Calle 10 #5-20", "Armenia", zone, loc, nil)
	require.NoError(t, err)
	return addr
}

func paidShipment(t *testing.T, zone string) *shipment.Shipment {
	t.Helper()
	parcel, err := shipment.NewParcel(2, 0.01, false, false)
	require.NoError(t, err)
	cost, err := kernel.NewMoney(decimal.NewFromInt(14100))
	require.NoError(t, err)

	s, err := shipment.NewShipment(kernel.NewUUID(), kernel.NewUUID(),
		gridAddress(t, zone, 0, 0), gridAddress(t, zone, 3, 4),
		parcel, shipment.PriorityStandard, 5, cost, now)
	require.NoError(t, err)
	require.NoError(t, s.MarkPaid(now))
	return s
}

// delivererWith builds a deliverer already carrying load shipments.
func delivererWith(t *testing.T, zone string, load int, rating float64) *deliverer.Deliverer {
	t.Helper()
	loc, err := kernel.NewLocation(0, 0)
	require.NoError(t, err)

	active := make([]kernel.UUID, 0, load)
	for range load {
		active = append(active, kernel.NewUUID())
	}

	status := deliverer.Available
	switch {
	case load >= deliverer.MaxConcurrentShipments:
		status = deliverer.Busy
	case load > 0:
		status = deliverer.Active
	}

	total := 0
	if rating > 0 {
		total = 10
	}

	d, err := deliverer.RestoreDeliverer(deliverer.Snapshot{
		ID: kernel.NewUUID(), Document: kernel.NewUUID().String(), Name: "Rider", Phone: "300",
		Zone: zone, Location: loc, Status: status, ActiveShipments: active,
		TotalDeliveries: total, AverageRating: rating,
	})
	require.NoError(t, err)
	return d
}
