package queries_test

import (
	"testing"
	"time"

	"sameday/internal/adapters/out/postgres/delivererrepo"
	"sameday/internal/adapters/out/postgres/incidentrepo"
	"sameday/internal/adapters/out/postgres/shipmentrepo"
	"sameday/internal/adapters/out/postgres/sqlitetest"
	"sameday/internal/core/domain/model/deliverer"
	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/core/domain/model/shipment"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type nopTracker struct{}

func (nopTracker) TrackAggregate(kernel.UUID, any) {}

// store seeds the tables through the real repositories.
type store struct {
	db         *gorm.DB
	shipments  *shipmentrepo.GormShipmentRepository
	deliverers *delivererrepo.GormDelivererRepository
	incidents  *incidentrepo.GormIncidentRepository
}

func newStore(t *testing.T) store {
	t.Helper()
	db := sqlitetest.Open(t)
	return store{
		db:         db,
		shipments:  shipmentrepo.NewGormShipmentRepository(db, nopTracker{}),
		deliverers: delivererrepo.NewGormDelivererRepository(db, nopTracker{}),
		incidents:  incidentrepo.NewGormIncidentRepository(db, nopTracker{}),
	}
}

type shipmentOptions struct {
	customer  kernel.UUID
	zone      string
	priority  shipment.Priority
	createdAt time.Time
	paid      bool
}

func (s store) addShipment(t *testing.T, opts shipmentOptions) *shipment.Shipment {
	t.Helper()
	if opts.customer == (kernel.UUID{}) {
		opts.customer = kernel.NewUUID()
	}
	if opts.zone == "" {
		opts.zone = "Norte"
	}
	if opts.priority == shipment.PriorityUnknown {
		opts.priority = shipment.PriorityStandard
	}
	if opts.createdAt.IsZero() {
		opts.createdAt = time.Now()
	}

	loc, err := kernel.NewLocation(0, 0)
	require.NoError(t, err)
	origin, err := kernel.NewAddress("Carrera 14 #8-30", "Armenia", "Centro", loc, nil)
	require.NoError(t, err)
	far, err := kernel.NewLocation(3, 4)
	require.NoError(t, err)
	destination, err := kernel.NewAddress("Calle 50 #10-20", "Armenia", opts.zone, far, nil)
	require.NoError(t, err)
	parcel, err := shipment.NewParcel(2, 0.01, false, true)
	require.NoError(t, err)
	cost, err := kernel.NewMoney(decimal.NewFromInt(14100))
	require.NoError(t, err)

	sh, err := shipment.NewShipment(kernel.NewUUID(), opts.customer, origin, destination,
		parcel, opts.priority, 5, cost, opts.createdAt)
	require.NoError(t, err)
	if opts.paid {
		require.NoError(t, sh.MarkPaid(opts.createdAt))
	}
	require.NoError(t, s.shipments.Add(t.Context(), sh))
	return sh
}

func (s store) addDeliverer(t *testing.T, name, zone string) *deliverer.Deliverer {
	t.Helper()
	loc, err := kernel.NewLocation(1, 1)
	require.NoError(t, err)
	d, err := deliverer.NewDeliverer(kernel.NewUUID(), kernel.NewUUID().String(), name, "3001112233", zone, loc)
	require.NoError(t, err)
	require.NoError(t, s.deliverers.Add(t.Context(), d))
	return d
}

// assign hands sh to d and stores both.
func (s store) assign(t *testing.T, sh *shipment.Shipment, d *deliverer.Deliverer, at time.Time) {
	t.Helper()
	require.NoError(t, sh.Assign(d.ID(), at))
	require.NoError(t, d.TakeShipment(sh.ID()))
	require.NoError(t, s.shipments.Update(t.Context(), sh))
	require.NoError(t, s.deliverers.Update(t.Context(), d))
}

// deliver completes sh with the given rating and stores both.
func (s store) deliver(t *testing.T, sh *shipment.Shipment, d *deliverer.Deliverer, rating int, at time.Time) {
	t.Helper()
	require.NoError(t, sh.StartTransit())
	require.NoError(t, sh.Deliver(at))
	require.NoError(t, d.RecordDelivery(sh.ID(), rating))
	require.NoError(t, s.shipments.Update(t.Context(), sh))
	require.NoError(t, s.deliverers.Update(t.Context(), d))
}
