package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"sameday/internal/core/application/usecases/commands"
	"sameday/internal/core/domain/model/deliverer"
	"sameday/internal/core/domain/model/incident"
	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/core/domain/model/rate"
	"sameday/internal/core/domain/model/shipment"
	"sameday/internal/core/ports"
	"sameday/internal/pkg/errs"
	"sameday/internal/pkg/keylock"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

type MockShipmentRepository struct{ mock.Mock }

func (m *MockShipmentRepository) Add(ctx context.Context, s *shipment.Shipment) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockShipmentRepository) Update(ctx context.Context, s *shipment.Shipment) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockShipmentRepository) Get(ctx context.Context, id kernel.UUID) (*shipment.Shipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipment.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) GetAwaitingDeliverer(ctx context.Context, limit int) ([]*shipment.Shipment, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*shipment.Shipment), args.Error(1)
}

type MockDelivererRepository struct{ mock.Mock }

func (m *MockDelivererRepository) Add(ctx context.Context, d *deliverer.Deliverer) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDelivererRepository) Update(ctx context.Context, d *deliverer.Deliverer) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDelivererRepository) Get(ctx context.Context, id kernel.UUID) (*deliverer.Deliverer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deliverer.Deliverer), args.Error(1)
}

func (m *MockDelivererRepository) GetByDocument(ctx context.Context, document string) (*deliverer.Deliverer, error) {
	args := m.Called(ctx, document)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deliverer.Deliverer), args.Error(1)
}

func (m *MockDelivererRepository) GetAvailableInZone(ctx context.Context, zone string) ([]*deliverer.Deliverer, error) {
	args := m.Called(ctx, zone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*deliverer.Deliverer), args.Error(1)
}

type MockIncidentRepository struct{ mock.Mock }

func (m *MockIncidentRepository) Add(ctx context.Context, i *incident.Incident) error {
	args := m.Called(ctx, i)
	return args.Error(0)
}

func (m *MockIncidentRepository) Update(ctx context.Context, i *incident.Incident) error {
	args := m.Called(ctx, i)
	return args.Error(0)
}

func (m *MockIncidentRepository) Get(ctx context.Context, id kernel.UUID) (*incident.Incident, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*incident.Incident), args.Error(1)
}

type MockRateRepository struct{ mock.Mock }

func (m *MockRateRepository) Add(ctx context.Context, r *rate.Rate) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRateRepository) Update(ctx context.Context, r *rate.Rate) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRateRepository) GetActive(ctx context.Context) (*rate.Rate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rate.Rate), args.Error(1)
}

type MockRateCache struct{ mock.Mock }

func (m *MockRateCache) GetActive(ctx context.Context) (*rate.Rate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rate.Rate), args.Error(1)
}

func (m *MockRateCache) SetActive(ctx context.Context, r *rate.Rate) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRateCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// memoryRateCache is a RateCache holding the last rate written to it.
type memoryRateCache struct {
	mu     sync.Mutex
	active *rate.Rate
}

func (c *memoryRateCache) GetActive(context.Context) (*rate.Rate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return nil, errs.NewObjectNotFoundError("rate", "active")
	}
	return c.active, nil
}

func (c *memoryRateCache) SetActive(_ context.Context, r *rate.Rate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = r
	return nil
}

func (c *memoryRateCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = nil
	return nil
}

// MockUoW implements every unit of work flavour the handlers ask for.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) ShipmentRepository() ports.ShipmentRepository {
	args := m.Called()
	return args.Get(0).(ports.ShipmentRepository)
}

func (m *MockUoW) DelivererRepository() ports.DelivererRepository {
	args := m.Called()
	return args.Get(0).(ports.DelivererRepository)
}

func (m *MockUoW) IncidentRepository() ports.IncidentRepository {
	args := m.Called()
	return args.Get(0).(ports.IncidentRepository)
}

func (m *MockUoW) RateRepository() ports.RateRepository {
	args := m.Called()
	return args.Get(0).(ports.RateRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockDelivererUoWFactory struct{ mock.Mock }

func (m *MockDelivererUoWFactory) Create() commands.DelivererUoW {
	args := m.Called()
	return args.Get(0).(commands.DelivererUoW)
}

type MockRateUoWFactory struct{ mock.Mock }

func (m *MockRateUoWFactory) Create() commands.RateUoW {
	args := m.Called()
	return args.Get(0).(commands.RateUoW)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(ctx context.Context, events ...ports.Event) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type MockScheduler struct{ mock.Mock }

func (m *MockScheduler) ScheduleAssignment(ctx context.Context, shipmentID kernel.UUID) error {
	args := m.Called(ctx, shipmentID)
	return args.Error(0)
}

// repos bundles the mocks one handler run needs.
type repos struct {
	uow        *MockUoW
	factory    *MockUoWFactory
	shipments  *MockShipmentRepository
	deliverers *MockDelivererRepository
	incidents  *MockIncidentRepository
	rates      *MockRateRepository
}

// newRepos wires a unit of work whose repository getters may be called any
// number of times; tests put the repository calls themselves in order.
func newRepos() repos {
	r := repos{
		uow:        new(MockUoW),
		factory:    new(MockUoWFactory),
		shipments:  new(MockShipmentRepository),
		deliverers: new(MockDelivererRepository),
		incidents:  new(MockIncidentRepository),
		rates:      new(MockRateRepository),
	}
	r.factory.On("Create").Return(r.uow)
	r.uow.On("ShipmentRepository").Return(r.shipments).Maybe()
	r.uow.On("DelivererRepository").Return(r.deliverers).Maybe()
	r.uow.On("IncidentRepository").Return(r.incidents).Maybe()
	r.uow.On("RateRepository").Return(r.rates).Maybe()
	r.uow.On("Rollback", mock.Anything).Return(nil).Maybe()
	return r
}

func (r repos) assertExpectations(t *testing.T) {
	t.Helper()
	r.uow.AssertExpectations(t)
	r.shipments.AssertExpectations(t)
	r.deliverers.AssertExpectations(t)
	r.incidents.AssertExpectations(t)
	r.rates.AssertExpectations(t)
}

func newRuntime(publisher ports.EventPublisher) (commands.Runtime, clockz.Clock) {
	clock := clockz.NewFakeClock()
	return commands.NewRuntime(clock, keylock.New(), publisher, zap.NewNop()), clock
}

func gridAddress(t *testing.T, zone string, x, y float64) kernel.Address {
	t.Helper()
	loc, err := kernel.NewLocation(x, y)
	require.NoError(t, err)
	addr, err := kernel.NewAddress("Carrera 14 #8-30", "Armenia", zone, loc, nil)
	require.NoError(t, err)
	return addr
}

func newShipment(t *testing.T, zone string) *shipment.Shipment {
	t.Helper()
	parcel, err := shipment.NewParcel(2, 0.01, false, false)
	require.NoError(t, err)
	cost, err := kernel.NewMoney(decimal.NewFromInt(14100))
	require.NoError(t, err)

	s, err := shipment.NewShipment(kernel.NewUUID(), kernel.NewUUID(),
		gridAddress(t, zone, 0, 0), gridAddress(t, zone, 3, 4),
		parcel, shipment.PriorityStandard, 5, cost, time.Now())
	require.NoError(t, err)
	return s
}

func paidShipment(t *testing.T, zone string) *shipment.Shipment {
	t.Helper()
	s := newShipment(t, zone)
	require.NoError(t, s.MarkPaid(time.Now()))
	return s
}

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

// assignedShipment returns a paid shipment already carried by d.
func assignedShipment(t *testing.T, d *deliverer.Deliverer) *shipment.Shipment {
	t.Helper()
	s := paidShipment(t, d.Zone())
	require.NoError(t, s.Assign(d.ID(), time.Now()))
	require.NoError(t, d.TakeShipment(s.ID()))
	return s
}
