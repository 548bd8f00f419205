package shipmentrepo_test

import (
	"testing"
	"time"

	"sameday/internal/adapters/out/postgres/incidentrepo"
	"sameday/internal/adapters/out/postgres/shipmentrepo"
	"sameday/internal/adapters/out/postgres/sqlitetest"
	"sameday/internal/core/domain/model/incident"
	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/core/domain/model/shipment"
	"sameday/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate any) {
	m.Called(id, aggregate)
}

type ShipmentRepositoryTestSuite struct {
	suite.Suite
	db         *gorm.DB
	repository *shipmentrepo.GormShipmentRepository
	tracker    *MockAggregateTracker
}

func TestShipmentRepository(t *testing.T) {
	suite.Run(t, new(ShipmentRepositoryTestSuite))
}

func (s *ShipmentRepositoryTestSuite) SetupTest() {
	s.db = sqlitetest.Open(s.T())
	s.tracker = new(MockAggregateTracker)
	s.tracker.On("TrackAggregate", mock.Anything, mock.Anything).Maybe()
	s.repository = shipmentrepo.NewGormShipmentRepository(s.db, s.tracker)
}

func (s *ShipmentRepositoryTestSuite) TestAdd_ThenGet_RestoresEveryField() {
	ctx := s.T().Context()

	// Given
	lat, lon := 4.5339, -75.6811
	geo, err := kernel.NewGeoPoint(lat, lon)
	s.Require().NoError(err)
	loc, err := kernel.NewLocation(3, 4)
	s.Require().NoError(err)
	destination, err := kernel.NewAddress("Calle 21 #15-40", "Armenia", "Norte", loc, &geo)
	s.Require().NoError(err)

	original := s.newShipment("Norte", shipment.PriorityUrgent, time.Now().Add(-time.Hour))
	original, err = shipment.RestoreShipment(func() shipment.Snapshot {
		snap := original.Snapshot()
		snap.Destination = destination
		snap.Instructions = []string{"ring twice"}
		return snap
	}())
	s.Require().NoError(err)

	// When
	s.Require().NoError(s.repository.Add(ctx, original))
	loaded, err := s.repository.Get(ctx, original.ID())

	// Then
	s.Require().NoError(err)
	s.True(loaded.ID().IsEqual(original.ID()))
	s.True(loaded.CustomerID().IsEqual(original.CustomerID()))
	s.Equal(shipment.PriorityUrgent, loaded.Priority())
	s.Equal(shipment.Pending, loaded.Status())
	s.True(loaded.Cost().Amount().Equal(decimal.NewFromInt(14100)))
	s.InDelta(5.0, loaded.Distance(), 1e-9)
	s.Equal("Norte", loaded.Destination().Zone())
	gotGeo, ok := loaded.Destination().GeoPoint()
	s.Require().True(ok)
	s.InDelta(lat, gotGeo.Lat(), 1e-9)
	s.InDelta(lon, gotGeo.Lon(), 1e-9)
	_, ok = loaded.Origin().GeoPoint()
	s.False(ok)
	s.Equal([]string{"ring twice"}, loaded.Instructions())
	s.Nil(loaded.Deliverer())
	s.tracker.AssertCalled(s.T(), "TrackAggregate", original.ID(), original)
}

func (s *ShipmentRepositoryTestSuite) TestGet_Missing_ReturnsObjectNotFound() {
	_, err := s.repository.Get(s.T().Context(), kernel.NewUUID())

	s.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (s *ShipmentRepositoryTestSuite) TestUpdate_ClearsReleasedDeliverer() {
	ctx := s.T().Context()

	// Given
	sh := s.newShipment("Norte", shipment.PriorityStandard, time.Now())
	s.Require().NoError(sh.MarkPaid(time.Now()))
	delivererID := kernel.NewUUID()
	s.Require().NoError(sh.Assign(delivererID, time.Now()))
	s.Require().NoError(s.repository.Add(ctx, sh))

	loaded, err := s.repository.Get(ctx, sh.ID())
	s.Require().NoError(err)
	s.Require().NotNil(loaded.Deliverer())
	s.True(loaded.Deliverer().IsEqual(delivererID))

	// When
	released, err := sh.Cancel()
	s.Require().NoError(err)
	s.Require().NotNil(released)
	s.Require().NoError(s.repository.Update(ctx, sh))

	// Then
	loaded, err = s.repository.Get(ctx, sh.ID())
	s.Require().NoError(err)
	s.Equal(shipment.Cancelled, loaded.Status())
	s.Nil(loaded.Deliverer())
}

func (s *ShipmentRepositoryTestSuite) TestUpdate_AppendsInstructionsOnly() {
	ctx := s.T().Context()

	// Given
	sh := s.newShipment("Norte", shipment.PriorityStandard, time.Now())
	s.Require().NoError(sh.AppendInstruction("leave at the gate"))
	s.Require().NoError(s.repository.Add(ctx, sh))

	// When
	s.Require().NoError(sh.AppendInstruction("call on arrival"))
	s.Require().NoError(s.repository.Update(ctx, sh))
	s.Require().NoError(s.repository.Update(ctx, sh))

	// Then
	loaded, err := s.repository.Get(ctx, sh.ID())
	s.Require().NoError(err)
	s.Equal([]string{"leave at the gate", "call on arrival"}, loaded.Instructions())

	var count int64
	s.Require().NoError(s.db.Model(&shipmentrepo.InstructionDTO{}).Count(&count).Error)
	s.Equal(int64(2), count)
}

func (s *ShipmentRepositoryTestSuite) TestUpdate_NeverAdded_ReturnsRecordNotFound() {
	err := s.repository.Update(s.T().Context(), s.newShipment("Norte", shipment.PriorityStandard, time.Now()))

	s.Require().ErrorIs(err, gorm.ErrRecordNotFound)
}

func (s *ShipmentRepositoryTestSuite) TestGet_LoadsIncidentIDsInReportOrder() {
	ctx := s.T().Context()

	// Given
	sh := s.newShipment("Norte", shipment.PriorityStandard, time.Now())
	s.Require().NoError(s.repository.Add(ctx, sh))

	incidents := incidentrepo.NewGormIncidentRepository(s.db, s.tracker)
	first, err := incident.NewIncident(kernel.NewUUID(), sh.ID(), nil, incident.RecipientAbsent, "nobody home", time.Now().Add(-time.Minute))
	s.Require().NoError(err)
	second, err := incident.NewIncident(kernel.NewUUID(), sh.ID(), nil, incident.WrongAddress, "no such street", time.Now())
	s.Require().NoError(err)
	s.Require().NoError(incidents.Add(ctx, second))
	s.Require().NoError(incidents.Add(ctx, first))

	// When
	loaded, err := s.repository.Get(ctx, sh.ID())

	// Then
	s.Require().NoError(err)
	s.Require().Len(loaded.IncidentIDs(), 2)
	s.True(loaded.IncidentIDs()[0].IsEqual(first.ID()))
	s.True(loaded.IncidentIDs()[1].IsEqual(second.ID()))
}

func (s *ShipmentRepositoryTestSuite) TestGetAwaitingDeliverer_OrdersByPriorityThenAge() {
	ctx := s.T().Context()
	now := time.Now()

	// Given
	oldStandard := s.paid(s.newShipment("Norte", shipment.PriorityStandard, now.Add(-3*time.Hour)))
	newUrgent := s.paid(s.newShipment("Norte", shipment.PriorityUrgent, now.Add(-time.Minute)))
	oldUrgent := s.paid(s.newShipment("Sur", shipment.PriorityUrgent, now.Add(-2*time.Hour)))
	unpaid := s.newShipment("Norte", shipment.PriorityUrgent, now.Add(-5*time.Hour))
	assigned := s.paid(s.newShipment("Norte", shipment.PriorityUrgent, now.Add(-5*time.Hour)))
	s.Require().NoError(assigned.Assign(kernel.NewUUID(), now))

	for _, sh := range []*shipment.Shipment{oldStandard, newUrgent, oldUrgent, unpaid, assigned} {
		s.Require().NoError(s.repository.Add(ctx, sh))
	}

	// When
	all, err := s.repository.GetAwaitingDeliverer(ctx, 0)
	s.Require().NoError(err)
	limited, err := s.repository.GetAwaitingDeliverer(ctx, 2)
	s.Require().NoError(err)

	// Then
	s.Require().Len(all, 3)
	s.True(all[0].ID().IsEqual(oldUrgent.ID()))
	s.True(all[1].ID().IsEqual(newUrgent.ID()))
	s.True(all[2].ID().IsEqual(oldStandard.ID()))
	s.Len(limited, 2)
}

func (s *ShipmentRepositoryTestSuite) newShipment(zone string, priority shipment.Priority, createdAt time.Time) *shipment.Shipment {
	loc, err := kernel.NewLocation(0, 0)
	s.Require().NoError(err)
	origin, err := kernel.NewAddress("Carrera 14 #8-30", "Armenia", zone, loc, nil)
	s.Require().NoError(err)
	far, err := kernel.NewLocation(3, 4)
	s.Require().NoError(err)
	destination, err := kernel.NewAddress("Calle 50 #10-20", "Armenia", zone, far, nil)
	s.Require().NoError(err)
	parcel, err := shipment.NewParcel(2, 0.01, true, false)
	s.Require().NoError(err)
	cost, err := kernel.NewMoney(decimal.NewFromInt(14100))
	s.Require().NoError(err)

	sh, err := shipment.NewShipment(kernel.NewUUID(), kernel.NewUUID(), origin, destination,
		parcel, priority, 5, cost, createdAt)
	s.Require().NoError(err)
	return sh
}

func (s *ShipmentRepositoryTestSuite) paid(sh *shipment.Shipment) *shipment.Shipment {
	s.Require().NoError(sh.MarkPaid(time.Now()))
	return sh
}
