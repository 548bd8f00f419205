package commands_test

import (
	"strings"
	"testing"
	"time"

	"sameday/internal/core/application/usecases/commands"
	"sameday/internal/core/domain/model/deliverer"
	"sameday/internal/core/domain/model/incident"
	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/core/domain/model/shipment"
	"sameday/internal/core/domain/services"
	"sameday/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewReportIncidentCommand(t *testing.T) {
	t.Run("requires a description", func(t *testing.T) {
		_, err := commands.NewReportIncidentCommand(kernel.NewUUID(), incident.Theft, "   ")
		require.ErrorIs(t, err, incident.ErrDescriptionIsRequired)
	})

	t.Run("requires a known type", func(t *testing.T) {
		_, err := commands.NewReportIncidentCommand(kernel.NewUUID(), incident.TypeUnknown, "lost")
		require.Error(t, err)
	})
}

func TestReportIncidentCommandHandler_Handle(t *testing.T) {
	t.Run("an escalating incident releases the shipment and frees the deliverer", func(t *testing.T) {
		// Given
		ctx := t.Context()
		r := newRepos()
		publisher := new(MockEventPublisher)
		rt, _ := newRuntime(publisher)
		d1 := delivererWith(t, "North", 1, 4.5)
		s := assignedShipment(t, d1)

		cmd, err := commands.NewReportIncidentCommand(s.ID(), incident.DelivererUnavailable, "flat tyre")
		require.NoError(t, err)

		var reported *incident.Incident
		mock.InOrder(
			r.uow.On("Begin", ctx).Return(nil).Once(),
			r.shipments.On("Get", ctx, s.ID()).Return(s, nil).Once(),
			r.deliverers.On("Get", ctx, d1.ID()).Return(d1, nil).Once(),
			r.deliverers.On("Update", ctx, d1).Return(nil).Once(),
			r.incidents.On("Add", ctx, mock.AnythingOfType("*incident.Incident")).
				Run(func(args mock.Arguments) { reported = args.Get(1).(*incident.Incident) }).
				Return(nil).Once(),
			r.shipments.On("Update", ctx, s).Return(nil).Once(),
			r.uow.On("Commit", ctx).Return(nil).Once(),
			publisher.On("Publish", ctx, mock.Anything).Return(nil).Once(),
		)

		handler := commands.NewReportIncidentCommandHandler(r.factory, rt)

		// When
		err = handler.Handle(ctx, cmd)

		// Then
		require.NoError(t, err)
		assert.Equal(t, shipment.PendingReassignment, s.Status())
		assert.Nil(t, s.Deliverer())
		assert.Equal(t, []kernel.UUID{cmd.IncidentID()}, s.IncidentIDs())

		// The deliverer is made Available even though another shipment is still on board.
		assert.Equal(t, deliverer.Available, d1.Status())
		assert.Equal(t, 1, d1.Load())
		assert.False(t, d1.IsCarrying(s.ID()))

		require.NotNil(t, reported)
		assert.Equal(t, cmd.IncidentID(), reported.ID())
		require.NotNil(t, reported.Deliverer())
		assert.Equal(t, d1.ID(), *reported.Deliverer())
		assert.False(t, reported.IsResolved())
		r.assertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("a non escalating incident only records the incident", func(t *testing.T) {
		// Given
		ctx := t.Context()
		r := newRepos()
		rt, _ := newRuntime(nil)
		d1 := delivererWith(t, "North", 0, 0)
		s := assignedShipment(t, d1)

		cmd, err := commands.NewReportIncidentCommand(s.ID(), incident.RecipientAbsent, "nobody home")
		require.NoError(t, err)

		r.uow.On("Begin", ctx).Return(nil).Once()
		r.shipments.On("Get", ctx, s.ID()).Return(s, nil).Once()
		r.incidents.On("Add", ctx, mock.Anything).Return(nil).Once()
		r.shipments.On("Update", ctx, s).Return(nil).Once()
		r.uow.On("Commit", ctx).Return(nil).Once()

		handler := commands.NewReportIncidentCommandHandler(r.factory, rt)

		// When
		err = handler.Handle(ctx, cmd)

		// Then
		require.NoError(t, err)
		assert.Equal(t, shipment.Assigned, s.Status())
		assert.Equal(t, d1.ID(), *s.Deliverer())
		assert.Len(t, s.IncidentIDs(), 1)
		r.deliverers.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		r.assertExpectations(t)
	})

	t.Run("an escalating incident on a pending shipment is rejected", func(t *testing.T) {
		// Given
		ctx := t.Context()
		r := newRepos()
		publisher := new(MockEventPublisher)
		rt, _ := newRuntime(publisher)
		s := paidShipment(t, "North")

		cmd, err := commands.NewReportIncidentCommand(s.ID(), incident.InaccessibleZone, "bridge closed")
		require.NoError(t, err)

		r.uow.On("Begin", ctx).Return(nil).Once()
		r.shipments.On("Get", ctx, s.ID()).Return(s, nil).Once()

		handler := commands.NewReportIncidentCommandHandler(r.factory, rt)

		// When
		err = handler.Handle(ctx, cmd)

		// Then
		require.ErrorIs(t, err, shipment.ErrInvalidTransition)
		assert.Equal(t, shipment.Pending, s.Status())
		r.incidents.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
		r.shipments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		r.uow.AssertNotCalled(t, "Commit", mock.Anything)
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("terminal shipments reject incidents", func(t *testing.T) {
		ctx := t.Context()
		r := newRepos()
		rt, _ := newRuntime(nil)
		s := paidShipment(t, "North")
		_, err := s.Cancel()
		require.NoError(t, err)

		cmd, err := commands.NewReportIncidentCommand(s.ID(), incident.Theft, "stolen")
		require.NoError(t, err)

		r.uow.On("Begin", ctx).Return(nil).Once()
		r.shipments.On("Get", ctx, s.ID()).Return(s, nil).Once()

		handler := commands.NewReportIncidentCommandHandler(r.factory, rt)
		err = handler.Handle(ctx, cmd)

		require.ErrorIs(t, err, shipment.ErrTerminalShipment)
		r.incidents.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	})
}

func TestReassignShipmentCommandHandler_Handle(t *testing.T) {
	t.Run("a released shipment goes to another deliverer and the reason is logged", func(t *testing.T) {
		// Given
		ctx := t.Context()
		r := newRepos()
		publisher := new(MockEventPublisher)
		rt, _ := newRuntime(publisher)

		d1 := delivererWith(t, "North", 0, 0)
		s := assignedShipment(t, d1)
		_, err := s.ReleaseForReassignment()
		require.NoError(t, err)
		d1.Free(s.ID())

		d3 := delivererWith(t, "North", 0, 4.2)

		cmd, err := commands.NewReassignShipmentCommand(s.ID(), "rider unavailable")
		require.NoError(t, err)

		mock.InOrder(
			r.uow.On("Begin", ctx).Return(nil).Once(),
			r.shipments.On("Get", ctx, s.ID()).Return(s, nil).Once(),
			r.deliverers.On("GetAvailableInZone", ctx, "North").Return([]*deliverer.Deliverer{d3}, nil).Once(),
			r.shipments.On("Update", ctx, s).Return(nil).Once(),
			r.deliverers.On("Update", ctx, d3).Return(nil).Once(),
			r.uow.On("Commit", ctx).Return(nil).Once(),
			publisher.On("Publish", ctx, mock.MatchedBy(func(events []ports.Event) bool {
				return len(events) == 1 && events[0].Name == ports.EventShipmentReassigned &&
					events[0].Payload["delivererId"] == d3.ID().String()
			})).Return(nil).Once(),
		)

		handler := commands.NewReassignShipmentCommandHandler(r.factory, rt)

		// When
		err = handler.Handle(ctx, cmd)

		// Then
		require.NoError(t, err)
		assert.Equal(t, shipment.Assigned, s.Status())
		assert.Equal(t, d3.ID(), *s.Deliverer())
		assert.True(t, d3.IsCarrying(s.ID()))

		logged := false
		for _, line := range s.Instructions() {
			if strings.HasPrefix(line, shipment.ReassignedInstructionPrefix) {
				logged = true
			}
		}
		assert.True(t, logged)
		r.assertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("takes an assigned shipment away from its deliverer", func(t *testing.T) {
		// Given
		ctx := t.Context()
		r := newRepos()
		rt, _ := newRuntime(nil)

		d1 := delivererWith(t, "North", 0, 5)
		s := assignedShipment(t, d1)
		d2 := delivererWith(t, "North", 2, 3)

		cmd, err := commands.NewReassignShipmentCommand(s.ID(), "customer asked for another rider")
		require.NoError(t, err)

		r.uow.On("Begin", ctx).Return(nil).Once()
		r.shipments.On("Get", ctx, s.ID()).Return(s, nil).Once()
		r.deliverers.On("Get", ctx, d1.ID()).Return(d1, nil).Once()
		r.deliverers.On("GetAvailableInZone", ctx, "North").
			Return([]*deliverer.Deliverer{d1, d2}, nil).Once()
		r.shipments.On("Update", ctx, s).Return(nil).Once()
		r.deliverers.On("Update", ctx, d1).Return(nil).Once()
		r.deliverers.On("Update", ctx, d2).Return(nil).Once()
		r.uow.On("Commit", ctx).Return(nil).Once()

		handler := commands.NewReassignShipmentCommandHandler(r.factory, rt)

		// When
		err = handler.Handle(ctx, cmd)

		// Then
		require.NoError(t, err)
		assert.Equal(t, d2.ID(), *s.Deliverer())
		assert.Equal(t, 0, d1.Load())
		assert.Equal(t, deliverer.Busy, d2.Status())
		r.assertExpectations(t)
	})

	t.Run("without candidates the release is still committed", func(t *testing.T) {
		// Given
		ctx := t.Context()
		r := newRepos()
		rt, _ := newRuntime(nil)

		d1 := delivererWith(t, "North", 0, 5)
		s := assignedShipment(t, d1)

		cmd, err := commands.NewReassignShipmentCommand(s.ID(), "vehicle broke down")
		require.NoError(t, err)

		r.uow.On("Begin", ctx).Return(nil).Once()
		r.shipments.On("Get", ctx, s.ID()).Return(s, nil).Once()
		r.deliverers.On("Get", ctx, d1.ID()).Return(d1, nil).Once()
		r.deliverers.On("GetAvailableInZone", ctx, "North").Return([]*deliverer.Deliverer{d1}, nil).Once()
		r.shipments.On("Update", ctx, s).Return(nil).Once()
		r.deliverers.On("Update", ctx, d1).Return(nil).Once()
		r.uow.On("Commit", ctx).Return(nil).Once()

		handler := commands.NewReassignShipmentCommandHandler(r.factory, rt)

		// When
		err = handler.Handle(ctx, cmd)

		// Then
		require.ErrorIs(t, err, services.ErrNoDelivererAvailable)
		assert.Equal(t, shipment.PendingReassignment, s.Status())
		assert.Nil(t, s.Deliverer())
		assert.Equal(t, deliverer.Available, d1.Status())
		r.assertExpectations(t)
	})

	t.Run("requires a reason", func(t *testing.T) {
		_, err := commands.NewReassignShipmentCommand(kernel.NewUUID(), " ")
		require.ErrorIs(t, err, shipment.ErrReasonIsRequired)
	})
}

func TestResolveIncidentCommandHandler_Handle(t *testing.T) {
	reportedAgainst := func(t *testing.T, s *shipment.Shipment, d *deliverer.Deliverer, kind incident.Type) *incident.Incident {
		t.Helper()
		id := d.ID()
		inc, err := incident.NewIncident(kernel.NewUUID(), s.ID(), &id, kind, "reported on the road", time.Now())
		require.NoError(t, err)
		require.NoError(t, s.AttachIncident(inc.ID()))
		return inc
	}

	t.Run("reassigns to someone other than the reported deliverer", func(t *testing.T) {
		// Given
		ctx := t.Context()
		r := newRepos()
		publisher := new(MockEventPublisher)
		rt, clock := newRuntime(publisher)

		d1 := delivererWith(t, "North", 0, 5)
		s := assignedShipment(t, d1)
		inc := reportedAgainst(t, s, d1, incident.InaccessibleZone)
		_, err := s.ReleaseForReassignment()
		require.NoError(t, err)
		d1.Free(s.ID())

		d2 := delivererWith(t, "North", 1, 3)

		cmd, err := commands.NewResolveIncidentCommand(inc.ID(), "use the back gate")
		require.NoError(t, err)

		mock.InOrder(
			r.uow.On("Begin", ctx).Return(nil).Once(),
			r.incidents.On("Get", ctx, inc.ID()).Return(inc, nil).Once(),
			r.shipments.On("Get", ctx, s.ID()).Return(s, nil).Once(),
			r.deliverers.On("GetAvailableInZone", ctx, "North").
				Return([]*deliverer.Deliverer{d1, d2}, nil).Once(),
			r.shipments.On("Update", ctx, s).Return(nil).Once(),
			r.deliverers.On("Update", ctx, d2).Return(nil).Once(),
			r.incidents.On("Update", ctx, inc).Return(nil).Once(),
			r.uow.On("Commit", ctx).Return(nil).Once(),
			publisher.On("Publish", ctx, mock.MatchedBy(func(events []ports.Event) bool {
				return len(events) == 2 &&
					events[0].Name == ports.EventIncidentResolved &&
					events[1].Name == ports.EventShipmentReassigned
			})).Return(nil).Once(),
		)

		handler := commands.NewResolveIncidentCommandHandler(r.factory, rt)

		// When
		err = handler.Handle(ctx, cmd)

		// Then
		require.NoError(t, err)
		assert.True(t, inc.IsResolved())
		assert.Equal(t, "use the back gate", inc.Resolution())
		assert.True(t, inc.ResolvedAt().Equal(clock.Now().UTC()))
		assert.Equal(t, d2.ID(), *s.Deliverer())
		assert.Contains(t, s.Instructions(), shipment.ReassignedInstructionPrefix+"use the back gate")
		r.assertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("the resolution is kept when nobody can take the shipment", func(t *testing.T) {
		// Given
		ctx := t.Context()
		r := newRepos()
		rt, _ := newRuntime(nil)

		d1 := delivererWith(t, "North", 0, 5)
		s := assignedShipment(t, d1)
		inc := reportedAgainst(t, s, d1, incident.DelivererUnavailable)
		_, err := s.ReleaseForReassignment()
		require.NoError(t, err)
		d1.Free(s.ID())

		cmd, err := commands.NewResolveIncidentCommand(inc.ID(), "wait for the next shift")
		require.NoError(t, err)

		r.uow.On("Begin", ctx).Return(nil).Once()
		r.incidents.On("Get", ctx, inc.ID()).Return(inc, nil).Once()
		r.shipments.On("Get", ctx, s.ID()).Return(s, nil).Once()
		r.deliverers.On("GetAvailableInZone", ctx, "North").Return([]*deliverer.Deliverer{d1}, nil).Once()
		r.shipments.On("Update", ctx, s).Return(nil).Once()
		r.incidents.On("Update", ctx, inc).Return(nil).Once()
		r.uow.On("Commit", ctx).Return(nil).Once()

		handler := commands.NewResolveIncidentCommandHandler(r.factory, rt)

		// When
		err = handler.Handle(ctx, cmd)

		// Then
		require.ErrorIs(t, err, services.ErrNoDelivererAvailable)
		assert.True(t, inc.IsResolved())
		assert.Equal(t, shipment.PendingReassignment, s.Status())
		r.assertExpectations(t)
	})

	t.Run("a non escalating incident is only closed", func(t *testing.T) {
		ctx := t.Context()
		r := newRepos()
		rt, _ := newRuntime(nil)

		d1 := delivererWith(t, "North", 0, 5)
		s := assignedShipment(t, d1)
		inc := reportedAgainst(t, s, d1, incident.WrongAddress)

		cmd, err := commands.NewResolveIncidentCommand(inc.ID(), "address corrected")
		require.NoError(t, err)

		r.uow.On("Begin", ctx).Return(nil).Once()
		r.incidents.On("Get", ctx, inc.ID()).Return(inc, nil).Once()
		r.incidents.On("Update", ctx, inc).Return(nil).Once()
		r.uow.On("Commit", ctx).Return(nil).Once()

		handler := commands.NewResolveIncidentCommandHandler(r.factory, rt)
		err = handler.Handle(ctx, cmd)

		require.NoError(t, err)
		assert.Equal(t, shipment.Assigned, s.Status())
		r.shipments.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
		r.assertExpectations(t)
	})

	t.Run("an incident is resolved once", func(t *testing.T) {
		ctx := t.Context()
		r := newRepos()
		rt, _ := newRuntime(nil)

		d1 := delivererWith(t, "North", 0, 5)
		s := assignedShipment(t, d1)
		inc := reportedAgainst(t, s, d1, incident.Other)
		require.NoError(t, inc.Resolve("done", time.Now()))

		cmd, err := commands.NewResolveIncidentCommand(inc.ID(), "again")
		require.NoError(t, err)

		r.uow.On("Begin", ctx).Return(nil).Once()
		r.incidents.On("Get", ctx, inc.ID()).Return(inc, nil).Once()

		handler := commands.NewResolveIncidentCommandHandler(r.factory, rt)
		err = handler.Handle(ctx, cmd)

		require.ErrorIs(t, err, incident.ErrIncidentAlreadyResolved)
		assert.Equal(t, "done", inc.Resolution())
	})
}
