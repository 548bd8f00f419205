package commands

import (
	"context"

	"sameday/internal/core/domain/model/shipment"
	"sameday/internal/core/domain/services"
	"sameday/internal/core/ports"
)

// CreateShipmentCommandHandler prices a shipment with the active rate and
// stores it as Pending.
//
// Example:
//
//	handler := NewCreateShipmentCommandHandler(uowFactory, services.NewDistanceCalculator(), cache, rt)
//	cmd, err := NewCreateShipmentCommand(customerID, origin, destination, parcel, shipment.PriorityUrgent)
//	if err != nil {
//	    return err
//	}
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return err
//	}
//	// cmd.ShipmentID() is now Pending and waiting for payment
type CreateShipmentCommandHandler struct {
	uowFactory UoWFactory
	distance   services.DistanceCalculator
	calculator services.RateCalculator
	rates      activeRateSource
	rt         Runtime
}

// NewCreateShipmentCommandHandler creates the handler. cache may be nil.
func NewCreateShipmentCommandHandler(
	uowFactory UoWFactory,
	distance services.DistanceCalculator,
	cache ports.RateCache,
	rt Runtime,
) CreateShipmentCommandHandler {
	return CreateShipmentCommandHandler{
		uowFactory: uowFactory,
		distance:   distance,
		calculator: services.NewRateCalculator(),
		rates:      activeRateSource{cache: cache, logger: rt.logger},
		rt:         rt,
	}
}

// Handle computes the distance, resolves the active rate (cache, repository,
// then the default tariff) and stores the priced shipment. Publishes
// shipment.created after commit.
func (h CreateShipmentCommandHandler) Handle(ctx context.Context, command CreateShipmentCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	distance, err := h.distance.Distance(command.Origin(), command.Destination())
	if err != nil {
		return err
	}

	// A miss is refilled under the rate lock, taken before the transaction
	// in the same order ActivateRate takes it, so an activation committing
	// meanwhile is either read here or written to the cache after us.
	active := h.rates.cached(ctx)
	if active == nil && h.rates.refills() {
		unlockRate := h.rt.lockRate()
		defer unlockRate()
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	now := h.rt.now()

	if active == nil {
		active, err = h.rates.load(ctx, uow.RateRepository(), now)
		if err != nil {
			return err
		}
	}

	parcel := command.Parcel()
	cost, err := h.calculator.Quote(active, services.QuoteRequest{
		Weight:   parcel.Weight(),
		Volume:   parcel.Volume(),
		Distance: distance,
		Insured:  parcel.Insured(),
		Fragile:  parcel.Fragile(),
		Priority: command.Priority(),
	})
	if err != nil {
		return err
	}

	created, err := shipment.NewShipment(
		command.ShipmentID(),
		command.CustomerID(),
		command.Origin(),
		command.Destination(),
		parcel,
		command.Priority(),
		distance,
		cost,
		now,
	)
	if err != nil {
		return err
	}

	if err := uow.ShipmentRepository().Add(ctx, created); err != nil {
		return err
	}

	if err := uow.Commit(ctx); err != nil {
		return err
	}

	h.rt.publish(ctx, h.rt.event(ports.EventShipmentCreated, created.ID(), map[string]any{
		"customerId": created.CustomerID().String(),
		"zone":       created.Destination().Zone(),
		"priority":   created.Priority().String(),
		"cost":       created.Cost().String(),
	}))
	return nil
}
