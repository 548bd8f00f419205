// Package ports declares what the application core needs from the outside
// world: persistence, caching, messaging and task scheduling.
package ports

import (
	"context"

	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/core/domain/model/shipment"
)

// ShipmentRepository stores shipment aggregates. The shipment row is the only
// record of which deliverer carries it.
type ShipmentRepository interface {
	Add(ctx context.Context, aggregate *shipment.Shipment) error

	// Update fails with errs.ErrObjectNotFound when the shipment was never added.
	Update(ctx context.Context, aggregate *shipment.Shipment) error

	Get(ctx context.Context, id kernel.UUID) (*shipment.Shipment, error)

	// GetAwaitingDeliverer returns paid shipments that are Pending or
	// PendingReassignment, highest priority first, then oldest first.
	// A limit of zero or less returns all of them.
	GetAwaitingDeliverer(ctx context.Context, limit int) ([]*shipment.Shipment, error)
}
