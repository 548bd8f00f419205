package ports

import (
	"context"

	"sameday/internal/core/domain/model/deliverer"
	"sameday/internal/core/domain/model/kernel"
)

// DelivererRepository stores deliverers. Loaded deliverers come with their
// active shipments filled in from the shipments that reference them; saving a
// deliverer never writes that list.
type DelivererRepository interface {
	// Add fails with errs.ErrValueIsInvalid when the document is already registered.
	Add(ctx context.Context, aggregate *deliverer.Deliverer) error

	Update(ctx context.Context, aggregate *deliverer.Deliverer) error

	Get(ctx context.Context, id kernel.UUID) (*deliverer.Deliverer, error)

	GetByDocument(ctx context.Context, document string) (*deliverer.Deliverer, error)

	// GetAvailableInZone returns the deliverers of a zone, compared without case,
	// whose status lets them take work. On databases that support it the rows
	// stay locked until the transaction ends.
	GetAvailableInZone(ctx context.Context, zone string) ([]*deliverer.Deliverer, error)
}
