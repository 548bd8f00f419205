package queries

import (
	"context"
	"errors"

	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/pkg/guard"

	"gorm.io/gorm"
)

var ErrListCustomerShipmentsQueryIsNotConstructed = errors.New(
	"ListCustomerShipmentsQuery must be created via NewListCustomerShipmentsQuery constructor",
)

// ListCustomerShipmentsQuery lists every shipment a customer created, newest first.
type ListCustomerShipmentsQuery struct {
	customerID kernel.UUID
	guard      guard.ConstructorGuard
}

func NewListCustomerShipmentsQuery(customerID kernel.UUID) (ListCustomerShipmentsQuery, error) {
	if err := customerID.Validate(); err != nil {
		return ListCustomerShipmentsQuery{}, err
	}
	return ListCustomerShipmentsQuery{customerID: customerID, guard: guard.NewConstructorGuard()}, nil
}

func (q ListCustomerShipmentsQuery) Validate() error {
	return q.guard.Validate(ErrListCustomerShipmentsQueryIsNotConstructed)
}

func (q ListCustomerShipmentsQuery) CustomerID() kernel.UUID {
	return q.customerID
}

type ListCustomerShipmentsQueryHandler struct {
	db *gorm.DB
}

func NewListCustomerShipmentsQueryHandler(db *gorm.DB) ListCustomerShipmentsQueryHandler {
	return ListCustomerShipmentsQueryHandler{db: db}
}

func (h ListCustomerShipmentsQueryHandler) Handle(
	ctx context.Context,
	query ListCustomerShipmentsQuery,
) ([]ShipmentView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var rows []shipmentRow
	if err := h.db.WithContext(ctx).Raw(`
		SELECT `+shipmentColumns+`
		FROM shipments s
		WHERE s.customer_id = ?
		ORDER BY s.created_at DESC, s.id
	`, query.CustomerID().Google()).Scan(&rows).Error; err != nil {
		return nil, err
	}

	return shipmentViews(rows)
}
