package queries

import (
	"context"
	"errors"

	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/core/domain/model/shipment"
	"sameday/internal/pkg/guard"

	"gorm.io/gorm"
)

var ErrListPendingShipmentsByZoneQueryIsNotConstructed = errors.New(
	"ListPendingShipmentsByZoneQuery must be created via NewListPendingShipmentsByZoneQuery constructor",
)

// ListPendingShipmentsByZoneQuery lists the shipments bound for a zone that
// still wait for a deliverer, paid or not. The most urgent come first and,
// within a priority, the oldest.
type ListPendingShipmentsByZoneQuery struct {
	zone  string
	guard guard.ConstructorGuard
}

func NewListPendingShipmentsByZoneQuery(zone string) (ListPendingShipmentsByZoneQuery, error) {
	key := kernel.ZoneKey(zone)
	if key == "" {
		return ListPendingShipmentsByZoneQuery{}, kernel.ErrZoneIsRequired
	}
	return ListPendingShipmentsByZoneQuery{zone: key, guard: guard.NewConstructorGuard()}, nil
}

func (q ListPendingShipmentsByZoneQuery) Validate() error {
	return q.guard.Validate(ErrListPendingShipmentsByZoneQueryIsNotConstructed)
}

// Zone is the normalised zone key.
func (q ListPendingShipmentsByZoneQuery) Zone() string {
	return q.zone
}

type ListPendingShipmentsByZoneQueryHandler struct {
	db *gorm.DB
}

func NewListPendingShipmentsByZoneQueryHandler(db *gorm.DB) ListPendingShipmentsByZoneQueryHandler {
	return ListPendingShipmentsByZoneQueryHandler{db: db}
}

func (h ListPendingShipmentsByZoneQueryHandler) Handle(
	ctx context.Context,
	query ListPendingShipmentsByZoneQuery,
) ([]ShipmentView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var rows []shipmentRow
	if err := h.db.WithContext(ctx).Raw(`
		SELECT `+shipmentColumns+`
		FROM shipments s
		WHERE s.destination_zone_key = ?
		  AND s.status IN ?
		ORDER BY s.priority DESC, s.created_at ASC, s.id
	`, query.Zone(), []int{int(shipment.Pending), int(shipment.PendingReassignment)}).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	return shipmentViews(rows)
}
