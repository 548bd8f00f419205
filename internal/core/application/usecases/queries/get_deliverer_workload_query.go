package queries

import (
	"context"
	"errors"

	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/core/domain/model/shipment"
	"sameday/internal/pkg/errs"
	"sameday/internal/pkg/guard"

	"gorm.io/gorm"
)

var ErrGetDelivererWorkloadQueryIsNotConstructed = errors.New(
	"GetDelivererWorkloadQuery must be created via NewGetDelivererWorkloadQuery constructor",
)

// GetDelivererWorkloadQuery shows what a deliverer carries now and what they
// delivered before.
type GetDelivererWorkloadQuery struct {
	delivererID kernel.UUID
	guard       guard.ConstructorGuard
}

func NewGetDelivererWorkloadQuery(delivererID kernel.UUID) (GetDelivererWorkloadQuery, error) {
	if err := delivererID.Validate(); err != nil {
		return GetDelivererWorkloadQuery{}, err
	}
	return GetDelivererWorkloadQuery{delivererID: delivererID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetDelivererWorkloadQuery) Validate() error {
	return q.guard.Validate(ErrGetDelivererWorkloadQueryIsNotConstructed)
}

func (q GetDelivererWorkloadQuery) DelivererID() kernel.UUID {
	return q.delivererID
}

type GetDelivererWorkloadQueryResponse struct {
	Deliverer DelivererView
	// Current is ordered by assignment time, History by delivery time, latest first.
	Current []ShipmentView
	History []ShipmentView
}

type GetDelivererWorkloadQueryHandler struct {
	db *gorm.DB
}

func NewGetDelivererWorkloadQueryHandler(db *gorm.DB) GetDelivererWorkloadQueryHandler {
	return GetDelivererWorkloadQueryHandler{db: db}
}

func (h GetDelivererWorkloadQueryHandler) Handle(
	ctx context.Context,
	query GetDelivererWorkloadQuery,
) (GetDelivererWorkloadQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetDelivererWorkloadQueryResponse{}, err
	}

	id := query.DelivererID()
	db := h.db.WithContext(ctx)

	var deliverers []delivererRow
	if err := db.Raw(`SELECT `+delivererColumns+` FROM deliverers d WHERE d.id = ?`,
		activeShipmentStatuses(), id.Google()).Scan(&deliverers).Error; err != nil {
		return GetDelivererWorkloadQueryResponse{}, err
	}
	if len(deliverers) == 0 {
		return GetDelivererWorkloadQueryResponse{}, errs.NewObjectNotFoundError("deliverer", id.String())
	}

	view, err := deliverers[0].view()
	if err != nil {
		return GetDelivererWorkloadQueryResponse{}, err
	}

	var current []shipmentRow
	if err := db.Raw(`
		SELECT `+shipmentColumns+`
		FROM shipments s
		WHERE s.deliverer_id = ? AND s.status IN ?
		ORDER BY s.assigned_at, s.id
	`, id.Google(), activeShipmentStatuses()).Scan(&current).Error; err != nil {
		return GetDelivererWorkloadQueryResponse{}, err
	}

	var history []shipmentRow
	if err := db.Raw(`
		SELECT `+shipmentColumns+`
		FROM shipments s
		WHERE s.deliverer_id = ? AND s.status = ?
		ORDER BY s.delivered_at DESC, s.id
	`, id.Google(), int(shipment.Delivered)).Scan(&history).Error; err != nil {
		return GetDelivererWorkloadQueryResponse{}, err
	}

	currentViews, err := shipmentViews(current)
	if err != nil {
		return GetDelivererWorkloadQueryResponse{}, err
	}
	historyViews, err := shipmentViews(history)
	if err != nil {
		return GetDelivererWorkloadQueryResponse{}, err
	}

	return GetDelivererWorkloadQueryResponse{
		Deliverer: view,
		Current:   currentViews,
		History:   historyViews,
	}, nil
}
