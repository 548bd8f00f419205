package queries

import (
	"errors"
	"time"

	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/pkg/guard"
)

var ErrGetShipmentQueryIsNotConstructed = errors.New(
	"GetShipmentQuery must be created via NewGetShipmentQuery constructor",
)

// GetShipmentQuery fetches one shipment with its instructions and incidents.
//
// Example:
//
//	query, err := NewGetShipmentQuery(id)
//	if err != nil {
//	    return err
//	}
//	details, err := handler.Handle(ctx, query)
type GetShipmentQuery struct {
	shipmentID kernel.UUID
	guard      guard.ConstructorGuard
}

func NewGetShipmentQuery(shipmentID kernel.UUID) (GetShipmentQuery, error) {
	if err := shipmentID.Validate(); err != nil {
		return GetShipmentQuery{}, err
	}
	return GetShipmentQuery{shipmentID: shipmentID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetShipmentQuery) Validate() error {
	return q.guard.Validate(ErrGetShipmentQueryIsNotConstructed)
}

func (q GetShipmentQuery) ShipmentID() kernel.UUID {
	return q.shipmentID
}

// IncidentView is an incident as shown next to its shipment.
type IncidentView struct {
	ID          kernel.UUID
	Type        string
	Description string
	DelivererID *kernel.UUID
	ReportedAt  time.Time
	Resolution  string
	ResolvedAt  *time.Time
}

// GetShipmentQueryResponse is the full picture of a shipment.
type GetShipmentQueryResponse struct {
	ShipmentView
	Instructions []string
	Incidents    []IncidentView
}
