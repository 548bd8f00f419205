package queries

import (
	"time"

	"sameday/internal/core/domain/model/deliverer"
	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/core/domain/model/shipment"
	"sameday/internal/core/domain/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddressView is one end of a trip as stored.
type AddressView struct {
	Street string
	City   string
	Zone   string
	X      float64
	Y      float64
	Lat    *float64
	Lon    *float64
}

// ShipmentView is the read model of a shipment without its logs.
type ShipmentView struct {
	ID               kernel.UUID
	CustomerID       kernel.UUID
	Origin           AddressView
	Destination      AddressView
	Weight           float64
	Volume           float64
	Fragile          bool
	Insured          bool
	Priority         string
	Status           string
	Distance         float64
	Cost             decimal.Decimal
	DelivererID      *kernel.UUID
	EstimatedMinutes int
	CreatedAt        time.Time
	PaidAt           *time.Time
	AssignedAt       *time.Time
	DeliveredAt      *time.Time
}

// DelivererView is the read model of a deliverer. Load counts the shipments
// currently being carried.
type DelivererView struct {
	ID              kernel.UUID
	Document        string
	Name            string
	Phone           string
	Zone            string
	X               float64
	Y               float64
	Status          string
	Load            int
	TotalDeliveries int
	AverageRating   float64
}

const shipmentColumns = `
	s.id, s.customer_id,
	s.origin_street, s.origin_city, s.origin_zone, s.origin_x, s.origin_y, s.origin_lat, s.origin_lon,
	s.destination_street, s.destination_city, s.destination_zone, s.destination_x, s.destination_y,
	s.destination_lat, s.destination_lon,
	s.parcel_weight, s.parcel_volume, s.parcel_fragile, s.parcel_insured,
	s.priority, s.status, s.distance, s.cost, s.deliverer_id,
	s.created_at, s.paid_at, s.assigned_at, s.delivered_at`

type shipmentRow struct {
	ID                uuid.UUID
	CustomerID        uuid.UUID
	OriginStreet      string
	OriginCity        string
	OriginZone        string
	OriginX           float64
	OriginY           float64
	OriginLat         *float64
	OriginLon         *float64
	DestinationStreet string
	DestinationCity   string
	DestinationZone   string
	DestinationX      float64
	DestinationY      float64
	DestinationLat    *float64
	DestinationLon    *float64
	ParcelWeight      float64
	ParcelVolume      float64
	ParcelFragile     bool
	ParcelInsured     bool
	Priority          int
	Status            int
	Distance          float64
	Cost              decimal.Decimal
	DelivererID       *uuid.UUID
	CreatedAt         time.Time
	PaidAt            *time.Time
	AssignedAt        *time.Time
	DeliveredAt       *time.Time
}

func (r shipmentRow) view() (ShipmentView, error) {
	id, err := kernel.UUIDFromGoogle(r.ID)
	if err != nil {
		return ShipmentView{}, err
	}
	customerID, err := kernel.UUIDFromGoogle(r.CustomerID)
	if err != nil {
		return ShipmentView{}, err
	}
	delivererID, err := optionalID(r.DelivererID)
	if err != nil {
		return ShipmentView{}, err
	}

	priority := shipment.Priority(r.Priority)
	return ShipmentView{
		ID:         id,
		CustomerID: customerID,
		Origin: AddressView{
			Street: r.OriginStreet, City: r.OriginCity, Zone: r.OriginZone,
			X: r.OriginX, Y: r.OriginY, Lat: r.OriginLat, Lon: r.OriginLon,
		},
		Destination: AddressView{
			Street: r.DestinationStreet, City: r.DestinationCity, Zone: r.DestinationZone,
			X: r.DestinationX, Y: r.DestinationY, Lat: r.DestinationLat, Lon: r.DestinationLon,
		},
		Weight:           r.ParcelWeight,
		Volume:           r.ParcelVolume,
		Fragile:          r.ParcelFragile,
		Insured:          r.ParcelInsured,
		Priority:         priority.String(),
		Status:           shipment.Status(r.Status).String(),
		Distance:         r.Distance,
		Cost:             r.Cost,
		DelivererID:      delivererID,
		EstimatedMinutes: services.EstimateDeliveryMinutes(r.Distance, priority),
		CreatedAt:        r.CreatedAt.UTC(),
		PaidAt:           utc(r.PaidAt),
		AssignedAt:       utc(r.AssignedAt),
		DeliveredAt:      utc(r.DeliveredAt),
	}, nil
}

func shipmentViews(rows []shipmentRow) ([]ShipmentView, error) {
	views := make([]ShipmentView, 0, len(rows))
	for _, row := range rows {
		v, err := row.view()
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// delivererColumns expects the active statuses as its only bind parameter.
const delivererColumns = `
	d.id, d.document, d.name, d.phone, d.zone, d.x, d.y, d.status,
	d.total_deliveries, d.average_rating,
	(SELECT COUNT(*) FROM shipments s WHERE s.deliverer_id = d.id AND s.status IN ?) AS active_load`

type delivererRow struct {
	ID              uuid.UUID
	Document        string
	Name            string
	Phone           string
	Zone            string
	X               float64
	Y               float64
	Status          int
	TotalDeliveries int
	AverageRating   float64
	ActiveLoad      int
}

func (r delivererRow) view() (DelivererView, error) {
	id, err := kernel.UUIDFromGoogle(r.ID)
	if err != nil {
		return DelivererView{}, err
	}
	return DelivererView{
		ID:              id,
		Document:        r.Document,
		Name:            r.Name,
		Phone:           r.Phone,
		Zone:            r.Zone,
		X:               r.X,
		Y:               r.Y,
		Status:          deliverer.Status(r.Status).String(),
		Load:            r.ActiveLoad,
		TotalDeliveries: r.TotalDeliveries,
		AverageRating:   r.AverageRating,
	}, nil
}

func activeShipmentStatuses() []int {
	return []int{int(shipment.Assigned), int(shipment.InTransit), int(shipment.Incident)}
}

func optionalID(raw *uuid.UUID) (*kernel.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := kernel.UUIDFromGoogle(*raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
