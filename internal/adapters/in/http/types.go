package http

import (
	"time"

	"sameday/internal/core/application/usecases/queries"
	"sameday/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type Created struct {
	ID uuid.UUID `json:"id"`
}

type Address struct {
	Street string   `json:"street"`
	City   string   `json:"city,omitempty"`
	Zone   string   `json:"zone"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Lat    *float64 `json:"lat,omitempty"`
	Lon    *float64 `json:"lon,omitempty"`
}

type NewShipment struct {
	CustomerID  uuid.UUID `json:"customerId"`
	Origin      Address   `json:"origin"`
	Destination Address   `json:"destination"`
	Weight      float64   `json:"weight"`
	Volume      float64   `json:"volume"`
	Fragile     bool      `json:"fragile"`
	Insured     bool      `json:"insured"`
	Priority    string    `json:"priority"`
}

type PaymentOutcome struct {
	Succeeded bool   `json:"succeeded"`
	Reference string `json:"reference"`
}

type Assignment struct {
	DelivererID *uuid.UUID `json:"delivererId"`
}

type Reassignment struct {
	Reason string `json:"reason"`
}

type Delivery struct {
	Rating int `json:"rating"`
}

type NewIncident struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

type Resolution struct {
	Solution string `json:"solution"`
}

type NewDeliverer struct {
	Document string  `json:"document"`
	Name     string  `json:"name"`
	Phone    string  `json:"phone"`
	Zone     string  `json:"zone"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

type DelivererStatus struct {
	Status string `json:"status"`
}

// Tariff amounts travel as strings so no precision is lost.
type Tariff struct {
	BaseRate           decimal.Decimal `json:"baseRate"`
	CostPerKm          decimal.Decimal `json:"costPerKm"`
	CostPerKg          decimal.Decimal `json:"costPerKg"`
	CostPerM3          decimal.Decimal `json:"costPerM3"`
	InsuranceSurcharge decimal.Decimal `json:"insuranceSurcharge"`
	FragileSurcharge   decimal.Decimal `json:"fragileSurcharge"`
}

type Rate struct {
	ID            *uuid.UUID `json:"id,omitempty"`
	Tariff        Tariff     `json:"tariff"`
	EffectiveFrom *time.Time `json:"effectiveFrom,omitempty"`
	IsDefault     bool       `json:"isDefault"`
}

type Incident struct {
	ID          uuid.UUID  `json:"id"`
	Type        string     `json:"type"`
	Description string     `json:"description"`
	DelivererID *uuid.UUID `json:"delivererId,omitempty"`
	ReportedAt  time.Time  `json:"reportedAt"`
	Resolution  string     `json:"resolution,omitempty"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
}

type Shipment struct {
	ID               uuid.UUID       `json:"id"`
	CustomerID       uuid.UUID       `json:"customerId"`
	Origin           Address         `json:"origin"`
	Destination      Address         `json:"destination"`
	Weight           float64         `json:"weight"`
	Volume           float64         `json:"volume"`
	Fragile          bool            `json:"fragile"`
	Insured          bool            `json:"insured"`
	Priority         string          `json:"priority"`
	Status           string          `json:"status"`
	Distance         float64         `json:"distance"`
	Cost             decimal.Decimal `json:"cost"`
	DelivererID      *uuid.UUID      `json:"delivererId,omitempty"`
	EstimatedMinutes int             `json:"estimatedMinutes"`
	CreatedAt        time.Time       `json:"createdAt"`
	PaidAt           *time.Time      `json:"paidAt,omitempty"`
	AssignedAt       *time.Time      `json:"assignedAt,omitempty"`
	DeliveredAt      *time.Time      `json:"deliveredAt,omitempty"`
	Instructions     []string        `json:"instructions,omitempty"`
	Incidents        []Incident      `json:"incidents,omitempty"`
}

type Deliverer struct {
	ID              uuid.UUID `json:"id"`
	Document        string    `json:"document"`
	Name            string    `json:"name"`
	Phone           string    `json:"phone"`
	Zone            string    `json:"zone"`
	X               float64   `json:"x"`
	Y               float64   `json:"y"`
	Status          string    `json:"status"`
	Load            int       `json:"load"`
	TotalDeliveries int       `json:"totalDeliveries"`
	AverageRating   float64   `json:"averageRating"`
}

type Workload struct {
	Deliverer Deliverer  `json:"deliverer"`
	Current   []Shipment `json:"current"`
	History   []Shipment `json:"history"`
}

type DispatchSummary struct {
	Assigned int `json:"assigned"`
	Waiting  int `json:"waiting"`
	Failed   int `json:"failed"`
}

func toShipment(v queries.ShipmentView) Shipment {
	return Shipment{
		ID:               v.ID.Google(),
		CustomerID:       v.CustomerID.Google(),
		Origin:           toAddress(v.Origin),
		Destination:      toAddress(v.Destination),
		Weight:           v.Weight,
		Volume:           v.Volume,
		Fragile:          v.Fragile,
		Insured:          v.Insured,
		Priority:         v.Priority,
		Status:           v.Status,
		Distance:         v.Distance,
		Cost:             v.Cost,
		DelivererID:      googleID(v.DelivererID),
		EstimatedMinutes: v.EstimatedMinutes,
		CreatedAt:        v.CreatedAt,
		PaidAt:           v.PaidAt,
		AssignedAt:       v.AssignedAt,
		DeliveredAt:      v.DeliveredAt,
	}
}

func toShipments(views []queries.ShipmentView) []Shipment {
	out := make([]Shipment, 0, len(views))
	for _, v := range views {
		out = append(out, toShipment(v))
	}
	return out
}

func toAddress(v queries.AddressView) Address {
	return Address{
		Street: v.Street,
		City:   v.City,
		Zone:   v.Zone,
		X:      v.X,
		Y:      v.Y,
		Lat:    v.Lat,
		Lon:    v.Lon,
	}
}

func toIncident(v queries.IncidentView) Incident {
	return Incident{
		ID:          v.ID.Google(),
		Type:        v.Type,
		Description: v.Description,
		DelivererID: googleID(v.DelivererID),
		ReportedAt:  v.ReportedAt,
		Resolution:  v.Resolution,
		ResolvedAt:  v.ResolvedAt,
	}
}

func toDeliverer(v queries.DelivererView) Deliverer {
	return Deliverer{
		ID:              v.ID.Google(),
		Document:        v.Document,
		Name:            v.Name,
		Phone:           v.Phone,
		Zone:            v.Zone,
		X:               v.X,
		Y:               v.Y,
		Status:          v.Status,
		Load:            v.Load,
		TotalDeliveries: v.TotalDeliveries,
		AverageRating:   v.AverageRating,
	}
}

func googleID(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	g := id.Google()
	return &g
}
