// Package shipmentrepo persists shipment aggregates. The instruction log lives
// in its own append-only table; incident ids are read back from the incidents
// table.
package shipmentrepo

import (
	"time"

	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/core/domain/model/shipment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ShipmentDTO struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey"`
	CustomerID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	Origin       AddressDTO       `gorm:"embedded;embeddedPrefix:origin_"`
	Destination  AddressDTO       `gorm:"embedded;embeddedPrefix:destination_"`
	Parcel       ParcelDTO        `gorm:"embedded;embeddedPrefix:parcel_"`
	Priority     int              `gorm:"type:smallint;not null"`
	Distance     float64          `gorm:"not null"`
	Cost         decimal.Decimal  `gorm:"type:numeric(14,2);not null"`
	Status       int              `gorm:"type:smallint;not null;index"`
	DelivererID  *uuid.UUID       `gorm:"type:uuid;index"`
	CreatedAt    time.Time        `gorm:"not null"`
	PaidAt       *time.Time
	AssignedAt   *time.Time
	DeliveredAt  *time.Time
	Instructions []InstructionDTO `gorm:"foreignKey:ShipmentID;constraint:OnDelete:CASCADE"`
}

func (ShipmentDTO) TableName() string {
	return "shipments"
}

// AddressDTO is embedded twice, once per end of the trip. ZoneKey is the
// lower-cased zone used for matching.
type AddressDTO struct {
	Street  string `gorm:"type:varchar(255);not null"`
	City    string `gorm:"type:varchar(120)"`
	Zone    string `gorm:"type:varchar(120);not null"`
	ZoneKey string `gorm:"type:varchar(120);not null;index"`
	X       float64
	Y       float64
	Lat     *float64
	Lon     *float64
}

type ParcelDTO struct {
	Weight  float64 `gorm:"not null"`
	Volume  float64 `gorm:"not null"`
	Fragile bool    `gorm:"not null"`
	Insured bool    `gorm:"not null"`
}

// InstructionDTO is one line of a shipment's instruction log.
type InstructionDTO struct {
	ShipmentID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position   int       `gorm:"primaryKey;autoIncrement:false"`
	Text       string    `gorm:"type:text;not null"`
}

func (InstructionDTO) TableName() string {
	return "shipment_instructions"
}

func fromDomain(s *shipment.Shipment) ShipmentDTO {
	snap := s.Snapshot()
	id := snap.ID.Google()

	var delivererID *uuid.UUID
	if snap.DelivererID != nil {
		raw := snap.DelivererID.Google()
		delivererID = &raw
	}

	instructions := make([]InstructionDTO, 0, len(snap.Instructions))
	for i, text := range snap.Instructions {
		instructions = append(instructions, InstructionDTO{ShipmentID: id, Position: i, Text: text})
	}

	return ShipmentDTO{
		ID:          id,
		CustomerID:  snap.CustomerID.Google(),
		Origin:      addressFromDomain(snap.Origin),
		Destination: addressFromDomain(snap.Destination),
		Parcel: ParcelDTO{
			Weight:  snap.Parcel.Weight(),
			Volume:  snap.Parcel.Volume(),
			Fragile: snap.Parcel.Fragile(),
			Insured: snap.Parcel.Insured(),
		},
		Priority:     int(snap.Priority),
		Distance:     snap.Distance,
		Cost:         snap.Cost.Amount(),
		Status:       int(snap.Status),
		DelivererID:  delivererID,
		CreatedAt:    snap.CreatedAt,
		PaidAt:       snap.PaidAt,
		AssignedAt:   snap.AssignedAt,
		DeliveredAt:  snap.DeliveredAt,
		Instructions: instructions,
	}
}

func addressFromDomain(a kernel.Address) AddressDTO {
	dto := AddressDTO{
		Street:  a.Street(),
		City:    a.City(),
		Zone:    a.Zone(),
		ZoneKey: kernel.ZoneKey(a.Zone()),
		X:       a.Location().X(),
		Y:       a.Location().Y(),
	}
	if geo, ok := a.GeoPoint(); ok {
		lat, lon := geo.Lat(), geo.Lon()
		dto.Lat = &lat
		dto.Lon = &lon
	}
	return dto
}

// toDomain rebuilds a shipment. incidentIDs come from the incidents table.
func toDomain(dto ShipmentDTO, incidentIDs []uuid.UUID) (*shipment.Shipment, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromGoogle(dto.CustomerID)
	if err != nil {
		return nil, err
	}

	var delivererID *kernel.UUID
	if dto.DelivererID != nil {
		dID, dErr := kernel.UUIDFromGoogle(*dto.DelivererID)
		if dErr != nil {
			return nil, dErr
		}
		delivererID = &dID
	}

	origin, err := addressToDomain(dto.Origin)
	if err != nil {
		return nil, err
	}
	destination, err := addressToDomain(dto.Destination)
	if err != nil {
		return nil, err
	}

	parcel, err := shipment.NewParcel(dto.Parcel.Weight, dto.Parcel.Volume, dto.Parcel.Fragile, dto.Parcel.Insured)
	if err != nil {
		return nil, err
	}

	cost, err := kernel.NewMoney(dto.Cost)
	if err != nil {
		return nil, err
	}

	instructions := make([]string, len(dto.Instructions))
	for _, line := range dto.Instructions {
		if line.Position >= 0 && line.Position < len(instructions) {
			instructions[line.Position] = line.Text
		}
	}

	incidents := make([]kernel.UUID, 0, len(incidentIDs))
	for _, raw := range incidentIDs {
		incidentID, iErr := kernel.UUIDFromGoogle(raw)
		if iErr != nil {
			return nil, iErr
		}
		incidents = append(incidents, incidentID)
	}

	return shipment.RestoreShipment(shipment.Snapshot{
		ID:           id,
		CustomerID:   customerID,
		Origin:       origin,
		Destination:  destination,
		Parcel:       parcel,
		Priority:     shipment.Priority(dto.Priority),
		Distance:     dto.Distance,
		Cost:         cost,
		Status:       shipment.Status(dto.Status),
		DelivererID:  delivererID,
		CreatedAt:    dto.CreatedAt,
		PaidAt:       dto.PaidAt,
		AssignedAt:   dto.AssignedAt,
		DeliveredAt:  dto.DeliveredAt,
		Instructions: instructions,
		IncidentIDs:  incidents,
	})
}

func addressToDomain(dto AddressDTO) (kernel.Address, error) {
	loc, err := kernel.NewLocation(dto.X, dto.Y)
	if err != nil {
		return kernel.Address{}, err
	}

	var geo *kernel.GeoPoint
	if dto.Lat != nil && dto.Lon != nil {
		point, gErr := kernel.NewGeoPoint(*dto.Lat, *dto.Lon)
		if gErr != nil {
			return kernel.Address{}, gErr
		}
		geo = &point
	}

	return kernel.NewAddress(dto.Street, dto.City, dto.Zone, loc, geo)
}
