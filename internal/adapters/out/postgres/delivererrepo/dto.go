package delivererrepo

import (
	"strings"

	"sameday/internal/core/domain/model/deliverer"
	"sameday/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// DelivererDTO is a deliverer row. The shipments being carried are not
// stored here; they are the shipments whose deliverer_id points at the row.
type DelivererDTO struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Document        string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	Name            string    `gorm:"type:varchar(255);not null"`
	Phone           string    `gorm:"type:varchar(64);not null"`
	Zone            string    `gorm:"type:varchar(120);not null"`
	ZoneKey         string    `gorm:"type:varchar(120);not null;index"`
	X               float64
	Y               float64
	Status          int     `gorm:"type:smallint;not null;index"`
	TotalDeliveries int     `gorm:"not null"`
	AverageRating   float64 `gorm:"not null"`
}

func (DelivererDTO) TableName() string {
	return "deliverers"
}

func fromDomain(d *deliverer.Deliverer) DelivererDTO {
	snap := d.Snapshot()
	return DelivererDTO{
		ID:              snap.ID.Google(),
		Document:        snap.Document,
		Name:            snap.Name,
		Phone:           snap.Phone,
		Zone:            snap.Zone,
		ZoneKey:         kernel.ZoneKey(snap.Zone),
		X:               snap.Location.X(),
		Y:               snap.Location.Y(),
		Status:          int(snap.Status),
		TotalDeliveries: snap.TotalDeliveries,
		AverageRating:   snap.AverageRating,
	}
}

func toDomain(dto DelivererDTO, active []uuid.UUID) (*deliverer.Deliverer, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}

	location, err := kernel.NewLocation(dto.X, dto.Y)
	if err != nil {
		return nil, err
	}

	shipments := make([]kernel.UUID, 0, len(active))
	for _, raw := range active {
		shipmentID, sErr := kernel.UUIDFromGoogle(raw)
		if sErr != nil {
			return nil, sErr
		}
		shipments = append(shipments, shipmentID)
	}

	return deliverer.RestoreDeliverer(deliverer.Snapshot{
		ID:              id,
		Document:        strings.TrimSpace(dto.Document),
		Name:            dto.Name,
		Phone:           dto.Phone,
		Zone:            dto.Zone,
		Location:        location,
		Status:          deliverer.Status(dto.Status),
		ActiveShipments: shipments,
		TotalDeliveries: dto.TotalDeliveries,
		AverageRating:   dto.AverageRating,
	})
}
