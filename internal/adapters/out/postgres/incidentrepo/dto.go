package incidentrepo

import (
	"time"

	"sameday/internal/core/domain/model/incident"
	"sameday/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

type IncidentDTO struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ShipmentID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	DelivererID *uuid.UUID `gorm:"type:uuid"`
	Type        int        `gorm:"type:smallint;not null"`
	Description string     `gorm:"type:text;not null"`
	ReportedAt  time.Time  `gorm:"not null"`
	Resolution  string     `gorm:"type:text"`
	ResolvedAt  *time.Time
}

func (IncidentDTO) TableName() string {
	return "incidents"
}

func fromDomain(i *incident.Incident) IncidentDTO {
	dto := IncidentDTO{
		ID:          i.ID().Google(),
		ShipmentID:  i.ShipmentID().Google(),
		Type:        int(i.Type()),
		Description: i.Description(),
		ReportedAt:  i.ReportedAt(),
		Resolution:  i.Resolution(),
		ResolvedAt:  i.ResolvedAt(),
	}
	if d := i.Deliverer(); d != nil {
		raw := d.Google()
		dto.DelivererID = &raw
	}
	return dto
}

func toDomain(dto IncidentDTO) (*incident.Incident, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}
	shipmentID, err := kernel.UUIDFromGoogle(dto.ShipmentID)
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

	return incident.RestoreIncident(
		id,
		shipmentID,
		delivererID,
		incident.Type(dto.Type),
		dto.Description,
		dto.ReportedAt,
		dto.Resolution,
		dto.ResolvedAt,
	)
}
