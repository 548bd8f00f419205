package ports

import (
	"context"

	"sameday/internal/core/domain/model/incident"
	"sameday/internal/core/domain/model/kernel"
)

type IncidentRepository interface {
	Add(ctx context.Context, aggregate *incident.Incident) error
	Update(ctx context.Context, aggregate *incident.Incident) error
	Get(ctx context.Context, id kernel.UUID) (*incident.Incident, error)
}
