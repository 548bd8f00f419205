package postgres

import (
	"sameday/internal/adapters/out/postgres/delivererrepo"
	"sameday/internal/adapters/out/postgres/incidentrepo"
	"sameday/internal/adapters/out/postgres/raterepo"
	"sameday/internal/adapters/out/postgres/shipmentrepo"

	"gorm.io/gorm"
)

// Models lists every table the service owns, parents before children.
func Models() []any {
	return []any{
		&shipmentrepo.ShipmentDTO{},
		&shipmentrepo.InstructionDTO{},
		&delivererrepo.DelivererDTO{},
		&incidentrepo.IncidentDTO{},
		&raterepo.RateDTO{},
	}
}

// Migrate creates or alters the tables to match the current models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
