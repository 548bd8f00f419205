package shipmentrepo

import (
	"context"
	"errors"

	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/core/domain/model/shipment"
	"sameday/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormShipmentRepository implements ShipmentRepository using GORM.
type GormShipmentRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormShipmentRepository(db *gorm.DB, tracker aggregateTracker) *GormShipmentRepository {
	return &GormShipmentRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new shipment together with its instruction log.
func (r *GormShipmentRepository) Add(ctx context.Context, aggregate *shipment.Shipment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update overwrites every column of the shipment row, so cleared fields such
// as a released deliverer are written as NULL. Instructions are append-only:
// lines already stored are left alone.
func (r *GormShipmentRepository) Update(ctx context.Context, aggregate *shipment.Shipment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	db := r.db.WithContext(ctx)

	result := db.Model(&ShipmentDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Omit(clause.Associations).
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	if len(dto.Instructions) > 0 {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&dto.Instructions).Error; err != nil {
			return err
		}
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormShipmentRepository) Get(ctx context.Context, id kernel.UUID) (*shipment.Shipment, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto ShipmentDTO
	if err := r.withInstructions(ctx).First(&dto, "id = ?", id.Google()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("shipment", id.String())
		}
		return nil, err
	}

	incidents, err := r.incidentIDs(ctx, dto.ID)
	if err != nil {
		return nil, err
	}

	return toDomain(dto, incidents[dto.ID])
}

// GetAwaitingDeliverer returns paid shipments waiting for a deliverer, the
// most urgent and then the oldest first.
func (r *GormShipmentRepository) GetAwaitingDeliverer(ctx context.Context, limit int) ([]*shipment.Shipment, error) {
	query := r.withInstructions(ctx).
		Where("status IN ?", []int{int(shipment.Pending), int(shipment.PendingReassignment)}).
		Where("paid_at IS NOT NULL").
		Order("priority DESC").
		Order("created_at ASC").
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var dtos []ShipmentDTO
	if err := query.Find(&dtos).Error; err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(dtos))
	for _, dto := range dtos {
		ids = append(ids, dto.ID)
	}
	incidents, err := r.incidentIDs(ctx, ids...)
	if err != nil {
		return nil, err
	}

	shipments := make([]*shipment.Shipment, 0, len(dtos))
	for _, dto := range dtos {
		s, err := toDomain(dto, incidents[dto.ID])
		if err != nil {
			return nil, err
		}
		shipments = append(shipments, s)
	}

	return shipments, nil
}

func (r *GormShipmentRepository) withInstructions(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Instructions", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

type incidentRef struct {
	ID         uuid.UUID
	ShipmentID uuid.UUID
}

// incidentIDs reads the incidents recorded against the given shipments in
// the order they were reported.
func (r *GormShipmentRepository) incidentIDs(ctx context.Context, shipmentIDs ...uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	result := make(map[uuid.UUID][]uuid.UUID, len(shipmentIDs))
	if len(shipmentIDs) == 0 {
		return result, nil
	}

	var refs []incidentRef
	if err := r.db.WithContext(ctx).
		Table("incidents").
		Select("id, shipment_id").
		Where("shipment_id IN ?", shipmentIDs).
		Order("reported_at ASC").
		Order("id ASC").
		Scan(&refs).Error; err != nil {
		return nil, err
	}

	for _, ref := range refs {
		result[ref.ShipmentID] = append(result[ref.ShipmentID], ref.ID)
	}
	return result, nil
}
