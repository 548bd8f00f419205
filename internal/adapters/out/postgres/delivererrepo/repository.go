// Package delivererrepo persists deliverers. A deliverer's workload is read
// from the shipments table each time the deliverer is loaded.
package delivererrepo

import (
	"context"
	"errors"
	"strings"

	"sameday/internal/core/domain/model/deliverer"
	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/core/domain/model/shipment"
	"sameday/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrDocumentAlreadyRegistered = errs.NewValueIsInvalidErrorWithCause("document", errors.New("already registered"))

// GormDelivererRepository implements DelivererRepository using GORM.
type GormDelivererRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormDelivererRepository(db *gorm.DB, tracker aggregateTracker) *GormDelivererRepository {
	return &GormDelivererRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormDelivererRepository) Add(ctx context.Context, aggregate *deliverer.Deliverer) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	db := r.db.WithContext(ctx)

	var taken int64
	if err := db.Model(&DelivererDTO{}).Where("document = ?", dto.Document).Count(&taken).Error; err != nil {
		return err
	}
	if taken > 0 {
		return ErrDocumentAlreadyRegistered
	}

	if err := db.Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDocumentAlreadyRegistered
		}
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes the deliverer's own columns. The carried shipments follow
// from the shipment rows and are not touched here.
func (r *GormDelivererRepository) Update(ctx context.Context, aggregate *deliverer.Deliverer) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&DelivererDTO{}).Where("id = ?", dto.ID).Select("*").Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormDelivererRepository) Get(ctx context.Context, id kernel.UUID) (*deliverer.Deliverer, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto DelivererDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Google()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("deliverer", id.String())
		}
		return nil, err
	}

	return r.hydrateOne(ctx, dto)
}

func (r *GormDelivererRepository) GetByDocument(ctx context.Context, document string) (*deliverer.Deliverer, error) {
	document = strings.TrimSpace(document)
	if document == "" {
		return nil, deliverer.ErrDocumentIsRequired
	}

	var dto DelivererDTO
	if err := r.db.WithContext(ctx).First(&dto, "document = ?", document).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("deliverer", document)
		}
		return nil, err
	}

	return r.hydrateOne(ctx, dto)
}

// GetAvailableInZone returns the deliverers of zone that can take another
// shipment, best rated first. On PostgreSQL the selected rows are locked
// FOR UPDATE until the surrounding transaction ends.
func (r *GormDelivererRepository) GetAvailableInZone(ctx context.Context, zone string) ([]*deliverer.Deliverer, error) {
	if strings.TrimSpace(zone) == "" {
		return nil, kernel.ErrZoneIsRequired
	}

	query := r.db.WithContext(ctx).
		Where("zone_key = ?", kernel.ZoneKey(zone)).
		Where("status IN ?", []int{int(deliverer.Available), int(deliverer.Active)}).
		Order("average_rating DESC").
		Order("id ASC")
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var dtos []DelivererDTO
	if err := query.Find(&dtos).Error; err != nil {
		return nil, err
	}

	all, err := r.hydrate(ctx, dtos)
	if err != nil {
		return nil, err
	}

	available := make([]*deliverer.Deliverer, 0, len(all))
	for _, d := range all {
		if d.CanAcceptShipment() {
			available = append(available, d)
		}
	}
	return available, nil
}

func (r *GormDelivererRepository) hydrateOne(ctx context.Context, dto DelivererDTO) (*deliverer.Deliverer, error) {
	all, err := r.hydrate(ctx, []DelivererDTO{dto})
	if err != nil {
		return nil, err
	}
	return all[0], nil
}

type carriedShipment struct {
	ID          uuid.UUID
	DelivererID uuid.UUID
}

// hydrate attaches to each deliverer the shipments that reference it and are
// still on the road, in the order they were assigned.
func (r *GormDelivererRepository) hydrate(ctx context.Context, dtos []DelivererDTO) ([]*deliverer.Deliverer, error) {
	if len(dtos) == 0 {
		return []*deliverer.Deliverer{}, nil
	}

	ids := make([]uuid.UUID, 0, len(dtos))
	for _, dto := range dtos {
		ids = append(ids, dto.ID)
	}

	var carried []carriedShipment
	if err := r.db.WithContext(ctx).
		Table("shipments").
		Select("id, deliverer_id").
		Where("deliverer_id IN ?", ids).
		Where("status IN ?", ActiveShipmentStatuses()).
		Order("assigned_at ASC").
		Order("id ASC").
		Scan(&carried).Error; err != nil {
		return nil, err
	}

	byDeliverer := make(map[uuid.UUID][]uuid.UUID, len(dtos))
	for _, c := range carried {
		byDeliverer[c.DelivererID] = append(byDeliverer[c.DelivererID], c.ID)
	}

	deliverers := make([]*deliverer.Deliverer, 0, len(dtos))
	for _, dto := range dtos {
		d, err := toDomain(dto, byDeliverer[dto.ID])
		if err != nil {
			return nil, err
		}
		deliverers = append(deliverers, d)
	}
	return deliverers, nil
}

// ActiveShipmentStatuses are the shipment statuses that count towards a
// deliverer's load.
func ActiveShipmentStatuses() []int {
	return []int{int(shipment.Assigned), int(shipment.InTransit), int(shipment.Incident)}
}
