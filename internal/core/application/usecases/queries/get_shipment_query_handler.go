package queries

import (
	"context"

	"sameday/internal/core/domain/model/incident"
	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetShipmentQueryHandler struct {
	db *gorm.DB
}

func NewGetShipmentQueryHandler(db *gorm.DB) GetShipmentQueryHandler {
	return GetShipmentQueryHandler{db: db}
}

// Handle returns errs.ErrObjectNotFound for an unknown shipment.
func (h GetShipmentQueryHandler) Handle(ctx context.Context, query GetShipmentQuery) (GetShipmentQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetShipmentQueryResponse{}, err
	}

	id := query.ShipmentID()
	db := h.db.WithContext(ctx)

	var rows []shipmentRow
	if err := db.Raw(`SELECT `+shipmentColumns+` FROM shipments s WHERE s.id = ?`, id.Google()).
		Scan(&rows).Error; err != nil {
		return GetShipmentQueryResponse{}, err
	}
	if len(rows) == 0 {
		return GetShipmentQueryResponse{}, errs.NewObjectNotFoundError("shipment", id.String())
	}

	view, err := rows[0].view()
	if err != nil {
		return GetShipmentQueryResponse{}, err
	}

	instructions := make([]string, 0)
	if err := db.Raw(`
		SELECT text
		FROM shipment_instructions
		WHERE shipment_id = ?
		ORDER BY position
	`, id.Google()).Scan(&instructions).Error; err != nil {
		return GetShipmentQueryResponse{}, err
	}

	incidents, err := h.incidents(ctx, id.Google())
	if err != nil {
		return GetShipmentQueryResponse{}, err
	}

	return GetShipmentQueryResponse{
		ShipmentView: view,
		Instructions: instructions,
		Incidents:    incidents,
	}, nil
}

func (h GetShipmentQueryHandler) incidents(ctx context.Context, shipmentID uuid.UUID) ([]IncidentView, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			type,
			description,
			deliverer_id,
			reported_at,
			resolution,
			resolved_at
		FROM incidents
		WHERE shipment_id = ?
		ORDER BY reported_at, id
	`, shipmentID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	incidents := make([]IncidentView, 0)
	for rows.Next() {
		var (
			row struct {
				ID          uuid.UUID
				Type        int
				Description string
				DelivererID *uuid.UUID
				Resolution  *string
			}
			view IncidentView
		)

		if err := rows.Scan(
			&row.ID,
			&row.Type,
			&row.Description,
			&row.DelivererID,
			&view.ReportedAt,
			&row.Resolution,
			&view.ResolvedAt,
		); err != nil {
			return nil, err
		}

		if view.ID, err = kernel.UUIDFromGoogle(row.ID); err != nil {
			return nil, err
		}
		if view.DelivererID, err = optionalID(row.DelivererID); err != nil {
			return nil, err
		}
		view.Type = incident.Type(row.Type).String()
		view.Description = row.Description
		if row.Resolution != nil {
			view.Resolution = *row.Resolution
		}
		view.ReportedAt = view.ReportedAt.UTC()
		view.ResolvedAt = utc(view.ResolvedAt)
		incidents = append(incidents, view)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return incidents, nil
}
