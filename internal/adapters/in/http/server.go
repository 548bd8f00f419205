// Package http exposes the application over a JSON REST API built on echo.
// Routes and payloads follow the embedded openapi.yaml.
package http

import (
	"net/http"

	"sameday/internal/core/application/usecases/commands"
	"sameday/internal/core/application/usecases/queries"
	"sameday/internal/core/domain/model/deliverer"
	"sameday/internal/core/domain/model/incident"
	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/core/domain/model/rate"
	"sameday/internal/core/domain/model/shipment"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Handlers lists the use cases the API is a front for.
type Handlers struct {
	CreateShipment          commands.CreateShipmentCommandHandler
	ConfirmPayment          commands.ConfirmPaymentCommandHandler
	AssignDeliverer         commands.AssignDelivererCommandHandler
	ReassignShipment        commands.ReassignShipmentCommandHandler
	StartTransit            commands.StartTransitCommandHandler
	CompleteShipment        commands.CompleteShipmentCommandHandler
	CancelShipment          commands.CancelShipmentCommandHandler
	ReportIncident          commands.ReportIncidentCommandHandler
	ResolveIncident         commands.ResolveIncidentCommandHandler
	RegisterDeliverer       commands.RegisterDelivererCommandHandler
	ChangeDelivererStatus   commands.ChangeDelivererStatusCommandHandler
	ActivateRate            commands.ActivateRateCommandHandler
	AssignAwaitingShipments commands.AssignAwaitingShipmentsCommandHandler

	GetShipment                queries.GetShipmentQueryHandler
	ListCustomerShipments      queries.ListCustomerShipmentsQueryHandler
	ListPendingShipmentsByZone queries.ListPendingShipmentsByZoneQueryHandler
	ListDeliverersByMinRating  queries.ListDeliverersByMinimumRatingQueryHandler
	GetDelivererWorkload       queries.GetDelivererWorkloadQueryHandler
	GetActiveRate              queries.GetActiveRateQueryHandler
}

// Server coordinates between HTTP requests and application use cases.
type Server struct {
	h      Handlers
	logger *zap.Logger
}

func NewServer(handlers Handlers, logger *zap.Logger) *Server {
	return &Server{h: handlers, logger: logger.With(zap.String("component", "http"))}
}

// CreateShipment handles POST /api/v1/shipments.
func (s *Server) CreateShipment(ctx echo.Context) error {
	var body NewShipment
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	customerID, err := kernel.UUIDFromGoogle(body.CustomerID)
	if err != nil {
		return s.fail(ctx, err)
	}
	origin, err := address(body.Origin)
	if err != nil {
		return s.fail(ctx, err)
	}
	destination, err := address(body.Destination)
	if err != nil {
		return s.fail(ctx, err)
	}
	parcel, err := shipment.NewParcel(body.Weight, body.Volume, body.Fragile, body.Insured)
	if err != nil {
		return s.fail(ctx, err)
	}
	priority, err := shipment.ParsePriority(body.Priority)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewCreateShipmentCommand(customerID, origin, destination, parcel, priority)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err := s.h.CreateShipment.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}

	ctx.Response().Header().Set(echo.HeaderLocation, "/api/v1/shipments/"+cmd.ShipmentID().String())
	return ctx.JSON(http.StatusCreated, Created{ID: cmd.ShipmentID().Google()})
}

// GetShipment handles GET /api/v1/shipments/{shipmentId}.
func (s *Server) GetShipment(ctx echo.Context, shipmentID uuid.UUID) error {
	id, err := kernel.UUIDFromGoogle(shipmentID)
	if err != nil {
		return s.fail(ctx, err)
	}
	query, err := queries.NewGetShipmentQuery(id)
	if err != nil {
		return s.fail(ctx, err)
	}

	res, err := s.h.GetShipment.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	out := toShipment(res.ShipmentView)
	out.Instructions = res.Instructions
	for _, inc := range res.Incidents {
		out.Incidents = append(out.Incidents, toIncident(inc))
	}
	return ctx.JSON(http.StatusOK, out)
}

// ConfirmPayment handles POST /api/v1/shipments/{shipmentId}/payment.
func (s *Server) ConfirmPayment(ctx echo.Context, shipmentID uuid.UUID) error {
	var body PaymentOutcome
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	id, err := kernel.UUIDFromGoogle(shipmentID)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewConfirmPaymentCommand(id, body.Succeeded, body.Reference)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err := s.h.ConfirmPayment.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// AssignDeliverer handles POST /api/v1/shipments/{shipmentId}/assignment.
// An empty body asks for the best deliverer of the destination zone.
func (s *Server) AssignDeliverer(ctx echo.Context, shipmentID uuid.UUID) error {
	var body Assignment
	if ctx.Request().ContentLength != 0 {
		if err := ctx.Bind(&body); err != nil {
			return badRequest(ctx, "Invalid request body")
		}
	}
	id, err := kernel.UUIDFromGoogle(shipmentID)
	if err != nil {
		return s.fail(ctx, err)
	}

	var delivererID *kernel.UUID
	if body.DelivererID != nil {
		d, err := kernel.UUIDFromGoogle(*body.DelivererID)
		if err != nil {
			return s.fail(ctx, err)
		}
		delivererID = &d
	}

	cmd, err := commands.NewAssignDelivererCommand(id, delivererID)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err := s.h.AssignDeliverer.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// ReassignShipment handles POST /api/v1/shipments/{shipmentId}/reassignment.
func (s *Server) ReassignShipment(ctx echo.Context, shipmentID uuid.UUID) error {
	var body Reassignment
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	id, err := kernel.UUIDFromGoogle(shipmentID)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewReassignShipmentCommand(id, body.Reason)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err := s.h.ReassignShipment.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// StartTransit handles POST /api/v1/shipments/{shipmentId}/transit.
func (s *Server) StartTransit(ctx echo.Context, shipmentID uuid.UUID) error {
	id, err := kernel.UUIDFromGoogle(shipmentID)
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewStartTransitCommand(id)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err := s.h.StartTransit.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// CompleteShipment handles POST /api/v1/shipments/{shipmentId}/delivery.
func (s *Server) CompleteShipment(ctx echo.Context, shipmentID uuid.UUID) error {
	var body Delivery
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	id, err := kernel.UUIDFromGoogle(shipmentID)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewCompleteShipmentCommand(id, body.Rating)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err := s.h.CompleteShipment.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// CancelShipment handles POST /api/v1/shipments/{shipmentId}/cancellation.
func (s *Server) CancelShipment(ctx echo.Context, shipmentID uuid.UUID) error {
	id, err := kernel.UUIDFromGoogle(shipmentID)
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewCancelShipmentCommand(id)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err := s.h.CancelShipment.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// ReportIncident handles POST /api/v1/shipments/{shipmentId}/incidents.
func (s *Server) ReportIncident(ctx echo.Context, shipmentID uuid.UUID) error {
	var body NewIncident
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	id, err := kernel.UUIDFromGoogle(shipmentID)
	if err != nil {
		return s.fail(ctx, err)
	}
	kind, err := incident.ParseType(body.Type)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewReportIncidentCommand(id, kind, body.Description)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err := s.h.ReportIncident.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, Created{ID: cmd.IncidentID().Google()})
}

// ResolveIncident handles POST /api/v1/incidents/{incidentId}/resolution.
func (s *Server) ResolveIncident(ctx echo.Context, incidentID uuid.UUID) error {
	var body Resolution
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	id, err := kernel.UUIDFromGoogle(incidentID)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewResolveIncidentCommand(id, body.Solution)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err := s.h.ResolveIncident.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// ListCustomerShipments handles GET /api/v1/customers/{customerId}/shipments.
func (s *Server) ListCustomerShipments(ctx echo.Context, customerID uuid.UUID) error {
	id, err := kernel.UUIDFromGoogle(customerID)
	if err != nil {
		return s.fail(ctx, err)
	}
	query, err := queries.NewListCustomerShipmentsQuery(id)
	if err != nil {
		return s.fail(ctx, err)
	}

	views, err := s.h.ListCustomerShipments.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toShipments(views))
}

// ListPendingShipmentsByZone handles GET /api/v1/zones/{zone}/pending-shipments.
func (s *Server) ListPendingShipmentsByZone(ctx echo.Context, zone string) error {
	query, err := queries.NewListPendingShipmentsByZoneQuery(zone)
	if err != nil {
		return s.fail(ctx, err)
	}

	views, err := s.h.ListPendingShipmentsByZone.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toShipments(views))
}

// RegisterDeliverer handles POST /api/v1/deliverers.
func (s *Server) RegisterDeliverer(ctx echo.Context) error {
	var body NewDeliverer
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	location, err := kernel.NewLocation(body.X, body.Y)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewRegisterDelivererCommand(body.Document, body.Name, body.Phone, body.Zone, location)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err := s.h.RegisterDeliverer.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, Created{ID: cmd.DelivererID().Google()})
}

// ListDeliverers handles GET /api/v1/deliverers?minRating=.
func (s *Server) ListDeliverers(ctx echo.Context, minRating *float64) error {
	var minimum float64
	if minRating != nil {
		minimum = *minRating
	}
	query, err := queries.NewListDeliverersByMinimumRatingQuery(minimum)
	if err != nil {
		return s.fail(ctx, err)
	}

	views, err := s.h.ListDeliverersByMinRating.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	out := make([]Deliverer, 0, len(views))
	for _, v := range views {
		out = append(out, toDeliverer(v))
	}
	return ctx.JSON(http.StatusOK, out)
}

// GetDelivererWorkload handles GET /api/v1/deliverers/{delivererId}/workload.
func (s *Server) GetDelivererWorkload(ctx echo.Context, delivererID uuid.UUID) error {
	id, err := kernel.UUIDFromGoogle(delivererID)
	if err != nil {
		return s.fail(ctx, err)
	}
	query, err := queries.NewGetDelivererWorkloadQuery(id)
	if err != nil {
		return s.fail(ctx, err)
	}

	res, err := s.h.GetDelivererWorkload.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, Workload{
		Deliverer: toDeliverer(res.Deliverer),
		Current:   toShipments(res.Current),
		History:   toShipments(res.History),
	})
}

// ChangeDelivererStatus handles PUT /api/v1/deliverers/{delivererId}/status.
func (s *Server) ChangeDelivererStatus(ctx echo.Context, delivererID uuid.UUID) error {
	var body DelivererStatus
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	id, err := kernel.UUIDFromGoogle(delivererID)
	if err != nil {
		return s.fail(ctx, err)
	}
	status, err := deliverer.ParseStatus(body.Status)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewChangeDelivererStatusCommand(id, status)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err := s.h.ChangeDelivererStatus.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// GetActiveRate handles GET /api/v1/rates/active.
func (s *Server) GetActiveRate(ctx echo.Context) error {
	res, err := s.h.GetActiveRate.Handle(ctx.Request().Context(), queries.NewGetActiveRateQuery())
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, Rate{
		ID:            googleID(res.ID),
		Tariff:        toTariff(res.Tariff),
		EffectiveFrom: res.EffectiveFrom,
		IsDefault:     res.IsDefault,
	})
}

// ActivateRate handles POST /api/v1/rates.
func (s *Server) ActivateRate(ctx echo.Context) error {
	var body Tariff
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewActivateRateCommand(rate.Tariff{
		BaseRate:           body.BaseRate,
		CostPerKm:          body.CostPerKm,
		CostPerKg:          body.CostPerKg,
		CostPerM3:          body.CostPerM3,
		InsuranceSurcharge: body.InsuranceSurcharge,
		FragileSurcharge:   body.FragileSurcharge,
	})
	if err != nil {
		return s.fail(ctx, err)
	}
	if err := s.h.ActivateRate.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, Created{ID: cmd.RateID().Google()})
}

// AssignAwaitingShipments handles POST /api/v1/dispatch/awaiting. It runs
// the same pass as the background job, on demand.
func (s *Server) AssignAwaitingShipments(ctx echo.Context, limit *int) error {
	n := 100
	if limit != nil {
		n = *limit
	}
	cmd, err := commands.NewAssignAwaitingShipmentsCommand(n)
	if err != nil {
		return s.fail(ctx, err)
	}

	res, err := s.h.AssignAwaitingShipments.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, DispatchSummary{Assigned: res.Assigned, Waiting: res.Waiting, Failed: res.Failed})
}

func address(a Address) (kernel.Address, error) {
	location, err := kernel.NewLocation(a.X, a.Y)
	if err != nil {
		return kernel.Address{}, err
	}

	var geo *kernel.GeoPoint
	if a.Lat != nil && a.Lon != nil {
		p, err := kernel.NewGeoPoint(*a.Lat, *a.Lon)
		if err != nil {
			return kernel.Address{}, err
		}
		geo = &p
	}
	return kernel.NewAddress(a.Street, a.City, a.Zone, location, geo)
}

func toTariff(t rate.Tariff) Tariff {
	return Tariff{
		BaseRate:           t.BaseRate,
		CostPerKm:          t.CostPerKm,
		CostPerKg:          t.CostPerKg,
		CostPerM3:          t.CostPerM3,
		InsuranceSurcharge: t.InsuranceSurcharge,
		FragileSurcharge:   t.FragileSurcharge,
	}
}
