package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/oapi-codegen/runtime"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

const BaseURL = "/api/v1"

// EchoRouter is the part of echo the routes are registered on.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// serverInterfaceWrapper binds path and query parameters before calling the server.
type serverInterfaceWrapper struct {
	handler *Server
}

func pathUUID(ctx echo.Context, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, ctx.Param(name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
	}
	return id, nil
}

func (w *serverInterfaceWrapper) withShipmentID(next func(echo.Context, uuid.UUID) error) echo.HandlerFunc {
	return w.withUUID("shipmentId", next)
}

func (w *serverInterfaceWrapper) withUUID(name string, next func(echo.Context, uuid.UUID) error) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id, err := pathUUID(ctx, name)
		if err != nil {
			return err
		}
		return next(ctx, id)
	}
}

func (w *serverInterfaceWrapper) ListPendingShipmentsByZone(ctx echo.Context) error {
	var zone string
	err := runtime.BindStyledParameterWithOptions("simple", "zone", ctx.Param("zone"), &zone,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter zone: %s", err))
	}
	return w.handler.ListPendingShipmentsByZone(ctx, zone)
}

func (w *serverInterfaceWrapper) ListDeliverers(ctx echo.Context) error {
	var minRating *float64
	err := runtime.BindQueryParameter("form", true, false, "minRating", ctx.QueryParams(), &minRating)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter minRating: %s", err))
	}
	return w.handler.ListDeliverers(ctx, minRating)
}

func (w *serverInterfaceWrapper) AssignAwaitingShipments(ctx echo.Context) error {
	var limit *int
	err := runtime.BindQueryParameter("form", true, false, "limit", ctx.QueryParams(), &limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter limit: %s", err))
	}
	return w.handler.AssignAwaitingShipments(ctx, limit)
}

// RegisterHandlers adds every API route under baseURL.
func RegisterHandlers(router EchoRouter, si *Server, baseURL string) {
	w := &serverInterfaceWrapper{handler: si}

	router.POST(baseURL+"/shipments", si.CreateShipment)
	router.GET(baseURL+"/shipments/:shipmentId", w.withShipmentID(si.GetShipment))
	router.POST(baseURL+"/shipments/:shipmentId/payment", w.withShipmentID(si.ConfirmPayment))
	router.POST(baseURL+"/shipments/:shipmentId/assignment", w.withShipmentID(si.AssignDeliverer))
	router.POST(baseURL+"/shipments/:shipmentId/reassignment", w.withShipmentID(si.ReassignShipment))
	router.POST(baseURL+"/shipments/:shipmentId/transit", w.withShipmentID(si.StartTransit))
	router.POST(baseURL+"/shipments/:shipmentId/delivery", w.withShipmentID(si.CompleteShipment))
	router.POST(baseURL+"/shipments/:shipmentId/cancellation", w.withShipmentID(si.CancelShipment))
	router.POST(baseURL+"/shipments/:shipmentId/incidents", w.withShipmentID(si.ReportIncident))
	router.POST(baseURL+"/incidents/:incidentId/resolution", w.withUUID("incidentId", si.ResolveIncident))
	router.GET(baseURL+"/customers/:customerId/shipments", w.withUUID("customerId", si.ListCustomerShipments))
	router.GET(baseURL+"/zones/:zone/pending-shipments", w.ListPendingShipmentsByZone)

	router.POST(baseURL+"/deliverers", si.RegisterDeliverer)
	router.GET(baseURL+"/deliverers", w.ListDeliverers)
	router.GET(baseURL+"/deliverers/:delivererId/workload", w.withUUID("delivererId", si.GetDelivererWorkload))
	router.PUT(baseURL+"/deliverers/:delivererId/status", w.withUUID("delivererId", si.ChangeDelivererStatus))

	router.GET(baseURL+"/rates/active", si.GetActiveRate)
	router.POST(baseURL+"/rates", si.ActivateRate)
	router.POST(baseURL+"/dispatch/awaiting", w.AssignAwaitingShipments)
}

// NewEcho builds the web server: API routes, health check, the OpenAPI
// document and the Swagger UI.
func NewEcho(si *Server, logLevel string) (*echo.Echo, error) {
	if err := registerSwagger(); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(echoLogLevel(logLevel))

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			si.logger.Debug("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency))
			return nil
		},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/openapi.yaml", func(c echo.Context) error {
		return c.Blob(http.StatusOK, "application/yaml", openAPIDocument)
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	RegisterHandlers(e, si, BaseURL)
	return e, nil
}

func echoLogLevel(level string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
