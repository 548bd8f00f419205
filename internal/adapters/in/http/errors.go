package http

import (
	"errors"
	"net/http"

	"sameday/internal/core/domain/model/deliverer"
	"sameday/internal/core/domain/model/incident"
	"sameday/internal/core/domain/model/rate"
	"sameday/internal/core/domain/model/shipment"
	"sameday/internal/core/domain/services"
	"sameday/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// statusOf maps an application error to the HTTP status it is reported with.
// The checks run most specific first: a rating error is also a validation error.
func statusOf(err error) int {
	switch {
	case errors.Is(err, deliverer.ErrInvalidRating):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrNoDelivererAvailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, shipment.ErrTerminalShipment),
		errors.Is(err, errs.ErrStateTransitionIsInvalid),
		errors.Is(err, shipment.ErrAlreadyAssigned),
		errors.Is(err, shipment.ErrNoDelivererAssigned),
		errors.Is(err, shipment.ErrNotPaid),
		errors.Is(err, shipment.ErrAlreadyPaid),
		errors.Is(err, deliverer.ErrDelivererUnavailable),
		errors.Is(err, deliverer.ErrShipmentNotCarried),
		errors.Is(err, incident.ErrIncidentAlreadyResolved),
		errors.Is(err, rate.ErrRateAlreadyRetired):
		return http.StatusConflict
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(ctx echo.Context, err error) error {
	code := statusOf(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		s.logger.Sugar().Errorw("request failed",
			"method", ctx.Request().Method, "path", ctx.Path(), "error", err)
		message = http.StatusText(code)
	}
	return ctx.JSON(code, Error{Code: code, Message: message})
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: message})
}
