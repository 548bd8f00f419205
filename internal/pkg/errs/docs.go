// Package errs provides the typed errors shared by the shipment dispatch domain.
//
// Every error type pairs a sentinel (ErrObjectNotFound, ErrValueIsInvalid,
// ErrValueIsOutOfRange, ErrValueIsRequired, ErrStateTransitionIsInvalid) with a
// struct carrying the details. Unwrap returns the sentinel, so callers classify
// failures with errors.Is and never by message:
//
//	if errors.Is(err, errs.ErrObjectNotFound) {
//	    return ctx.JSON(http.StatusNotFound, ...)
//	}
//
// Constructors come in two flavours, NewXError and NewXErrorWithCause; the
// latter appends "(cause: ...)" to the message.
package errs
