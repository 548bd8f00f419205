// Package incident records problems reported during delivery.
//
// Only two kinds of incident take the shipment away from its deliverer:
// InaccessibleZone and DelivererUnavailable. Type.RequiresReassignment is the
// one place that decision is made.
package incident
