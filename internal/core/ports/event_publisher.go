package ports

import (
	"context"
	"time"
)

// Domain event names, also used as message routing keys.
const (
	EventShipmentCreated     = "shipment.created"
	EventShipmentPaid        = "shipment.paid"
	EventShipmentAssigned    = "shipment.assigned"
	EventShipmentReassigned  = "shipment.reassigned"
	EventShipmentInTransit   = "shipment.in_transit"
	EventShipmentDelivered   = "shipment.delivered"
	EventShipmentCancelled   = "shipment.cancelled"
	EventIncidentReported    = "incident.reported"
	EventIncidentResolved    = "incident.resolved"
	EventDelivererRegistered = "deliverer.registered"
	EventRateActivated       = "rate.activated"
)

// Event is a fact about the domain that already happened and was committed.
type Event struct {
	Name        string         `json:"name"`
	AggregateID string         `json:"aggregateId"`
	OccurredAt  time.Time      `json:"occurredAt"`
	Payload     map[string]any `json:"payload,omitempty"`
}

// EventPublisher ships events to other systems. It is called after commit,
// so a failure does not undo the change.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
}
