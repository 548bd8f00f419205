// Package deliverer models the couriers that carry shipments inside a zone.
//
// A deliverer carries at most MaxConcurrentShipments shipments. Its status is
// either chosen (Available, OnBreak, OffDuty) or follows from its load
// (Active below capacity, Busy at capacity). Which shipments a deliverer
// carries is recorded on the shipments; the list held here is a view of it.
package deliverer
