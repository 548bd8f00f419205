// Package shipment holds the Shipment aggregate and its lifecycle.
//
// A shipment is created Pending, paid, assigned to a deliverer, carried and
// delivered. Incidents that make the current deliverer unable to finish send
// it back through PendingReassignment. Delivered and Cancelled are terminal:
// every mutation attempted on them fails with ErrTerminalShipment.
//
// Status owns the transition table; Shipment owns the rules tying status to
// the deliverer reference, the payment record and the instruction log.
package shipment
