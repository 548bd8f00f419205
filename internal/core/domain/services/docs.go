// Package services holds domain logic that spans aggregates: pricing,
// distance, travel time estimates and the dispatcher that pairs shipments
// with deliverers.
//
// Services are stateless values. Persistence, locking and time are supplied
// by the application layer.
package services
