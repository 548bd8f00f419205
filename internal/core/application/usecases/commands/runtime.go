package commands

import (
	"context"
	"time"

	"github.com/zoobzio/clockz"
	"go.uber.org/zap"

	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/core/ports"
)

// DispatchLocker serialises work on shared keys inside the process.
// keylock.Mutex implements it.
type DispatchLocker interface {
	Lock(keys ...string) (unlock func())
}

// Runtime carries what every handler needs besides its unit of work.
//
// Handlers lock in a fixed order: the shipment key first, then the zone keys
// in a single call. A zone key is held from before deliverers are read until
// after commit, so two handlers never see the same free slot.
type Runtime struct {
	clock     clockz.Clock
	locker    DispatchLocker
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewRuntime fills unset collaborators with working defaults: the real clock,
// no locking, no publishing and a no-op logger.
func NewRuntime(clock clockz.Clock, locker DispatchLocker, publisher ports.EventPublisher, logger *zap.Logger) Runtime {
	if clock == nil {
		clock = clockz.RealClock
	}
	if locker == nil {
		locker = noLocker{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return Runtime{
		clock:     clock,
		locker:    locker,
		publisher: publisher,
		logger:    logger,
	}
}

func (r Runtime) now() time.Time {
	return r.clock.Now().UTC()
}

func (r Runtime) lockShipment(id kernel.UUID) func() {
	return r.locker.Lock("shipment/" + id.String())
}

func (r Runtime) lockZones(zones ...string) func() {
	keys := make([]string, 0, len(zones))
	for _, z := range zones {
		keys = append(keys, "zone/"+kernel.ZoneKey(z))
	}
	return r.locker.Lock(keys...)
}

// lockRate serialises writes of the active rate, in the repository and the cache.
func (r Runtime) lockRate() func() {
	return r.locker.Lock("rate")
}

// publish sends committed events. A failure is logged and otherwise ignored:
// the state change already happened.
func (r Runtime) publish(ctx context.Context, events ...ports.Event) {
	if r.publisher == nil || len(events) == 0 {
		return
	}
	if err := r.publisher.Publish(ctx, events...); err != nil {
		names := make([]string, 0, len(events))
		for _, e := range events {
			names = append(names, e.Name)
		}
		r.logger.Error("failed to publish events", zap.Strings("events", names), zap.Error(err))
	}
}

func (r Runtime) event(name string, aggregateID kernel.UUID, payload map[string]any) ports.Event {
	return ports.Event{
		Name:        name,
		AggregateID: aggregateID.String(),
		OccurredAt:  r.now(),
		Payload:     payload,
	}
}

type noLocker struct{}

func (noLocker) Lock(...string) func() {
	return func() {}
}
