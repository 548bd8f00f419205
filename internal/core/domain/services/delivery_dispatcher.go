package services

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"sameday/internal/core/domain/model/deliverer"
	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/core/domain/model/shipment"
	"sameday/internal/pkg/errs"
)

// ErrNoDelivererAvailable is returned when no candidate in the destination
// zone can take the shipment. Callers are expected to retry later.
var ErrNoDelivererAvailable = errors.New("no deliverer available")

// DeliveryDispatcher pairs shipments with deliverers.
//
// Candidates are restricted to the shipment's destination zone and to
// deliverers that can take more load. Among them the one carrying the fewest
// shipments wins, then the best rated, then the lowest id, so the same input
// always yields the same deliverer.
//
// Every method mutates both the shipment and the deliverer in memory. Callers
// persist the two in one transaction.
type DeliveryDispatcher struct{}

func NewDeliveryDispatcher() DeliveryDispatcher {
	return DeliveryDispatcher{}
}

// Match picks the best candidate for the shipment without changing anything.
func (DeliveryDispatcher) Match(s *shipment.Shipment, candidates []*deliverer.Deliverer) (*deliverer.Deliverer, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	zone := s.Destination().Zone()
	eligible := make([]*deliverer.Deliverer, 0, len(candidates))
	for _, c := range candidates {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if c.MatchesZone(zone) && c.CanAcceptShipment() {
			eligible = append(eligible, c)
		}
	}

	if len(eligible) == 0 {
		return nil, ErrNoDelivererAvailable
	}

	slices.SortFunc(eligible, compareCandidates)
	return eligible[0], nil
}

// Assign gives the shipment to d. A deliverer only serves its own zone.
func (DeliveryDispatcher) Assign(s *shipment.Shipment, d *deliverer.Deliverer, now time.Time) error {
	if err := errors.Join(s.Validate(), d.Validate()); err != nil {
		return err
	}
	if s.Deliverer() != nil && !s.Status().IsTerminal() {
		return shipment.ErrAlreadyAssigned
	}
	if !d.CanAcceptShipment() || d.IsCarrying(s.ID()) {
		return deliverer.ErrDelivererUnavailable
	}
	if !s.Status().IsTerminal() && !d.MatchesZone(s.Destination().Zone()) {
		return fmt.Errorf("%w: serves zone %q, shipment goes to %q",
			deliverer.ErrDelivererUnavailable, d.Zone(), s.Destination().Zone())
	}

	if err := s.Assign(d.ID(), now); err != nil {
		return err
	}
	return d.TakeShipment(s.ID())
}

// Dispatch matches and assigns in one step and returns the chosen deliverer.
func (dd DeliveryDispatcher) Dispatch(
	s *shipment.Shipment,
	candidates []*deliverer.Deliverer,
	now time.Time,
) (*deliverer.Deliverer, error) {
	best, err := dd.Match(s, candidates)
	if err != nil {
		return nil, err
	}
	if err := dd.Assign(s, best, now); err != nil {
		return nil, err
	}
	return best, nil
}

// Reassign takes the shipment from current, if it has one, and gives it to
// the best other candidate. current is nil when the shipment is already
// waiting for a deliverer.
//
// When no candidate fits, ErrNoDelivererAvailable is returned with current
// already freed and the shipment left in PendingReassignment; that state is
// meant to be saved.
func (dd DeliveryDispatcher) Reassign(
	s *shipment.Shipment,
	current *deliverer.Deliverer,
	candidates []*deliverer.Deliverer,
	reason string,
	now time.Time,
) (*deliverer.Deliverer, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(reason) == "" {
		return nil, shipment.ErrReasonIsRequired
	}
	if err := checkCurrentDeliverer(s, current); err != nil {
		return nil, err
	}

	released, err := s.ReleaseForReassignment()
	if err != nil {
		return nil, err
	}
	if released != nil {
		current.Free(s.ID())
	}

	others := candidates
	if current != nil {
		others = ExcludeDeliverers(candidates, current.ID())
	}

	next, err := dd.Match(s, others)
	if err != nil {
		return nil, err
	}

	if err := s.Reassign(next.ID(), reason, now); err != nil {
		return nil, err
	}
	if err := next.TakeShipment(s.ID()); err != nil {
		return nil, err
	}
	return next, nil
}

// ExcludeDeliverers returns candidates without the given ids.
func ExcludeDeliverers(candidates []*deliverer.Deliverer, ids ...kernel.UUID) []*deliverer.Deliverer {
	out := make([]*deliverer.Deliverer, 0, len(candidates))
	for _, c := range candidates {
		if !slices.ContainsFunc(ids, c.ID().IsEqual) {
			out = append(out, c)
		}
	}
	return out
}

func checkCurrentDeliverer(s *shipment.Shipment, current *deliverer.Deliverer) error {
	assigned := s.Deliverer()
	if assigned == nil || s.Status().IsTerminal() {
		return nil
	}
	if current == nil {
		return errs.NewValueIsRequiredError("current deliverer")
	}
	if err := current.Validate(); err != nil {
		return err
	}
	if !current.ID().IsEqual(*assigned) {
		return errs.NewValueIsInvalidError("current deliverer does not carry the shipment")
	}
	return nil
}

func compareCandidates(a *deliverer.Deliverer, b *deliverer.Deliverer) int {
	if c := cmp.Compare(a.Load(), b.Load()); c != 0 {
		return c
	}
	if c := cmp.Compare(b.AverageRating(), a.AverageRating()); c != 0 {
		return c
	}
	switch {
	case a.ID().Less(b.ID()):
		return -1
	case b.ID().Less(a.ID()):
		return 1
	default:
		return 0
	}
}
