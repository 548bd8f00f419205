package commands

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"sameday/internal/core/domain/model/rate"
	"sameday/internal/core/ports"
	"sameday/internal/pkg/errs"
)

// ActivateRateCommandHandler retires the active rate, if any, stores the new
// one and refreshes the rate cache after commit.
type ActivateRateCommandHandler struct {
	uowFactory RateUoWFactory
	cache      ports.RateCache
	rt         Runtime
}

// NewActivateRateCommandHandler creates the handler. cache may be nil, in which
// case shipments always read the rate from the repository.
func NewActivateRateCommandHandler(uowFactory RateUoWFactory, cache ports.RateCache, rt Runtime) ActivateRateCommandHandler {
	return ActivateRateCommandHandler{uowFactory: uowFactory, cache: cache, rt: rt}
}

// Handle holds the rate lock from the read of the current rate until the cache
// is refreshed, so concurrent activations leave exactly one active rate and the
// cache ends up with the last one committed. A cache that cannot be written is
// invalidated instead; neither failure fails the activation.
func (h ActivateRateCommandHandler) Handle(ctx context.Context, command ActivateRateCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	unlock := h.rt.lockRate()
	defer unlock()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.RateRepository()
	now := h.rt.now()

	previous, err := repo.GetActive(ctx)
	switch {
	case err == nil:
		if err := previous.Retire(now); err != nil {
			return err
		}
		if err := repo.Update(ctx, previous); err != nil {
			return err
		}
	case !errors.Is(err, errs.ErrObjectNotFound):
		return err
	}

	activated, err := rate.NewRate(command.RateID(), command.Tariff(), now)
	if err != nil {
		return err
	}
	if err := repo.Add(ctx, activated); err != nil {
		return err
	}

	if err := uow.Commit(ctx); err != nil {
		return err
	}

	if h.cache != nil {
		if err := h.cache.SetActive(ctx, activated); err != nil {
			h.rt.logger.Warn("rate cache refresh failed, dropping cached rate", zap.Error(err))
			if err := h.cache.Invalidate(ctx); err != nil {
				h.rt.logger.Error("rate cache invalidation failed", zap.Error(err))
			}
		}
	}

	tariff := activated.Tariff()
	h.rt.publish(ctx, h.rt.event(ports.EventRateActivated, activated.ID(), map[string]any{
		"baseRate":  tariff.BaseRate.String(),
		"costPerKm": tariff.CostPerKm.String(),
		"costPerKg": tariff.CostPerKg.String(),
		"costPerM3": tariff.CostPerM3.String(),
	}))
	return nil
}
