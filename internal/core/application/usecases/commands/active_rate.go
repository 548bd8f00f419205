package commands

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"sameday/internal/core/domain/model/rate"
	"sameday/internal/core/ports"
	"sameday/internal/pkg/errs"
)

// activeRateSource resolves the rate new shipments are priced with: the
// cache first, then the repository, and the default tariff when no rate was
// ever activated.
type activeRateSource struct {
	cache  ports.RateCache
	logger *zap.Logger
}

// cached returns the cached active rate, or nil on a miss.
func (s activeRateSource) cached(ctx context.Context) *rate.Rate {
	if s.cache == nil {
		return nil
	}

	cached, err := s.cache.GetActive(ctx)
	if err != nil {
		if !errors.Is(err, errs.ErrObjectNotFound) {
			s.logger.Warn("rate cache lookup failed", zap.Error(err))
		}
		return nil
	}
	return cached
}

// refills reports whether load writes the cache, in which case the caller
// must hold the rate lock around it.
func (s activeRateSource) refills() bool {
	return s.cache != nil
}

// load reads the active rate from repo and refills the cache with it.
func (s activeRateSource) load(ctx context.Context, repo ports.RateRepository, now time.Time) (*rate.Rate, error) {
	active, err := repo.GetActive(ctx)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return rate.Default(now), nil
	}
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetActive(ctx, active); err != nil {
			s.logger.Warn("rate cache refresh failed", zap.Error(err))
		}
	}
	return active, nil
}
