package ports

import (
	"context"

	"sameday/internal/core/domain/model/rate"
)

// RateRepository keeps every rate ever activated.
type RateRepository interface {
	Add(ctx context.Context, aggregate *rate.Rate) error
	Update(ctx context.Context, aggregate *rate.Rate) error

	// GetActive returns errs.ErrObjectNotFound when no rate was ever activated.
	GetActive(ctx context.Context) (*rate.Rate, error)
}

// RateCache holds the active rate between requests.
type RateCache interface {
	// GetActive returns errs.ErrObjectNotFound on a miss.
	GetActive(ctx context.Context) (*rate.Rate, error)
	SetActive(ctx context.Context, r *rate.Rate) error
	Invalidate(ctx context.Context) error
}
