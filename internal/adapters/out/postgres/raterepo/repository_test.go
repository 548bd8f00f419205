package raterepo_test

import (
	"testing"
	"time"

	"sameday/internal/adapters/out/postgres/raterepo"
	"sameday/internal/adapters/out/postgres/sqlitetest"
	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/core/domain/model/rate"
	"sameday/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate any) {
	m.Called(id, aggregate)
}

func TestGormRateRepository(t *testing.T) {
	newRepo := func(t *testing.T) *raterepo.GormRateRepository {
		tracker := new(MockAggregateTracker)
		tracker.On("TrackAggregate", mock.Anything, mock.Anything).Maybe()
		return raterepo.NewGormRateRepository(sqlitetest.Open(t), tracker)
	}

	t.Run("no rate activated yet", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.GetActive(t.Context())

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("retired rate is replaced by the new one", func(t *testing.T) {
		// Given
		repo := newRepo(t)
		ctx := t.Context()
		first, err := rate.NewRate(kernel.NewUUID(), rate.DefaultTariff(), time.Now().Add(-time.Hour))
		require.NoError(t, err)
		require.NoError(t, repo.Add(ctx, first))

		tariff := rate.DefaultTariff()
		tariff.BaseRate = decimal.NewFromInt(8000)
		tariff.FragileSurcharge = decimal.RequireFromString("0.15")
		second, err := rate.NewRate(kernel.NewUUID(), tariff, time.Now())
		require.NoError(t, err)

		// When
		require.NoError(t, first.Retire(time.Now()))
		require.NoError(t, repo.Update(ctx, first))
		require.NoError(t, repo.Add(ctx, second))

		// Then
		active, err := repo.GetActive(ctx)
		require.NoError(t, err)
		assert.True(t, active.ID().IsEqual(second.ID()))
		assert.True(t, active.Tariff().BaseRate.Equal(decimal.NewFromInt(8000)))
		assert.True(t, active.Tariff().FragileSurcharge.Equal(decimal.RequireFromString("0.15")))
		assert.True(t, active.IsActive())
	})
}
