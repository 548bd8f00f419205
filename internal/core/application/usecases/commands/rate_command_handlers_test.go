package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"sameday/internal/core/application/usecases/commands"
	"sameday/internal/core/domain/model/rate"
	"sameday/internal/core/ports"
	"sameday/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRateUoW struct{ mock.Mock }

func (m *MockRateUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRateUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRateUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRateUoW) RateRepository() ports.RateRepository {
	args := m.Called()
	return args.Get(0).(ports.RateRepository)
}

func TestNewActivateRateCommand(t *testing.T) {
	tariff := rate.DefaultTariff()
	tariff.CostPerKm = decimal.NewFromInt(-1)

	_, err := commands.NewActivateRateCommand(tariff)

	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestActivateRateCommandHandler_Handle(t *testing.T) {
	newTariff := func() rate.Tariff {
		tariff := rate.DefaultTariff()
		tariff.BaseRate = decimal.NewFromInt(6500)
		return tariff
	}

	t.Run("retires the active rate and caches the new one", func(t *testing.T) {
		// Given
		ctx := t.Context()
		uow := new(MockRateUoW)
		repo := new(MockRateRepository)
		factory := new(MockRateUoWFactory)
		cache := new(MockRateCache)
		rt, clock := newRuntime(nil)

		previous := rate.Default(time.Now().Add(-time.Hour))
		cmd, err := commands.NewActivateRateCommand(newTariff())
		require.NoError(t, err)

		factory.On("Create").Return(uow).Once()
		uow.On("RateRepository").Return(repo)
		uow.On("Rollback", ctx).Return(nil)

		mock.InOrder(
			uow.On("Begin", ctx).Return(nil).Once(),
			repo.On("GetActive", ctx).Return(previous, nil).Once(),
			repo.On("Update", ctx, previous).Return(nil).Once(),
			repo.On("Add", ctx, mock.MatchedBy(func(r *rate.Rate) bool {
				return r.ID().IsEqual(cmd.RateID()) && r.IsActive()
			})).Return(nil).Once(),
			uow.On("Commit", ctx).Return(nil).Once(),
			cache.On("SetActive", ctx, mock.AnythingOfType("*rate.Rate")).Return(nil).Once(),
		)

		handler := commands.NewActivateRateCommandHandler(factory, cache, rt)

		// When
		err = handler.Handle(ctx, cmd)

		// Then
		require.NoError(t, err)
		assert.False(t, previous.IsActive())
		require.NotNil(t, previous.EffectiveUntil())
		assert.True(t, previous.EffectiveUntil().Equal(clock.Now().UTC()))
		repo.AssertExpectations(t)
		uow.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("first activation has nothing to retire", func(t *testing.T) {
		ctx := t.Context()
		uow := new(MockRateUoW)
		repo := new(MockRateRepository)
		factory := new(MockRateUoWFactory)
		rt, _ := newRuntime(nil)

		cmd, err := commands.NewActivateRateCommand(newTariff())
		require.NoError(t, err)

		factory.On("Create").Return(uow).Once()
		uow.On("RateRepository").Return(repo)
		uow.On("Rollback", ctx).Return(nil)
		uow.On("Begin", ctx).Return(nil).Once()
		repo.On("GetActive", ctx).Return(nil, errs.NewObjectNotFoundError("rate", "active")).Once()
		repo.On("Add", ctx, mock.Anything).Return(nil).Once()
		uow.On("Commit", ctx).Return(nil).Once()

		err = commands.NewActivateRateCommandHandler(factory, nil, rt).Handle(ctx, cmd)

		require.NoError(t, err)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("a failed cache refresh drops the cached rate", func(t *testing.T) {
		ctx := t.Context()
		uow := new(MockRateUoW)
		repo := new(MockRateRepository)
		factory := new(MockRateUoWFactory)
		cache := new(MockRateCache)
		rt, _ := newRuntime(nil)

		cmd, err := commands.NewActivateRateCommand(newTariff())
		require.NoError(t, err)

		factory.On("Create").Return(uow).Once()
		uow.On("RateRepository").Return(repo)
		uow.On("Rollback", ctx).Return(nil)
		uow.On("Begin", ctx).Return(nil).Once()
		repo.On("GetActive", ctx).Return(nil, errs.ErrObjectNotFound).Once()
		repo.On("Add", ctx, mock.Anything).Return(nil).Once()
		uow.On("Commit", ctx).Return(nil).Once()
		cache.On("SetActive", ctx, mock.Anything).Return(errors.New("timeout")).Once()
		cache.On("Invalidate", ctx).Return(nil).Once()

		err = commands.NewActivateRateCommandHandler(factory, cache, rt).Handle(ctx, cmd)

		require.NoError(t, err)
		cache.AssertExpectations(t)
	})
}
