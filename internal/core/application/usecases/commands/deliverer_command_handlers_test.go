package commands_test

import (
	"context"
	"testing"

	"sameday/internal/core/application/usecases/commands"
	"sameday/internal/core/domain/model/deliverer"
	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/core/ports"
	"sameday/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDelivererUoW struct{ mock.Mock }

func (m *MockDelivererUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDelivererUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDelivererUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDelivererUoW) DelivererRepository() ports.DelivererRepository {
	args := m.Called()
	return args.Get(0).(ports.DelivererRepository)
}

func registerCommand(t *testing.T, document string) commands.RegisterDelivererCommand {
	t.Helper()
	loc, err := kernel.NewLocation(4, 2)
	require.NoError(t, err)
	cmd, err := commands.NewRegisterDelivererCommand(document, "Laura Gomez", "3104567890", "North", loc)
	require.NoError(t, err)
	return cmd
}

func TestNewRegisterDelivererCommand(t *testing.T) {
	t.Run("reports every missing field", func(t *testing.T) {
		_, err := commands.NewRegisterDelivererCommand(" ", "", "", "", kernel.Location{})

		require.ErrorIs(t, err, deliverer.ErrDocumentIsRequired)
		require.ErrorIs(t, err, deliverer.ErrNameIsRequired)
		require.ErrorIs(t, err, deliverer.ErrPhoneIsRequired)
		require.ErrorIs(t, err, kernel.ErrZoneIsRequired)
		require.ErrorIs(t, err, kernel.ErrLocationIsNotConstructed)
	})

	t.Run("trims input", func(t *testing.T) {
		cmd := registerCommand(t, "  CC-1094 ")
		assert.Equal(t, "CC-1094", cmd.Document())
	})
}

func TestRegisterDelivererCommandHandler_Handle(t *testing.T) {
	t.Run("registers an available deliverer", func(t *testing.T) {
		// Given
		ctx := t.Context()
		uow := new(MockDelivererUoW)
		repo := new(MockDelivererRepository)
		factory := new(MockDelivererUoWFactory)
		rt, _ := newRuntime(nil)
		cmd := registerCommand(t, "CC-1094")

		factory.On("Create").Return(uow).Once()
		uow.On("DelivererRepository").Return(repo)
		uow.On("Rollback", ctx).Return(nil)

		var added *deliverer.Deliverer
		mock.InOrder(
			uow.On("Begin", ctx).Return(nil).Once(),
			repo.On("GetByDocument", ctx, "CC-1094").Return(nil, errs.NewObjectNotFoundError("deliverer", "CC-1094")).Once(),
			repo.On("Add", ctx, mock.AnythingOfType("*deliverer.Deliverer")).
				Run(func(args mock.Arguments) { added = args.Get(1).(*deliverer.Deliverer) }).
				Return(nil).Once(),
			uow.On("Commit", ctx).Return(nil).Once(),
		)

		handler := commands.NewRegisterDelivererCommandHandler(factory, rt)

		// When
		err := handler.Handle(ctx, cmd)

		// Then
		require.NoError(t, err)
		require.NotNil(t, added)
		assert.Equal(t, cmd.DelivererID(), added.ID())
		assert.Equal(t, deliverer.Available, added.Status())
		assert.Equal(t, 0, added.TotalDeliveries())
		repo.AssertExpectations(t)
		uow.AssertExpectations(t)
	})

	t.Run("a document is registered once", func(t *testing.T) {
		ctx := t.Context()
		uow := new(MockDelivererUoW)
		repo := new(MockDelivererRepository)
		factory := new(MockDelivererUoWFactory)
		rt, _ := newRuntime(nil)
		cmd := registerCommand(t, "CC-1094")

		factory.On("Create").Return(uow).Once()
		uow.On("DelivererRepository").Return(repo)
		uow.On("Rollback", ctx).Return(nil)
		uow.On("Begin", ctx).Return(nil).Once()
		repo.On("GetByDocument", ctx, "CC-1094").Return(delivererWith(t, "North", 0, 0), nil).Once()

		handler := commands.NewRegisterDelivererCommandHandler(factory, rt)
		err := handler.Handle(ctx, cmd)

		require.ErrorIs(t, err, commands.ErrDocumentAlreadyRegistered)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		repo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	})
}

func TestChangeDelivererStatusCommandHandler_Handle(t *testing.T) {
	setup := func(t *testing.T, d *deliverer.Deliverer) (*MockDelivererUoWFactory, *MockDelivererUoW, *MockDelivererRepository) {
		t.Helper()
		uow := new(MockDelivererUoW)
		repo := new(MockDelivererRepository)
		factory := new(MockDelivererUoWFactory)

		factory.On("Create").Return(uow).Once()
		uow.On("DelivererRepository").Return(repo)
		uow.On("Rollback", mock.Anything).Return(nil)
		uow.On("Begin", mock.Anything).Return(nil).Once()
		repo.On("Get", mock.Anything, d.ID()).Return(d, nil).Twice()
		return factory, uow, repo
	}

	t.Run("goes on break", func(t *testing.T) {
		ctx := t.Context()
		rt, _ := newRuntime(nil)
		d := delivererWith(t, "North", 1, 4)
		factory, uow, repo := setup(t, d)
		repo.On("Update", ctx, d).Return(nil).Once()
		uow.On("Commit", ctx).Return(nil).Once()

		cmd, err := commands.NewChangeDelivererStatusCommand(d.ID(), deliverer.OnBreak)
		require.NoError(t, err)

		err = commands.NewChangeDelivererStatusCommandHandler(factory, rt).Handle(ctx, cmd)

		require.NoError(t, err)
		assert.Equal(t, deliverer.OnBreak, d.Status())
		repo.AssertExpectations(t)
		uow.AssertExpectations(t)
	})

	t.Run("coming back resolves to the workload status", func(t *testing.T) {
		ctx := t.Context()
		rt, _ := newRuntime(nil)
		d := delivererWith(t, "North", 2, 4)
		require.NoError(t, d.ChangeStatus(deliverer.OffDuty))
		factory, uow, repo := setup(t, d)
		repo.On("Update", ctx, d).Return(nil).Once()
		uow.On("Commit", ctx).Return(nil).Once()

		cmd, err := commands.NewChangeDelivererStatusCommand(d.ID(), deliverer.Available)
		require.NoError(t, err)

		err = commands.NewChangeDelivererStatusCommandHandler(factory, rt).Handle(ctx, cmd)

		require.NoError(t, err)
		assert.Equal(t, deliverer.Active, d.Status())
	})

	t.Run("workload statuses cannot be picked", func(t *testing.T) {
		ctx := t.Context()
		rt, _ := newRuntime(nil)
		d := delivererWith(t, "North", 0, 0)
		factory, _, repo := setup(t, d)

		cmd, err := commands.NewChangeDelivererStatusCommand(d.ID(), deliverer.Busy)
		require.NoError(t, err)

		err = commands.NewChangeDelivererStatusCommandHandler(factory, rt).Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Equal(t, deliverer.Available, d.Status())
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}
