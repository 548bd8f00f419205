package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"sameday/internal/core/domain/model/kernel"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockEnqueuer struct {
	mock.Mock
}

func (m *MockEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task, opts)
	info, _ := args.Get(0).(*asynq.TaskInfo)
	return info, args.Error(1)
}

func TestScheduler_ScheduleAssignment(t *testing.T) {
	shipmentID := kernel.NewUUID()

	t.Run("enqueues an assign task keyed by shipment", func(t *testing.T) {
		// Given
		client := new(MockEnqueuer)
		client.On("EnqueueContext", mock.Anything,
			mock.MatchedBy(func(task *asynq.Task) bool {
				var payload AssignShipmentPayload
				return task.Type() == TypeAssignShipment &&
					json.Unmarshal(task.Payload(), &payload) == nil &&
					payload.ShipmentID == shipmentID.String()
			}),
			mock.MatchedBy(func(opts []asynq.Option) bool {
				found := map[asynq.OptionType]any{}
				for _, o := range opts {
					found[o.Type()] = o.Value()
				}
				return found[asynq.QueueOpt] == "urgent" &&
					found[asynq.MaxRetryOpt] == 5 &&
					found[asynq.TaskIDOpt] == "assign:"+shipmentID.String()
			}),
		).Return(&asynq.TaskInfo{}, nil).Once()

		// When
		err := NewScheduler(client, Config{Queue: "urgent"}).ScheduleAssignment(t.Context(), shipmentID)

		// Then
		require.NoError(t, err)
		client.AssertExpectations(t)
	})

	t.Run("a pending task for the shipment is enough", func(t *testing.T) {
		client := new(MockEnqueuer)
		client.On("EnqueueContext", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, asynq.ErrTaskIDConflict).Once()

		err := NewScheduler(client, Config{}).ScheduleAssignment(t.Context(), shipmentID)

		require.NoError(t, err)
	})

	t.Run("other failures are returned", func(t *testing.T) {
		client := new(MockEnqueuer)
		errRedis := errors.New("dial tcp: connection refused")
		client.On("EnqueueContext", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errRedis).Once()

		err := NewScheduler(client, Config{}).ScheduleAssignment(t.Context(), shipmentID)

		require.ErrorIs(t, err, errRedis)
		assert.Contains(t, err.Error(), shipmentID.String())
	})
}

func TestServerConfig_Defaults(t *testing.T) {
	opt, cfg := ServerConfig(Config{})

	assert.Equal(t, "127.0.0.1:6379", opt.Addr)
	assert.Equal(t, 10, cfg.Concurrency)
	assert.Equal(t, map[string]int{DefaultQueue: 1}, cfg.Queues)
}

func TestInlineScheduler_RunsAssignment(t *testing.T) {
	// Given
	shipmentID := kernel.NewUUID()
	called := make(chan kernel.UUID, 1)
	scheduler := NewInlineScheduler(func(_ context.Context, id kernel.UUID) error {
		called <- id
		return errors.New("no deliverer available")
	}, zap.NewNop())

	// When
	err := scheduler.ScheduleAssignment(t.Context(), shipmentID)

	// Then
	require.NoError(t, err)
	select {
	case id := <-called:
		assert.True(t, id.IsEqual(shipmentID))
	case <-time.After(time.Second):
		t.Fatal("assignment was not run")
	}
}
