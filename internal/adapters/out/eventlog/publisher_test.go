package eventlog

import (
	"testing"
	"time"

	"sameday/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestPublisher_Publish(t *testing.T) {
	// Given
	core, logs := observer.New(zap.InfoLevel)
	publisher := NewPublisher(zap.New(core))
	at := time.Date(2026, 5, 2, 14, 0, 0, 0, time.UTC)

	// When
	err := publisher.Publish(t.Context(),
		ports.Event{Name: ports.EventShipmentCreated, AggregateID: "a", OccurredAt: at},
		ports.Event{Name: ports.EventShipmentPaid, AggregateID: "a", OccurredAt: at, Payload: map[string]any{"reference": "PAY-1"}},
	)

	// Then
	require.NoError(t, err)
	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, ports.EventShipmentCreated, entries[0].Message)
	assert.Equal(t, "events", entries[0].LoggerName)
	assert.Equal(t, ports.EventShipmentPaid, entries[1].Message)
	assert.Equal(t, "a", entries[1].ContextMap()["aggregate_id"])
}
