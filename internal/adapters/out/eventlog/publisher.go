// Package eventlog writes domain events to the application log. It stands in
// for the broker when RabbitMQ is not configured.
package eventlog

import (
	"context"

	"sameday/internal/core/ports"

	"go.uber.org/zap"
)

type Publisher struct {
	logger *zap.Logger
}

func NewPublisher(logger *zap.Logger) *Publisher {
	return &Publisher{logger: logger.Named("events")}
}

func (p *Publisher) Publish(_ context.Context, events ...ports.Event) error {
	for _, e := range events {
		p.logger.Info(e.Name,
			zap.String("aggregate_id", e.AggregateID),
			zap.Time("occurred_at", e.OccurredAt),
			zap.Any("payload", e.Payload))
	}
	return nil
}
