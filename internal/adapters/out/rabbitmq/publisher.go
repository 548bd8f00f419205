package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"sameday/internal/core/ports"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// EventPublisher implements ports.EventPublisher.
type EventPublisher struct {
	channel  channel
	exchange string
}

func NewEventPublisher(ch channel, exchange string) *EventPublisher {
	return &EventPublisher{channel: ch, exchange: exchange}
}

// Publish sends every event even when an earlier one fails and reports all
// failures together.
func (p *EventPublisher) Publish(ctx context.Context, events ...ports.Event) error {
	var failures []error
	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(failures, err)...)
		}

		msg, err := message(event)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		if err := p.channel.Publish(p.exchange, event.Name, false, false, msg); err != nil {
			failures = append(failures, fmt.Errorf("publish %s: %w", event.Name, err))
		}
	}
	return errors.Join(failures...)
}

func message(event ports.Event) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode %s: %w", event.Name, err)
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    event.OccurredAt,
		Type:         event.Name,
		Body:         body,
		Headers: amqp.Table{
			"aggregate_id": event.AggregateID,
		},
	}, nil
}
