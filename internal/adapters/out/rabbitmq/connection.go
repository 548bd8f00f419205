// Package rabbitmq publishes domain events to a RabbitMQ topic exchange. The
// event name is the routing key, so consumers bind with patterns such as
// "shipment.*".
package rabbitmq

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Config describes the broker and the exchange events are sent to.
type Config struct {
	URL        string
	Exchange   string
	RetryCount int
	RetryDelay time.Duration
}

// Connection owns one AMQP connection and the channel publishes go through.
type Connection struct {
	cfg     Config
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex
	logger  *zap.Logger
}

// Dial connects, retrying cfg.RetryCount times, and declares the exchange as
// a durable topic exchange.
func Dial(cfg Config, logger *zap.Logger) (*Connection, error) {
	if cfg.Exchange == "" {
		return nil, errors.New("rabbitmq: exchange is required")
	}
	attempts := max(cfg.RetryCount, 1)

	var lastErr error
	for i := range attempts {
		conn, err := amqp.Dial(cfg.URL)
		if err != nil {
			lastErr = err
			logger.Warn("rabbitmq connection failed",
				zap.Int("attempt", i+1), zap.Int("attempts", attempts), zap.Error(err))
			if i < attempts-1 {
				time.Sleep(cfg.RetryDelay)
			}
			continue
		}

		channel, err := conn.Channel()
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("rabbitmq: open channel: %w", err)
		}

		if err := channel.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
			_ = channel.Close()
			_ = conn.Close()
			return nil, fmt.Errorf("rabbitmq: declare exchange %q: %w", cfg.Exchange, err)
		}

		logger.Info("connected to rabbitmq", zap.String("exchange", cfg.Exchange))
		return &Connection{cfg: cfg, conn: conn, channel: channel, logger: logger}, nil
	}

	return nil, fmt.Errorf("rabbitmq: connect after %d attempts: %w", attempts, lastErr)
}

// Publish serialises access to the channel, which is not safe for
// concurrent publishers.
func (c *Connection) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil || c.conn.IsClosed() {
		return amqp.ErrClosed
	}
	return c.channel.Publish(exchange, key, mandatory, immediate, msg)
}

func (c *Connection) Exchange() string {
	return c.cfg.Exchange
}

func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.channel != nil {
		errs = append(errs, c.channel.Close())
	}
	if c.conn != nil && !c.conn.IsClosed() {
		errs = append(errs, c.conn.Close())
	}
	return errors.Join(errs...)
}
