// Package consumer receives retail-link enrichment requests over AMQP.
// Enrichment is fire-and-forget for the caller: completion is observed via
// the persisted post.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Enricher resolves and persists a post's retail links.
type Enricher interface {
	EnrichRetailLinks(ctx context.Context, postID string, rawLinks []string) error
}

// EnrichRequest is the message body on the enrichment queue.
type EnrichRequest struct {
	PostID string   `json:"post_id"`
	Links  []string `json:"links"`
}

type Config struct {
	URL       string
	QueueName string
}

type RabbitMQ struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	queue    string
	enricher Enricher
	logger   *slog.Logger
}

func NewRabbitMQ(cfg Config, enricher Enricher, logger *slog.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		cfg.QueueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	logger.Info("consuming enrichment requests", "queue", cfg.QueueName)

	return &RabbitMQ{
		conn:     conn,
		channel:  ch,
		queue:    cfg.QueueName,
		enricher: enricher,
		logger:   logger,
	}, nil
}

// Start consumes requests until the context is cancelled. Each request runs
// to completion; a failed enrichment is logged and the message dropped, not
// redelivered (the caller can resubmit with fresh links).
func (c *RabbitMQ) Start(ctx context.Context) error {
	deliveries, err := c.channel.Consume(
		c.queue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

func (c *RabbitMQ) handle(ctx context.Context, d amqp.Delivery) {
	var req EnrichRequest
	if err := json.Unmarshal(d.Body, &req); err != nil {
		c.logger.Warn("bad enrichment request", "error", err)
		_ = d.Nack(false, false)
		return
	}

	if err := c.enricher.EnrichRetailLinks(ctx, req.PostID, req.Links); err != nil {
		c.logger.Error("enrichment failed", "post_id", req.PostID, "error", err)
		_ = d.Nack(false, false)
		return
	}

	_ = d.Ack(false)
}

func (c *RabbitMQ) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
