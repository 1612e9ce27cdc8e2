package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher delivers casting events to CastingEventsQueue.
type Publisher interface {
	Publish(ctx context.Context, event CastingEvent) error
}

// ChannelPublisher publishes over a single AMQP channel. Channels are not safe for
// concurrent publishing, so calls are serialized.
type ChannelPublisher struct {
	mu sync.Mutex
	ch *amqp.Channel
}

var _ Publisher = (*ChannelPublisher)(nil)

func NewChannelPublisher(conn *amqp.Connection) (*ChannelPublisher, error) {
	ch, err := NewChannel(conn)
	if err != nil {
		return nil, err
	}
	return &ChannelPublisher{ch: ch}, nil
}

func (p *ChannelPublisher) Publish(ctx context.Context, event CastingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return SendImmediateMessage(ctx, p.ch, CastingEventsQueue, event)
}

func (p *ChannelPublisher) Close() error {
	return p.ch.Close()
}

// NopPublisher drops events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, CastingEvent) error { return nil }

func SendImmediateMessage(ctx context.Context, ch *amqp.Channel, queueName string, message any) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = ch.PublishWithContext(
		ctx,
		"",
		queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message to queue %s: %w", queueName, err)
	}

	return nil
}
