// Package events publishes a copy of every delivered message to RabbitMQ
// for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"charla/server/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ActionHeader carries the event name on each published message.
const ActionHeader = "x-action"

// Channel is the subset of *amqp.Channel used for publishing.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQ publishes message events to a single queue.
type RabbitMQ struct {
	conn    *amqp.Connection
	channel Channel
	queue   string
	mu      sync.Mutex
}

// Dial connects, opens a channel and declares the queue.
func Dial(url, queue string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a RabbitMQ channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	log.Printf("RabbitMQ publisher ready on queue %s", queue)
	return &RabbitMQ{conn: conn, channel: ch, queue: queue}, nil
}

// NewWithChannel builds a publisher on an existing channel.
func NewWithChannel(ch Channel, queue string) *RabbitMQ {
	return &RabbitMQ{channel: ch, queue: queue}
}

// Publish sends the record as JSON with the event name in the action header.
func (r *RabbitMQ) Publish(ctx context.Context, event string, msg *models.EnrichedMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.channel.PublishWithContext(
		ctx,
		"",      // exchange
		r.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Timestamp:    msg.Timestamp,
			Headers: amqp.Table{
				ActionHeader: event,
			},
			Body: body,
		},
	)
}

// Close closes the channel and connection
func (r *RabbitMQ) Close() {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		r.conn.Close()
	}
}
