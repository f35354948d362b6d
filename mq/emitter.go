// Package mq publishes domain events after the state they describe has been
// committed.
package mq

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Event types.
const (
	OrderPlaced        = "order.placed"
	OrderStatusChanged = "order.status_changed"
	PaymentReceived    = "payment.received"
	PaymentFailed      = "payment.failed"
)

// Event is the JSON envelope written to the topic.
type Event struct {
	Type       string                 `json:"type"`
	CustomerID string                 `json:"customerId"`
	OrderIDs   []string               `json:"orderIds,omitempty"`
	Data       map[string]interface{} `json:"data,omitempty"`
	OccurredAt time.Time              `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Emit publishes ev and logs failures. Events are best effort.
func Emit(ctx context.Context, p Publisher, log *zap.Logger, ev Event) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	if err := p.Publish(ctx, ev); err != nil {
		log.Warn("publish event failed",
			zap.String("type", ev.Type),
			zap.String("customer_id", ev.CustomerID),
			zap.Error(err))
	}
}

// NewPublisher returns a Kafka publisher for brokersCSV, or a no-op publisher
// when no broker is configured.
func NewPublisher(brokersCSV, topic string) Publisher {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return Nop{}
	}
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}}
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

// Publish keys the message by customer so one customer's events stay ordered.
func (k *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return k.writer.WriteMessages(ctx, kafka.Message{Key: []byte(ev.CustomerID), Value: data, Time: ev.OccurredAt})
}

func (k *KafkaPublisher) Close() error {
	return k.writer.Close()
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
