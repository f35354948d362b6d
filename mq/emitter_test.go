package mq

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type failing struct{}

func (failing) Publish(context.Context, Event) error { return errors.New("broker down") }
func (failing) Close() error                         { return nil }

func TestNewPublisherWithoutBrokers(t *testing.T) {
	assert.IsType(t, Nop{}, NewPublisher(" , ", "bazaar.orders"))
	assert.IsType(t, &KafkaPublisher{}, NewPublisher("localhost:9092", "bazaar.orders"))
}

func TestEmitStampsAndRecords(t *testing.T) {
	rec := &Recorder{}
	Emit(context.Background(), rec, zap.NewNop(), Event{Type: OrderPlaced, CustomerID: "c1"})

	evs := rec.Events()
	if assert.Len(t, evs, 1) {
		assert.False(t, evs[0].OccurredAt.IsZero())
	}
	assert.Equal(t, []string{OrderPlaced}, rec.Types())
}

func TestEmitLogsFailures(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	Emit(context.Background(), failing{}, zap.New(core), Event{Type: PaymentFailed, CustomerID: "c1"})
	assert.Equal(t, 1, logs.FilterMessage("publish event failed").Len())
}
