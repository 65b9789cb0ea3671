package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ariefcatur/go-order-service/internal/orders"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer is the slice of the kafka producer the publisher needs.
type Producer interface {
	Publish(key, value []byte, headers ...kafka.Header)
}

// Publisher emits one order.placed event per successfully persisted order.
// Serialization failure is returned for the orchestrator to log and absorb;
// transport failure is absorbed inside the async producer. Either way order
// creation has already succeeded.
type Publisher struct {
	Producer Producer
	Source   string
	Log      *zap.Logger
}

func (p *Publisher) PublishOrderPlaced(ctx context.Context, o orders.Order) error {
	payload, err := json.Marshal(orders.NewOrderPlacedPayload(o))
	if err != nil {
		return fmt.Errorf("marshal order.placed payload: %w", err)
	}

	env := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      p.Source,
		CorrelationID: o.ID,
		Payload:       payload,
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal order.placed envelope: %w", err)
	}

	p.Producer.Publish(orders.PartitionKey(o.ID), value,
		kafka.Header{Key: "x-event-type", Value: []byte(orders.EventOrderPlaced)},
		kafka.Header{Key: "x-event-source", Value: []byte(p.Source)},
	)
	p.Log.Info("published order.placed", zap.String("order_id", o.ID))
	return nil
}
