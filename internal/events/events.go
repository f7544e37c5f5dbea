package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/antonminaichev/storefront/internal/types/order"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type Type string

const (
	OrderCreated         Type = "order_created"
	OrderStatusChanged   Type = "order_status_changed"
	OrderCancelled       Type = "order_cancelled"
	OrderTrackingUpdated Type = "order_tracking_updated"
)

type Event struct {
	ID         string       `json:"id"`
	Type       Type         `json:"type"`
	OrderID    string       `json:"orderId"`
	UserID     string       `json:"userId"`
	Status     order.Status `json:"status"`
	OccurredAt time.Time    `json:"occurredAt"`
	Data       any          `json:"data,omitempty"`
}

// ForOrder stamps an event for o at its current status.
func ForOrder(t Type, o *order.Order, data any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		OrderID:    o.ID,
		UserID:     o.UserID,
		Status:     o.Status,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// KafkaPublisher writes events keyed by order id so that one order's events
// stay on one partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.OrderID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.Type)},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
