package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/c0ex38/Backend-DuaMiss/internal/service"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	EventOrderCreated = "order.created"
	EventOrderUpdated = "order.updated"
	EventOrderDeleted = "order.deleted"

	HeaderEventType = "event-type"
	writeTimeout    = 5 * time.Second
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderEventProducer публикует события заказов в Kafka; ключ сообщения равен id заказа.
type OrderEventProducer struct {
	writer messageWriter
}

var _ service.EventBus = (*OrderEventProducer)(nil)

func NewOrderEventProducer(brokers []string, topic string) *OrderEventProducer {
	return &OrderEventProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

func (p *OrderEventProducer) send(ctx context.Context, eventType string, orderID uuid.UUID, payload any) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(orderID.String()),
		Value:   value,
		Headers: []kafka.Header{{Key: HeaderEventType, Value: []byte(eventType)}},
	})
}

func (p *OrderEventProducer) PublishOrderCreated(ctx context.Context, e service.OrderEvent) error {
	return p.send(ctx, EventOrderCreated, e.OrderID, e)
}

func (p *OrderEventProducer) PublishOrderUpdated(ctx context.Context, e service.OrderEvent) error {
	return p.send(ctx, EventOrderUpdated, e.OrderID, e)
}

func (p *OrderEventProducer) PublishOrderDeleted(ctx context.Context, e service.OrderDeletedEvent) error {
	return p.send(ctx, EventOrderDeleted, e.OrderID, e)
}

func (p *OrderEventProducer) Close() error {
	return p.writer.Close()
}
