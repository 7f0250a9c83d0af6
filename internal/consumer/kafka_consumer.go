package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/c0ex38/Backend-DuaMiss/internal/producer"
	"github.com/c0ex38/Backend-DuaMiss/internal/service"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// OrderEventHandler получает уже декодированные события заказов.
type OrderEventHandler interface {
	OrderCreated(ctx context.Context, e service.OrderEvent) error
	OrderUpdated(ctx context.Context, e service.OrderEvent) error
	OrderDeleted(ctx context.Context, e service.OrderDeletedEvent) error
}

var errUnknownEvent = errors.New("unknown event type")

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type KafkaOrderConsumer struct {
	reader  messageReader
	handler OrderEventHandler
	log     *zap.Logger
}

func NewKafkaOrderConsumer(brokers []string, groupID, topic string, handler OrderEventHandler, log *zap.Logger) *KafkaOrderConsumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		Topic:             topic,
		MinBytes:          1,
		MaxBytes:          10e6,
		CommitInterval:    time.Second,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	})
	return &KafkaOrderConsumer{reader: r, handler: handler, log: log}
}

// Run читает сообщения до отмены ctx. Битые сообщения логируются и пропускаются.
func (c *KafkaOrderConsumer) Run(ctx context.Context) error {
	c.log.Info("kafka consumer started")
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			// после Close reader отдаёт io.EOF
			if errors.Is(err, io.EOF) {
				return nil
			}
			c.log.Error("read message", zap.Error(err))
			continue
		}
		if err := c.dispatch(ctx, m); err != nil {
			c.log.Error("handle order event",
				zap.String("event_type", eventType(m)),
				zap.ByteString("key", m.Key),
				zap.Int64("offset", m.Offset),
				zap.Error(err))
		}
	}
}

func (c *KafkaOrderConsumer) Close() error { return c.reader.Close() }

func eventType(m kafka.Message) string {
	for _, h := range m.Headers {
		if h.Key == producer.HeaderEventType {
			return string(h.Value)
		}
	}
	return ""
}

func (c *KafkaOrderConsumer) dispatch(ctx context.Context, m kafka.Message) error {
	switch et := eventType(m); et {
	case producer.EventOrderCreated, producer.EventOrderUpdated:
		var e service.OrderEvent
		if err := json.Unmarshal(m.Value, &e); err != nil {
			return fmt.Errorf("decode %s: %w", et, err)
		}
		if et == producer.EventOrderCreated {
			return c.handler.OrderCreated(ctx, e)
		}
		return c.handler.OrderUpdated(ctx, e)
	case producer.EventOrderDeleted:
		var e service.OrderDeletedEvent
		if err := json.Unmarshal(m.Value, &e); err != nil {
			return fmt.Errorf("decode %s: %w", et, err)
		}
		return c.handler.OrderDeleted(ctx, e)
	default:
		return fmt.Errorf("%w: %q", errUnknownEvent, et)
	}
}
