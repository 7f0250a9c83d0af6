package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/c0ex38/Backend-DuaMiss/internal/producer"
	"github.com/c0ex38/Backend-DuaMiss/internal/service"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type mockReader struct {
	msgs   []kafka.Message
	errs   []error
	closed bool
}

// ReadMessage отдаёт очередь ошибок, затем сообщения, затем io.EOF.
func (r *mockReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if err := ctx.Err(); err != nil {
		return kafka.Message{}, err
	}
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		return kafka.Message{}, err
	}
	if len(r.msgs) == 0 {
		return kafka.Message{}, io.EOF
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *mockReader) Close() error {
	r.closed = true
	return nil
}

type recorder struct {
	created, updated []service.OrderEvent
	deleted          []service.OrderDeletedEvent
}

func (r *recorder) OrderCreated(_ context.Context, e service.OrderEvent) error {
	r.created = append(r.created, e)
	return nil
}

func (r *recorder) OrderUpdated(_ context.Context, e service.OrderEvent) error {
	r.updated = append(r.updated, e)
	return nil
}

func (r *recorder) OrderDeleted(_ context.Context, e service.OrderDeletedEvent) error {
	r.deleted = append(r.deleted, e)
	return nil
}

func message(t *testing.T, eventType string, key uuid.UUID, payload any) kafka.Message {
	t.Helper()
	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return kafka.Message{
		Key:     []byte(key.String()),
		Value:   b,
		Headers: []kafka.Header{{Key: producer.HeaderEventType, Value: []byte(eventType)}},
	}
}

func TestKafkaOrderConsumer_Dispatch(t *testing.T) {
	id := uuid.New()
	r := &mockReader{msgs: []kafka.Message{
		message(t, producer.EventOrderCreated, id, service.OrderEvent{OrderID: id, Total: "212.4"}),
		{Value: []byte(`{}`)}, // без заголовка
		message(t, producer.EventOrderUpdated, id, service.OrderEvent{OrderID: id, Total: "100"}),
		{Value: []byte(`not json`), Headers: []kafka.Header{{Key: producer.HeaderEventType, Value: []byte(producer.EventOrderCreated)}}},
		message(t, producer.EventOrderDeleted, id, service.OrderDeletedEvent{OrderID: id}),
	}}
	h := &recorder{}
	c := &KafkaOrderConsumer{reader: r, handler: h, log: zap.NewNop()}

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(h.created) != 1 || h.created[0].Total != "212.4" {
		t.Fatalf("created = %+v", h.created)
	}
	if len(h.updated) != 1 || h.updated[0].Total != "100" {
		t.Fatalf("updated = %+v", h.updated)
	}
	if len(h.deleted) != 1 || h.deleted[0].OrderID != id {
		t.Fatalf("deleted = %+v", h.deleted)
	}
}

func TestKafkaOrderConsumer_ReadErrorsAreSkipped(t *testing.T) {
	id := uuid.New()
	r := &mockReader{
		errs: []error{errors.New("broker unavailable")},
		msgs: []kafka.Message{message(t, producer.EventOrderDeleted, id, service.OrderDeletedEvent{OrderID: id})},
	}
	h := &recorder{}
	c := &KafkaOrderConsumer{reader: r, handler: h, log: zap.NewNop()}

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(h.deleted) != 1 {
		t.Fatalf("message after read error was not handled")
	}
}

func TestKafkaOrderConsumer_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &mockReader{}
	c := &KafkaOrderConsumer{reader: r, handler: &recorder{}, log: zap.NewNop()}

	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	_ = c.Close()
	if !r.closed {
		t.Fatalf("reader not closed")
	}
}

func TestAuditLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	a := NewAuditLogger(zap.New(core))
	id := uuid.New()

	_ = a.OrderCreated(context.Background(), service.OrderEvent{OrderID: id, Total: "212.4", OccurredAt: time.Now()})
	_ = a.OrderDeleted(context.Background(), service.OrderDeletedEvent{OrderID: id})

	if logs.Len() != 2 {
		t.Fatalf("expected 2 audit entries, got %d", logs.Len())
	}
	first := logs.All()[0]
	if first.LoggerName != "audit" {
		t.Fatalf("logger name = %q", first.LoggerName)
	}
	if first.ContextMap()["total"] != "212.4" || first.ContextMap()["order_id"] != id.String() {
		t.Fatalf("fields = %v", first.ContextMap())
	}
}
