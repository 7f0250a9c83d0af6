package producer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/c0ex38/Backend-DuaMiss/internal/service"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type mockWriter struct {
	msgs        []kafka.Message
	hadDeadline bool
	err         error
	closed      bool
}

func (w *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	_, w.hadDeadline = ctx.Deadline()
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *mockWriter) Close() error {
	w.closed = true
	return nil
}

func TestOrderEventProducer_Created(t *testing.T) {
	w := &mockWriter{}
	p := &OrderEventProducer{writer: w}
	id := uuid.New()

	err := p.PublishOrderCreated(context.Background(), service.OrderEvent{OrderID: id, Total: "212.4", OccurredAt: time.Now()})
	if err != nil {
		t.Fatalf("PublishOrderCreated: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("messages = %d", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != id.String() {
		t.Fatalf("key = %s, want order id", msg.Key)
	}
	if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != EventOrderCreated {
		t.Fatalf("headers = %+v", msg.Headers)
	}
	if !w.hadDeadline {
		t.Fatalf("write must be bounded by a timeout")
	}

	var decoded service.OrderEvent
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if decoded.OrderID != id || decoded.Total != "212.4" {
		t.Fatalf("decoded = %+v", decoded)
	}
}

func TestOrderEventProducer_DeletedAndErrors(t *testing.T) {
	boom := errors.New("broker down")
	w := &mockWriter{err: boom}
	p := &OrderEventProducer{writer: w}

	err := p.PublishOrderDeleted(context.Background(), service.OrderDeletedEvent{OrderID: uuid.New()})
	if !errors.Is(err, boom) {
		t.Fatalf("expected writer error, got %v", err)
	}
	if string(w.msgs[0].Headers[0].Value) != EventOrderDeleted {
		t.Fatalf("wrong event type header")
	}

	if err := p.Close(); err != nil || !w.closed {
		t.Fatalf("Close not forwarded")
	}
}
