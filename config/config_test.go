package config

import (
	"testing"

	"go.uber.org/zap"
)

func TestLoadDB_PrefersDirectURL(t *testing.T) {
	t.Setenv("DATABASE_URL_DIRECT", "postgres://u:p@db.example.com:5432/app")
	t.Setenv("DATABASE_URL", "postgres://u:p@pooler.example.com:6543/app")

	cfg := LoadDB(zap.NewNop())
	if cfg.Source != "direct" {
		t.Fatalf("source: got %q want direct", cfg.Source)
	}
	if cfg.Pooled() {
		t.Fatalf("direct url must not be treated as pooled")
	}
}

func TestLoadDB_FallsBackToURL(t *testing.T) {
	t.Setenv("DATABASE_URL_DIRECT", "")
	t.Setenv("DATABASE_URL", "postgres://u:p@aws-0.pooler.supabase.com:6543/app")

	cfg := LoadDB(zap.NewNop())
	if cfg.Source != "url" {
		t.Fatalf("source: got %q want url", cfg.Source)
	}
	if !cfg.Pooled() {
		t.Fatalf("pooler url must be treated as pooled")
	}
}

func TestLoadDB_FallsBackToParts(t *testing.T) {
	t.Setenv("DATABASE_URL_DIRECT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "orders")
	t.Setenv("DB_SSLMODE", "disable")

	cfg := LoadDB(zap.NewNop())
	if cfg.Source != "parts" {
		t.Fatalf("source: got %q want parts", cfg.Source)
	}
	want := "host=localhost port=5432 user=app password=secret dbname=orders sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Fatalf("dsn: got %q want %q", got, want)
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := splitAndTrim(" a:9092 , ,b:9092")
	if len(got) != 2 || got[0] != "a:9092" || got[1] != "b:9092" {
		t.Fatalf("unexpected split: %#v", got)
	}
	if splitAndTrim("") != nil {
		t.Fatalf("empty input must yield nil")
	}
}

func TestLoadConsumer_Defaults(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " kafka-1:9092, ,kafka-2:9092 ")
	t.Setenv("KAFKA_TOPIC_ORDERS", "")
	t.Setenv("KAFKA_GROUP_ID", "")

	c := LoadConsumer(zap.NewNop())
	if len(c.Brokers) != 2 || c.Brokers[1] != "kafka-2:9092" {
		t.Fatalf("brokers: %v", c.Brokers)
	}
	if c.Topic != "orders.events" || c.GroupID != "orderdesk-audit" {
		t.Fatalf("defaults: topic=%q group=%q", c.Topic, c.GroupID)
	}
}

func TestLoadConsumer_PanicsWithoutBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " , ")
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	LoadConsumer(zap.NewNop())
}
