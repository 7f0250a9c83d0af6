package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/c0ex38/Backend-DuaMiss/internal/database"

	"go.uber.org/zap"
)

type Config struct {
	Port        string
	DB          DB
	JWT         JWT
	Redis       Redis
	Kafka       Kafka
	CORSOrigins []string
}

type DB struct {
	database.Config
}

type JWT struct {
	Secret   string
	Issuer   string
	Audience string
}

type Redis struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type Kafka struct {
	Brokers []string
	Topic   string
}

func Load(log *zap.Logger) *Config {
	redisEnabled := getEnvDefault("REDIS_ENABLED", "false") == "true"
	cfg := &Config{
		Port: getEnv("APP_PORT", log),
		DB:   DB{Config: LoadDB(log)},
		JWT: JWT{
			Secret:   getEnv("JWT_SECRET", log),
			Issuer:   getEnv("JWT_ISSUER", log),
			Audience: getEnv("JWT_AUDIENCE", log),
		},
		Redis: Redis{
			Enabled: redisEnabled,
			DB:      atoiDefault(getEnvDefault("REDIS_DB", ""), 0),
			TTL:     time.Duration(atoiDefault(getEnvDefault("CACHE_TTL_SECONDS", ""), 60)) * time.Second,
		},
		Kafka: Kafka{
			Brokers: splitAndTrim(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnvDefault("KAFKA_TOPIC_ORDERS", "orders.events"),
		},
		CORSOrigins: splitAndTrim(getEnvDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}
	if redisEnabled {
		cfg.Redis.Addr = getEnv("REDIS_ADDR", log)
		cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	}
	return cfg
}

type Consumer struct {
	Brokers []string
	Topic   string
	GroupID string
}

// LoadConsumer читает настройки журнала событий заказов; брокеры обязательны.
func LoadConsumer(log *zap.Logger) Consumer {
	c := Consumer{
		Brokers: splitAndTrim(getEnv("KAFKA_BROKERS", log)),
		Topic:   getEnvDefault("KAFKA_TOPIC_ORDERS", "orders.events"),
		GroupID: getEnvDefault("KAFKA_GROUP_ID", "orderdesk-audit"),
	}
	if len(c.Brokers) == 0 {
		log.Error("Не заданы брокеры Kafka", zap.String("key", "KAFKA_BROKERS"))
		panic("no kafka brokers configured")
	}
	return c
}

// dsnSource: именованный источник строки подключения.
type dsnSource struct {
	name string
	key  string
}

// dsnSources are tried in order; the first non-empty one wins.
var dsnSources = []dsnSource{
	{name: "direct", key: "DATABASE_URL_DIRECT"},
	{name: "url", key: "DATABASE_URL"},
}

// LoadDB resolves database settings: a full URL from the first configured source,
// otherwise the discrete DB_* variables (all required).
func LoadDB(log *zap.Logger) database.Config {
	for _, src := range dsnSources {
		if v := strings.TrimSpace(os.Getenv(src.key)); v != "" {
			log.Info("Источник подключения к БД", zap.String("source", src.name), zap.String("key", src.key))
			return database.Config{URL: strings.Trim(v, "\"'"), Source: src.name}
		}
	}
	log.Info("Источник подключения к БД", zap.String("source", "parts"))
	return database.Config{
		Source:   "parts",
		Host:     getEnv("DB_HOST", log),
		Port:     getEnv("DB_PORT", log),
		User:     getEnv("DB_USER", log),
		Password: getEnv("DB_PASSWORD", log),
		Name:     getEnv("DB_NAME", log),
		SSLMode:  getEnv("DB_SSLMODE", log),
	}
}

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("Обязательная переменная окружения не установлена", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func getEnvDefault(key, def string) string {
	if val, exists := os.LookupEnv(key); exists && val != "" {
		return val
	}
	return def
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := []string{}
	for _, p := range strings.Split(s, ",") {
		pt := strings.TrimSpace(p)
		if pt != "" {
			parts = append(parts, pt)
		}
	}
	return parts
}
