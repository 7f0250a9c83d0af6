package database

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// pgbouncerPort: порт пулера (Supabase/PgBouncer transaction mode).
const pgbouncerPort = "6543"

type Config struct {
	// URL задаётся целиком (DATABASE_URL_DIRECT / DATABASE_URL); если пусто, собираем из частей.
	URL    string
	Source string

	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (c *Config) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, sslmode)
}

// Pooled reports whether the DSN points at a PgBouncer pool, where server-side
// prepared statements and long-lived connections are not safe.
func (c *Config) Pooled() bool {
	host, port := c.hostPort()
	return strings.Contains(strings.ToLower(host), "pooler") || port == pgbouncerPort
}

func (c *Config) hostPort() (string, string) {
	if c.URL == "" {
		return c.Host, c.Port
	}
	lower := strings.ToLower(c.URL)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		u, err := url.Parse(c.URL)
		if err != nil {
			return "", ""
		}
		return u.Hostname(), u.Port()
	}
	var host, port string
	for _, part := range strings.Fields(c.URL) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(kv[0]) {
		case "host":
			host = kv[1]
		case "port":
			port = kv[1]
		}
	}
	return host, port
}

func open(cfg *Config, log *zap.Logger, level gormlogger.LogLevel) (*gorm.DB, error) {
	pooled := cfg.Pooled()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: pooled,
	}), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(level),
		PrepareStmt:    !pooled,
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if pooled {
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetMaxIdleConns(0)
	} else {
		sqlDB.SetConnMaxLifetime(60 * time.Second)
		sqlDB.SetMaxIdleConns(5)
	}
	sqlDB.SetMaxOpenConns(20)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	log.Info("Подключение к базе данных установлено",
		zap.String("source", cfg.Source),
		zap.Bool("pooled", pooled),
	)
	return db, nil
}

func ConnectDB(cfg *Config, log *zap.Logger) *gorm.DB {
	db, err := open(cfg, log, gormlogger.Warn)
	if err != nil {
		log.Fatal("Не удалось подключиться к базе данных", zap.String("source", cfg.Source), zap.Error(err))
	}
	return db
}

// ConnectDBForMigration открывает то же подключение, но с подробным логом SQL.
func ConnectDBForMigration(cfg *Config, log *zap.Logger) *gorm.DB {
	db, err := open(cfg, log, gormlogger.Info)
	if err != nil {
		log.Fatal("Не удалось подключиться к базе данных для миграции", zap.String("source", cfg.Source), zap.Error(err))
	}
	return db
}

func CloseDB(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Error("Не удалось получить sql.DB", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("Ошибка при закрытии соединения с базой данных", zap.Error(err))
		return
	}
	log.Info("Соединение с базой данных закрыто")
}
