package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/c0ex38/Backend-DuaMiss/config"
	"github.com/c0ex38/Backend-DuaMiss/internal/consumer"
	"github.com/c0ex38/Backend-DuaMiss/internal/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}
	defer logger.Sync()

	log := logger.L()

	cfg := config.LoadConsumer(log)
	cons := consumer.NewKafkaOrderConsumer(cfg.Brokers, cfg.GroupID, cfg.Topic, consumer.NewAuditLogger(log), log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := cons.Run(ctx); err != nil {
			log.Error("consumer stopped", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("Получен сигнал завершения")
	cancel()
	_ = cons.Close()
	time.Sleep(200 * time.Millisecond)
}
