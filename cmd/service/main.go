package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/c0ex38/Backend-DuaMiss/config"
	"github.com/c0ex38/Backend-DuaMiss/internal/cache"
	"github.com/c0ex38/Backend-DuaMiss/internal/database"
	"github.com/c0ex38/Backend-DuaMiss/internal/handlers"
	"github.com/c0ex38/Backend-DuaMiss/internal/hashing"
	"github.com/c0ex38/Backend-DuaMiss/internal/logger"
	"github.com/c0ex38/Backend-DuaMiss/internal/producer"
	"github.com/c0ex38/Backend-DuaMiss/internal/repository"
	"github.com/c0ex38/Backend-DuaMiss/internal/router"
	"github.com/c0ex38/Backend-DuaMiss/internal/service"
	"github.com/c0ex38/Backend-DuaMiss/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func listenAddr(port string) string {
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

// @Title Order Desk API
// @Version 1.0
// @Description Компании, товары и заказы с точным расчётом итогов
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()
	if !isDev {
		gin.SetMode(gin.ReleaseMode)
	}

	cfg := config.Load(log)
	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	repos := repository.New(db)

	// Шина событий и кэш опциональны (nil отключает)
	var events service.EventBus
	if len(cfg.Kafka.Brokers) > 0 {
		p := producer.NewOrderEventProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer p.Close()
		events = p
		log.Info("Публикация событий заказов включена", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	var orderCache service.OrderCache
	if cfg.Redis.Enabled {
		rdb, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		if err != nil {
			log.Fatal("Не удалось подключиться к Redis", zap.Error(err))
		}
		defer rdb.Close()
		orderCache = cache.NewOrderCache(rdb, cfg.Redis.TTL)
	}

	h := handlers.NewHandler(
		service.NewOrderService(repos, events, orderCache, log),
		service.NewCatalogService(repos, log),
		service.NewUserService(repos, hashing.NewBcrypt(0), log),
		repos,
		log,
	)
	verifier := token.NewHSVerifier(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience)

	srv := &http.Server{
		Addr:              listenAddr(cfg.Port),
		Handler:           router.Router(h, verifier, cfg.CORSOrigins, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Запуск HTTP сервера", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP сервер завершился с ошибкой", zap.Error(err))
		}
	}()

	<-quit
	log.Info("Остановка HTTP сервера...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Ошибка при остановке HTTP сервера", zap.Error(err))
	}
	log.Info("HTTP сервер остановлен")
}
