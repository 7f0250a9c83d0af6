package main

import (
	"context"
	"os"

	"github.com/c0ex38/Backend-DuaMiss/config"
	"github.com/c0ex38/Backend-DuaMiss/internal/database"
	"github.com/c0ex38/Backend-DuaMiss/internal/logger"
	"github.com/c0ex38/Backend-DuaMiss/internal/migrate"

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

	dbCfg := config.LoadDB(log)

	db := database.ConnectDBForMigration(&dbCfg, log)
	defer database.CloseDB(db, log)

	ctx := context.Background()

	opts := migrate.DefaultMigrateOptions()
	// Supabase и другие managed-PostgreSQL не дают создавать расширения
	if os.Getenv("MIGRATE_SKIP_EXTENSIONS") == "true" {
		opts.CreateExtensions = false
	}

	if err := migrate.MigrateDB(ctx, db, log, opts); err != nil {
		log.Fatal("Ошибка при выполнении миграции", zap.Error(err))
	}

	log.Info("Миграция успешно завершена")
}
