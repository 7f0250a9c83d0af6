package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode"

	"github.com/c0ex38/Backend-DuaMiss/internal/migrate"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func memoryName(t *testing.T) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, t.Name())
}

// SetupTestSQLite opens an isolated in-memory database per test and migrates it
// with the portable option set. A single connection keeps the memory DB alive.
func SetupTestSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", memoryName(t))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := migrate.MigrateDB(context.Background(), db, zap.NewNop(), migrate.PortableMigrateOptions()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
