package migrate

import (
	"context"

	"github.com/c0ex38/Backend-DuaMiss/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateOptions struct {
	CreateExtensions       bool // pgcrypto (только PostgreSQL)
	CreateChecks           bool // CHECK-ограничения на диапазоны (только PostgreSQL)
	CreateIndexes          bool // функциональные UNIQUE-индексы lower(...)
	CreateFKsViaSQL        bool // FK через SQL (только PostgreSQL)
	CreateUpdatedAtTrigger bool // триггер updated_at для orders (только PostgreSQL)
}

func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{
		CreateExtensions:       true,
		CreateChecks:           true,
		CreateIndexes:          true,
		CreateFKsViaSQL:        true,
		CreateUpdatedAtTrigger: true,
	}
}

// PortableMigrateOptions: набор, который работает и на SQLite (тесты).
func PortableMigrateOptions() MigrateOptions {
	return MigrateOptions{CreateIndexes: true}
}

type step struct {
	name string
	sql  string
}

var checkSteps = []step{
	{"chk_products_price_range", `
ALTER TABLE products DROP CONSTRAINT IF EXISTS chk_products_price_range;
ALTER TABLE products ADD CONSTRAINT chk_products_price_range
  CHECK (price >= 0.01 AND price <= 999999.99);`},
	{"chk_orders_percentages", `
ALTER TABLE orders DROP CONSTRAINT IF EXISTS chk_orders_percentages;
ALTER TABLE orders ADD CONSTRAINT chk_orders_percentages
  CHECK (global_discount BETWEEN 0 AND 100 AND vat_rate BETWEEN 0 AND 100);`},
	{"chk_order_items_quantity_range", `
ALTER TABLE order_items DROP CONSTRAINT IF EXISTS chk_order_items_quantity_range;
ALTER TABLE order_items ADD CONSTRAINT chk_order_items_quantity_range
  CHECK (quantity BETWEEN 1 AND 999999);`},
	{"chk_order_items_unit_price_range", `
ALTER TABLE order_items DROP CONSTRAINT IF EXISTS chk_order_items_unit_price_range;
ALTER TABLE order_items ADD CONSTRAINT chk_order_items_unit_price_range
  CHECK (unit_price >= 0.01 AND unit_price <= 999999.99);`},
	{"chk_order_items_discount_range", `
ALTER TABLE order_items DROP CONSTRAINT IF EXISTS chk_order_items_discount_range;
ALTER TABLE order_items ADD CONSTRAINT chk_order_items_discount_range
  CHECK (item_discount BETWEEN 0 AND 100);`},
}

var indexSteps = []step{
	// Имя компании уникально в рамках владельца, без учёта регистра
	{"ux_companies_owner_lower_name", `
CREATE UNIQUE INDEX IF NOT EXISTS ux_companies_owner_lower_name
ON companies (owner_id, lower(name));`},
	// Код товара уникален по всей системе
	{"ux_products_lower_code", `
CREATE UNIQUE INDEX IF NOT EXISTS ux_products_lower_code
ON products (lower(code));`},
	{"ux_users_lower_username", `
CREATE UNIQUE INDEX IF NOT EXISTS ux_users_lower_username
ON users (lower(username));`},
	{"ix_orders_owner_created", `
CREATE INDEX IF NOT EXISTS ix_orders_owner_created
ON orders (owner_id, created_at DESC);`},
	{"ix_order_items_order_position", `
CREATE INDEX IF NOT EXISTS ix_order_items_order_position
ON order_items (order_id, position);`},
}

var fkSteps = []step{
	{"fk_order_items_order", `
ALTER TABLE order_items
  DROP CONSTRAINT IF EXISTS fk_order_items_order,
  ADD CONSTRAINT fk_order_items_order
    FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE;`},
	{"fk_companies_owner", `
ALTER TABLE companies
  DROP CONSTRAINT IF EXISTS fk_companies_owner,
  ADD CONSTRAINT fk_companies_owner
    FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE;`},
	{"fk_products_owner", `
ALTER TABLE products
  DROP CONSTRAINT IF EXISTS fk_products_owner,
  ADD CONSTRAINT fk_products_owner
    FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE;`},
	{"fk_orders_owner", `
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS fk_orders_owner,
  ADD CONSTRAINT fk_orders_owner
    FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE;`},
}

func runSteps(db *gorm.DB, log *zap.Logger, steps []step) error {
	for _, s := range steps {
		if err := db.Exec(s.sql).Error; err != nil {
			log.Error("Не удалось выполнить шаг миграции", zap.String("step", s.name), zap.Error(err))
			return err
		}
	}
	return nil
}

func MigrateDB(ctx context.Context, db *gorm.DB, log *zap.Logger, opt MigrateOptions) error {
	log.Info("Начало миграции базы данных")
	db = db.WithContext(ctx)

	if opt.CreateExtensions {
		log.Info("Создание расширений PostgreSQL")
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
			log.Error("Не удалось включить расширение pgcrypto", zap.Error(err))
			return err
		}
	}

	log.Info("Создание таблиц users, companies, products, orders, order_items")
	if err := db.AutoMigrate(&models.User{}, &models.Company{}, &models.Product{}, &models.Order{}, &models.OrderItem{}); err != nil {
		log.Error("Не удалось создать таблицы", zap.Error(err))
		return err
	}
	log.Info("Таблицы успешно созданы")

	if opt.CreateUpdatedAtTrigger {
		log.Info("Создание триггера updated_at для orders")
		if err := db.Exec(`
CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
BEGIN NEW.updated_at = clock_timestamp(); RETURN NEW; END; $$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_orders_updated ON orders;
CREATE TRIGGER trg_orders_updated
BEFORE UPDATE ON orders
FOR EACH ROW EXECUTE FUNCTION set_updated_at();
`).Error; err != nil {
			log.Error("Не удалось создать триггер updated_at", zap.Error(err))
			return err
		}
	}

	if opt.CreateChecks {
		log.Info("Создание CHECK-ограничений")
		if err := runSteps(db, log, checkSteps); err != nil {
			return err
		}
	}

	if opt.CreateIndexes {
		log.Info("Создание индексов")
		if err := runSteps(db, log, indexSteps); err != nil {
			return err
		}
	}

	if opt.CreateFKsViaSQL {
		log.Info("Создание внешних ключей")
		if err := runSteps(db, log, fkSteps); err != nil {
			return err
		}
	}

	log.Info("Миграция базы данных успешно завершена")
	return nil
}
