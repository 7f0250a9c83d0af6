package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/c0ex38/Backend-DuaMiss/internal/models"
	"github.com/c0ex38/Backend-DuaMiss/internal/repository"
	"github.com/c0ex38/Backend-DuaMiss/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeBus struct {
	mu      sync.Mutex
	created []OrderEvent
	updated []OrderEvent
	deleted []OrderDeletedEvent
	err     error
}

func (b *fakeBus) PublishOrderCreated(_ context.Context, e OrderEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.created = append(b.created, e)
	return b.err
}

func (b *fakeBus) PublishOrderUpdated(_ context.Context, e OrderEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updated = append(b.updated, e)
	return b.err
}

func (b *fakeBus) PublishOrderDeleted(_ context.Context, e OrderDeletedEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, e)
	return b.err
}

type cacheEntry struct {
	order   *models.Order
	deleted bool
}

// memCache повторяет семантику Redis-кэша: Add только в пустой ключ,
// Set только более новой версией, удаление оставляет метку.
type memCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID]cacheEntry
	sets    int
	marks   int

	// beforeAdd вызывается до вставки, без блокировки.
	beforeAdd func(o *models.Order)
}

func newMemCache() *memCache { return &memCache{entries: map[uuid.UUID]cacheEntry{}} }

func (c *memCache) Get(_ context.Context, id uuid.UUID) (*models.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		return nil, nil
	}
	if e.deleted {
		return nil, ErrOrderDeleted
	}
	return e.order, nil
}

func (c *memCache) Add(_ context.Context, o *models.Order) error {
	if hook := c.beforeAdd; hook != nil {
		c.beforeAdd = nil
		hook(o)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[o.ID]; !ok {
		c.entries[o.ID] = cacheEntry{order: o}
	}
	return nil
}

func (c *memCache) Set(_ context.Context, o *models.Order) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	cur, ok := c.entries[o.ID]
	if ok && (cur.deleted || !o.UpdatedAt.After(cur.order.UpdatedAt)) {
		return nil
	}
	c.entries[o.ID] = cacheEntry{order: o}
	return nil
}

func (c *memCache) MarkDeleted(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.marks++
	c.entries[id] = cacheEntry{deleted: true}
	return nil
}

func (c *memCache) cached(id uuid.UUID) (*models.Order, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	return e.order, ok && !e.deleted
}

type env struct {
	db      *gorm.DB
	repo    *repository.Repository
	orders  OrderService
	catalog CatalogService
	bus     *fakeBus
}

func newEnv(t *testing.T, cache OrderCache) *env {
	t.Helper()
	db := testutil.SetupTestSQLite(t)
	repo := repository.New(db)
	bus := &fakeBus{}
	return &env{
		db:      db,
		repo:    repo,
		orders:  NewOrderService(repo, bus, cache, zap.NewNop()),
		catalog: NewCatalogService(repo, zap.NewNop()),
		bus:     bus,
	}
}

// principal creates a user row and returns a context acting as that user.
func (e *env) principal(t *testing.T, username string) (context.Context, uuid.UUID) {
	t.Helper()
	u := &models.User{Username: username, Password: "hash", CreatedAt: time.Now()}
	if err := e.repo.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return WithUserID(context.Background(), u.ID), u.ID
}

func (e *env) company(t *testing.T, ctx context.Context, name string) *models.Company {
	t.Helper()
	c, err := e.catalog.CreateCompany(ctx, name)
	if err != nil {
		t.Fatalf("CreateCompany(%q): %v", name, err)
	}
	return c
}

func (e *env) product(t *testing.T, ctx context.Context, name, code, price string) *models.Product {
	t.Helper()
	p := decimal.RequireFromString(price)
	prod, err := e.catalog.CreateProduct(ctx, ProductInput{Name: name, Code: code, Price: &p})
	if err != nil {
		t.Fatalf("CreateProduct(%q): %v", code, err)
	}
	return prod
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func line(p *models.Product, qty int, price, discount string) OrderItemInput {
	return OrderItemInput{ProductID: p.ID, Quantity: qty, UnitPrice: decPtr(price), ItemDiscount: decPtr(discount)}
}

func (e *env) countRows(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
