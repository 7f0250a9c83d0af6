package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/c0ex38/Backend-DuaMiss/internal/models"
	"github.com/c0ex38/Backend-DuaMiss/internal/service"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultTTL = time.Minute

func NewRedisClient(addr, password string, db int, log *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Redis подключён", zap.String("addr", addr))
	return rdb, nil
}

// OrderCache хранит заказы в Redis под ключом order:<id>.
// Значение несёт версию (updated_at в микросекундах), чтобы запись после коммита
// не перетиралась устаревшим снимком, прочитанным до него.
type OrderCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

var _ service.OrderCache = (*OrderCache)(nil)

type envelope struct {
	V       int64         `json:"v"`
	Deleted bool          `json:"deleted,omitempty"`
	Order   *models.Order `json:"order,omitempty"`
}

// Заменяет значение, только если оно новее текущего и заказ не помечен удалённым.
var setNewer = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
	local e = cjson.decode(cur)
	if e.deleted or tonumber(e.v) >= tonumber(ARGV[2]) then
		return 0
	end
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

func NewOrderCache(client redis.Cmdable, ttl time.Duration) *OrderCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &OrderCache{client: client, ttl: ttl}
}

func orderKey(id uuid.UUID) string { return fmt.Sprintf("order:%s", id) }

func version(o *models.Order) int64 { return o.UpdatedAt.UnixMicro() }

// Get возвращает nil, nil при промахе и service.ErrOrderDeleted для удалённого заказа.
func (c *OrderCache) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	data, err := c.client.Get(ctx, orderKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var e envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode cached order: %w", err)
	}
	if e.Deleted {
		return nil, service.ErrOrderDeleted
	}
	return e.Order, nil
}

// Add кладёт заказ, только если ключа ещё нет.
func (c *OrderCache) Add(ctx context.Context, o *models.Order) error {
	data, err := json.Marshal(envelope{V: version(o), Order: o})
	if err != nil {
		return err
	}
	return c.client.SetNX(ctx, orderKey(o.ID), data, c.ttl).Err()
}

func (c *OrderCache) Set(ctx context.Context, o *models.Order) error {
	v := version(o)
	data, err := json.Marshal(envelope{V: v, Order: o})
	if err != nil {
		return err
	}
	return setNewer.Run(ctx, c.client, []string{orderKey(o.ID)}, data, v, c.ttl.Milliseconds()).Err()
}

// MarkDeleted оставляет метку на время TTL, поэтому запоздавшие Add и Set не вернут заказ.
func (c *OrderCache) MarkDeleted(ctx context.Context, id uuid.UUID) error {
	data, err := json.Marshal(envelope{Deleted: true})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, orderKey(id), data, c.ttl).Err()
}
