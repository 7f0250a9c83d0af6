package service

import (
	"context"
	"errors"
	"time"

	"github.com/c0ex38/Backend-DuaMiss/internal/models"
	"github.com/c0ex38/Backend-DuaMiss/internal/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	// UnitPrice обязателен: цена фиксируется в заказе на момент оформления.
	UnitPrice    *decimal.Decimal
	ItemDiscount *decimal.Decimal
}

type CreateOrderInput struct {
	// Malformed: ошибки разбора запроса (id, даты). Они попадают в общий
	// список ошибок полей вместе с проверками сервиса.
	Malformed validation.Errors

	CompanyID      uuid.UUID
	DeliveryDate   *time.Time
	GlobalDiscount *decimal.Decimal
	VATRate        *decimal.Decimal
	Items          []OrderItemInput
}

// UpdateOrderInput: nil fields are left untouched; a non-nil Items replaces every line.
type UpdateOrderInput struct {
	Malformed validation.Errors

	CompanyID      *uuid.UUID
	DeliveryDate   *time.Time
	GlobalDiscount *decimal.Decimal
	VATRate        *decimal.Decimal
	Items          []OrderItemInput
}

type ListFilter struct {
	CompanyID *uuid.UUID
	Limit     int
	Offset    int
}

type OrderService interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, in UpdateOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, f ListFilter) ([]models.Order, int64, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
}

// ErrOrderDeleted возвращается кэшем для заказа, удалённого после попадания в кэш.
var ErrOrderDeleted = errors.New("order deleted")

// OrderCache: кэш чтения заказов. Get возвращает nil, nil при промахе.
type OrderCache interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// Add кладёт заказ, только если записи ещё нет. Так чтение не затирает
	// более свежую запись, положенную после коммита изменения.
	Add(ctx context.Context, o *models.Order) error
	// Set заменяет запись, если updated_at заказа новее сохранённого.
	Set(ctx context.Context, o *models.Order) error
	// MarkDeleted оставляет метку удаления на время TTL.
	MarkDeleted(ctx context.Context, id uuid.UUID) error
}
