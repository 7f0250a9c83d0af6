package service

import (
	"context"
	"time"

	"github.com/c0ex38/Backend-DuaMiss/internal/models"

	"github.com/google/uuid"
)

type OrderItemEvent struct {
	ProductID    uuid.UUID `json:"product_id"`
	Position     int       `json:"position"`
	Quantity     int       `json:"quantity"`
	UnitPrice    string    `json:"unit_price"`
	ItemDiscount string    `json:"item_discount"`
}

type OrderEvent struct {
	OrderID        uuid.UUID        `json:"order_id"`
	OwnerID        uuid.UUID        `json:"owner_id"`
	CompanyID      uuid.UUID        `json:"company_id"`
	DeliveryDate   string           `json:"delivery_date"`
	GlobalDiscount string           `json:"global_discount"`
	VATRate        string           `json:"vat_rate"`
	Subtotal       string           `json:"subtotal"`
	DiscountAmount string           `json:"discount_amount"`
	VATAmount      string           `json:"vat_amount"`
	Total          string           `json:"total"`
	Items          []OrderItemEvent `json:"items"`
	OccurredAt     time.Time        `json:"occurred_at"`
}

type OrderDeletedEvent struct {
	OrderID    uuid.UUID `json:"order_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type EventBus interface {
	PublishOrderCreated(ctx context.Context, e OrderEvent) error
	PublishOrderUpdated(ctx context.Context, e OrderEvent) error
	PublishOrderDeleted(ctx context.Context, e OrderDeletedEvent) error
}

func newOrderEvent(o *models.Order, at time.Time) OrderEvent {
	items := make([]OrderItemEvent, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemEvent{
			ProductID:    it.ProductID,
			Position:     it.Position,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice.String(),
			ItemDiscount: it.ItemDiscount.String(),
		})
	}
	return OrderEvent{
		OrderID:        o.ID,
		OwnerID:        o.OwnerID,
		CompanyID:      o.CompanyID,
		DeliveryDate:   o.DeliveryDate.Format(time.DateOnly),
		GlobalDiscount: o.GlobalDiscount.String(),
		VATRate:        o.VATRate.String(),
		Subtotal:       o.Subtotal.String(),
		DiscountAmount: o.DiscountAmount.String(),
		VATAmount:      o.VATAmount.String(),
		Total:          o.Total.String(),
		Items:          items,
		OccurredAt:     at,
	}
}
