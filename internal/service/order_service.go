package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/c0ex38/Backend-DuaMiss/internal/models"
	"github.com/c0ex38/Backend-DuaMiss/internal/repository"
	"github.com/c0ex38/Backend-DuaMiss/internal/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type orderService struct {
	repo   *repository.Repository
	events EventBus
	cache  OrderCache
	log    *zap.Logger
	now    func() time.Time
}

// NewOrderService: events and cache are optional (nil disables them).
func NewOrderService(repo *repository.Repository, events EventBus, cache OrderCache, log *zap.Logger) OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &orderService{
		repo:   repo,
		events: events,
		cache:  cache,
		log:    log,
		now:    time.Now,
	}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func checkRate(errs *validation.Errors, field, label string, v *decimal.Decimal) {
	if v != nil {
		errs.Add(validation.Percent(field, label, *v))
	}
}

func valueOrZero(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return *v
}

func (s *orderService) loadCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	c, err := s.repo.Companies.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load company: %w", err)
	}
	if c == nil {
		return nil, notFound("company", id)
	}
	return c, nil
}

func (s *orderService) loadProducts(ctx context.Context, items []OrderItemInput) (map[uuid.UUID]*models.Product, error) {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, it := range items {
		if it.ProductID == uuid.Nil {
			continue
		}
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}

	list, err := s.repo.Products.BatchGetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	out := make(map[uuid.UUID]*models.Product, len(list))
	for i := range list {
		out[list[i].ID] = &list[i]
	}
	return out, nil
}

func itemError(fe *validation.FieldError, n int, name string) *validation.FieldError {
	fe.Message = fmt.Sprintf("item %d (%s): %s", n, name, fe.Message)
	return fe
}

// checkItems returns the first offending line. A product id without a row is NotFound.
func checkItems(items []OrderItemInput, products map[uuid.UUID]*models.Product) (*validation.FieldError, error) {
	for idx, it := range items {
		n := idx + 1
		if it.ProductID == uuid.Nil {
			return validation.NewError("items", validation.MissingValue, "item %d: product is not specified", n), nil
		}
		p, ok := products[it.ProductID]
		if !ok {
			return nil, notFound("product", it.ProductID)
		}
		if fe := validation.Quantity("items", it.Quantity); fe != nil {
			return itemError(fe, n, p.Name), nil
		}
		if it.UnitPrice == nil {
			return itemError(validation.NewError("items", validation.MissingValue, "unit price is required"), n, p.Name), nil
		}
		if fe := validation.Money("items", "unit price", *it.UnitPrice); fe != nil {
			return itemError(fe, n, p.Name), nil
		}
		if it.ItemDiscount != nil {
			if fe := validation.Percent("items", "item discount", *it.ItemDiscount); fe != nil {
				return itemError(fe, n, p.Name), nil
			}
		}
	}
	return nil, nil
}

func productsInOrder(items []OrderItemInput, products map[uuid.UUID]*models.Product) []*models.Product {
	out := make([]*models.Product, 0, len(items))
	for _, it := range items {
		out = append(out, products[it.ProductID])
	}
	return out
}

// buildItems expects lines that already passed checkItems.
func buildItems(orderID uuid.UUID, in []OrderItemInput, now time.Time) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(in))
	for i, it := range in {
		items = append(items, models.OrderItem{
			OrderID:      orderID,
			Position:     i + 1,
			ProductID:    it.ProductID,
			Quantity:     it.Quantity,
			UnitPrice:    *it.UnitPrice,
			ItemDiscount: valueOrZero(it.ItemDiscount),
			CreatedAt:    now,
		})
	}
	return items
}

// checkLines validates the item list and guards product ownership.
func (s *orderService) checkLines(ctx context.Context, errs *validation.Errors, items []OrderItemInput) (map[uuid.UUID]*models.Product, error) {
	if len(items) == 0 {
		errs.Add(validation.NewError("items", validation.EmptyOrder, "order must contain at least one item"))
		return nil, nil
	}
	// строка с неразобранным id товара уже дала ошибку позиций
	if errs.Has("items", validation.InvalidFormat) {
		return nil, nil
	}
	products, err := s.loadProducts(ctx, items)
	if err != nil {
		return nil, err
	}
	fe, err := checkItems(items, products)
	if err != nil {
		return nil, err
	}
	errs.Add(fe)
	return products, nil
}

func (s *orderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	userID, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	errs := append(validation.Errors(nil), in.Malformed...)
	if in.CompanyID == uuid.Nil && !errs.Has("company", validation.InvalidFormat) {
		errs.Add(validation.NewError("company", validation.MissingValue, "company is required"))
	}
	if (in.DeliveryDate == nil || in.DeliveryDate.IsZero()) && !errs.Has("delivery_date", validation.InvalidFormat) {
		errs.Add(validation.NewError("delivery_date", validation.MissingValue, "delivery date is required"))
	}
	checkRate(&errs, "global_discount", "discount rate", in.GlobalDiscount)
	checkRate(&errs, "vat_rate", "VAT rate", in.VATRate)

	products, err := s.checkLines(ctx, &errs, in.Items)
	if err != nil {
		return nil, err
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	company, err := s.loadCompany(ctx, in.CompanyID)
	if err != nil {
		return nil, err
	}
	if err := GuardCompany(userID, company); err != nil {
		return nil, err
	}
	if err := GuardProducts(userID, productsInOrder(in.Items, products)); err != nil {
		return nil, err
	}

	rates := Rates{GlobalDiscount: valueOrZero(in.GlobalDiscount), VATRate: valueOrZero(in.VATRate)}
	now := s.now()

	var order *models.Order
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		header := &models.Order{
			CompanyID:      company.ID,
			DeliveryDate:   dateOnly(*in.DeliveryDate),
			OwnerID:        userID,
			GlobalDiscount: rates.GlobalDiscount,
			VATRate:        rates.VATRate,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.Orders.Create(ctx, header); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		items := buildItems(header.ID, in.Items, now)
		if err := tx.OrderItems.BulkCreate(ctx, items); err != nil {
			return fmt.Errorf("create order items: %w", err)
		}

		totals, err := ComputeTotals(rates, linesFromItems(items))
		if err != nil {
			return err
		}
		if err := tx.Orders.UpdateTotals(ctx, header.ID, totals); err != nil {
			return fmt.Errorf("store order totals: %w", err)
		}

		order, err = tx.Orders.GetByID(ctx, header.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish("order.created", func() error {
		return s.events.PublishOrderCreated(ctx, newOrderEvent(order, now))
	})
	return order, nil
}

func (s *orderService) UpdateOrder(ctx context.Context, id uuid.UUID, in UpdateOrderInput) (*models.Order, error) {
	userID, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.Orders.GetByIDForOwner(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if existing == nil {
		return nil, notFound("order", id)
	}

	fields := map[string]any{}

	errs := append(validation.Errors(nil), in.Malformed...)
	if in.CompanyID != nil && *in.CompanyID == uuid.Nil {
		errs.Add(validation.NewError("company", validation.MissingValue, "company is required"))
	}
	if in.DeliveryDate != nil {
		if in.DeliveryDate.IsZero() {
			errs.Add(validation.NewError("delivery_date", validation.MissingValue, "delivery date is required"))
		} else {
			fields["delivery_date"] = dateOnly(*in.DeliveryDate)
		}
	}
	checkRate(&errs, "global_discount", "discount rate", in.GlobalDiscount)
	checkRate(&errs, "vat_rate", "VAT rate", in.VATRate)
	if in.GlobalDiscount != nil {
		fields["global_discount"] = *in.GlobalDiscount
	}
	if in.VATRate != nil {
		fields["vat_rate"] = *in.VATRate
	}

	replaceItems := in.Items != nil
	var products map[uuid.UUID]*models.Product
	if replaceItems {
		if products, err = s.checkLines(ctx, &errs, in.Items); err != nil {
			return nil, err
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if in.CompanyID != nil && *in.CompanyID != existing.CompanyID {
		company, err := s.loadCompany(ctx, *in.CompanyID)
		if err != nil {
			return nil, err
		}
		if err := GuardCompany(userID, company); err != nil {
			return nil, err
		}
		fields["company_id"] = company.ID
	}
	if replaceItems {
		if err := GuardProducts(userID, productsInOrder(in.Items, products)); err != nil {
			return nil, err
		}
	}

	recompute := replaceItems || in.GlobalDiscount != nil || in.VATRate != nil

	var (
		order *models.Order
		now   time.Time
	)
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		// Ставки, которые не меняются этим запросом, берём из заблокированной строки:
		// итоги должны соответствовать тому, что лежит в заголовке после коммита.
		locked, err := tx.Orders.GetByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("lock order: %w", err)
		}
		if locked == nil {
			return notFound("order", id)
		}
		rates := Rates{GlobalDiscount: locked.GlobalDiscount, VATRate: locked.VATRate}
		if in.GlobalDiscount != nil {
			rates.GlobalDiscount = *in.GlobalDiscount
		}
		if in.VATRate != nil {
			rates.VATRate = *in.VATRate
		}

		now = s.now()
		fields["updated_at"] = now
		if err := tx.Orders.UpdateFields(ctx, id, fields); err != nil {
			return fmt.Errorf("update order: %w", err)
		}

		var items []models.OrderItem
		if replaceItems {
			if _, err := tx.OrderItems.DeleteByOrderID(ctx, id); err != nil {
				return fmt.Errorf("delete order items: %w", err)
			}
			items = buildItems(id, in.Items, now)
			if err := tx.OrderItems.BulkCreate(ctx, items); err != nil {
				return fmt.Errorf("create order items: %w", err)
			}
		} else if recompute {
			if items, err = tx.OrderItems.GetByOrderID(ctx, id); err != nil {
				return fmt.Errorf("load order items: %w", err)
			}
		}

		if recompute {
			totals, err := ComputeTotals(rates, linesFromItems(items))
			if err != nil {
				return err
			}
			if err := tx.Orders.UpdateTotals(ctx, id, totals); err != nil {
				return fmt.Errorf("store order totals: %w", err)
			}
		}

		order, err = tx.Orders.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.refresh(ctx, order)
	s.publish("order.updated", func() error {
		return s.events.PublishOrderUpdated(ctx, newOrderEvent(order, now))
	})
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	userID, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if errors.Is(err, ErrOrderDeleted) {
			return nil, notFound("order", id)
		}
		if err != nil {
			s.log.Warn("Ошибка чтения заказа из кэша", zap.String("order_id", id.String()), zap.Error(err))
		}
		if cached != nil {
			if cached.OwnerID != userID {
				return nil, notFound("order", id)
			}
			return cached, nil
		}
	}

	ord, err := s.repo.Orders.GetByIDForOwner(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if ord == nil {
		return nil, notFound("order", id)
	}

	if s.cache != nil {
		if err := s.cache.Add(ctx, ord); err != nil {
			s.log.Warn("Не удалось сохранить заказ в кэш", zap.String("order_id", id.String()), zap.Error(err))
		}
	}
	return ord, nil
}

func (s *orderService) ListOrders(ctx context.Context, f ListFilter) ([]models.Order, int64, error) {
	userID, err := requireAuth(ctx)
	if err != nil {
		return nil, 0, err
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	ordersPtr, total, err := s.repo.Orders.List(ctx, repository.OrderListFilter{
		OwnerID:   userID,
		CompanyID: f.CompanyID,
		Limit:     f.Limit,
		Offset:    f.Offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	orders := make([]models.Order, len(ordersPtr))
	for i, o := range ordersPtr {
		orders[i] = *o
	}
	return orders, total, nil
}

func (s *orderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	userID, err := requireAuth(ctx)
	if err != nil {
		return err
	}

	existing, err := s.repo.Orders.GetByIDForOwner(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("load order: %w", err)
	}
	if existing == nil {
		return notFound("order", id)
	}

	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if _, err := tx.OrderItems.DeleteByOrderID(ctx, id); err != nil {
			return fmt.Errorf("delete order items: %w", err)
		}
		deleted, err := tx.Orders.Delete(ctx, id)
		if err != nil {
			return fmt.Errorf("delete order: %w", err)
		}
		if !deleted {
			return notFound("order", id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.forget(ctx, id)
	s.publish("order.deleted", func() error {
		return s.events.PublishOrderDeleted(ctx, OrderDeletedEvent{OrderID: id, OwnerID: userID, OccurredAt: s.now()})
	})
	return nil
}

// publish runs after commit; a failed publish is logged, the order stays committed.
func (s *orderService) publish(event string, fn func() error) {
	if s.events == nil {
		return
	}
	if err := fn(); err != nil {
		s.log.Warn("Не удалось опубликовать событие заказа", zap.String("event", event), zap.Error(err))
	}
}

// refresh кладёт в кэш заказ после коммита. Запись чтения, начатого до
// коммита, уже не сможет её перезаписать (Add не трогает существующий ключ).
func (s *orderService) refresh(ctx context.Context, o *models.Order) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, o); err != nil {
		s.log.Warn("Не удалось обновить заказ в кэше", zap.String("order_id", o.ID.String()), zap.Error(err))
	}
}

func (s *orderService) forget(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.MarkDeleted(ctx, id); err != nil {
		s.log.Warn("Не удалось пометить заказ удалённым в кэше", zap.String("order_id", id.String()), zap.Error(err))
	}
}
