package consumer

import (
	"context"

	"github.com/c0ex38/Backend-DuaMiss/internal/service"

	"go.uber.org/zap"
)

// AuditLogger пишет журнал изменений заказов в структурированный лог.
type AuditLogger struct {
	log *zap.Logger
}

var _ OrderEventHandler = (*AuditLogger)(nil)

func NewAuditLogger(log *zap.Logger) *AuditLogger {
	return &AuditLogger{log: log.Named("audit")}
}

func orderFields(e service.OrderEvent) []zap.Field {
	return []zap.Field{
		zap.String("order_id", e.OrderID.String()),
		zap.String("owner_id", e.OwnerID.String()),
		zap.String("company_id", e.CompanyID.String()),
		zap.String("delivery_date", e.DeliveryDate),
		zap.Int("items", len(e.Items)),
		zap.String("subtotal", e.Subtotal),
		zap.String("discount_amount", e.DiscountAmount),
		zap.String("vat_amount", e.VATAmount),
		zap.String("total", e.Total),
		zap.Time("occurred_at", e.OccurredAt),
	}
}

func (a *AuditLogger) OrderCreated(_ context.Context, e service.OrderEvent) error {
	a.log.Info("Заказ создан", orderFields(e)...)
	return nil
}

func (a *AuditLogger) OrderUpdated(_ context.Context, e service.OrderEvent) error {
	a.log.Info("Заказ изменён", orderFields(e)...)
	return nil
}

func (a *AuditLogger) OrderDeleted(_ context.Context, e service.OrderDeletedEvent) error {
	a.log.Info("Заказ удалён",
		zap.String("order_id", e.OrderID.String()),
		zap.String("owner_id", e.OwnerID.String()),
		zap.Time("occurred_at", e.OccurredAt))
	return nil
}
