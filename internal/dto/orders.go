package dto

import (
	"time"

	"github.com/c0ex38/Backend-DuaMiss/internal/models"
	"github.com/c0ex38/Backend-DuaMiss/internal/service"
	"github.com/c0ex38/Backend-DuaMiss/internal/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

// Десятичные значения принимаются и строкой, и числом JSON.
type OrderItemRequest struct {
	Product      string           `json:"product"`
	Quantity     int              `json:"quantity"`
	UnitPrice    *decimal.Decimal `json:"unit_price"`
	ItemDiscount *decimal.Decimal `json:"item_discount"`
}

type CreateOrderRequest struct {
	Company        string             `json:"company"`
	DeliveryDate   string             `json:"delivery_date"`
	GlobalDiscount *decimal.Decimal   `json:"global_discount"`
	VATRate        *decimal.Decimal   `json:"vat_rate"`
	Items          []OrderItemRequest `json:"items"`
}

// UpdateOrderRequest: Items == nil означает «позиции не меняются», [] даёт ошибку EmptyOrder.
type UpdateOrderRequest struct {
	Company        *string             `json:"company"`
	DeliveryDate   *string             `json:"delivery_date"`
	GlobalDiscount *decimal.Decimal    `json:"global_discount"`
	VATRate        *decimal.Decimal    `json:"vat_rate"`
	Items          *[]OrderItemRequest `json:"items"`
}

func parseRef(errs *validation.Errors, field, raw string) uuid.UUID {
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		errs.Add(validation.NewError(field, validation.InvalidFormat, "%s must be a valid id", field))
		return uuid.Nil
	}
	return id
}

func parseDate(errs *validation.Errors, raw string) *time.Time {
	if raw == "" {
		return nil
	}
	d, err := time.Parse(DateLayout, raw)
	if err != nil {
		errs.Add(validation.NewError("delivery_date", validation.InvalidFormat, "delivery date must be in YYYY-MM-DD format"))
		return nil
	}
	return &d
}

func itemsToInput(errs *validation.Errors, items []OrderItemRequest) []service.OrderItemInput {
	out := make([]service.OrderItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, service.OrderItemInput{
			ProductID:    parseRef(errs, "items", it.Product),
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			ItemDiscount: it.ItemDiscount,
		})
	}
	return out
}

// ToInput converts the payload. Malformed ids and dates are reported in Malformed,
// so the service returns them together with its own field checks.
func (r CreateOrderRequest) ToInput() service.CreateOrderInput {
	var errs validation.Errors
	in := service.CreateOrderInput{
		CompanyID:      parseRef(&errs, "company", r.Company),
		DeliveryDate:   parseDate(&errs, r.DeliveryDate),
		GlobalDiscount: r.GlobalDiscount,
		VATRate:        r.VATRate,
		Items:          itemsToInput(&errs, r.Items),
	}
	in.Malformed = errs
	return in
}

func (r UpdateOrderRequest) ToInput() service.UpdateOrderInput {
	var errs validation.Errors
	in := service.UpdateOrderInput{
		GlobalDiscount: r.GlobalDiscount,
		VATRate:        r.VATRate,
	}
	if r.Company != nil {
		if id := parseRef(&errs, "company", *r.Company); id != uuid.Nil || *r.Company == "" {
			in.CompanyID = &id
		}
	}
	if r.DeliveryDate != nil {
		if *r.DeliveryDate == "" {
			in.DeliveryDate = &time.Time{}
		} else if d := parseDate(&errs, *r.DeliveryDate); d != nil {
			in.DeliveryDate = d
		}
	}
	if r.Items != nil {
		in.Items = itemsToInput(&errs, *r.Items)
	}
	in.Malformed = errs
	return in
}

type OrderItemResponse struct {
	ID           string `json:"id"`
	Position     int    `json:"position"`
	Product      string `json:"product"`
	ProductName  string `json:"product_name,omitempty"`
	ProductCode  string `json:"product_code,omitempty"`
	Quantity     int    `json:"quantity"`
	UnitPrice    string `json:"unit_price"`
	ItemDiscount string `json:"item_discount"`
}

type OrderResponse struct {
	ID             string              `json:"id"`
	Company        string              `json:"company"`
	CompanyName    string              `json:"company_name,omitempty"`
	DeliveryDate   string              `json:"delivery_date"`
	Owner          string              `json:"owner"`
	GlobalDiscount string              `json:"global_discount"`
	VATRate        string              `json:"vat_rate"`
	Subtotal       string              `json:"subtotal"`
	DiscountAmount string              `json:"discount_amount"`
	VATAmount      string              `json:"vat_amount"`
	Total          string              `json:"total"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	Items          []OrderItemResponse `json:"items"`
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

func OrderFromModel(o *models.Order) OrderResponse {
	resp := OrderResponse{
		ID:             o.ID.String(),
		Company:        o.CompanyID.String(),
		DeliveryDate:   o.DeliveryDate.Format(DateLayout),
		Owner:          o.OwnerID.String(),
		GlobalDiscount: o.GlobalDiscount.String(),
		VATRate:        o.VATRate.String(),
		Subtotal:       o.Subtotal.String(),
		DiscountAmount: o.DiscountAmount.String(),
		VATAmount:      o.VATAmount.String(),
		Total:          o.Total.String(),
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
		Items:          make([]OrderItemResponse, 0, len(o.Items)),
	}
	if o.Company != nil {
		resp.CompanyName = o.Company.Name
	}
	for _, it := range o.Items {
		item := OrderItemResponse{
			ID:           it.ID.String(),
			Position:     it.Position,
			Product:      it.ProductID.String(),
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice.String(),
			ItemDiscount: it.ItemDiscount.String(),
		}
		if it.Product != nil {
			item.ProductName = it.Product.Name
			item.ProductCode = it.Product.Code
		}
		resp.Items = append(resp.Items, item)
	}
	return resp
}
