package service

import (
	"github.com/c0ex38/Backend-DuaMiss/internal/models"
	"github.com/c0ex38/Backend-DuaMiss/internal/validation"

	"github.com/shopspring/decimal"
)

type Rates struct {
	GlobalDiscount decimal.Decimal
	VATRate        decimal.Decimal
}

type PricedLine struct {
	Quantity     int
	UnitPrice    decimal.Decimal
	ItemDiscount decimal.Decimal
}

// percentOf returns x*p/100 exactly: dividing by 100 is a decimal shift, no rounding.
func percentOf(x, p decimal.Decimal) decimal.Decimal {
	return x.Mul(p).Shift(-2)
}

func (l PricedLine) Total() decimal.Decimal {
	discounted := l.UnitPrice.Sub(percentOf(l.UnitPrice, l.ItemDiscount))
	return discounted.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ComputeTotals prices an order. Pure and deterministic; intermediate values keep full precision.
func ComputeTotals(r Rates, lines []PricedLine) (models.OrderTotals, error) {
	if len(lines) == 0 {
		return models.OrderTotals{}, validation.Single("items", validation.EmptyOrder, "order must contain at least one item")
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Total())
	}

	discount := percentOf(subtotal, r.GlobalDiscount)
	discounted := subtotal.Sub(discount)
	vat := percentOf(discounted, r.VATRate)

	return models.OrderTotals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		VATAmount:      vat,
		Total:          discounted.Add(vat),
	}, nil
}

func linesFromItems(items []models.OrderItem) []PricedLine {
	out := make([]PricedLine, 0, len(items))
	for _, it := range items {
		out = append(out, PricedLine{
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			ItemDiscount: it.ItemDiscount,
		})
	}
	return out
}
