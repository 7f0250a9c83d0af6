package service

import (
	"errors"
	"testing"

	"github.com/c0ex38/Backend-DuaMiss/internal/validation"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeTotals_Example(t *testing.T) {
	lines := []PricedLine{{Quantity: 2, UnitPrice: dec("100.00"), ItemDiscount: dec("10")}}

	got, err := ComputeTotals(Rates{GlobalDiscount: dec("0"), VATRate: dec("18")}, lines)
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}

	want := map[string][2]decimal.Decimal{
		"subtotal": {got.Subtotal, dec("180.00")},
		"discount": {got.DiscountAmount, dec("0.00")},
		"vat":      {got.VATAmount, dec("32.40")},
		"total":    {got.Total, dec("212.40")},
	}
	for name, pair := range want {
		if !pair[0].Equal(pair[1]) {
			t.Fatalf("%s = %s, want %s", name, pair[0], pair[1])
		}
	}
}

func TestComputeTotals_NoIntermediateRounding(t *testing.T) {
	lines := []PricedLine{{Quantity: 3, UnitPrice: dec("0.01"), ItemDiscount: dec("33.33")}}

	got, err := ComputeTotals(Rates{GlobalDiscount: dec("12.5"), VATRate: dec("7.75")}, lines)
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	// 0.01 - 0.01*33.33/100 = 0.006667; *3
	if got.Subtotal.String() != "0.020001" {
		t.Fatalf("subtotal = %s, want 0.020001", got.Subtotal)
	}
	if !got.DiscountAmount.Equal(dec("0.002500125")) {
		t.Fatalf("discount = %s", got.DiscountAmount)
	}
}

func TestComputeTotals_IdentityAndDeterminism(t *testing.T) {
	cases := []struct {
		rates Rates
		lines []PricedLine
	}{
		{Rates{dec("5"), dec("18")}, []PricedLine{
			{Quantity: 7, UnitPrice: dec("19.99"), ItemDiscount: dec("3.5")},
			{Quantity: 1, UnitPrice: dec("999999.99"), ItemDiscount: dec("99.99")},
		}},
		{Rates{dec("100"), dec("20")}, []PricedLine{{Quantity: 999999, UnitPrice: dec("0.01"), ItemDiscount: dec("0")}}},
		{Rates{dec("0.01"), dec("0")}, []PricedLine{
			{Quantity: 3, UnitPrice: dec("33.33"), ItemDiscount: dec("33.33")},
			{Quantity: 2, UnitPrice: dec("0.07"), ItemDiscount: dec("100")},
		}},
	}

	for i, c := range cases {
		first, err := ComputeTotals(c.rates, c.lines)
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		second, _ := ComputeTotals(c.rates, c.lines)

		if first.Subtotal.String() != second.Subtotal.String() ||
			first.DiscountAmount.String() != second.DiscountAmount.String() ||
			first.VATAmount.String() != second.VATAmount.String() ||
			first.Total.String() != second.Total.String() {
			t.Fatalf("case %d: results differ between runs: %+v vs %+v", i, first, second)
		}

		identity := first.Subtotal.Sub(first.DiscountAmount).Add(first.VATAmount)
		if !first.Total.Equal(identity) {
			t.Fatalf("case %d: total %s != subtotal - discount + vat (%s)", i, first.Total, identity)
		}
	}
}

func TestComputeTotals_Empty(t *testing.T) {
	_, err := ComputeTotals(Rates{}, nil)
	if !errors.Is(err, validation.ErrInvalid) {
		t.Fatalf("expected validation error, got %v", err)
	}
	list, _ := validation.As(err)
	if !list.Has("items", validation.EmptyOrder) {
		t.Fatalf("expected EmptyOrder, got %v", err)
	}
}
