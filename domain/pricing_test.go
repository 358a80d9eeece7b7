package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestEffectivePrice(t *testing.T) {
	tests := []struct {
		name string
		p    Product
		want string
	}{
		{"no sale price", Product{Price: dec("400")}, "400"},
		{"lower sale price", Product{Price: dec("400"), SalePrice: decPtr("300")}, "300"},
		{"higher sale price ignored", Product{Price: dec("400"), SalePrice: decPtr("450")}, "400"},
		{"equal sale price ignored", Product{Price: dec("400"), SalePrice: decPtr("400")}, "400"},
		{"zero sale price ignored", Product{Price: dec("400"), SalePrice: decPtr("0")}, "400"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.EffectivePrice(); !got.Equal(dec(tt.want)) {
				t.Fatalf("EffectivePrice() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPriceCartFreeShipping(t *testing.T) {
	a := Product{Price: dec("500"), Stock: 10}
	b := Product{Price: dec("400"), SalePrice: decPtr("300"), Stock: 5}

	totals := PriceCart([]PriceLine{
		{UnitPrice: a.EffectivePrice(), Quantity: 2},
		{UnitPrice: b.EffectivePrice(), Quantity: 1},
	})

	if totals.Subtotal.StringFixed(2) != "1300.00" {
		t.Fatalf("subtotal = %s", totals.Subtotal.StringFixed(2))
	}
	if !totals.ShippingCost.IsZero() {
		t.Fatalf("shipping = %s, want 0", totals.ShippingCost)
	}
	if totals.Tax.StringFixed(2) != "234.00" {
		t.Fatalf("tax = %s", totals.Tax.StringFixed(2))
	}
	if totals.Total.StringFixed(2) != "1534.00" {
		t.Fatalf("total = %s", totals.Total.StringFixed(2))
	}
}

func TestPriceCartFlatShipping(t *testing.T) {
	totals := PriceCart([]PriceLine{{UnitPrice: dec("199.99"), Quantity: 3}})

	if totals.Subtotal.StringFixed(2) != "599.97" {
		t.Fatalf("subtotal = %s", totals.Subtotal.StringFixed(2))
	}
	if totals.ShippingCost.StringFixed(2) != "50.00" {
		t.Fatalf("shipping = %s", totals.ShippingCost.StringFixed(2))
	}
	// 599.97 * 0.18 = 107.9946
	if totals.Tax.StringFixed(2) != "107.99" {
		t.Fatalf("tax = %s", totals.Tax.StringFixed(2))
	}
	if totals.Total.StringFixed(2) != "757.96" {
		t.Fatalf("total = %s", totals.Total.StringFixed(2))
	}
}

func TestPriceCartThresholdBoundary(t *testing.T) {
	totals := PriceCart([]PriceLine{{UnitPrice: dec("999"), Quantity: 1}})
	if !totals.ShippingCost.IsZero() {
		t.Fatalf("subtotal at threshold must ship free, got %s", totals.ShippingCost)
	}

	totals = PriceCart([]PriceLine{{UnitPrice: dec("998.99"), Quantity: 1}})
	if !totals.ShippingCost.Equal(FlatShippingFee) {
		t.Fatalf("subtotal below threshold must pay flat fee, got %s", totals.ShippingCost)
	}
}

func TestPriceCartRepeatable(t *testing.T) {
	lines := []PriceLine{{UnitPrice: dec("0.10"), Quantity: 3}, {UnitPrice: dec("0.20"), Quantity: 1}}
	first := PriceCart(lines)
	for i := 0; i < 100; i++ {
		if got := PriceCart(lines); !got.Total.Equal(first.Total) {
			t.Fatalf("total drifted: %s vs %s", got.Total, first.Total)
		}
	}
	if first.Subtotal.StringFixed(2) != "0.50" {
		t.Fatalf("subtotal = %s", first.Subtotal)
	}
}

func TestNewCart(t *testing.T) {
	p := &Product{Price: dec("120"), SalePrice: decPtr("99.50")}
	cart := NewCart([]CartItem{{Quantity: 2, Product: p}, {Quantity: 1, Product: &Product{Price: dec("10")}}})

	if cart.ItemCount != 3 {
		t.Fatalf("itemCount = %d", cart.ItemCount)
	}
	if cart.Subtotal != "209.00" {
		t.Fatalf("subtotal = %s", cart.Subtotal)
	}

	empty := NewCart(nil)
	if empty.Items == nil || empty.Subtotal != "0.00" {
		t.Fatalf("unexpected empty cart %+v", empty)
	}
}
