package pricing

import (
	"errors"
	"testing"

	"github.com/goobits/storefront/internal/models"
)

func TestFormatPrice(t *testing.T) {
	if got := FormatPrice(0); got != "0.00" {
		t.Fatalf("unexpected zero format: %s", got)
	}
	if got := FormatPrice(1999); got != "19.99" {
		t.Fatalf("unexpected format: %s", got)
	}
	if got := FormatPrice(-500); got != "-5.00" {
		t.Fatalf("unexpected negative format: %s", got)
	}
	if got := FormatPrice(5); got != "0.05" {
		t.Fatalf("unexpected sub-dime format: %s", got)
	}
}

func TestFormatPriceWithSymbol(t *testing.T) {
	if got := FormatPriceWithSymbol(1999, ""); got != "$19.99" {
		t.Fatalf("unexpected default symbol format: %s", got)
	}
	if got := FormatPriceWithSymbol(1999, "€"); got != "€19.99" {
		t.Fatalf("unexpected symbol format: %s", got)
	}
}

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		amount   int64
		code     string
		expected string
	}{
		{1999, "USD", "$19.99"},
		{1999, "EUR", "€19.99"},
		{1999, "GBP", "£19.99"},
		{1999, "JPY", "¥19.99"},
		{1999, "XYZ", "XYZ19.99"},
		{1999, "", "$19.99"},
		{1999, "eur", "€19.99"},
	}
	for _, tc := range cases {
		if got := FormatCurrency(tc.amount, tc.code); got != tc.expected {
			t.Fatalf("unexpected currency format for %s: got=%s expected=%s", tc.code, got, tc.expected)
		}
	}
}

func TestLineItemTotal(t *testing.T) {
	got, err := LineItemTotal(1000, 2)
	if err != nil {
		t.Fatalf("line item total failed: %v", err)
	}
	if got != "20.00" {
		t.Fatalf("unexpected line item total: %s", got)
	}

	if got != FormatPrice(1000*2) {
		t.Fatalf("line item total should equal formatted product: %s", got)
	}

	if _, err := LineItemTotal(1000, 0); !errors.Is(err, ErrAmountInvalid) {
		t.Fatalf("expected ErrAmountInvalid for zero quantity, got %v", err)
	}
	if _, err := LineItemTotal(-100, 1); !errors.Is(err, ErrAmountInvalid) {
		t.Fatalf("expected ErrAmountInvalid for negative price, got %v", err)
	}
}

func TestCartReaders(t *testing.T) {
	if got := CartSubtotal(nil); got != "0.00" {
		t.Fatalf("unexpected nil cart subtotal: %s", got)
	}
	if got := CartSubtotal(&models.Cart{Subtotal: 3500}); got != "0.00" {
		t.Fatalf("cart without items collection should format zero subtotal, got %s", got)
	}

	cart := &models.Cart{
		Items:         []models.LineItem{{ID: "item_1", UnitPrice: 1000, Quantity: 2}},
		Subtotal:      3500,
		ShippingTotal: 599,
		TaxTotal:      0,
		Total:         4099,
	}
	if got := CartSubtotal(cart); got != "35.00" {
		t.Fatalf("unexpected subtotal: %s", got)
	}
	if got := CartShippingTotal(cart); got != "5.99" {
		t.Fatalf("unexpected shipping total: %s", got)
	}
	if got := CartTaxTotal(cart); got != "0.00" {
		t.Fatalf("unexpected tax total: %s", got)
	}
	if got := CartTotal(cart); got != "40.99" {
		t.Fatalf("unexpected order total: %s", got)
	}
}
