package core

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestApplyDiscount(t *testing.T) {
	tests := []struct {
		name     string
		subtotal string
		discount string
		dt       DiscountType
		want     string
	}{
		{"ten percent", "200", "10", DiscountPercentage, "180"},
		{"hundred percent", "200", "100", DiscountPercentage, "0"},
		{"over hundred percent floors", "200", "150", DiscountPercentage, "0"},
		{"percentage rounds to cents", "9.99", "15", DiscountPercentage, "8.49"},
		{"fixed", "200", "25.50", DiscountFixed, "174.5"},
		{"fixed equal to subtotal", "200", "200", DiscountFixed, "0"},
		{"fixed above subtotal floors", "200", "250", DiscountFixed, "0"},
		{"no discount", "12.34", "0", DiscountFixed, "12.34"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyDiscount(dec(tt.subtotal), dec(tt.discount), tt.dt)
			if !got.Equal(dec(tt.want)) {
				t.Errorf("ApplyDiscount(%s, %s, %s) = %s, want %s", tt.subtotal, tt.discount, tt.dt, got, tt.want)
			}
		})
	}
}

func TestComputeTotals(t *testing.T) {
	items := []SaleItem{
		{UnitPrice: dec("2.50"), Quantity: 4},
		{UnitPrice: dec("0.333"), Quantity: 3},
	}
	subtotal, total := ComputeTotals(items, dec("10"), DiscountPercentage)

	if !items[0].Subtotal.Equal(dec("10")) || !items[1].Subtotal.Equal(dec("1")) {
		t.Errorf("item subtotals = %s, %s", items[0].Subtotal, items[1].Subtotal)
	}
	if !subtotal.Equal(dec("11")) {
		t.Errorf("subtotal = %s, want 11", subtotal)
	}
	if !total.Equal(dec("9.9")) {
		t.Errorf("total = %s, want 9.90", total)
	}
}

func TestValidateSaleRequest(t *testing.T) {
	item := LineItem{ProductID: "p1", Quantity: 1}
	neg := dec("-1")

	tests := []struct {
		name    string
		req     SaleRequest
		wantErr error
		wantVal bool
	}{
		{"empty cart", SaleRequest{CustomerID: "c", SellerID: "s"}, ErrEmptyCart, false},
		{"missing customer", SaleRequest{SellerID: "s", Items: []LineItem{item}}, nil, true},
		{"missing seller", SaleRequest{CustomerID: "c", Items: []LineItem{item}}, nil, true},
		{"missing product id", SaleRequest{CustomerID: "c", SellerID: "s", Items: []LineItem{{Quantity: 1}}}, nil, true},
		{"zero quantity", SaleRequest{CustomerID: "c", SellerID: "s", Items: []LineItem{{ProductID: "p", Quantity: 0}}}, ErrInvalidQuantity, false},
		{"negative override", SaleRequest{CustomerID: "c", SellerID: "s", Items: []LineItem{{ProductID: "p", Quantity: 1, UnitPriceOverride: &neg}}}, ErrInvalidPrice, false},
		{"negative discount", SaleRequest{CustomerID: "c", SellerID: "s", Items: []LineItem{item}, Discount: neg}, ErrInvalidDiscount, false},
		{"unknown discount type", SaleRequest{CustomerID: "c", SellerID: "s", Items: []LineItem{item}, DiscountType: "bogo"}, ErrInvalidDiscountType, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validateSaleRequest(tt.req)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantVal && !IsValidationError(err) {
				t.Errorf("err = %v, want ValidationError", err)
			}
		})
	}
}

func TestValidateSaleRequest_Defaults(t *testing.T) {
	req, err := validateSaleRequest(SaleRequest{
		CustomerID: " c1 ",
		SellerID:   "s1",
		Items:      []LineItem{{ProductID: "p1", Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.DiscountType != DiscountFixed {
		t.Errorf("DiscountType = %q, want fixed", req.DiscountType)
	}
	if req.PaymentMethod != DefaultPaymentMethod {
		t.Errorf("PaymentMethod = %q, want %q", req.PaymentMethod, DefaultPaymentMethod)
	}
	if req.CustomerID != "c1" {
		t.Errorf("CustomerID = %q, want trimmed", req.CustomerID)
	}
}

func TestValidateSaleRequest_RoundsDiscount(t *testing.T) {
	tests := []struct {
		name     string
		discount string
		dt       DiscountType
		want     string
	}{
		{"fixed half up", "12.345", DiscountFixed, "12.35"},
		{"fixed down", "0.004", DiscountFixed, "0"},
		{"percentage", "7.125", DiscountPercentage, "7.13"},
		{"already two places", "5.50", DiscountFixed, "5.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := validateSaleRequest(SaleRequest{
				CustomerID:   "c1",
				SellerID:     "s1",
				Items:        []LineItem{{ProductID: "p1", Quantity: 1}},
				Discount:     decimal.RequireFromString(tt.discount),
				DiscountType: tt.dt,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !req.Discount.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("Discount = %s, want %s", req.Discount, tt.want)
			}
		})
	}
}

func TestReceiptGenerator(t *testing.T) {
	fixed := time.Date(2024, 3, 9, 14, 5, 7, 0, time.FixedZone("X", 2*3600))
	g := NewReceiptGenerator(func() time.Time { return fixed })

	pattern := regexp.MustCompile(`^RCP-20240309-120507-[0-9A-F]{8}$`)
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		n := g.Next()
		if !pattern.MatchString(n) {
			t.Fatalf("receipt %q does not match %s", n, pattern)
		}
		if seen[n] {
			t.Fatalf("duplicate receipt %q", n)
		}
		seen[n] = true
	}
}

func TestSaleFailureReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrEmptyCart, "empty_cart"},
		{&InsufficientStockError{StockCodes: []string{"A"}}, "insufficient_stock"},
		{&ProductNotFoundError{ProductID: "x"}, "not_found"},
		{ErrInvalidQuantity, "invalid"},
		{errors.New("disk full"), "error"},
	}
	for _, tt := range tests {
		if got := saleFailureReason(tt.err); got != tt.want {
			t.Errorf("saleFailureReason(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
