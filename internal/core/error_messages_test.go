package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"duplicate sentinel", ErrDuplicate, "DB001"},
		{"postgres duplicate key", errors.New("ERROR: duplicate key value violates unique constraint \"products_stock_code_key\""), "DB001"},
		{"sqlite unique constraint", errors.New("constraint failed: UNIQUE constraint failed: products.stock_code"), "DB002"},
		{"referenced sentinel", fmt.Errorf("delete product: %w", ErrReferenced), "DB003"},
		{"not found sentinel", ErrNotFound, "DB008"},
		{"connection refused", errors.New("dial tcp: connection refused"), "DB004"},
		{"sqlite busy", errors.New("database is locked (5) (SQLITE_BUSY)"), "DB007"},
		{"empty cart", ErrEmptyCart, "SALE001"},
		{"insufficient stock", &InsufficientStockError{StockCodes: []string{"A1"}}, "SALE002"},
		{"missing product", &ProductNotFoundError{ProductID: "p-1"}, "SALE003"},
		{"bad discount", ErrInvalidDiscount, "SALE004"},
		{"receipt exhausted", ErrReceiptExhausted, "SALE005"},
		{"bad number", invalid("Buying Price", "abc", "must be a valid number"), "VAL001"},
		{"bad quantity", invalid("Quantity", "1.5", "must be a whole number"), "VAL002"},
		{"blank field", invalid("Name", "", "is required"), "VAL003"},
		{"missing column", errors.New(`missing required column "Stock Code"`), "VAL004"},
		{"bad email", invalid("Email", "x", "must be a valid email address"), "VAL005"},
		{"empty file", ErrEmptyInput, "FILE005"},
		{"too many imports", ErrTooManyImports, "IMP002"},
		{"unknown entity", errors.New("unknown entity: widgets"), "IMP001"},
		{"rate limit", errors.New("rate limit exceeded"), "RATE001"},
		{"unknown error returns default", errors.New("some random internal error"), "ERR000"},
		{"case insensitive matching", errors.New("DUPLICATE KEY value"), "DB001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(ErrReferenced)
	want := "The record is linked to other records (Code: DB003). Remove or reassign the records that depend on it first"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}

	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"known error is user facing", ErrEmptyCart, true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := fmt.Errorf("insert product: %w", ErrDuplicate)
		userErr := NewUserError(techErr)

		if userErr.Error() != "A record with this value already exists" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}
		if !errors.Is(userErr, ErrDuplicate) {
			t.Error("Unwrap() should expose the original error")
		}
	})
}

func TestDescribeError(t *testing.T) {
	v := invalid("Quantity", "x", "must be a whole number")
	if got := describeError(v); got != "Quantity must be a whole number" {
		t.Errorf("describeError(validation) = %q", got)
	}

	got := describeError(ErrDuplicate)
	if got != FormatUserError(ErrDuplicate) {
		t.Errorf("describeError(duplicate) = %q", got)
	}
}
