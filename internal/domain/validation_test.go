package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantErr error
	}{
		{"valid amount", "1500.50", nil},
		{"whole rand", "10000", nil},
		{"zero", "0", ErrInvalidAmount},
		{"negative", "-5", ErrInvalidAmount},
		{"too precise", "10.005", ErrAmountTooPrecise},
		{"too large", "100000001", ErrAmountTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := decimal.NewFromString(tt.amount)
			if err != nil {
				t.Fatalf("bad test fixture: %v", err)
			}

			err = ValidateAmount(amount)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateAmount() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSplitVAT(t *testing.T) {
	// Each component rounds independently.
	b := SplitVAT(decimal.NewFromFloat(1000.00))

	if !b.Subtotal.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("subtotal = %s", b.Subtotal)
	}
	if !b.VAT.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("vat = %s", b.VAT)
	}
	if !b.Total.Equal(decimal.NewFromInt(1150)) {
		t.Fatalf("total = %s", b.Total)
	}

	odd := SplitVAT(decimal.NewFromFloat(33.33))
	if !odd.VAT.Equal(decimal.NewFromFloat(5.00)) {
		t.Fatalf("vat on 33.33 = %s, want 5.00", odd.VAT)
	}
}

func TestValidatePagination(t *testing.T) {
	limit, offset := ValidatePagination(0, -5)
	if limit != 50 || offset != 0 {
		t.Fatalf("defaults: limit=%d offset=%d", limit, offset)
	}

	limit, _ = ValidatePagination(5000, 0)
	if limit != 1000 {
		t.Fatalf("cap: limit=%d", limit)
	}
}
