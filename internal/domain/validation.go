package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrAmountTooLarge       = errors.New("amount exceeds maximum allowed")
	ErrAmountTooPrecise     = errors.New("amount has more than 2 decimal places")
	ErrDescriptionRequired  = errors.New("description is required")
	ErrInvalidDateRange     = errors.New("start date must not be after end date")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)

// Validation constants
const (
	MaxTransactionAmount = "100000000" // R100 million per entry
	currencyPlaces       = 2
)

// VATRate is the fixed statutory VAT rate applied to invoice subtotals.
var VATRate = decimal.NewFromFloat(0.15)

// ValidateAmount checks that a transaction amount is a positive currency
// value within bounds and 2-decimal precision.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	if amount.Exponent() < -currencyPlaces {
		return fmt.Errorf("%w: %s", ErrAmountTooPrecise, amount.String())
	}

	maxAmount, _ := decimal.NewFromString(MaxTransactionAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum is %s", ErrAmountTooLarge, MaxTransactionAmount)
	}

	return nil
}

// ValidatePaymentMethod checks a payment method string.
func ValidatePaymentMethod(m PaymentMethod) error {
	switch m {
	case PaymentMethodEFT, PaymentMethodCash, PaymentMethodCheque, PaymentMethodCard, PaymentMethodDebitOrder:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, m)
}

// Round2 rounds a currency amount to 2 decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(currencyPlaces)
}

// VATBreakdown is a subtotal split into VAT and total. Each component is
// rounded to 2 decimals independently, so Total may differ from
// Subtotal+VAT by a cent in edge cases; the stored components are
// authoritative.
type VATBreakdown struct {
	Subtotal decimal.Decimal
	VAT      decimal.Decimal
	Total    decimal.Decimal
}

// SplitVAT applies the fixed VAT rate to a subtotal.
func SplitVAT(subtotal decimal.Decimal) VATBreakdown {
	return VATBreakdown{
		Subtotal: Round2(subtotal),
		VAT:      Round2(subtotal.Mul(VATRate)),
		Total:    Round2(subtotal.Mul(VATRate.Add(decimal.NewFromInt(1)))),
	}
}

// ValidatePagination limits pagination parameters.
func ValidatePagination(limit, offset int) (int, int) {
	const maxPageSize = 1000
	const defaultPageSize = 50

	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
