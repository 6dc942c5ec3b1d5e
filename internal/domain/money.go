package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits stored for every amount.
// Balances are persisted as NUMERIC(20,2); XOF has no minor unit in
// practice but partner currencies in the region use two.
const Scale = 2

// Money represents a monetary value in a specific currency. Amounts are
// fixed-point decimals, never binary floats.
type Money struct {
	Amount   decimal.Decimal
	Currency string // ISO 4217
}

// NewMoney creates a Money value, normalising the amount to the ledger scale.
func NewMoney(amount decimal.Decimal, currency string) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{
		Amount:   amount.Round(Scale),
		Currency: currency,
	}
}

// MoneyFromString parses a decimal string such as "1500.00".
func MoneyFromString(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	return NewMoney(d, currency), nil
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.Amount.IsPositive()
}

// Add returns the sum of two amounts in the same currency.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.Currency, other.Currency)
	}
	return NewMoney(m.Amount.Add(other.Amount), m.Currency), nil
}

// Sub returns the difference of two amounts in the same currency.
func (m Money) Sub(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.Currency, other.Currency)
	}
	return NewMoney(m.Amount.Sub(other.Amount), m.Currency), nil
}

// String returns the fixed-scale representation, e.g. "1500.00 XOF".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(Scale), m.Currency)
}
