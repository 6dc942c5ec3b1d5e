package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney_RoundsToScale(t *testing.T) {
	m := NewMoney(decimal.RequireFromString("1500.005"), "XOF")
	assert.Equal(t, "1500.01 XOF", m.String())
}

func TestNewMoney_DefaultCurrency(t *testing.T) {
	m := NewMoney(decimal.NewFromInt(100), "")
	assert.Equal(t, "XOF", m.Currency)
}

func TestMoneyFromString(t *testing.T) {
	m, err := MoneyFromString("250.50", "XOF")
	require.NoError(t, err)
	assert.Equal(t, "250.50 XOF", m.String())

	_, err = MoneyFromString("not-a-number", "XOF")
	assert.Error(t, err)
}

func TestMoney_AddSub(t *testing.T) {
	a, _ := MoneyFromString("100.00", "XOF")
	b, _ := MoneyFromString("40.25", "XOF")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "140.25 XOF", sum.String())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, "59.75 XOF", diff.String())
}

func TestMoney_CurrencyMismatch(t *testing.T) {
	a, _ := MoneyFromString("10", "XOF")
	b, _ := MoneyFromString("10", "GHS")

	_, err := a.Add(b)
	assert.Error(t, err)
	_, err = a.Sub(b)
	assert.Error(t, err)
}

func TestMoney_IsPositive(t *testing.T) {
	assert.True(t, NewMoney(decimal.NewFromInt(1), "XOF").IsPositive())
	assert.False(t, NewMoney(decimal.Zero, "XOF").IsPositive())
	assert.False(t, NewMoney(decimal.NewFromInt(-5), "XOF").IsPositive())
}
