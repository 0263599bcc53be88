package normalize

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/dropflow/product-extractor/internal/models"
)

func TestPrice(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "12.99", expected: "12.99"},
		{name: "dollar with thousands separator", input: "$1,234.56", expected: "1234.56"},
		{name: "soles", input: "S/45.00", expected: "45"},
		{name: "decimal comma", input: "45,90 €", expected: "45.9"},
		{name: "european thousands", input: "1.234,56", expected: "1234.56"},
		{name: "dotted thousands only", input: "1.234.567", expected: "1234567"},
		{name: "surrounded by text", input: "Precio: US $7.89 por unidad", expected: "7.89"},
		{name: "integer", input: "250", expected: "250"},
		{name: "no numeric substring", input: "consultar precio", expected: "0"},
		{name: "empty", input: "", expected: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Price(tt.input)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)),
				"Price(%q) = %s, want %s", tt.input, got, tt.expected)
		})
	}
}

func TestCurrency(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "S/45.00", expected: "PEN"},
		{input: "US $12.99", expected: "USD"},
		{input: "$1,234.56", expected: "USD"},
		{input: "45,90 €", expected: "EUR"},
		{input: "£9.99", expected: "GBP"},
		{input: "12.99", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Currency(tt.input))
		})
	}
}

func TestTierQuantity(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{input: "1 - 99 pieces", expected: 1},
		{input: ">= 100 unidades", expected: 100},
		{input: "500+", expected: 500},
		{input: "sin cantidad", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, TierQuantity(tt.input))
		})
	}
}

func TestRepresentativePrice(t *testing.T) {
	tiers := []models.PriceTier{
		{MinQuantity: 1, Price: decimal.RequireFromString("5.00")},
		{MinQuantity: 100, Price: decimal.RequireFromString("4.50")},
	}

	got := RepresentativePrice(tiers)
	assert.True(t, got.Equal(decimal.RequireFromString("5.00")), "got %s", got)

	// Source order is not required to be sorted.
	reversed := []models.PriceTier{tiers[1], tiers[0]}
	got = RepresentativePrice(reversed)
	assert.True(t, got.Equal(decimal.RequireFromString("5.00")), "got %s", got)

	assert.True(t, RepresentativePrice(nil).IsZero())
}
