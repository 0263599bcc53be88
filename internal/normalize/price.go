// Package normalize holds the pure field normalizers: price parsing,
// image-URL cleanup and variant/specification mapping. No I/O happens
// here.
package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dropflow/product-extractor/internal/models"
)

var numberPattern = regexp.MustCompile(`[0-9]+(?:[.,][0-9]+)*`)

// Price extracts the first currency-agnostic numeric substring from
// arbitrary text and parses it to a decimal. Thousands separators are
// stripped. Malformed or missing price text yields zero; the review
// flagger treats that as a completeness failure, never a parse error.
func Price(text string) decimal.Decimal {
	match := numberPattern.FindString(text)
	if match == "" {
		return decimal.Zero
	}

	value, err := decimal.NewFromString(normalizeSeparators(match))
	if err != nil || value.IsNegative() {
		return decimal.Zero
	}
	return value
}

// Currency infers a currency code only from an explicit adjacent symbol.
// Absent a symbol the extractor's platform default stands.
func Currency(text string) string {
	switch {
	case strings.Contains(text, "S/"):
		return "PEN"
	case strings.Contains(text, "US $"), strings.Contains(text, "$"):
		return "USD"
	case strings.Contains(text, "€"):
		return "EUR"
	case strings.Contains(text, "£"):
		return "GBP"
	default:
		return ""
	}
}

// normalizeSeparators reduces a raw numeric match to decimal syntax:
// "1,234.56" -> "1234.56", "45,90" -> "45.90", "1.234.567" -> "1234567".
func normalizeSeparators(s string) string {
	lastComma := strings.LastIndexByte(s, ',')
	lastDot := strings.LastIndexByte(s, '.')

	switch {
	case lastComma >= 0 && lastDot >= 0:
		// Both present: the later symbol is the decimal separator.
		if lastDot > lastComma {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastComma >= 0:
		// A single comma followed by one or two digits is a decimal
		// comma; anything else is a thousands separator.
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastDot >= 0:
		// Repeated dots are thousands grouping.
		if strings.Count(s, ".") > 1 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	return s
}

var quantityPattern = regexp.MustCompile(`[0-9]+`)

// TierQuantity extracts the minimum quantity from ladder-row text such as
// "1 - 99 pieces" or ">= 100 unidades". The first integer wins.
func TierQuantity(text string) int {
	match := quantityPattern.FindString(text)
	if match == "" {
		return 0
	}

	qty := 0
	for _, r := range match {
		qty = qty*10 + int(r-'0')
	}
	return qty
}

// RepresentativePrice selects the ladder tier with the lowest minimum
// quantity. Tier order is preserved by the caller; only the
// representative unit price is derived here.
func RepresentativePrice(tiers []models.PriceTier) decimal.Decimal {
	if len(tiers) == 0 {
		return decimal.Zero
	}

	best := tiers[0]
	for _, tier := range tiers[1:] {
		if tier.MinQuantity < best.MinQuantity {
			best = tier
		}
	}
	return best.Price
}
