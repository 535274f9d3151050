// Package core provides price parsing and formatting utilities.
//
// Prices are currency-agnostic decimal magnitudes. They are parsed once at
// the submission boundary so that no non-finite value ever reaches a store.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParsePrice converts user input into a non-negative decimal.
//
// Both dot (2.50) and comma (2,50) decimal separators are accepted. A
// leading minus yields ErrNegativePrice; exponents, thousands separators and
// anything else that is not a plain decimal number are rejected, so "NaN"
// and "Inf" can never be stored.
//
// Examples:
//
//	ParsePrice("2.50") -> 2.5, nil
//	ParsePrice("0")    -> 0, nil
//	ParsePrice("-1")   -> ErrNegativePrice
//	ParsePrice("abc")  -> ErrInvalidPrice
func ParsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrEmptyPrice
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrNegativePrice
	}
	s = strings.TrimPrefix(s, "+")

	dots := 0
	digits := 0
	for _, r := range s {
		switch {
		case r == '.':
			dots++
		case r >= '0' && r <= '9':
			digits++
		default:
			return decimal.Zero, ErrInvalidPrice
		}
	}
	if dots > 1 || digits == 0 {
		return decimal.Zero, ErrInvalidPrice
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidPrice
	}
	return d, nil
}

// FormatPrice renders a price with two decimals followed by the currency
// code, e.g. "2.50 USD".
func FormatPrice(p decimal.Decimal, currency string) string {
	if currency == "" {
		return p.StringFixed(2)
	}
	return p.StringFixed(2) + " " + currency
}
