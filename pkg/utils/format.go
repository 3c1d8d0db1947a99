// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"strings"
)

// FormatIndianCurrency formats a number in Indian currency format (lakhs, crores).
func FormatIndianCurrency(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(str, ".")

	result := "₹" + formatIndianNumber(parts[0]) + "." + parts[1]
	if negative {
		result = "-" + result
	}
	return result
}

// formatIndianNumber formats an integer string in the Indian numbering
// system: first group of three, then groups of two.
func formatIndianNumber(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	result := s[n-3:]
	s = s[:n-3]

	for len(s) > 0 {
		if len(s) >= 2 {
			result = s[len(s)-2:] + "," + result
			s = s[:len(s)-2]
		} else {
			result = s + "," + result
			s = ""
		}
	}
	return result
}

// FormatQuantity formats a quantity with Indian grouping.
func FormatQuantity(qty int) string {
	return formatIndianNumber(fmt.Sprintf("%d", qty))
}

// FormatPrice formats a price with two decimals, or a dash when unset.
func FormatPrice(price float64) string {
	if price <= 0 {
		return "---"
	}
	return fmt.Sprintf("%.2f", price)
}

// Truncate shortens a string to at most n runes, appending an ellipsis
// when anything was cut. Chat messages carry ₹ and emoji, so the cut
// must land on a rune boundary.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
