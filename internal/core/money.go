package core

import "strconv"

// FormatFixed renders amount with two decimals and no grouping ("15.99").
// Used where a plain machine-friendly figure is wanted, like report tables.
func FormatFixed(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
