// Package core provides the subscription domain model and its formatting
// helpers.
//
// This file holds the supported currency table and the locale-aware amount
// formatter built on golang.org/x/text.
package core

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// SymbolPlacement tells the formatter on which side of the number the
// currency symbol goes for a given locale.
type SymbolPlacement int

const (
	SymbolBefore SymbolPlacement = iota
	SymbolAfter
)

// Currency is one entry of the supported currency table.
type Currency struct {
	Code      string          `json:"code"`
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Locale    string          `json:"locale"`
	Placement SymbolPlacement `json:"-"`
	// Separator sits between symbol and number ("" or a no-break space).
	Separator string `json:"-"`
}

const nbsp = " "

// Currencies is the supported currency table. The first entry is the
// fallback for unknown codes.
var Currencies = []Currency{
	{Code: "USD", Symbol: "$", Name: "US Dollar", Locale: "en-US"},
	{Code: "EUR", Symbol: "€", Name: "Euro", Locale: "de-DE", Placement: SymbolAfter, Separator: nbsp},
	{Code: "GBP", Symbol: "£", Name: "British Pound", Locale: "en-GB"},
	{Code: "NGN", Symbol: "₦", Name: "Nigerian Naira", Locale: "en-NG"},
	{Code: "GHS", Symbol: "GH₵", Name: "Ghana Cedi", Locale: "en-GH"},
	{Code: "KES", Symbol: "Ksh", Name: "Kenyan Shilling", Locale: "en-KE"},
	{Code: "ZAR", Symbol: "R", Name: "South African Rand", Locale: "en-ZA", Separator: nbsp},
	{Code: "INR", Symbol: "₹", Name: "Indian Rupee", Locale: "en-IN"},
	{Code: "JPY", Symbol: "￥", Name: "Japanese Yen", Locale: "ja-JP"},
	{Code: "CNY", Symbol: "¥", Name: "Chinese Yuan", Locale: "zh-CN"},
}

// LookupCurrency returns the table entry for code.
func LookupCurrency(code string) (Currency, bool) {
	for _, c := range Currencies {
		if c.Code == code {
			return c, true
		}
	}
	return Currency{}, false
}

// ResolveCurrency returns the table entry for code, falling back to the first
// entry when the code is unknown.
func ResolveCurrency(code string) Currency {
	if c, ok := LookupCurrency(code); ok {
		return c
	}
	return Currencies[0]
}

// CurrencyCodes returns the supported codes in table order.
func CurrencyCodes() []string {
	codes := make([]string, len(Currencies))
	for i, c := range Currencies {
		codes[i] = c.Code
	}
	return codes
}

// FormatCurrency renders amount in the currency's canonical locale with
// exactly two fraction digits, e.g. "$1,234.50" or "1.234,50 €".
func FormatCurrency(amount float64, code string) string {
	c := ResolveCurrency(code)
	tag, err := language.Parse(c.Locale)
	if err != nil {
		tag = language.AmericanEnglish
	}
	p := message.NewPrinter(tag)
	digits := p.Sprint(number.Decimal(amount,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2)))

	if c.Placement == SymbolAfter {
		return digits + c.Separator + c.Symbol
	}
	if amount < 0 && len(digits) > 0 && digits[0] == '-' {
		return "-" + c.Symbol + c.Separator + digits[1:]
	}
	return c.Symbol + c.Separator + digits
}
