// Package core provides the till's domain types and money handling.
//
// Amounts are held as integer cents. Parsing accepts the decimal strings the
// transaction form submits and distinguishes malformed input from
// non-positive values so each can surface its own message.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseAmountCents converts a decimal string to cents with half-up rounding
// on the third decimal place.
//
// It accepts both dot (12.34) and comma (12,34) separators. A string that is
// not a number fails with ErrAmountFormat; a well-formed zero or negative
// amount fails with ErrAmountNotPositive.
func ParseAmountCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrAmountFormat
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	negative := false
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		negative = s[0] == '-'
		s = s[1:]
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrAmountFormat
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" && fracPart == "" {
		return 0, ErrAmountFormat
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrAmountFormat
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrAmountFormat
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrAmountFormat
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrAmountFormat
	}
	// Take first two fractional digits; half-up rounding on the third
	var fracCents int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if negative || cents <= 0 {
		return 0, ErrAmountNotPositive
	}
	return cents, nil
}

// Amount renders the money value as a plain decimal string (e.g. "70.00"),
// the form used by the report pages and the spreadsheet export.
func (m Money) Amount() string {
	neg := m.Cents < 0
	c := m.Cents
	if neg {
		c = -c
	}
	s := strconv.FormatInt(c/100, 10) + "." + fmt.Sprintf("%02d", c%100)
	if neg {
		return "-" + s
	}
	return s
}

// Float returns the decimal value as a float64 for spreadsheet cells.
// Use cents for arithmetic; this is a presentation conversion only.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}
