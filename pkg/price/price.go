// Package price parses and formats the money strings travel sources
// emit: "USD 842.50", "$1,234", "€100-150 per night", "Rp 1.250.000".
package price

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/awidjaja/tripplanner/internal/models"
)

var currencySymbols = map[string]string{
	"$":  "USD",
	"€":  "EUR",
	"£":  "GBP",
	"¥":  "JPY",
	"₹":  "INR",
	"Rp": "IDR",
}

var codeRe = regexp.MustCompile(`\b([A-Z]{3})\b`)

// numberRe matches the first numeric run, allowing thousands separators
// in either convention. Ranges like "100-150" resolve to the low end.
var numberRe = regexp.MustCompile(`\d+(?:[.,]\d{3})*(?:[.,]\d{1,2})?`)

// Parse extracts the first amount from a price string. It returns nil
// when no digits are present: zero is a valid price, absence is not.
func Parse(s string) (*models.Money, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}

	currency := ""
	if m := codeRe.FindString(s); m != "" {
		currency = m
	} else {
		for sym, code := range currencySymbols {
			if strings.Contains(s, sym) {
				currency = code
				break
			}
		}
	}

	num := numberRe.FindString(s)
	if num == "" {
		return nil, false
	}

	amount, err := decimal.NewFromString(normalizeSeparators(num))
	if err != nil {
		return nil, false
	}

	return &models.Money{Amount: amount, Currency: currency}, true
}

// normalizeSeparators reduces "1,234.56", "1.234,56" and "1.250.000" to
// a plain decimal string.
func normalizeSeparators(num string) string {
	lastDot := strings.LastIndexByte(num, '.')
	lastComma := strings.LastIndexByte(num, ',')

	switch {
	case lastDot < 0 && lastComma < 0:
		return num
	case lastDot >= 0 && lastComma >= 0:
		if lastDot > lastComma {
			return strings.ReplaceAll(num, ",", "")
		}
		return strings.ReplaceAll(strings.ReplaceAll(num, ".", ""), ",", ".")
	case lastComma >= 0:
		return normalizeSingle(num, ',')
	default:
		return normalizeSingle(num, '.')
	}
}

// normalizeSingle decides whether a lone separator is decimal or
// thousands: exactly three trailing digits and it repeats or the run is
// long enough to be a grouping, otherwise decimal.
func normalizeSingle(num string, sep byte) string {
	parts := strings.Split(num, string(sep))
	last := parts[len(parts)-1]
	if len(parts) > 2 || len(last) == 3 {
		return strings.Join(parts, "")
	}
	return strings.Join(parts, ".")
}

// Format renders an amount with comma thousands separators, e.g.
// "USD 1,234.50".
func Format(m models.Money) string {
	s := m.Amount.StringFixed(2)
	s = strings.TrimSuffix(s, ".00")

	intPart := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := b.String() + frac
	if neg {
		out = "-" + out
	}
	if m.Currency != "" {
		out = m.Currency + " " + out
	}
	return out
}
