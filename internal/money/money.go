// Package money parses and formats catalog price strings.
//
// Upstream prices are free text ("1,250 افغانی", "۲۵۰", "250 AFN"); amounts
// are whole afghani with no fractional part. Parsing is deliberately
// forgiving: anything unparsable yields zero rather than an error, because
// the data source is untrusted free text.
package money

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Suffix is the currency suffix appended by Format.
const Suffix = " افغانی"

// Parse extracts the numeric amount from a price string. Every rune that is
// not an ASCII digit or a comma is stripped, then commas are removed as
// thousands separators. Unparsable input yields zero.
func Parse(s string) decimal.Decimal {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == ',' {
			b.WriteRune(r)
		}
	}
	clean := strings.ReplaceAll(b.String(), ",", "")
	if clean == "" {
		return decimal.Zero
	}

	n, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return decimal.Zero
	}
	return decimal.NewFromInt(n)
}

// Format renders an amount with thousands separators and the currency suffix,
// e.g. 1250 -> "1,250 افغانی".
func Format(d decimal.Decimal) string {
	return FormatGroups(d) + Suffix
}

// FormatGroups renders an amount with thousands separators and no suffix.
func FormatGroups(d decimal.Decimal) string {
	s := d.Round(0).String()
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
		if len(s) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(',')
		}
	}
	return b.String()
}
