// Package format renders money, dates and identifiers for display.
// Every function is pure.
package format

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// DefaultCurrencySymbol is the rupee sign used across the till.
const DefaultCurrencySymbol = "₹"

// Currency formats v as rupees with two decimals and comma-grouped thousands.
func Currency(v decimal.Decimal) string {
	return CurrencyWith(v, DefaultCurrencySymbol, 2)
}

// CurrencyWith formats v with the given symbol and number of decimals.
// Grouping is always in threes: 1234567.8 -> 1,234,567.80.
func CurrencyWith(v decimal.Decimal, symbol string, decimals int32) string {
	if decimals < 0 {
		decimals = 0
	}

	fixed := v.StringFixed(decimals)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}

	intPart, fracPart, hasFrac := strings.Cut(fixed, ".")

	out := symbol + sign + groupThousands(intPart)
	if hasFrac {
		out += "." + fracPart
	}

	return out
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var sb strings.Builder

	lead := len(digits) % 3
	if lead > 0 {
		sb.WriteString(digits[:lead])
	}

	for i := lead; i < len(digits); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}

		sb.WriteString(digits[i : i+3])
	}

	return sb.String()
}

// Date formats t the way the en-IN locale shows a short date with time,
// e.g. "15 Oct 2026, 02:30 pm".
func Date(t time.Time) string {
	return t.Format("2 Jan 2006, 03:04 pm")
}

// Phone formats Indian phone numbers. Ten digits become ddd-ddd-dddd; longer
// numbers keep the extra leading digits as a country code. Anything shorter
// is returned unchanged.
func Phone(raw string) string {
	if raw == "" {
		return ""
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}

		return -1
	}, raw)

	switch {
	case len(digits) == 10:
		return splitPhone(digits)
	case len(digits) > 10:
		cut := len(digits) - 10
		return fmt.Sprintf("+%s %s", digits[:cut], splitPhone(digits[cut:]))
	}

	return raw
}

func splitPhone(d string) string {
	return d[:3] + "-" + d[3:6] + "-" + d[6:]
}

// Truncate shortens text to maxLen runes and appends "..." when it was cut.
func Truncate(text string, maxLen int) string {
	r := []rune(text)
	if len(r) <= maxLen {
		return text
	}

	return string(r[:maxLen]) + "..."
}

// Percentage formats v with the given decimals and a trailing percent sign.
func Percentage(v decimal.Decimal, decimals int32) string {
	return v.StringFixed(decimals) + "%"
}

// BillNumber joins a prefix with a five-digit zero-padded sequence and an
// optional suffix: BillNumber("TEMP", 7, "") == "TEMP-00007".
func BillNumber(prefix string, n int, suffix string) string {
	out := fmt.Sprintf("%s-%05d", prefix, n)
	if suffix != "" {
		out += "-" + suffix
	}

	return out
}

// SKU builds a product code from the first three letters of the category,
// upper-cased, the product id and an optional variant.
func SKU(category, id, variant string) string {
	code := []rune(strings.Map(unicode.ToUpper, category))
	if len(code) > 3 {
		code = code[:3]
	}

	out := string(code) + "-" + id
	if variant != "" {
		out += "-" + variant
	}

	return out
}
