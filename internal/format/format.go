// Package format renders metric values for display.
package format

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/stwalsh4118/wardlens/internal/models"
)

// NotAvailable is shown for missing values.
const NotAvailable = "N/A"

const (
	numberMaxFraction  = 3
	percentDecimals    = 1
	ratioDecimals      = 2
	compactMaxFraction = 1
)

var printer = message.NewPrinter(language.English)

// Value formats v according to f.
func Value(v float64, f models.NumberFormat) string {
	switch f {
	case models.FormatCurrency:
		return Currency(v)
	case models.FormatPercent:
		return Percent(v, percentDecimals)
	case models.FormatRatio:
		return Ratio(v)
	case models.FormatBoolean:
		return Boolean(v)
	case models.FormatCount:
		return Number(v)
	default:
		panic(fmt.Sprintf("format: unhandled number format %v", f))
	}
}

// Optional formats a possibly missing value.
func Optional(v *float64, f models.NumberFormat) string {
	if v == nil {
		return NotAvailable
	}
	return Value(*v, f)
}

// Currency renders whole US dollars with thousands separators, e.g. "$97,410".
func Currency(v float64) string {
	d := decimal.NewFromFloat(v).Round(0)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	return sign + "$" + printer.Sprintf("%d", d.IntPart())
}

// Number renders v with thousands separators and at most three fraction
// digits, trailing zeros removed.
func Number(v float64) string {
	return grouped(decimal.NewFromFloat(v), numberMaxFraction)
}

// Percent renders v with a fixed number of decimals and a percent sign.
func Percent(v float64, decimals int) string {
	return decimal.NewFromFloat(v).StringFixed(int32(decimals)) + "%"
}

// Ratio renders v with two decimals.
func Ratio(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(ratioDecimals)
}

// Boolean renders nonzero as Yes.
func Boolean(v float64) string {
	if v != 0 {
		return "Yes"
	}
	return "No"
}

// Gap renders a signed difference. Positive gaps carry a leading "+".
// Only currency gaps are rendered as money; everything else as a percent.
func Gap(v float64, f models.NumberFormat) string {
	sign := ""
	if v > 0 {
		sign = "+"
	}
	if f == models.FormatCurrency {
		return sign + Currency(v)
	}
	return sign + Percent(v, percentDecimals)
}

var compactUnits = []struct {
	threshold decimal.Decimal
	suffix    string
}{
	{decimal.New(1, 12), "T"},
	{decimal.New(1, 9), "B"},
	{decimal.New(1, 6), "M"},
	{decimal.New(1, 3), "K"},
}

// Compact renders v in short notation, e.g. "1.2K" or "672K".
func Compact(v float64) string {
	d := decimal.NewFromFloat(v)
	abs := d.Abs()
	for _, u := range compactUnits {
		if abs.GreaterThanOrEqual(u.threshold) {
			return compactDigits(d.Div(u.threshold)) + u.suffix
		}
	}
	return compactDigits(d)
}

// compactDigits keeps one fraction digit only for single-digit values.
func compactDigits(d decimal.Decimal) string {
	places := int32(0)
	if d.Abs().LessThan(decimal.NewFromInt(10)) {
		places = compactMaxFraction
	}
	return d.Round(places).String()
}

func grouped(d decimal.Decimal, maxFraction int32) string {
	d = d.Round(maxFraction)
	s := d.String()
	fraction := 0
	if i := strings.IndexByte(s, '.'); i >= 0 {
		fraction = len(s) - i - 1
	}
	return printer.Sprintf(fmt.Sprintf("%%.%df", fraction), d.InexactFloat64())
}
