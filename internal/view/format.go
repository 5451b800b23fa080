package view

import (
	"fmt"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"InvestmentHelper/internal/model"
)

// Placeholder is displayed for every absent value.
const Placeholder = "N/A"

// Text returns s, or the placeholder when blank.
func Text(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

// Number renders d with the given decimals.
func Number(d decimal.NullDecimal, places int32) string {
	if !d.Valid {
		return Placeholder
	}
	return d.Decimal.StringFixed(places)
}

// Percent renders a ratio (0.0123) as "1.23%".
func Percent(d decimal.NullDecimal) string {
	if !d.Valid {
		return Placeholder
	}
	return d.Decimal.Shift(2).StringFixed(2) + "%"
}

// Price renders d in currency using the currency's symbol and minor units.
// Unknown currencies fall back to "12.34 XYZ".
func Price(d decimal.NullDecimal, currency string) string {
	if !d.Valid {
		return Placeholder
	}
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		return d.Decimal.StringFixed(2)
	}
	c := money.GetCurrency(code)
	if c == nil {
		return d.Decimal.StringFixed(2) + " " + code
	}
	minor := d.Decimal.Shift(int32(c.Fraction)).Round(0).IntPart()
	return money.New(minor, code).Display()
}

// DayRange renders "high - low" with placeholders for missing ends.
func DayRange(q *model.Quote) string {
	if !q.DayHigh.Valid && !q.DayLow.Valid {
		return Placeholder
	}
	return Price(q.DayHigh, q.Currency) + " - " + Price(q.DayLow, q.Currency)
}

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws closes as a one-line unicode chart of at most width runes.
func Sparkline(points []model.PricePoint, width int) string {
	closes := sample(model.Closes(points), width)
	if len(closes) == 0 {
		return ""
	}
	lo, hi := bounds(closes)
	var sb strings.Builder
	for _, c := range closes {
		idx := 0
		if hi > lo {
			idx = int(math.Round((c - lo) / (hi - lo) * float64(len(sparkBlocks)-1)))
		}
		sb.WriteRune(sparkBlocks[idx])
	}
	return sb.String()
}

// ChartPoints returns an SVG polyline "points" attribute scaling the series
// into a width x height box, y growing downward.
func ChartPoints(points []model.PricePoint, width, height float64) string {
	closes := model.Closes(points)
	if len(closes) < 2 {
		return ""
	}
	lo, hi := bounds(closes)
	step := width / float64(len(closes)-1)
	parts := make([]string, len(closes))
	for i, c := range closes {
		y := height / 2
		if hi > lo {
			y = height - (c-lo)/(hi-lo)*height
		}
		parts[i] = fmt.Sprintf("%.1f,%.1f", float64(i)*step, y)
	}
	return strings.Join(parts, " ")
}

func sample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		return values
	}
	if width == 1 {
		return values[len(values)-1:]
	}
	out := make([]float64, width)
	for i := range out {
		out[i] = values[i*(len(values)-1)/(width-1)]
	}
	return out
}

func bounds(values []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
