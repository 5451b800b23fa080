package macro

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"InvestmentHelper/internal/model"
)

// Placeholder is shown for values the provider did not send.
const Placeholder = "N/A"

var printer = message.NewPrinter(language.English)

// FormatValue renders the indicator value with grouping and at most two
// decimals, falling back to the raw text.
func FormatValue(ind model.Indicator) string {
	if ind.Value.Valid {
		f, _ := ind.Value.Decimal.Float64()
		return printer.Sprint(number.Decimal(f, number.MaxFractionDigits(2)))
	}
	if ind.RawValue != "" {
		return ind.RawValue
	}
	return Placeholder
}

// Label returns "Category (Country)".
func Label(ind model.Indicator) string {
	category, country := ind.Category, ind.Country
	if category == "" {
		category = Placeholder
	}
	if country == "" {
		return category
	}
	return category + " (" + country + ")"
}
