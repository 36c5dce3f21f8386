package compose

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// displayLocale is the locale amounts are formatted for.
var displayLocale = language.BritishEnglish

// en-GB separators.
const (
	groupSeparator   = ","
	decimalSeparator = "."
)

// MoneyFormatter formats amounts in a single currency.
type MoneyFormatter struct {
	symbol string
	scale  int
}

// NewMoneyFormatter returns a formatter for the ISO 4217 code. Unknown codes
// are printed as a prefix with two decimals.
func NewMoneyFormatter(code string) *MoneyFormatter {
	p := message.NewPrinter(displayLocale)
	unit, err := currency.ParseISO(code)
	if err != nil {
		return &MoneyFormatter{symbol: code + " ", scale: 2}
	}
	scale, _ := currency.Standard.Rounding(unit)
	return &MoneyFormatter{
		symbol: p.Sprint(currency.Symbol(unit)),
		scale:  scale,
	}
}

// Format renders d with the currency symbol, grouping and the currency's
// standard number of decimals. Negative amounts carry a leading minus.
func (f *MoneyFormatter) Format(d decimal.Decimal) string {
	d = d.Round(int32(f.scale))
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	return sign + f.symbol + groupDigits(d.StringFixed(int32(f.scale)))
}

// groupDigits inserts group separators into the integer part of an unsigned
// fixed-point string.
func groupDigits(fixed string) string {
	intPart, frac, hasFrac := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(groupSeparator)
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteString(decimalSeparator)
		b.WriteString(frac)
	}
	return b.String()
}
