// Package money converts between user-typed amounts and float64 values, and
// formats amounts for display in the configured locale.
package money

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var ErrEmptyAmount = errors.New("amount is empty")

// Parse reads a typed amount such as "12.5", "12,50", "1,234.56" or
// "R$ 1.234,56" and rounds it to cents. A trailing group of one or two digits
// after the last '.' or ',' is the fraction; every other separator groups
// thousands.
func Parse(raw string) (float64, error) {
	var (
		b        strings.Builder
		negative bool
		lastSep  = -1
	)
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '.' || r == ',':
			lastSep = b.Len()
		case r == '-' && b.Len() == 0:
			negative = true
		}
	}
	digits := b.String()
	if digits == "" {
		return 0, fmt.Errorf("%w: %q", ErrEmptyAmount, raw)
	}

	canonical := digits
	if lastSep >= 0 {
		if frac := len(digits) - lastSep; frac >= 1 && frac <= 2 {
			canonical = digits[:lastSep] + "." + digits[lastSep:]
		}
	}
	if negative {
		canonical = "-" + canonical
	}

	d, err := decimal.NewFromString(canonical)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	return d.Round(2).InexactFloat64(), nil
}

// ParseCents reads masked input the way a currency text field fills in:
// every digit typed shifts in from the right, so "12345" is 123.45.
func ParseCents(masked string) float64 {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, masked)
	if digits == "" {
		return 0
	}
	d, err := decimal.NewFromString(digits)
	if err != nil {
		return 0
	}
	return d.Shift(-2).InexactFloat64()
}

// Formatter prints amounts with a currency symbol and locale grouping.
type Formatter struct {
	printer *message.Printer
	symbol  string
}

// NewFormatter builds a formatter for a BCP 47 locale and an ISO 4217 code.
func NewFormatter(locale, code string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", code, err)
	}
	p := message.NewPrinter(tag)
	return &Formatter{printer: p, symbol: p.Sprint(currency.Symbol(unit))}, nil
}

// MustFormatter is NewFormatter for known-good inputs.
func MustFormatter(locale, code string) *Formatter {
	f, err := NewFormatter(locale, code)
	if err != nil {
		panic(err)
	}
	return f
}

// Format renders v with two decimals, e.g. "R$ 1.234,56" for pt-BR.
func (f *Formatter) Format(v float64) string {
	amount := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}
	return sign + f.symbol + " " + f.printer.Sprint(number.Decimal(amount.InexactFloat64(), number.Scale(2)))
}

// Number renders v with locale grouping and the given number of decimals,
// without a symbol.
func (f *Formatter) Number(v float64, decimals int) string {
	return f.printer.Sprint(number.Decimal(v, number.Scale(decimals)))
}

// Symbol is the currency symbol for the formatter's locale.
func (f *Formatter) Symbol() string {
	return f.symbol
}
