package ui

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders numbers for one locale and currency.
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
	code    string
	symbol  string
	scale   int
}

// NewFormatter validates the locale and ISO currency code.
func NewFormatter(locale, code string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("ui: locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, fmt.Errorf("ui: currency %q: %w", code, err)
	}
	scale, _ := currency.Standard.Rounding(unit)
	iso := unit.String()
	printer := message.NewPrinter(tag)
	// CLDR has no symbol for some units; the ISO code then stands alone.
	symbol := printer.Sprint(currency.Symbol(unit))
	if symbol == "" || symbol == iso {
		symbol = iso + " "
	}
	return &Formatter{
		tag:     tag,
		printer: printer,
		code:    iso,
		symbol:  symbol,
		scale:   scale,
	}, nil
}

// MustFormatter tries each currency code in order and falls back to USD, and
// to en-US when the locale is invalid.
func MustFormatter(locale string, codes ...string) *Formatter {
	for _, code := range append(codes, "USD") {
		if f, err := NewFormatter(locale, code); err == nil {
			return f
		}
	}
	f, _ := NewFormatter("en-US", "USD")
	return f
}

// Currency returns the ISO code the formatter prints.
func (f *Formatter) Currency() string { return f.code }

// Locale returns the BCP 47 tag.
func (f *Formatter) Locale() string { return f.tag.String() }

// Money prints an amount with the currency symbol and minor units.
func (f *Formatter) Money(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + f.symbol + f.Number(v, f.scale)
}

// CompactMoney prints large amounts as 1.2K, 3.4M, 5.6B.
func (f *Formatter) CompactMoney(v float64) string {
	abs := math.Abs(v)
	sign := ""
	if v < 0 {
		sign = "-"
	}
	switch {
	case abs >= 1e9:
		return sign + f.symbol + f.Number(abs/1e9, 1) + "B"
	case abs >= 1e6:
		return sign + f.symbol + f.Number(abs/1e6, 1) + "M"
	case abs >= 1e3:
		return sign + f.symbol + f.Number(abs/1e3, 1) + "K"
	}
	return f.Money(v)
}

// Number prints v with locale grouping and a fixed number of decimals.
func (f *Formatter) Number(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	return f.printer.Sprintf(fmt.Sprintf("%%.%df", decimals), v)
}

// Int prints an integer with locale grouping.
func (f *Formatter) Int(v int64) string {
	return f.printer.Sprintf("%d", v)
}

// Percent prints a value already expressed in percent.
func (f *Formatter) Percent(v float64) string {
	return f.Number(v, 1) + "%"
}

// Delta prints a signed percentage change.
func (f *Formatter) Delta(v float64) string {
	if v > 0 {
		return "+" + f.Percent(v)
	}
	return f.Percent(v)
}

// Days prints a cover duration.
func (f *Formatter) Days(v float64) string {
	return f.Number(v, 1) + " d"
}
