package ui

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatterEnglish(t *testing.T) {
	f, err := NewFormatter("en-US", "usd")
	require.NoError(t, err)
	require.Equal(t, "USD", f.Currency())
	require.Equal(t, "$1,234.50", f.Money(1234.5))
	require.Equal(t, "-$10.00", f.Money(-10))
	require.Equal(t, "1,234,567", f.Int(1234567))
	require.Equal(t, "12.3%", f.Percent(12.34))
	require.Equal(t, "+4.0%", f.Delta(4))
	require.Equal(t, "-2.5%", f.Delta(-2.5))
	require.Equal(t, "$1.5M", f.CompactMoney(1_500_000))
	require.Equal(t, "$999.00", f.CompactMoney(999))
}

func TestFormatterUsesCurrencyScale(t *testing.T) {
	f, err := NewFormatter("en-US", "JPY")
	require.NoError(t, err)
	require.Equal(t, "¥1,235", f.Money(1234.6))
}

func TestFormatterUnknownSymbolUsesCode(t *testing.T) {
	f, err := NewFormatter("en-US", "CHF")
	require.NoError(t, err)
	require.Contains(t, f.Money(5), "CHF ")
}

func TestFormatterRejectsInvalidInput(t *testing.T) {
	_, err := NewFormatter("en-US", "XXXX")
	require.Error(t, err)
	_, err = NewFormatter("not a locale!", "USD")
	require.Error(t, err)
}

func TestFormatterUsesLocaleSymbols(t *testing.T) {
	f, err := NewFormatter("en-US", "CAD")
	require.NoError(t, err)
	require.Equal(t, "CA$1.00", f.Money(1))

	f, err = NewFormatter("en-US", "EUR")
	require.NoError(t, err)
	require.Equal(t, "€2.50", f.Money(2.5))
}

func TestMustFormatterFallsBack(t *testing.T) {
	f := MustFormatter("en-US", "nope")
	require.Equal(t, "USD", f.Currency())

	f = MustFormatter("en-US", "ZZZ", "EUR")
	require.Equal(t, "EUR", f.Currency())

	f = MustFormatter("en-US", "", "GBP")
	require.Equal(t, "GBP", f.Currency())

	f = MustFormatter("en-US", "JPY", "EUR")
	require.Equal(t, "JPY", f.Currency())

	f = MustFormatter("not a locale!", "EUR")
	require.Equal(t, "USD", f.Currency())
	require.Equal(t, "en-US", f.Locale())
}
