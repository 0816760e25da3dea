package facet

import (
	"fmt"
	"math"
	"slices"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders a facet count for display.
type Formatter interface {
	FormatShortInt(n int) string
}

// FormatFacetStat formats a facet count. Zero, which is also what a missing
// entry of a Facet reads as, yields "" and false.
func FormatFacetStat(f Formatter, stat int) (string, bool) {
	if stat == 0 {
		return "", false
	}
	return f.FormatShortInt(stat), true
}

// ShortIntFormatter abbreviates large counts with k, M and G suffixes using
// the number conventions of a locale.
type ShortIntFormatter struct {
	printer *message.Printer
}

// NewShortIntFormatter returns a formatter for a BCP 47 locale such as "en"
// or "fr-CH".
func NewShortIntFormatter(locale string) (*ShortIntFormatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	return &ShortIntFormatter{printer: message.NewPrinter(tag)}, nil
}

type shortUnit struct {
	min     float64
	divisor float64
	suffix  string
	// below this many units, one decimal is kept
	decimalBelow float64
}

var shortUnits = []shortUnit{
	{min: 1e9, divisor: 1e9, suffix: "G", decimalBelow: 10},
	{min: 1e6, divisor: 1e6, suffix: "M", decimalBelow: 10},
	{min: 1e3, divisor: 1e3, suffix: "k", decimalBelow: 10},
}

// FormatShortInt implements Formatter.
func (f *ShortIntFormatter) FormatShortInt(n int) string {
	v := float64(n)
	i := slices.IndexFunc(shortUnits, func(u shortUnit) bool { return math.Abs(v) >= u.min })
	if i < 0 {
		return f.printer.Sprintf("%v", number.Decimal(n))
	}

	for {
		u := shortUnits[i]
		scaled := v / u.divisor
		digits := 0
		if math.Abs(scaled) < u.decimalBelow {
			digits = 1
		}
		// 999999 rounds to 1000k, which reads as 1M.
		if i > 0 && math.Abs(roundTo(scaled, digits)) >= 1000 {
			i--
			continue
		}
		return f.printer.Sprintf("%v", number.Decimal(scaled, number.MaxFractionDigits(digits))) + u.suffix
	}
}

func roundTo(v float64, digits int) float64 {
	p := math.Pow10(digits)
	return math.Round(v*p) / p
}
