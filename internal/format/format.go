// Package format renders numeric results as display strings. It never
// inspects the fact store; the only inputs are the number, the mode, and
// the options.
//
// Auto precision is chosen by magnitude of the displayed core: values
// with absolute magnitude >= 100 get 0 decimal places, >= 10 get 1, and
// smaller values get the mode's base precision (1 for currency, 0 for
// percent, 2 for number). Exact integers always display with 0 decimals.
// Auto mode picks percent when the value lies in [0, 1] and the
// expression carried a ratio hint (its outermost operation was a
// division); otherwise it picks number.
package format

import (
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// Mode selects the display format.
type Mode string

// Display modes.
const (
	ModeAuto     Mode = "auto"
	ModeCurrency Mode = "currency"
	ModePercent  Mode = "percent"
	ModeNumber   Mode = "number"
)

// Valid reports whether m names a known mode. The empty mode is treated
// as auto.
func (m Mode) Valid() bool {
	switch m {
	case ModeAuto, ModeCurrency, ModePercent, ModeNumber, "":
		return true
	}
	return false
}

// Options control formatting. Precision overrides auto-detection when
// non-nil. Prefix and Suffix are concatenated verbatim around the
// formatted core. RatioHint marks the value as a candidate ratio for
// auto mode.
type Options struct {
	Mode      Mode
	Precision *int
	Prefix    string
	Suffix    string
	RatioHint bool
}

// Currency scale thresholds and unit letters.
var currencyScales = []struct {
	threshold float64
	unit      string
}{
	{1e12, "T"},
	{1e9, "B"},
	{1e6, "M"},
	{1e3, "K"},
}

// Magnitude cutoffs for auto precision.
const (
	noDecimalsAt = 100
	oneDecimalAt = 10
	percentBase  = 0
	currencyBase = 1
	numberBase   = 2
)

// Format renders v per the options.
func Format(v float64, opts Options) string {
	mode := opts.Mode
	if mode == "" || mode == ModeAuto {
		if opts.RatioHint && v >= 0 && v <= 1 {
			mode = ModePercent
		} else {
			mode = ModeNumber
		}
	}

	var core string
	switch mode {
	case ModeCurrency:
		core = formatCurrency(v, opts.Precision)
	case ModePercent:
		core = formatPercent(v, opts.Precision)
	default:
		core = group(v, precisionFor(v, opts.Precision, numberBase))
	}

	return opts.Prefix + core + opts.Suffix
}

// formatCurrency scales to the largest fitting unit of
// thousand/million/billion/trillion and appends the unit letter.
func formatCurrency(v float64, precision *int) string {
	neg := v < 0
	abs := math.Abs(v)

	scaled := abs
	unit := ""
	for _, s := range currencyScales {
		if abs >= s.threshold {
			scaled = abs / s.threshold
			unit = s.unit
			break
		}
	}

	core := group(scaled, precisionFor(scaled, precision, currencyBase))
	if neg {
		return "-$" + core + unit
	}
	return "$" + core + unit
}

// formatPercent multiplies by 100 and appends the percent sign.
func formatPercent(v float64, precision *int) string {
	scaled := v * 100
	return group(scaled, precisionFor(scaled, precision, percentBase)) + "%"
}

// precisionFor returns the explicit precision if supplied, otherwise the
// magnitude-based default for the displayed value.
func precisionFor(displayed float64, explicit *int, base int) int {
	if explicit != nil {
		return *explicit
	}
	abs := math.Abs(displayed)
	if abs == math.Trunc(abs) {
		return 0
	}
	switch {
	case abs >= noDecimalsAt:
		return 0
	case abs >= oneDecimalAt:
		if base == 0 {
			return 0
		}
		return 1
	default:
		return base
	}
}

// group rounds v to the given number of decimals and renders it with
// thousands separators. Trailing decimal zeros are trimmed.
func group(v float64, decimals int) string {
	pow := math.Pow(10, float64(decimals))
	rounded := math.Round(v*pow) / pow
	if rounded == 0 {
		rounded = 0 // normalize -0
	}

	s := humanize.CommafWithDigits(rounded, decimals)
	// CommafWithDigits truncates rather than rounds; the rounding above
	// makes the truncation a no-op, but binary floats can still carry a
	// long tail, so clamp the fraction length here.
	if i := strings.IndexByte(s, '.'); i >= 0 && len(s)-i-1 > decimals {
		s = s[:i+1+decimals]
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}
