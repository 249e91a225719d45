// Package ledger is the aggregation engine: a pure, stateless reducer that
// turns a fetched transaction set into the balance, totals, and history shown
// to the user.
//
// This file contains display formatting. Formatting is layered on top of the
// integer amounts the engine computes; locale and currency symbol are
// configuration, never engine behavior.
package ledger

import (
	"strconv"
	"strings"
	"time"
)

// Formatter renders integer minor-unit amounts and calendar dates for
// display. The zero value is not useful; use NewFormatter or
// DefaultFormatter.
type Formatter struct {
	Symbol     string // currency symbol prefix, e.g. "Rp"
	GroupSep   string // thousands separator for the major part
	DecimalSep string // separator before the minor digits
	Decimals   int    // minor digits per major unit (10^Decimals units)
	DateLayout string // layout passed to time.Time.Format
}

// DefaultFormatter matches the original deployment: Indonesian rupiah with
// dotted grouping and long en-GB style dates.
func DefaultFormatter() Formatter {
	return NewFormatter("Rp", ".", ",", 2)
}

// NewFormatter builds a Formatter with the standard long date layout.
func NewFormatter(symbol, groupSep, decimalSep string, decimals int) Formatter {
	if decimals < 0 {
		decimals = 0
	}
	return Formatter{
		Symbol:     symbol,
		GroupSep:   groupSep,
		DecimalSep: decimalSep,
		Decimals:   decimals,
		DateLayout: "Monday, 2 January 2006",
	}
}

// Money renders a minor-unit amount, e.g. 123456700 -> "Rp 1.234.567,00".
func (f Formatter) Money(units int64) string {
	neg := units < 0
	if neg {
		units = -units
	}

	scale := int64(1)
	for i := 0; i < f.Decimals; i++ {
		scale *= 10
	}
	major := units / scale
	minor := units % scale

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	if f.Symbol != "" {
		b.WriteString(f.Symbol)
		b.WriteByte(' ')
	}
	b.WriteString(group(strconv.FormatInt(major, 10), f.GroupSep))
	if f.Decimals > 0 {
		b.WriteString(f.DecimalSep)
		minorStr := strconv.FormatInt(minor, 10)
		for len(minorStr) < f.Decimals {
			minorStr = "0" + minorStr
		}
		b.WriteString(minorStr)
	}
	return b.String()
}

// Date renders a calendar date for display.
func (f Formatter) Date(t time.Time) string {
	layout := f.DateLayout
	if layout == "" {
		layout = "Monday, 2 January 2006"
	}
	return t.Format(layout)
}

// group inserts sep every three digits from the right.
func group(digits, sep string) string {
	if sep == "" || len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
