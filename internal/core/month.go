package core

import (
	"strconv"
	"time"
)

// MonthFilter selects either the whole ledger or a single calendar month.
// The zero value means all-time. A month is only carried when set is true,
// so "no filter" is never conflated with a month index of zero.
type MonthFilter struct {
	month time.Month
	set   bool
}

// AllTime returns the filter matching every transaction.
func AllTime() MonthFilter { return MonthFilter{} }

// ForMonth returns a filter for one calendar month. Values outside [1,12]
// are rejected with ErrInvalidMonth.
func ForMonth(m int) (MonthFilter, error) {
	if m < 1 || m > 12 {
		return MonthFilter{}, ErrInvalidMonth
	}
	return MonthFilter{month: time.Month(m), set: true}, nil
}

// Month returns the selected month and whether one is selected.
func (f MonthFilter) Month() (time.Month, bool) {
	return f.month, f.set
}

// Matches reports whether a transaction date falls inside the filter.
func (f MonthFilter) Matches(d time.Time) bool {
	return !f.set || d.Month() == f.month
}

// Key is a short stable identifier, suitable as a cache key.
func (f MonthFilter) Key() string {
	if !f.set {
		return "all"
	}
	return strconv.Itoa(int(f.month))
}

// monthNames is the display-name lookup table, kept separate from the filter
// value itself. Index 0 is unused.
var monthNames = [...]string{
	"",
	"January",
	"February",
	"March",
	"April",
	"May",
	"June",
	"July",
	"August",
	"September",
	"October",
	"November",
	"December",
}

const allTimeLabel = "All Transactions"

// Label returns the human-readable name for the filtered period.
func (f MonthFilter) Label() string {
	if !f.set {
		return allTimeLabel
	}
	return monthNames[int(f.month)]
}
