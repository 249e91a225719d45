package ledger

import (
	"testing"
	"time"
)

func TestFormatterMoney(t *testing.T) {
	rp := DefaultFormatter()
	cases := []struct {
		units int64
		want  string
	}{
		{0, "Rp 0,00"},
		{5, "Rp 0,05"},
		{100, "Rp 1,00"},
		{100000, "Rp 1.000,00"},
		{123456789, "Rp 1.234.567,89"},
		{-40000, "-Rp 400,00"},
	}
	for _, tc := range cases {
		if got := rp.Money(tc.units); got != tc.want {
			t.Fatalf("Money(%d) = %q, want %q", tc.units, got, tc.want)
		}
	}
}

func TestFormatterSwappable(t *testing.T) {
	// Locale and symbol are configuration, not engine behavior.
	usd := NewFormatter("$", ",", ".", 2)
	if got := usd.Money(123456789); got != "$ 1,234,567.89" {
		t.Fatalf("usd Money = %q", got)
	}

	plain := NewFormatter("", "", ".", 0)
	if got := plain.Money(12345); got != "12345" {
		t.Fatalf("plain Money = %q", got)
	}
}

func TestFormatterDate(t *testing.T) {
	f := DefaultFormatter()
	d := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)
	if got := f.Date(d); got != "Monday, 6 January 2025" {
		t.Fatalf("Date = %q", got)
	}
}
