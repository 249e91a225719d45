package core

import (
	"errors"
	"strings"
	"time"
)

// TransactionType discriminates the two recognized movement directions.
type TransactionType string

const (
	Income  TransactionType = "Income"
	Expense TransactionType = "Expense"
)

type (
	// Money is an amount in minor currency units. Sums stay in integers so
	// aggregation never touches floating point.
	Money struct {
		Units int64
	}

	// Category is a user-defined spending bucket. Names are unique.
	Category struct {
		Name string
	}

	// Transaction is one immutable ledger movement. The date is supplied by
	// the caller, not defaulted to now.
	Transaction struct {
		Name        string
		Description string // optional
		Category    string // textual reference to a Category name
		Amount      Money
		Type        TransactionType
		Date        time.Time // calendar date; time of day carries no meaning
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrInvalidMonth  = errors.New("invalid month")
	ErrEmptyName     = errors.New("empty name")
	ErrZeroDate      = errors.New("date cannot be zero")
)

// Valid reports whether t is one of the two recognized types.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// ParseType maps a payload string onto a recognized type. Unknown values are
// rejected rather than stored as-is.
func ParseType(s string) (TransactionType, error) {
	switch t := TransactionType(strings.TrimSpace(s)); t {
	case Income, Expense:
		return t, nil
	default:
		return "", ErrInvalidType
	}
}

func (m Money) Validate() error {
	if m.Units < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("category name too long (max 100 characters)")
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if len(t.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if len(t.Description) > 500 {
		return errors.New("description too long (max 500 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	return nil
}
