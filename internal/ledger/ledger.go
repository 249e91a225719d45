package ledger

import (
	"sort"
	"time"

	"dompet/internal/core"
)

// Entry is one transaction decorated for display: the raw fields plus the
// formatted amount and date strings the views render directly.
type Entry struct {
	Name          string
	Description   string
	Category      string
	Type          core.TransactionType
	Amount        core.Money
	AmountDisplay string
	Date          time.Time
	DateDisplay   string
}

// Summary is the result record handed to the request-handling collaborator.
// The numeric totals are exact integers in minor units; the Display fields
// are the formatted presentation layered on top.
type Summary struct {
	TotalIncome  int64
	TotalExpense int64
	NetBalance   int64

	IncomeDisplay  string
	ExpenseDisplay string
	BalanceDisplay string

	Period       string // month display name, or the all-time label
	Transactions []Entry
}

// counted reports whether a row participates in the sums. Rows with a
// negative amount or an unrecognized type exist in the log but are excluded
// from both totals: the engine fails closed instead of crashing or guessing.
func counted(tx core.Transaction) bool {
	return tx.Amount.Units >= 0 && tx.Type.Valid()
}

// TotalIncome sums income amounts over transactions matching the filter.
// No matching rows means 0, never an error.
func TotalIncome(txs []core.Transaction, f core.MonthFilter) int64 {
	var total int64
	for _, tx := range txs {
		if tx.Type == core.Income && f.Matches(tx.Date) && counted(tx) {
			total += tx.Amount.Units
		}
	}
	return total
}

// TotalExpense is the symmetric sum over expense transactions.
func TotalExpense(txs []core.Transaction, f core.MonthFilter) int64 {
	var total int64
	for _, tx := range txs {
		if tx.Type == core.Expense && f.Matches(tx.Date) && counted(tx) {
			total += tx.Amount.Units
		}
	}
	return total
}

// NetBalance is income minus expense. It may be negative and is never
// clamped.
func NetBalance(txs []core.Transaction, f core.MonthFilter) int64 {
	return TotalIncome(txs, f) - TotalExpense(txs, f)
}

// History returns the matching transactions ordered by date descending,
// each decorated for display. The sort is stable, so same-date rows keep
// their input (insertion) order.
func History(txs []core.Transaction, f core.MonthFilter, fm Formatter) []Entry {
	entries := make([]Entry, 0, len(txs))
	for _, tx := range txs {
		if !f.Matches(tx.Date) {
			continue
		}
		entries = append(entries, Entry{
			Name:          tx.Name,
			Description:   tx.Description,
			Category:      tx.Category,
			Type:          tx.Type,
			Amount:        tx.Amount,
			AmountDisplay: fm.Money(tx.Amount.Units),
			Date:          tx.Date,
			DateDisplay:   fm.Date(tx.Date),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
	return entries
}

// Summarize reduces a transaction set into the display record for the given
// filter. An empty match set yields exact zeros, not an error.
func Summarize(txs []core.Transaction, f core.MonthFilter, fm Formatter) Summary {
	income := TotalIncome(txs, f)
	expense := TotalExpense(txs, f)
	balance := income - expense
	return Summary{
		TotalIncome:    income,
		TotalExpense:   expense,
		NetBalance:     balance,
		IncomeDisplay:  fm.Money(income),
		ExpenseDisplay: fm.Money(expense),
		BalanceDisplay: fm.Money(balance),
		Period:         f.Label(),
		Transactions:   History(txs, f, fm),
	}
}
