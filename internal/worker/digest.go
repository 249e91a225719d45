// Package worker recomputes monthly aggregate digests in response to
// transaction events and on a timer.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dompet/internal/amqp"
	"dompet/internal/core"
	"dompet/internal/ledger"
)

// TransactionLister is the slice of the store the digest worker reads.
type TransactionLister interface {
	ListTransactions(ctx context.Context, f core.MonthFilter) ([]core.Transaction, error)
}

// DigestWorker turns transaction events into month digest log lines.
// It re-reads the store on every event rather than trusting the message
// payload, so a replayed or delayed event still produces correct totals.
type DigestWorker struct {
	store     TransactionLister
	formatter ledger.Formatter
}

func NewDigestWorker(store TransactionLister, formatter ledger.Formatter) *DigestWorker {
	return &DigestWorker{store: store, formatter: formatter}
}

// HandleTransactionRecorded recomputes the digest for the month named in
// the event. An out-of-range month is dropped with a warning instead of
// being requeued forever.
func (w *DigestWorker) HandleTransactionRecorded(ctx context.Context, msg *amqp.TransactionRecordedMessage) error {
	f, err := core.ForMonth(msg.Month)
	if err != nil {
		slog.WarnContext(ctx, "Dropping event with invalid month",
			"id", msg.ID, "month", msg.Month)
		return nil
	}
	return w.digest(ctx, f)
}

// RunPeriodic recomputes the current month's digest every interval until
// ctx is done, backstopping any events lost while the broker was down.
func (w *DigestWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			f, err := core.ForMonth(int(time.Now().Month()))
			if err != nil {
				continue
			}
			if err := w.digest(ctx, f); err != nil {
				slog.ErrorContext(ctx, "Periodic digest failed", "error", err)
			}
		}
	}
}

func (w *DigestWorker) digest(ctx context.Context, f core.MonthFilter) error {
	txs, err := w.store.ListTransactions(ctx, f)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}

	sum := ledger.Summarize(txs, f, w.formatter)
	slog.InfoContext(ctx, "Month digest",
		"period", sum.Period,
		"transactions", len(sum.Transactions),
		"income", sum.IncomeDisplay,
		"expense", sum.ExpenseDisplay,
		"balance", sum.BalanceDisplay)

	return nil
}
