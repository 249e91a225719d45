package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"dompet/internal/amqp"
	"dompet/internal/core"
	"dompet/internal/ledger"
)

type stubLister struct {
	txs  []core.Transaction
	err  error
	seen []core.MonthFilter
}

func (s *stubLister) ListTransactions(ctx context.Context, f core.MonthFilter) ([]core.Transaction, error) {
	s.seen = append(s.seen, f)
	if s.err != nil {
		return nil, s.err
	}
	var out []core.Transaction
	for _, tx := range s.txs {
		if f.Matches(tx.Date) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func TestHandleTransactionRecorded(t *testing.T) {
	store := &stubLister{txs: []core.Transaction{{
		Name:   "Salary",
		Amount: core.Money{Units: 100000},
		Type:   core.Income,
		Date:   time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
	}}}
	w := NewDigestWorker(store, ledger.DefaultFormatter())

	msg := amqp.NewTransactionRecordedMessage(1, "Income", 100000, 2025, 3)
	if err := w.HandleTransactionRecorded(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(store.seen) != 1 {
		t.Fatalf("expected one store read, got %d", len(store.seen))
	}
	if m, set := store.seen[0].Month(); !set || m != time.March {
		t.Fatalf("expected march filter, got %v set=%v", m, set)
	}
}

func TestHandleTransactionRecordedDropsInvalidMonth(t *testing.T) {
	store := &stubLister{}
	w := NewDigestWorker(store, ledger.DefaultFormatter())

	msg := amqp.NewTransactionRecordedMessage(1, "Income", 100, 2025, 13)
	if err := w.HandleTransactionRecorded(context.Background(), msg); err != nil {
		t.Fatalf("invalid month must be dropped, not requeued: %v", err)
	}
	if len(store.seen) != 0 {
		t.Fatal("store must not be read for a dropped event")
	}
}

func TestHandleTransactionRecordedPropagatesStorageError(t *testing.T) {
	w := NewDigestWorker(&stubLister{err: errors.New("storage unreachable")}, ledger.DefaultFormatter())
	msg := amqp.NewTransactionRecordedMessage(1, "Income", 100, 2025, 3)
	if err := w.HandleTransactionRecorded(context.Background(), msg); err == nil {
		t.Fatal("expected storage error to propagate for requeue")
	}
}

func TestRunPeriodicStopsOnCancel(t *testing.T) {
	w := NewDigestWorker(&stubLister{}, ledger.DefaultFormatter())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- w.RunPeriodic(ctx, time.Hour) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("RunPeriodic did not stop on cancel")
	}
}
