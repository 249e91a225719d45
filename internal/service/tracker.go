// Package service orchestrates the store accessor, the aggregation engine,
// the summary cache, and the event pipeline behind one narrow API consumed
// by the HTTP layer.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dompet/internal/amqp"
	"dompet/internal/cache"
	"dompet/internal/core"
	"dompet/internal/ledger"
)

// Store is the data-access boundary the tracker depends on. Implemented by
// storage.Repository.
type Store interface {
	AppendTransaction(ctx context.Context, tx core.Transaction) (int64, error)
	AppendCategory(ctx context.Context, name string) error
	ListCategories(ctx context.Context) ([]string, error)
	ListTransactions(ctx context.Context, f core.MonthFilter) ([]core.Transaction, error)
}

// EventPublisher publishes transaction-recorded events. A nil publisher
// disables eventing.
type EventPublisher interface {
	PublishTransactionRecorded(ctx context.Context, msg *amqp.TransactionRecordedMessage) error
}

// Tracker is the in-process contract between the request handlers and the
// core: month selector in, summary record out; typed payloads in for writes.
type Tracker struct {
	store     Store
	events    EventPublisher
	formatter ledger.Formatter
	summaries *cache.LRUCache[ledger.Summary]
}

func NewTracker(store Store, events EventPublisher, formatter ledger.Formatter) *Tracker {
	return &Tracker{
		store:     store,
		events:    events,
		formatter: formatter,
		// 13 live keys at most (all-time plus twelve months); sized for slack.
		summaries: cache.NewLRUCache[ledger.Summary](32, 5*time.Minute),
	}
}

// SummaryCache exposes the cache for janitor registration.
func (t *Tracker) SummaryCache() *cache.LRUCache[ledger.Summary] {
	return t.summaries
}

// RecordTransaction validates and appends one transaction, then invalidates
// the affected summary views and publishes the event. A publish failure is
// logged, never surfaced: the row is already durable.
func (t *Tracker) RecordTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	id, err := t.store.AppendTransaction(ctx, tx)
	if err != nil {
		return 0, fmt.Errorf("append transaction: %w", err)
	}

	t.summaries.Delete(core.AllTime().Key())
	if f, err := core.ForMonth(int(tx.Date.Month())); err == nil {
		t.summaries.Delete(f.Key())
	}

	if t.events == nil {
		slog.DebugContext(ctx, "Event publisher not configured, skipping publish", "id", id)
		return id, nil
	}
	msg := amqp.NewTransactionRecordedMessage(id, string(tx.Type), tx.Amount.Units,
		tx.Date.Year(), int(tx.Date.Month()))
	if err := t.events.PublishTransactionRecorded(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event", "id", id, "error", err)
	}

	return id, nil
}

// RecordCategory appends one category. Duplicate names propagate as
// storage.ErrDuplicateCategory.
func (t *Tracker) RecordCategory(ctx context.Context, name string) error {
	if err := t.store.AppendCategory(ctx, name); err != nil {
		return fmt.Errorf("append category: %w", err)
	}
	return nil
}

// Categories lists category names for the add-transaction form.
func (t *Tracker) Categories(ctx context.Context) ([]string, error) {
	names, err := t.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return names, nil
}

// Summary returns the aggregate view for the given filter, reading through
// the cache. Storage failures propagate; an empty ledger is a zero summary.
func (t *Tracker) Summary(ctx context.Context, f core.MonthFilter) (ledger.Summary, error) {
	key := f.Key()
	if sum, ok := t.summaries.Get(key); ok {
		slog.DebugContext(ctx, "Summary cache hit", "period", f.Label())
		return sum, nil
	}

	txs, err := t.store.ListTransactions(ctx, f)
	if err != nil {
		return ledger.Summary{}, fmt.Errorf("list transactions: %w", err)
	}
	sum := ledger.Summarize(txs, f, t.formatter)
	t.summaries.Set(key, sum)
	return sum, nil
}
