// Package storage is the data-access boundary: typed reads and writes
// against the durable transaction and category log, with no aggregation
// logic of its own.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dompet/internal/core"

	_ "modernc.org/sqlite"
)

// ErrDuplicateCategory is returned when appending a category whose name is
// already present. Uniqueness is the chosen policy here; the legacy system
// left it unenforced.
var ErrDuplicateCategory = errors.New("category already exists")

const dateLayout = "2006-01-02"

// Repository persists transactions and categories in SQLite. It is opened
// once at startup and passed explicitly to its callers; there is no ambient
// shared connection.
type Repository struct {
	db *sql.DB
}

// NewRepository opens (or creates) the database at dbPath and brings the
// schema up to date.
func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// AppendCategory inserts one category row. Empty names are rejected before
// the write; an existing name fails with ErrDuplicateCategory.
func (r *Repository) AppendCategory(ctx context.Context, name string) error {
	cat := core.Category{Name: strings.TrimSpace(name)}
	if err := cat.Validate(); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name) VALUES (?) ON CONFLICT(name) DO NOTHING`,
		cat.Name)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateCategory, cat.Name)
	}

	slog.InfoContext(ctx, "Category saved", "name", cat.Name)
	return nil
}

// AppendTransaction validates and inserts one transaction row, returning
// the new row id. Validation happens before the write, so a rejected
// payload is never partially applied.
func (r *Repository) AppendTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (name, description, category, amount_units, tx_type, tx_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		tx.Name, tx.Description, tx.Category, tx.Amount.Units, string(tx.Type),
		tx.Date.Format(dateLayout))
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"name", tx.Name,
		"type", string(tx.Type),
		"amount_units", tx.Amount.Units,
		"date", tx.Date.Format(dateLayout))

	return id, nil
}

// ListCategories returns all category names in storage (insertion) order.
func (r *Repository) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return names, nil
}

// ListTransactions returns the rows matching the optional month filter.
// Ordering is left to the caller; the aggregation engine imposes its own
// date-descending order for history views.
func (r *Repository) ListTransactions(ctx context.Context, f core.MonthFilter) ([]core.Transaction, error) {
	query := `SELECT name, description, category, amount_units, tx_type, tx_date FROM transactions`
	var args []any
	if m, ok := f.Month(); ok {
		query += ` WHERE CAST(strftime('%m', tx_date) AS INTEGER) = ?`
		args = append(args, int(m))
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var (
			tx      core.Transaction
			txType  string
			txDate  string
		)
		if err := rows.Scan(&tx.Name, &tx.Description, &tx.Category,
			&tx.Amount.Units, &txType, &txDate); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Type = core.TransactionType(txType)
		d, err := time.Parse(dateLayout, txDate)
		if err != nil {
			return nil, fmt.Errorf("parse transaction date %q: %w", txDate, err)
		}
		tx.Date = d
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}
