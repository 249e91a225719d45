package http

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dompet/internal/core"
	"dompet/internal/ledger"
	"dompet/internal/storage"
)

const dateField = "2006-01-02"

type monthOption struct {
	Index int
	Name  string
}

func monthOptions() []monthOption {
	opts := make([]monthOption, 0, 12)
	for i := 1; i <= 12; i++ {
		f, _ := core.ForMonth(i)
		opts = append(opts, monthOption{Index: i, Name: f.Label()})
	}
	return opts
}

type indexData struct {
	Summary ledger.Summary
	Months  []monthOption
}

// handleIndex renders the all-time aggregate view: balance, income,
// expense, and the full transaction list.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.renderSummary(w, r, core.AllTime())
}

// handleFilter applies the month selector from the filter form. Anything
// outside [1,12], or a non-numeric value, redirects to the safe all-time
// view rather than erroring.
func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	m, err := strconv.Atoi(strings.TrimSpace(r.Form.Get("month")))
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	f, err := core.ForMonth(m)
	if err != nil {
		slog.WarnContext(r.Context(), "Invalid month selector", "month", m)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.renderSummary(w, r, f)
}

// renderSummary fetches the aggregate view for the filter and renders the
// index template. An empty month renders zeros; only a storage failure is
// an error.
func (s *Server) renderSummary(w http.ResponseWriter, r *http.Request, f core.MonthFilter) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	sum, err := s.tracker.Summary(r.Context(), f)
	if err != nil {
		slog.ErrorContext(r.Context(), "Summary error", "error", err, "period", f.Label())
		s.renderError(w, http.StatusInternalServerError, "Could not load the ledger")
		return
	}

	data := indexData{Summary: sum, Months: monthOptions()}
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleHistory renders the full history, date descending.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	sum, err := s.tracker.Summary(r.Context(), core.AllTime())
	if err != nil {
		slog.ErrorContext(r.Context(), "History error", "error", err)
		s.renderError(w, http.StatusInternalServerError, "Could not load the ledger")
		return
	}

	if err := s.templates.ExecuteTemplate(w, "history.html", sum); err != nil {
		slog.ErrorContext(r.Context(), "History template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleNewTransaction renders the add-transaction form, populated with
// the stored category names.
func (s *Server) handleNewTransaction(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	cats, err := s.tracker.Categories(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Category list error", "error", err)
	}
	data := struct {
		Categories []string
		Today      string
	}{
		Categories: cats,
		Today:      time.Now().Format(dateField),
	}

	if err := s.templates.ExecuteTemplate(w, "transaction.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Transaction template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleCreateTransaction validates the payload at the boundary and appends
// one transaction. Invalid input is rejected before any write.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "url", r.URL.Path)
		s.renderError(w, http.StatusBadRequest, "Malformed request")
		return
	}

	units, err := core.ParseAmount(r.Form.Get("amount"))
	if err != nil {
		s.renderError(w, http.StatusUnprocessableEntity, "Invalid amount")
		return
	}
	txType, err := core.ParseType(r.Form.Get("type"))
	if err != nil {
		s.renderError(w, http.StatusUnprocessableEntity, "Invalid transaction type")
		return
	}
	date, err := time.Parse(dateField, strings.TrimSpace(r.Form.Get("date")))
	if err != nil {
		s.renderError(w, http.StatusUnprocessableEntity, "Invalid date")
		return
	}

	tx := core.Transaction{
		Name:        sanitizeInput(r.Form.Get("name")),
		Description: sanitizeInput(r.Form.Get("description")),
		Category:    sanitizeInput(r.Form.Get("category")),
		Amount:      core.Money{Units: units},
		Type:        txType,
		Date:        date,
	}
	if err := tx.Validate(); err != nil {
		s.renderError(w, http.StatusUnprocessableEntity, "Invalid transaction: "+err.Error())
		return
	}

	if _, err := s.tracker.RecordTransaction(r.Context(), tx); err != nil {
		if isInvalidInput(err) {
			s.renderError(w, http.StatusUnprocessableEntity, "Invalid transaction: "+err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Transaction append error", "error", err, "name", tx.Name)
		s.renderError(w, http.StatusInternalServerError, "Could not save the transaction")
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleCreateCategory appends one category. This is a distinct operation
// from adding a transaction, with its own payload.
func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderError(w, http.StatusBadRequest, "Malformed request")
		return
	}

	name := sanitizeInput(r.Form.Get("name"))
	if err := s.tracker.RecordCategory(r.Context(), name); err != nil {
		switch {
		case errors.Is(err, storage.ErrDuplicateCategory):
			s.renderError(w, http.StatusConflict, "Category already exists")
		case isInvalidInput(err):
			s.renderError(w, http.StatusUnprocessableEntity, "Invalid category name")
		default:
			slog.ErrorContext(r.Context(), "Category append error", "error", err, "name", name)
			s.renderError(w, http.StatusInternalServerError, "Could not save the category")
		}
		return
	}

	http.Redirect(w, r, "/transactions/new", http.StatusSeeOther)
}

// isInvalidInput matches the malformed-payload error kinds rejected at the
// boundary before any store write.
func isInvalidInput(err error) bool {
	return errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrInvalidType) ||
		errors.Is(err, core.ErrInvalidMonth) ||
		errors.Is(err, core.ErrEmptyName) ||
		errors.Is(err, core.ErrZeroDate)
}

func (s *Server) renderError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`<div class="error">` + template.HTMLEscapeString(msg) + `</div>`))
}

// sanitizeInput trims whitespace and strips control characters except tab,
// newline, and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
