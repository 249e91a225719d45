package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"dompet/internal/core"
	"dompet/internal/ledger"
	"dompet/internal/service"
	"dompet/internal/storage"
)

type fakeStore struct {
	categories   []string
	transactions []core.Transaction

	appendTxErr  error
	appendCatErr error
	listErr      error
}

func (f *fakeStore) AppendTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	if f.appendTxErr != nil {
		return 0, f.appendTxErr
	}
	f.transactions = append(f.transactions, tx)
	return int64(len(f.transactions)), nil
}

func (f *fakeStore) AppendCategory(ctx context.Context, name string) error {
	if f.appendCatErr != nil {
		return f.appendCatErr
	}
	f.categories = append(f.categories, name)
	return nil
}

func (f *fakeStore) ListCategories(ctx context.Context) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.categories, nil
}

func (f *fakeStore) ListTransactions(ctx context.Context, filter core.MonthFilter) ([]core.Transaction, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []core.Transaction
	for _, tx := range f.transactions {
		if filter.Matches(tx.Date) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func newTestServer(t *testing.T, store *fakeStore) *Server {
	t.Helper()
	tracker := service.NewTracker(store, nil, ledger.DefaultFormatter())
	s := NewServer(":0", tracker)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s
}

func seededStore() *fakeStore {
	return &fakeStore{
		categories: []string{"Groceries", "Salary"},
		transactions: []core.Transaction{
			{
				Name:     "Salary",
				Category: "Salary",
				Amount:   core.Money{Units: 100000},
				Type:     core.Income,
				Date:     time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
			},
			{
				Name:     "Rent",
				Category: "Groceries",
				Amount:   core.Money{Units: 40000},
				Type:     core.Expense,
				Date:     time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
			},
		},
	}
}

func TestIndexRendersSummary(t *testing.T) {
	s := newTestServer(t, seededStore())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"All Transactions", "Rp 1.000,00", "Rp 400,00", "Rp 600,00"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected body to contain %q", want)
		}
	}
}

func TestIndexUnknownPathIs404(t *testing.T) {
	s := newTestServer(t, seededStore())

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestIndexStorageFailure(t *testing.T) {
	s := newTestServer(t, &fakeStore{listErr: errors.New("disk gone")})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Could not load the ledger") {
		t.Errorf("expected error page, got %q", rec.Body.String())
	}
}

func TestFilterByMonth(t *testing.T) {
	s := newTestServer(t, seededStore())

	form := url.Values{"month": {"3"}}
	req := httptest.NewRequest(http.MethodPost, "/filter", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "March") {
		t.Errorf("expected period label March in body")
	}
}

func TestFilterInvalidMonthRedirects(t *testing.T) {
	cases := []struct {
		name  string
		month string
	}{
		{"zero", "0"},
		{"thirteen", "13"},
		{"negative", "-1"},
		{"garbage", "abc"},
		{"empty", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t, seededStore())

			form := url.Values{"month": {tc.month}}
			req := httptest.NewRequest(http.MethodPost, "/filter", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := httptest.NewRecorder()
			s.Server.Handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusSeeOther {
				t.Fatalf("expected 303, got %d", rec.Code)
			}
			if loc := rec.Header().Get("Location"); loc != "/" {
				t.Errorf("expected redirect to /, got %q", loc)
			}
		})
	}
}

func TestFilterRequiresPost(t *testing.T) {
	s := newTestServer(t, seededStore())

	req := httptest.NewRequest(http.MethodGet, "/filter", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestHistoryListsEverything(t *testing.T) {
	s := newTestServer(t, seededStore())

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"Salary", "Rent"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected body to contain %q", want)
		}
	}
}

func TestNewTransactionFormListsCategories(t *testing.T) {
	s := newTestServer(t, seededStore())

	req := httptest.NewRequest(http.MethodGet, "/transactions/new", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Groceries") {
		t.Errorf("expected category option in body")
	}
}

func TestCreateTransaction(t *testing.T) {
	store := seededStore()
	s := newTestServer(t, store)

	form := url.Values{
		"name":        {"Coffee"},
		"description": {"Morning espresso"},
		"category":    {"Groceries"},
		"amount":      {"25.50"},
		"type":        {"Expense"},
		"date":        {"2024-03-09"},
	}
	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("expected redirect to /, got %q", loc)
	}
	last := store.transactions[len(store.transactions)-1]
	if last.Name != "Coffee" || last.Amount.Units != 2550 || last.Type != core.Expense {
		t.Errorf("unexpected stored transaction: %+v", last)
	}
}

func TestCreateTransactionRejectsInvalidInput(t *testing.T) {
	base := url.Values{
		"name":     {"Coffee"},
		"category": {"Groceries"},
		"amount":   {"25.50"},
		"type":     {"Expense"},
		"date":     {"2024-03-09"},
	}

	cases := []struct {
		name  string
		field string
		value string
	}{
		{"malformed amount", "amount", "abc"},
		{"negative amount", "amount", "-5"},
		{"unknown type", "type", "Transfer"},
		{"bad date", "date", "09/03/2024"},
		{"empty name", "name", "   "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := seededStore()
			s := newTestServer(t, store)
			before := len(store.transactions)

			form := url.Values{}
			for k, v := range base {
				form[k] = v
			}
			form.Set(tc.field, tc.value)

			req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := httptest.NewRecorder()
			s.Server.Handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
			}
			if len(store.transactions) != before {
				t.Errorf("invalid payload must not be persisted")
			}
		})
	}
}

func TestCreateTransactionStorageFailure(t *testing.T) {
	store := seededStore()
	store.appendTxErr = errors.New("disk gone")
	s := newTestServer(t, store)

	form := url.Values{
		"name":     {"Coffee"},
		"category": {"Groceries"},
		"amount":   {"25.50"},
		"type":     {"Expense"},
		"date":     {"2024-03-09"},
	}
	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestCreateCategory(t *testing.T) {
	store := seededStore()
	s := newTestServer(t, store)

	form := url.Values{"name": {"Travel"}}
	req := httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/transactions/new" {
		t.Errorf("expected redirect to /transactions/new, got %q", loc)
	}
	if got := store.categories[len(store.categories)-1]; got != "Travel" {
		t.Errorf("expected Travel appended, got %q", got)
	}
}

func TestCreateCategoryDuplicate(t *testing.T) {
	store := seededStore()
	store.appendCatErr = storage.ErrDuplicateCategory
	s := newTestServer(t, store)

	form := url.Values{"name": {"Groceries"}}
	req := httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Category already exists") {
		t.Errorf("expected duplicate message, got %q", rec.Body.String())
	}
}

func TestCreateCategoryRejectsEmptyName(t *testing.T) {
	store := seededStore()
	store.appendCatErr = core.ErrEmptyName
	s := newTestServer(t, store)

	form := url.Values{"name": {"  "}}
	req := httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestWriteEndpointsRequirePost(t *testing.T) {
	s := newTestServer(t, seededStore())

	for _, path := range []string{"/transactions", "/categories"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		s.Server.Handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s: expected 405, got %d", path, rec.Code)
		}
		if allow := rec.Header().Get("Allow"); allow != "POST" {
			t.Errorf("%s: expected Allow: POST, got %q", path, allow)
		}
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, seededStore())

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		s.Server.Handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t, seededStore())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("expected nosniff, got %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("expected DENY, got %q", got)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < 60; i++ {
		if !rl.allow("1.2.3.4") {
			t.Fatalf("request %d unexpectedly limited", i+1)
		}
	}
	if rl.allow("1.2.3.4") {
		t.Error("request 61 should be limited")
	}
	if !rl.allow("5.6.7.8") {
		t.Error("other clients must not share the bucket")
	}
}

func TestSanitizeInput(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  plain  ", "plain"},
		{"tabs\tstay", "tabs\tstay"},
		{"null\x00byte", "nullbyte"},
		{"bell\x07", "bell"},
	}
	for _, tc := range cases {
		if got := sanitizeInput(tc.in); got != tc.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
