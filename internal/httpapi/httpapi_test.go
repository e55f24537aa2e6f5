package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/session"
	"fintrack/internal/store/memory"
	"fintrack/internal/syncer"
)

type fixture struct {
	router   http.Handler
	store    *memory.Store
	clock    *syncer.FakeClock
	sessions *session.Manager
	token    string
}

func newFixture(t *testing.T, advisor AdviceService) *fixture {
	t.Helper()

	st := memory.New()
	clock := syncer.NewFakeClock(time.Now())
	sessions := session.NewManager(st, session.Options{Clock: clock, Delay: 2 * time.Second})
	jwtService := NewJWTService("test-secret")
	handler := NewHandler(sessions, jwtService, advisor, nil)

	token, err := jwtService.GenerateToken(core.User{ID: "u-1", Email: "u@example.com", Name: "U"})
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	return &fixture{
		router:   NewRouter(RouterConfig{Handler: handler, JWT: jwtService}),
		store:    st,
		clock:    clock,
		sessions: sessions,
		token:    token,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+f.token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, rec.Body.String())
	}
	return v
}

func TestHealthIsPublic(t *testing.T) {
	f := newFixture(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /health = %d, want 200", rec.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := newFixture(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated GET /accounts = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token GET /accounts = %d, want 401", rec.Code)
	}
}

func TestIssueToken(t *testing.T) {
	f := newFixture(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token",
		bytes.NewBufferString(`{"userId":"u-2","email":"x@example.com"}`))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /auth/token = %d, want 200", rec.Code)
	}
	resp := decode[tokenResponse](t, rec)
	if resp.Token == "" {
		t.Error("empty token in response")
	}

	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/token",
		bytes.NewBufferString(`{"email":"no-id@example.com"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("token without userId = %d, want 400", rec.Code)
	}
}

func TestFirstTouchSeedsStarterData(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/api/v1/accounts", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /accounts = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	accounts := decode[[]core.Account](t, rec)
	if len(accounts) != 2 {
		t.Errorf("seeded accounts = %d, want 2", len(accounts))
	}
}

func TestAccountLifecycle(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/v1/accounts", createAccountRequest{
		Name:           "Travel",
		BankName:       "Chase",
		OpeningBalance: core.Money{Cents: 30_000},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /accounts = %d (body: %s)", rec.Code, rec.Body.String())
	}
	created := decode[core.Account](t, rec)

	rec = f.do(t, http.MethodPut, "/api/v1/accounts/"+created.ID, updateAccountRequest{Name: "Holidays"})
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT /accounts/{id} = %d", rec.Code)
	}
	if got := decode[core.Account](t, rec); got.Name != "Holidays" {
		t.Errorf("updated name = %s, want Holidays", got.Name)
	}

	rec = f.do(t, http.MethodPut, "/api/v1/accounts/missing", updateAccountRequest{Name: "X"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("PUT unknown account = %d, want 404", rec.Code)
	}

	rec = f.do(t, http.MethodDelete, "/api/v1/accounts/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("DELETE /accounts/{id} = %d, want 204", rec.Code)
	}
}

func TestCreateTransactionMovesBalanceAndSyncs(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/v1/transactions", map[string]any{
		"accountId":   "acc-1",
		"categoryId":  "cat-1",
		"amount":      120,
		"date":        "2024-05-03",
		"description": "Lunch",
		"type":        "EXPENSE",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /transactions = %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodGet, "/api/v1/accounts", nil)
	accounts := decode[[]core.Account](t, rec)
	if got := accounts[0].Balance.Cents; got != 5_000_000-120 {
		t.Errorf("balance = %d, want %d", got, 5_000_000-120)
	}

	// Nothing persists until the debounce window elapses.
	if got := f.store.Writes("u-1"); got != 0 {
		t.Fatalf("writes before window = %d, want 0", got)
	}
	f.clock.Advance(2 * time.Second)
	if got := f.store.Writes("u-1"); got != 1 {
		t.Errorf("writes after window = %d, want 1", got)
	}
}

func TestCreateTransactionAcceptsDecimalAmount(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/v1/transactions", map[string]any{
		"accountId":  "acc-1",
		"categoryId": "cat-1",
		"amount":     "1.20",
		"date":       "2024-05-03",
		"type":       "EXPENSE",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /transactions = %d (body: %s)", rec.Code, rec.Body.String())
	}
	if got := decode[core.Transaction](t, rec); got.Amount.Cents != 120 {
		t.Errorf("amount = %d cents, want 120", got.Amount.Cents)
	}
}

func TestCreateTransactionRejectsMismatchedCategory(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodPost, "/api/v1/transactions", map[string]any{
		"accountId":  "acc-1",
		"categoryId": "cat-3", // Salary is an income category
		"amount":     120,
		"date":       "2024-05-03",
		"type":       "EXPENSE",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("mismatched category = %d, want 400", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/v1/transactions", map[string]any{
		"accountId":  "acc-gone",
		"categoryId": "cat-1",
		"amount":     120,
		"date":       "2024-05-03",
		"type":       "EXPENSE",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown account = %d, want 404", rec.Code)
	}
}

func TestReports(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/api/v1/reports/summary?month=2024-05", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /reports/summary = %d", rec.Code)
	}
	summary := decode[map[string]int64](t, rec)
	// Starter data: one income of 4_500_000, expenses 12_000+1_500_000+80_000+200_000.
	if summary["income"] != 4_500_000 {
		t.Errorf("May income = %d, want 4500000", summary["income"])
	}
	if summary["expense"] != 1_792_000 {
		t.Errorf("May expense = %d, want 1792000", summary["expense"])
	}

	rec = f.do(t, http.MethodGet, "/api/v1/reports/summary?month=May-2024", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad month param = %d, want 400", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/api/v1/reports/categories", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /reports/categories = %d", rec.Code)
	}
	// All-time distribution: the starter dataset's four expense categories.
	breakdown := decode[[]map[string]any](t, rec)
	if len(breakdown) != 4 {
		t.Errorf("breakdown slices = %d, want 4", len(breakdown))
	}

	rec = f.do(t, http.MethodGet, "/api/v1/reports/trend", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /reports/trend = %d", rec.Code)
	}
	trend := decode[[]map[string]any](t, rec)
	if len(trend) != 1 || trend[0]["month"] != "2024-05" {
		t.Errorf("trend = %v, want single 2024-05 bucket", trend)
	}
}

type stubAdvisor struct {
	answer string
	err    error
}

func (s stubAdvisor) Advise(_ context.Context, _ string, _ []core.Account, _ []core.Transaction) (string, error) {
	return s.answer, s.err
}

func TestAdvice(t *testing.T) {
	f := newFixture(t, stubAdvisor{answer: "spend less"})
	rec := f.do(t, http.MethodPost, "/api/v1/advice", adviceRequest{Question: "help"})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /advice = %d (body: %s)", rec.Code, rec.Body.String())
	}
	if got := decode[adviceResponse](t, rec); got.Advice != "spend less" {
		t.Errorf("advice = %q", got.Advice)
	}

	rec = f.do(t, http.MethodPost, "/api/v1/advice", adviceRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty question = %d, want 400", rec.Code)
	}
}

func TestAdviceUnconfigured(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodPost, "/api/v1/advice", adviceRequest{Question: "help"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("advice without advisor = %d, want 503", rec.Code)
	}
}

func TestAdviceFailure(t *testing.T) {
	f := newFixture(t, stubAdvisor{err: fmt.Errorf("model unavailable")})
	rec := f.do(t, http.MethodPost, "/api/v1/advice", adviceRequest{Question: "help"})
	if rec.Code != http.StatusBadGateway {
		t.Errorf("advice failure = %d, want 502", rec.Code)
	}
}

func TestSignOutDiscardsPendingWrite(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/v1/transactions", map[string]any{
		"accountId":  "acc-1",
		"categoryId": "cat-1",
		"amount":     120,
		"date":       "2024-05-03",
		"type":       "EXPENSE",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /transactions = %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/v1/auth/signout", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("POST /auth/signout = %d, want 204", rec.Code)
	}

	f.clock.Advance(time.Minute)
	if got := f.store.Writes("u-1"); got != 0 {
		t.Errorf("writes after signout = %d, want 0", got)
	}
}

func TestUserDataIsScoped(t *testing.T) {
	f := newFixture(t, nil)

	// Second user gets their own token and their own seeded ledger.
	otherToken := func() string {
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/token",
			bytes.NewBufferString(`{"userId":"u-2"}`)))
		return decode[tokenResponse](t, rec).Token
	}()

	rec := f.do(t, http.MethodPost, "/api/v1/transactions", map[string]any{
		"accountId":  "acc-1",
		"categoryId": "cat-1",
		"amount":     999,
		"date":       "2024-05-03",
		"type":       "EXPENSE",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /transactions = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	req.Header.Set("Authorization", "Bearer "+otherToken)
	other := httptest.NewRecorder()
	f.router.ServeHTTP(other, req)
	txns := decode[[]core.Transaction](t, other)
	for _, txn := range txns {
		if txn.Amount.Cents == 999 {
			t.Error("u-2 sees u-1's transaction")
		}
	}
}
