// Package httpapi exposes the ledger over REST. The authenticated user's
// session is attached on first touch; every mutating endpoint goes through
// the ledger, which schedules debounced persistence on its own.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/session"
)

// AdviceService answers free-form questions against a ledger snapshot.
type AdviceService interface {
	Advise(ctx context.Context, question string, accounts []core.Account, transactions []core.Transaction) (string, error)
}

type Handler struct {
	sessions *session.Manager
	jwt      *JWTService
	advisor  AdviceService // nil when not configured
	logger   *log.Logger
}

func NewHandler(sessions *session.Manager, jwtService *JWTService, advisor AdviceService, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}
	return &Handler{
		sessions: sessions,
		jwt:      jwtService,
		advisor:  advisor,
		logger:   logger,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// domainStatus maps domain errors to HTTP status codes.
func domainStatus(err error) int {
	switch {
	case errors.Is(err, core.ErrUnknownAccount),
		errors.Is(err, core.ErrUnknownCategory):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrTypeMismatch),
		errors.Is(err, core.ErrEmptyID),
		errors.Is(err, core.ErrEmptyName):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// attach resolves the request's session, creating it on first touch.
func (h *Handler) attach(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no authenticated user")
		return nil, false
	}
	s, err := h.sessions.Attach(r.Context(), user)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to attach session",
			log.FieldUserID, user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load session data")
		return nil, false
	}
	return s, true
}

// --- auth ---

type tokenRequest struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// IssueToken mints a session token. This stands in for an external identity
// provider; the token only carries identity, all data access is scoped by
// the user id inside it.
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	token, err := h.jwt.GenerateToken(core.User{ID: req.UserID, Email: req.Email, Name: req.Name})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// SignOut ends the session. Pending writes are discarded, completed ones
// have already persisted.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no authenticated user")
		return
	}
	h.sessions.Detach(user.ID)
	writeJSON(w, http.StatusNoContent, nil)
}

// --- accounts ---

type createAccountRequest struct {
	Name           string     `json:"name"`
	BankName       string     `json:"bankName"`
	OpeningBalance core.Money `json:"openingBalance"`
}

type updateAccountRequest struct {
	Name     string `json:"name"`
	BankName string `json:"bankName"`
	Color    string `json:"color"`
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	s, ok := h.attach(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Ledger.Accounts())
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	s, ok := h.attach(w, r)
	if !ok {
		return
	}

	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := s.Ledger.CreateAccount(req.Name, req.BankName, req.OpeningBalance)
	if err != nil {
		writeError(w, domainStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	s, ok := h.attach(w, r)
	if !ok {
		return
	}

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated := s.Ledger.UpdateAccount(core.Account{
		ID:       chi.URLParam(r, "id"),
		Name:     req.Name,
		BankName: req.BankName,
		Color:    req.Color,
	})
	if updated.ID == "" {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	s, ok := h.attach(w, r)
	if !ok {
		return
	}
	s.Ledger.DeleteAccount(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusNoContent, nil)
}

// --- transactions ---

type createTransactionRequest struct {
	AccountID   string     `json:"accountId"`
	CategoryID  string     `json:"categoryId"`
	Amount      core.Money `json:"amount"`
	Date        core.Date  `json:"date"`
	Description string     `json:"description"`
	Type        string     `json:"type"`
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	s, ok := h.attach(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Ledger.Transactions())
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	s, ok := h.attach(w, r)
	if !ok {
		return
	}

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	txn, err := s.Ledger.RecordTransaction(ledger.TransactionInput{
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Date:        req.Date,
		Description: req.Description,
		Type:        core.TransactionType(req.Type),
	})
	if err != nil {
		writeError(w, domainStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, txn)
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	s, ok := h.attach(w, r)
	if !ok {
		return
	}
	s.Ledger.DeleteTransaction(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusNoContent, nil)
}

// --- categories ---

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.Categories())
}

// --- reports ---

// monthParam parses ?month=YYYY-MM, defaulting to the current month.
func monthParam(r *http.Request) (core.Date, error) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		now := time.Now().UTC()
		return core.NewDate(now.Year(), int(now.Month()), 1), nil
	}
	t, err := time.ParseInLocation("2006-01", raw, time.UTC)
	if err != nil {
		return core.Date{}, core.ErrInvalidDate
	}
	return core.NewDate(t.Year(), int(t.Month()), 1), nil
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	s, ok := h.attach(w, r)
	if !ok {
		return
	}
	month, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month, expected YYYY-MM")
		return
	}
	writeJSON(w, http.StatusOK, s.Ledger.MonthlySummary(month))
}

func (h *Handler) GetCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	s, ok := h.attach(w, r)
	if !ok {
		return
	}
	breakdown := s.Ledger.CategoryBreakdown()
	if breakdown == nil {
		breakdown = []ledger.CategorySlice{}
	}
	writeJSON(w, http.StatusOK, breakdown)
}

func (h *Handler) GetTrend(w http.ResponseWriter, r *http.Request) {
	s, ok := h.attach(w, r)
	if !ok {
		return
	}
	trend := s.Ledger.MonthlyTrend()
	if trend == nil {
		trend = []ledger.TrendPoint{}
	}
	writeJSON(w, http.StatusOK, trend)
}

// --- advice ---

type adviceRequest struct {
	Question string `json:"question"`
}

type adviceResponse struct {
	Advice string `json:"advice"`
}

func (h *Handler) GetAdvice(w http.ResponseWriter, r *http.Request) {
	if h.advisor == nil {
		writeError(w, http.StatusServiceUnavailable, "advice generation is not configured")
		return
	}
	s, ok := h.attach(w, r)
	if !ok {
		return
	}

	var req adviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	accounts, transactions := s.Ledger.Snapshot()
	answer, err := h.advisor.Advise(r.Context(), req.Question, accounts, transactions)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Advice generation failed",
			log.FieldUserID, s.User.ID, "error", err)
		writeError(w, http.StatusBadGateway, "failed to generate advice")
		return
	}
	writeJSON(w, http.StatusOK, adviceResponse{Advice: answer})
}

// --- health ---

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
