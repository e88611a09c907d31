package api

import (
	"net/http"

	"github.com/etnz/checkbook"
	"github.com/etnz/checkbook/renderer"
	"github.com/go-chi/chi/v5"
)

// AccountsHandler handles account related endpoints.
type AccountsHandler struct {
	store *checkbook.Store
}

// NewAccountsHandler creates a new AccountsHandler.
func NewAccountsHandler(s *checkbook.Store) *AccountsHandler {
	return &AccountsHandler{store: s}
}

// List handles GET /api/v1/accounts.
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	active, _ := h.store.ActiveAccount()
	accounts := []AccountResponse{}
	for _, a := range h.store.Accounts() {
		accounts = append(accounts, toAccount(a, a.ID == active.ID))
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

// Get handles GET /api/v1/accounts/{id}.
func (h *AccountsHandler) Get(w http.ResponseWriter, r *http.Request) {
	acc, ok := h.account(w, r)
	if !ok {
		return
	}
	active, _ := h.store.ActiveAccount()
	writeJSON(w, http.StatusOK, map[string]any{"account": toAccount(acc, acc.ID == active.ID)})
}

// Transactions handles GET /api/v1/accounts/{id}/transactions.
func (h *AccountsHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	acc, ok := h.account(w, r)
	if !ok {
		return
	}
	txs, err := h.store.Transactions(acc.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": toTransactions(txs)})
}

// Register handles GET /api/v1/accounts/{id}/register, the markdown register.
func (h *AccountsHandler) Register(w http.ResponseWriter, r *http.Request) {
	acc, ok := h.account(w, r)
	if !ok {
		return
	}
	txs, err := h.store.Transactions(acc.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(renderer.RenderRegister(renderer.NewRegister(acc, txs))))
}

// Suggest handles GET /api/v1/accounts/{id}/payees?q=..., the payee autocomplete.
func (h *AccountsHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	acc, ok := h.account(w, r)
	if !ok {
		return
	}
	suggestions := h.store.SuggestPayees(r.Context(), acc.ID, r.URL.Query().Get("q"))
	if suggestions == nil {
		suggestions = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

// account resolves the {id} URL parameter, or writes a 404.
func (h *AccountsHandler) account(w http.ResponseWriter, r *http.Request) (checkbook.Account, bool) {
	acc, err := h.store.Account(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "not_found", "Account not found")
		return acc, false
	}
	return acc, true
}
