package api

import (
	"encoding/json"
	"net/http"

	"github.com/etnz/checkbook"
	"github.com/go-chi/chi/v5"
)

// TransactionsHandler handles register edits.
type TransactionsHandler struct {
	store *checkbook.Store
}

// NewTransactionsHandler creates a new TransactionsHandler.
func NewTransactionsHandler(s *checkbook.Store) *TransactionsHandler {
	return &TransactionsHandler{store: s}
}

// Create handles POST /api/v1/accounts/{id}/transactions, a manual entry.
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if _, err := h.store.Account(accountID); err != nil {
		writeJSONError(w, http.StatusNotFound, "not_found", "Account not found")
		return
	}
	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}
	tx, err := h.store.AddManualTransaction(accountID, checkbook.ManualEntry{
		Date:        req.Date,
		Payee:       req.Payee,
		Amount:      req.Amount,
		Notes:       req.Notes,
		CheckNumber: req.CheckNumber,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, tx.ID)
}

// Get handles GET /api/v1/transactions/{id}.
func (h *TransactionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, chi.URLParam(r, "id"))
}

// Update handles PATCH /api/v1/transactions/{id}.
func (h *TransactionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.exists(w, r)
	if !ok {
		return
	}
	var req UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}
	_, err := h.store.UpdateTransaction(id, checkbook.Patch{
		Date:        req.Date,
		Payee:       req.Payee,
		Amount:      req.Amount,
		Notes:       req.Notes,
		CheckNumber: req.CheckNumber,
		Reconciled:  req.Reconciled,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	h.respond(w, http.StatusOK, id)
}

// Toggle handles POST /api/v1/transactions/{id}/toggle.
func (h *TransactionsHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, ok := h.exists(w, r)
	if !ok {
		return
	}
	if _, err := h.store.ToggleReconciled(id); err != nil {
		writeStoreError(w, err)
		return
	}
	h.respond(w, http.StatusOK, id)
}

// Delete handles DELETE /api/v1/transactions/{id}.
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.exists(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteTransaction(id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TransactionsHandler) exists(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := h.store.Transaction(id); err != nil {
		writeJSONError(w, http.StatusNotFound, "not_found", "Transaction not found")
		return id, false
	}
	return id, true
}

// respond writes the transaction id as found in the register, with its
// running balance.
func (h *TransactionsHandler) respond(w http.ResponseWriter, status int, id string) {
	tx, err := h.store.Transaction(id)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "not_found", "Transaction not found")
		return
	}
	txs, err := h.store.Transactions(tx.AccountID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	for _, t := range txs {
		if t.ID == id {
			tx = t
			break
		}
	}
	writeJSON(w, status, map[string]any{"transaction": toTransaction(tx)})
}
