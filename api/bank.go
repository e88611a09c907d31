package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/etnz/checkbook"
	"github.com/go-chi/chi/v5"
)

// BankHandler receives bank batches pushed by a bank aggregator.
type BankHandler struct {
	store *checkbook.Store
}

// NewBankHandler creates a new BankHandler.
func NewBankHandler(s *checkbook.Store) *BankHandler {
	return &BankHandler{store: s}
}

// Ingest handles POST /api/v1/accounts/{id}/bank_transactions.
//
// With advise=true the advisor is asked about what the rules leave unmatched.
func (h *BankHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if _, err := h.store.Account(accountID); err != nil {
		writeJSONError(w, http.StatusNotFound, "not_found", "Account not found")
		return
	}
	advise := false
	if s := r.URL.Query().Get("advise"); s != "" {
		var err error
		if advise, err = strconv.ParseBool(s); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid advise")
			return
		}
	}
	var req BankBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}

	var res checkbook.IngestResult
	var err error
	if advise {
		res, err = h.store.Reconcile(r.Context(), accountID, req.Transactions)
	} else {
		res, err = h.store.IngestBankBatch(accountID, req.Transactions)
	}
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toIngest(res))
}
