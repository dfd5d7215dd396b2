package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cambiodesk/internal/adapter/http/dto"
	"github.com/iho/cambiodesk/internal/usecase"
)

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	ledgerUC *usecase.LedgerUseCase
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledgerUC *usecase.LedgerUseCase) *TransactionHandler {
	return &TransactionHandler{ledgerUC: ledgerUC}
}

// Create registers a new transaction against the ledger.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	txn, err := h.ledgerUC.RegisterTransaction(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to register transaction", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// Get retrieves a transaction by ID.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	txn, err := h.ledgerUC.GetTransaction(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get transaction", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// List returns transaction history, newest first, with optional
// kind, concept and date range filters.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	req := dto.TransactionFilterRequest{
		Kind:    r.URL.Query().Get("kind"),
		Concept: r.URL.Query().Get("concept"),
		From:    parseTimeQuery(r, "from"),
		To:      parseTimeQuery(r, "to"),
		Limit:   parseIntQuery(r, "limit", usecase.DefaultQueryLimit),
		Offset:  parseIntQuery(r, "offset", 0),
	}

	txns, err := h.ledgerUC.QueryTransactions(r.Context(), req.ToDomainFilter())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to list transactions", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txns))
}

// Update edits a transaction in place, reversing its previous impact
// and applying the recomputed one atomically.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	var req dto.RegisterTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	txn, err := h.ledgerUC.EditTransaction(r.Context(), id, req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to edit transaction", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// Delete removes a transaction and reverses its balance impact.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	if err := h.ledgerUC.DeleteTransaction(r.Context(), id); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to delete transaction", err.Error())

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
