package handler

import (
	"encoding/json"
	"net/http"

	"github.com/iho/cambiodesk/internal/adapter/http/dto"
	"github.com/iho/cambiodesk/internal/usecase"
)

// BalanceHandler handles register balance HTTP requests.
type BalanceHandler struct {
	balanceUC *usecase.BalanceUseCase
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceUC *usecase.BalanceUseCase) *BalanceHandler {
	return &BalanceHandler{balanceUC: balanceUC}
}

// Get returns the current two-currency balance.
func (h *BalanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	balance, err := h.balanceUC.GetBalance(r.Context())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get balance", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(balance))
}

// Fund adds cash to the register.
func (h *BalanceHandler) Fund(w http.ResponseWriter, r *http.Request) {
	var req dto.FundBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	balance, err := h.balanceUC.Fund(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to fund balance", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(balance))
}
