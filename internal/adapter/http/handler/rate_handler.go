package handler

import (
	"net/http"

	"github.com/iho/cambiodesk/internal/adapter/http/dto"
	"github.com/iho/cambiodesk/internal/usecase"
)

// RateHandler handles market reference rate HTTP requests.
type RateHandler struct {
	rateUC *usecase.RateUseCase
}

// NewRateHandler creates a new RateHandler.
func NewRateHandler(rateUC *usecase.RateUseCase) *RateHandler {
	return &RateHandler{rateUC: rateUC}
}

// GetDollar returns the current informal dollar quote.
func (h *RateHandler) GetDollar(w http.ResponseWriter, r *http.Request) {
	quote, err := h.rateUC.MarketRate(r.Context())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to fetch market rate", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.QuoteFromDomain(quote))
}
