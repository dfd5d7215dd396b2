package handler

import (
	"net/http"
	"time"

	"github.com/iho/cambiodesk/internal/adapter/http/dto"
	"github.com/iho/cambiodesk/internal/usecase"
)

// LedgerHandler handles ledger-wide consistency and statistics
// requests.
type LedgerHandler struct {
	statsUC *usecase.StatsUseCase
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(statsUC *usecase.StatsUseCase) *LedgerHandler {
	return &LedgerHandler{statsUC: statsUC}
}

// CheckConsistency verifies that the stored balance equals the funded
// totals plus the sum of all applied deltas.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	consistent, err := h.statsUC.CheckConsistency(r.Context())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "consistency check failed", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyResponse{Consistent: consistent})
}

// GetStats returns realized earnings totals and a per-day series.
func (h *LedgerHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	var from, to time.Time
	if t := parseTimeQuery(r, "from"); t != nil {
		from = *t
	}
	if t := parseTimeQuery(r, "to"); t != nil {
		to = *t
	}

	stats, err := h.statsUC.Earnings(r.Context(), from, to)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to compute statistics", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.EarningsStatsFromUseCase(stats))
}
