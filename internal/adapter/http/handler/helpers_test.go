package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cambiodesk/internal/domain"
	"github.com/iho/cambiodesk/internal/usecase"
)

// withURLParam injects a chi URL parameter into the request context.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/transactions?limit=50", nil)
	if got := parseIntQuery(req, "limit", 10); got != 50 {
		t.Fatalf("expected limit=50, got %d", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/transactions?limit=invalid", nil)
	if got := parseIntQuery(req, "limit", 10); got != 10 {
		t.Fatalf("expected fallback to default, got %d", got)
	}

	req.URL = &url.URL{RawQuery: ""}
	if got := parseIntQuery(req, "limit", 25); got != 25 {
		t.Fatalf("expected default when missing, got %d", got)
	}
}

func TestParseTimeQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/transactions?from=2026-08-01", nil)
	got := parseTimeQuery(req, "from")
	if got == nil || got.Format("2006-01-02") != "2026-08-01" {
		t.Fatalf("expected 2026-08-01, got %v", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/transactions?from=2026-08-01T12:30:00Z", nil)
	got = parseTimeQuery(req, "from")
	if got == nil || got.Hour() != 12 {
		t.Fatalf("expected RFC 3339 parse, got %v", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/transactions?from=yesterday", nil)
	if got = parseTimeQuery(req, "from"); got != nil {
		t.Fatalf("expected nil for unparseable value, got %v", got)
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"transaction not found", domain.ErrTransactionNotFound, http.StatusNotFound},
		{"balance not found", domain.ErrBalanceNotFound, http.StatusNotFound},
		{"insufficient funds", domain.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{"no cost basis", domain.ErrNoCostBasis, http.StatusUnprocessableEntity},
		{"inconsistent ledger", usecase.ErrInconsistentLedger, http.StatusConflict},
		{"rate unavailable", domain.ErrRateUnavailable, http.StatusServiceUnavailable},
		{"invalid amount", domain.ErrInvalidAmount, http.StatusBadRequest},
		{"invalid rate", domain.ErrInvalidRate, http.StatusBadRequest},
		{"invalid kind", domain.ErrInvalidKind, http.StatusBadRequest},
		{"invalid fee bearer", domain.ErrInvalidFeeBearer, http.StatusBadRequest},
		{"persistence", domain.ErrPersistence, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapDomainError(tt.err); got != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}
