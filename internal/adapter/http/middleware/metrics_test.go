package middleware

import "testing"

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"/api/v1/transactions/01HXYZ", "/api/v1/transactions/:id"},
		{"/api/v1/transactions/01HXYZ/whatever", "/api/v1/transactions/:id/whatever"},
		{"/api/v1/transactions", "/api/v1/transactions"},
		{"/api/v1/balance", "/api/v1/balance"},
		{"/health", "/health"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.in); got != tt.expected {
			t.Fatalf("normalizePath(%q) = %q, want %q", tt.in, got, tt.expected)
		}
	}
}
