package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iho/cambiodesk/internal/domain"
	"github.com/iho/cambiodesk/internal/infrastructure/auth"
)

func TestJWTManagerGenerateAndVerify(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("super-secret", time.Minute)

	op := &domain.Operator{
		ID:   "op-123",
		Name: "mostrador",
		Role: domain.RoleAdmin,
	}

	token, err := manager.Generate(op)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("expected token to verify, got %v", err)
	}

	if claims.OperatorID != op.ID || claims.Name != op.Name || claims.Role != op.Role {
		t.Fatalf("expected claims to match operator, got %+v", claims)
	}
}

func TestJWTManagerVerifyErrors(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("secret", time.Minute)

	expiredClaims := auth.Claims{
		OperatorID: "expired",
		Role:       domain.RoleOperator,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Minute)),
		},
	}
	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, expiredClaims)
	signed, err := expiredToken.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("failed to sign expired token: %v", err)
	}

	if _, err := manager.Verify(signed); !errors.Is(err, domain.ErrExpiredToken) {
		t.Fatalf("expected expired token error, got %v", err)
	}

	if _, err := manager.Verify("garbage.token.value"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}

	other := auth.NewJWTManager("different-secret", time.Minute)
	token, err := other.Generate(&domain.Operator{ID: "op-1", Role: domain.RoleOperator})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, err := manager.Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected wrong-secret token to be rejected, got %v", err)
	}
}
