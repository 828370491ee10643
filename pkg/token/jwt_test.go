package token

import (
	"strings"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", 2, 7)

	tokenString, err := m.GenerateToken(42, "somchai", "USER")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := m.VerifyToken(tokenString)
	if err != nil {
		t.Fatalf("VerifyToken() error = %v", err)
	}
	if claims.UserID != 42 || claims.Username != "somchai" || claims.Role != "USER" {
		t.Errorf("claims = %+v", claims)
	}
	if time.Until(claims.ExpiresAt.Time) > 2*time.Hour {
		t.Errorf("access token expiry too far in the future: %v", claims.ExpiresAt.Time)
	}
}

func TestRefreshTokenHasLongerExpiry(t *testing.T) {
	m := NewJWTManager("test-secret", 2, 7)

	access, err := m.GenerateToken(1, "u", "USER")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	refresh, err := m.GenerateRefreshToken(1, "u", "USER")
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}

	accessClaims, _ := m.VerifyToken(access)
	refreshClaims, _ := m.VerifyToken(refresh)
	if !refreshClaims.ExpiresAt.After(accessClaims.ExpiresAt.Time) {
		t.Error("refresh token should expire after access token")
	}
}

func TestVerifyTokenRejections(t *testing.T) {
	m := NewJWTManager("test-secret", 2, 7)
	other := NewJWTManager("another-secret", 2, 7)

	valid, err := m.GenerateToken(1, "u", "USER")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "wrong secret", token: mustToken(t, other)},
		{name: "garbage", token: "not.a.token"},
		{name: "empty", token: ""},
		{name: "tampered payload", token: tamper(valid)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.VerifyToken(tt.token); err == nil {
				t.Error("VerifyToken() error = nil, want error")
			}
		})
	}
}

func mustToken(t *testing.T, m *JWTManager) string {
	t.Helper()
	tok, err := m.GenerateToken(1, "u", "USER")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	return tok
}

func tamper(token string) string {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return token
	}
	parts[1] = "eyJ0YW1wZXJlZCI6dHJ1ZX0"
	return strings.Join(parts, ".")
}
