package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	mgr := NewJWTManager("test-secret-key-123")
	token, err := mgr.GenerateAccessToken("alpha-bot")
	if err != nil {
		t.Fatalf("generate access token: %v", err)
	}

	claims, err := mgr.ValidateToken(token, UseAccess)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.Caller != "alpha-bot" || claims.Subject != "alpha-bot" || claims.Issuer != issuer {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestRefreshTokenNotAcceptedAsAccess(t *testing.T) {
	mgr := NewJWTManager("test-secret-key-123")
	refresh, err := mgr.GenerateRefreshToken("alpha-bot")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.ValidateToken(refresh, UseAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected refresh token rejected as access, got %v", err)
	}
	if _, err := mgr.ValidateToken(refresh, UseRefresh); err != nil {
		t.Errorf("expected refresh token accepted as refresh, got %v", err)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _ := NewJWTManager("secret-a").GenerateAccessToken("alpha-bot")
	if _, err := NewJWTManager("secret-b").ValidateToken(token, UseAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateTokenExpired(t *testing.T) {
	mgr := NewJWTManager("test-secret")
	mgr.accessExpiry = -time.Minute
	token, _ := mgr.GenerateAccessToken("alpha-bot")
	if _, err := mgr.ValidateToken(token, UseAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for an expired token, got %v", err)
	}
}

func TestValidateTokenRejectsOtherIssuerAndAlg(t *testing.T) {
	mgr := NewJWTManager("test-secret")

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Caller:           "alpha-bot",
		Use:              UseAccess,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	s, _ := foreign.SignedString([]byte("test-secret"))
	if _, err := mgr.ValidateToken(s, UseAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected foreign issuer rejected, got %v", err)
	}

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{
		Caller:           "alpha-bot",
		Use:              UseAccess,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	s, _ = hs512.SignedString([]byte("test-secret"))
	if _, err := mgr.ValidateToken(s, UseAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected HS512 rejected, got %v", err)
	}
}

func TestGenerateTokenPair(t *testing.T) {
	pair, err := NewJWTManager("test-secret").GenerateTokenPair("alpha-bot")
	if err != nil {
		t.Fatal(err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" || pair.ExpiresIn != 3600 {
		t.Errorf("unexpected pair %+v", pair)
	}
}
