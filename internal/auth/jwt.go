package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("missing authorization token")
)

const issuer = "trooper-tactics"

// Token uses. A refresh token is never accepted where an access token is expected.
const (
	UseAccess  = "access"
	UseRefresh = "refresh"
)

// Claims holds the JWT payload. Caller is the bot or viewer name.
type Claims struct {
	Caller string `json:"caller"`
	Use    string `json:"use"`
	jwt.RegisteredClaims
}

// JWTManager handles token creation and validation.
type JWTManager struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	parser        *jwt.Parser
}

// NewJWTManager creates a JWTManager with the given secret. Access tokens
// last an hour so a bot can play a full match on one token.
func NewJWTManager(secret string) *JWTManager {
	return &JWTManager{
		secret:        []byte(secret),
		accessExpiry:  time.Hour,
		refreshExpiry: 7 * 24 * time.Hour,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithIssuedAt(),
		),
	}
}

func (m *JWTManager) sign(caller, use string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Caller: caller,
		Use:    use,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   caller,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// GenerateAccessToken creates a short-lived access token for the given caller.
func (m *JWTManager) GenerateAccessToken(caller string) (string, error) {
	return m.sign(caller, UseAccess, m.accessExpiry)
}

// GenerateRefreshToken creates a long-lived refresh token.
func (m *JWTManager) GenerateRefreshToken(caller string) (string, error) {
	return m.sign(caller, UseRefresh, m.refreshExpiry)
}

// ValidateToken parses a token of the given use and returns its claims.
func (m *JWTManager) ValidateToken(tokenStr, use string) (*Claims, error) {
	claims := &Claims{}
	token, err := m.parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil || !token.Valid || claims.Use != use || claims.Caller == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// TokenPair holds an access and refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"` // seconds
}

// GenerateTokenPair creates both tokens for a caller.
func (m *JWTManager) GenerateTokenPair(caller string) (*TokenPair, error) {
	access, err := m.GenerateAccessToken(caller)
	if err != nil {
		return nil, err
	}
	refresh, err := m.GenerateRefreshToken(caller)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(m.accessExpiry.Seconds()),
	}, nil
}
