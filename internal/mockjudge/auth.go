package mockjudge

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type tokenClaims struct {
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// tokenIssuer mints and validates the mock's JWT pairs.
type tokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func newTokenIssuer(secret []byte, accessTTL, refreshTTL time.Duration) *tokenIssuer {
	return &tokenIssuer{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (i *tokenIssuer) issue(username, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// IssuePair mints an access+refresh pair for a user.
func (i *tokenIssuer) IssuePair(username string) (access, refresh string, err error) {
	access, err = i.issue(username, tokenTypeAccess, i.accessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = i.issue(username, tokenTypeRefresh, i.refreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// Validate parses a token and returns its subject when the type matches.
func (i *tokenIssuer) Validate(raw, expectedType string) (string, error) {
	parsed, err := jwt.ParseWithClaims(raw, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return "", fmt.Errorf("invalid token")
	}
	if claims.TokenType != expectedType {
		return "", fmt.Errorf("wrong token type: %s", claims.TokenType)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("missing subject")
	}
	return claims.Subject, nil
}

// RefreshAccess mints a new access token from a valid refresh token.
func (i *tokenIssuer) RefreshAccess(refreshToken string) (string, error) {
	username, err := i.Validate(refreshToken, tokenTypeRefresh)
	if err != nil {
		return "", err
	}
	return i.issue(username, tokenTypeAccess, i.accessTTL)
}
