package auth

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ShareTokenManager issues and validates signed report share links.
type ShareTokenManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewShareTokenManager builds a new manager.
func NewShareTokenManager(secret string, ttl time.Duration, issuer string) *ShareTokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ShareTokenManager{secret: []byte(secret), ttl: ttl, issuer: issuer, now: time.Now}
}

// ShareClaims describes the share token payload.
type ShareClaims struct {
	ClientID string `json:"client_id"`
	jwt.RegisteredClaims
}

// GenerateToken signs a link for one client's report.
func (tm *ShareTokenManager) GenerateToken(clientID string) (string, time.Time, error) {
	if strings.TrimSpace(clientID) == "" {
		return "", time.Time{}, errors.New("client id is required")
	}
	now := tm.now()
	expiresAt := now.Add(tm.ttl)
	claims := &ShareClaims{
		ClientID: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tm.issuer,
			Subject:   clientID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates and returns claims.
func (tm *ShareTokenManager) ParseToken(tokenStr string) (*ShareClaims, error) {
	opts := []jwt.ParserOption{jwt.WithTimeFunc(tm.now), jwt.WithExpirationRequired()}
	if tm.issuer != "" {
		opts = append(opts, jwt.WithIssuer(tm.issuer))
	}
	parsed, err := jwt.ParseWithClaims(tokenStr, &ShareClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*ShareClaims)
	if !ok || !parsed.Valid || claims.ClientID == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
