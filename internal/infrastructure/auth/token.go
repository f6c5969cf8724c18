package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/taskfabric/backend/internal/domain/shared"
)

// Claims are the JWT claims carried by an access token
type Claims struct {
	UserID uuid.UUID   `json:"uid"`
	Role   shared.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies JWT access tokens
type TokenManager struct {
	secret     []byte
	issuer     string
	expiration time.Duration
}

// NewTokenManager creates a new token manager
func NewTokenManager(secret, issuer string, expiration time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		issuer:     issuer,
		expiration: expiration,
	}
}

// Generate issues a signed access token for the given user
func (m *TokenManager) Generate(userID uuid.UUID, role shared.Role) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning the caller it identifies
func (m *TokenManager) Verify(tokenString string) (shared.Caller, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return shared.Caller{}, shared.ErrUnauthorized
	}
	if claims.UserID == uuid.Nil || !shared.ValidRole(claims.Role) {
		return shared.Caller{}, shared.ErrUnauthorized
	}
	return shared.Caller{UserID: claims.UserID, Role: claims.Role}, nil
}

// ErrTokenExpired reports whether the verification error was an expiry
func ErrTokenExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}
