package auth

import (
	"fmt"
	"time"

	"github.com/calebmorse/taskdeck/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenManager issues and verifies signed bearer tokens. The signing secret
// and validity window are injected at construction; there is no global state.
type TokenManager struct {
	secret      []byte
	tokenExpiry time.Duration
}

// NewTokenManager creates a new TokenManager.
func NewTokenManager(secret string, tokenExpiry time.Duration) *TokenManager {
	return &TokenManager{
		secret:      []byte(secret),
		tokenExpiry: tokenExpiry,
	}
}

// Generate creates a signed token binding the subject identity and role. The
// payload carries no secret material.
func (tm *TokenManager) Generate(accountID, role string) (string, error) {
	now := time.Now()
	claims := &models.SessionClaims{
		AccountID: accountID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   accountID,
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Validate verifies signature and expiry and returns the claims. Every
// failure mode (bad signature, malformed payload, expired, wrong algorithm)
// collapses into ErrTokenInvalid.
func (tm *TokenManager) Validate(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secret, nil
	})

	if err != nil || !token.Valid {
		return nil, models.ErrTokenInvalid
	}

	if claims.AccountID == "" {
		return nil, models.ErrTokenInvalid
	}

	return claims, nil
}
