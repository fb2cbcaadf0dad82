// Package jwttoken issues and validates agent bearer tokens. The identity
// provider for teller agents lives elsewhere; this service only verifies
// that a token was signed with the shared key and extracts the agent claims.
package jwttoken

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"coreteller/internal/platform/middleware"
)

type Manager struct {
	signingKey []byte
}

func NewManager(signingKey string) *Manager {
	return &Manager{signingKey: []byte(signingKey)}
}

type agentClaims struct {
	Branch string `json:"branch,omitempty"`
	jwt.RegisteredClaims
}

// Issue mints a token for an agent. Used by tests and the local dev login
// stub; production tokens come from the bank's identity provider.
func (m *Manager) Issue(agentID, branch string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := agentClaims{
		Branch: branch,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   agentID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.signingKey)
}

// ValidateToken implements middleware.TokenValidator.
func (m *Manager) ValidateToken(tokenString string) (*middleware.AgentClaims, error) {
	var claims agentClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token missing subject")
	}
	return &middleware.AgentClaims{AgentID: claims.Subject, Branch: claims.Branch}, nil
}
