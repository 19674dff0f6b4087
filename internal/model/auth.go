package model

import "github.com/golang-jwt/jwt/v5"

// SessionUser describes the authenticated user as reported by the identity
// provider. A nil *SessionUser means anonymous.
type SessionUser struct {
	Subject string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture,omitempty"`
}

// SessionClaims are the claims carried by a provider-issued session token.
type SessionClaims struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}
