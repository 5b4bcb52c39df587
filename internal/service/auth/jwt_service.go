package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AccessTokenType is the only token type accepted by the API.
const AccessTokenType = "access"

// JWTService signs and validates learner access tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for the learner.
	// Tokens are issued by the identity service in production; this is used
	// by tooling and tests.
	GenerateToken(ctx context.Context, learnerID uuid.UUID) (string, error)

	// ValidateToken validates the access token and extracts its claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid, ErrWrongTokenType,
	// ErrInvalidSubject or ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the validated content of an access token.
type Claims struct {
	// LearnerID is parsed from the token subject.
	LearnerID uuid.UUID `json:"sub,omitempty"`

	// TokenType indicates the purpose of the token.
	TokenType string `json:"type,omitempty"`

	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
