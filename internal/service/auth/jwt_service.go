package auth

import (
	"context"
	"time"

	"github.com/phrazzld/press-api/internal/domain"
)

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for the user.
	GenerateToken(ctx context.Context, user *domain.User) (string, error)

	// ValidateToken validates the provided token string and extracts the claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid or ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the validated content of an access token.
type Claims struct {
	UserID    int64
	Login     string
	Roles     []string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

// Principal converts the claims to a request principal.
func (c *Claims) Principal() *domain.Principal {
	return &domain.Principal{UserID: c.UserID, Login: c.Login, Roles: append([]string(nil), c.Roles...)}
}
