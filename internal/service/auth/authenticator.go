package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/press-api/internal/domain"
	"github.com/phrazzld/press-api/internal/platform/logger"
	"github.com/phrazzld/press-api/internal/store"
)

// Authenticator resolves request credentials to a principal. It accepts a
// bearer JWT, HTTP basic with an application password, or a JWT carried in
// the configured cookie.
type Authenticator struct {
	tokens     JWTService
	users      store.UserStore
	verifier   PasswordVerifier
	cookieName string
}

// NewAuthenticator creates an Authenticator. An empty cookieName disables
// cookie authentication.
func NewAuthenticator(tokens JWTService, users store.UserStore, verifier PasswordVerifier, cookieName string) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, verifier: verifier, cookieName: cookieName}
}

// Authenticate returns (nil, nil) when no credentials are present.
func (a *Authenticator) Authenticate(ctx context.Context, header http.Header, cookies []*http.Cookie) (*domain.Principal, error) {
	if authz := header.Get("Authorization"); authz != "" {
		scheme, value, ok := strings.Cut(authz, " ")
		if !ok {
			return nil, ErrMalformedAuthorization
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(scheme) {
		case "bearer":
			return a.fromToken(ctx, value)
		case "basic":
			return a.fromBasic(ctx, value)
		default:
			return nil, ErrMalformedAuthorization
		}
	}

	if a.cookieName != "" {
		for _, c := range cookies {
			if c.Name == a.cookieName && c.Value != "" {
				return a.fromToken(ctx, c.Value)
			}
		}
	}
	return nil, nil
}

func (a *Authenticator) fromToken(ctx context.Context, token string) (*domain.Principal, error) {
	claims, err := a.tokens.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}
	// Roles come from the store so revoked access takes effect before expiry.
	user, err := a.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load token user: %w", err)
	}
	return user.Principal(), nil
}

func (a *Authenticator) fromBasic(ctx context.Context, encoded string) (*domain.Principal, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrMalformedAuthorization
	}
	login, password, ok := strings.Cut(string(raw), ":")
	if !ok || login == "" {
		return nil, ErrMalformedAuthorization
	}

	user, err := a.users.GetByLogin(ctx, login)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	passwords, err := a.users.ApplicationPasswords(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load application passwords: %w", err)
	}
	// Application passwords are displayed in groups of four; spaces are ignored.
	password = strings.ReplaceAll(password, " ", "")
	for _, pw := range passwords {
		if a.verifier.Compare(pw.Hash, password) == nil {
			logger.FromContext(ctx).Debug("authenticated with application password",
				"user_id", user.ID, "app_password", pw.Name)
			return user.Principal(), nil
		}
	}
	return nil, ErrInvalidCredentials
}

// Login checks an account password and issues an access token.
func (a *Authenticator) Login(ctx context.Context, login, password string) (string, *domain.User, error) {
	user, err := a.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user.PasswordHash == "" || a.verifier.Compare(user.PasswordHash, password) != nil {
		return "", nil, ErrInvalidCredentials
	}
	token, err := a.tokens.GenerateToken(ctx, user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}
