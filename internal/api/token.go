package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/press-api/internal/redact"
	"github.com/phrazzld/press-api/internal/rest"
	"github.com/phrazzld/press-api/internal/schema"
	"github.com/phrazzld/press-api/internal/service/auth"
)

// AuthNamespace is the route namespace of the token endpoint.
const AuthNamespace = "auth"

// TokenController exchanges a username and password for a bearer token.
type TokenController struct {
	deps   *Deps
	issuer TokenIssuer
}

// NewTokenController creates a TokenController.
func NewTokenController(d *Deps, issuer TokenIssuer) *TokenController {
	return &TokenController{deps: d, issuer: issuer}
}

// Register adds POST /auth/token.
func (c *TokenController) Register(r *rest.Registry) error {
	return r.Register(AuthNamespace, "/token", http.MethodPost, rest.Binding{
		Handler: c.CreateToken,
		Args: map[string]schema.ArgSpec{
			"username": schema.Arg(&schema.Property{
				Description: "Login name of the account.",
				Type:        schema.TypeString,
				Required:    true,
			}),
			"password": schema.Arg(&schema.Property{
				Description: "Password of the account.",
				Type:        schema.TypeString,
				Required:    true,
			}),
		},
	})
}

// CreateToken checks the credentials and issues a signed token.
func (c *TokenController) CreateToken(ctx context.Context, call *rest.Call) rest.Outcome {
	log := c.deps.log(ctx, "token")
	username := call.Args.String("username")

	token, user, err := c.issuer.Login(ctx, username, call.Args.String("password"))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			log.Debug("login rejected", slog.String("username", username))
			return rest.NewError(rest.CodeInvalidCredentials, "The username or password is incorrect.")
		}
		log.Error("login failed", slog.String("error", redact.Error(err)))
		return rest.FromError(err)
	}

	log.Info("token issued", slog.Int64("user_id", user.ID))
	name := user.DisplayName
	if name == "" {
		name = user.Login
	}
	return rest.OK(TokenResponse{
		Token:           token,
		TokenType:       "Bearer",
		UserID:          user.ID,
		UserLogin:       user.Login,
		UserDisplayName: name,
	})
}
