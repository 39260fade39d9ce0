package api

// TokenResponse is the body returned by the token endpoint.
type TokenResponse struct {
	// Token is the signed JWT to send as "Authorization: Bearer <token>"
	Token     string `json:"token"`
	TokenType string `json:"token_type"`

	UserID          int64  `json:"user_id"`
	UserLogin       string `json:"user_login"`
	UserDisplayName string `json:"user_display_name"`
}
