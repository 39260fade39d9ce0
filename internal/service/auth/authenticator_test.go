package auth

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"
	"time"

	"github.com/phrazzld/press-api/internal/domain"
	"github.com/phrazzld/press-api/internal/platform/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	auth  *Authenticator
	user  *domain.User
	token string
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	ctx := context.Background()
	users := memory.New().Users()

	accountHash, err := HashPassword("account-secret")
	require.NoError(t, err)
	user := &domain.User{Login: "editor", Roles: []string{domain.RoleEditor}, PasswordHash: accountHash}
	require.NoError(t, users.Create(ctx, user))

	appHash, err := HashPassword("abcdabcdabcdabcd")
	require.NoError(t, err)
	require.NoError(t, users.AddApplicationPassword(ctx, &domain.ApplicationPassword{UserID: user.ID, Name: "cli", Hash: appHash}))

	tokens := newHMACService(testSecret, time.Hour, time.Now)
	a := NewAuthenticator(tokens, users, NewBcryptVerifier(), "press_auth")
	token, err := tokens.GenerateToken(ctx, user)
	require.NoError(t, err)
	return authFixture{auth: a, user: user, token: token}
}

func basic(login, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(login+":"+password))
}

func TestAuthenticator_Authenticate(t *testing.T) {
	f := newAuthFixture(t)

	tests := []struct {
		name     string
		header   string
		cookies  []*http.Cookie
		wantUser int64
		wantErr  error
	}{
		{name: "anonymous"},
		{name: "bearer", header: "Bearer " + f.token, wantUser: f.user.ID},
		{name: "bearer lowercase scheme", header: "bearer " + f.token, wantUser: f.user.ID},
		{name: "bad bearer", header: "Bearer nope", wantErr: ErrInvalidToken},
		{name: "basic app password", header: basic("editor", "abcd abcd abcd abcd"), wantUser: f.user.ID},
		{name: "basic account password is refused", header: basic("editor", "account-secret"), wantErr: ErrInvalidCredentials},
		{name: "basic unknown user", header: basic("ghost", "x"), wantErr: ErrInvalidCredentials},
		{name: "basic garbage", header: "Basic !!!", wantErr: ErrMalformedAuthorization},
		{name: "unknown scheme", header: "Digest abc", wantErr: ErrMalformedAuthorization},
		{name: "no scheme value", header: "Bearer", wantErr: ErrMalformedAuthorization},
		{
			name:     "cookie",
			cookies:  []*http.Cookie{{Name: "other", Value: "x"}, {Name: "press_auth", Value: f.token}},
			wantUser: f.user.ID,
		},
		{name: "bad cookie", cookies: []*http.Cookie{{Name: "press_auth", Value: "junk"}}, wantErr: ErrInvalidToken},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := http.Header{}
			if tc.header != "" {
				h.Set("Authorization", tc.header)
			}
			p, err := f.auth.Authenticate(context.Background(), h, tc.cookies)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			if tc.wantUser == 0 {
				assert.Nil(t, p)
				return
			}
			require.NotNil(t, p)
			assert.Equal(t, tc.wantUser, p.UserID)
			assert.Equal(t, []string{domain.RoleEditor}, p.Roles)
		})
	}
}

func TestAuthenticator_Login(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	token, user, err := f.auth.Login(ctx, "editor", "account-secret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, f.user.ID, user.ID)

	p, err := f.auth.Authenticate(ctx, http.Header{"Authorization": {"Bearer " + token}}, nil)
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, p.UserID)

	_, _, err = f.auth.Login(ctx, "editor", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = f.auth.Login(ctx, "nobody", "x")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
