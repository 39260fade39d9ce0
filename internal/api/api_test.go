package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/press-api/internal/content"
	"github.com/phrazzld/press-api/internal/domain"
	"github.com/phrazzld/press-api/internal/events"
	"github.com/phrazzld/press-api/internal/platform/memory"
	"github.com/phrazzld/press-api/internal/rest"
	"github.com/phrazzld/press-api/internal/service/access"
	"github.com/phrazzld/press-api/internal/service/auth"
	"github.com/stretchr/testify/require"
)

const (
	testBase     = "http://example.test/wp-json"
	testUserHdr  = "X-Test-User"
	testPassword = "correct horse"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// testAPI is a fully wired REST server over memory stores.
type testAPI struct {
	server *rest.Server
	db     *memory.DB
	deps   *Deps
	users  map[string]*domain.User

	mu     sync.Mutex
	events []*events.ContentEvent
}

// stubIssuer accepts testPassword for every known login.
type stubIssuer struct {
	api *testAPI
}

func (s stubIssuer) Login(ctx context.Context, login, password string) (string, *domain.User, error) {
	u, ok := s.api.users[login]
	if !ok || password != testPassword {
		return "", nil, auth.ErrInvalidCredentials
	}
	return "token-for-" + login, u, nil
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := content.Defaults()
	registry.Freeze()
	db := memory.New()

	a := &testAPI{db: db, users: map[string]*domain.User{}}
	for _, role := range []string{
		domain.RoleAdministrator, domain.RoleEditor, domain.RoleAuthor,
		domain.RoleContributor, domain.RoleSubscriber,
	} {
		u := &domain.User{Login: role, Email: role + "@example.test", DisplayName: "The " + role, Roles: []string{role}}
		require.NoError(t, db.Users().Create(context.Background(), u))
		a.users[role] = u
	}

	emitter := events.NewInMemoryEventEmitter(discard)
	emitter.RegisterHandler(events.HandlerFunc(func(ctx context.Context, e *events.ContentEvent) error {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.events = append(a.events, e)
		return nil
	}))

	a.deps = &Deps{
		Content: registry,
		Posts:   db.Posts(),
		Terms:   db.Terms(),
		Options: db.Options(),
		Users:   db.Users(),
		Access:  access.NewChecker(registry),
		Events:  emitter,
		BaseURL: testBase,
		Logger:  discard,
		Now:     func() time.Time { return testNow },
	}
	reg, err := NewRegistry(a.deps, stubIssuer{api: a})
	require.NoError(t, err)

	authn := rest.AuthenticatorFunc(func(ctx context.Context, h http.Header, _ []*http.Cookie) (*domain.Principal, error) {
		login := h.Get(testUserHdr)
		if login == "" {
			return nil, nil
		}
		u, ok := a.users[login]
		if !ok {
			return nil, rest.NewError(rest.CodeInvalidAuth, "unknown test user")
		}
		return u.Principal(), nil
	})
	a.server = rest.NewServer(reg,
		rest.WithBaseURL(testBase),
		rest.WithLogger(discard),
		rest.WithAuthenticator(authn))
	return a
}

// do dispatches a request as the named user; an empty name is anonymous.
func (a *testAPI) do(t *testing.T, as, method, path string, body map[string]any, query ...string) *rest.Response {
	t.Helper()
	req := rest.NewRequest(method, path)
	if as != "" {
		req.SetHeader(testUserHdr, as)
	}
	require.Zero(t, len(query)%2, "query must be name/value pairs")
	for i := 0; i < len(query); i += 2 {
		req.SetQueryParam(query[i], query[i+1])
	}
	if body != nil {
		req.SetBody(body)
	}
	return a.server.Dispatch(context.Background(), req)
}

func (a *testAPI) emitted() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	types := make([]string, len(a.events))
	for i, e := range a.events {
		types[i] = e.Type
	}
	return types
}

func (a *testAPI) user(role string) *domain.User { return a.users[role] }

func (a *testAPI) seedPost(t *testing.T, p *domain.Post) *domain.Post {
	t.Helper()
	if p.Type == "" {
		p.Type = "post"
	}
	if p.Status == "" {
		p.Status = domain.StatusPublish
	}
	if p.Date.IsZero() {
		p.Date = testNow.Add(-time.Hour)
	}
	require.NoError(t, a.db.Posts().Create(context.Background(), p))
	return p
}

func (a *testAPI) seedTerm(t *testing.T, tax, name string, parent int64) *domain.Term {
	t.Helper()
	term := &domain.Term{Taxonomy: tax, Name: name, Slug: domain.Slugify(name), Parent: parent}
	require.NoError(t, a.db.Terms().Create(context.Background(), term))
	return term
}

func errorCode(t *testing.T, resp *rest.Response) string {
	t.Helper()
	e := rest.ResponseError(resp)
	require.NotNil(t, e, "expected an error response, got %d", resp.Status)
	return e.Code
}

func itemData(t *testing.T, resp *rest.Response) map[string]any {
	t.Helper()
	require.False(t, resp.IsError(), "unexpected error response: %+v", rest.ResponseError(resp))
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data is %T", resp.Data)
	return data
}

func listData(t *testing.T, resp *rest.Response) []map[string]any {
	t.Helper()
	require.False(t, resp.IsError(), "unexpected error response: %+v", rest.ResponseError(resp))
	data, ok := resp.Data.([]map[string]any)
	require.True(t, ok, "data is %T", resp.Data)
	return data
}
