package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phrazzld/press-api/internal/domain"
	"github.com/phrazzld/press-api/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBase = "http://example.test/wp-json"

func newTestServer(t *testing.T, register func(r *Registry), opts ...Option) *Server {
	t.Helper()
	reg := NewRegistry()
	register(reg)
	opts = append([]Option{
		WithBaseURL(testBase),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	return NewServer(reg, opts...)
}

func errorCode(t *testing.T, resp *Response) string {
	t.Helper()
	e := ResponseError(resp)
	require.NotNil(t, e, "expected an error response, got %d", resp.Status)
	return e.Code
}

func TestDispatchNoRoute(t *testing.T) {
	s := newTestServer(t, func(r *Registry) {
		require.NoError(t, r.Register("wp", "/posts", "GET", Binding{Handler: okHandler(nil)}))
	})

	resp := s.Dispatch(context.Background(), NewRequest("GET", "/wp/nothing"))
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, CodeNoRoute, errorCode(t, resp))
}

func TestDispatchMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, func(r *Registry) {
		require.NoError(t, r.Handle("wp", "/site", []string{"GET", "POST", "PATCH"}, Binding{Handler: okHandler(nil)}))
	})

	resp := s.Dispatch(context.Background(), NewRequest("DELETE", "/wp/site"))
	assert.Equal(t, http.StatusMethodNotAllowed, resp.Status)
	assert.Equal(t, CodeMethodNotAllowed, errorCode(t, resp))
	assert.Equal(t, "GET, POST, PATCH", resp.Header.Get("Allow"))
}

func TestDispatchOutcomeNormalization(t *testing.T) {
	tests := []struct {
		name       string
		handler    Handler
		wantStatus int
		wantCode   string
	}{
		{"success value", okHandler(map[string]any{"a": 1}), 200, ""},
		{"explicit response", func(context.Context, *Call) Outcome { return NewResponse(201, "made") }, 201, ""},
		{"error with status", func(context.Context, *Call) Outcome {
			return NewError("post_invalid_id", "Invalid post ID.")
		}, 404, "post_invalid_id"},
		{"error without status", func(context.Context, *Call) Outcome {
			return &Error{Code: "store_failed", Message: "nope"}
		}, 500, "store_failed"},
		{"nil outcome", func(context.Context, *Call) Outcome { return nil }, 200, ""},
		{"panic", func(context.Context, *Call) Outcome { panic("kaboom") }, 500, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, func(r *Registry) {
				require.NoError(t, r.Register("wp", "/thing", "GET", Binding{Handler: tt.handler}))
			})
			resp := s.Dispatch(context.Background(), NewRequest("GET", "/wp/thing"))
			assert.Equal(t, tt.wantStatus, resp.Status)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(t, resp))
				assert.Equal(t, tt.wantStatus, ResponseError(resp).Status())
			}
		})
	}
}

func TestDispatchValidatesAndSanitizesArgs(t *testing.T) {
	var got Args
	s := newTestServer(t, func(r *Registry) {
		require.NoError(t, r.Register("wp", `/posts/(?P<id>[\d]+)`, "POST", Binding{
			Handler: func(_ context.Context, c *Call) Outcome {
				got = c.Args
				return OK(nil)
			},
			Args: map[string]schema.ArgSpec{
				"id":       schema.Arg(&schema.Property{Type: schema.TypeInteger}),
				"per_page": schema.Arg(&schema.Property{Type: schema.TypeInteger, Default: int64(10)}),
				"sticky":   schema.Arg(&schema.Property{Type: schema.TypeBoolean}),
				"email":    schema.Arg(&schema.Property{Type: schema.TypeString, Format: schema.FormatEmail}),
				"absent":   schema.Arg(&schema.Property{Type: schema.TypeString}),
			},
		}))
	})

	req := NewRequest("POST", "/wp/posts/12").
		SetQueryParam("id", "99").
		SetQueryParam("sticky", "1").
		SetBodyParam("sticky", false).
		SetBodyParam("email", "joe@foo.bar")
	resp := s.Dispatch(context.Background(), req)
	require.Equal(t, 200, resp.Status)

	assert.Equal(t, int64(12), got["id"], "path params win over query")
	assert.Equal(t, true, got["sticky"], "query wins over body")
	assert.Equal(t, int64(10), got["per_page"])
	assert.Equal(t, "joe@foo.bar", got["email"])
	assert.False(t, got.Has("absent"))

	bad := s.Dispatch(context.Background(), NewRequest("POST", "/wp/posts/1").SetBodyParam("email", "d"))
	assert.Equal(t, 400, bad.Status)
	e := ResponseError(bad)
	assert.Equal(t, schema.CodeInvalidEmail, e.Code)
	assert.Equal(t, map[string]string{"email": "Invalid email address."}, e.Data["params"])
}

func TestDispatchFirstValidationErrorWins(t *testing.T) {
	s := newTestServer(t, func(r *Registry) {
		require.NoError(t, r.Register("wp", "/things", "GET", Binding{
			Handler: okHandler(nil),
			Args: map[string]schema.ArgSpec{
				"b_date": schema.Arg(&schema.Property{Type: schema.TypeString, Format: schema.FormatDateTime}),
				"a_page": schema.Arg(&schema.Property{Type: schema.TypeInteger}),
			},
		}))
	})
	req := NewRequest("GET", "/wp/things").SetQueryParam("a_page", "abc").SetQueryParam("b_date", "2010-18-18T12:00:00")
	resp := s.Dispatch(context.Background(), req)
	assert.Equal(t, CodeInvalidParam, errorCode(t, resp))
}

func TestDispatchMissingRequiredParam(t *testing.T) {
	s := newTestServer(t, func(r *Registry) {
		require.NoError(t, r.Register("auth", "/token", "POST", Binding{
			Handler: okHandler(nil),
			Args: map[string]schema.ArgSpec{
				"username": {Required: true},
				"password": {Required: true},
			},
		}))
	})

	resp := s.Dispatch(context.Background(), NewRequest("POST", "/auth/token").SetBodyParam("username", "ada"))
	assert.Equal(t, 400, resp.Status)
	e := ResponseError(resp)
	assert.Equal(t, CodeMissingParam, e.Code)
	assert.Equal(t, []string{"password"}, e.Data["params"])
}

func TestDispatchTriesBindingsInOrder(t *testing.T) {
	deny := func(code string) PermissionFunc {
		return func(context.Context, *Request, *domain.Principal) *Error {
			return NewError(code, "Sorry, you are not allowed to do that.")
		}
	}
	allowAdmins := func(_ context.Context, _ *Request, p *domain.Principal) *Error {
		if p.HasCap("manage_options") {
			return nil
		}
		return NewError(CodeCannotEdit, "Sorry, you are not allowed to edit.")
	}

	s := newTestServer(t, func(r *Registry) {
		require.NoError(t, r.Register("wp", "/x", "GET", Binding{Handler: okHandler("first"), Permission: deny(CodeCannotView)}))
		require.NoError(t, r.Register("wp", "/x", "GET", Binding{Handler: okHandler("second"), Permission: allowAdmins}))
	}, WithAuthenticator(AuthenticatorFunc(func(_ context.Context, h http.Header, _ []*http.Cookie) (*domain.Principal, error) {
		if h.Get("Authorization") == "admin" {
			return &domain.Principal{UserID: 1, Roles: []string{domain.RoleAdministrator}}, nil
		}
		return nil, nil
	})))

	anon := s.Dispatch(context.Background(), NewRequest("GET", "/wp/x"))
	assert.Equal(t, 403, anon.Status)
	assert.Equal(t, CodeCannotEdit, errorCode(t, anon), "last error is reported")

	admin := s.Dispatch(context.Background(), NewRequest("GET", "/wp/x").SetHeader("Authorization", "admin"))
	assert.Equal(t, 200, admin.Status)
	assert.Equal(t, "second", admin.Data)
}

func TestDispatchAuthenticationFailure(t *testing.T) {
	s := newTestServer(t, func(r *Registry) {
		require.NoError(t, r.Register("wp", "/x", "GET", Binding{Handler: okHandler(nil)}))
	}, WithAuthenticator(AuthenticatorFunc(func(context.Context, http.Header, []*http.Cookie) (*domain.Principal, error) {
		return nil, errors.New("signature mismatch")
	})))

	resp := s.Dispatch(context.Background(), NewRequest("GET", "/wp/x"))
	assert.Equal(t, 401, resp.Status)
	assert.Equal(t, CodeInvalidAuth, errorCode(t, resp))
	assert.NotContains(t, ResponseError(resp).Message, "signature")
}

func TestDispatchMethodOverride(t *testing.T) {
	s := newTestServer(t, func(r *Registry) {
		require.NoError(t, r.Register("wp", "/x", "DELETE", Binding{Handler: okHandler("deleted")}))
	})

	resp := s.Dispatch(context.Background(), NewRequest("POST", "/wp/x").SetQueryParam("_method", "delete"))
	assert.Equal(t, "deleted", resp.Data)

	resp = s.Dispatch(context.Background(), NewRequest("POST", "/wp/x").SetHeader("X-HTTP-Method-Override", "DELETE"))
	assert.Equal(t, "deleted", resp.Data)
}

func TestDispatchOptionsAndIndex(t *testing.T) {
	s := newTestServer(t, func(r *Registry) {
		require.NoError(t, r.Handle("wp", "/posts", []string{"GET", "POST"}, Binding{
			Handler: okHandler(nil),
			Args:    map[string]schema.ArgSpec{"context": schema.ContextArg(schema.ContextView)},
			Schema:  func() *schema.Schema { return schema.New("post", nil) },
		}))
	})

	opts := s.Dispatch(context.Background(), NewRequest("OPTIONS", "/wp/posts"))
	assert.Equal(t, 200, opts.Status)
	assert.Equal(t, "GET, POST", opts.Header.Get("Allow"))
	doc := opts.Data.(map[string]any)
	assert.Equal(t, []string{"GET", "POST"}, doc["methods"])
	assert.NotNil(t, doc["schema"])

	root := s.Dispatch(context.Background(), NewRequest("GET", "/"))
	require.Equal(t, 200, root.Status)
	rootDoc := root.Data.(map[string]any)
	assert.Equal(t, []string{"wp"}, rootDoc["namespaces"])
	assert.Contains(t, rootDoc["routes"], "/wp/posts")

	ns := s.Dispatch(context.Background(), NewRequest("GET", "/wp"))
	require.Equal(t, 200, ns.Status)
	assert.Equal(t, "wp", ns.Data.(map[string]any)["namespace"])
}

func TestPaginationHeaders(t *testing.T) {
	s := newTestServer(t, func(r *Registry) {
		require.NoError(t, r.Register("wp", "/posts", "GET", Binding{
			Handler: func(_ context.Context, c *Call) Outcome {
				return NewResponse(200, []any{}).Paginate(25, 10, int(c.Args.Int("page")))
			},
			Args: map[string]schema.ArgSpec{
				"page": schema.Arg(&schema.Property{Type: schema.TypeInteger, Default: int64(1)}),
			},
		}))
	})

	first := s.Dispatch(context.Background(), NewRequest("GET", "/wp/posts").SetQueryParam("search", "go"))
	assert.Equal(t, "25", first.Header.Get("X-WP-Total"))
	assert.Equal(t, "3", first.Header.Get("X-WP-TotalPages"))
	assert.Equal(t, []string{`<` + testBase + `/wp/posts?page=2&search=go>; rel="next"`}, first.Header.Values("Link"))

	middle := s.Dispatch(context.Background(), NewRequest("GET", "/wp/posts").SetQueryParam("page", "2"))
	assert.Equal(t, []string{
		`<` + testBase + `/wp/posts>; rel="prev"`,
		`<` + testBase + `/wp/posts?page=3>; rel="next"`,
	}, middle.Header.Values("Link"))

	beyond := s.Dispatch(context.Background(), NewRequest("GET", "/wp/posts").SetQueryParam("page", "7"))
	assert.Equal(t, []string{`<` + testBase + `/wp/posts?page=3>; rel="prev"`}, beyond.Header.Values("Link"))
}

func TestEmbedFollowsEmbeddableLinks(t *testing.T) {
	s := newTestServer(t, func(r *Registry) {
		require.NoError(t, r.Register("wp", "/posts", "GET", Binding{Handler: okHandler([]map[string]any{
			{"id": 1, "_links": Links{
				"author":  {{Href: testBase + "/wp/users/7", Embeddable: true}},
				"wp:term": {{Href: testBase + "/wp/missing", Embeddable: true}},
				"self":    {{Href: testBase + "/wp/posts/1"}},
			}},
		})}))
		require.NoError(t, r.Register("wp", `/users/(?P<id>\d+)`, "GET", Binding{
			Handler: func(_ context.Context, c *Call) Outcome {
				return OK(map[string]any{"id": c.Request.URLParam("id"), "context": c.Request.Query().Get("context")})
			},
		}))
	})

	resp := s.Dispatch(context.Background(), NewRequest("GET", "/wp/posts").SetQueryParam("_embed", "1"))
	require.Equal(t, 200, resp.Status)
	items := resp.Data.([]map[string]any)
	embedded := items[0]["_embedded"].(map[string]any)

	author := embedded["author"].([]any)
	assert.Equal(t, map[string]any{"id": "7", "context": "embed"}, author[0])

	term := embedded["wp:term"].([]any)
	assert.Equal(t, CodeNoRoute, term[0].(*Error).Code)
	assert.NotContains(t, embedded, "self")

	only := s.Dispatch(context.Background(), NewRequest("GET", "/wp/posts").SetQueryParam("_embed", "author"))
	onlyEmbedded := only.Data.([]map[string]any)[0]["_embedded"].(map[string]any)
	assert.Contains(t, onlyEmbedded, "author")
	assert.NotContains(t, onlyEmbedded, "wp:term")
}

func TestServeHTTP(t *testing.T) {
	s := newTestServer(t, func(r *Registry) {
		require.NoError(t, r.Register("wp", "/echo", "POST", Binding{
			Handler: func(_ context.Context, c *Call) Outcome { return OK(c.Args) },
			Args: map[string]schema.ArgSpec{
				"title": schema.Arg(&schema.Property{Type: schema.TypeString}),
				"count": schema.Arg(&schema.Property{Type: schema.TypeInteger}),
			},
		}))
		require.NoError(t, r.Register("wp", "/site", "GET", Binding{Handler: okHandler(map[string]any{"name": "Press"})}))
		require.NoError(t, r.Register("wp", "/bad", "GET", Binding{Handler: okHandler(func() {})}))
		require.NoError(t, r.Register("wp", "/inf", "GET", Binding{Handler: func(context.Context, *Call) Outcome {
			return OK(math.Inf(1))
		}}))
	})

	t.Run("json body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/wp-json/wp/echo", strings.NewReader(`{"title":"Hi","count":3}`))
		req.Header.Set("Content-Type", "application/json")
		s.ServeHTTP(rec, req)

		assert.Equal(t, 200, rec.Code)
		assert.Equal(t, "application/json; charset=UTF-8", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"title":"Hi","count":3}`, rec.Body.String())
	})

	t.Run("form body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/wp-json/wp/echo", strings.NewReader("title=Form&count=4"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		s.ServeHTTP(rec, req)
		assert.JSONEq(t, `{"title":"Form","count":4}`, rec.Body.String())
	})

	t.Run("invalid json", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/wp-json/wp/echo", strings.NewReader(`{"title":`))
		req.Header.Set("Content-Type", "application/json")
		s.ServeHTTP(rec, req)

		assert.Equal(t, 400, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, CodeInvalidJSON, body["code"])
		assert.Equal(t, float64(400), body["data"].(map[string]any)["status"])
	})

	t.Run("rest_route and head", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest("HEAD", "/?rest_route=/wp/site", nil))
		assert.Equal(t, 200, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("envelope", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest("GET", "/wp-json/wp/nope?_envelope=1", nil))
		assert.Equal(t, 200, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, float64(404), body["status"])
		assert.Equal(t, CodeNoRoute, body["body"].(map[string]any)["code"])
	})

	t.Run("unencodable data", func(t *testing.T) {
		for _, path := range []string{"/wp-json/wp/bad", "/wp-json/wp/inf"} {
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
			assert.Equal(t, 500, rec.Code, path)
			assert.Equal(t, "application/json; charset=UTF-8", rec.Header().Get("Content-Type"))
			assert.JSONEq(t,
				`{"code":"internal_error","message":"The response could not be encoded.","data":{"status":500}}`,
				rec.Body.String(), path)
			assert.NotContains(t, rec.Body.String(), "unsupported")
		}
	})

	t.Run("unencodable data in envelope", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest("GET", "/wp-json/wp/inf?_envelope=1", nil))
		assert.Equal(t, 200, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, float64(500), body["status"])
		assert.Equal(t, CodeInternal, body["body"].(map[string]any)["code"])
	})

	t.Run("idempotent get", func(t *testing.T) {
		first := httptest.NewRecorder()
		second := httptest.NewRecorder()
		s.ServeHTTP(first, httptest.NewRequest("GET", "/wp-json/wp/site", nil))
		s.ServeHTTP(second, httptest.NewRequest("GET", "/wp-json/wp/site", nil))
		assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())
	})
}
