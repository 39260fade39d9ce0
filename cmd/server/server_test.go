package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/phrazzld/press-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:         8080,
			LogLevel:     "error",
			BaseURL:      "http://example.test/wp-json",
			MountPath:    "/wp-json",
			MaxBodyBytes: 1 << 20,
		},
		Database: config.DatabaseConfig{Driver: "memory"},
		Auth: config.AuthConfig{
			JWTSecret:            "thisisasecretkeythatis32charslong!!",
			TokenLifetimeMinutes: 60,
			CookieName:           "press_auth",
		},
		Content: config.ContentConfig{SeedDemoContent: true, DemoAdminPassword: "demo-password"},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	app, err := newApplication(context.Background(), cfg, log)
	t.Cleanup(app.cleanup)
	require.NoError(t, err)

	srv := httptest.NewServer(setupRouter(app.rest, cfg.Server.MountPath, log))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, req *http.Request, dst any) *http.Response {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	if dst != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
	}
	return resp
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, testConfig())

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestServeSeededContent(t *testing.T) {
	srv := newTestServer(t, testConfig())

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/wp-json/wp/posts", nil)
	var posts []map[string]any
	resp := getJSON(t, req, &posts)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, posts, 1)
	assert.Equal(t, "hello-world", posts[0]["slug"])
	assert.Equal(t, "1", resp.Header.Get("X-WP-Total"))

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/wp-json/?rest_route=/wp/types/post", nil)
	var postType map[string]any
	resp = getJSON(t, req, &postType)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "posts", postType["rest_base"])
}

func TestServeTokenLogin(t *testing.T) {
	srv := newTestServer(t, testConfig())

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/wp-json/auth/token",
		strings.NewReader(`{"username":"admin","password":"demo-password"}`))
	req.Header.Set("Content-Type", "application/json")
	var tok map[string]any
	resp := getJSON(t, req, &tok)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := tok["token"].(string)
	require.NotEmpty(t, token)

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/wp-json/wp/site?context=edit", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	var site map[string]any
	resp = getJSON(t, req, &site)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, site, "email")

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/wp-json/wp/site?context=edit", nil)
	resp = getJSON(t, req, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServeWithObjectCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Cache = config.CacheConfig{RedisAddr: mr.Addr(), TTLSeconds: 60}
	srv := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/wp-json/wp/taxonomies/category/terms", nil)
		var terms []map[string]any
		resp := getJSON(t, req, &terms)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, terms, 1)
		assert.Equal(t, "uncategorized", terms[0]["slug"])
	}
	assert.NotEmpty(t, mr.Keys())
}

func TestNewApplicationRejectsUnreachableRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig()
	cfg.Cache = config.CacheConfig{RedisAddr: addr, TTLSeconds: 60}
	app, err := newApplication(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer app.cleanup()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")
}
