package rest

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestParamPrecedence(t *testing.T) {
	req := NewRequest("get", "/wp/posts/5").
		SetQuery(url.Values{"id": {"6"}, "tags": {"1", "2"}, "categories[]": {"3"}, "search": {"go"}}).
		SetBody(map[string]any{"id": float64(7), "title": "Body"})
	req = req.withRoute(`/wp/posts/(?P<id>\d+)`, map[string]string{"id": "5"})

	assert.Equal(t, "GET", req.Method())
	v, _ := req.Param("id")
	assert.Equal(t, "5", v)
	v, _ = req.Param("tags")
	assert.Equal(t, []string{"1", "2"}, v)
	v, _ = req.Param("categories")
	assert.Equal(t, []string{"3"}, v)
	v, _ = req.Param("title")
	assert.Equal(t, "Body", v)
	_, ok := req.Param("missing")
	assert.False(t, ok)
}

func TestRequestCopiesAreIndependent(t *testing.T) {
	q := url.Values{"page": {"1"}}
	req := NewRequest("GET", "/wp/posts").SetQuery(q)
	q.Set("page", "9")
	assert.Equal(t, "1", req.Query().Get("page"))

	routed := req.withRoute("/wp/posts", map[string]string{})
	routed.query.Set("page", "2")
	assert.Equal(t, "1", req.Query().Get("page"))
	assert.Equal(t, "", req.Route())
	assert.Equal(t, "/wp/posts", routed.Route())
}

func TestDecode(t *testing.T) {
	type listQuery struct {
		Page    int      `query:"page"`
		Search  string   `query:"search"`
		Authors []int64  `query:"author"`
		Order   string   `query:"order"`
		Include []string `query:"include"`
	}

	var fromQuery listQuery
	req := NewRequest("GET", "/wp/posts").SetQuery(url.Values{"page": {"2"}, "search": {"go"}, "author": {"1", "4"}, "unknown": {"x"}})
	require.NoError(t, req.Decode(&fromQuery))
	assert.Equal(t, listQuery{Page: 2, Search: "go", Authors: []int64{1, 4}}, fromQuery)

	var fromArgs listQuery
	args := Args{"page": int64(3), "order": "asc", "author": []any{int64(9)}, "include": []any{"a", "b"}, "meta": map[string]any{}}
	require.NoError(t, args.Decode(&fromArgs))
	assert.Equal(t, listQuery{Page: 3, Order: "asc", Authors: []int64{9}, Include: []string{"a", "b"}}, fromArgs)
}

func TestArgsAccessors(t *testing.T) {
	args := Args{"id": int64(4), "sticky": true, "title": "x", "tags": []any{int64(1), "2"}, "one": "5"}
	assert.Equal(t, int64(4), args.Int("id"))
	assert.True(t, args.Bool("sticky"))
	assert.Equal(t, "x", args.String("title"))
	assert.Equal(t, []int64{1, 2}, args.Ints("tags"))
	assert.Equal(t, []string{"1", "2"}, args.Strings("tags"))
	assert.Equal(t, []int64{5}, args.Ints("one"))
	assert.Nil(t, args.Ints("none"))
	assert.False(t, args.Has("none"))
}
