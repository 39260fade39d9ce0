package api

import (
	"net/http"
	"testing"

	"github.com/phrazzld/press-api/internal/rest"
	"github.com/phrazzld/press-api/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostTypesList(t *testing.T) {
	a := newTestAPI(t)

	t.Run("view lists public types", func(t *testing.T) {
		data := itemData(t, a.do(t, "", http.MethodGet, "/wp/types", nil))
		assert.Len(t, data, 3)
		assert.Contains(t, data, "post")
		assert.Contains(t, data, "page")
		assert.Contains(t, data, "attachment")
		assert.NotContains(t, data, "revision")

		post := data["post"].(map[string]any)
		assert.Equal(t, "post", post["slug"])
		assert.Equal(t, "posts", post["rest_base"])
		assert.NotContains(t, post, "capabilities")
		links := post["_links"].(rest.Links)
		require.Len(t, links["https://api.w.org/items"], 1)
		assert.Equal(t, testBase+"/wp/posts", links["https://api.w.org/items"][0].Href)
	})

	t.Run("edit context needs edit_posts", func(t *testing.T) {
		resp := a.do(t, "subscriber", http.MethodGet, "/wp/types", nil, "context", "edit")
		assert.Equal(t, http.StatusForbidden, resp.Status)
		assert.Equal(t, rest.CodeCannotView, errorCode(t, resp))

		resp = a.do(t, "", http.MethodGet, "/wp/types", nil, "context", "edit")
		assert.Equal(t, http.StatusUnauthorized, resp.Status)
	})

	t.Run("edit context lists every type", func(t *testing.T) {
		data := itemData(t, a.do(t, "contributor", http.MethodGet, "/wp/types", nil, "context", "edit"))
		assert.Len(t, data, 4)
		post := data["post"].(map[string]any)
		caps := post["capabilities"].(map[string]any)
		assert.Equal(t, "edit_posts", caps["edit_posts"])
	})
}

func TestPostTypeItem(t *testing.T) {
	a := newTestAPI(t)

	data := itemData(t, a.do(t, "", http.MethodGet, "/wp/types/page", nil))
	assert.Equal(t, "page", data["slug"])
	assert.Equal(t, true, data["hierarchical"])

	resp := a.do(t, "", http.MethodGet, "/wp/types/widget", nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, CodeTypeInvalid, errorCode(t, resp))

	resp = a.do(t, "", http.MethodGet, "/wp/types/revision", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	assert.Equal(t, rest.CodeCannotView, errorCode(t, resp))
}

func TestPostTypesSchemaRoute(t *testing.T) {
	a := newTestAPI(t)

	resp := a.do(t, "", http.MethodGet, "/wp/types/schema", nil)
	require.Equal(t, http.StatusOK, resp.Status)
	s, ok := resp.Data.(*schema.Schema)
	require.True(t, ok)
	assert.Equal(t, "type", s.Title)
}

func TestPostStatusesSchema(t *testing.T) {
	a := newTestAPI(t)

	resp := a.do(t, "", http.MethodGet, "/wp/statuses/schema", nil)
	require.Equal(t, http.StatusOK, resp.Status)
	s := resp.Data.(*schema.Schema)
	assert.Equal(t,
		[]string{"name", "private", "protected", "public", "queryable", "show_in_list", "slug"},
		s.Names())
}

func TestPostStatusesList(t *testing.T) {
	a := newTestAPI(t)

	tests := []struct {
		name string
		as   string
		want []string
	}{
		{"anonymous sees public", "", []string{"publish"}},
		{"subscriber sees public", "subscriber", []string{"publish"}},
		{"contributor sees listable", "contributor", []string{"publish", "future", "draft", "pending", "private", "trash"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := itemData(t, a.do(t, tt.as, http.MethodGet, "/wp/statuses", nil))
			assert.Len(t, data, len(tt.want))
			for _, name := range tt.want {
				assert.Contains(t, data, name)
			}
			assert.NotContains(t, data, "auto-draft")
			assert.NotContains(t, data, "inherit")
		})
	}
}

func TestPostStatusItem(t *testing.T) {
	a := newTestAPI(t)

	tests := []struct {
		name       string
		as         string
		status     string
		wantStatus int
		wantCode   string
	}{
		{"public", "", "publish", http.StatusOK, ""},
		{"draft anonymous", "", "draft", http.StatusUnauthorized, rest.CodeCannotView},
		{"draft subscriber", "subscriber", "draft", http.StatusForbidden, rest.CodeCannotView},
		{"draft contributor", "contributor", "draft", http.StatusOK, ""},
		{"internal", "administrator", "inherit", http.StatusNotFound, CodeStatusInvalid},
		{"unknown", "", "nope", http.StatusNotFound, CodeStatusInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := a.do(t, tt.as, http.MethodGet, "/wp/statuses/"+tt.status, nil)
			assert.Equal(t, tt.wantStatus, resp.Status)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(t, resp))
				return
			}
			data := itemData(t, resp)
			assert.Equal(t, tt.status, data["slug"])
		})
	}
}

func TestTaxonomiesList(t *testing.T) {
	a := newTestAPI(t)

	data := itemData(t, a.do(t, "", http.MethodGet, "/wp/taxonomies", nil))
	assert.Contains(t, data, "category")
	assert.Contains(t, data, "post_tag")

	category := data["category"].(map[string]any)
	assert.Equal(t, "categories", category["rest_base"])
	links := category["_links"].(rest.Links)
	require.Len(t, links["https://api.w.org/items"], 1)
	assert.Equal(t, testBase+"/wp/taxonomies/category/terms", links["https://api.w.org/items"][0].Href)

	format := data["post_format"].(map[string]any)
	assert.NotContains(t, format["_links"].(rest.Links), "https://api.w.org/items")

	t.Run("type filter", func(t *testing.T) {
		data := itemData(t, a.do(t, "", http.MethodGet, "/wp/taxonomies", nil, "type", "page"))
		assert.Empty(t, data)
	})

	t.Run("edit context needs manage_categories", func(t *testing.T) {
		resp := a.do(t, "author", http.MethodGet, "/wp/taxonomies", nil, "context", "edit")
		assert.Equal(t, http.StatusForbidden, resp.Status)

		data := itemData(t, a.do(t, "editor", http.MethodGet, "/wp/taxonomies", nil, "context", "edit"))
		assert.Contains(t, data["category"].(map[string]any), "capabilities")
	})
}

func TestTaxonomyItem(t *testing.T) {
	a := newTestAPI(t)

	data := itemData(t, a.do(t, "", http.MethodGet, "/wp/taxonomies/post_tag", nil))
	assert.Equal(t, "post_tag", data["slug"])
	assert.Equal(t, false, data["hierarchical"])

	resp := a.do(t, "", http.MethodGet, "/wp/taxonomies/genre", nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, CodeTaxonomyInvalid, errorCode(t, resp))
}

func TestMethodNotAllowedAdvertisesAllow(t *testing.T) {
	a := newTestAPI(t)

	resp := a.do(t, "administrator", http.MethodDelete, "/wp/site", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.Status)
	assert.Equal(t, "GET, POST, PUT, PATCH", resp.Header.Get("Allow"))
}
