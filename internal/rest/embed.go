package rest

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// embed resolves the embeddable _links of the response data by dispatching
// internal GET requests in embed context, and stores the results under
// _embedded. Errors are embedded as error objects.
func (s *Server) embed(ctx context.Context, req *Request, resp *Response) {
	rels := embedFilter(req.Query().Get("_embed"))
	cache := map[string]any{}

	switch data := resp.Data.(type) {
	case map[string]any:
		resp.Data = s.embedItem(ctx, req, data, rels, cache)
	case []map[string]any:
		out := make([]map[string]any, len(data))
		for i, item := range data {
			out[i] = s.embedItem(ctx, req, item, rels, cache)
		}
		resp.Data = out
	case []any:
		out := make([]any, len(data))
		for i, item := range data {
			if m, ok := item.(map[string]any); ok {
				out[i] = s.embedItem(ctx, req, m, rels, cache)
				continue
			}
			out[i] = item
		}
		resp.Data = out
	}
}

func embedFilter(v string) map[string]bool {
	switch v {
	case "", "1", "true":
		return nil
	}
	rels := map[string]bool{}
	for _, r := range strings.Split(v, ",") {
		if r = strings.TrimSpace(r); r != "" {
			rels[r] = true
		}
	}
	return rels
}

func (s *Server) embedItem(
	ctx context.Context,
	parent *Request,
	item map[string]any,
	rels map[string]bool,
	cache map[string]any,
) map[string]any {
	links, ok := item["_links"].(Links)
	if !ok || len(links) == 0 {
		return item
	}

	embedded := map[string]any{}
	for rel, list := range links {
		if rels != nil && !rels[rel] {
			continue
		}
		var results []any
		for _, l := range list {
			if !l.Embeddable {
				continue
			}
			if cached, hit := cache[l.Href]; hit {
				results = append(results, cached)
				continue
			}
			result := s.fetchEmbedded(ctx, parent, l.Href)
			cache[l.Href] = result
			results = append(results, result)
		}
		if len(results) > 0 {
			embedded[rel] = results
		}
	}
	if len(embedded) == 0 {
		return item
	}

	out := make(map[string]any, len(item)+1)
	for k, v := range item {
		out[k] = v
	}
	out["_embedded"] = embedded
	return out
}

func (s *Server) fetchEmbedded(ctx context.Context, parent *Request, href string) any {
	path, rawQuery, ok := s.routePath(href)
	if !ok {
		return NewError(CodeNoRoute, "The embedded link points outside this API.").WithStatus(http.StatusNotFound)
	}
	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		q = url.Values{}
	}
	q.Set("context", "embed")

	sub := NewRequest(http.MethodGet, path).SetQuery(q)
	sub.headers = parent.headers.Clone()
	sub.cookies = parent.Cookies()

	resp := s.dispatch(ctx, sub)
	if e := ResponseError(resp); e != nil {
		return e
	}
	return resp.Data
}
