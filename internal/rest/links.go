package rest

import (
	"fmt"
	"strconv"
	"strings"
)

// paginate writes the collection headers for paginated responses: totals and
// Link entries for the neighbouring pages.
func (s *Server) paginate(req *Request, resp *Response) {
	p := resp.page
	if p == nil || resp.IsError() {
		return
	}
	resp.Header.Set("X-WP-Total", strconv.Itoa(p.total))
	resp.Header.Set("X-WP-TotalPages", strconv.Itoa(p.totalPages))

	page := p.page
	if page < 1 {
		page = 1
	}
	if page > 1 && p.totalPages > 0 {
		prev := page - 1
		if prev > p.totalPages {
			prev = p.totalPages
		}
		resp.Header.Add("Link", linkValue(s.pageURL(req, prev), "prev"))
	}
	if page < p.totalPages {
		resp.Header.Add("Link", linkValue(s.pageURL(req, page+1), "next"))
	}
}

// pageURL rebuilds the request URL with a different page. Query keys are
// encoded in sorted order so the result is stable.
func (s *Server) pageURL(req *Request, page int) string {
	q := req.Query()
	q.Del("_method")
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u := s.URL(req.Path())
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

func linkValue(href, rel string) string {
	return fmt.Sprintf("<%s>; rel=%q", href, rel)
}

// routePath turns an absolute API URL into a route path, or reports false
// when the URL points outside this API.
func (s *Server) routePath(href string) (path, rawQuery string, ok bool) {
	if !strings.HasPrefix(href, s.baseURL) {
		return "", "", false
	}
	rest := strings.TrimPrefix(href, s.baseURL)
	if rest != "" && rest[0] != '/' && rest[0] != '?' {
		return "", "", false
	}
	path, rawQuery, _ = strings.Cut(rest, "?")
	if path == "" {
		path = "/"
	}
	return path, rawQuery, true
}
