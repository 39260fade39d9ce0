package rest

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/schema"
)

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.SetAliasTag("query")
	return d
}

// Request is an inbound REST request. Setters are meant for construction; once
// handed to Server.Dispatch the request is treated as read-only and the
// dispatcher works on copies.
type Request struct {
	method  string
	path    string
	route   string
	params  map[string]string
	query   url.Values
	body    map[string]any
	headers http.Header
	cookies []*http.Cookie
}

// NewRequest creates a request for method and a route path such as /wp/posts/1.
func NewRequest(method, path string) *Request {
	if path == "" {
		path = "/"
	}
	return &Request{
		method:  strings.ToUpper(method),
		path:    path,
		params:  map[string]string{},
		query:   url.Values{},
		body:    map[string]any{},
		headers: http.Header{},
	}
}

// Method returns the HTTP method.
func (r *Request) Method() string { return r.method }

// Path returns the route path, without the mount prefix.
func (r *Request) Path() string { return r.path }

// Route returns the pattern the request matched, or "" before matching.
func (r *Request) Route() string { return r.route }

// SetQuery replaces the query parameters.
func (r *Request) SetQuery(q url.Values) *Request {
	r.query = cloneValues(q)
	return r
}

// SetQueryParam sets a single query parameter.
func (r *Request) SetQueryParam(name, value string) *Request {
	r.query.Set(name, value)
	return r
}

// SetBody replaces the body parameters.
func (r *Request) SetBody(body map[string]any) *Request {
	r.body = make(map[string]any, len(body))
	for k, v := range body {
		r.body[k] = v
	}
	return r
}

// SetBodyParam sets a single body parameter.
func (r *Request) SetBodyParam(name string, value any) *Request {
	r.body[name] = value
	return r
}

// SetHeader sets a request header.
func (r *Request) SetHeader(name, value string) *Request {
	r.headers.Set(name, value)
	return r
}

// AddCookie attaches a cookie.
func (r *Request) AddCookie(c *http.Cookie) *Request {
	r.cookies = append(r.cookies, c)
	return r
}

// Header returns the first value of a request header.
func (r *Request) Header(name string) string { return r.headers.Get(name) }

// Headers returns a copy of the request headers.
func (r *Request) Headers() http.Header { return r.headers.Clone() }

// Cookies returns the request cookies.
func (r *Request) Cookies() []*http.Cookie {
	return append([]*http.Cookie(nil), r.cookies...)
}

// URLParam returns a named capture of the matched route.
func (r *Request) URLParam(name string) string { return r.params[name] }

// Query returns a copy of the query parameters.
func (r *Request) Query() url.Values { return cloneValues(r.query) }

// Body returns a copy of the body parameters.
func (r *Request) Body() map[string]any {
	out := make(map[string]any, len(r.body))
	for k, v := range r.body {
		out[k] = v
	}
	return out
}

// Param looks a parameter up in the route captures, then the query string,
// then the body. Repeated query keys and keys written as name[] yield a []string.
func (r *Request) Param(name string) (any, bool) {
	if v, ok := r.params[name]; ok {
		return v, true
	}
	if vs, ok := r.query[name+"[]"]; ok {
		return append([]string(nil), vs...), true
	}
	if vs, ok := r.query[name]; ok && len(vs) > 0 {
		if len(vs) == 1 {
			return vs[0], true
		}
		return append([]string(nil), vs...), true
	}
	if v, ok := r.body[name]; ok {
		return v, true
	}
	return nil, false
}

// HasParam reports whether Param would find name.
func (r *Request) HasParam(name string) bool {
	_, ok := r.Param(name)
	return ok
}

// Decode fills dst, a pointer to a struct tagged with `query:"name"`, from the
// query string.
func (r *Request) Decode(dst any) error {
	return queryDecoder.Decode(dst, r.query)
}

// clone returns a copy that can be mutated without touching r.
func (r *Request) clone() *Request {
	c := *r
	c.params = make(map[string]string, len(r.params))
	for k, v := range r.params {
		c.params[k] = v
	}
	c.query = cloneValues(r.query)
	c.body = r.Body()
	c.headers = r.headers.Clone()
	c.cookies = r.Cookies()
	return &c
}

func (r *Request) withMethod(method string) *Request {
	c := r.clone()
	c.method = strings.ToUpper(method)
	return c
}

func (r *Request) withRoute(pattern string, params map[string]string) *Request {
	c := r.clone()
	c.route = pattern
	c.params = params
	return c
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
