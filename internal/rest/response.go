package rest

import "net/http"

// Response is the outcome of a dispatched request.
type Response struct {
	Status int
	Data   any
	Header http.Header

	page *pagination
}

type pagination struct {
	total      int
	totalPages int
	page       int
}

// NewResponse creates a response with an empty header set.
func NewResponse(status int, data any) *Response {
	return &Response{Status: status, Data: data, Header: http.Header{}}
}

// IsError reports whether the status is 400 or above.
func (r *Response) IsError() bool {
	return r.Status >= http.StatusBadRequest
}

// Paginate marks the response as one page of a collection. The dispatcher turns
// it into X-WP-Total, X-WP-TotalPages and Link headers.
func (r *Response) Paginate(total, perPage, page int) *Response {
	pages := 0
	if perPage > 0 {
		pages = (total + perPage - 1) / perPage
	}
	r.page = &pagination{total: total, totalPages: pages, page: page}
	return r
}

// Outcome is what a handler returns: a *Response, an *Error or a Success.
type Outcome interface {
	outcome()
}

// Success wraps a plain value, served as a 200 response.
type Success struct {
	Value any
}

// OK wraps v as a successful outcome.
func OK(v any) Success { return Success{Value: v} }

func (*Response) outcome() {}
func (*Error) outcome()    {}
func (Success) outcome()   {}

// Link is one entry of a resource's _links map.
type Link struct {
	Href       string `json:"href"`
	Embeddable bool   `json:"embeddable,omitempty"`
	Taxonomy   string `json:"taxonomy,omitempty"`
	Name       string `json:"name,omitempty"`
	Templated  bool   `json:"templated,omitempty"`
}

// Links maps a relation to its links.
type Links map[string][]Link

// Add appends a link under rel.
func (l Links) Add(rel string, link Link) {
	l[rel] = append(l[rel], link)
}
