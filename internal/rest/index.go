package rest

import (
	"net/http"
	"strings"
)

// index serves the API root and namespace documents for GET requests that did
// not match a route. It returns nil when the path is neither.
func (s *Server) index(req *Request) *Response {
	if req.Method() != http.MethodGet && req.Method() != http.MethodHead {
		return nil
	}
	path := strings.Trim(req.Path(), "/")
	if path == "" {
		return NewResponse(http.StatusOK, map[string]any{
			"url":        s.baseURL,
			"namespaces": s.registry.Namespaces(),
			"routes":     s.describeRoutes(""),
		})
	}
	for _, ns := range s.registry.Namespaces() {
		if ns == path {
			return NewResponse(http.StatusOK, map[string]any{
				"namespace": ns,
				"routes":    s.describeRoutes(ns),
			})
		}
	}
	return nil
}

func (s *Server) describeRoutes(namespace string) map[string]any {
	routes := map[string]any{}
	for _, e := range s.registry.Entries() {
		if namespace != "" && e.Namespace != namespace {
			continue
		}
		doc := describeRoute(e.Namespace, e.Methods, e.Bindings)
		if !strings.Contains(e.Pattern, "(?P<") {
			doc["_links"] = map[string]any{"self": s.URL(e.Pattern)}
		}
		routes[e.Pattern] = doc
	}
	return routes
}
