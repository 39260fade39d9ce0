package rest

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/phrazzld/press-api/internal/schema"
)

var (
	// ErrRegistryFrozen is returned when registering after the registry was frozen.
	ErrRegistryFrozen = errors.New("route registry is frozen")

	// ErrInvalidRoute is returned for malformed registrations.
	ErrInvalidRoute = errors.New("invalid route")
)

var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// Editable is the method set of update endpoints.
var Editable = []string{http.MethodPost, http.MethodPut, http.MethodPatch}

// Binding is one candidate handler for a route and method.
type Binding struct {
	Handler    Handler
	Permission PermissionFunc
	Args       map[string]schema.ArgSpec
	// Schema describes the resource, for OPTIONS responses.
	Schema func() *schema.Schema
}

type route struct {
	pattern   string
	namespace string
	re        *regexp.Regexp
	captures  int
	methods   []string
	bindings  map[string][]Binding
}

// RouteEntry is a read-only view of a registered route.
type RouteEntry struct {
	Pattern   string
	Namespace string
	Methods   []string
	Bindings  map[string][]Binding
}

// Registry maps path patterns and methods to bindings.
type Registry struct {
	routes     []*route
	byPattern  map[string]*route
	namespaces []string
	frozen     bool
}

// NewRegistry returns an empty, unfrozen registry.
func NewRegistry() *Registry {
	return &Registry{byPattern: map[string]*route{}}
}

// Register appends a binding for method on namespace+route. The route is a
// regular expression that may use named captures, e.g. /posts/(?P<id>[\d]+).
func (r *Registry) Register(namespace, pattern, method string, b Binding) error {
	if r.frozen {
		return ErrRegistryFrozen
	}
	method = strings.ToUpper(method)
	if !allowedMethods[method] {
		return fmt.Errorf("%w: unsupported method %q", ErrInvalidRoute, method)
	}
	if b.Handler == nil {
		return fmt.Errorf("%w: %s %s has no handler", ErrInvalidRoute, method, pattern)
	}
	namespace = strings.Trim(namespace, "/")
	if namespace == "" {
		return fmt.Errorf("%w: namespace is required", ErrInvalidRoute)
	}

	full := "/" + namespace + "/" + strings.TrimLeft(pattern, "/")
	full = strings.TrimSuffix(full, "/")

	rt, ok := r.byPattern[full]
	if !ok {
		re, err := regexp.Compile("^" + full + "$")
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidRoute, full, err)
		}
		captures := 0
		for _, name := range re.SubexpNames() {
			if name != "" {
				captures++
			}
		}
		rt = &route{
			pattern:   full,
			namespace: namespace,
			re:        re,
			captures:  captures,
			bindings:  map[string][]Binding{},
		}
		r.routes = append(r.routes, rt)
		r.byPattern[full] = rt
		r.addNamespace(namespace)
	}
	if _, seen := rt.bindings[method]; !seen {
		rt.methods = append(rt.methods, method)
	}
	rt.bindings[method] = append(rt.bindings[method], b)
	return nil
}

// Handle registers the binding for every method in methods.
func (r *Registry) Handle(namespace, pattern string, methods []string, b Binding) error {
	for _, m := range methods {
		if err := r.Register(namespace, pattern, m, b); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) addNamespace(ns string) {
	for _, existing := range r.namespaces {
		if existing == ns {
			return
		}
	}
	r.namespaces = append(r.namespaces, ns)
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() { r.frozen = true }

// Frozen reports whether Freeze was called.
func (r *Registry) Frozen() bool { return r.frozen }

// Namespaces returns the namespaces in registration order.
func (r *Registry) Namespaces() []string {
	return append([]string(nil), r.namespaces...)
}

// Routes returns a snapshot of pattern -> method -> bindings.
func (r *Registry) Routes() map[string]map[string][]Binding {
	out := make(map[string]map[string][]Binding, len(r.routes))
	for _, rt := range r.routes {
		out[rt.pattern] = rt.snapshot()
	}
	return out
}

// Entries returns the routes in registration order.
func (r *Registry) Entries() []RouteEntry {
	out := make([]RouteEntry, 0, len(r.routes))
	for _, rt := range r.routes {
		out = append(out, RouteEntry{
			Pattern:   rt.pattern,
			Namespace: rt.namespace,
			Methods:   append([]string(nil), rt.methods...),
			Bindings:  rt.snapshot(),
		})
	}
	return out
}

func (rt *route) snapshot() map[string][]Binding {
	m := make(map[string][]Binding, len(rt.bindings))
	for method, bs := range rt.bindings {
		m[method] = append([]Binding(nil), bs...)
	}
	return m
}

// match finds the route for path. Among matching patterns the one with the
// fewest named captures wins, so literal routes beat parameterized ones; ties
// go to the earliest registration.
func (r *Registry) match(path string) (*route, map[string]string) {
	var best *route
	var bestParams []string
	for _, rt := range r.routes {
		m := rt.re.FindStringSubmatch(path)
		if m == nil {
			continue
		}
		if best == nil || rt.captures < best.captures {
			best, bestParams = rt, m
		}
	}
	if best == nil {
		return nil, nil
	}
	params := map[string]string{}
	for i, name := range best.re.SubexpNames() {
		if name != "" && i < len(bestParams) {
			params[name] = bestParams[i]
		}
	}
	return best, params
}

// Registrar contributes routes during startup.
type Registrar struct {
	Name     string
	Priority int
	Register func(r *Registry) error
}

// Build runs the registrars in ascending priority (registration order breaks
// ties) against a fresh registry and freezes it.
func Build(registrars ...Registrar) (*Registry, error) {
	sorted := append([]Registrar(nil), registrars...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})

	reg := NewRegistry()
	for _, rr := range sorted {
		if rr.Register == nil {
			continue
		}
		if err := rr.Register(reg); err != nil {
			return nil, fmt.Errorf("registrar %s: %w", rr.Name, err)
		}
	}
	reg.Freeze()
	return reg, nil
}
