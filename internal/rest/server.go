package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sort"
	"strings"

	"github.com/phrazzld/press-api/internal/domain"
	"github.com/phrazzld/press-api/internal/platform/logger"
	"github.com/phrazzld/press-api/internal/redact"
	"github.com/phrazzld/press-api/internal/schema"
)

// Authenticator resolves request credentials to a principal. It returns
// (nil, nil) for anonymous requests and an error for invalid credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, header http.Header, cookies []*http.Cookie) (*domain.Principal, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, header http.Header, cookies []*http.Cookie) (*domain.Principal, error)

// Authenticate implements Authenticator.
func (f AuthenticatorFunc) Authenticate(
	ctx context.Context,
	header http.Header,
	cookies []*http.Cookie,
) (*domain.Principal, error) {
	return f(ctx, header, cookies)
}

type stage int

const (
	stageReceived stage = iota
	stageRouteMatched
	stageAuthenticated
	stageAuthorized
	stageArgsValidated
	stageHandlerInvoked
	stageResponseReady
)

func (s stage) String() string {
	switch s {
	case stageReceived:
		return "received"
	case stageRouteMatched:
		return "route_matched"
	case stageAuthenticated:
		return "authenticated"
	case stageAuthorized:
		return "authorized"
	case stageArgsValidated:
		return "args_validated"
	case stageHandlerInvoked:
		return "handler_invoked"
	case stageResponseReady:
		return "response_ready"
	}
	return "unknown"
}

// Server dispatches requests against a frozen registry.
type Server struct {
	registry *Registry
	auth     Authenticator
	logger   *slog.Logger
	baseURL  string
	mount    string
	maxBody  int64
}

// Option configures a Server.
type Option func(*Server)

// WithAuthenticator sets the authenticator. Without one every request is anonymous.
func WithAuthenticator(a Authenticator) Option {
	return func(s *Server) { s.auth = a }
}

// WithLogger sets the base logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithBaseURL sets the absolute URL of the API root, used in Link headers and _links.
func WithBaseURL(u string) Option {
	return func(s *Server) { s.baseURL = strings.TrimSuffix(u, "/") }
}

// WithMountPath sets the URL prefix ServeHTTP strips before matching.
func WithMountPath(p string) Option {
	return func(s *Server) { s.mount = strings.TrimSuffix(p, "/") }
}

// WithMaxBodyBytes limits request bodies read by ServeHTTP.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) { s.maxBody = n }
}

// NewServer creates a Server. The registry is frozen if it was not already.
func NewServer(reg *Registry, opts ...Option) *Server {
	reg.Freeze()
	s := &Server{
		registry: reg,
		logger:   slog.Default(),
		baseURL:  "http://localhost/wp-json",
		mount:    "/wp-json",
		maxBody:  1 << 20,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("component", "rest"))
	return s
}

// BaseURL returns the absolute URL of the API root.
func (s *Server) BaseURL() string { return s.baseURL }

// URL returns the absolute URL of a route path.
func (s *Server) URL(path string) string {
	return s.baseURL + "/" + strings.TrimLeft(path, "/")
}

// Dispatch runs req through routing, authentication, permission checks and
// argument validation, invokes the chosen handler and returns its response.
// It never panics and never returns nil.
func (s *Server) Dispatch(ctx context.Context, req *Request) *Response {
	resp := s.dispatch(ctx, req)
	if req.Query().Has("_embed") && !resp.IsError() {
		s.embed(ctx, req, resp)
	}
	return resp
}

func (s *Server) dispatch(ctx context.Context, req *Request) *Response {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("method", req.Method()),
		slog.String("path", req.Path()),
	)

	if override := methodOverride(req); override != "" {
		req = req.withMethod(override)
	}

	rt, params := s.registry.match(req.Path())
	if rt == nil {
		if resp := s.index(req); resp != nil {
			return resp
		}
		return s.fail(ctx, log, stageReceived, NewError(CodeNoRoute, "No route was found matching the URL and request method."))
	}
	req = req.withRoute(rt.pattern, params)
	log = log.With(slog.String("route", rt.pattern))

	method := req.Method()
	if method == http.MethodHead {
		method = http.MethodGet
	}
	if method == http.MethodOptions {
		return s.options(rt)
	}
	bindings, ok := rt.bindings[method]
	if !ok {
		resp := s.fail(ctx, log, stageRouteMatched, NewError(CodeMethodNotAllowed, "No route was found matching the URL and request method."))
		resp.Header.Set("Allow", strings.Join(rt.methods, ", "))
		return resp
	}

	principal, restErr := s.authenticate(ctx, req)
	if restErr != nil {
		return s.fail(ctx, log, stageRouteMatched, restErr)
	}
	if principal != nil {
		log = log.With(slog.Int64("user_id", principal.UserID))
	}

	binding, restErr := s.choose(ctx, req, principal, bindings)
	if restErr != nil {
		return s.fail(ctx, log, stageAuthenticated, restErr)
	}

	args, restErr := s.arguments(req, binding.Args)
	if restErr != nil {
		return s.fail(ctx, log, stageAuthorized, restErr)
	}

	log.Debug("invoking handler", slog.String("stage", stageArgsValidated.String()))
	resp := s.invoke(ctx, log, binding, &Call{Request: req, Args: args, Principal: principal})
	if resp.IsError() {
		s.logError(ctx, log, stageHandlerInvoked, ResponseError(resp))
	}

	s.paginate(req, resp)
	log.Debug("response ready",
		slog.String("stage", stageResponseReady.String()),
		slog.Int("status", resp.Status))
	return resp
}

func methodOverride(req *Request) string {
	if req.Method() != http.MethodPost {
		return ""
	}
	if m := req.Query().Get("_method"); m != "" {
		return strings.ToUpper(m)
	}
	return strings.ToUpper(req.Header("X-HTTP-Method-Override"))
}

func (s *Server) authenticate(ctx context.Context, req *Request) (*domain.Principal, *Error) {
	if s.auth == nil {
		return nil, nil
	}
	principal, err := s.auth.Authenticate(ctx, req.headers, req.cookies)
	if err == nil {
		return principal, nil
	}
	var restErr *Error
	if errors.As(err, &restErr) {
		if restErr.Status() == 0 {
			restErr = restErr.WithStatus(http.StatusUnauthorized)
		}
		return nil, restErr
	}
	return nil, NewError(CodeInvalidAuth, "The provided credentials are invalid.").WithCause(err)
}

// choose returns the first binding whose permission check passes and whose
// required arguments are present, or the last error encountered.
func (s *Server) choose(
	ctx context.Context,
	req *Request,
	principal *domain.Principal,
	bindings []Binding,
) (Binding, *Error) {
	var last *Error
	for _, b := range bindings {
		if b.Permission != nil {
			if e := b.Permission(ctx, req, principal); e != nil {
				if e.Status() == 0 {
					e = e.WithStatus(http.StatusForbidden)
				}
				last = e
				continue
			}
		}
		if missing := missingArgs(req, b.Args); len(missing) > 0 {
			last = NewError(CodeMissingParam, "Missing parameter(s): "+strings.Join(missing, ", ")).
				WithData("params", missing)
			continue
		}
		return b, nil
	}
	return Binding{}, last
}

func missingArgs(req *Request, specs map[string]schema.ArgSpec) []string {
	var missing []string
	for _, name := range sortedArgNames(specs) {
		spec := specs[name]
		if spec.Required && spec.Default == nil && !req.HasParam(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// arguments validates then sanitizes each declared argument, in name order.
func (s *Server) arguments(req *Request, specs map[string]schema.ArgSpec) (Args, *Error) {
	args := make(Args, len(specs))
	for _, name := range sortedArgNames(specs) {
		spec := specs[name]
		value, ok := req.Param(name)
		if !ok {
			if spec.Default == nil {
				continue
			}
			value = spec.Default
		}
		if spec.Validate != nil {
			if err := spec.Validate(value, name); err != nil {
				return nil, paramError(name, err)
			}
		}
		if spec.Sanitize != nil {
			clean, err := spec.Sanitize(value, name)
			if err != nil {
				return nil, paramError(name, err)
			}
			value = clean
		}
		args[name] = value
	}
	return args, nil
}

func paramError(name string, err error) *Error {
	e := FromError(err)
	if e.Code == CodeInternal {
		e = NewError(CodeInvalidParam, fmt.Sprintf("Invalid parameter: %s.", name)).
			WithData("params", map[string]string{name: err.Error()}).
			WithCause(err)
	}
	if e.Status() == 0 || e.Status() >= http.StatusInternalServerError {
		e = e.WithStatus(http.StatusBadRequest)
	}
	return e
}

func sortedArgNames(specs map[string]schema.ArgSpec) []string {
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// invoke calls the handler and normalizes its outcome. Panics become 500s.
func (s *Server) invoke(ctx context.Context, log *slog.Logger, b Binding, call *Call) (resp *Response) {
	defer func() {
		if p := recover(); p != nil {
			log.Error("handler panicked",
				slog.Any("panic", p),
				slog.String("stack", string(debug.Stack())))
			resp = NewError(CodeInternal, "An unexpected error occurred.").Response()
		}
	}()
	return normalize(b.Handler(ctx, call))
}

func normalize(o Outcome) *Response {
	switch v := o.(type) {
	case *Response:
		if v == nil {
			return NewResponse(http.StatusNoContent, nil)
		}
		if v.Header == nil {
			v.Header = http.Header{}
		}
		if v.Status == 0 {
			v.Status = http.StatusOK
		}
		return v
	case *Error:
		if v == nil {
			return NewResponse(http.StatusOK, nil)
		}
		return v.Response()
	case Success:
		return NewResponse(http.StatusOK, v.Value)
	case nil:
		return NewResponse(http.StatusOK, nil)
	default:
		return NewError(CodeInternal, "An unexpected error occurred.").Response()
	}
}

func (s *Server) fail(ctx context.Context, log *slog.Logger, at stage, e *Error) *Response {
	s.logError(ctx, log, at, e)
	return e.Response()
}

func (s *Server) logError(ctx context.Context, log *slog.Logger, at stage, e *Error) {
	if e == nil {
		return
	}
	attrs := []slog.Attr{
		slog.String("stage", at.String()),
		slog.String("code", e.Code),
		slog.Int("status", e.Status()),
	}
	if cause := e.Unwrap(); cause != nil {
		attrs = append(attrs, slog.String("error", redact.Error(cause)))
	}
	level := slog.LevelDebug
	if e.Status() == 0 || e.Status() >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	log.LogAttrs(ctx, level, "request failed", attrs...)
}

// options describes a route: its methods, their arguments and the resource schema.
func (s *Server) options(rt *route) *Response {
	data := describeRoute(rt.namespace, rt.methods, rt.bindings)
	for _, m := range rt.methods {
		for _, b := range rt.bindings[m] {
			if b.Schema != nil {
				data["schema"] = b.Schema()
				break
			}
		}
		if _, ok := data["schema"]; ok {
			break
		}
	}
	resp := NewResponse(http.StatusOK, data)
	resp.Header.Set("Allow", strings.Join(rt.methods, ", "))
	return resp
}

func describeRoute(namespace string, methods []string, bindings map[string][]Binding) map[string]any {
	var endpoints []map[string]any
	for _, m := range methods {
		for _, b := range bindings[m] {
			endpoints = append(endpoints, map[string]any{
				"methods": []string{m},
				"args":    schema.ArgsJSON(b.Args),
			})
		}
	}
	return map[string]any{
		"namespace": namespace,
		"methods":   append([]string(nil), methods...),
		"endpoints": endpoints,
	}
}
