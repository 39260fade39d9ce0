package rest

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/phrazzld/press-api/internal/platform/logger"
)

const contentTypeJSON = "application/json; charset=UTF-8"

// ServeHTTP adapts the dispatcher to net/http. The route path is the URL path
// below the mount prefix, or the rest_route query parameter when present.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, restErr := s.FromHTTP(w, r)
	var resp *Response
	if restErr != nil {
		resp = restErr.Response()
	} else {
		resp = s.Dispatch(r.Context(), req)
	}

	resp, body := s.encode(r, resp)
	if r.URL.Query().Has("_envelope") {
		resp, body = s.encode(r, envelope(resp))
	}
	s.write(w, r, resp, body)
}

// FromHTTP builds a Request from an HTTP request, parsing JSON and form bodies.
func (s *Server) FromHTTP(w http.ResponseWriter, r *http.Request) (*Request, *Error) {
	query := r.URL.Query()
	path := strings.TrimPrefix(r.URL.Path, s.mount)
	if rr := query.Get("rest_route"); rr != "" {
		path = rr
	}
	query.Del("rest_route")
	if path == "" {
		path = "/"
	}

	req := NewRequest(r.Method, path).SetQuery(query)
	req.headers = r.Header.Clone()
	req.cookies = r.Cookies()

	if r.Body == nil || r.Method == http.MethodGet || r.Method == http.MethodHead {
		return req, nil
	}
	if s.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		body, err := decodeJSONBody(r.Body)
		if err != nil {
			return nil, err
		}
		req.body = body
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(s.maxBody); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return nil, NewError(CodeInvalidParam, "The request body could not be parsed.").WithCause(err)
		}
		for k, vs := range r.PostForm {
			if len(vs) == 1 {
				req.body[k] = vs[0]
			} else {
				req.body[k] = append([]string(nil), vs...)
			}
		}
	}
	return req, nil
}

func decodeJSONBody(body io.Reader) (map[string]any, *Error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, Errorf(CodeInvalidParam, http.StatusRequestEntityTooLarge,
				"The request body exceeds %d bytes.", tooLarge.Limit)
		}
		return nil, NewError(CodeInvalidJSON, "The request body could not be read.").WithCause(err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return map[string]any{}, nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, NewError(CodeInvalidJSON, "Invalid JSON body passed.").
			WithData("json_error_message", err.Error())
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// envelope folds status and headers into the body of a 200 response.
func envelope(resp *Response) *Response {
	headers := map[string]string{}
	for k, vs := range resp.Header {
		headers[k] = strings.Join(vs, ", ")
	}
	return NewResponse(http.StatusOK, map[string]any{
		"body":    resp.Data,
		"status":  resp.Status,
		"headers": headers,
	})
}

// encode serializes resp.Data. A payload that cannot be encoded is replaced by
// a generic internal_error response, which is what the client then sees.
func (s *Server) encode(r *http.Request, resp *Response) (*Response, []byte) {
	if resp.Data == nil && resp.Status == http.StatusNoContent {
		return resp, nil
	}
	body, err := json.Marshal(resp.Data)
	if err != nil {
		logger.FromContextOrDefault(r.Context(), s.logger).Error("failed to encode response",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		resp = NewError(CodeInternal, "The response could not be encoded.").Response()
		body, _ = json.Marshal(resp.Data)
	}
	return resp, body
}

func (s *Server) write(w http.ResponseWriter, r *http.Request, resp *Response, body []byte) {
	h := w.Header()
	for k, vs := range resp.Header {
		for _, v := range vs {
			h.Add(k, v)
		}
	}
	h.Set("Content-Type", contentTypeJSON)
	h.Set("X-Content-Type-Options", "nosniff")

	w.WriteHeader(resp.Status)
	if r.Method == http.MethodHead || resp.Status == http.StatusNoContent {
		return
	}
	if _, err := w.Write(body); err != nil {
		s.logger.Debug("failed to write response", slog.String("error", err.Error()))
	}
}
