package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/press-api/internal/domain"
	"github.com/phrazzld/press-api/internal/schema"
	"github.com/phrazzld/press-api/internal/store"
)

// Error codes produced by the dispatcher and shared by controllers.
const (
	CodeNoRoute            = "no_route"
	CodeMethodNotAllowed   = "method_not_allowed"
	CodeInvalidParam       = schema.CodeInvalidParam
	CodeInvalidEmail       = schema.CodeInvalidEmail
	CodeInvalidDate        = schema.CodeInvalidDate
	CodeMissingParam       = "missing_callback_param"
	CodeInvalidJSON        = "invalid_json"
	CodeInvalidAuth        = "invalid_auth"
	CodeInvalidCredentials = "invalid_credentials"
	CodeCannotView         = "cannot_view"
	CodeCannotCreate       = "cannot_create"
	CodeCannotEdit         = "cannot_edit"
	CodeCannotDelete       = "cannot_delete"
	CodeCannotPublish      = "cannot_publish"
	CodeCannotEditOthers   = "cannot_edit_others"
	CodeForbidden          = "forbidden"
	CodeDuplicate          = "duplicate"
	CodeAlreadyTrashed     = "already_trashed"
	CodeTrashNotSupported  = "trash_not_supported"
	CodeRequestCanceled    = "request_canceled"
	CodeInternal           = "internal_error"
)

var codeStatus = map[string]int{
	CodeNoRoute:            http.StatusNotFound,
	CodeMethodNotAllowed:   http.StatusMethodNotAllowed,
	CodeInvalidParam:       http.StatusBadRequest,
	CodeInvalidEmail:       http.StatusBadRequest,
	CodeInvalidDate:        http.StatusBadRequest,
	CodeMissingParam:       http.StatusBadRequest,
	CodeInvalidJSON:        http.StatusBadRequest,
	CodeInvalidAuth:        http.StatusUnauthorized,
	CodeInvalidCredentials: http.StatusUnauthorized,
	CodeDuplicate:          http.StatusConflict,
	CodeAlreadyTrashed:     http.StatusGone,
	CodeTrashNotSupported:  http.StatusNotImplemented,
	CodeRequestCanceled:    499,
	CodeInternal:           http.StatusInternalServerError,
}

// StatusForCode returns the default HTTP status of an error code, or 0 when
// the code has none. cannot_* codes are 403 and *_invalid / *_invalid_<key>
// codes are 404.
func StatusForCode(code string) int {
	if s, ok := codeStatus[code]; ok {
		return s
	}
	switch {
	case code == CodeForbidden || strings.HasPrefix(code, "cannot_"):
		return http.StatusForbidden
	case strings.HasSuffix(code, "_invalid") || strings.Contains(code, "_invalid_"):
		return http.StatusNotFound
	}
	return 0
}

// Error is the error variant of a handler outcome. It serializes as
// {"code", "message", "data": {"status", ...}}. The cause is only logged.
type Error struct {
	Code    string
	Message string
	Data    map[string]any
	cause   error
}

// NewError creates an error whose status is the code's default, if it has one.
func NewError(code, message string) *Error {
	e := &Error{Code: code, Message: message, Data: map[string]any{}}
	if s := StatusForCode(code); s != 0 {
		e.Data["status"] = s
	}
	return e
}

// Errorf creates an error with an explicit status and a formatted message.
func Errorf(code string, status int, format string, args ...any) *Error {
	return NewError(code, fmt.Sprintf(format, args...)).WithStatus(status)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.cause }

// Status returns data.status, or 0 when the error carries none.
func (e *Error) Status() int {
	switch s := e.Data["status"].(type) {
	case int:
		return s
	case float64:
		return int(s)
	}
	return 0
}

// WithStatus returns a copy with data.status set.
func (e *Error) WithStatus(status int) *Error {
	return e.WithData("status", status)
}

// WithData returns a copy with one data key set.
func (e *Error) WithData(key string, value any) *Error {
	c := e.copy()
	c.Data[key] = value
	return c
}

// WithCause returns a copy wrapping err for logs.
func (e *Error) WithCause(err error) *Error {
	c := e.copy()
	c.cause = err
	return c
}

func (e *Error) copy() *Error {
	data := make(map[string]any, len(e.Data)+1)
	for k, v := range e.Data {
		data[k] = v
	}
	return &Error{Code: e.Code, Message: e.Message, Data: data, cause: e.cause}
}

// Response converts the error to a response. Errors without a status are 500s.
func (e *Error) Response() *Response {
	status := e.Status()
	if status < 100 || status > 599 {
		status = http.StatusInternalServerError
		e = e.WithStatus(status)
	}
	return NewResponse(status, e)
}

// MarshalJSON implements json.Marshaler.
func (e *Error) MarshalJSON() ([]byte, error) {
	data := e.Data
	if data == nil {
		data = map[string]any{}
	}
	return json.Marshal(struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Data    map[string]any `json:"data"`
	}{e.Code, e.Message, data})
}

// ResponseError extracts the error carried by an error response. It returns
// nil for successful responses.
func ResponseError(r *Response) *Error {
	if r == nil || !r.IsError() {
		return nil
	}
	switch d := r.Data.(type) {
	case *Error:
		return d
	case map[string]any:
		code, _ := d["code"].(string)
		msg, _ := d["message"].(string)
		e := NewError(code, msg)
		if data, ok := d["data"].(map[string]any); ok {
			for k, v := range data {
				e.Data[k] = v
			}
		}
		return e.WithStatus(r.Status)
	}
	return NewError(CodeInternal, http.StatusText(r.Status)).WithStatus(r.Status)
}

// FromError converts any error into a REST error. Validation and store
// sentinels keep their meaning; anything else becomes an internal error whose
// message never exposes the cause.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}

	var restErr *Error
	if errors.As(err, &restErr) {
		return restErr
	}

	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		return NewError(verr.Code, verr.Message).
			WithStatus(http.StatusBadRequest).
			WithData("params", map[string]string{verr.Param: verr.Message})
	}

	var derr *domain.ValidationError
	if errors.As(err, &derr) {
		return NewError(CodeInvalidParam, derr.Error()).
			WithStatus(http.StatusBadRequest).
			WithData("params", map[string]string{derr.Field: derr.Message})
	}

	switch {
	case errors.Is(err, context.Canceled):
		return NewError(CodeRequestCanceled, "The request was canceled.").WithCause(err)
	case store.IsNotFoundError(err):
		return NewError("not_found", "The requested resource was not found.").
			WithStatus(http.StatusNotFound).WithCause(err)
	case store.IsDuplicateError(err):
		return NewError(CodeDuplicate, "The resource already exists.").WithCause(err)
	case errors.Is(err, store.ErrInvalidEntity), errors.Is(err, domain.ErrValidation):
		return NewError(CodeInvalidParam, "The resource is invalid.").
			WithStatus(http.StatusBadRequest).WithCause(err)
	}
	return NewError(CodeInternal, "An unexpected error occurred.").WithCause(err)
}
