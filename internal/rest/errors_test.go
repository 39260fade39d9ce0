package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/phrazzld/press-api/internal/domain"
	"github.com/phrazzld/press-api/internal/schema"
	"github.com/phrazzld/press-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusForCode(t *testing.T) {
	tests := map[string]int{
		CodeNoRoute:           404,
		CodeInvalidParam:      400,
		CodeInvalidEmail:      400,
		CodeInvalidDate:       400,
		CodeMissingParam:      400,
		CodeCannotView:        403,
		CodeCannotCreate:      403,
		CodeCannotEdit:        403,
		CodeCannotDelete:      403,
		"post_invalid_id":     404,
		"type_invalid":        404,
		"term_invalid_id":     404,
		CodeMethodNotAllowed:  405,
		CodeAlreadyTrashed:    410,
		CodeInternal:          500,
		CodeTrashNotSupported: 501,
		"something_else":      0,
	}
	for code, want := range tests {
		assert.Equal(t, want, StatusForCode(code), code)
	}
}

func TestErrorEnvelope(t *testing.T) {
	e := NewError("post_invalid_id", "Invalid post ID.").WithCause(errors.New("sql: no rows"))
	raw, err := json.Marshal(e.Response().Data)
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"post_invalid_id","message":"Invalid post ID.","data":{"status":404}}`, string(raw))
	assert.NotContains(t, string(raw), "sql")

	bare := &Error{Code: "x", Message: "y"}
	resp := bare.Response()
	assert.Equal(t, 500, resp.Status)
	assert.Equal(t, 500, ResponseError(resp).Status())
	assert.Equal(t, 0, bare.Status(), "the original is not mutated")
}

func TestResponseErrorFromMap(t *testing.T) {
	resp := NewResponse(http.StatusGone, map[string]any{
		"code":    CodeAlreadyTrashed,
		"message": "The post has already been deleted.",
		"data":    map[string]any{"status": float64(410)},
	})
	e := ResponseError(resp)
	require.NotNil(t, e)
	assert.Equal(t, CodeAlreadyTrashed, e.Code)
	assert.Equal(t, 410, e.Status())

	assert.Nil(t, ResponseError(NewResponse(200, nil)))
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"rest error", NewError(CodeCannotEdit, "no"), CodeCannotEdit, 403},
		{"wrapped rest error", fmt.Errorf("ctx: %w", NewError("type_invalid", "no")), "type_invalid", 404},
		{"schema validation", schema.ValidateProperty("d", "email", &schema.Property{Type: "string", Format: "email"}), CodeInvalidEmail, 400},
		{"domain validation", domain.NewValidationError("type", "cannot be empty", nil), CodeInvalidParam, 400},
		{"not found", fmt.Errorf("get: %w", store.ErrPostNotFound), "not_found", 404},
		{"duplicate", store.ErrSlugExists, CodeDuplicate, 409},
		{"invalid entity", fmt.Errorf("%w: bad", store.ErrInvalidEntity), CodeInvalidParam, 400},
		{"canceled", context.Canceled, CodeRequestCanceled, 499},
		{"unknown", errors.New("dial tcp 10.0.0.1: refused"), CodeInternal, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := FromError(tt.err)
			require.NotNil(t, e)
			assert.Equal(t, tt.wantCode, e.Code)
			assert.Equal(t, tt.wantStatus, e.Status())
			assert.NotContains(t, e.Message, "10.0.0.1")
		})
	}
	assert.Nil(t, FromError(nil))
}
