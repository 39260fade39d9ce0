package api

import (
	"net/http"

	"github.com/phrazzld/press-api/internal/domain"
	"github.com/phrazzld/press-api/internal/rest"
	"github.com/phrazzld/press-api/internal/store"
)

// Entity error codes.
const (
	CodePostInvalidID     = "post_invalid_id"
	CodePostInvalidParent = "post_invalid_parent"
	CodePostExists        = "post_exists"
	CodeTypeInvalid       = "type_invalid"
	CodeStatusInvalid     = "status_invalid"
	CodeTaxonomyInvalid   = "taxonomy_invalid"
	CodeTermInvalidID     = "term_invalid_id"
	CodeTermInvalidParent = "term_invalid_parent"
	CodeTermExists        = "term_exists"
	CodeUserInvalidID     = "user_invalid_id"
	CodeCannotAssignTerm  = "cannot_assign_term"
	CodeNotLoggedIn       = "not_logged_in"
)

// mapStoreError converts a store error to a REST error. Not-found errors take
// the entity-specific code and message; everything else goes through
// rest.FromError so causes are only logged.
func mapStoreError(err error, notFoundCode, notFoundMessage string) *rest.Error {
	switch {
	case err == nil:
		return nil
	case store.IsNotFoundError(err):
		return rest.NewError(notFoundCode, notFoundMessage).
			WithStatus(http.StatusNotFound).WithCause(err)
	}
	return rest.FromError(err)
}

// denied builds a permission error: 401 for anonymous callers, 403 otherwise.
func denied(p *domain.Principal, code, message string) *rest.Error {
	if p == nil {
		return rest.NewError(code, message).WithStatus(http.StatusUnauthorized)
	}
	return rest.NewError(code, message).WithStatus(http.StatusForbidden)
}

func invalidParam(param, message string) *rest.Error {
	return rest.NewError(rest.CodeInvalidParam, message).
		WithStatus(http.StatusBadRequest).
		WithData("params", map[string]string{param: message})
}
