package schema

import "fmt"

// Validation error codes.
const (
	CodeInvalidParam = "invalid_param"
	CodeInvalidEmail = "invalid_email"
	CodeInvalidDate  = "invalid_date"
)

// ValidationError reports why a parameter value was rejected.
type ValidationError struct {
	Code    string
	Param   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(code, param, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Param: param, Message: fmt.Sprintf(format, args...)}
}
