package rest

import (
	"context"
	"net/url"
	"sort"

	"github.com/phrazzld/press-api/internal/domain"
	"github.com/spf13/cast"
)

// Handler serves one binding.
type Handler func(ctx context.Context, call *Call) Outcome

// PermissionFunc decides whether principal may use a binding. It returns nil
// to allow; an error without status is served as 403.
type PermissionFunc func(ctx context.Context, req *Request, principal *domain.Principal) *Error

// Call is everything a handler receives: the request, the validated and
// sanitized arguments, and the authenticated principal (nil when anonymous).
type Call struct {
	Request   *Request
	Args      Args
	Principal *domain.Principal
}

// Args holds sanitized argument values by name.
type Args map[string]any

// Has reports whether the argument was supplied or defaulted.
func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// String returns the argument as a string.
func (a Args) String(name string) string {
	return cast.ToString(a[name])
}

// Int returns the argument as an int64.
func (a Args) Int(name string) int64 {
	return cast.ToInt64(a[name])
}

// Bool returns the argument as a bool.
func (a Args) Bool(name string) bool {
	return cast.ToBool(a[name])
}

// Strings returns an array argument as strings.
func (a Args) Strings(name string) []string {
	switch v := a[name].(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, len(v))
		for i, item := range v {
			out[i] = cast.ToString(item)
		}
		return out
	case []int64:
		out := make([]string, len(v))
		for i, n := range v {
			out[i] = cast.ToString(n)
		}
		return out
	default:
		return cast.ToStringSlice(v)
	}
}

// Ints returns an array argument as int64s.
func (a Args) Ints(name string) []int64 {
	switch v := a[name].(type) {
	case nil:
		return nil
	case []any:
		out := make([]int64, len(v))
		for i, item := range v {
			out[i] = cast.ToInt64(item)
		}
		return out
	case []int64:
		return v
	default:
		return []int64{cast.ToInt64(v)}
	}
}

// Decode fills dst, a struct tagged with `query:"name"`, from the arguments.
func (a Args) Decode(dst any) error {
	values := url.Values{}
	names := make([]string, 0, len(a))
	for name := range a {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		switch v := a[name].(type) {
		case nil:
		case []any, []string, []int64:
			for _, s := range a.Strings(name) {
				values.Add(name, s)
			}
		case map[string]any:
			continue
		default:
			values.Set(name, cast.ToString(v))
		}
	}
	return queryDecoder.Decode(dst, values)
}
