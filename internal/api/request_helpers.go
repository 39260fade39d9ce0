package api

import (
	"time"

	"github.com/phrazzld/press-api/internal/rest"
	"github.com/phrazzld/press-api/internal/schema"
)

// dateLayout is the site-local timestamp format used in responses.
const dateLayout = "2006-01-02T15:04:05"

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

// listParams are the paging and sorting arguments shared by list endpoints.
type listParams struct {
	Context string `query:"context"`
	Page    int    `query:"page"`
	PerPage int    `query:"per_page"`
	Search  string `query:"search"`
	Order   string `query:"order"`
	OrderBy string `query:"orderby"`
}

func (p listParams) offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

func (p listParams) desc() bool {
	return p.Order == "desc"
}

// collectionArgs are the arguments every paginated list accepts. Order and
// orderby are added per endpoint since their defaults differ.
func collectionArgs() map[string]schema.ArgSpec {
	return map[string]schema.ArgSpec{
		"context": schema.ContextArg(schema.ContextView),
		"page": schema.Arg(&schema.Property{
			Description: "Current page of the collection.",
			Type:        schema.TypeInteger,
			Default:     int64(1),
			Minimum:     schema.Int64(1),
		}),
		"per_page": schema.Arg(&schema.Property{
			Description: "Maximum number of items to be returned in result set.",
			Type:        schema.TypeInteger,
			Default:     int64(defaultPerPage),
			Minimum:     schema.Int64(1),
			Maximum:     schema.Int64(maxPerPage),
		}),
		"search": schema.Arg(&schema.Property{
			Description: "Limit results to those matching a string.",
			Type:        schema.TypeString,
		}),
	}
}

func orderArgs(defaultOrder, defaultOrderBy string, orderBy ...string) map[string]schema.ArgSpec {
	return map[string]schema.ArgSpec{
		"order": schema.Arg(&schema.Property{
			Description: "Order sort attribute ascending or descending.",
			Type:        schema.TypeString,
			Enum:        []string{"asc", "desc"},
			Default:     defaultOrder,
		}),
		"orderby": schema.Arg(&schema.Property{
			Description: "Sort collection by object attribute.",
			Type:        schema.TypeString,
			Enum:        orderBy,
			Default:     defaultOrderBy,
		}),
	}
}

func idListArg(description string) schema.ArgSpec {
	return schema.Arg(&schema.Property{
		Description: description,
		Type:        schema.TypeArray,
		Items:       &schema.Property{Type: schema.TypeInteger},
	})
}

func stringListArg(description string) schema.ArgSpec {
	return schema.Arg(&schema.Property{
		Description: description,
		Type:        schema.TypeArray,
		Items:       &schema.Property{Type: schema.TypeString},
	})
}

func idArg(description string) map[string]schema.ArgSpec {
	return map[string]schema.ArgSpec{
		"id": schema.Arg(&schema.Property{
			Description: description,
			Type:        schema.TypeInteger,
			Required:    true,
		}),
	}
}

func forceArg(description string) map[string]schema.ArgSpec {
	return map[string]schema.ArgSpec{
		"force": schema.Arg(&schema.Property{
			Description: description,
			Type:        schema.TypeBoolean,
			Default:     false,
		}),
	}
}

func requestContext(call *rest.Call) schema.Context {
	return schema.ParseContext(call.Args.String("context"))
}

func formatDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(dateLayout)
}

func formatDateGMT(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(dateLayout)
}

// parseDate accepts RFC 3339 timestamps and zone-less ones, read as UTC.
func parseDate(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(dateLayout, s, time.UTC); err == nil {
		return t, true
	}
	return time.Time{}, false
}
