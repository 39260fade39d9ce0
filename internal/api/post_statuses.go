package api

import (
	"context"
	"net/http"

	"github.com/phrazzld/press-api/internal/domain"
	"github.com/phrazzld/press-api/internal/rest"
	"github.com/phrazzld/press-api/internal/schema"
	"github.com/phrazzld/press-api/internal/service/access"
)

// PostStatusesController serves the read-only post status registry.
type PostStatusesController struct {
	deps   *Deps
	schema *schema.Schema
}

// NewPostStatusesController creates a PostStatusesController.
func NewPostStatusesController(d *Deps) *PostStatusesController {
	return &PostStatusesController{deps: d, schema: postStatusSchema()}
}

func postStatusSchema() *schema.Schema {
	return schema.New("status", map[string]*schema.Property{
		"name": {
			Description: "The title for the resource.",
			Type:        schema.TypeString,
			Context:     schema.All,
			Readonly:    true,
		},
		"private": {
			Description: "Whether posts with this resource should be private.",
			Type:        schema.TypeBoolean,
			Context:     schema.EditOnly,
			Readonly:    true,
		},
		"protected": {
			Description: "Whether posts with this resource should be protected.",
			Type:        schema.TypeBoolean,
			Context:     schema.EditOnly,
			Readonly:    true,
		},
		"public": {
			Description: "Whether posts of this resource should be shown in the front end of the site.",
			Type:        schema.TypeBoolean,
			Context:     schema.ViewEdit,
			Readonly:    true,
		},
		"queryable": {
			Description: "Whether posts with this resource should be publicly-queryable.",
			Type:        schema.TypeBoolean,
			Context:     schema.ViewEdit,
			Readonly:    true,
		},
		"show_in_list": {
			Description: "Whether to include posts in the edit listing for their post type.",
			Type:        schema.TypeBoolean,
			Context:     schema.EditOnly,
			Readonly:    true,
		},
		"slug": {
			Description: "An alphanumeric identifier for the resource.",
			Type:        schema.TypeString,
			Context:     schema.All,
			Readonly:    true,
		},
	})
}

// Schema returns the post status schema.
func (c *PostStatusesController) Schema() *schema.Schema { return c.schema }

// Register adds the post status routes.
func (c *PostStatusesController) Register(r *rest.Registry) error {
	if err := r.Register(Namespace, "/statuses", http.MethodGet, rest.Binding{
		Handler:    c.GetItems,
		Permission: editContextPermission(access.CapEditPosts, "Sorry, you are not allowed to manage post statuses."),
		Args:       map[string]schema.ArgSpec{"context": schema.ContextArg(schema.ContextView)},
		Schema:     c.Schema,
	}); err != nil {
		return err
	}
	if err := r.Register(Namespace, "/statuses/schema", http.MethodGet, rest.Binding{
		Handler: schemaHandler(c.schema),
	}); err != nil {
		return err
	}
	return r.Register(Namespace, `/statuses/(?P<status>[\w-]+)`, http.MethodGet, rest.Binding{
		Handler: c.GetItem,
		Args: map[string]schema.ArgSpec{
			"context": schema.ContextArg(schema.ContextView),
			"status": schema.Arg(&schema.Property{
				Description: "An alphanumeric identifier for the status.",
				Type:        schema.TypeString,
				Required:    true,
			}),
		},
		Schema: c.Schema,
	})
}

// visible reports whether the principal may see a status. Internal statuses
// are never exposed; non-public ones need the edit_posts capability.
func (c *PostStatusesController) visible(p *domain.Principal, s *domain.PostStatus) bool {
	if s.Internal {
		return false
	}
	return s.Public || p.HasCap(access.CapEditPosts)
}

// GetItems lists the statuses visible to the caller, keyed by slug.
func (c *PostStatusesController) GetItems(ctx context.Context, call *rest.Call) rest.Outcome {
	rc := requestContext(call)
	data := map[string]any{}
	for _, s := range c.deps.Content.Statuses() {
		if !c.visible(call.Principal, s) {
			continue
		}
		data[s.Name] = c.PrepareItem(s, rc)
	}
	return rest.OK(data)
}

// GetItem returns one status.
func (c *PostStatusesController) GetItem(ctx context.Context, call *rest.Call) rest.Outcome {
	s, ok := c.deps.Content.Status(call.Args.String("status"))
	if !ok || s.Internal {
		return rest.NewError(CodeStatusInvalid, "Invalid status.")
	}
	if !c.visible(call.Principal, s) {
		return denied(call.Principal, rest.CodeCannotView, "Cannot view status.")
	}
	return rest.OK(c.PrepareItem(s, requestContext(call)))
}

// PrepareItem projects a status for the given context.
func (c *PostStatusesController) PrepareItem(s *domain.PostStatus, rc schema.Context) map[string]any {
	data := schema.FilterByContext(map[string]any{
		"name":         s.Label,
		"private":      s.Private,
		"protected":    s.Protected,
		"public":       s.Public,
		"queryable":    s.Queryable,
		"show_in_list": s.ShowInList,
		"slug":         s.Name,
	}, c.schema, rc)

	links := rest.Links{}
	if s.Public {
		links.Add("archives", rest.Link{Href: c.deps.url("/wp/posts")})
	} else {
		links.Add("archives", rest.Link{Href: c.deps.url("/wp/posts?status=" + s.Name)})
	}
	data["_links"] = links
	return data
}
