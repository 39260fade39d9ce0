package api

import (
	"context"
	"net/http"

	"github.com/phrazzld/press-api/internal/domain"
	"github.com/phrazzld/press-api/internal/rest"
	"github.com/phrazzld/press-api/internal/schema"
	"github.com/phrazzld/press-api/internal/service/access"
)

// capabilityVerbs are the per-type capabilities reported in edit context.
var capabilityVerbs = []string{
	"edit", "edit_others", "edit_published", "edit_private",
	"publish", "read_private",
	"delete", "delete_others", "delete_published", "delete_private",
}

// PostTypesController serves the read-only post type registry.
type PostTypesController struct {
	deps   *Deps
	schema *schema.Schema
}

// NewPostTypesController creates a PostTypesController.
func NewPostTypesController(d *Deps) *PostTypesController {
	return &PostTypesController{deps: d, schema: postTypeSchema()}
}

func postTypeSchema() *schema.Schema {
	return schema.New("type", map[string]*schema.Property{
		"capabilities": {
			Description: "All capabilities used by the resource.",
			Type:        schema.TypeObject,
			Context:     schema.EditOnly,
			Readonly:    true,
		},
		"description": {
			Description: "A human-readable description of the resource.",
			Type:        schema.TypeString,
			Context:     schema.ViewEdit,
			Readonly:    true,
		},
		"hierarchical": {
			Description: "Whether or not the resource should have children.",
			Type:        schema.TypeBoolean,
			Context:     schema.ViewEdit,
			Readonly:    true,
		},
		"labels": {
			Description: "Human-readable labels for the resource for various contexts.",
			Type:        schema.TypeObject,
			Context:     schema.EditOnly,
			Readonly:    true,
		},
		"name": {
			Description: "The title for the resource.",
			Type:        schema.TypeString,
			Context:     schema.All,
			Readonly:    true,
		},
		"slug": {
			Description: "An alphanumeric identifier for the resource.",
			Type:        schema.TypeString,
			Context:     schema.All,
			Readonly:    true,
		},
		"taxonomies": {
			Description: "Taxonomies associated with post type.",
			Type:        schema.TypeArray,
			Items:       &schema.Property{Type: schema.TypeString},
			Context:     schema.ViewEdit,
			Readonly:    true,
		},
		"rest_base": {
			Description: "REST base route for the resource.",
			Type:        schema.TypeString,
			Context:     schema.All,
			Readonly:    true,
		},
	})
}

// Schema returns the post type schema.
func (c *PostTypesController) Schema() *schema.Schema { return c.schema }

// Register adds the post type routes.
func (c *PostTypesController) Register(r *rest.Registry) error {
	if err := r.Register(Namespace, "/types", http.MethodGet, rest.Binding{
		Handler:    c.GetItems,
		Permission: editContextPermission(access.CapEditPosts, "Sorry, you are not allowed to edit posts in this post type."),
		Args:       map[string]schema.ArgSpec{"context": schema.ContextArg(schema.ContextView)},
		Schema:     c.Schema,
	}); err != nil {
		return err
	}
	if err := r.Register(Namespace, "/types/schema", http.MethodGet, rest.Binding{
		Handler: schemaHandler(c.schema),
	}); err != nil {
		return err
	}
	return r.Register(Namespace, `/types/(?P<type>[\w-]+)`, http.MethodGet, rest.Binding{
		Handler: c.GetItem,
		Args: map[string]schema.ArgSpec{
			"context": schema.ContextArg(schema.ContextView),
			"type": schema.Arg(&schema.Property{
				Description: "An alphanumeric identifier for the post type.",
				Type:        schema.TypeString,
				Required:    true,
			}),
		},
		Schema: c.Schema,
	})
}

// GetItems lists the public post types in view context, and every post type
// in edit context.
func (c *PostTypesController) GetItems(ctx context.Context, call *rest.Call) rest.Outcome {
	rc := requestContext(call)
	data := map[string]any{}
	for _, pt := range c.deps.Content.PostTypes() {
		if rc != schema.ContextEdit && !pt.Public {
			continue
		}
		data[pt.Name] = c.PrepareItem(pt, rc)
	}
	return rest.OK(data)
}

// GetItem returns one post type.
func (c *PostTypesController) GetItem(ctx context.Context, call *rest.Call) rest.Outcome {
	pt, ok := c.deps.Content.PostType(call.Args.String("type"))
	if !ok {
		return rest.NewError(CodeTypeInvalid, "Invalid post type.")
	}
	rc := requestContext(call)
	if !c.deps.Access.Can(call.Principal, access.Read, pt) {
		return denied(call.Principal, rest.CodeCannotView, "Sorry, you are not allowed to view this post type.")
	}
	if rc == schema.ContextEdit && !c.deps.Access.Can(call.Principal, access.Edit, pt) {
		return denied(call.Principal, rest.CodeCannotView, "Sorry, you are not allowed to edit posts in this post type.")
	}
	return rest.OK(c.PrepareItem(pt, rc))
}

// PrepareItem projects a post type for the given context.
func (c *PostTypesController) PrepareItem(pt *domain.PostType, rc schema.Context) map[string]any {
	caps := make(map[string]any, len(capabilityVerbs))
	for _, verb := range capabilityVerbs {
		caps[verb+"_posts"] = pt.Cap(verb)
	}
	labels := map[string]any{"name": pt.Label}
	for k, v := range pt.Labels {
		labels[k] = v
	}
	taxonomies := append([]string{}, pt.Taxonomies...)

	data := schema.FilterByContext(map[string]any{
		"capabilities": caps,
		"description":  pt.Description,
		"hierarchical": pt.Hierarchical,
		"labels":       labels,
		"name":         pt.Label,
		"slug":         pt.Name,
		"taxonomies":   taxonomies,
		"rest_base":    pt.RestBase,
	}, c.schema, rc)

	links := rest.Links{}
	links.Add("collection", rest.Link{Href: c.deps.url("/wp/types")})
	if pt.ShowInREST {
		links.Add("https://api.w.org/items", rest.Link{Href: c.deps.url("/wp/" + pt.RestBase)})
	}
	data["_links"] = links
	return data
}

// editContextPermission requires capability when the request asks for the edit context.
func editContextPermission(capability, message string) rest.PermissionFunc {
	return func(ctx context.Context, req *rest.Request, p *domain.Principal) *rest.Error {
		v, _ := req.Param("context")
		if s, _ := v.(string); s == string(schema.ContextEdit) && !p.HasCap(capability) {
			return denied(p, rest.CodeCannotView, message)
		}
		return nil
	}
}

func schemaHandler(s *schema.Schema) rest.Handler {
	return func(context.Context, *rest.Call) rest.Outcome {
		return rest.OK(s)
	}
}
