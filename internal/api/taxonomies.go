package api

import (
	"context"
	"net/http"

	"github.com/phrazzld/press-api/internal/domain"
	"github.com/phrazzld/press-api/internal/rest"
	"github.com/phrazzld/press-api/internal/schema"
	"github.com/phrazzld/press-api/internal/service/access"
)

// TaxonomiesController serves the read-only taxonomy registry.
type TaxonomiesController struct {
	deps   *Deps
	schema *schema.Schema
}

// NewTaxonomiesController creates a TaxonomiesController.
func NewTaxonomiesController(d *Deps) *TaxonomiesController {
	return &TaxonomiesController{deps: d, schema: taxonomySchema()}
}

func taxonomySchema() *schema.Schema {
	return schema.New("taxonomy", map[string]*schema.Property{
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
		"show_cloud": {
			Description: "Whether or not the term cloud should be displayed.",
			Type:        schema.TypeBoolean,
			Context:     schema.EditOnly,
			Readonly:    true,
		},
		"types": {
			Description: "Types associated with the resource.",
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

// Schema returns the taxonomy schema.
func (c *TaxonomiesController) Schema() *schema.Schema { return c.schema }

// Register adds the taxonomy routes.
func (c *TaxonomiesController) Register(r *rest.Registry) error {
	if err := r.Register(Namespace, "/taxonomies", http.MethodGet, rest.Binding{
		Handler:    c.GetItems,
		Permission: editContextPermission(access.CapManageTerms, "Sorry, you are not allowed to manage terms in this taxonomy."),
		Args: map[string]schema.ArgSpec{
			"context": schema.ContextArg(schema.ContextView),
			"type": schema.Arg(&schema.Property{
				Description: "Limit results to taxonomies associated with a specific post type.",
				Type:        schema.TypeString,
			}),
		},
		Schema: c.Schema,
	}); err != nil {
		return err
	}
	if err := r.Register(Namespace, "/taxonomies/schema", http.MethodGet, rest.Binding{
		Handler: schemaHandler(c.schema),
	}); err != nil {
		return err
	}
	return r.Register(Namespace, `/taxonomies/(?P<taxonomy>[\w-]+)`, http.MethodGet, rest.Binding{
		Handler: c.GetItem,
		Args: map[string]schema.ArgSpec{
			"context": schema.ContextArg(schema.ContextView),
			"taxonomy": schema.Arg(&schema.Property{
				Description: "An alphanumeric identifier for the taxonomy.",
				Type:        schema.TypeString,
				Required:    true,
			}),
		},
		Schema: c.Schema,
	})
}

// GetItems lists the taxonomies the caller may read, keyed by name,
// optionally restricted to one post type.
func (c *TaxonomiesController) GetItems(ctx context.Context, call *rest.Call) rest.Outcome {
	rc := requestContext(call)
	postType := call.Args.String("type")
	data := map[string]any{}
	for _, tax := range c.deps.Content.Taxonomies() {
		if postType != "" && !tax.AppliesTo(postType) {
			continue
		}
		if !c.deps.Access.Can(call.Principal, access.Read, tax) {
			continue
		}
		if rc != schema.ContextEdit && !tax.Public {
			continue
		}
		data[tax.Name] = c.PrepareItem(tax, rc)
	}
	return rest.OK(data)
}

// GetItem returns one taxonomy.
func (c *TaxonomiesController) GetItem(ctx context.Context, call *rest.Call) rest.Outcome {
	tax, ok := c.deps.Content.Taxonomy(call.Args.String("taxonomy"))
	if !ok {
		return rest.NewError(CodeTaxonomyInvalid, "Invalid taxonomy.")
	}
	if !tax.Public && !c.deps.Access.Can(call.Principal, access.Manage, tax) {
		return rest.NewError(rest.CodeForbidden, "Sorry, you are not allowed to view this taxonomy.")
	}
	rc := requestContext(call)
	if rc == schema.ContextEdit && !c.deps.Access.Can(call.Principal, access.Manage, tax) {
		return denied(call.Principal, rest.CodeCannotView, "Sorry, you are not allowed to manage terms in this taxonomy.")
	}
	return rest.OK(c.PrepareItem(tax, rc))
}

// PrepareItem projects a taxonomy for the given context.
func (c *TaxonomiesController) PrepareItem(tax *domain.Taxonomy, rc schema.Context) map[string]any {
	caps := map[string]any{
		"manage_terms": access.CapManageTerms,
		"edit_terms":   access.CapManageTerms,
		"delete_terms": access.CapManageTerms,
		"assign_terms": access.CapEditPosts,
	}
	labels := map[string]any{"name": tax.Label}
	for k, v := range tax.Labels {
		labels[k] = v
	}

	data := schema.FilterByContext(map[string]any{
		"capabilities": caps,
		"description":  tax.Description,
		"hierarchical": tax.Hierarchical,
		"labels":       labels,
		"name":         tax.Label,
		"slug":         tax.Name,
		"show_cloud":   tax.ShowCloud,
		"types":        append([]string{}, tax.ObjectTypes...),
		"rest_base":    tax.RestBase,
	}, c.schema, rc)

	links := rest.Links{}
	links.Add("collection", rest.Link{Href: c.deps.url("/wp/taxonomies")})
	if tax.ShowInREST {
		links.Add("https://api.w.org/items", rest.Link{Href: c.deps.url(termsPath(tax.Name))})
	}
	data["_links"] = links
	return data
}

func termsPath(taxonomy string) string {
	return "/wp/taxonomies/" + taxonomy + "/terms"
}
