package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/phrazzld/press-api/internal/domain"
	"github.com/phrazzld/press-api/internal/events"
	"github.com/phrazzld/press-api/internal/rest"
	"github.com/phrazzld/press-api/internal/schema"
	"github.com/phrazzld/press-api/internal/service/access"
	"github.com/phrazzld/press-api/internal/store"
)

const (
	termsRoute    = `/taxonomies/(?P<taxonomy>[\w-]+)/terms`
	termItemRoute = termsRoute + `/(?P<id>[\d]+)`
)

// TermsController serves the terms of every REST-enabled taxonomy.
type TermsController struct {
	deps   *Deps
	schema *schema.Schema
}

// NewTermsController creates a TermsController.
func NewTermsController(d *Deps) *TermsController {
	return &TermsController{deps: d, schema: termSchema()}
}

func termSchema() *schema.Schema {
	return schema.New("term", map[string]*schema.Property{
		"id": {
			Description: "Unique identifier for the term.",
			Type:        schema.TypeInteger,
			Context:     schema.All,
			Readonly:    true,
		},
		"count": {
			Description: "Number of published posts for the term.",
			Type:        schema.TypeInteger,
			Context:     schema.ViewEdit,
			Readonly:    true,
		},
		"description": {
			Description: "HTML description of the term.",
			Type:        schema.TypeString,
			Context:     schema.ViewEdit,
		},
		"link": {
			Description: "URL of the term.",
			Type:        schema.TypeString,
			Format:      schema.FormatURI,
			Context:     schema.All,
			Readonly:    true,
		},
		"name": {
			Description: "HTML title for the term.",
			Type:        schema.TypeString,
			Context:     schema.All,
			Required:    true,
		},
		"slug": {
			Description: "An alphanumeric identifier for the term unique to its type.",
			Type:        schema.TypeString,
			Context:     schema.All,
		},
		"taxonomy": {
			Description: "Type attribution for the term.",
			Type:        schema.TypeString,
			Context:     schema.All,
			Readonly:    true,
		},
		"parent": {
			Description: "The parent term ID.",
			Type:        schema.TypeInteger,
			Context:     schema.ViewEdit,
		},
	})
}

// Schema returns the term schema.
func (c *TermsController) Schema() *schema.Schema { return c.schema }

// Register adds the term routes.
func (c *TermsController) Register(r *rest.Registry) error {
	listArgs := schema.Merge(
		collectionArgs(),
		orderArgs("asc", store.TermOrderName,
			store.TermOrderID, store.TermOrderName, store.TermOrderSlug, store.TermOrderCount),
		map[string]schema.ArgSpec{
			"hide_empty": schema.Arg(&schema.Property{
				Description: "Whether to hide terms not assigned to any posts.",
				Type:        schema.TypeBoolean,
				Default:     false,
			}),
			"parent": schema.Arg(&schema.Property{
				Description: "Limit result set to terms assigned to a specific parent.",
				Type:        schema.TypeInteger,
			}),
			"post": schema.Arg(&schema.Property{
				Description: "Limit result set to terms assigned to a specific post.",
				Type:        schema.TypeInteger,
			}),
			"include": idListArg("Limit result set to specific IDs."),
			"exclude": idListArg("Ensure result set excludes specific IDs."),
			"slug":    stringListArg("Limit result set to terms with one or more specific slugs."),
		},
	)
	itemArgs := schema.Merge(idArg("Unique identifier for the term."),
		map[string]schema.ArgSpec{"context": schema.ContextArg(schema.ContextView)})

	bindings := []struct {
		pattern string
		methods []string
		binding rest.Binding
	}{
		{termsRoute, []string{http.MethodGet}, rest.Binding{
			Handler: c.GetItems, Permission: c.readPermission, Args: listArgs, Schema: c.Schema,
		}},
		{termsRoute, []string{http.MethodPost}, rest.Binding{
			Handler: c.CreateItem, Permission: c.createPermission,
			Args: schema.EndpointArgs(c.schema, schema.ContextEdit), Schema: c.Schema,
		}},
		{termsRoute + "/schema", []string{http.MethodGet}, rest.Binding{
			Handler: schemaHandler(c.schema),
		}},
		{termItemRoute, []string{http.MethodGet}, rest.Binding{
			Handler: c.GetItem, Permission: c.readPermission, Args: itemArgs, Schema: c.Schema,
		}},
		{termItemRoute, rest.Editable, rest.Binding{
			Handler: c.UpdateItem, Permission: c.readPermission,
			Args: schema.Merge(schema.UpdateArgs(c.schema), idArg("Unique identifier for the term.")), Schema: c.Schema,
		}},
		{termItemRoute, []string{http.MethodDelete}, rest.Binding{
			Handler: c.DeleteItem, Permission: c.readPermission,
			Args: schema.Merge(idArg("Unique identifier for the term."),
				forceArg("Required to be true, as terms do not support trashing.")),
			Schema: c.Schema,
		}},
	}
	for _, b := range bindings {
		if err := r.Handle(Namespace, b.pattern, b.methods, b.binding); err != nil {
			return err
		}
	}
	return nil
}

// taxonomy resolves the taxonomy route parameter.
func (c *TermsController) taxonomy(req *rest.Request) (*domain.Taxonomy, *rest.Error) {
	tax, ok := c.deps.Content.Taxonomy(req.URLParam("taxonomy"))
	if !ok || !tax.ShowInREST {
		return nil, rest.NewError(CodeTaxonomyInvalid, "Invalid taxonomy.")
	}
	return tax, nil
}

func (c *TermsController) readPermission(ctx context.Context, req *rest.Request, p *domain.Principal) *rest.Error {
	tax, restErr := c.taxonomy(req)
	if restErr != nil {
		return restErr
	}
	if !c.deps.Access.Can(p, access.Read, tax) {
		return denied(p, rest.CodeCannotView, "Sorry, you are not allowed to view terms in this taxonomy.")
	}
	return nil
}

func (c *TermsController) createPermission(ctx context.Context, req *rest.Request, p *domain.Principal) *rest.Error {
	tax, restErr := c.taxonomy(req)
	if restErr != nil {
		return restErr
	}
	if !c.deps.Access.Can(p, access.Manage, tax) {
		return denied(p, rest.CodeCannotCreate, "Sorry, you are not allowed to create terms in this taxonomy.")
	}
	return nil
}

type termListParams struct {
	listParams
	HideEmpty bool     `query:"hide_empty"`
	Parent    *int64   `query:"parent"`
	Post      int64    `query:"post"`
	Include   []int64  `query:"include"`
	Exclude   []int64  `query:"exclude"`
	Slug      []string `query:"slug"`
}

// GetItems lists one page of terms.
func (c *TermsController) GetItems(ctx context.Context, call *rest.Call) rest.Outcome {
	tax, restErr := c.taxonomy(call.Request)
	if restErr != nil {
		return restErr
	}
	var params termListParams
	if err := call.Args.Decode(&params); err != nil {
		return rest.FromError(err)
	}

	if params.Post != 0 {
		post, err := c.deps.Posts.GetByID(ctx, params.Post)
		if err != nil {
			return mapStoreError(err, CodePostInvalidID, "Invalid post ID.").WithStatus(http.StatusBadRequest)
		}
		if !c.deps.Access.Can(call.Principal, access.Read, post) {
			return denied(call.Principal, rest.CodeCannotView, "Sorry, you are not allowed to view terms for this post.")
		}
	}

	terms, total, err := c.deps.Terms.List(ctx, store.TermQuery{
		Taxonomy:  tax.Name,
		Search:    params.Search,
		Slugs:     params.Slug,
		Include:   params.Include,
		Exclude:   params.Exclude,
		Parent:    params.Parent,
		Post:      params.Post,
		HideEmpty: params.HideEmpty,
		OrderBy:   params.OrderBy,
		Desc:      params.desc(),
		Offset:    params.offset(),
		Limit:     params.PerPage,
	})
	if err != nil {
		return rest.FromError(err)
	}

	rc := schema.ParseContext(params.Context)
	home := c.deps.homeURL(ctx)
	items := make([]map[string]any, 0, len(terms))
	for _, t := range terms {
		items = append(items, c.PrepareItem(t, tax, home, rc))
	}
	return rest.NewResponse(http.StatusOK, items).Paginate(total, params.PerPage, params.Page)
}

// load fetches a term of the route taxonomy; terms of other taxonomies are not found.
func (c *TermsController) load(ctx context.Context, call *rest.Call) (*domain.Term, *domain.Taxonomy, *rest.Error) {
	tax, restErr := c.taxonomy(call.Request)
	if restErr != nil {
		return nil, nil, restErr
	}
	term, err := c.deps.Terms.GetByID(ctx, call.Args.Int("id"))
	if err != nil {
		return nil, nil, mapStoreError(err, CodeTermInvalidID, "Term does not exist.")
	}
	if term.Taxonomy != tax.Name {
		return nil, nil, rest.NewError(CodeTermInvalidID, "Term does not exist.")
	}
	return term, tax, nil
}

// GetItem returns one term.
func (c *TermsController) GetItem(ctx context.Context, call *rest.Call) rest.Outcome {
	term, tax, restErr := c.load(ctx, call)
	if restErr != nil {
		return restErr
	}
	return rest.OK(c.PrepareItem(term, tax, c.deps.homeURL(ctx), requestContext(call)))
}

// CreateItem stores a new term and answers 201 with its location.
func (c *TermsController) CreateItem(ctx context.Context, call *rest.Call) rest.Outcome {
	tax, restErr := c.taxonomy(call.Request)
	if restErr != nil {
		return restErr
	}
	term := &domain.Term{Taxonomy: tax.Name}
	if restErr := c.apply(ctx, call, tax, term); restErr != nil {
		return restErr
	}
	if err := c.deps.Terms.Create(ctx, term); err != nil {
		return c.writeError(ctx, err, term)
	}

	c.deps.log(ctx, "terms").Info("term created",
		slog.Int64("term_id", term.ID), slog.String("taxonomy", tax.Name))
	c.deps.emit(ctx, events.TermCreated, tax.Name, term.ID, map[string]any{"slug": term.Slug})

	resp := rest.NewResponse(http.StatusCreated, c.PrepareItem(term, tax, c.deps.homeURL(ctx), schema.ContextEdit))
	resp.Header.Set("Location", c.deps.url(termsPath(tax.Name)+"/"+strconv.FormatInt(term.ID, 10)))
	return resp
}

// UpdateItem changes the supplied fields of a term.
func (c *TermsController) UpdateItem(ctx context.Context, call *rest.Call) rest.Outcome {
	term, tax, restErr := c.load(ctx, call)
	if restErr != nil {
		return restErr
	}
	if !c.deps.Access.Can(call.Principal, access.Edit, term) {
		return denied(call.Principal, rest.CodeCannotEdit, "Sorry, you are not allowed to edit this term.")
	}
	if restErr := c.apply(ctx, call, tax, term); restErr != nil {
		return restErr
	}
	if err := c.deps.Terms.Update(ctx, term); err != nil {
		return c.writeError(ctx, err, term)
	}

	c.deps.emit(ctx, events.TermUpdated, tax.Name, term.ID, map[string]any{"slug": term.Slug})
	return rest.OK(c.PrepareItem(term, tax, c.deps.homeURL(ctx), schema.ContextEdit))
}

// DeleteItem permanently removes a term. Terms cannot be trashed, so force is required.
func (c *TermsController) DeleteItem(ctx context.Context, call *rest.Call) rest.Outcome {
	term, tax, restErr := c.load(ctx, call)
	if restErr != nil {
		return restErr
	}
	if !c.deps.Access.Can(call.Principal, access.Delete, term) {
		return denied(call.Principal, rest.CodeCannotDelete, "Sorry, you are not allowed to delete this term.")
	}
	if !call.Args.Bool("force") {
		return rest.NewError(rest.CodeTrashNotSupported, "Terms do not support trashing. Set 'force=true' to delete.")
	}

	previous := c.PrepareItem(term, tax, c.deps.homeURL(ctx), schema.ContextEdit)
	if err := c.deps.Terms.Delete(ctx, term.ID); err != nil {
		return mapStoreError(err, CodeTermInvalidID, "Term does not exist.")
	}

	c.deps.log(ctx, "terms").Info("term deleted",
		slog.Int64("term_id", term.ID), slog.String("taxonomy", tax.Name))
	c.deps.emit(ctx, events.TermDeleted, tax.Name, term.ID, nil)
	return rest.OK(map[string]any{"deleted": true, "previous": previous})
}

// apply copies the supplied arguments onto term, validating the parent.
func (c *TermsController) apply(ctx context.Context, call *rest.Call, tax *domain.Taxonomy, term *domain.Term) *rest.Error {
	args := call.Args
	if args.Has("name") {
		term.Name = args.String("name")
	}
	if args.Has("description") {
		term.Description = args.String("description")
	}
	if args.Has("slug") {
		term.Slug = domain.Slugify(args.String("slug"))
	}
	if term.Slug == "" {
		term.Slug = domain.Slugify(term.Name)
	}
	if args.Has("parent") {
		parent := args.Int("parent")
		if parent != 0 {
			if !tax.Hierarchical {
				return invalidParam("parent", "Cannot set parent term, taxonomy is not hierarchical.")
			}
			if parent == term.ID {
				return invalidParam("parent", "A term cannot be its own parent.")
			}
			p, err := c.deps.Terms.GetByID(ctx, parent)
			if err != nil || p.Taxonomy != tax.Name {
				return rest.NewError(CodeTermInvalidParent, "Parent term does not exist.").
					WithStatus(http.StatusBadRequest)
			}
		}
		term.Parent = parent
	}
	return nil
}

// writeError maps a failed write. A taken slug answers term_exists with the
// ID of the term holding it.
func (c *TermsController) writeError(ctx context.Context, err error, term *domain.Term) *rest.Error {
	if !errors.Is(err, store.ErrSlugExists) {
		return mapStoreError(err, CodeTermInvalidID, "Term does not exist.")
	}
	e := rest.NewError(CodeTermExists, "A term with the name provided already exists in this taxonomy.").
		WithStatus(http.StatusBadRequest).WithCause(err)
	existing, _, lookupErr := c.deps.Terms.List(ctx, store.TermQuery{
		Taxonomy: term.Taxonomy, Slugs: []string{term.Slug}, Limit: 1,
	})
	if lookupErr == nil && len(existing) == 1 {
		e = e.WithData("term_id", existing[0].ID)
	}
	return e
}

// PrepareItem projects a term for the given context.
func (c *TermsController) PrepareItem(t *domain.Term, tax *domain.Taxonomy, home string, rc schema.Context) map[string]any {
	item := map[string]any{
		"id":          t.ID,
		"count":       t.Count,
		"description": t.Description,
		"link":        home + "/?" + url.Values{"taxonomy": {tax.Name}, "term": {t.Slug}}.Encode(),
		"name":        t.Name,
		"slug":        t.Slug,
		"taxonomy":    tax.Name,
	}
	if tax.Hierarchical {
		item["parent"] = t.Parent
	}
	data := schema.FilterByContext(item, c.schema, rc)

	base := termsPath(tax.Name)
	links := rest.Links{}
	links.Add("self", rest.Link{Href: c.deps.url(base + "/" + strconv.FormatInt(t.ID, 10))})
	links.Add("collection", rest.Link{Href: c.deps.url(base)})
	links.Add("about", rest.Link{Href: c.deps.url("/wp/taxonomies/" + tax.Name)})
	if t.Parent != 0 {
		links.Add("up", rest.Link{Href: c.deps.url(base + "/" + strconv.FormatInt(t.Parent, 10)), Embeddable: true})
	}
	for _, name := range tax.ObjectTypes {
		pt, ok := c.deps.Content.PostType(name)
		if !ok || !pt.ShowInREST {
			continue
		}
		links.Add("https://api.w.org/post_type", rest.Link{
			Href: c.deps.url("/wp/" + pt.RestBase + "?" + tax.RestBase + "=" + strconv.FormatInt(t.ID, 10)),
		})
	}
	data["_links"] = links
	return data
}
