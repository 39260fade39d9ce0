package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/press-api/internal/domain"
	"github.com/phrazzld/press-api/internal/events"
	"github.com/phrazzld/press-api/internal/rest"
	"github.com/phrazzld/press-api/internal/schema"
	"github.com/phrazzld/press-api/internal/service/access"
	"github.com/phrazzld/press-api/internal/store"
)

const (
	// excerptWords is the length of generated excerpts.
	excerptWords = 55
	excerptMore  = " [&hellip;]"

	statusAny = "any"
)

var postFormats = []string{
	"standard", "aside", "chat", "gallery", "link", "image", "quote", "status", "video", "audio",
}

var openClosed = []string{"open", "closed"}

// PostsController serves one REST-enabled post type, e.g. /wp/posts or /wp/pages.
type PostsController struct {
	deps     *Deps
	postType *domain.PostType
	base     string
	schema   *schema.Schema
}

// NewPostsController creates a PostsController for pt.
func NewPostsController(d *Deps, pt *domain.PostType) *PostsController {
	c := &PostsController{deps: d, postType: pt, base: "/" + pt.RestBase}
	c.schema = c.buildSchema()
	return c
}

// supportsPostFeatures reports whether the type carries format and sticky fields.
func (c *PostsController) supportsPostFeatures() bool {
	return c.postType.Name == "post"
}

func (c *PostsController) statusNames() []string {
	var names []string
	for _, s := range c.deps.Content.Statuses() {
		if !s.Internal {
			names = append(names, s.Name)
		}
	}
	return names
}

func renderedObject(description string, ctx []schema.Context, protected bool) *schema.Property {
	props := map[string]*schema.Property{
		"raw": {
			Description: fmt.Sprintf("%s, as it exists in the database.", description),
			Type:        schema.TypeString,
			Context:     schema.EditOnly,
		},
		"rendered": {
			Description: fmt.Sprintf("HTML %s, transformed for display.", strings.ToLower(description)),
			Type:        schema.TypeString,
			Context:     ctx,
			Readonly:    true,
		},
	}
	if protected {
		props["protected"] = &schema.Property{
			Description: "Whether the content is protected with a password.",
			Type:        schema.TypeBoolean,
			Context:     ctx,
			Readonly:    true,
		}
	}
	return &schema.Property{
		Description: fmt.Sprintf("The %s for the object.", strings.ToLower(description)),
		Type:        schema.TypeObject,
		Context:     ctx,
		Properties:  props,
	}
}

func (c *PostsController) buildSchema() *schema.Schema {
	props := map[string]*schema.Property{
		"date": {
			Description: "The date the object was published, in the site's timezone.",
			Type:        schema.TypeString,
			Format:      schema.FormatDateTime,
			Context:     schema.All,
		},
		"date_gmt": {
			Description: "The date the object was published, as GMT.",
			Type:        schema.TypeString,
			Format:      schema.FormatDateTime,
			Context:     schema.ViewEdit,
		},
		"guid": {
			Description: "The globally unique identifier for the object.",
			Type:        schema.TypeObject,
			Context:     schema.ViewEdit,
			Readonly:    true,
			Properties: map[string]*schema.Property{
				"raw":      {Type: schema.TypeString, Context: schema.EditOnly, Readonly: true},
				"rendered": {Type: schema.TypeString, Context: schema.ViewEdit, Readonly: true},
			},
		},
		"id": {
			Description: "Unique identifier for the object.",
			Type:        schema.TypeInteger,
			Context:     schema.All,
			Readonly:    true,
		},
		"link": {
			Description: "URL to the object.",
			Type:        schema.TypeString,
			Format:      schema.FormatURI,
			Context:     schema.All,
			Readonly:    true,
		},
		"modified": {
			Description: "The date the object was last modified, in the site's timezone.",
			Type:        schema.TypeString,
			Format:      schema.FormatDateTime,
			Context:     schema.ViewEdit,
			Readonly:    true,
		},
		"modified_gmt": {
			Description: "The date the object was last modified, as GMT.",
			Type:        schema.TypeString,
			Format:      schema.FormatDateTime,
			Context:     schema.ViewEdit,
			Readonly:    true,
		},
		"password": {
			Description: "A password to protect access to the content and excerpt.",
			Type:        schema.TypeString,
			Context:     schema.EditOnly,
		},
		"slug": {
			Description: "An alphanumeric identifier for the object unique to its type.",
			Type:        schema.TypeString,
			Context:     schema.All,
		},
		"status": {
			Description: "A named status for the object.",
			Type:        schema.TypeString,
			Enum:        c.statusNames(),
			Context:     schema.ViewEdit,
		},
		"type": {
			Description: "Type of Post for the object.",
			Type:        schema.TypeString,
			Context:     schema.All,
			Readonly:    true,
		},
		"title":   renderedObject("Title", schema.All, false),
		"content": renderedObject("Content", schema.ViewEdit, true),
		"excerpt": renderedObject("Excerpt", schema.All, true),
		"author": {
			Description: "The ID for the author of the object.",
			Type:        schema.TypeInteger,
			Context:     schema.All,
		},
		"comment_status": {
			Description: "Whether or not comments are open on the object.",
			Type:        schema.TypeString,
			Enum:        openClosed,
			Context:     schema.ViewEdit,
		},
		"ping_status": {
			Description: "Whether or not the object can be pinged.",
			Type:        schema.TypeString,
			Enum:        openClosed,
			Context:     schema.ViewEdit,
		},
	}
	if c.supportsPostFeatures() {
		props["format"] = &schema.Property{
			Description: "The format for the object.",
			Type:        schema.TypeString,
			Enum:        postFormats,
			Context:     schema.ViewEdit,
		}
		props["sticky"] = &schema.Property{
			Description: "Whether or not the object should be treated as sticky.",
			Type:        schema.TypeBoolean,
			Context:     schema.ViewEdit,
		}
	}
	if c.postType.Hierarchical {
		props["parent"] = &schema.Property{
			Description: "The ID for the parent of the object.",
			Type:        schema.TypeInteger,
			Context:     schema.ViewEdit,
		}
		props["menu_order"] = &schema.Property{
			Description: "The order of the object in relation to other object of its type.",
			Type:        schema.TypeInteger,
			Context:     schema.ViewEdit,
		}
	}
	for _, tax := range c.deps.Content.TaxonomiesFor(c.postType.Name) {
		props[tax.RestBase] = &schema.Property{
			Description: fmt.Sprintf("The terms assigned to the object in the %s taxonomy.", tax.Name),
			Type:        schema.TypeArray,
			Items:       &schema.Property{Type: schema.TypeInteger},
			Context:     schema.ViewEdit,
		}
	}
	return schema.New(c.postType.Name, props)
}

// Schema returns the post schema of this type.
func (c *PostsController) Schema() *schema.Schema { return c.schema }

// writeArgs derives write arguments from the schema. Title, content and
// excerpt accept either a string or an object carrying "raw".
func (c *PostsController) writeArgs(base map[string]schema.ArgSpec) map[string]schema.ArgSpec {
	return schema.Merge(base, map[string]schema.ArgSpec{
		"title":   rawArg("The title for the object."),
		"content": rawArg("The content for the object."),
		"excerpt": rawArg("The excerpt for the object."),
	})
}

func rawArg(description string) schema.ArgSpec {
	return schema.ArgSpec{
		Description: description,
		Type:        schema.TypeString,
		Validate: func(value any, name string) error {
			if _, ok := rawText(value); !ok {
				return &schema.ValidationError{
					Code:    schema.CodeInvalidParam,
					Param:   name,
					Message: fmt.Sprintf("%s is not of type string.", name),
				}
			}
			return nil
		},
		Sanitize: func(value any, name string) (any, error) {
			s, _ := rawText(value)
			return s, nil
		},
	}
}

func rawText(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case map[string]any:
		raw, ok := v["raw"].(string)
		return raw, ok
	}
	return "", false
}

func (c *PostsController) listArgs() map[string]schema.ArgSpec {
	statusEnum := append(c.statusNames(), statusAny)
	args := schema.Merge(
		collectionArgs(),
		orderArgs("desc", store.PostOrderDate,
			store.PostOrderDate, store.PostOrderID, store.PostOrderTitle,
			store.PostOrderSlug, store.PostOrderModified, store.PostOrderMenu),
		map[string]schema.ArgSpec{
			"after": schema.Arg(&schema.Property{
				Description: "Limit response to posts published after a given ISO8601 compliant date.",
				Type:        schema.TypeString,
				Format:      schema.FormatDateTime,
			}),
			"before": schema.Arg(&schema.Property{
				Description: "Limit response to posts published before a given ISO8601 compliant date.",
				Type:        schema.TypeString,
				Format:      schema.FormatDateTime,
			}),
			"author":  idListArg("Limit result set to posts assigned to specific authors."),
			"include": idListArg("Limit result set to specific IDs."),
			"exclude": idListArg("Ensure result set excludes specific IDs."),
			"slug":    stringListArg("Limit result set to posts with one or more specific slugs."),
			"status": schema.Arg(&schema.Property{
				Description: "Limit result set to posts assigned one or more statuses.",
				Type:        schema.TypeArray,
				Items:       &schema.Property{Type: schema.TypeString, Enum: statusEnum},
				Default:     []any{domain.StatusPublish},
			}),
		},
	)
	if c.postType.Hierarchical {
		args["parent"] = schema.Arg(&schema.Property{
			Description: "Limit result set to items with a particular parent ID.",
			Type:        schema.TypeInteger,
		})
	}
	if c.supportsPostFeatures() {
		args["sticky"] = schema.Arg(&schema.Property{
			Description: "Limit result set to items that are sticky.",
			Type:        schema.TypeBoolean,
		})
	}
	for _, tax := range c.deps.Content.TaxonomiesFor(c.postType.Name) {
		args[tax.RestBase] = idListArg(fmt.Sprintf("Limit result set to all items that have the specified term assigned in the %s taxonomy.", tax.Name))
	}
	return args
}

// Register adds the collection, item and schema routes of the post type.
func (c *PostsController) Register(r *rest.Registry) error {
	item := c.base + `/(?P<id>[\d]+)`
	id := idArg("Unique identifier for the object.")

	if err := r.Register(Namespace, c.base, http.MethodGet, rest.Binding{
		Handler: c.GetItems, Permission: c.listPermission, Args: c.listArgs(), Schema: c.Schema,
	}); err != nil {
		return err
	}
	if err := r.Register(Namespace, c.base, http.MethodPost, rest.Binding{
		Handler:    c.CreateItem,
		Permission: c.createPermission,
		Args:       c.writeArgs(schema.EndpointArgs(c.schema, schema.ContextEdit)),
		Schema:     c.Schema,
	}); err != nil {
		return err
	}
	if err := r.Register(Namespace, c.base+"/schema", http.MethodGet, rest.Binding{
		Handler: schemaHandler(c.schema),
	}); err != nil {
		return err
	}
	if err := r.Register(Namespace, item, http.MethodGet, rest.Binding{
		Handler: c.GetItem,
		Args: schema.Merge(id, map[string]schema.ArgSpec{
			"context": schema.ContextArg(schema.ContextView),
			"password": schema.Arg(&schema.Property{
				Description: "The password for the post if it is password protected.",
				Type:        schema.TypeString,
			}),
		}),
		Schema: c.Schema,
	}); err != nil {
		return err
	}
	if err := r.Handle(Namespace, item, rest.Editable, rest.Binding{
		Handler: c.UpdateItem,
		Args:    schema.Merge(c.writeArgs(schema.UpdateArgs(c.schema)), id),
		Schema:  c.Schema,
	}); err != nil {
		return err
	}
	return r.Register(Namespace, item, http.MethodDelete, rest.Binding{
		Handler: c.DeleteItem,
		Args:    schema.Merge(id, forceArg("Whether to bypass trash and force deletion.")),
		Schema:  c.Schema,
	})
}

func (c *PostsController) listPermission(ctx context.Context, req *rest.Request, p *domain.Principal) *rest.Error {
	if !c.deps.Access.Can(p, access.Read, c.postType) {
		return denied(p, rest.CodeCannotView, "Sorry, you are not allowed to view posts in this post type.")
	}
	v, _ := req.Param("context")
	if s, _ := v.(string); s == string(schema.ContextEdit) && !c.deps.Access.Can(p, access.Edit, c.postType) {
		return denied(p, rest.CodeCannotView, "Sorry, you are not allowed to edit posts in this post type.")
	}
	return nil
}

func (c *PostsController) createPermission(ctx context.Context, req *rest.Request, p *domain.Principal) *rest.Error {
	if req.HasParam("id") {
		return rest.NewError(CodePostExists, "Cannot create existing post.").WithStatus(http.StatusBadRequest)
	}
	if !c.deps.Access.Can(p, access.Create, c.postType) {
		return denied(p, rest.CodeCannotCreate, "Sorry, you are not allowed to create posts as this user.")
	}
	return nil
}

type postListParams struct {
	listParams
	Author  []int64  `query:"author"`
	Include []int64  `query:"include"`
	Exclude []int64  `query:"exclude"`
	Slug    []string `query:"slug"`
	Status  []string `query:"status"`
	After   string   `query:"after"`
	Before  string   `query:"before"`
	Parent  *int64   `query:"parent"`
	Sticky  *bool    `query:"sticky"`
}

// readScope reports whether p may read posts in status written by anyone,
// or only its own.
func (c *PostsController) readScope(p *domain.Principal, status string) (all, own bool) {
	others := &domain.Post{Type: c.postType.Name, Status: status, Author: -1}
	if c.deps.Access.Can(p, access.Read, others) {
		return true, true
	}
	if p == nil || p.UserID == 0 {
		return false, false
	}
	mine := &domain.Post{Type: c.postType.Name, Status: status, Author: p.UserID}
	return false, c.deps.Access.Can(p, access.Read, mine)
}

// queryStatuses expands "any" and rejects statuses the caller may not list.
// The second result holds statuses the caller may only see for its own posts.
func (c *PostsController) queryStatuses(p *domain.Principal, requested []string) ([]string, []string, *rest.Error) {
	var out, ownOnly []string
	add := func(name string, all bool) {
		out = append(out, name)
		if !all {
			ownOnly = append(ownOnly, name)
		}
	}
	for _, name := range requested {
		if name == statusAny {
			for _, s := range c.deps.Content.Statuses() {
				if s.Internal || !s.ShowInList {
					continue
				}
				if all, own := c.readScope(p, s.Name); all || own {
					add(s.Name, all)
				}
			}
			continue
		}
		s, ok := c.deps.Content.Status(name)
		if !ok || s.Internal {
			return nil, nil, invalidParam("status", "status is not one of "+strings.Join(c.statusNames(), ", ")+".")
		}
		all, own := c.readScope(p, name)
		if !all && !own {
			return nil, nil, denied(p, rest.CodeCannotView, "Status is forbidden.")
		}
		add(name, all)
	}
	return out, ownOnly, nil
}

// GetItems lists one page of posts the caller can read.
func (c *PostsController) GetItems(ctx context.Context, call *rest.Call) rest.Outcome {
	var params postListParams
	if err := call.Args.Decode(&params); err != nil {
		return rest.FromError(err)
	}
	statuses, ownOnly, restErr := c.queryStatuses(call.Principal, params.Status)
	if restErr != nil {
		return restErr
	}

	q := store.PostQuery{
		Type:     c.postType.Name,
		Statuses: statuses,
		OwnOnly:  ownOnly,
		Authors:  params.Author,
		Slugs:    params.Slug,
		Include:  params.Include,
		Exclude:  params.Exclude,
		Parent:   params.Parent,
		Search:   params.Search,
		OrderBy:  params.OrderBy,
		Desc:     params.desc(),
		Offset:   params.offset(),
		Limit:    params.PerPage,
	}
	if call.Principal != nil {
		q.Owner = call.Principal.UserID
	}
	if c.supportsPostFeatures() {
		q.Sticky = params.Sticky
	}
	if t, ok := parseDate(params.After); ok {
		q.After = t
	}
	if t, ok := parseDate(params.Before); ok {
		q.Before = t
	}
	for _, tax := range c.deps.Content.TaxonomiesFor(c.postType.Name) {
		if ids := call.Args.Ints(tax.RestBase); len(ids) > 0 {
			if q.Terms == nil {
				q.Terms = map[string][]int64{}
			}
			q.Terms[tax.Name] = ids
		}
	}

	posts, total, err := c.deps.Posts.List(ctx, q)
	if err != nil {
		return rest.FromError(err)
	}
	if params.Page > 1 && total > 0 && params.offset() >= total {
		return rest.NewError("post_invalid_page_number",
			"The page number requested is larger than the number of pages available.").
			WithStatus(http.StatusBadRequest)
	}

	rc := schema.ParseContext(params.Context)
	home := c.deps.homeURL(ctx)
	items := make([]map[string]any, 0, len(posts))
	for _, post := range posts {
		items = append(items, c.PrepareItem(post, call.Principal, home, rc, ""))
	}
	return rest.NewResponse(http.StatusOK, items).Paginate(total, params.PerPage, params.Page)
}

// load fetches a post of this controller's type; other types are not found.
func (c *PostsController) load(ctx context.Context, id int64) (*domain.Post, *rest.Error) {
	post, err := c.deps.Posts.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, CodePostInvalidID, "Invalid post ID.")
	}
	if post.Type != c.postType.Name {
		return nil, rest.NewError(CodePostInvalidID, "Invalid post ID.")
	}
	return post, nil
}

// GetItem returns one post.
func (c *PostsController) GetItem(ctx context.Context, call *rest.Call) rest.Outcome {
	post, restErr := c.load(ctx, call.Args.Int("id"))
	if restErr != nil {
		return restErr
	}
	if !c.deps.Access.Can(call.Principal, access.Read, post) {
		return denied(call.Principal, rest.CodeCannotView, "Sorry, you are not allowed to view this post.")
	}
	rc := requestContext(call)
	if rc == schema.ContextEdit && !c.deps.Access.Can(call.Principal, access.Edit, post) {
		return denied(call.Principal, rest.CodeCannotEdit, "Sorry, you are not allowed to edit this post.")
	}
	return rest.OK(c.PrepareItem(post, call.Principal, c.deps.homeURL(ctx), rc, call.Args.String("password")))
}

// CreateItem stores a new post and answers 201 with its location.
func (c *PostsController) CreateItem(ctx context.Context, call *rest.Call) rest.Outcome {
	now := c.deps.now()
	post := &domain.Post{
		Type:          c.postType.Name,
		Status:        domain.StatusDraft,
		CommentStatus: "open",
		PingStatus:    "open",
	}
	if call.Principal != nil {
		post.Author = call.Principal.UserID
	}
	if c.postType.Hierarchical {
		post.CommentStatus = "closed"
		post.PingStatus = "closed"
	}
	if restErr := c.apply(ctx, call, post); restErr != nil {
		return restErr
	}
	if post.Date.IsZero() {
		post.Date = now
		post.DateGMT = now.UTC()
	}
	schedule(post, now)
	if post.Slug == "" {
		post.Slug = domain.Slugify(post.Title)
	}
	post.Modified = now
	post.ModifiedGMT = now.UTC()

	if err := c.deps.Posts.Create(ctx, post); err != nil {
		return mapStoreError(err, CodePostInvalidID, "Invalid post ID.")
	}

	c.deps.log(ctx, "posts").Info("post created",
		slog.Int64("post_id", post.ID),
		slog.String("post_type", post.Type),
		slog.String("status", post.Status))
	c.deps.emit(ctx, events.PostCreated, post.Type, post.ID,
		map[string]any{"status": post.Status, "slug": post.Slug})

	resp := rest.NewResponse(http.StatusCreated,
		c.PrepareItem(post, call.Principal, c.deps.homeURL(ctx), schema.ContextEdit, ""))
	resp.Header.Set("Location", c.deps.url(c.itemPath(post.ID)))
	return resp
}

// UpdateItem changes the supplied fields of a post.
func (c *PostsController) UpdateItem(ctx context.Context, call *rest.Call) rest.Outcome {
	post, restErr := c.load(ctx, call.Args.Int("id"))
	if restErr != nil {
		return restErr
	}
	if !c.deps.Access.Can(call.Principal, access.Edit, post) {
		return denied(call.Principal, rest.CodeCannotEdit, "Sorry, you are not allowed to edit this post.")
	}
	if restErr := c.apply(ctx, call, post); restErr != nil {
		return restErr
	}
	now := c.deps.now()
	schedule(post, now)
	post.Modified = now
	post.ModifiedGMT = now.UTC()

	if err := c.deps.Posts.Update(ctx, post); err != nil {
		return mapStoreError(err, CodePostInvalidID, "Invalid post ID.")
	}

	c.deps.emit(ctx, events.PostUpdated, post.Type, post.ID,
		map[string]any{"status": post.Status, "slug": post.Slug})
	return rest.OK(c.PrepareItem(post, call.Principal, c.deps.homeURL(ctx), schema.ContextEdit, ""))
}

// schedule turns a publish dated after now into a scheduled post.
func schedule(post *domain.Post, now time.Time) {
	if post.Status == domain.StatusPublish && post.Date.After(now) {
		post.Status = domain.StatusFuture
	}
}

// DeleteItem trashes a post, or removes it permanently when force is set.
func (c *PostsController) DeleteItem(ctx context.Context, call *rest.Call) rest.Outcome {
	post, restErr := c.load(ctx, call.Args.Int("id"))
	if restErr != nil {
		return restErr
	}
	if !c.deps.Access.Can(call.Principal, access.Delete, post) {
		return denied(call.Principal, rest.CodeCannotDelete, "Sorry, you are not allowed to delete this post.")
	}
	home := c.deps.homeURL(ctx)
	log := c.deps.log(ctx, "posts")

	if call.Args.Bool("force") {
		previous := c.PrepareItem(post, call.Principal, home, schema.ContextEdit, "")
		if err := c.deps.Posts.Delete(ctx, post.ID); err != nil {
			return mapStoreError(err, CodePostInvalidID, "Invalid post ID.")
		}
		log.Info("post deleted", slog.Int64("post_id", post.ID))
		c.deps.emit(ctx, events.PostDeleted, post.Type, post.ID, nil)
		return rest.OK(map[string]any{"deleted": true, "previous": previous})
	}

	if post.Status == domain.StatusTrash {
		return rest.NewError(rest.CodeAlreadyTrashed, "The post has already been deleted.")
	}
	post.Status = domain.StatusTrash
	now := c.deps.now()
	post.Modified = now
	post.ModifiedGMT = now.UTC()
	if err := c.deps.Posts.Update(ctx, post); err != nil {
		return mapStoreError(err, CodePostInvalidID, "Invalid post ID.")
	}
	log.Info("post trashed", slog.Int64("post_id", post.ID))
	c.deps.emit(ctx, events.PostTrashed, post.Type, post.ID, nil)
	return rest.OK(c.PrepareItem(post, call.Principal, home, schema.ContextEdit, ""))
}

// apply copies the supplied arguments onto post, enforcing the author,
// publish and term assignment capabilities.
func (c *PostsController) apply(ctx context.Context, call *rest.Call, post *domain.Post) *rest.Error {
	args := call.Args
	p := call.Principal

	if args.Has("title") {
		post.Title = args.String("title")
	}
	if args.Has("content") {
		post.Content = args.String("content")
	}
	if args.Has("excerpt") {
		post.Excerpt = args.String("excerpt")
	}
	if args.Has("password") {
		post.Password = args.String("password")
	}
	if args.Has("slug") {
		post.Slug = domain.Slugify(args.String("slug"))
	}
	if args.Has("comment_status") {
		post.CommentStatus = args.String("comment_status")
	}
	if args.Has("ping_status") {
		post.PingStatus = args.String("ping_status")
	}
	if c.supportsPostFeatures() {
		if args.Has("format") {
			post.Format = args.String("format")
		}
		if args.Has("sticky") {
			post.Sticky = args.Bool("sticky")
		}
	}
	if args.Has("date") {
		if t, ok := parseDate(args.String("date")); ok {
			post.Date = t
			post.DateGMT = t.UTC()
		}
	}
	if args.Has("date_gmt") {
		if t, ok := parseDate(args.String("date_gmt")); ok {
			post.DateGMT = t.UTC()
			if !args.Has("date") {
				post.Date = t.UTC()
			}
		}
	}

	if c.postType.Hierarchical {
		if args.Has("menu_order") {
			post.MenuOrder = int(args.Int("menu_order"))
		}
		if args.Has("parent") {
			parent := args.Int("parent")
			if parent != 0 {
				if parent == post.ID {
					return invalidParam("parent", "A post cannot be its own parent.")
				}
				pp, err := c.deps.Posts.GetByID(ctx, parent)
				if err != nil || pp.Type != post.Type {
					return rest.NewError(CodePostInvalidParent, "Invalid post parent ID.").
						WithStatus(http.StatusBadRequest)
				}
			}
			post.Parent = parent
		}
	}

	if args.Has("author") {
		author := args.Int("author")
		if !p.IsUser(author) && !p.HasCap(c.postType.Cap("edit_others")) {
			return denied(p, rest.CodeCannotEditOthers, "Sorry, you are not allowed to edit posts as this user.")
		}
		if _, err := c.deps.Users.GetByID(ctx, author); err != nil {
			return mapStoreError(err, CodeUserInvalidID, "Invalid author ID.").WithStatus(http.StatusBadRequest)
		}
		post.Author = author
	}

	if args.Has("status") {
		status := args.String("status")
		switch status {
		case domain.StatusPublish, domain.StatusFuture, domain.StatusPrivate:
			if !c.deps.Access.Can(p, access.Publish, post) {
				return denied(p, rest.CodeCannotPublish, "Sorry, you are not allowed to publish posts in this post type.")
			}
		}
		post.Status = status
	}

	for _, tax := range c.deps.Content.TaxonomiesFor(c.postType.Name) {
		if !args.Has(tax.RestBase) {
			continue
		}
		if !c.deps.Access.Can(p, access.Assign, tax) {
			return denied(p, CodeCannotAssignTerm, "Sorry, you are not allowed to assign the provided terms.")
		}
		ids, restErr := c.termIDs(ctx, tax, args.Ints(tax.RestBase))
		if restErr != nil {
			return restErr
		}
		if post.Terms == nil {
			post.Terms = map[string][]int64{}
		}
		post.Terms[tax.Name] = ids
	}
	return nil
}

// termIDs checks that every ID names a term of tax and drops duplicates.
func (c *PostsController) termIDs(ctx context.Context, tax *domain.Taxonomy, ids []int64) ([]int64, *rest.Error) {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		term, err := c.deps.Terms.GetByID(ctx, id)
		if err != nil || term.Taxonomy != tax.Name {
			return nil, invalidParam(tax.RestBase, fmt.Sprintf("Invalid term ID %d.", id))
		}
		out = append(out, id)
	}
	return out, nil
}

func (c *PostsController) itemPath(id int64) string {
	return "/wp" + c.base + "/" + strconv.FormatInt(id, 10)
}

func (c *PostsController) permalink(home string, post *domain.Post) string {
	id := strconv.FormatInt(post.ID, 10)
	switch c.postType.Name {
	case "post":
		return home + "/?p=" + id
	case "page":
		return home + "/?page_id=" + id
	}
	return home + "/?" + url.Values{"post_type": {c.postType.Name}, "p": {id}}.Encode()
}

func excerpt(post *domain.Post) string {
	if post.Excerpt != "" {
		return post.Excerpt
	}
	words := strings.Fields(post.Content)
	if len(words) <= excerptWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:excerptWords], " ") + excerptMore
}

// PrepareItem projects a post for the given context. Password-protected
// content is only rendered for callers who can edit the post or who supplied
// the password.
func (c *PostsController) PrepareItem(
	post *domain.Post,
	p *domain.Principal,
	home string,
	rc schema.Context,
	password string,
) map[string]any {
	protected := post.IsProtected()
	reveal := !protected || password == post.Password || c.deps.Access.Can(p, access.Edit, post)

	rendered, renderedExcerpt := post.Content, excerpt(post)
	if !reveal {
		rendered, renderedExcerpt = "", ""
	}
	guid := post.GUID
	if guid == "" {
		guid = c.permalink(home, post)
	}
	dateGMT := post.DateGMT
	if dateGMT.IsZero() {
		dateGMT = post.Date
	}
	modifiedGMT := post.ModifiedGMT
	if modifiedGMT.IsZero() {
		modifiedGMT = post.Modified
	}

	item := map[string]any{
		"id":             post.ID,
		"date":           formatDate(post.Date),
		"date_gmt":       formatDateGMT(dateGMT),
		"guid":           map[string]any{"raw": guid, "rendered": guid},
		"modified":       formatDate(post.Modified),
		"modified_gmt":   formatDateGMT(modifiedGMT),
		"slug":           post.Slug,
		"status":         post.Status,
		"type":           post.Type,
		"link":           c.permalink(home, post),
		"password":       post.Password,
		"title":          map[string]any{"raw": post.Title, "rendered": post.Title},
		"content":        map[string]any{"raw": post.Content, "rendered": rendered, "protected": protected},
		"excerpt":        map[string]any{"raw": post.Excerpt, "rendered": renderedExcerpt, "protected": protected},
		"author":         post.Author,
		"comment_status": post.CommentStatus,
		"ping_status":    post.PingStatus,
	}
	if c.supportsPostFeatures() {
		format := post.Format
		if format == "" {
			format = "standard"
		}
		item["format"] = format
		item["sticky"] = post.Sticky
	}
	if c.postType.Hierarchical {
		item["parent"] = post.Parent
		item["menu_order"] = post.MenuOrder
	}
	taxonomies := c.deps.Content.TaxonomiesFor(c.postType.Name)
	for _, tax := range taxonomies {
		item[tax.RestBase] = append([]int64{}, post.TermIDs(tax.Name)...)
	}
	data := schema.FilterByContext(item, c.schema, rc)

	self := c.itemPath(post.ID)
	links := rest.Links{}
	links.Add("self", rest.Link{Href: c.deps.url(self)})
	links.Add("collection", rest.Link{Href: c.deps.url("/wp" + c.base)})
	links.Add("about", rest.Link{Href: c.deps.url("/wp/types/" + c.postType.Name)})
	if post.Author != 0 {
		links.Add("author", rest.Link{Href: c.deps.url(userPath(post.Author)), Embeddable: true})
	}
	if c.postType.Hierarchical && post.Parent != 0 {
		links.Add("up", rest.Link{Href: c.deps.url(c.itemPath(post.Parent)), Embeddable: true})
	}
	for _, tax := range taxonomies {
		links.Add("https://api.w.org/term", rest.Link{
			Href:       c.deps.url(termsPath(tax.Name) + "?post=" + strconv.FormatInt(post.ID, 10)),
			Embeddable: true,
			Taxonomy:   tax.Name,
		})
	}
	data["_links"] = links
	return data
}
