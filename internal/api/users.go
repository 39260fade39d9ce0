package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/phrazzld/press-api/internal/domain"
	"github.com/phrazzld/press-api/internal/rest"
	"github.com/phrazzld/press-api/internal/schema"
)

// capEditUsers lets a principal see other users in edit context.
const capEditUsers = "edit_users"

// UsersController exposes user profiles, the target of post author links.
type UsersController struct {
	deps   *Deps
	schema *schema.Schema
}

// NewUsersController creates a UsersController.
func NewUsersController(d *Deps) *UsersController {
	return &UsersController{deps: d, schema: userSchema()}
}

func userSchema() *schema.Schema {
	return schema.New("user", map[string]*schema.Property{
		"id": {
			Description: "Unique identifier for the user.",
			Type:        schema.TypeInteger,
			Context:     schema.All,
			Readonly:    true,
		},
		"name": {
			Description: "Display name for the user.",
			Type:        schema.TypeString,
			Context:     schema.All,
		},
		"slug": {
			Description: "An alphanumeric identifier for the user.",
			Type:        schema.TypeString,
			Context:     schema.All,
		},
		"link": {
			Description: "Author URL of the user.",
			Type:        schema.TypeString,
			Format:      schema.FormatURI,
			Context:     schema.All,
			Readonly:    true,
		},
		"username": {
			Description: "Login name for the user.",
			Type:        schema.TypeString,
			Context:     schema.EditOnly,
		},
		"email": {
			Description: "The email address for the user.",
			Type:        schema.TypeString,
			Format:      schema.FormatEmail,
			Context:     schema.EditOnly,
		},
		"roles": {
			Description: "Roles assigned to the user.",
			Type:        schema.TypeArray,
			Items:       &schema.Property{Type: schema.TypeString},
			Context:     schema.EditOnly,
		},
	})
}

// Schema returns the user schema.
func (c *UsersController) Schema() *schema.Schema { return c.schema }

// Register adds the user routes.
func (c *UsersController) Register(r *rest.Registry) error {
	contextArgs := map[string]schema.ArgSpec{"context": schema.ContextArg(schema.ContextView)}
	if err := r.Register(Namespace, "/users/me", http.MethodGet, rest.Binding{
		Handler: c.GetCurrentItem,
		Permission: func(ctx context.Context, req *rest.Request, p *domain.Principal) *rest.Error {
			if p == nil {
				return rest.NewError(CodeNotLoggedIn, "You are not currently logged in.").
					WithStatus(http.StatusUnauthorized)
			}
			return nil
		},
		Args:   contextArgs,
		Schema: c.Schema,
	}); err != nil {
		return err
	}
	if err := r.Register(Namespace, "/users/schema", http.MethodGet, rest.Binding{
		Handler: schemaHandler(c.schema),
	}); err != nil {
		return err
	}
	return r.Register(Namespace, `/users/(?P<id>[\d]+)`, http.MethodGet, rest.Binding{
		Handler: c.GetItem,
		Args:    schema.Merge(idArg("Unique identifier for the user."), contextArgs),
		Schema:  c.Schema,
	})
}

// GetItem returns one user. Edit context is limited to the user themself
// and to principals allowed to edit users.
func (c *UsersController) GetItem(ctx context.Context, call *rest.Call) rest.Outcome {
	user, err := c.deps.Users.GetByID(ctx, call.Args.Int("id"))
	if err != nil {
		return mapStoreError(err, CodeUserInvalidID, "Invalid user ID.")
	}
	rc := requestContext(call)
	if rc == schema.ContextEdit && !call.Principal.IsUser(user.ID) && !call.Principal.HasCap(capEditUsers) {
		return denied(call.Principal, rest.CodeCannotView, "Sorry, you are not allowed to list users.")
	}
	return rest.OK(c.PrepareItem(user, c.deps.homeURL(ctx), rc))
}

// GetCurrentItem returns the authenticated user.
func (c *UsersController) GetCurrentItem(ctx context.Context, call *rest.Call) rest.Outcome {
	user, err := c.deps.Users.GetByID(ctx, call.Principal.UserID)
	if err != nil {
		return mapStoreError(err, CodeUserInvalidID, "Invalid user ID.")
	}
	return rest.OK(c.PrepareItem(user, c.deps.homeURL(ctx), requestContext(call)))
}

// PrepareItem projects a user for the given context.
func (c *UsersController) PrepareItem(u *domain.User, home string, rc schema.Context) map[string]any {
	name := u.DisplayName
	if name == "" {
		name = u.Login
	}
	data := schema.FilterByContext(map[string]any{
		"id":       u.ID,
		"name":     name,
		"slug":     domain.Slugify(u.Login),
		"link":     home + "/?author=" + strconv.FormatInt(u.ID, 10),
		"username": u.Login,
		"email":    u.Email,
		"roles":    append([]string{}, u.Roles...),
	}, c.schema, rc)

	links := rest.Links{}
	links.Add("self", rest.Link{Href: c.deps.url(userPath(u.ID))})
	data["_links"] = links
	return data
}

func userPath(id int64) string {
	return "/wp/users/" + strconv.FormatInt(id, 10)
}
