package api

import "github.com/phrazzld/press-api/internal/rest"

// Registrar priorities. Lower runs first.
const (
	PriorityRegistries = 10
	PriorityContent    = 20
	PriorityPosts      = 30
	PriorityAuth       = 40
)

// Registrars returns the registrars of every built-in controller: the
// registries, terms, users and site, one posts controller per REST-enabled
// post type, and the token endpoint when issuer is not nil.
func Registrars(d *Deps, issuer TokenIssuer) []rest.Registrar {
	regs := []rest.Registrar{
		{Name: "types", Priority: PriorityRegistries, Register: NewPostTypesController(d).Register},
		{Name: "statuses", Priority: PriorityRegistries, Register: NewPostStatusesController(d).Register},
		{Name: "taxonomies", Priority: PriorityRegistries, Register: NewTaxonomiesController(d).Register},
		{Name: "terms", Priority: PriorityContent, Register: NewTermsController(d).Register},
		{Name: "users", Priority: PriorityContent, Register: NewUsersController(d).Register},
		{Name: "site", Priority: PriorityContent, Register: NewSiteController(d).Register},
	}
	for _, pt := range d.Content.RESTPostTypes() {
		regs = append(regs, rest.Registrar{
			Name:     "posts:" + pt.Name,
			Priority: PriorityPosts,
			Register: NewPostsController(d, pt).Register,
		})
	}
	if issuer != nil {
		regs = append(regs, rest.Registrar{
			Name:     "token",
			Priority: PriorityAuth,
			Register: NewTokenController(d, issuer).Register,
		})
	}
	return regs
}

// NewRegistry builds the frozen route registry from the built-in registrars
// followed by extra ones.
func NewRegistry(d *Deps, issuer TokenIssuer, extra ...rest.Registrar) (*rest.Registry, error) {
	return rest.Build(append(Registrars(d, issuer), extra...)...)
}
