package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/phrazzld/press-api/internal/domain"
	"github.com/phrazzld/press-api/internal/events"
	"github.com/phrazzld/press-api/internal/rest"
	"github.com/phrazzld/press-api/internal/schema"
	"github.com/phrazzld/press-api/internal/service/access"
	"github.com/spf13/cast"
)

// siteFields maps site schema properties to the options backing them.
var siteFields = map[string]string{
	"title":          domain.OptionName,
	"description":    domain.OptionDescription,
	"url":            domain.OptionURL,
	"home":           domain.OptionHome,
	"email":          domain.OptionEmail,
	"timezone":       domain.OptionTimezone,
	"date_format":    domain.OptionDateFormat,
	"time_format":    domain.OptionTimeFormat,
	"start_of_week":  domain.OptionStartOfWeek,
	"language":       domain.OptionLanguage,
	"posts_per_page": domain.OptionPostsPerPage,
}

// SiteController serves the site-wide settings.
type SiteController struct {
	deps   *Deps
	schema *schema.Schema
}

// NewSiteController creates a SiteController.
func NewSiteController(d *Deps) *SiteController {
	return &SiteController{deps: d, schema: siteSchema()}
}

func siteSchema() *schema.Schema {
	return schema.New("site", map[string]*schema.Property{
		"title": {
			Description: "Site title.",
			Type:        schema.TypeString,
			Context:     schema.All,
		},
		"description": {
			Description: "Site tagline.",
			Type:        schema.TypeString,
			Context:     schema.All,
		},
		"url": {
			Description: "Site URL.",
			Type:        schema.TypeString,
			Format:      schema.FormatURI,
			Context:     schema.All,
		},
		"home": {
			Description: "Site home address.",
			Type:        schema.TypeString,
			Format:      schema.FormatURI,
			Context:     schema.All,
		},
		"email": {
			Description: "This address is used for admin purposes, like new user notification.",
			Type:        schema.TypeString,
			Format:      schema.FormatEmail,
			Context:     schema.EditOnly,
		},
		"timezone": {
			Description: "A city in the same timezone as you.",
			Type:        schema.TypeString,
			Context:     schema.ViewEdit,
		},
		"date_format": {
			Description: "A date format for all date strings.",
			Type:        schema.TypeString,
			Context:     schema.ViewEdit,
		},
		"time_format": {
			Description: "A time format for all time strings.",
			Type:        schema.TypeString,
			Context:     schema.ViewEdit,
		},
		"start_of_week": {
			Description: "A day number of the week that the week should start on.",
			Type:        schema.TypeInteger,
			Minimum:     schema.Int64(0),
			Maximum:     schema.Int64(6),
			Context:     schema.ViewEdit,
		},
		"language": {
			Description: "Site language code.",
			Type:        schema.TypeString,
			Context:     schema.ViewEdit,
		},
		"posts_per_page": {
			Description: "Blog pages show at most.",
			Type:        schema.TypeInteger,
			Minimum:     schema.Int64(1),
			Context:     schema.ViewEdit,
		},
	})
}

// Schema returns the site schema.
func (c *SiteController) Schema() *schema.Schema { return c.schema }

// Register adds the site routes.
func (c *SiteController) Register(r *rest.Registry) error {
	if err := r.Register(Namespace, "/site", http.MethodGet, rest.Binding{
		Handler:    c.GetItem,
		Permission: editContextPermission(access.CapManageOptions, "Sorry, you are not allowed to manage options for this site."),
		Args:       map[string]schema.ArgSpec{"context": schema.ContextArg(schema.ContextView)},
		Schema:     c.Schema,
	}); err != nil {
		return err
	}
	updateArgs := schema.UpdateArgs(c.schema)
	tz := updateArgs["timezone"]
	tz.Validate = validateTimezone
	updateArgs["timezone"] = tz
	if err := r.Handle(Namespace, "/site", rest.Editable, rest.Binding{
		Handler:    c.UpdateItem,
		Permission: c.updatePermission,
		Args:       updateArgs,
		Schema:     c.Schema,
	}); err != nil {
		return err
	}
	return r.Register(Namespace, "/site/schema", http.MethodGet, rest.Binding{
		Handler: schemaHandler(c.schema),
	})
}

func validateTimezone(value any, name string) error {
	s, ok := value.(string)
	if !ok {
		return &schema.ValidationError{Code: schema.CodeInvalidParam, Param: name,
			Message: fmt.Sprintf("%s is not of type string.", name)}
	}
	if _, err := time.LoadLocation(s); err != nil {
		return &schema.ValidationError{Code: schema.CodeInvalidParam, Param: name,
			Message: fmt.Sprintf("%s is not a known timezone.", name)}
	}
	return nil
}

func (c *SiteController) updatePermission(ctx context.Context, req *rest.Request, p *domain.Principal) *rest.Error {
	if !c.deps.Access.Can(p, access.Edit, &domain.Site{}) {
		return denied(p, rest.CodeCannotEdit, "Sorry, you are not allowed to manage options for this site.")
	}
	return nil
}

func optionNames() []string {
	names := make([]string, 0, len(siteFields))
	for _, opt := range siteFields {
		names = append(names, opt)
	}
	sort.Strings(names)
	return names
}

// load reads the site settings, falling back to defaults for unset options.
func (c *SiteController) load(ctx context.Context) (*domain.Site, error) {
	values, err := c.deps.Options.GetMany(ctx, optionNames())
	if err != nil {
		return nil, err
	}
	defaults := domain.DefaultOptions()
	get := func(name string) string {
		if v, ok := values[name]; ok {
			return v
		}
		return defaults[name]
	}
	return &domain.Site{
		Name:         get(domain.OptionName),
		Description:  get(domain.OptionDescription),
		URL:          get(domain.OptionURL),
		Home:         get(domain.OptionHome),
		Email:        get(domain.OptionEmail),
		Timezone:     get(domain.OptionTimezone),
		DateFormat:   get(domain.OptionDateFormat),
		TimeFormat:   get(domain.OptionTimeFormat),
		StartOfWeek:  cast.ToInt(get(domain.OptionStartOfWeek)),
		Language:     get(domain.OptionLanguage),
		PostsPerPage: cast.ToInt(get(domain.OptionPostsPerPage)),
	}, nil
}

// GetItem returns the site settings.
func (c *SiteController) GetItem(ctx context.Context, call *rest.Call) rest.Outcome {
	site, err := c.load(ctx)
	if err != nil {
		return rest.FromError(err)
	}
	return rest.OK(c.PrepareItem(site, requestContext(call)))
}

// UpdateItem stores the supplied settings and returns the result in edit context.
func (c *SiteController) UpdateItem(ctx context.Context, call *rest.Call) rest.Outcome {
	values := map[string]string{}
	for field, option := range siteFields {
		if call.Args.Has(field) {
			values[option] = cast.ToString(call.Args[field])
		}
	}
	if len(values) > 0 {
		if err := c.deps.Options.Set(ctx, values); err != nil {
			return rest.FromError(err)
		}
		changed := make([]string, 0, len(values))
		for name := range values {
			changed = append(changed, name)
		}
		sort.Strings(changed)
		c.deps.log(ctx, "site").Info("site settings updated", slog.Any("options", changed))
		c.deps.emit(ctx, events.SiteUpdated, "", 0, map[string]any{"options": changed})
	}

	site, err := c.load(ctx)
	if err != nil {
		return rest.FromError(err)
	}
	return rest.OK(c.PrepareItem(site, schema.ContextEdit))
}

// PrepareItem projects the site settings for the given context.
func (c *SiteController) PrepareItem(s *domain.Site, rc schema.Context) map[string]any {
	return schema.FilterByContext(map[string]any{
		"title":          s.Name,
		"description":    s.Description,
		"url":            s.URL,
		"home":           s.Home,
		"email":          s.Email,
		"timezone":       s.Timezone,
		"date_format":    s.DateFormat,
		"time_format":    s.TimeFormat,
		"start_of_week":  s.StartOfWeek,
		"language":       s.Language,
		"posts_per_page": s.PostsPerPage,
	}, c.schema, rc)
}
