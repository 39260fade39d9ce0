package domain

// Option names backing the site settings.
const (
	OptionName         = "blogname"
	OptionDescription  = "blogdescription"
	OptionURL          = "siteurl"
	OptionHome         = "home"
	OptionEmail        = "admin_email"
	OptionTimezone     = "timezone_string"
	OptionDateFormat   = "date_format"
	OptionTimeFormat   = "time_format"
	OptionStartOfWeek  = "start_of_week"
	OptionLanguage     = "WPLANG"
	OptionPostsPerPage = "posts_per_page"
)

// Site is the set of site-wide settings exposed at /site.
type Site struct {
	Name         string
	Description  string
	URL          string
	Home         string
	Email        string
	Timezone     string
	DateFormat   string
	TimeFormat   string
	StartOfWeek  int
	Language     string
	PostsPerPage int
}

// DefaultOptions are the values a fresh site starts with.
func DefaultOptions() map[string]string {
	return map[string]string{
		OptionName:         "Press",
		OptionDescription:  "Just another Press site",
		OptionURL:          "http://localhost:8080",
		OptionHome:         "http://localhost:8080",
		OptionEmail:        "admin@example.com",
		OptionTimezone:     "UTC",
		OptionDateFormat:   "F j, Y",
		OptionTimeFormat:   "g:i a",
		OptionStartOfWeek:  "1",
		OptionLanguage:     "en_US",
		OptionPostsPerPage: "10",
	}
}
