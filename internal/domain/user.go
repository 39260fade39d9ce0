package domain

import "errors"

// Roles registered by default.
const (
	RoleAdministrator = "administrator"
	RoleEditor        = "editor"
	RoleAuthor        = "author"
	RoleContributor   = "contributor"
	RoleSubscriber    = "subscriber"
)

// ErrEmptyLogin is returned when a user has no login name.
var ErrEmptyLogin = errors.New("login cannot be empty")

// User is a registered account.
type User struct {
	ID           int64
	Login        string
	Email        string
	DisplayName  string
	Roles        []string
	PasswordHash string
}

// Validate checks the fields every stored user must carry.
func (u *User) Validate() error {
	if u.Login == "" {
		return NewValidationError("login", "cannot be empty", ErrEmptyLogin)
	}
	if u.ID < 0 {
		return NewValidationError("id", "cannot be negative", ErrInvalidID)
	}
	return nil
}

// Principal returns the authenticated identity for this user.
func (u *User) Principal() *Principal {
	roles := make([]string, len(u.Roles))
	copy(roles, u.Roles)
	return &Principal{UserID: u.ID, Login: u.Login, Roles: roles}
}

// ApplicationPassword is a named, revocable credential for HTTP basic auth.
type ApplicationPassword struct {
	UserID int64
	Name   string
	Hash   string
}

// Principal is the authenticated identity attached to a request.
// A nil *Principal is an anonymous visitor.
type Principal struct {
	UserID int64
	Login  string
	Roles  []string
}

// HasCap reports whether any of the principal's roles grants the capability.
// It is nil-safe: anonymous visitors hold no capabilities.
func (p *Principal) HasCap(capability string) bool {
	if p == nil {
		return false
	}
	for _, role := range p.Roles {
		if roleCaps[role][capability] {
			return true
		}
	}
	return false
}

// IsUser reports whether the principal is the given user.
func (p *Principal) IsUser(id int64) bool {
	return p != nil && p.UserID != 0 && p.UserID == id
}

func caps(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

var (
	subscriberCaps  = []string{"read"}
	contributorCaps = append([]string{"edit_posts", "delete_posts"}, subscriberCaps...)
	authorCaps      = append([]string{
		"publish_posts", "edit_published_posts", "delete_published_posts", "upload_files",
	}, contributorCaps...)
	editorCaps = append([]string{
		"edit_others_posts", "delete_others_posts", "delete_private_posts", "edit_private_posts",
		"read_private_posts", "edit_pages", "edit_others_pages", "edit_published_pages",
		"publish_pages", "delete_pages", "delete_others_pages", "delete_published_pages",
		"delete_private_pages", "edit_private_pages", "read_private_pages", "manage_categories",
		"moderate_comments",
	}, authorCaps...)
	administratorCaps = append([]string{
		"manage_options", "list_users", "edit_users", "promote_users",
	}, editorCaps...)
)

var roleCaps = map[string]map[string]bool{
	RoleSubscriber:    caps(subscriberCaps...),
	RoleContributor:   caps(contributorCaps...),
	RoleAuthor:        caps(authorCaps...),
	RoleEditor:        caps(editorCaps...),
	RoleAdministrator: caps(administratorCaps...),
}

// KnownRole reports whether the role is registered.
func KnownRole(role string) bool {
	_, ok := roleCaps[role]
	return ok
}
