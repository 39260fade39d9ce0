package domain

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Post statuses registered by default.
const (
	StatusPublish   = "publish"
	StatusFuture    = "future"
	StatusDraft     = "draft"
	StatusPending   = "pending"
	StatusPrivate   = "private"
	StatusTrash     = "trash"
	StatusAutoDraft = "auto-draft"
	StatusInherit   = "inherit"
)

// Post is a single content item of any post type.
type Post struct {
	ID            int64
	Type          string
	Status        string
	Slug          string
	Title         string
	Content       string
	Excerpt       string
	Author        int64
	Date          time.Time
	DateGMT       time.Time
	Modified      time.Time
	ModifiedGMT   time.Time
	Password      string
	CommentStatus string
	PingStatus    string
	Sticky        bool
	Format        string
	Parent        int64
	MenuOrder     int
	GUID          string
	// Terms maps taxonomy name to assigned term IDs.
	Terms map[string][]int64
}

// Validate checks the fields every stored post must carry.
func (p *Post) Validate() error {
	if p.Type == "" {
		return NewValidationError("type", "cannot be empty", ErrInvalidPostType)
	}
	if p.Status == "" {
		return NewValidationError("status", "cannot be empty", ErrInvalidStatus)
	}
	if p.ID < 0 {
		return NewValidationError("id", "cannot be negative", ErrInvalidID)
	}
	if p.Parent < 0 {
		return NewValidationError("parent", "cannot be negative", ErrInvalidID)
	}
	return nil
}

// IsProtected reports whether the post content is behind a password.
func (p *Post) IsProtected() bool {
	return p.Password != ""
}

// TermIDs returns the term IDs assigned in a taxonomy.
func (p *Post) TermIDs(taxonomy string) []int64 {
	if p.Terms == nil {
		return nil
	}
	return p.Terms[taxonomy]
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify turns a title into a URL slug: accents are stripped, letters lowered,
// and every run of other characters becomes a single hyphen.
func Slugify(title string) string {
	plain, _, err := transform.String(stripMarks, title)
	if err != nil {
		plain = title
	}

	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(plain) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			hyphen = false
		case r == '_' || r == '-' || unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r):
			if !hyphen && b.Len() > 0 {
				b.WriteByte('-')
				hyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
