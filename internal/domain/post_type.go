package domain

// PostType describes a registered kind of post (post, page, attachment, ...).
type PostType struct {
	Name         string            `json:"name"`
	Label        string            `json:"label"`
	Labels       map[string]string `json:"labels,omitempty"`
	Description  string            `json:"description,omitempty"`
	Hierarchical bool              `json:"hierarchical"`
	Public       bool              `json:"public"`
	ShowInREST   bool              `json:"show_in_rest"`
	// RestBase is the collection segment, e.g. "posts" for /wp/posts.
	RestBase string `json:"rest_base,omitempty"`
	// CapabilityType is the singular used to build capability names (edit_posts, edit_pages).
	CapabilityType string   `json:"capability_type,omitempty"`
	Taxonomies     []string `json:"taxonomies,omitempty"`
}

// Cap returns the capability name for a verb, e.g. Cap("edit") on pages is "edit_pages".
func (t *PostType) Cap(verb string) string {
	base := t.CapabilityType
	if base == "" {
		base = "post"
	}
	return verb + "_" + base + "s"
}

// PostStatus describes a registered post status.
type PostStatus struct {
	Name       string `json:"name"`
	Label      string `json:"label"`
	Public     bool   `json:"public"`
	Protected  bool   `json:"protected"`
	Private    bool   `json:"private"`
	Queryable  bool   `json:"queryable"`
	ShowInList bool   `json:"show_in_list"`
	// Internal statuses (auto-draft, inherit) are never exposed.
	Internal bool `json:"internal"`
}

// Taxonomy describes a registered taxonomy.
type Taxonomy struct {
	Name         string            `json:"name"`
	Label        string            `json:"label"`
	Labels       map[string]string `json:"labels,omitempty"`
	Description  string            `json:"description,omitempty"`
	Hierarchical bool              `json:"hierarchical"`
	Public       bool              `json:"public"`
	ShowCloud    bool              `json:"show_cloud"`
	ShowInREST   bool              `json:"show_in_rest"`
	// RestBase is the post field carrying assigned terms, e.g. "categories".
	RestBase    string   `json:"rest_base,omitempty"`
	ObjectTypes []string `json:"object_types,omitempty"`
}

// AppliesTo reports whether the taxonomy is attached to the post type.
func (t *Taxonomy) AppliesTo(postType string) bool {
	for _, ot := range t.ObjectTypes {
		if ot == postType {
			return true
		}
	}
	return false
}

// Term is a single entry of a taxonomy.
type Term struct {
	ID          int64
	Taxonomy    string
	Name        string
	Slug        string
	Description string
	Parent      int64
	Count       int
}

// Validate checks the fields every stored term must carry.
func (t *Term) Validate() error {
	if t.Taxonomy == "" {
		return NewValidationError("taxonomy", "cannot be empty", ErrInvalidTaxonomy)
	}
	if t.Name == "" {
		return NewValidationError("name", "cannot be empty", ErrEmptyName)
	}
	if t.Parent < 0 {
		return NewValidationError("parent", "cannot be negative", ErrInvalidID)
	}
	return nil
}
