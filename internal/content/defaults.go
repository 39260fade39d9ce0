package content

import "github.com/phrazzld/press-api/internal/domain"

// DefaultPostTypes are the post types every site starts with.
func DefaultPostTypes() []domain.PostType {
	return []domain.PostType{
		{
			Name:           "post",
			Label:          "Posts",
			Labels:         map[string]string{"singular_name": "Post", "add_new_item": "Add New Post"},
			Public:         true,
			ShowInREST:     true,
			RestBase:       "posts",
			CapabilityType: "post",
		},
		{
			Name:           "page",
			Label:          "Pages",
			Labels:         map[string]string{"singular_name": "Page", "add_new_item": "Add New Page"},
			Hierarchical:   true,
			Public:         true,
			ShowInREST:     true,
			RestBase:       "pages",
			CapabilityType: "page",
		},
		{
			Name:           "attachment",
			Label:          "Media",
			Labels:         map[string]string{"singular_name": "Media"},
			Public:         true,
			RestBase:       "media",
			CapabilityType: "post",
		},
		{
			Name:           "revision",
			Label:          "Revisions",
			Labels:         map[string]string{"singular_name": "Revision"},
			RestBase:       "revisions",
			CapabilityType: "post",
		},
	}
}

// DefaultStatuses are the post statuses every site starts with.
func DefaultStatuses() []domain.PostStatus {
	return []domain.PostStatus{
		{Name: domain.StatusPublish, Label: "Published", Public: true, Queryable: true, ShowInList: true},
		{Name: domain.StatusFuture, Label: "Scheduled", Protected: true, ShowInList: true},
		{Name: domain.StatusDraft, Label: "Draft", Protected: true, ShowInList: true},
		{Name: domain.StatusPending, Label: "Pending", Protected: true, ShowInList: true},
		{Name: domain.StatusPrivate, Label: "Private", Private: true, ShowInList: true},
		{Name: domain.StatusTrash, Label: "Trash"},
		{Name: domain.StatusAutoDraft, Label: "Auto Draft", Internal: true},
		{Name: domain.StatusInherit, Label: "Inherit", Internal: true},
	}
}

// DefaultTaxonomies are the taxonomies every site starts with.
func DefaultTaxonomies() []domain.Taxonomy {
	return []domain.Taxonomy{
		{
			Name:         "category",
			Label:        "Categories",
			Labels:       map[string]string{"singular_name": "Category"},
			Hierarchical: true,
			Public:       true,
			ShowInREST:   true,
			RestBase:     "categories",
			ObjectTypes:  []string{"post"},
		},
		{
			Name:        "post_tag",
			Label:       "Tags",
			Labels:      map[string]string{"singular_name": "Tag"},
			Public:      true,
			ShowCloud:   true,
			ShowInREST:  true,
			RestBase:    "tags",
			ObjectTypes: []string{"post"},
		},
		{
			Name:        "post_format",
			Label:       "Format",
			Labels:      map[string]string{"singular_name": "Format"},
			Public:      true,
			RestBase:    "formats",
			ObjectTypes: []string{"post"},
		},
	}
}

// Defaults returns a registry seeded with the default objects. It is not frozen.
func Defaults() *Registry {
	r := NewRegistry()
	for _, t := range DefaultPostTypes() {
		mustAdd(r.AddPostType(t))
	}
	for _, s := range DefaultStatuses() {
		mustAdd(r.AddStatus(s))
	}
	for _, t := range DefaultTaxonomies() {
		mustAdd(r.AddTaxonomy(t))
	}
	return r
}

func mustAdd(err error) {
	if err != nil {
		// ALLOW-PANIC: the built-in defaults are constant and conflict-free
		panic(err)
	}
}
