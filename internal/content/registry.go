package content

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/phrazzld/press-api/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// ErrFrozen is returned when registering objects after Freeze.
	ErrFrozen = errors.New("content registry is frozen")

	// ErrDuplicateName is returned when an object name is registered twice.
	ErrDuplicateName = errors.New("object already registered")
)

var titleCaser = cases.Title(language.English)

// Registry holds post types, statuses and taxonomies in registration order.
type Registry struct {
	mu     sync.RWMutex
	frozen bool

	types      []*domain.PostType
	statuses   []*domain.PostStatus
	taxonomies []*domain.Taxonomy
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Label derives a display label from an object name, e.g. "post_tag" -> "Post Tag".
func Label(name string) string {
	return titleCaser.String(strings.NewReplacer("_", " ", "-", " ").Replace(name))
}

// AddPostType registers a post type. Empty Label and RestBase are derived from the name.
func (r *Registry) AddPostType(t domain.PostType) error {
	if t.Name == "" {
		return fmt.Errorf("post type: %w", domain.ErrEmptyName)
	}
	if t.Label == "" {
		t.Label = Label(t.Name)
	}
	if t.RestBase == "" {
		t.RestBase = t.Name
	}
	if t.CapabilityType == "" {
		t.CapabilityType = "post"
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrFrozen
	}
	for _, existing := range r.types {
		if existing.Name == t.Name {
			return fmt.Errorf("post type %q: %w", t.Name, ErrDuplicateName)
		}
	}
	r.types = append(r.types, &t)
	for _, tax := range r.taxonomies {
		link(&t, tax)
	}
	return nil
}

// AddStatus registers a post status.
func (r *Registry) AddStatus(s domain.PostStatus) error {
	if s.Name == "" {
		return fmt.Errorf("post status: %w", domain.ErrEmptyName)
	}
	if s.Label == "" {
		s.Label = Label(s.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrFrozen
	}
	for _, existing := range r.statuses {
		if existing.Name == s.Name {
			return fmt.Errorf("post status %q: %w", s.Name, ErrDuplicateName)
		}
	}
	r.statuses = append(r.statuses, &s)
	return nil
}

// AddTaxonomy registers a taxonomy and links it to its object types.
func (r *Registry) AddTaxonomy(t domain.Taxonomy) error {
	if t.Name == "" {
		return fmt.Errorf("taxonomy: %w", domain.ErrEmptyName)
	}
	if t.Label == "" {
		t.Label = Label(t.Name)
	}
	if t.RestBase == "" {
		t.RestBase = t.Name
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrFrozen
	}
	for _, existing := range r.taxonomies {
		if existing.Name == t.Name {
			return fmt.Errorf("taxonomy %q: %w", t.Name, ErrDuplicateName)
		}
	}
	r.taxonomies = append(r.taxonomies, &t)
	for _, pt := range r.types {
		link(pt, &t)
	}
	return nil
}

// link keeps PostType.Taxonomies and Taxonomy.ObjectTypes symmetric.
func link(pt *domain.PostType, tax *domain.Taxonomy) {
	if contains(pt.Taxonomies, tax.Name) && !tax.AppliesTo(pt.Name) {
		tax.ObjectTypes = append(tax.ObjectTypes, pt.Name)
	}
	if tax.AppliesTo(pt.Name) && !contains(pt.Taxonomies, tax.Name) {
		pt.Taxonomies = append(pt.Taxonomies, tax.Name)
	}
}

// PostType looks up a post type by name.
func (r *Registry) PostType(name string) (*domain.PostType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.types {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// PostTypes returns all post types in registration order.
func (r *Registry) PostTypes() []*domain.PostType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*domain.PostType(nil), r.types...)
}

// RESTPostTypes returns the post types exposed over REST.
func (r *Registry) RESTPostTypes() []*domain.PostType {
	var out []*domain.PostType
	for _, t := range r.PostTypes() {
		if t.ShowInREST {
			out = append(out, t)
		}
	}
	return out
}

// Status looks up a post status by name.
func (r *Registry) Status(name string) (*domain.PostStatus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.statuses {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Statuses returns all post statuses in registration order, internal ones included.
func (r *Registry) Statuses() []*domain.PostStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*domain.PostStatus(nil), r.statuses...)
}

// Taxonomy looks up a taxonomy by name.
func (r *Registry) Taxonomy(name string) (*domain.Taxonomy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.taxonomies {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// Taxonomies returns all taxonomies in registration order.
func (r *Registry) Taxonomies() []*domain.Taxonomy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*domain.Taxonomy(nil), r.taxonomies...)
}

// TaxonomiesFor returns the REST-enabled taxonomies attached to a post type.
func (r *Registry) TaxonomiesFor(postType string) []*domain.Taxonomy {
	var out []*domain.Taxonomy
	for _, t := range r.Taxonomies() {
		if t.ShowInREST && t.AppliesTo(postType) {
			out = append(out, t)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
