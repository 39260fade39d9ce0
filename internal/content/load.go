package content

import (
	"fmt"
	"os"

	"github.com/phrazzld/press-api/internal/domain"
	"sigs.k8s.io/yaml"
)

// File is the YAML layout of an object registry file.
type File struct {
	PostTypes  []domain.PostType   `json:"post_types"`
	Statuses   []domain.PostStatus `json:"statuses"`
	Taxonomies []domain.Taxonomy   `json:"taxonomies"`
}

// Load builds a frozen registry from the defaults plus the objects declared in
// the YAML file at path. An empty path yields the defaults alone.
func Load(path string) (*Registry, error) {
	r := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read registry file: %w", err)
		}
		if err := r.Apply(data); err != nil {
			return nil, fmt.Errorf("failed to apply registry file %s: %w", path, err)
		}
	}
	r.Freeze()
	return r, nil
}

// Apply registers the objects declared in a YAML document. Post types are
// added before taxonomies so taxonomy links resolve.
func (r *Registry) Apply(data []byte) error {
	var f File
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return fmt.Errorf("invalid registry document: %w", err)
	}
	for _, t := range f.PostTypes {
		if err := r.AddPostType(t); err != nil {
			return err
		}
	}
	for _, s := range f.Statuses {
		if err := r.AddStatus(s); err != nil {
			return err
		}
	}
	for _, t := range f.Taxonomies {
		if err := r.AddTaxonomy(t); err != nil {
			return err
		}
	}
	return nil
}
