package store

import (
	"context"

	"github.com/phrazzld/press-api/internal/domain"
)

// Sort keys accepted by TermQuery.OrderBy.
const (
	TermOrderName  = "name"
	TermOrderID    = "id"
	TermOrderSlug  = "slug"
	TermOrderCount = "count"
)

// TermQuery filters and pages a term listing within one taxonomy.
type TermQuery struct {
	Taxonomy string
	Search   string
	Slugs    []string
	Include  []int64
	Exclude  []int64
	// Parent filters by parent ID when non-nil.
	Parent *int64
	// Post keeps terms assigned to the post when non-zero.
	Post      int64
	HideEmpty bool
	OrderBy   string
	Desc      bool
	Offset    int
	Limit     int
}

// TermStore defines the interface for term persistence.
// Count on returned terms is the number of posts assigned to the term.
type TermStore interface {
	// GetByID retrieves a term. Returns ErrTermNotFound if it does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Term, error)

	// List returns one page of terms matching q plus the total number of matches.
	List(ctx context.Context, q TermQuery) ([]*domain.Term, int, error)

	// Create stores a new term, setting term.ID.
	// Returns ErrSlugExists if the slug is taken within the taxonomy.
	Create(ctx context.Context, term *domain.Term) error

	// Update replaces a stored term.
	// Returns ErrTermNotFound or ErrSlugExists.
	Update(ctx context.Context, term *domain.Term) error

	// Delete removes a term and its post assignments.
	// Returns ErrTermNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error
}
