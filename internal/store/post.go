package store

import (
	"context"
	"time"

	"github.com/phrazzld/press-api/internal/domain"
)

// Sort keys accepted by PostQuery.OrderBy.
const (
	PostOrderDate     = "date"
	PostOrderID       = "id"
	PostOrderTitle    = "title"
	PostOrderSlug     = "slug"
	PostOrderModified = "modified"
	PostOrderMenu     = "menu_order"
)

// PostQuery filters and pages a post listing. Zero values mean "no filter".
type PostQuery struct {
	Type     string
	Statuses []string
	Authors  []int64
	Slugs    []string
	Include  []int64
	Exclude  []int64
	// Parent filters by parent ID when non-nil (0 selects top-level posts).
	Parent *int64
	Search string
	After  time.Time
	Before time.Time
	// Terms keeps posts assigned to any of the listed term IDs, per taxonomy.
	Terms map[string][]int64
	// Sticky filters by sticky flag when non-nil.
	Sticky *bool
	// OwnOnly lists statuses whose posts are kept only when Owner wrote them.
	// An Owner of 0 drops those posts entirely.
	OwnOnly []string
	Owner   int64
	OrderBy string
	// Desc sorts descending.
	Desc   bool
	Offset int
	Limit  int
}

// PostStore defines the interface for post persistence.
type PostStore interface {
	// GetByID retrieves a post with its term assignments.
	// Returns ErrPostNotFound if the post does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Post, error)

	// List returns one page of posts matching q plus the total number of
	// matches ignoring Offset and Limit.
	List(ctx context.Context, q PostQuery) ([]*domain.Post, int, error)

	// Create stores a new post and its term assignments, setting post.ID.
	// Returns validation errors wrapped in ErrInvalidEntity.
	Create(ctx context.Context, post *domain.Post) error

	// Update replaces a stored post and its term assignments.
	// Returns ErrPostNotFound if the post does not exist.
	Update(ctx context.Context, post *domain.Post) error

	// Delete permanently removes a post and its term assignments.
	// Returns ErrPostNotFound if the post does not exist.
	Delete(ctx context.Context, id int64) error
}
