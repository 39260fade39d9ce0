package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/phrazzld/press-api/internal/domain"
	"github.com/phrazzld/press-api/internal/store"
)

// PostStore implements store.PostStore.
type PostStore struct {
	db *DB
}

var _ store.PostStore = (*PostStore)(nil)

// GetByID implements store.PostStore.
func (s *PostStore) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	p, ok := s.db.posts[id]
	if !ok {
		return nil, store.ErrPostNotFound
	}
	return copyPost(p), nil
}

// List implements store.PostStore.
func (s *PostStore) List(ctx context.Context, q store.PostQuery) ([]*domain.Post, int, error) {
	s.db.mu.RLock()
	var matched []*domain.Post
	for _, p := range s.db.posts {
		if matchesPost(p, q) {
			matched = append(matched, copyPost(p))
		}
	}
	s.db.mu.RUnlock()

	sortPosts(matched, q.OrderBy, q.Desc)
	start, end := page(len(matched), q.Offset, q.Limit)
	return matched[start:end], len(matched), nil
}

func matchesPost(p *domain.Post, q store.PostQuery) bool {
	if q.Type != "" && p.Type != q.Type {
		return false
	}
	if len(q.Statuses) > 0 && !containsString(q.Statuses, p.Status) {
		return false
	}
	if len(q.Authors) > 0 && !containsID(q.Authors, p.Author) {
		return false
	}
	if containsString(q.OwnOnly, p.Status) && (q.Owner == 0 || p.Author != q.Owner) {
		return false
	}
	if len(q.Slugs) > 0 && !containsString(q.Slugs, p.Slug) {
		return false
	}
	if len(q.Include) > 0 && !containsID(q.Include, p.ID) {
		return false
	}
	if len(q.Exclude) > 0 && containsID(q.Exclude, p.ID) {
		return false
	}
	if q.Parent != nil && p.Parent != *q.Parent {
		return false
	}
	if q.Sticky != nil && p.Sticky != *q.Sticky {
		return false
	}
	if !q.After.IsZero() && !p.Date.After(q.After) {
		return false
	}
	if !q.Before.IsZero() && !p.Date.Before(q.Before) {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(p.Title), needle) &&
			!strings.Contains(strings.ToLower(p.Content), needle) &&
			!strings.Contains(strings.ToLower(p.Excerpt), needle) {
			return false
		}
	}
	for tax, want := range q.Terms {
		if len(want) == 0 {
			continue
		}
		hit := false
		for _, id := range p.Terms[tax] {
			if containsID(want, id) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

func sortPosts(posts []*domain.Post, orderBy string, desc bool) {
	less := func(a, b *domain.Post) bool {
		switch orderBy {
		case store.PostOrderID:
			return a.ID < b.ID
		case store.PostOrderTitle:
			if a.Title != b.Title {
				return a.Title < b.Title
			}
		case store.PostOrderSlug:
			if a.Slug != b.Slug {
				return a.Slug < b.Slug
			}
		case store.PostOrderModified:
			if !a.Modified.Equal(b.Modified) {
				return a.Modified.Before(b.Modified)
			}
		case store.PostOrderMenu:
			if a.MenuOrder != b.MenuOrder {
				return a.MenuOrder < b.MenuOrder
			}
		default:
			if !a.Date.Equal(b.Date) {
				return a.Date.Before(b.Date)
			}
		}
		return a.ID < b.ID
	}
	sort.SliceStable(posts, func(i, j int) bool {
		if desc {
			return less(posts[j], posts[i])
		}
		return less(posts[i], posts[j])
	})
}

// Create implements store.PostStore.
func (s *PostStore) Create(ctx context.Context, post *domain.Post) error {
	if err := post.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.nextPostID++
	post.ID = s.db.nextPostID
	s.db.posts[post.ID] = copyPost(post)
	return nil
}

// Update implements store.PostStore.
func (s *PostStore) Update(ctx context.Context, post *domain.Post) error {
	if err := post.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.posts[post.ID]; !ok {
		return store.ErrPostNotFound
	}
	s.db.posts[post.ID] = copyPost(post)
	return nil
}

// Delete implements store.PostStore.
func (s *PostStore) Delete(ctx context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.posts[id]; !ok {
		return store.ErrPostNotFound
	}
	delete(s.db.posts, id)
	return nil
}
