package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/phrazzld/press-api/internal/domain"
	"github.com/phrazzld/press-api/internal/store"
)

// TermStore implements store.TermStore.
type TermStore struct {
	db *DB
}

var _ store.TermStore = (*TermStore)(nil)

// count returns how many posts are assigned to the term. Caller holds the lock.
func (s *TermStore) count(t *domain.Term) int {
	n := 0
	for _, p := range s.db.posts {
		if containsID(p.Terms[t.Taxonomy], t.ID) {
			n++
		}
	}
	return n
}

func (s *TermStore) withCount(t *domain.Term) *domain.Term {
	c := *t
	c.Count = s.count(t)
	return &c
}

// GetByID implements store.TermStore.
func (s *TermStore) GetByID(ctx context.Context, id int64) (*domain.Term, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	t, ok := s.db.terms[id]
	if !ok {
		return nil, store.ErrTermNotFound
	}
	return s.withCount(t), nil
}

// List implements store.TermStore.
func (s *TermStore) List(ctx context.Context, q store.TermQuery) ([]*domain.Term, int, error) {
	s.db.mu.RLock()
	var assigned []int64
	if q.Post != 0 {
		if p, ok := s.db.posts[q.Post]; ok {
			assigned = p.Terms[q.Taxonomy]
		}
	}
	var matched []*domain.Term
	for _, t := range s.db.terms {
		if q.Taxonomy != "" && t.Taxonomy != q.Taxonomy {
			continue
		}
		if q.Post != 0 && !containsID(assigned, t.ID) {
			continue
		}
		if len(q.Include) > 0 && !containsID(q.Include, t.ID) {
			continue
		}
		if len(q.Exclude) > 0 && containsID(q.Exclude, t.ID) {
			continue
		}
		if len(q.Slugs) > 0 && !containsString(q.Slugs, t.Slug) {
			continue
		}
		if q.Parent != nil && t.Parent != *q.Parent {
			continue
		}
		if q.Search != "" {
			needle := strings.ToLower(q.Search)
			if !strings.Contains(strings.ToLower(t.Name), needle) && !strings.Contains(t.Slug, needle) {
				continue
			}
		}
		c := s.withCount(t)
		if q.HideEmpty && c.Count == 0 {
			continue
		}
		matched = append(matched, c)
	}
	s.db.mu.RUnlock()

	less := func(a, b *domain.Term) bool {
		switch q.OrderBy {
		case store.TermOrderID:
			return a.ID < b.ID
		case store.TermOrderSlug:
			if a.Slug != b.Slug {
				return a.Slug < b.Slug
			}
		case store.TermOrderCount:
			if a.Count != b.Count {
				return a.Count < b.Count
			}
		default:
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		}
		return a.ID < b.ID
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if q.Desc {
			return less(matched[j], matched[i])
		}
		return less(matched[i], matched[j])
	})

	start, end := page(len(matched), q.Offset, q.Limit)
	return matched[start:end], len(matched), nil
}

func (s *TermStore) slugTaken(t *domain.Term) bool {
	for _, existing := range s.db.terms {
		if existing.ID != t.ID && existing.Taxonomy == t.Taxonomy && existing.Slug == t.Slug {
			return true
		}
	}
	return false
}

// Create implements store.TermStore.
func (s *TermStore) Create(ctx context.Context, term *domain.Term) error {
	if err := term.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.slugTaken(term) {
		return store.ErrSlugExists
	}
	s.db.nextTermID++
	term.ID = s.db.nextTermID
	c := *term
	c.Count = 0
	s.db.terms[term.ID] = &c
	return nil
}

// Update implements store.TermStore.
func (s *TermStore) Update(ctx context.Context, term *domain.Term) error {
	if err := term.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.terms[term.ID]; !ok {
		return store.ErrTermNotFound
	}
	if s.slugTaken(term) {
		return store.ErrSlugExists
	}
	c := *term
	s.db.terms[term.ID] = &c
	return nil
}

// Delete implements store.TermStore.
func (s *TermStore) Delete(ctx context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t, ok := s.db.terms[id]
	if !ok {
		return store.ErrTermNotFound
	}
	delete(s.db.terms, id)
	for _, p := range s.db.posts {
		ids := p.Terms[t.Taxonomy]
		kept := ids[:0]
		for _, v := range ids {
			if v != id {
				kept = append(kept, v)
			}
		}
		if p.Terms != nil {
			p.Terms[t.Taxonomy] = kept
		}
	}
	return nil
}
