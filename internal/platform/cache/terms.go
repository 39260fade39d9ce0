package cache

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/phrazzld/press-api/internal/domain"
	"github.com/phrazzld/press-api/internal/store"
)

// TermStore caches reads of a wrapped store.TermStore. Term counts depend on
// post assignments, so post writes must flush GroupTerms too (see Invalidator).
type TermStore struct {
	next  store.TermStore
	cache *ObjectCache
}

var _ store.TermStore = (*TermStore)(nil)

// NewTermStore wraps next with the cache.
func NewTermStore(next store.TermStore, cache *ObjectCache) *TermStore {
	return &TermStore{next: next, cache: cache}
}

type termPage struct {
	Terms []*domain.Term `json:"terms"`
	Total int            `json:"total"`
}

// GetByID implements store.TermStore.
func (s *TermStore) GetByID(ctx context.Context, id int64) (*domain.Term, error) {
	key := "id:" + strconv.FormatInt(id, 10)
	var t domain.Term
	if s.cache.lookup(ctx, GroupTerms, key, &t) {
		return &t, nil
	}
	term, err := s.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.store(ctx, GroupTerms, key, term)
	return term, nil
}

// List implements store.TermStore.
func (s *TermStore) List(ctx context.Context, q store.TermQuery) ([]*domain.Term, int, error) {
	raw, err := json.Marshal(q)
	if err != nil {
		return s.next.List(ctx, q)
	}
	key := "list:" + string(raw)

	var cached termPage
	if s.cache.lookup(ctx, GroupTerms, key, &cached) {
		return cached.Terms, cached.Total, nil
	}
	terms, total, err := s.next.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	s.cache.store(ctx, GroupTerms, key, termPage{Terms: terms, Total: total})
	return terms, total, nil
}

// Create implements store.TermStore.
func (s *TermStore) Create(ctx context.Context, term *domain.Term) error {
	if err := s.next.Create(ctx, term); err != nil {
		return err
	}
	s.cache.flushQuietly(ctx, GroupTerms)
	return nil
}

// Update implements store.TermStore.
func (s *TermStore) Update(ctx context.Context, term *domain.Term) error {
	if err := s.next.Update(ctx, term); err != nil {
		return err
	}
	s.cache.flushQuietly(ctx, GroupTerms)
	return nil
}

// Delete implements store.TermStore.
func (s *TermStore) Delete(ctx context.Context, id int64) error {
	if err := s.next.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.flushQuietly(ctx, GroupTerms)
	return nil
}
