package cache

import (
	"context"
	"sort"
	"strings"

	"github.com/phrazzld/press-api/internal/store"
)

// OptionStore caches reads of a wrapped store.OptionStore.
type OptionStore struct {
	next  store.OptionStore
	cache *ObjectCache
}

var _ store.OptionStore = (*OptionStore)(nil)

// NewOptionStore wraps next with the cache.
func NewOptionStore(next store.OptionStore, cache *ObjectCache) *OptionStore {
	return &OptionStore{next: next, cache: cache}
}

// Get implements store.OptionStore. Missing options are not cached.
func (s *OptionStore) Get(ctx context.Context, name string) (string, error) {
	var v string
	if s.cache.lookup(ctx, GroupOptions, "one:"+name, &v) {
		return v, nil
	}
	v, err := s.next.Get(ctx, name)
	if err != nil {
		return "", err
	}
	s.cache.store(ctx, GroupOptions, "one:"+name, v)
	return v, nil
}

// GetMany implements store.OptionStore.
func (s *OptionStore) GetMany(ctx context.Context, names []string) (map[string]string, error) {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	key := "many:" + strings.Join(sorted, ",")

	var values map[string]string
	if s.cache.lookup(ctx, GroupOptions, key, &values) {
		return values, nil
	}
	values, err := s.next.GetMany(ctx, names)
	if err != nil {
		return nil, err
	}
	s.cache.store(ctx, GroupOptions, key, values)
	return values, nil
}

// Set implements store.OptionStore.
func (s *OptionStore) Set(ctx context.Context, values map[string]string) error {
	if err := s.next.Set(ctx, values); err != nil {
		return err
	}
	s.cache.flushQuietly(ctx, GroupOptions)
	return nil
}
