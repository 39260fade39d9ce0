package memory

import (
	"context"

	"github.com/phrazzld/press-api/internal/store"
)

// OptionStore implements store.OptionStore.
type OptionStore struct {
	db *DB
}

var _ store.OptionStore = (*OptionStore)(nil)

// Get implements store.OptionStore.
func (s *OptionStore) Get(ctx context.Context, name string) (string, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	v, ok := s.db.options[name]
	if !ok {
		return "", store.ErrOptionNotFound
	}
	return v, nil
}

// GetMany implements store.OptionStore.
func (s *OptionStore) GetMany(ctx context.Context, names []string) (map[string]string, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	out := make(map[string]string, len(names))
	for _, n := range names {
		if v, ok := s.db.options[n]; ok {
			out[n] = v
		}
	}
	return out, nil
}

// Set implements store.OptionStore.
func (s *OptionStore) Set(ctx context.Context, values map[string]string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for k, v := range values {
		s.db.options[k] = v
	}
	return nil
}
