package memory

import (
	"context"
	"fmt"

	"github.com/phrazzld/press-api/internal/domain"
	"github.com/phrazzld/press-api/internal/store"
)

// UserStore implements store.UserStore.
type UserStore struct {
	db *DB
}

var _ store.UserStore = (*UserStore)(nil)

// Create implements store.UserStore.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if u.Login == user.Login {
			return store.ErrLoginExists
		}
	}
	s.db.nextUserID++
	user.ID = s.db.nextUserID
	s.db.users[user.ID] = copyUser(user)
	return nil
}

// GetByID implements store.UserStore.
func (s *UserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	u, ok := s.db.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return copyUser(u), nil
}

// GetByLogin implements store.UserStore.
func (s *UserStore) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	for _, u := range s.db.users {
		if u.Login == login {
			return copyUser(u), nil
		}
	}
	return nil, store.ErrUserNotFound
}

// AddApplicationPassword implements store.UserStore.
func (s *UserStore) AddApplicationPassword(ctx context.Context, pw *domain.ApplicationPassword) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.users[pw.UserID]; !ok {
		return store.ErrUserNotFound
	}
	c := *pw
	s.db.appPWs = append(s.db.appPWs, &c)
	return nil
}

// ApplicationPasswords implements store.UserStore.
func (s *UserStore) ApplicationPasswords(ctx context.Context, userID int64) ([]*domain.ApplicationPassword, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	var out []*domain.ApplicationPassword
	for _, pw := range s.db.appPWs {
		if pw.UserID == userID {
			c := *pw
			out = append(out, &c)
		}
	}
	return out, nil
}
