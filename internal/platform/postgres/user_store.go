package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/phrazzld/press-api/internal/domain"
	"github.com/phrazzld/press-api/internal/store"
)

const userSelect = `SELECT id, login, email, display_name, roles, password_hash FROM users`

// PostgresUserStore implements store.UserStore.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.UserStore = (*PostgresUserStore)(nil)

// NewPostgresUserStore creates a user store over a connection or transaction.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserStore{db: db, logger: logger.With(slog.String("component", "user_store"))}
}

func scanUser(row scanner) (*domain.User, error) {
	var (
		u     domain.User
		roles []byte
	)
	if err := row.Scan(&u.ID, &u.Login, &u.Email, &u.DisplayName, &roles, &u.PasswordHash); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(roles, &u.Roles); err != nil {
		return nil, fmt.Errorf("failed to decode roles for user %d: %w", u.ID, err)
	}
	return &u, nil
}

// Create implements store.UserStore.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	roles := user.Roles
	if roles == nil {
		roles = []string{}
	}
	rolesJSON, err := json.Marshal(roles)
	if err != nil {
		return fmt.Errorf("failed to encode roles: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`INSERT INTO users (login, email, display_name, roles, password_hash)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		user.Login, user.Email, user.DisplayName, rolesJSON, user.PasswordHash,
	).Scan(&user.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrLoginExists
		}
		s.logger.Error("failed to insert user", slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

func (s *PostgresUserStore) getOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, userSelect+` WHERE `+where+` = $1`, arg))
	if err != nil {
		if IsNotFoundError(err) {
			return nil, store.ErrUserNotFound
		}
		return nil, MapError(err)
	}
	return u, nil
}

// GetByID implements store.UserStore.
func (s *PostgresUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.getOne(ctx, "id", id)
}

// GetByLogin implements store.UserStore.
func (s *PostgresUserStore) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	return s.getOne(ctx, "login", login)
}

// AddApplicationPassword implements store.UserStore.
func (s *PostgresUserStore) AddApplicationPassword(ctx context.Context, pw *domain.ApplicationPassword) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO application_passwords (user_id, name, hash) VALUES ($1, $2, $3)`,
		pw.UserID, pw.Name, pw.Hash)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return store.ErrUserNotFound
		}
		return MapError(err)
	}
	return nil
}

// ApplicationPasswords implements store.UserStore.
func (s *PostgresUserStore) ApplicationPasswords(ctx context.Context, userID int64) ([]*domain.ApplicationPassword, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, name, hash FROM application_passwords WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var out []*domain.ApplicationPassword
	for rows.Next() {
		var pw domain.ApplicationPassword
		if err := rows.Scan(&pw.UserID, &pw.Name, &pw.Hash); err != nil {
			return nil, fmt.Errorf("failed to scan application password: %w", err)
		}
		out = append(out, &pw)
	}
	return out, rows.Err()
}

