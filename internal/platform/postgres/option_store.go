package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"

	"github.com/phrazzld/press-api/internal/store"
)

// PostgresOptionStore implements store.OptionStore.
type PostgresOptionStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ store.OptionStore = (*PostgresOptionStore)(nil)

// NewPostgresOptionStore creates an option store.
func NewPostgresOptionStore(db *sql.DB, logger *slog.Logger) *PostgresOptionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresOptionStore{db: db, logger: logger.With(slog.String("component", "option_store"))}
}

// Get implements store.OptionStore.
func (s *PostgresOptionStore) Get(ctx context.Context, name string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM options WHERE name = $1`, name).Scan(&value)
	if err != nil {
		if IsNotFoundError(err) {
			return "", store.ErrOptionNotFound
		}
		return "", MapError(err)
	}
	return value, nil
}

// GetMany implements store.OptionStore.
func (s *PostgresOptionStore) GetMany(ctx context.Context, names []string) (map[string]string, error) {
	out := make(map[string]string, len(names))
	if len(names) == 0 {
		return out, nil
	}

	b := &query{}
	inList(b, "name", names, false)
	rows, err := s.db.QueryContext(ctx, `SELECT name, value FROM options`+b.clause(), b.args...)
	if err != nil {
		s.logger.Error("failed to query options", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("failed to scan option row: %w", err)
		}
		out[name] = value
	}
	return out, rows.Err()
}

// Set implements store.OptionStore. All values are written in one transaction.
func (s *PostgresOptionStore) Set(ctx context.Context, values map[string]string) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		for _, name := range names {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO options (name, value) VALUES ($1, $2)
				ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value`,
				name, values[name])
			if err != nil {
				s.logger.Error("failed to set option", slog.String("name", name), slog.String("error", err.Error()))
				return MapError(err)
			}
		}
		return nil
	})
}
