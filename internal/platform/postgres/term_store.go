package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/press-api/internal/domain"
	"github.com/phrazzld/press-api/internal/store"
)

const termSelect = `SELECT t.id, t.taxonomy, t.name, t.slug, t.description, t.parent,
	(SELECT COUNT(*) FROM term_relationships tr WHERE tr.term_id = t.id) AS term_count
	FROM terms t`

var termOrderColumns = map[string]string{
	store.TermOrderName:  "t.name",
	store.TermOrderID:    "t.id",
	store.TermOrderSlug:  "t.slug",
	store.TermOrderCount: "term_count",
}

// PostgresTermStore implements store.TermStore.
type PostgresTermStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.TermStore = (*PostgresTermStore)(nil)

// NewPostgresTermStore creates a term store over a connection or transaction.
func NewPostgresTermStore(db store.DBTX, logger *slog.Logger) *PostgresTermStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTermStore{
		db:     db,
		logger: logger.With(slog.String("component", "term_store")),
	}
}

func scanTerm(row scanner) (*domain.Term, error) {
	var t domain.Term
	if err := row.Scan(&t.ID, &t.Taxonomy, &t.Name, &t.Slug, &t.Description, &t.Parent, &t.Count); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByID implements store.TermStore.
func (s *PostgresTermStore) GetByID(ctx context.Context, id int64) (*domain.Term, error) {
	t, err := scanTerm(s.db.QueryRowContext(ctx, termSelect+` WHERE t.id = $1`, id))
	if err != nil {
		if IsNotFoundError(err) {
			return nil, store.ErrTermNotFound
		}
		s.logger.Error("failed to get term", slog.Int64("term_id", id), slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return t, nil
}

func termFilter(q store.TermQuery) *query {
	b := &query{}
	if q.Taxonomy != "" {
		b.where("t.taxonomy = " + b.arg(q.Taxonomy))
	}
	inList(b, "t.id", q.Include, false)
	inList(b, "t.id", q.Exclude, true)
	inList(b, "t.slug", q.Slugs, false)
	if q.Parent != nil {
		b.where("t.parent = " + b.arg(*q.Parent))
	}
	if q.Search != "" {
		ph := b.arg(likePattern(q.Search))
		b.where(fmt.Sprintf("(t.name ILIKE %[1]s OR t.slug ILIKE %[1]s)", ph))
	}
	if q.Post != 0 {
		b.where("t.id IN (SELECT term_id FROM term_relationships WHERE post_id = " + b.arg(q.Post) + ")")
	}
	if q.HideEmpty {
		b.where("EXISTS (SELECT 1 FROM term_relationships e WHERE e.term_id = t.id)")
	}
	return b
}

// List implements store.TermStore.
func (s *PostgresTermStore) List(ctx context.Context, q store.TermQuery) ([]*domain.Term, int, error) {
	b := termFilter(q)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM terms t`+b.clause(), b.args...).Scan(&total); err != nil {
		s.logger.Error("failed to count terms", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	col, ok := termOrderColumns[q.OrderBy]
	if !ok {
		col = termOrderColumns[store.TermOrderName]
	}
	dir := direction(q.Desc)
	rows, err := s.db.QueryContext(ctx,
		termSelect+b.clause()+` ORDER BY `+col+dir+`, t.id`+dir+b.page(q.Offset, q.Limit),
		b.args...)
	if err != nil {
		s.logger.Error("failed to query terms", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var terms []*domain.Term
	for rows.Next() {
		t, err := scanTerm(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan term row: %w", err)
		}
		terms = append(terms, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating term rows: %w", err)
	}
	return terms, total, nil
}

// Create implements store.TermStore.
func (s *PostgresTermStore) Create(ctx context.Context, term *domain.Term) error {
	if err := term.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO terms (taxonomy, name, slug, description, parent) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		term.Taxonomy, term.Name, term.Slug, term.Description, term.Parent,
	).Scan(&term.ID)
	if err != nil {
		s.logger.Error("failed to insert term", slog.String("taxonomy", term.Taxonomy), slog.String("error", err.Error()))
		return mapWithDuplicate(err, store.ErrSlugExists)
	}
	term.Count = 0
	return nil
}

// Update implements store.TermStore.
func (s *PostgresTermStore) Update(ctx context.Context, term *domain.Term) error {
	if err := term.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE terms SET name = $1, slug = $2, description = $3, parent = $4 WHERE id = $5`,
		term.Name, term.Slug, term.Description, term.Parent, term.ID,
	)
	if err != nil {
		s.logger.Error("failed to update term", slog.Int64("term_id", term.ID), slog.String("error", err.Error()))
		return mapWithDuplicate(err, store.ErrSlugExists)
	}
	return CheckRowsAffected(result, store.ErrTermNotFound)
}

// Delete implements store.TermStore. Post assignments cascade.
func (s *PostgresTermStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM terms WHERE id = $1`, id)
	if err != nil {
		s.logger.Error("failed to delete term", slog.Int64("term_id", id), slog.String("error", err.Error()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTermNotFound)
}

