package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"

	"github.com/phrazzld/press-api/internal/domain"
	"github.com/phrazzld/press-api/internal/store"
)

const postColumns = `id, type, status, slug, title, content, excerpt, author,
	date, date_gmt, modified, modified_gmt, password, comment_status, ping_status,
	sticky, format, parent, menu_order, guid`

var postOrderColumns = map[string]string{
	store.PostOrderDate:     "p.date",
	store.PostOrderID:       "p.id",
	store.PostOrderTitle:    "p.title",
	store.PostOrderSlug:     "p.slug",
	store.PostOrderModified: "p.modified",
	store.PostOrderMenu:     "p.menu_order",
}

// PostgresPostStore implements store.PostStore.
type PostgresPostStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ store.PostStore = (*PostgresPostStore)(nil)

// NewPostgresPostStore creates a post store. A nil logger uses slog.Default.
func NewPostgresPostStore(db *sql.DB, logger *slog.Logger) *PostgresPostStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPostStore{
		db:     db,
		logger: logger.With(slog.String("component", "post_store")),
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (*domain.Post, error) {
	var p domain.Post
	err := row.Scan(
		&p.ID, &p.Type, &p.Status, &p.Slug, &p.Title, &p.Content, &p.Excerpt, &p.Author,
		&p.Date, &p.DateGMT, &p.Modified, &p.ModifiedGMT, &p.Password, &p.CommentStatus, &p.PingStatus,
		&p.Sticky, &p.Format, &p.Parent, &p.MenuOrder, &p.GUID,
	)
	if err != nil {
		return nil, err
	}
	p.Terms = map[string][]int64{}
	return &p, nil
}

// GetByID implements store.PostStore.
func (s *PostgresPostStore) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, store.ErrPostNotFound
		}
		s.logger.Error("failed to get post", slog.Int64("post_id", id), slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	if err := loadTerms(ctx, s.db, []*domain.Post{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func postFilter(q store.PostQuery) *query {
	b := &query{}
	if q.Type != "" {
		b.where("p.type = " + b.arg(q.Type))
	}
	inList(b, "p.status", q.Statuses, false)
	inList(b, "p.author", q.Authors, false)
	if len(q.OwnOnly) > 0 {
		own := &query{args: b.args}
		inList(own, "p.status", q.OwnOnly, true)
		b.args = own.args
		b.where("(" + own.conds[0] + " OR p.author = " + b.arg(q.Owner) + ")")
	}
	inList(b, "p.slug", q.Slugs, false)
	inList(b, "p.id", q.Include, false)
	inList(b, "p.id", q.Exclude, true)
	if q.Parent != nil {
		b.where("p.parent = " + b.arg(*q.Parent))
	}
	if q.Sticky != nil {
		b.where("p.sticky = " + b.arg(*q.Sticky))
	}
	if !q.After.IsZero() {
		b.where("p.date > " + b.arg(q.After))
	}
	if !q.Before.IsZero() {
		b.where("p.date < " + b.arg(q.Before))
	}
	if q.Search != "" {
		ph := b.arg(likePattern(q.Search))
		b.where(fmt.Sprintf("(p.title ILIKE %[1]s OR p.content ILIKE %[1]s OR p.excerpt ILIKE %[1]s)", ph))
	}

	taxonomies := make([]string, 0, len(q.Terms))
	for tax, ids := range q.Terms {
		if len(ids) > 0 {
			taxonomies = append(taxonomies, tax)
		}
	}
	sort.Strings(taxonomies)
	for _, tax := range taxonomies {
		sub := &query{args: b.args}
		sub.where("tr.post_id = p.id")
		sub.where("t.taxonomy = " + sub.arg(tax))
		inList(sub, "tr.term_id", q.Terms[tax], false)
		b.args = sub.args
		b.where("EXISTS (SELECT 1 FROM term_relationships tr JOIN terms t ON t.id = tr.term_id" + sub.clause() + ")")
	}
	return b
}

// List implements store.PostStore.
func (s *PostgresPostStore) List(ctx context.Context, q store.PostQuery) ([]*domain.Post, int, error) {
	b := postFilter(q)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts p`+b.clause(), b.args...).Scan(&total); err != nil {
		s.logger.Error("failed to count posts", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	col, ok := postOrderColumns[q.OrderBy]
	if !ok {
		col = postOrderColumns[store.PostOrderDate]
	}
	dir := direction(q.Desc)
	sqlText := `SELECT ` + postColumns + ` FROM posts p` + b.clause() +
		` ORDER BY ` + col + dir + `, p.id` + dir + b.page(q.Offset, q.Limit)

	rows, err := s.db.QueryContext(ctx, sqlText, b.args...)
	if err != nil {
		s.logger.Error("failed to query posts", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var posts []*domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating post rows: %w", err)
	}

	if err := loadTerms(ctx, s.db, posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// loadTerms fills Terms on each post from term_relationships.
func loadTerms(ctx context.Context, db store.DBTX, posts []*domain.Post) error {
	if len(posts) == 0 {
		return nil
	}
	byID := make(map[int64]*domain.Post, len(posts))
	ids := make([]int64, 0, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	b := &query{}
	inList(b, "tr.post_id", ids, false)
	rows, err := db.QueryContext(ctx,
		`SELECT tr.post_id, t.taxonomy, tr.term_id FROM term_relationships tr
		JOIN terms t ON t.id = tr.term_id`+b.clause()+` ORDER BY tr.post_id, tr.term_id`,
		b.args...)
	if err != nil {
		return fmt.Errorf("failed to load post terms: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			postID, termID int64
			taxonomy       string
		)
		if err := rows.Scan(&postID, &taxonomy, &termID); err != nil {
			return fmt.Errorf("failed to scan post term: %w", err)
		}
		if p, ok := byID[postID]; ok {
			p.Terms[taxonomy] = append(p.Terms[taxonomy], termID)
		}
	}
	return rows.Err()
}

// replaceTerms rewrites the term assignments of a post.
func replaceTerms(ctx context.Context, tx store.DBTX, post *domain.Post) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM term_relationships WHERE post_id = $1`, post.ID); err != nil {
		return MapError(err)
	}

	taxonomies := make([]string, 0, len(post.Terms))
	for tax := range post.Terms {
		taxonomies = append(taxonomies, tax)
	}
	sort.Strings(taxonomies)
	for _, tax := range taxonomies {
		for _, termID := range post.Terms[tax] {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO term_relationships (post_id, term_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				post.ID, termID)
			if err != nil {
				return MapError(err)
			}
		}
	}
	return nil
}

func postValues(p *domain.Post) []any {
	return []any{
		p.Type, p.Status, p.Slug, p.Title, p.Content, p.Excerpt, p.Author,
		p.Date, p.DateGMT, p.Modified, p.ModifiedGMT, p.Password, p.CommentStatus, p.PingStatus,
		p.Sticky, p.Format, p.Parent, p.MenuOrder, p.GUID,
	}
}

// Create implements store.PostStore.
func (s *PostgresPostStore) Create(ctx context.Context, post *domain.Post) error {
	if err := post.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `INSERT INTO posts (type, status, slug, title, content, excerpt, author,
			date, date_gmt, modified, modified_gmt, password, comment_status, ping_status,
			sticky, format, parent, menu_order, guid)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
			RETURNING id`, postValues(post)...).Scan(&post.ID)
		if err != nil {
			s.logger.Error("failed to insert post", slog.String("error", err.Error()))
			return MapError(err)
		}
		return replaceTerms(ctx, tx, post)
	})
}

// Update implements store.PostStore.
func (s *PostgresPostStore) Update(ctx context.Context, post *domain.Post) error {
	if err := post.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		args := append(postValues(post), post.ID)
		result, err := tx.ExecContext(ctx, `UPDATE posts SET type = $1, status = $2, slug = $3, title = $4,
			content = $5, excerpt = $6, author = $7, date = $8, date_gmt = $9, modified = $10,
			modified_gmt = $11, password = $12, comment_status = $13, ping_status = $14, sticky = $15,
			format = $16, parent = $17, menu_order = $18, guid = $19
			WHERE id = $20`, args...)
		if err != nil {
			s.logger.Error("failed to update post", slog.Int64("post_id", post.ID), slog.String("error", err.Error()))
			return MapError(err)
		}
		if err := CheckRowsAffected(result, store.ErrPostNotFound); err != nil {
			return err
		}
		return replaceTerms(ctx, tx, post)
	})
}

// Delete implements store.PostStore. Term assignments cascade.
func (s *PostgresPostStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		s.logger.Error("failed to delete post", slog.Int64("post_id", id), slog.String("error", err.Error()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrPostNotFound)
}
