package postgres_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/press-api/internal/domain"
	"github.com/phrazzld/press-api/internal/platform/postgres"
	"github.com/phrazzld/press-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var postRowColumns = []string{
	"id", "type", "status", "slug", "title", "content", "excerpt", "author",
	"date", "date_gmt", "modified", "modified_gmt", "password", "comment_status", "ping_status",
	"sticky", "format", "parent", "menu_order", "guid",
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func postRow(rows *sqlmock.Rows, id int64, slug string) *sqlmock.Rows {
	date := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return rows.AddRow(id, "post", "publish", slug, "Title "+slug, "body", "", int64(1),
		date, date, date, date, "", "open", "open", false, "standard", int64(0), 0, "")
}

func q(s string) string { return regexp.QuoteMeta(s) }

func TestPostgresPostStore_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found with terms", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(q("FROM posts WHERE id = $1")).
			WithArgs(7).
			WillReturnRows(postRow(sqlmock.NewRows(postRowColumns), 7, "hello"))
		mock.ExpectQuery(q("FROM term_relationships tr JOIN terms t ON t.id = tr.term_id WHERE tr.post_id IN ($1)")).
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows([]string{"post_id", "taxonomy", "term_id"}).
				AddRow(int64(7), "category", int64(3)).
				AddRow(int64(7), "post_tag", int64(9)))

		p, err := postgres.NewPostgresPostStore(db, nil).GetByID(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "hello", p.Slug)
		assert.Equal(t, []int64{3}, p.Terms["category"])
		assert.Equal(t, []int64{9}, p.Terms["post_tag"])
	})

	t.Run("missing", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(q("FROM posts WHERE id = $1")).WithArgs(8).WillReturnError(sql.ErrNoRows)

		_, err := postgres.NewPostgresPostStore(db, nil).GetByID(ctx, 8)
		assert.ErrorIs(t, err, store.ErrPostNotFound)
	})
}

func TestPostgresPostStore_List(t *testing.T) {
	db, mock := newMock(t)

	where := "WHERE p.type = $1 AND p.status IN ($2, $3) AND " +
		"EXISTS (SELECT 1 FROM term_relationships tr JOIN terms t ON t.id = tr.term_id " +
		"WHERE tr.post_id = p.id AND t.taxonomy = $4 AND tr.term_id IN ($5))"

	mock.ExpectQuery(q("SELECT COUNT(*) FROM posts p "+where)).
		WithArgs("post", "publish", "draft", "category", 3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
	mock.ExpectQuery(q(where+" ORDER BY p.title DESC, p.id DESC LIMIT $6 OFFSET $7")).
		WithArgs("post", "publish", "draft", "category", 3, 10, 20).
		WillReturnRows(postRow(postRow(sqlmock.NewRows(postRowColumns), 21, "b"), 22, "a"))
	mock.ExpectQuery(q("WHERE tr.post_id IN ($1, $2)")).
		WithArgs(21, 22).
		WillReturnRows(sqlmock.NewRows([]string{"post_id", "taxonomy", "term_id"}).
			AddRow(int64(22), "category", int64(3)))

	posts, total, err := postgres.NewPostgresPostStore(db, nil).List(context.Background(), store.PostQuery{
		Type:     "post",
		Statuses: []string{"publish", "draft"},
		Terms:    map[string][]int64{"category": {3}, "post_tag": nil},
		OrderBy:  store.PostOrderTitle,
		Desc:     true,
		Offset:   20,
		Limit:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	require.Len(t, posts, 2)
	assert.Empty(t, posts[0].Terms["category"])
	assert.Equal(t, []int64{3}, posts[1].Terms["category"])
}

func TestPostgresPostStore_ListOwnOnly(t *testing.T) {
	db, mock := newMock(t)

	where := "WHERE p.type = $1 AND p.status IN ($2, $3) AND (p.status NOT IN ($4) OR p.author = $5)"
	mock.ExpectQuery(q("SELECT COUNT(*) FROM posts p "+where)).
		WithArgs("post", "publish", "draft", "draft", int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(q(where+" ORDER BY p.date ASC, p.id ASC")).
		WithArgs("post", "publish", "draft", "draft", int64(7)).
		WillReturnRows(sqlmock.NewRows(postRowColumns))

	posts, total, err := postgres.NewPostgresPostStore(db, nil).List(context.Background(), store.PostQuery{
		Type:     "post",
		Statuses: []string{"publish", "draft"},
		OwnOnly:  []string{"draft"},
		Owner:    7,
	})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, posts)
}

func TestPostgresPostStore_Create(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("INSERT INTO posts")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))
	mock.ExpectExec(q("DELETE FROM term_relationships WHERE post_id = $1")).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q("INSERT INTO term_relationships")).
		WithArgs(5, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	post := &domain.Post{Type: "post", Status: "draft", Terms: map[string][]int64{"category": {3}}}
	require.NoError(t, postgres.NewPostgresPostStore(db, nil).Create(context.Background(), post))
	assert.Equal(t, int64(5), post.ID)
}

func TestPostgresPostStore_CreateInvalidSkipsDatabase(t *testing.T) {
	db, _ := newMock(t)
	err := postgres.NewPostgresPostStore(db, nil).Create(context.Background(), &domain.Post{})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestPostgresPostStore_UpdateMissingRollsBack(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(q("UPDATE posts SET")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	post := &domain.Post{ID: 40, Type: "post", Status: "draft"}
	err := postgres.NewPostgresPostStore(db, nil).Update(context.Background(), post)
	assert.ErrorIs(t, err, store.ErrPostNotFound)
}

func TestPostgresPostStore_Delete(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("DELETE FROM posts WHERE id = $1")).WithArgs(3).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("DELETE FROM posts WHERE id = $1")).WithArgs(4).WillReturnResult(sqlmock.NewResult(0, 0))

	s := postgres.NewPostgresPostStore(db, nil)
	assert.NoError(t, s.Delete(context.Background(), 3))
	assert.ErrorIs(t, s.Delete(context.Background(), 4), store.ErrPostNotFound)
}

func TestPostgresTermStore(t *testing.T) {
	ctx := context.Background()
	termColumns := []string{"id", "taxonomy", "name", "slug", "description", "parent", "term_count"}

	t.Run("list hides empty and orders by count", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(q("SELECT COUNT(*) FROM terms t WHERE t.taxonomy = $1 AND EXISTS")).
			WithArgs("category").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(q("ORDER BY term_count DESC, t.id DESC")).
			WithArgs("category").
			WillReturnRows(sqlmock.NewRows(termColumns).AddRow(int64(2), "category", "News", "news", "", int64(0), 4))

		terms, total, err := postgres.NewPostgresTermStore(db, nil).List(ctx, store.TermQuery{
			Taxonomy:  "category",
			HideEmpty: true,
			OrderBy:   store.TermOrderCount,
			Desc:      true,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, terms, 1)
		assert.Equal(t, 4, terms[0].Count)
	})

	t.Run("create duplicate slug", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(q("INSERT INTO terms")).
			WithArgs("category", "News", "news", "", 0).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err := postgres.NewPostgresTermStore(db, nil).Create(ctx, &domain.Term{Taxonomy: "category", Name: "News", Slug: "news"})
		assert.ErrorIs(t, err, store.ErrSlugExists)
		assert.ErrorIs(t, err, store.ErrDuplicate)
	})

	t.Run("get missing", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(q("WHERE t.id = $1")).WithArgs(9).WillReturnError(sql.ErrNoRows)

		_, err := postgres.NewPostgresTermStore(db, nil).GetByID(ctx, 9)
		assert.ErrorIs(t, err, store.ErrTermNotFound)
	})
}

func TestPostgresOptionStore(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t)
	s := postgres.NewPostgresOptionStore(db, nil)

	mock.ExpectBegin()
	mock.ExpectExec(q("INSERT INTO options")).WithArgs("blogdescription", "tagline").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("INSERT INTO options")).WithArgs("blogname", "Site").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	require.NoError(t, s.Set(ctx, map[string]string{"blogname": "Site", "blogdescription": "tagline"}))

	mock.ExpectQuery(q("SELECT name, value FROM options WHERE name IN ($1, $2)")).
		WithArgs("blogname", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"name", "value"}).AddRow("blogname", "Site"))
	got, err := s.GetMany(ctx, []string{"blogname", "missing"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"blogname": "Site"}, got)

	mock.ExpectQuery(q("SELECT value FROM options WHERE name = $1")).WithArgs("nope").WillReturnError(sql.ErrNoRows)
	_, err = s.Get(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrOptionNotFound)
}

func TestPostgresUserStore(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t)
	s := postgres.NewPostgresUserStore(db, nil)

	mock.ExpectQuery(q("FROM users WHERE login = $1")).
		WithArgs("editor").
		WillReturnRows(sqlmock.NewRows([]string{"id", "login", "email", "display_name", "roles", "password_hash"}).
			AddRow(int64(3), "editor", "e@example.com", "Ed", []byte(`["editor"]`), "hash"))
	u, err := s.GetByLogin(ctx, "editor")
	require.NoError(t, err)
	assert.Equal(t, []string{domain.RoleEditor}, u.Roles)

	mock.ExpectQuery(q("INSERT INTO users")).WillReturnError(&pgconn.PgError{Code: "23505"})
	assert.ErrorIs(t, s.Create(ctx, &domain.User{Login: "editor"}), store.ErrLoginExists)

	mock.ExpectExec(q("INSERT INTO application_passwords")).
		WithArgs(99, "cli", "h").
		WillReturnError(&pgconn.PgError{Code: "23503"})
	err = s.AddApplicationPassword(ctx, &domain.ApplicationPassword{UserID: 99, Name: "cli", Hash: "h"})
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}
