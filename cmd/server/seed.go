package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/press-api/internal/domain"
	"github.com/phrazzld/press-api/internal/service/auth"
	"github.com/phrazzld/press-api/internal/store"
)

const demoAdminLogin = "admin"

// seed creates an administrator, a default category and a welcome post.
// It does nothing when the admin user already exists.
func (app *application) seed(ctx context.Context) error {
	_, err := app.users.GetByLogin(ctx, demoAdminLogin)
	if err == nil {
		app.logger.Debug("demo content already present")
		return nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return err
	}

	hash, err := auth.HashPassword(app.config.Content.DemoAdminPassword)
	if err != nil {
		return err
	}
	admin := &domain.User{
		Login:        demoAdminLogin,
		Email:        "admin@example.com",
		DisplayName:  "Administrator",
		Roles:        []string{domain.RoleAdministrator},
		PasswordHash: hash,
	}
	if err := app.users.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	category := &domain.Term{Taxonomy: "category", Name: "Uncategorized", Slug: "uncategorized"}
	if err := app.terms.Create(ctx, category); err != nil && !errors.Is(err, store.ErrSlugExists) {
		return fmt.Errorf("create category: %w", err)
	}

	now := time.Now().UTC()
	post := &domain.Post{
		Type:          "post",
		Status:        domain.StatusPublish,
		Slug:          "hello-world",
		Title:         "Hello world!",
		Content:       "<p>Welcome. This is your first post. Edit or delete it, then start writing!</p>",
		Author:        admin.ID,
		Date:          now,
		DateGMT:       now,
		Modified:      now,
		ModifiedGMT:   now,
		CommentStatus: "open",
		PingStatus:    "open",
		Format:        "standard",
	}
	if category.ID != 0 {
		post.Terms = map[string][]int64{"category": {category.ID}}
	}
	if err := app.posts.Create(ctx, post); err != nil {
		return fmt.Errorf("create post: %w", err)
	}

	app.logger.Info("demo content seeded",
		slog.String("login", demoAdminLogin),
		slog.Int64("post_id", post.ID))
	return nil
}
