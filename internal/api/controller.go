package api

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/press-api/internal/content"
	"github.com/phrazzld/press-api/internal/domain"
	"github.com/phrazzld/press-api/internal/events"
	"github.com/phrazzld/press-api/internal/platform/logger"
	"github.com/phrazzld/press-api/internal/service/access"
	"github.com/phrazzld/press-api/internal/store"
)

// Namespace is the route namespace of the content controllers.
const Namespace = "wp"

// Authorizer decides whether a principal may act on an entity.
type Authorizer interface {
	Can(p *domain.Principal, action access.Action, entity any) bool
}

// TokenIssuer exchanges account credentials for an access token.
type TokenIssuer interface {
	Login(ctx context.Context, login, password string) (string, *domain.User, error)
}

// Deps are the collaborators shared by every controller.
type Deps struct {
	Content *content.Registry
	Posts   store.PostStore
	Terms   store.TermStore
	Options store.OptionStore
	Users   store.UserStore
	Access  Authorizer
	// Events receives content events after successful writes; nil disables them.
	Events events.EventEmitter
	// BaseURL is the absolute URL of the REST root, e.g. http://localhost:8080/wp-json.
	BaseURL string
	Logger  *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

func (d *Deps) url(path string) string {
	return strings.TrimSuffix(d.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Deps) log(ctx context.Context, component string) *slog.Logger {
	base := d.Logger
	if base == nil {
		base = slog.Default()
	}
	return logger.FromContextOrDefault(ctx, base).With(slog.String("component", component))
}

// emit publishes a content event. Failures are logged, never returned: the
// write has already succeeded.
func (d *Deps) emit(ctx context.Context, eventType, subtype string, id int64, payload any) {
	if err := events.Emit(ctx, d.Events, eventType, subtype, id, payload); err != nil {
		d.log(ctx, "events").Warn("failed to emit content event",
			slog.String("type", eventType),
			slog.Int64("object_id", id),
			slog.String("error", err.Error()))
	}
}

// homeURL is the public site address used for permalinks.
func (d *Deps) homeURL(ctx context.Context) string {
	home, err := d.Options.Get(ctx, domain.OptionHome)
	if err != nil || home == "" {
		home = domain.DefaultOptions()[domain.OptionHome]
	}
	return strings.TrimSuffix(home, "/")
}
