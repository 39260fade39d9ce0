package cache

import (
	"context"
	"strings"

	"github.com/phrazzld/press-api/internal/events"
)

// Invalidator flushes cache groups when content events arrive.
type Invalidator struct {
	cache *ObjectCache
}

var _ events.EventHandler = (*Invalidator)(nil)

// NewInvalidator returns an event handler bound to cache.
func NewInvalidator(cache *ObjectCache) *Invalidator {
	return &Invalidator{cache: cache}
}

// HandleEvent implements events.EventHandler.
func (i *Invalidator) HandleEvent(ctx context.Context, event *events.ContentEvent) error {
	switch {
	case event.Type == events.SiteUpdated:
		return i.cache.Flush(ctx, GroupOptions)
	case strings.HasPrefix(event.Type, "post."), strings.HasPrefix(event.Type, "term."):
		return i.cache.Flush(ctx, GroupTerms)
	}
	return nil
}
