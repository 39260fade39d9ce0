// Package access decides whether a principal may perform an action on a
// content object, using role capabilities and the content registry.
package access

import (
	"github.com/phrazzld/press-api/internal/content"
	"github.com/phrazzld/press-api/internal/domain"
)

// Action is an operation checked by Can.
type Action string

// Actions.
const (
	Read    Action = "read"
	Create  Action = "create"
	Edit    Action = "edit"
	Delete  Action = "delete"
	Publish Action = "publish"
	// Manage covers creating, editing and deleting terms and site settings.
	Manage Action = "manage"
	// Assign is attaching terms of a taxonomy to posts.
	Assign Action = "assign"
)

// Capabilities outside the per-post-type set.
const (
	CapManageTerms   = "manage_categories"
	CapManageOptions = "manage_options"
	CapEditPosts     = "edit_posts"
)

// Checker implements capability checks.
type Checker struct {
	registry *content.Registry
}

// NewChecker creates a Checker bound to the content registry.
func NewChecker(registry *content.Registry) *Checker {
	return &Checker{registry: registry}
}

// Can reports whether p may perform action on entity. Entity is one of
// *domain.Post, *domain.PostType, *domain.Taxonomy, *domain.Term or
// *domain.Site; anything else is denied. A nil principal is anonymous.
func (c *Checker) Can(p *domain.Principal, action Action, entity any) bool {
	switch e := entity.(type) {
	case *domain.Post:
		return c.canPost(p, action, e)
	case *domain.PostType:
		return canPostType(p, action, e)
	case *domain.Taxonomy:
		return canTaxonomy(p, action, e)
	case *domain.Term:
		tax, ok := c.registry.Taxonomy(e.Taxonomy)
		if !ok {
			return false
		}
		if action == Edit || action == Delete || action == Create {
			action = Manage
		}
		return canTaxonomy(p, action, tax)
	case *domain.Site:
		switch action {
		case Read:
			return true
		case Edit, Manage:
			return p.HasCap(CapManageOptions)
		}
	}
	return false
}

func canPostType(p *domain.Principal, action Action, pt *domain.PostType) bool {
	switch action {
	case Read:
		return pt.Public || p.HasCap(pt.Cap("edit"))
	case Create, Edit:
		return p.HasCap(pt.Cap("edit"))
	case Publish:
		return p.HasCap(pt.Cap("publish"))
	case Delete:
		return p.HasCap(pt.Cap("delete"))
	}
	return false
}

func canTaxonomy(p *domain.Principal, action Action, tax *domain.Taxonomy) bool {
	switch action {
	case Read:
		return tax.Public || p.HasCap(CapManageTerms)
	case Manage:
		return p.HasCap(CapManageTerms)
	case Assign:
		return p.HasCap(CapEditPosts)
	}
	return false
}

func (c *Checker) canPost(p *domain.Principal, action Action, post *domain.Post) bool {
	pt, ok := c.registry.PostType(post.Type)
	if !ok {
		return false
	}
	switch action {
	case Read:
		return c.canReadPost(p, pt, post)
	case Create:
		return p.HasCap(pt.Cap("edit"))
	case Publish:
		return p.HasCap(pt.Cap("publish"))
	case Edit:
		return canModifyPost(p, pt, post, "edit")
	case Delete:
		return canModifyPost(p, pt, post, "delete")
	}
	return false
}

func (c *Checker) canReadPost(p *domain.Principal, pt *domain.PostType, post *domain.Post) bool {
	status, ok := c.registry.Status(post.Status)
	if !ok || status.Internal {
		return canModifyPost(p, pt, post, "edit")
	}
	if status.Public {
		return pt.Public || p.HasCap(pt.Cap("edit"))
	}
	if status.Private {
		if p.IsUser(post.Author) {
			return p.HasCap("read")
		}
		return p.HasCap(pt.Cap("read_private"))
	}
	return canModifyPost(p, pt, post, "edit")
}

// canModifyPost applies the own/others/published/private capability split
// for the edit and delete verbs.
func canModifyPost(p *domain.Principal, pt *domain.PostType, post *domain.Post, verb string) bool {
	if p.IsUser(post.Author) {
		if post.Status == domain.StatusPublish || post.Status == domain.StatusFuture {
			return p.HasCap(pt.Cap(verb + "_published"))
		}
		return p.HasCap(pt.Cap(verb))
	}
	if !p.HasCap(pt.Cap(verb + "_others")) {
		return false
	}
	switch post.Status {
	case domain.StatusPublish, domain.StatusFuture:
		return p.HasCap(pt.Cap(verb + "_published"))
	case domain.StatusPrivate:
		return p.HasCap(pt.Cap(verb + "_private"))
	}
	return true
}
