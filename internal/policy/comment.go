package policy

import (
	"github.com/Sanilblank/blog-api/internal/rbac"
	"github.com/Sanilblank/blog-api/internal/shared"
)

// CommentPolicy decides on comment actions. Update and Delete receive the
// post from the route; a comment attached elsewhere is always denied.
type CommentPolicy struct {
	resolver rbac.Resolver
}

// Create allows commenting.
func (p CommentPolicy) Create(actor rbac.Actor) bool {
	return p.resolver.HasPermission(actor, rbac.CreateComment)
}

// Update allows admins and the comment owner.
func (p CommentPolicy) Update(actor rbac.Actor, post Owned, comment Child) bool {
	if !p.resolver.HasPermission(actor, rbac.UpdateComment) {
		return false
	}
	if !BelongsTo(comment, post) {
		return false
	}
	return p.resolver.HasRole(actor, rbac.RoleAdmin) || comment.OwnerID() == actor.ID
}

// Delete additionally allows the owner of the commented post.
func (p CommentPolicy) Delete(actor rbac.Actor, post Owned, comment Child) bool {
	if !p.resolver.HasPermission(actor, rbac.DeleteComment) {
		return false
	}
	if !BelongsTo(comment, post) {
		return false
	}
	if p.resolver.HasRole(actor, rbac.RoleAdmin) || comment.OwnerID() == actor.ID {
		return true
	}
	return comment.Parent().Kind == shared.KindPost && post.OwnerID() == actor.ID
}

// BelongsTo reports whether comment is attached to post.
func BelongsTo(comment Child, post Owned) bool {
	return comment.Parent().Is(shared.KindPost, post.GetID())
}
