package policy

import "github.com/Sanilblank/blog-api/internal/rbac"

// PostPolicy decides on post actions.
type PostPolicy struct {
	resolver rbac.Resolver
}

// Create allows publishing a post.
func (p PostPolicy) Create(actor rbac.Actor) bool {
	return p.resolver.HasPermission(actor, rbac.CreatePost)
}

// Update allows admins and the post owner.
func (p PostPolicy) Update(actor rbac.Actor, post Owned) bool {
	return p.ownerOrAdmin(actor, post, rbac.UpdatePost)
}

// Delete allows admins and the post owner.
func (p PostPolicy) Delete(actor rbac.Actor, post Owned) bool {
	return p.ownerOrAdmin(actor, post, rbac.DeletePost)
}

func (p PostPolicy) ownerOrAdmin(actor rbac.Actor, post Owned, perm rbac.Permission) bool {
	if !p.resolver.HasPermission(actor, perm) {
		return false
	}
	return p.resolver.HasRole(actor, rbac.RoleAdmin) || post.OwnerID() == actor.ID
}
