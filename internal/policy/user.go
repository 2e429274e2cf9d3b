package policy

import "github.com/Sanilblank/blog-api/internal/rbac"

// UserPolicy decides on user account actions.
type UserPolicy struct {
	resolver rbac.Resolver
}

// ViewAll allows listing every user.
func (p UserPolicy) ViewAll(actor rbac.Actor) bool {
	return p.resolver.HasPermission(actor, rbac.ViewAllUsers)
}

// Create allows creating users with an explicit role.
func (p UserPolicy) Create(actor rbac.Actor) bool {
	return p.resolver.HasPermission(actor, rbac.CreateUser)
}

// Show allows admins to see anyone and everybody else to see themselves.
func (p UserPolicy) Show(actor, target rbac.Actor) bool {
	if !p.resolver.HasPermission(actor, rbac.ViewUser) {
		return false
	}
	return p.resolver.HasRole(actor, rbac.RoleAdmin) || actor.ID == target.ID
}

// Update allows admins to edit authors, and anyone to edit themselves.
// Admins cannot edit other admins.
func (p UserPolicy) Update(actor, target rbac.Actor) bool {
	return p.manage(actor, target, rbac.UpdateUser)
}

// Delete follows the same shape as Update.
func (p UserPolicy) Delete(actor, target rbac.Actor) bool {
	return p.manage(actor, target, rbac.DeleteUser)
}

func (p UserPolicy) manage(actor, target rbac.Actor, perm rbac.Permission) bool {
	if !p.resolver.HasPermission(actor, perm) {
		return false
	}
	if actor.ID == target.ID {
		return true
	}
	return p.resolver.HasRole(actor, rbac.RoleAdmin) && p.resolver.HasRole(target, rbac.RoleAuthor)
}
