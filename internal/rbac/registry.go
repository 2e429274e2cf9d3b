package rbac

import "slices"

// Registry is the immutable role to permission mapping.
type Registry struct {
	grants map[RoleName][]Permission
}

// NewRegistry copies grants into a new Registry.
func NewRegistry(grants map[RoleName][]Permission) *Registry {
	copied := make(map[RoleName][]Permission, len(grants))
	for role, perms := range grants {
		copied[role] = slices.Clone(perms)
	}
	return &Registry{grants: copied}
}

// DefaultRegistry returns the mapping the application runs with. Admins hold
// every permission; authors manage their own account, posts and comments.
func DefaultRegistry() *Registry {
	return NewRegistry(map[RoleName][]Permission{
		RoleAdmin: AllPermissions(),
		RoleAuthor: {
			ViewUser, UpdateUser, DeleteUser,
			CreatePost, UpdatePost, DeletePost,
			CreateComment, UpdateComment, DeleteComment,
		},
	})
}

// Permissions returns a copy of the permissions granted to role.
func (r *Registry) Permissions(role RoleName) []Permission {
	return slices.Clone(r.grants[role])
}

// Grants reports whether role holds perm.
func (r *Registry) Grants(role RoleName, perm Permission) bool {
	return slices.Contains(r.grants[role], perm)
}

// Roles returns the registered roles in seeding order.
func (r *Registry) Roles() []RoleName {
	out := make([]RoleName, 0, len(r.grants))
	for _, role := range AllRoles() {
		if _, ok := r.grants[role]; ok {
			out = append(out, role)
		}
	}
	return out
}
