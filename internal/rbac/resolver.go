package rbac

import "slices"

// Resolver answers role and permission questions about an actor. It has no
// side effects and is safe for concurrent use.
type Resolver struct {
	registry *Registry
}

// NewResolver builds a Resolver over registry.
func NewResolver(registry *Registry) Resolver {
	return Resolver{registry: registry}
}

// HasRole is true when the actor holds at least one of roles.
func (r Resolver) HasRole(actor Actor, roles ...RoleName) bool {
	for _, role := range roles {
		if slices.Contains(actor.Roles, role) {
			return true
		}
	}
	return false
}

// HasPermission is true when any role of the actor grants perm.
func (r Resolver) HasPermission(actor Actor, perm Permission) bool {
	for _, role := range actor.Roles {
		if r.registry.Grants(role, perm) {
			return true
		}
	}
	return false
}

// Permissions returns the deduplicated union of the actor's grants.
func (r Resolver) Permissions(actor Actor) []Permission {
	var out []Permission
	for _, role := range actor.Roles {
		for _, perm := range r.registry.Permissions(role) {
			if !slices.Contains(out, perm) {
				out = append(out, perm)
			}
		}
	}
	return out
}
