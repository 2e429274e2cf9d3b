package rbac

import "time"

// RoleName identifies a role.
type RoleName string

// Roles known to the system. Every user holds exactly one of them.
const (
	RoleAdmin  RoleName = "admin"
	RoleAuthor RoleName = "author"
)

// Permission names an atomic capability.
type Permission string

// Permissions known to the system.
const (
	ViewAllUsers  Permission = "view_all_users"
	CreateUser    Permission = "create_user"
	ViewUser      Permission = "view_user"
	UpdateUser    Permission = "update_user"
	DeleteUser    Permission = "delete_user"
	CreatePost    Permission = "create_post"
	UpdatePost    Permission = "update_post"
	DeletePost    Permission = "delete_post"
	CreateComment Permission = "create_comment"
	UpdateComment Permission = "update_comment"
	DeleteComment Permission = "delete_comment"
)

// AllRoles lists the roles in seeding order.
func AllRoles() []RoleName {
	return []RoleName{RoleAdmin, RoleAuthor}
}

// AllPermissions lists every permission in seeding order.
func AllPermissions() []Permission {
	return []Permission{
		ViewAllUsers, CreateUser, ViewUser, UpdateUser, DeleteUser,
		CreatePost, UpdatePost, DeletePost,
		CreateComment, UpdateComment, DeleteComment,
	}
}

// ParseRoleName validates a role name.
func ParseRoleName(s string) (RoleName, bool) {
	for _, r := range AllRoles() {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// Role is a persisted role with its granted permissions.
type Role struct {
	ID          int64        `json:"id"`
	Name        RoleName     `json:"name"`
	Permissions []Permission `json:"permissions,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Actor is the principal on whose behalf a request runs.
type Actor struct {
	ID    int64
	Roles []RoleName
}

// GetID returns the actor's user id.
func (a Actor) GetID() int64 { return a.ID }

// Guest reports whether the actor is unauthenticated.
func (a Actor) Guest() bool { return a.ID == 0 }
