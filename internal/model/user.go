package model

import "time"

// User represents a row in the `users` table together with the roles
// assigned to it.  PasswordHash never leaves the service; handlers render
// users through their own response types.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Username     – unique login name.
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	IsActive     – deactivated users cannot log in.
//	IsSuperuser  – bypasses every role/permission check.
//	Roles        – loaded together with the user; each carries its permissions.
type User struct {
	ID           uint64     // users.id
	Username     string     // users.username
	Email        string     // users.email
	PasswordHash string     // users.password_hash
	FullName     string     // users.full_name
	Phone        *string    // users.phone (nullable)
	Avatar       *string    // users.avatar (nullable)
	IsActive     bool       // users.is_active
	IsSuperuser  bool       // users.is_superuser
	CreatedAt    time.Time  // users.created_at
	UpdatedAt    time.Time  // users.updated_at
	LastLogin    *time.Time // users.last_login (nullable)
	Roles        []Role
}

// HasPermission reports whether any of the user's roles grants action on
// resource.  It does not look at IsSuperuser.
func (u *User) HasPermission(resource, action string) bool {
	for _, r := range u.Roles {
		for _, p := range r.Permissions {
			if p.Resource == resource && p.Action == action {
				return true
			}
		}
	}
	return false
}

// Role represents a row in the `roles` table.  Users reference roles
// through `user_roles`; permissions hang off roles through
// `role_permissions`.  Deleting a role removes both link rows but never
// the users or permissions themselves.
type Role struct {
	ID          uint64       `json:"id"`
	Name        string       `json:"name"`
	Description *string      `json:"description,omitempty"`
	IsSystem    bool         `json:"is_system"`
	CreatedAt   time.Time    `json:"created_at"`
	Permissions []Permission `json:"permissions"`
}

// Permission is a (resource, action) pair, e.g. ("team", "create").
type Permission struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Resource    string  `json:"resource"`
	Action      string  `json:"action"`
	Description *string `json:"description,omitempty"`
}

// NewUser holds the fields needed to insert a user.  PasswordHash must
// already be hashed.
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	Phone        *string
	IsSuperuser  bool
}
