// model/user.go
package model

import "time"

// User is the authenticated principal of a request. Roles and Permissions
// are expected to be eagerly loaded by the user store so that permission
// resolution never does I/O of its own.
type User struct {
	ID           string       `json:"id" gorm:"primaryKey"`
	Name         string       `json:"name"`
	Email        string       `json:"email" gorm:"uniqueIndex"`
	PasswordHash string       `json:"-" gorm:"column:password_hash"`
	Roles        []Role       `json:"roles" gorm:"many2many:user_roles"`
	Permissions  []Permission `json:"permissions" gorm:"many2many:user_permissions"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Role is a named collection of permissions. Its name is its identity and
// never changes once created; the permission set may.
type Role struct {
	ID          string       `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"uniqueIndex"`
	Permissions []Permission `json:"permissions" gorm:"many2many:role_permissions"`
}

// Permission is a named atomic capability, e.g. "create_user".
type Permission struct {
	ID   string `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex"`
}
