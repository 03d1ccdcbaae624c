package models

import (
	"gorm.io/datatypes"
)

// Role is a department. Workflow notifications are addressed to roles by name.
type Role struct {
	Base
	Name        string                      `gorm:"not null;uniqueIndex" json:"name"`
	Description string                      `json:"description"`
	Permissions datatypes.JSONSlice[string] `json:"permissions"`
}

// TableName specifies the table name for the Role model
func (Role) TableName() string {
	return "roles"
}

// User is a login account belonging to a role.
type User struct {
	Base
	Username     string `gorm:"not null;uniqueIndex" json:"username"`
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	RoleID       string `gorm:"index" json:"roleId"`
	Active       bool   `json:"active"`
	PasswordHash string `json:"-"`
	Password     string `gorm:"-" json:"password,omitempty"` // write-only
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
