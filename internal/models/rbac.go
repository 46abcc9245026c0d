// Package models contains data models for the identity service.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reserved role names seeded at startup.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Role represents a permission group granted to users through memberships.
type Role struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name      string    `json:"name" gorm:"size:50;uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
	Users     []User    `json:"-" gorm:"many2many:user_roles"`
}

// TableName returns the database table name for the Role model.
func (Role) TableName() string {
	return "roles"
}

// BeforeCreate assigns a UUID primary key when none is set.
func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// UserRole is the join table recording that a user holds a role. The
// composite primary key keeps each (user, role) pair unique, and both
// foreign keys cascade so deleting either endpoint removes the membership.
type UserRole struct {
	UserID string `gorm:"type:varchar(36);primaryKey"`
	RoleID string `gorm:"type:varchar(36);primaryKey"`
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Role   Role   `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name for the UserRole model.
func (UserRole) TableName() string {
	return "user_roles"
}
