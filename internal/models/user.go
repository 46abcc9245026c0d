// Package models contains data models for the identity service.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents an account in the system. Emails are stored lower-cased;
// callers normalize before lookups so uniqueness is case-insensitive.
type User struct {
	ID           string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Username     string    `json:"username" gorm:"size:64;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	FirstName    *string   `json:"first_name,omitempty" gorm:"size:100"`
	LastName     *string   `json:"last_name,omitempty" gorm:"size:100"`
	Active       bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Roles        []Role    `json:"roles,omitempty" gorm:"many2many:user_roles"`
}

// TableName returns the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns a UUID primary key when none is set.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// HasRole reports whether the preloaded role list contains the named role.
// Authorization decisions go through the repository so they always see the
// current membership state; this helper is for already-loaded users only.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}
