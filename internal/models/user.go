package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleUser       UserRole = "user"
	RoleStoreOwner UserRole = "store_owner"
)

// Roles lists every valid role.
var Roles = []UserRole{RoleAdmin, RoleUser, RoleStoreOwner}

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleStoreOwner:
		return true
	}
	return false
}

// ParseRole maps a raw string to a role, rejecting anything outside the closed set.
func ParseRole(s string) (UserRole, error) {
	r := UserRole(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

type User struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"size:60;not null" json:"name"`
	Email        string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Address      *string   `gorm:"size:400" json:"address"`
	Role         UserRole  `gorm:"type:varchar(20);not null;default:'user';index" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
