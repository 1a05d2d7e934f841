// Package domain contains core types for the auth service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a system user account.
type User struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Email        string       `gorm:"type:text;not null;uniqueIndex" json:"email"`
	PasswordHash string       `gorm:"type:text;not null" json:"-"`
	FullName     string       `gorm:"type:text;not null" json:"fullName"`
	Role         string       `gorm:"type:text;not null;default:'user'" json:"role"`
	AvatarURL    *string      `gorm:"type:text" json:"avatarUrl"`
	IsActive     bool         `gorm:"not null" json:"isActive"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }
