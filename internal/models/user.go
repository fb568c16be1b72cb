// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered account in the Foodgram application.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Username  string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	FirstName string    `gorm:"size:150;not null" json:"first_name"`
	LastName  string    `gorm:"size:150;not null" json:"last_name"`
	Password  string    `gorm:"not null" json:"-"`
	Avatar    string    `gorm:"size:512" json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// IsSubscribed reports whether the viewing user follows this user (computed)
	IsSubscribed bool `gorm:"-" json:"is_subscribed"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
