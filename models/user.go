package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account that owns classification rules
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserName  string    `json:"user_name" db:"user_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new User instance
func NewUser(userName string) *User {
	return &User{
		ID:        uuid.New(),
		UserName:  userName,
		CreatedAt: time.Now(),
	}
}
