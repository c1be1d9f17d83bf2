package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a persisted account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Subject is the identity a verified token asserts for one request. It is
// rebuilt from token claims on every request and never persisted.
type Subject struct {
	ID      uuid.UUID `json:"id"`
	Email   string    `json:"email"`
	IsAdmin bool      `json:"isAdmin"`
}

// SubjectOf derives the request identity for u.
func SubjectOf(u *User) Subject {
	return Subject{ID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin}
}
