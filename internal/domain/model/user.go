package model

import (
	"strings"
	"time"
)

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           string
	Email        string // Normalized with NormalizeEmail before storage and lookup.
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// PublicUser is the subset of User fields safe to return to clients.
type PublicUser struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
}

// Public strips credential material from the user record.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address so
// lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
