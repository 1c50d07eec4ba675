package domain

import "time"

// User is the domain entity for an account. Email doubles as the login
// identifier and is unique.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// DisplayName returns the name to greet the user with, falling back to email.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
