package model

import "time"

// User represents an application user record as stored in the `users`
// table.  Handlers expose a reduced view; PasswordHash never leaves the
// service layer.
type User struct {
	ID           uint64
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         Role
	IsActive     bool
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName joins first and last name.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// OneTimePassword is the pending email verification code of a user.  A
// user has at most one code at a time.
type OneTimePassword struct {
	UserID    uint64
	Code      string
	ExpiresAt time.Time
}
