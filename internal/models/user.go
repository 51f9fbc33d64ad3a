// Package models defines the data shared by the stores, the auth service and
// the session layer. JSON tags match the persisted key-value documents.
package models

import "time"

// Role is the coarse permission tier of a user. ADMIN is a superset of USER.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is the public view of an account. It never carries the password hash.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	Role          Role      `json:"role"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
}

// StoredUser is the persisted record. PasswordHash is empty for accounts
// created through social login.
type StoredUser struct {
	User
	PasswordHash string `json:"passwordHash"`
}

// Public returns a copy of the user without the password hash.
func (u StoredUser) Public() User {
	return u.User
}

// Clone returns a copy of u that shares no memory with it.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
