// Package common contains shared constants and sentinel errors used across
// todoauth components.
package common

// Keys of the persisted key-value entries. Values are JSON documents.
const (
	// UsersStorageKey holds the array of stored user records.
	UsersStorageKey = "auth_users_v1"
	// TokensStorageKey holds the userId -> session token map.
	TokensStorageKey = "auth_tokens_v1"
	// ResetTokensStorageKey holds the userId -> {token, expires} map.
	ResetTokensStorageKey = "password_reset_tokens"
	// AuthStateStorageKey holds the trimmed session snapshot.
	AuthStateStorageKey = "auth_state_v1"
)

// MinPasswordLength is the shortest password accepted on register, reset
// and profile update.
const MinPasswordLength = 6
