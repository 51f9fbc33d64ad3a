package models

import "time"

// ResetToken is an outstanding password-reset credential. Expires is stored
// as Unix milliseconds.
type ResetToken struct {
	Token   string `json:"token"`
	Expires int64  `json:"expires"`
}

// NewResetToken returns a token that expires ttl after now.
func NewResetToken(token string, now time.Time, ttl time.Duration) ResetToken {
	return ResetToken{Token: token, Expires: now.Add(ttl).UnixMilli()}
}

func (t ResetToken) ExpiresAt() time.Time {
	return time.UnixMilli(t.Expires)
}

// Expired reports whether the token expired strictly before now.
func (t ResetToken) Expired(now time.Time) bool {
	return t.Expires < now.UnixMilli()
}
