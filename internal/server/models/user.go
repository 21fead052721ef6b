package models

import "time"

// User is the credential record. PasswordHash is always a bcrypt hash,
// never the plaintext. RefreshToken holds at most one live value: login and
// refresh overwrite it, logout clears it (single active session per user).
type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	PasswordHash  string    `json:"-"`
	RefreshToken  *string   `json:"-"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Sanitized returns a copy safe to hand to transport layers: the password
// hash and the stored refresh token are stripped.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	u.RefreshToken = nil
	return u
}
