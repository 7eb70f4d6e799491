package user

import "time"

// User is the authentication identity. Everything about the person beyond
// credentials (names, role, blocked flag, preferences) lives on the profile
// row keyed by the user id.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
