package model

import "time"

// User mirrors the identity provider's view of an account. The core only
// reads it for the feed join; rows are written by the auth layer.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Identity is the authenticated caller resolved from a request's credentials.
type Identity struct {
	ID    string
	Email string
}
