// Package model defines UI-facing entities used by the adapter and controllers.
package model

import "time"

// Note is a single note as the client presents it.
type Note struct {
	// ID is server-assigned and positive.
	ID    int64  `json:"id"`
	Title string `json:"title"`
	// Content travels as "body" on the wire.
	Content string `json:"content"`
	// CreatedAt is server-assigned and never changes.
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Credentials are submitted once per register/login and never persisted.
type Credentials struct {
	Email    string
	Password string
}

// Token is the login response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Account represents a registered user as returned by the backend.
type Account struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}
