// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Usernames are unique (a UNIQUE constraint in the database is the
// authoritative guard) and immutable after registration. The ID is our own
// xid string — sortable, URL-safe, generated server-side at insert time.
//
// WHY PasswordHash AND NOT Password?
// The plaintext is never stored or transported past the login/register
// handlers. This field holds the bcrypt output, which embeds its own random
// salt and cost — two users with the same password still get different
// hashes. The `json:"-"` tag keeps the hash out of every API response no
// matter how the struct is encoded.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
