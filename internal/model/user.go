// Package model defines domain entities for the application.
package model

import "time"

// User is an approved-user record. Presence of a row with a matching
// email is the sole entitlement gate for dashboard access; the table is
// correlated with access requests by email equality only, not by key.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}
