package domain

import "time"

// Session is the decoded content of a verified session token.
type Session struct {
	AdminID    int64
	Email      string
	Name       string
	Role       AdminRole
	CategoryID *int64
	ExpiresAt  time.Time
}
