package auth

import "time"

// SessionData represents the authenticated session context for a request
type SessionData struct {
	UserID    string
	Email     string
	TokenID   string
	ExpiresAt time.Time
}
