package domain

import (
	"time"
)

// Session is a server-side login session. Only the SHA-256 hash of the bearer
// token is stored, so a leaked sessions table cannot be replayed.
type Session struct {
	TokenHash string    `json:"-"`
	UserID    int64     `json:"user_id"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
