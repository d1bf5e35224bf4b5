package domain

import (
	"time"
)

type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	IsAdmin      bool       `json:"is_admin"`
	IsBanned     bool       `json:"is_banned"`
	CreatedAt    time.Time  `json:"created_at"`
	LastSeen     *time.Time `json:"last_seen,omitempty"`
}

// Identity is the read-mostly snapshot of a user taken at auth time. It is
// shared by reference between the connection registry and outgoing frames and
// never mutated after creation; a role change requires re-authentication.
type Identity struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	IsBanned bool   `json:"-"`
}

// UserRef is the compact user reference carried by presence and typing frames.
type UserRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func (i *Identity) Ref() UserRef {
	return UserRef{ID: i.UserID, Username: i.Username}
}
