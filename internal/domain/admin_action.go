package domain

import (
	"time"
)

const (
	ActionBanUser       = "ban_user"
	ActionUnbanUser     = "unban_user"
	ActionKickUser      = "kick_user"
	ActionDeleteMessage = "delete_message"
	ActionBroadcast     = "admin_broadcast"
)

// AdminAction is one row of the append-only moderation audit trail.
type AdminAction struct {
	ID           int64     `json:"id"`
	AdminID      int64     `json:"admin_id"`
	Action       string    `json:"action"`
	TargetUserID *int64    `json:"target_user_id,omitempty"`
	Details      string    `json:"details"`
	CreatedAt    time.Time `json:"created_at"`
}
