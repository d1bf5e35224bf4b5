package ws

import (
	"time"

	"github.com/dkralj/banter/internal/domain"
)

// Frame types - Client → Server
const (
	FrameAuth    = "auth"
	FrameMessage = "message"
	FrameTyping  = "typing"
	FramePing    = "ping"
)

// Frame types - Server → Client
const (
	FrameAuthSuccess    = "auth_success"
	FrameNewMessage     = "new_message"
	FrameMessageHistory = "message_history"
	FrameOnlineUsers    = "online_users"
	FrameUserJoined     = "user_joined"
	FrameUserLeft       = "user_left"
	FramePong           = "pong"
	FrameError          = "error"
	FrameKicked         = "kicked"
	FrameAdminMessage   = "admin_message"
)

// inboundFrame is the envelope for every client frame. The protocol is flat
// JSON discriminated by "type"; fields not used by a given type stay zero.
type inboundFrame struct {
	Type        string `json:"type"`
	Token       string `json:"token,omitempty"`
	Content     string `json:"content,omitempty"`
	MessageType string `json:"message_type,omitempty"`
	IsTyping    bool   `json:"is_typing,omitempty"`
}

// --- Server → Client frames ---

type errorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type authSuccessFrame struct {
	Type string           `json:"type"`
	User *domain.Identity `json:"user"`
}

type messageHistoryFrame struct {
	Type     string           `json:"type"`
	Messages []domain.Message `json:"messages"`
}

type onlineUsersFrame struct {
	Type  string           `json:"type"`
	Users []domain.UserRef `json:"users"`
}

type newMessageFrame struct {
	Type    string          `json:"type"`
	Message *domain.Message `json:"message"`
}

type presenceFrame struct {
	Type      string         `json:"type"`
	User      domain.UserRef `json:"user"`
	Timestamp string         `json:"timestamp"`
}

type typingFrame struct {
	Type     string         `json:"type"`
	User     domain.UserRef `json:"user"`
	IsTyping bool           `json:"is_typing"`
}

type pongFrame struct {
	Type string `json:"type"`
}

type kickedFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type adminMessageFrame struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func newErrorFrame(message string) errorFrame {
	return errorFrame{Type: FrameError, Message: message}
}

func newPresenceFrame(frameType string, user domain.UserRef) presenceFrame {
	return presenceFrame{
		Type:      frameType,
		User:      user,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}
