package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dkralj/banter/internal/domain"
	"github.com/dkralj/banter/internal/repository"
)

// Disconnector reaches into the live connection layer. Implemented by the
// WebSocket hub; moderation must act on already-open connections, not just
// future logins.
type Disconnector interface {
	// DisconnectUser sends notice to every live connection of the user and
	// closes them. No-op when the user has no connections.
	DisconnectUser(userID int64, notice string)
	// BroadcastAdmin delivers a system-labeled message to every connection.
	BroadcastAdmin(message string)
}

// ModerationService executes admin commands: persisted state first, then the
// live sessions, with every command appended to the audit trail.
type ModerationService struct {
	users        repository.UserRepository
	actions      repository.AdminActionRepository
	sessions     repository.SessionRepository
	messages     *MessageService
	disconnector Disconnector
}

func NewModerationService(
	users repository.UserRepository,
	actions repository.AdminActionRepository,
	sessions repository.SessionRepository,
	messages *MessageService,
) *ModerationService {
	return &ModerationService{
		users:    users,
		actions:  actions,
		sessions: sessions,
		messages: messages,
	}
}

// SetDisconnector wires the live connection layer (optional dependency).
func (s *ModerationService) SetDisconnector(d Disconnector) {
	s.disconnector = d
}

// Ban flags the user, revokes their stored sessions so no saved token can
// re-authenticate, records the action, and force-closes their live
// connections.
func (s *ModerationService) Ban(ctx context.Context, userID, adminID int64) error {
	if err := s.users.SetBanned(ctx, userID, true); err != nil {
		return fmt.Errorf("setting ban flag: %w", err)
	}
	if err := s.sessions.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("revoking sessions: %w", err)
	}
	if err := s.record(ctx, adminID, domain.ActionBanUser, &userID, "User banned"); err != nil {
		return err
	}

	if s.disconnector != nil {
		s.disconnector.DisconnectUser(userID, "You have been banned from the chat")
	}
	return nil
}

// Unban clears the flag. A banned user has no live connections by
// construction, so there is nothing to do on the connection layer.
func (s *ModerationService) Unban(ctx context.Context, userID, adminID int64) error {
	if err := s.users.SetBanned(ctx, userID, false); err != nil {
		return fmt.Errorf("clearing ban flag: %w", err)
	}
	return s.record(ctx, adminID, domain.ActionUnbanUser, &userID, "User unbanned")
}

// Kick closes the user's live connections without persisting a ban. Kicking
// a user with no connections is a no-op, not an error.
func (s *ModerationService) Kick(ctx context.Context, userID, adminID int64) error {
	if err := s.record(ctx, adminID, domain.ActionKickUser, &userID, "User kicked"); err != nil {
		return err
	}
	if s.disconnector != nil {
		s.disconnector.DisconnectUser(userID, "You have been kicked from the chat")
	}
	return nil
}

// BroadcastAdminMessage injects a system-labeled message into the live room
// and persists an audit copy with message_type "system". The live frame is
// ephemeral; the stored copy is readable plaintext.
func (s *ModerationService) BroadcastAdminMessage(ctx context.Context, adminID int64, message string) error {
	if err := s.record(ctx, adminID, domain.ActionBroadcast, nil, message); err != nil {
		return err
	}
	if _, err := s.messages.Create(ctx, adminID, "admin", message, domain.MessageTypeSystem, nil, false); err != nil {
		// The audit row exists; the live broadcast still goes out.
		log.Printf("moderation: persisting admin broadcast copy: %v", err)
	}
	if s.disconnector != nil {
		s.disconnector.BroadcastAdmin(message)
	}
	return nil
}

// DeleteMessage removes a persisted message through the message pipeline's
// choke point.
func (s *ModerationService) DeleteMessage(ctx context.Context, messageID, adminID int64) error {
	return s.messages.Delete(ctx, messageID, adminID)
}

// RecentActions returns the newest audit entries for review.
func (s *ModerationService) RecentActions(ctx context.Context, limit int) ([]domain.AdminAction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.actions.ListRecent(ctx, limit)
}

func (s *ModerationService) record(ctx context.Context, adminID int64, action string, targetUserID *int64, details string) error {
	entry := &domain.AdminAction{
		AdminID:      adminID,
		Action:       action,
		TargetUserID: targetUserID,
		Details:      details,
		CreatedAt:    time.Now(),
	}
	if err := s.actions.Create(ctx, entry); err != nil {
		return fmt.Errorf("recording admin action: %w", err)
	}
	return nil
}
