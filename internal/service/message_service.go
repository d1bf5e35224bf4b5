package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkralj/banter/internal/crypto"
	"github.com/dkralj/banter/internal/domain"
	"github.com/dkralj/banter/internal/repository"
)

// MessageService is the single write path for the messages table. Sealing
// happens here and nowhere else, so the at-rest encryption policy cannot be
// bypassed by a caller.
type MessageService struct {
	messages repository.MessageRepository
	actions  repository.AdminActionRepository
	sealer   *crypto.Sealer
}

// NewMessageService builds the message pipeline. A nil sealer disables
// at-rest encryption and persists plaintext.
func NewMessageService(messages repository.MessageRepository, actions repository.AdminActionRepository, sealer *crypto.Sealer) *MessageService {
	return &MessageService{
		messages: messages,
		actions:  actions,
		sealer:   sealer,
	}
}

// Create persists a message and returns it with the plaintext content intact
// for broadcasting. Only text messages are sealed; file and system rows keep
// their content readable.
func (s *MessageService) Create(ctx context.Context, userID int64, username, content, messageType string, filePath *string, encrypt bool) (*domain.Message, error) {
	msg := &domain.Message{
		UserID:      userID,
		Username:    username,
		Content:     content,
		MessageType: messageType,
		FilePath:    filePath,
		CreatedAt:   time.Now(),
	}

	if encrypt && s.sealer != nil && messageType == domain.MessageTypeText {
		sealed, err := s.sealer.Seal(content)
		if err != nil {
			return nil, fmt.Errorf("sealing message: %w", err)
		}
		stored := *msg
		stored.Content = ""
		stored.EncryptedContent = &sealed
		if err := s.messages.Create(ctx, &stored); err != nil {
			return nil, fmt.Errorf("creating message: %w", err)
		}
		msg.ID = stored.ID
		msg.EncryptedContent = &sealed
		return msg, nil
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}
	return msg, nil
}

// History returns a page of recent messages in chronological order. Rows are
// read newest first, each sealed body is opened individually, and a row whose
// ciphertext fails authentication gets the placeholder content instead of
// failing the page.
func (s *MessageService) History(ctx context.Context, limit, offset int) ([]domain.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	messages, err := s.messages.ListRecent(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}

	for i := range messages {
		if messages[i].EncryptedContent == nil {
			continue
		}
		if s.sealer == nil {
			messages[i].Content = domain.DecryptionPlaceholder
			continue
		}
		plain, err := s.sealer.Open(*messages[i].EncryptedContent)
		if err != nil {
			if !errors.Is(err, crypto.ErrDecryptFailed) {
				return nil, err
			}
			messages[i].Content = domain.DecryptionPlaceholder
			continue
		}
		messages[i].Content = plain
	}

	// The query returns newest first; clients want chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

// Delete removes a message row and records the action in the audit trail. It
// does not check that the row still exists; deleting twice is a no-op with
// two audit entries.
func (s *MessageService) Delete(ctx context.Context, messageID, adminID int64) error {
	if err := s.messages.Delete(ctx, messageID); err != nil {
		return fmt.Errorf("deleting message: %w", err)
	}
	action := &domain.AdminAction{
		AdminID:   adminID,
		Action:    domain.ActionDeleteMessage,
		Details:   fmt.Sprintf("Deleted message ID: %d", messageID),
		CreatedAt: time.Now(),
	}
	if err := s.actions.Create(ctx, action); err != nil {
		return fmt.Errorf("recording admin action: %w", err)
	}
	return nil
}

func (s *MessageService) Count(ctx context.Context) (int64, error) {
	return s.messages.Count(ctx)
}
