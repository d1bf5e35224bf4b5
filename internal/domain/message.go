package domain

import (
	"time"
)

const (
	MessageTypeText   = "text"
	MessageTypeFile   = "file"
	MessageTypeSystem = "system"
)

// DecryptionPlaceholder replaces the content of a persisted message whose
// ciphertext fails authentication on read.
const DecryptionPlaceholder = "[Decryption failed]"

// Message is a persisted chat message. Exactly one of Content and
// EncryptedContent carries the authoritative text: when the body is sealed at
// rest, Content is stored empty and EncryptedContent holds the encoded blob.
type Message struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	Username         string    `json:"username"`
	Content          string    `json:"content"`
	EncryptedContent *string   `json:"-"`
	MessageType      string    `json:"message_type"`
	FilePath         *string   `json:"file_path,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
