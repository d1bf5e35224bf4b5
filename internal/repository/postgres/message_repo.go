package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkralj/banter/internal/domain"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (user_id, content, encrypted_content, message_type, file_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	return r.pool.QueryRow(ctx, query,
		msg.UserID, msg.Content, msg.EncryptedContent,
		msg.MessageType, msg.FilePath, msg.CreatedAt,
	).Scan(&msg.ID)
}

// ListRecent returns a page of messages in persisted order, newest first.
func (r *MessageRepo) ListRecent(ctx context.Context, limit, offset int) ([]domain.Message, error) {
	query := `
		SELECT m.id, m.user_id, m.content, m.encrypted_content, m.message_type,
			m.file_path, m.created_at, u.username
		FROM messages m
		JOIN users u ON m.user_id = u.id
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID, &msg.UserID, &msg.Content, &msg.EncryptedContent,
			&msg.MessageType, &msg.FilePath, &msg.CreatedAt, &msg.Username,
		); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (r *MessageRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	return err
}

func (r *MessageRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM messages`).Scan(&count)
	return count, err
}
