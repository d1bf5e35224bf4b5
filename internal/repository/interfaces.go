package repository

import (
	"context"

	"github.com/dkralj/banter/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	SetBanned(ctx context.Context, id int64, banned bool) error
	TouchLastSeen(ctx context.Context, id int64) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	DeleteByUser(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	ListRecent(ctx context.Context, limit, offset int) ([]domain.Message, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

type AdminActionRepository interface {
	Create(ctx context.Context, action *domain.AdminAction) error
	ListRecent(ctx context.Context, limit int) ([]domain.AdminAction, error)
}
