package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkralj/banter/internal/domain"
)

// AdminActionRepo is the single write path for the audit trail. Rows are
// append-only; there is deliberately no update or delete.
type AdminActionRepo struct {
	pool *pgxpool.Pool
}

func NewAdminActionRepo(pool *pgxpool.Pool) *AdminActionRepo {
	return &AdminActionRepo{pool: pool}
}

func (r *AdminActionRepo) Create(ctx context.Context, action *domain.AdminAction) error {
	query := `
		INSERT INTO admin_actions (admin_id, action, target_user_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	return r.pool.QueryRow(ctx, query,
		action.AdminID, action.Action, action.TargetUserID, action.Details, action.CreatedAt,
	).Scan(&action.ID)
}

func (r *AdminActionRepo) ListRecent(ctx context.Context, limit int) ([]domain.AdminAction, error) {
	query := `
		SELECT id, admin_id, action, target_user_id, details, created_at
		FROM admin_actions
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []domain.AdminAction
	for rows.Next() {
		var a domain.AdminAction
		if err := rows.Scan(&a.ID, &a.AdminID, &a.Action, &a.TargetUserID, &a.Details, &a.CreatedAt); err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}
