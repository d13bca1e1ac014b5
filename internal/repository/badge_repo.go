package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"neurospark-backend/internal/models"
)

type BadgeRepo struct {
	pool *pgxpool.Pool
}

func NewBadgeRepo(pool *pgxpool.Pool) *BadgeRepo {
	return &BadgeRepo{pool: pool}
}

// Create inserts unconditionally. Uniqueness of badge_type per learner is
// not enforced anywhere, so re-qualifying mints a duplicate row.
func (r *BadgeRepo) Create(ctx context.Context, b *models.Badge) error {
	b.ID = uuid.New()

	query := `INSERT INTO badges (id, learner_id, badge_type)
		VALUES ($1, $2, $3) RETURNING earned_at`

	return r.pool.QueryRow(ctx, query, b.ID, b.LearnerID, b.BadgeType).Scan(&b.EarnedAt)
}

func (r *BadgeRepo) ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]models.Badge, error) {
	query := `SELECT id, learner_id, badge_type, earned_at
		FROM badges WHERE learner_id = $1 ORDER BY earned_at DESC`

	rows, err := r.pool.Query(ctx, query, learnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var badges []models.Badge
	for rows.Next() {
		b := models.Badge{}
		if err := rows.Scan(&b.ID, &b.LearnerID, &b.BadgeType, &b.EarnedAt); err != nil {
			return nil, err
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}
