package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"neurospark-backend/internal/models"
)

// ActivityRepo is append-only: there is deliberately no update or delete.
type ActivityRepo struct {
	pool *pgxpool.Pool
}

func NewActivityRepo(pool *pgxpool.Pool) *ActivityRepo {
	return &ActivityRepo{pool: pool}
}

func (r *ActivityRepo) Create(ctx context.Context, a *models.Activity) error {
	a.ID = uuid.New()
	if a.Data == nil {
		a.Data = map[string]any{}
	}
	dataBytes, _ := json.Marshal(a.Data)

	query := `INSERT INTO activities (id, learner_id, activity_type, difficulty, score, time_spent, completed, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		a.ID, a.LearnerID, a.ActivityType, a.Difficulty, a.Score, a.TimeSpent, a.Completed, dataBytes,
	).Scan(&a.CreatedAt)
}

// ListByLearner returns the full ledger, most recent first.
func (r *ActivityRepo) ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]models.Activity, error) {
	query := `SELECT id, learner_id, activity_type, difficulty, score, time_spent, completed, data, created_at
		FROM activities WHERE learner_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, learnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

func scanActivities(rows pgx.Rows) ([]models.Activity, error) {
	var activities []models.Activity
	for rows.Next() {
		a := models.Activity{}
		var dataBytes []byte

		err := rows.Scan(
			&a.ID, &a.LearnerID, &a.ActivityType, &a.Difficulty,
			&a.Score, &a.TimeSpent, &a.Completed, &dataBytes, &a.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		json.Unmarshal(dataBytes, &a.Data)
		activities = append(activities, a)
	}
	return activities, rows.Err()
}
