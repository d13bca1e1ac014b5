package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"neurospark-backend/internal/models"
)

type LearnerRepo struct {
	pool *pgxpool.Pool
}

func NewLearnerRepo(pool *pgxpool.Pool) *LearnerRepo {
	return &LearnerRepo{pool: pool}
}

func (r *LearnerRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Learner, error) {
	query := `SELECT id, name, age, learning_needs, settings, created_at
		FROM learners WHERE id = $1`

	return r.scanLearner(r.pool.QueryRow(ctx, query, id))
}

// GetOrCreateDefault returns the single learner profile, creating it on
// first use. The client is a single-profile app; there is no sign-up flow.
func (r *LearnerRepo) GetOrCreateDefault(ctx context.Context) (*models.Learner, error) {
	query := `SELECT id, name, age, learning_needs, settings, created_at
		FROM learners ORDER BY created_at ASC LIMIT 1`

	learner, err := r.scanLearner(r.pool.QueryRow(ctx, query))
	if err == nil {
		return learner, nil
	}
	if err != pgx.ErrNoRows {
		return nil, err
	}

	return r.createDefault(ctx)
}

func (r *LearnerRepo) createDefault(ctx context.Context) (*models.Learner, error) {
	l := &models.Learner{
		ID:            uuid.New(),
		Name:          "Learner",
		LearningNeeds: []string{"dyslexia", "dyscalculia"},
		Settings:      models.DefaultLearnerSettings(),
	}

	needsBytes, _ := json.Marshal(l.LearningNeeds)
	settingsBytes, _ := json.Marshal(l.Settings)

	query := `INSERT INTO learners (id, name, age, learning_needs, settings)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at`

	err := r.pool.QueryRow(ctx, query, l.ID, l.Name, l.Age, needsBytes, settingsBytes).Scan(&l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *LearnerRepo) UpdateSettings(ctx context.Context, id uuid.UUID, settings models.LearnerSettings) (*models.Learner, error) {
	settingsBytes, _ := json.Marshal(settings)

	query := `UPDATE learners SET settings = $1 WHERE id = $2
		RETURNING id, name, age, learning_needs, settings, created_at`

	return r.scanLearner(r.pool.QueryRow(ctx, query, settingsBytes, id))
}

func (r *LearnerRepo) scanLearner(row pgx.Row) (*models.Learner, error) {
	l := &models.Learner{}
	var needsBytes, settingsBytes []byte

	err := row.Scan(&l.ID, &l.Name, &l.Age, &needsBytes, &settingsBytes, &l.CreatedAt)
	if err != nil {
		return nil, err
	}

	json.Unmarshal(needsBytes, &l.LearningNeeds)
	json.Unmarshal(settingsBytes, &l.Settings)
	return l, nil
}
