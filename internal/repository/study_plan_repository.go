package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/cronograma-api/internal/models"
)

// StudyPlanRepository reads study plans.
type StudyPlanRepository struct {
	db *sqlx.DB
}

// NewStudyPlanRepository creates a new repository instance.
func NewStudyPlanRepository(db *sqlx.DB) *StudyPlanRepository {
	return &StudyPlanRepository{db: db}
}

// FindByID returns a plan by id. A missing plan yields sql.ErrNoRows.
func (r *StudyPlanRepository) FindByID(ctx context.Context, id string) (*models.StudyPlan, error) {
	const query = `SELECT CAST(id AS TEXT) AS id, CAST(user_id AS TEXT) AS user_id, plan_name, exam_date, study_hours_per_day, session_duration_minutes, has_essay, COALESCE(reta_final_mode, FALSE) AS reta_final_mode, created_at, updated_at FROM study_plans WHERE CAST(id AS TEXT) = $1`
	var plan models.StudyPlan
	if err := r.db.GetContext(ctx, &plan, query, id); err != nil {
		return nil, err
	}
	return &plan, nil
}
