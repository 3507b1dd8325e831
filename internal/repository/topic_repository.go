package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/cronograma-api/internal/models"
)

const topicColumns = `CAST(t.id AS TEXT) AS id, CAST(t.subject_id AS TEXT) AS subject_id, s.subject_name, s.priority_weight AS priority, COALESCE(t.priority_weight, 3) AS topic_priority, t.description, t.status, t.completion_date`

// TopicRepository loads plan topics joined with their subject.
type TopicRepository struct {
	db *sqlx.DB
}

// NewTopicRepository creates a new repository instance.
func NewTopicRepository(db *sqlx.DB) *TopicRepository {
	return &TopicRepository{db: db}
}

// ListByPlan returns every topic of the plan in subject then insertion order.
func (r *TopicRepository) ListByPlan(ctx context.Context, planID string) ([]models.Topic, error) {
	query := `SELECT ` + topicColumns + ` FROM topics t JOIN subjects s ON s.id = t.subject_id WHERE CAST(s.study_plan_id AS TEXT) = $1 ORDER BY s.priority_weight DESC, s.id ASC, t.id ASC`
	topics := []models.Topic{}
	if err := r.db.SelectContext(ctx, &topics, query, planID); err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	return topics, nil
}

// PendingByPlan returns topics of the plan that are not completed yet.
func (r *TopicRepository) PendingByPlan(ctx context.Context, planID string) ([]models.Topic, error) {
	query := `SELECT ` + topicColumns + ` FROM topics t JOIN subjects s ON s.id = t.subject_id WHERE CAST(s.study_plan_id AS TEXT) = $1 AND LOWER(t.status) NOT IN ($2, 'concluido', 'completed') ORDER BY s.priority_weight DESC, s.id ASC, t.id ASC`
	topics := []models.Topic{}
	if err := r.db.SelectContext(ctx, &topics, query, planID, "concluído"); err != nil {
		return nil, fmt.Errorf("list pending topics: %w", err)
	}
	return topics, nil
}
