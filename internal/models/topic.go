package models

import (
	"strings"
	"time"

	"github.com/noah-isme/cronograma-api/internal/scheduler"
)

// Topic status values as stored by the plan editor.
const (
	TopicStatusPending   = "Pendente"
	TopicStatusCompleted = "Concluído"
)

// Topic is a unit of study content joined with its subject's name and weight.
type Topic struct {
	ID             string     `db:"id" json:"id"`
	SubjectID      string     `db:"subject_id" json:"subject_id"`
	SubjectName    string     `db:"subject_name" json:"subject_name"`
	Priority       int        `db:"priority" json:"priority"`
	TopicPriority  int        `db:"topic_priority" json:"topic_priority"`
	Description    string     `db:"description" json:"description"`
	Status         string     `db:"status" json:"status"`
	CompletionDate *time.Time `db:"completion_date" json:"completion_date,omitempty"`
}

// Completed reports whether the topic has been studied.
func (t Topic) Completed() bool {
	switch strings.ToLower(strings.TrimSpace(t.Status)) {
	case strings.ToLower(TopicStatusCompleted), "concluido", "completed":
		return true
	}
	return false
}

// SchedulerTopic converts the row into the engine representation.
func (t Topic) SchedulerTopic() scheduler.Topic {
	status := scheduler.TopicPending
	if t.Completed() {
		status = scheduler.TopicCompleted
	}
	return scheduler.Topic{
		ID:            t.ID,
		SubjectName:   t.SubjectName,
		SubjectWeight: t.Priority,
		TopicPriority: t.TopicPriority,
		Status:        status,
	}
}

// SchedulerTopics converts a slice of rows preserving order.
func SchedulerTopics(rows []Topic) []scheduler.Topic {
	out := make([]scheduler.Topic, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.SchedulerTopic())
	}
	return out
}
