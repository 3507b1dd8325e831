package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/cronograma-api/internal/scheduler"
)

// DefaultSessionMinutes is used when a plan has no session duration stored.
const DefaultSessionMinutes = 50

// StudyPlan represents an exam-prep plan owned by a user.
type StudyPlan struct {
	ID                     string         `db:"id" json:"id"`
	UserID                 string         `db:"user_id" json:"user_id"`
	PlanName               string         `db:"plan_name" json:"plan_name"`
	ExamDate               time.Time      `db:"exam_date" json:"exam_date"`
	StudyHoursPerDay       types.JSONText `db:"study_hours_per_day" json:"study_hours_per_day"`
	SessionDurationMinutes *int           `db:"session_duration_minutes" json:"session_duration_minutes,omitempty"`
	HasEssay               bool           `db:"has_essay" json:"has_essay"`
	FinalStretch           bool           `db:"reta_final_mode" json:"reta_final_mode"`
	CreatedAt              time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time      `db:"updated_at" json:"updated_at"`
}

// SessionMinutes returns the stored duration or the default.
func (p *StudyPlan) SessionMinutes() int {
	if p.SessionDurationMinutes == nil || *p.SessionDurationMinutes <= 0 {
		return DefaultSessionMinutes
	}
	return *p.SessionDurationMinutes
}

// WeeklyHours decodes the stored weekday budget. Values may be stored as
// numbers or numeric strings.
func (p *StudyPlan) WeeklyHours() (scheduler.WeeklyHours, error) {
	if len(p.StudyHoursPerDay) == 0 {
		return scheduler.WeeklyHours{}, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(p.StudyHoursPerDay, &raw); err != nil {
		return scheduler.WeeklyHours{}, fmt.Errorf("decode study hours: %w", err)
	}
	values := make(map[string]float64, len(raw))
	for key, msg := range raw {
		value, err := decodeHours(msg)
		if err != nil {
			return scheduler.WeeklyHours{}, fmt.Errorf("decode study hours for %s: %w", key, err)
		}
		values[key] = value
	}
	return scheduler.WeeklyHoursFromMap(values)
}

// SchedulerPlan builds the engine input for a run starting on today.
func (p *StudyPlan) SchedulerPlan(today time.Time) (scheduler.Plan, error) {
	hours, err := p.WeeklyHours()
	if err != nil {
		return scheduler.Plan{}, err
	}
	return scheduler.Plan{
		StartDate:      today,
		ExamDate:       p.ExamDate,
		Hours:          hours,
		SessionMinutes: p.SessionMinutes(),
		HasEssay:       p.HasEssay,
		FinalStretch:   p.FinalStretch,
	}, nil
}

func decodeHours(msg json.RawMessage) (float64, error) {
	var number float64
	if err := json.Unmarshal(msg, &number); err == nil {
		return number, nil
	}
	var text string
	if err := json.Unmarshal(msg, &text); err != nil {
		return 0, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, nil
	}
	return strconv.ParseFloat(text, 64)
}
