package scheduler

import "time"

// SessionKind tells study sessions from reserved essay practice.
type SessionKind string

const (
	SessionStudy SessionKind = "study"
	SessionEssay SessionKind = "essay"
)

// Session is one calendar slot of a materialized plan.
type Session struct {
	Position int               `json:"position"`
	Date     time.Time         `json:"date"`
	Slot     int               `json:"slot"`
	Kind     SessionKind       `json:"kind"`
	Topic    *Topic            `json:"topic,omitempty"`
	Reviews  []ReviewPlacement `json:"reviews,omitempty"`
}

// Materialization maps a distributed sequence onto the calendar.
type Materialization struct {
	Sessions    []Session `json:"sessions"`
	Unscheduled []Topic   `json:"unscheduled"`
}

// Materialize walks the plan window day by day, consuming each day's slots in
// order. When the plan has an essay, the first slot of every Sunday is kept
// for essay practice. Topics that do not fit are returned as unscheduled.
// Review placements follow ReviewOffsets and do not consume slots here.
func Materialize(plan Plan, seq []Topic) Materialization {
	out := Materialization{Sessions: make([]Session, 0, len(seq)), Unscheduled: []Topic{}}
	next := 0
	position := 0
	if plan.SessionMinutes > 0 {
		for day, last := DateOnly(plan.StartDate), DateOnly(plan.ExamDate); !day.After(last); day = day.AddDate(0, 0, 1) {
			slots := plan.Hours.SlotsPerDay(day.Weekday(), plan.SessionMinutes)
			for slot := 1; slot <= slots; slot++ {
				session := Session{Date: day, Slot: slot, Kind: SessionStudy}
				if plan.HasEssay && day.Weekday() == time.Sunday && slot == 1 {
					session.Kind = SessionEssay
				} else {
					if next >= len(seq) {
						break
					}
					topic := seq[next]
					next++
					session.Topic = &topic
					session.Reviews = PlanReviews(day, plan.ExamDate, plan.Hours)
				}
				position++
				session.Position = position
				out.Sessions = append(out.Sessions, session)
			}
		}
	}
	out.Unscheduled = append(out.Unscheduled, seq[next:]...)
	return out
}
