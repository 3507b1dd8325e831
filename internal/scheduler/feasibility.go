package scheduler

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// MinSessionMinutes is the shortest session the validator will suggest.
const MinSessionMinutes = 30

// sessionReductionStep is how much shorter a suggested session gets.
const sessionReductionStep = 10

// SuggestionType enumerates remediation strategies for an infeasible plan.
type SuggestionType string

const (
	SuggestIncreaseHours SuggestionType = "increase_hours"
	SuggestExtendDate    SuggestionType = "extend_date"
	SuggestReduceSession SuggestionType = "reduce_session_duration"
)

// FeasibilityStatus summarises a validation outcome.
type FeasibilityStatus string

const (
	StatusFeasible     FeasibilityStatus = "feasible"
	StatusInfeasible   FeasibilityStatus = "infeasible"
	StatusZeroCapacity FeasibilityStatus = "zero_capacity"
)

// Suggestion is an advisory remediation for a slot deficit.
type Suggestion struct {
	Type        SuggestionType `json:"type"`
	Description string         `json:"description"`
	Impact      string         `json:"impact"`
}

// Plan holds the calendar inputs of one scheduling run. StartDate is "today"
// from the caller's point of view. FinalStretch lets generation drop the
// lowest-priority topics when the window is too short.
type Plan struct {
	StartDate      time.Time
	ExamDate       time.Time
	Hours          WeeklyHours
	SessionMinutes int
	HasEssay       bool
	FinalStretch   bool
}

// Options returns the demand-relevant subset of the plan.
func (p Plan) Options() PlanOptions {
	return PlanOptions{StartDate: p.StartDate, ExamDate: p.ExamDate, HasEssay: p.HasEssay}
}

// FeasibilityResult compares slot supply with demand. UtilizationRate is nil
// when there is no capacity to divide by.
type FeasibilityResult struct {
	Status              FeasibilityStatus `json:"status"`
	IsFeasible          bool              `json:"isFeasible"`
	TotalAvailableSlots int               `json:"totalAvailableSlots"`
	SlotsNeeded         int               `json:"slotsNeeded"`
	Deficit             int               `json:"deficit"`
	UtilizationRate     *float64          `json:"utilizationRate"`
	Demand              SlotDemand        `json:"demand"`
	Capacity            SlotBreakdown     `json:"capacity"`
	Suggestions         []Suggestion      `json:"suggestions"`
}

// ValidateScheduleFeasibility checks whether the pending topics of allTopics
// fit in the plan's calendar window and proposes remediations when they don't.
func ValidateScheduleFeasibility(plan Plan, allTopics []Topic) FeasibilityResult {
	pending := PendingTopics(allTopics)
	demand := EstimateDemand(pending, plan.Options())
	capacity := CalculateSlotBreakdown(plan.StartDate, plan.ExamDate, plan.Hours, plan.SessionMinutes)

	result := FeasibilityResult{
		TotalAvailableSlots: capacity.Total,
		SlotsNeeded:         demand.Total(),
		Demand:              demand,
		Capacity:            capacity,
		Suggestions:         []Suggestion{},
	}
	result.IsFeasible = result.TotalAvailableSlots >= result.SlotsNeeded
	if !result.IsFeasible {
		result.Deficit = result.SlotsNeeded - result.TotalAvailableSlots
	}
	if capacity.Total > 0 {
		rate := roundTo(float64(result.SlotsNeeded)/float64(capacity.Total)*100, 1)
		result.UtilizationRate = &rate
	}

	// Zero capacity is reported even when nothing is pending.
	switch {
	case capacity.Total == 0:
		result.Status = StatusZeroCapacity
	case result.IsFeasible:
		result.Status = StatusFeasible
	default:
		result.Status = StatusInfeasible
	}

	if !result.IsFeasible {
		result.Suggestions = suggestRemediations(plan, result.Deficit)
	}
	return result
}

func suggestRemediations(plan Plan, deficit int) []Suggestion {
	suggestions := make([]Suggestion, 0, 3)
	duration := plan.SessionMinutes
	if duration <= 0 || deficit <= 0 {
		return suggestions
	}
	weekly := plan.Hours.Total()

	extraHours := int(math.Ceil(float64(deficit) * float64(duration) / 60 / 7))
	gainedPerWeek := extraHours * 60 / duration
	suggestions = append(suggestions, Suggestion{
		Type:        SuggestIncreaseHours,
		Description: fmt.Sprintf("Increase weekly study time to %s hours (+%dh per week)", formatHours(weekly+float64(extraHours)), extraHours),
		Impact:      fmt.Sprintf("Adds about %d sessions per week", gainedPerWeek),
	})

	if perDay := weekly * 60 / float64(duration) / 7; perDay > 0 {
		extraDays := int(math.Ceil(float64(deficit) / perDay))
		newExam := DateOnly(plan.ExamDate).AddDate(0, 0, extraDays)
		suggestions = append(suggestions, Suggestion{
			Type:        SuggestExtendDate,
			Description: fmt.Sprintf("Move the exam date to %s (+%d days)", newExam.Format(DateLayout), extraDays),
			Impact:      fmt.Sprintf("Covers the deficit of %d sessions", deficit),
		})
	}

	if duration > MinSessionMinutes {
		shorter := duration - sessionReductionStep
		if shorter < MinSessionMinutes {
			shorter = MinSessionMinutes
		}
		weeklyMinutes := weekly * 60
		gained := int(math.Floor(weeklyMinutes/float64(shorter))) - int(math.Floor(weeklyMinutes/float64(duration)))
		suggestions = append(suggestions, Suggestion{
			Type:        SuggestReduceSession,
			Description: fmt.Sprintf("Reduce sessions from %d to %d minutes", duration, shorter),
			Impact:      fmt.Sprintf("Adds about %d sessions per week", gained),
		})
	}
	return suggestions
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
