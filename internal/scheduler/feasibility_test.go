package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weekPlan(t *testing.T) Plan {
	return Plan{
		StartDate:      date(t, "2025-08-23"),
		ExamDate:       date(t, "2025-08-29"),
		Hours:          fullWeekHours(),
		SessionMinutes: 70,
	}
}

func suggestionTypes(items []Suggestion) []SuggestionType {
	out := make([]SuggestionType, 0, len(items))
	for _, s := range items {
		out = append(out, s.Type)
	}
	return out
}

func TestValidateScheduleFeasibilityDeficit(t *testing.T) {
	topics := makeTopics("math", 5, 10)
	completed := makeTopics("physics", 2, 3)
	for i := range completed {
		completed[i].Status = TopicCompleted
	}

	result := ValidateScheduleFeasibility(weekPlan(t), append(topics, completed...))

	assert.False(t, result.IsFeasible)
	assert.Equal(t, StatusInfeasible, result.Status)
	assert.Equal(t, 36, result.TotalAvailableSlots)
	assert.Equal(t, 40, result.SlotsNeeded)
	assert.Equal(t, 4, result.Deficit)
	require.NotNil(t, result.UtilizationRate)
	assert.InDelta(t, 111.1, *result.UtilizationRate, 0.0001)

	assert.Equal(t, []SuggestionType{SuggestIncreaseHours, SuggestExtendDate, SuggestReduceSession}, suggestionTypes(result.Suggestions))
	assert.Contains(t, result.Suggestions[0].Description, "49 hours")
	assert.Contains(t, result.Suggestions[1].Description, "2025-08-30")
	assert.Contains(t, result.Suggestions[2].Description, "from 70 to 60 minutes")
	assert.Contains(t, result.Suggestions[2].Impact, "7 sessions")
}

func TestValidateScheduleFeasibilityFeasible(t *testing.T) {
	result := ValidateScheduleFeasibility(weekPlan(t), makeTopics("math", 5, 5))

	assert.True(t, result.IsFeasible)
	assert.Equal(t, StatusFeasible, result.Status)
	assert.Equal(t, 0, result.Deficit)
	assert.Empty(t, result.Suggestions)
	require.NotNil(t, result.UtilizationRate)
	assert.InDelta(t, 55.6, *result.UtilizationRate, 0.0001)
}

func TestValidateScheduleFeasibilityEssayAddsSundays(t *testing.T) {
	plan := weekPlan(t)
	plan.HasEssay = true
	result := ValidateScheduleFeasibility(plan, makeTopics("math", 5, 10))

	assert.Equal(t, 41, result.SlotsNeeded)
	assert.Equal(t, 1, result.Demand.Essays)
	assert.Equal(t, 5, result.Deficit)
}

func TestValidateScheduleFeasibilityZeroCapacity(t *testing.T) {
	plan := weekPlan(t)
	plan.Hours = WeeklyHours{}
	plan.SessionMinutes = 50

	result := ValidateScheduleFeasibility(plan, makeTopics("math", 5, 2))

	assert.False(t, result.IsFeasible)
	assert.Equal(t, StatusZeroCapacity, result.Status)
	assert.Nil(t, result.UtilizationRate)
	assert.Equal(t, 8, result.Deficit)
	types := suggestionTypes(result.Suggestions)
	assert.Contains(t, types, SuggestIncreaseHours)
	assert.NotContains(t, types, SuggestExtendDate)
}

func TestValidateScheduleFeasibilityExamBeforeStart(t *testing.T) {
	plan := weekPlan(t)
	plan.StartDate, plan.ExamDate = plan.ExamDate, plan.StartDate

	result := ValidateScheduleFeasibility(plan, makeTopics("math", 5, 1))

	assert.Equal(t, 0, result.TotalAvailableSlots)
	assert.Equal(t, StatusZeroCapacity, result.Status)
	assert.Nil(t, result.UtilizationRate)
}

func TestValidateScheduleFeasibilityNothingPending(t *testing.T) {
	plan := weekPlan(t)
	plan.Hours = WeeklyHours{}

	result := ValidateScheduleFeasibility(plan, nil)

	assert.True(t, result.IsFeasible)
	assert.Equal(t, StatusZeroCapacity, result.Status)
	assert.Nil(t, result.UtilizationRate)
	assert.Empty(t, result.Suggestions)
	assert.NotNil(t, result.Suggestions)
}

func TestValidateScheduleFeasibilityShortSessionsSkipReduction(t *testing.T) {
	plan := weekPlan(t)
	plan.SessionMinutes = 30
	plan.Hours = WeeklyHours{0, 1, 0, 0, 0, 0, 0}

	result := ValidateScheduleFeasibility(plan, makeTopics("math", 5, 3))

	assert.False(t, result.IsFeasible)
	assert.NotContains(t, suggestionTypes(result.Suggestions), SuggestReduceSession)
}
