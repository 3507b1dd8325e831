package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterializeFillsDaysInOrder(t *testing.T) {
	plan := Plan{
		StartDate:      date(t, "2025-08-23"), // Saturday
		ExamDate:       date(t, "2025-08-25"),
		Hours:          WeeklyHours{1, 2, 0, 0, 0, 0, 1},
		SessionMinutes: 60,
	}
	seq := makeTopics("math", 3, 5)

	got := Materialize(plan, seq)

	require.Len(t, got.Sessions, 4)
	assert.Equal(t, "2025-08-23", got.Sessions[0].Date.Format("2006-01-02"))
	assert.Equal(t, "2025-08-24", got.Sessions[1].Date.Format("2006-01-02"))
	assert.Equal(t, 2, got.Sessions[3].Slot)
	assert.Equal(t, "math-3", got.Sessions[3].Topic.ID)
	assert.Equal(t, 4, got.Sessions[3].Position)
	assert.Equal(t, []string{"math-4"}, ids(got.Unscheduled))
	assert.Len(t, got.Sessions[0].Reviews, len(ReviewOffsets))
}

func TestMaterializeReservesSundayEssay(t *testing.T) {
	plan := Plan{
		StartDate:      date(t, "2025-08-24"), // Sunday
		ExamDate:       date(t, "2025-08-24"),
		Hours:          WeeklyHours{3},
		SessionMinutes: 60,
		HasEssay:       true,
	}

	got := Materialize(plan, makeTopics("law", 1, 2))

	require.Len(t, got.Sessions, 3)
	assert.Equal(t, SessionEssay, got.Sessions[0].Kind)
	assert.Nil(t, got.Sessions[0].Topic)
	assert.Equal(t, SessionStudy, got.Sessions[1].Kind)
	assert.Equal(t, "law-1", got.Sessions[2].Topic.ID)
	assert.Empty(t, got.Unscheduled)
}

func TestMaterializeStopsWhenSequenceEnds(t *testing.T) {
	plan := Plan{
		StartDate:      date(t, "2025-09-01"),
		ExamDate:       date(t, "2025-09-30"),
		Hours:          fullWeekHours(),
		SessionMinutes: 60,
	}
	got := Materialize(plan, makeTopics("history", 2, 3))
	assert.Len(t, got.Sessions, 3)
	assert.Equal(t, time.Monday, got.Sessions[2].Date.Weekday())
}

func TestMaterializeWithoutCapacity(t *testing.T) {
	plan := Plan{StartDate: date(t, "2025-09-01"), ExamDate: date(t, "2025-09-02")}
	got := Materialize(plan, makeTopics("history", 2, 2))
	assert.Empty(t, got.Sessions)
	assert.Len(t, got.Unscheduled, 2)
}
