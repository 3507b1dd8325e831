package scheduler

import "time"

// ReviewOffsets are the spaced-repetition intervals, in days after the first
// study session. Session materializers must place reviews with these exact
// offsets; the demand estimator counts one slot per entry.
var ReviewOffsets = []int{7, 14, 28}

// ReviewDay is the weekday reviews are moved to.
const ReviewDay = time.Saturday

// Reasons a review placement can be skipped.
const (
	ReviewSkippedAfterExam  = "after_exam"
	ReviewSkippedNoSaturday = "no_saturday"
)

// ReviewPlacement is the computed date for one review of a topic.
type ReviewPlacement struct {
	OffsetDays int        `json:"offsetDays"`
	TargetDate time.Time  `json:"targetDate"`
	ReviewDate *time.Time `json:"reviewDate,omitempty"`
	Skipped    string     `json:"skipped,omitempty"`
}

// PlanReviews resolves every review offset for a topic first studied on
// studyDate. A review lands on the first Saturday on or after its target that
// has study hours and does not pass the exam date.
func PlanReviews(studyDate, examDate time.Time, hours WeeklyHours) []ReviewPlacement {
	base := DateOnly(studyDate)
	exam := DateOnly(examDate)
	placements := make([]ReviewPlacement, 0, len(ReviewOffsets))
	for _, offset := range ReviewOffsets {
		placement := ReviewPlacement{OffsetDays: offset, TargetDate: base.AddDate(0, 0, offset)}
		if placement.TargetDate.After(exam) {
			placement.Skipped = ReviewSkippedAfterExam
			placements = append(placements, placement)
			continue
		}
		shift := (int(ReviewDay) - int(placement.TargetDate.Weekday()) + 7) % 7
		review := placement.TargetDate.AddDate(0, 0, shift)
		if hours.For(ReviewDay) <= 0 || review.After(exam) {
			placement.Skipped = ReviewSkippedNoSaturday
		} else {
			placement.ReviewDate = &review
		}
		placements = append(placements, placement)
	}
	return placements
}
