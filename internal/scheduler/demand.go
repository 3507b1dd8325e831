package scheduler

import "time"

// TopicStatus tracks whether a topic still needs a study session.
type TopicStatus string

const (
	TopicPending   TopicStatus = "pending"
	TopicCompleted TopicStatus = "completed"
)

// Topic is the unit the scheduler orders. Subject weight is constant per
// subject within one run; TopicPriority only matters to the final-stretch cut.
type Topic struct {
	ID            string      `json:"id"`
	SubjectName   string      `json:"subjectName"`
	SubjectWeight int         `json:"subjectWeight"`
	TopicPriority int         `json:"topicPriority,omitempty"`
	Status        TopicStatus `json:"status"`
}

// IsPending reports whether the topic is a scheduling candidate.
func (t Topic) IsPending() bool {
	return t.Status != TopicCompleted
}

// PendingTopics filters completed topics out, keeping input order.
func PendingTopics(topics []Topic) []Topic {
	pending := make([]Topic, 0, len(topics))
	for _, topic := range topics {
		if topic.IsPending() {
			pending = append(pending, topic)
		}
	}
	return pending
}

// PlanOptions carries the plan attributes that influence demand.
type PlanOptions struct {
	StartDate time.Time
	ExamDate  time.Time
	HasEssay  bool
}

// SlotDemand itemises the sessions a plan needs.
type SlotDemand struct {
	NewTopics int `json:"newTopics"`
	Reviews   int `json:"reviews"`
	Essays    int `json:"essays"`
}

// Total sums every demand component.
func (d SlotDemand) Total() int {
	return d.NewTopics + d.Reviews + d.Essays
}

// EstimateDemand counts one slot per pending topic, one per review offset per
// topic, and one essay slot per Sunday of [StartDate, ExamDate] when enabled.
func EstimateDemand(pending []Topic, opts PlanOptions) SlotDemand {
	demand := SlotDemand{
		NewTopics: len(pending),
		Reviews:   len(pending) * len(ReviewOffsets),
	}
	if opts.HasEssay {
		demand.Essays = CountWeekday(opts.StartDate, opts.ExamDate, time.Sunday)
	}
	return demand
}

// CalculateRequiredSlots returns the total slot demand for the pending topics.
func CalculateRequiredSlots(pending []Topic, opts PlanOptions) int {
	return EstimateDemand(pending, opts).Total()
}
