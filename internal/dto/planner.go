package dto

import "github.com/noah-isme/cronograma-api/internal/scheduler"

// DateLayout is the wire format of plan dates.
const DateLayout = scheduler.DateLayout

// PendingTopicRequest is one topic of a plan as sent by the client.
type PendingTopicRequest struct {
	ID            string `json:"id" validate:"required"`
	SubjectName   string `json:"subjectName" validate:"required"`
	SubjectWeight int    `json:"subjectWeight"`
	TopicPriority int    `json:"topicPriority" validate:"gte=0"`
	Status        string `json:"status" validate:"omitempty,oneof=pending completed"`
}

// PlanInput describes a plan window and its topics.
type PlanInput struct {
	PlanID                 string                `json:"planId"`
	StartDate              string                `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	ExamDate               string                `json:"examDate" validate:"required,datetime=2006-01-02"`
	StudyHoursPerWeekday   map[string]float64    `json:"studyHoursPerWeekday" validate:"required,dive,keys,oneof=0 1 2 3 4 5 6,endkeys,gte=0,lte=24"`
	SessionDurationMinutes int                   `json:"sessionDurationMinutes" validate:"omitempty,min=1,max=600"`
	HasEssay               bool                  `json:"hasEssay"`
	FinalStretch           bool                  `json:"finalStretch"`
	PendingTopics          []PendingTopicRequest `json:"pendingTopics" validate:"dive"`
}

// FeasibilityRequest asks whether the pending topics fit the plan window.
type FeasibilityRequest struct {
	PlanInput
}

// DistributionRequest asks for a weighted ordering of pending topics. A seed
// makes the ordering reproducible.
type DistributionRequest struct {
	PendingTopics []PendingTopicRequest `json:"pendingTopics" validate:"required,dive"`
	Seed          *int64                `json:"seed"`
}

// PreviewRequest runs feasibility, distribution and calendar placement.
type PreviewRequest struct {
	PlanInput
	Seed *int64 `json:"seed"`
}

// FeasibilityResponse wraps the engine result with the resolved window.
type FeasibilityResponse struct {
	PlanID         string                      `json:"planId,omitempty"`
	StartDate      string                      `json:"startDate"`
	ExamDate       string                      `json:"examDate"`
	SessionMinutes int                         `json:"sessionDurationMinutes"`
	Result         scheduler.FeasibilityResult `json:"feasibility"`
}

// DistributionResponse carries an ordered sequence with its analysis.
type DistributionResponse struct {
	RunID    string                         `json:"runId"`
	Seed     int64                          `json:"seed"`
	TopicIDs []string                       `json:"topicIds"`
	Sequence []scheduler.Topic              `json:"sequence"`
	Analysis scheduler.DistributionAnalysis `json:"analysis"`
	Quality  scheduler.QualityReport        `json:"quality"`
	Summary  scheduler.DistributionSummary  `json:"summary"`
	Stats    scheduler.DistributionStats    `json:"stats"`
}

// PreviewResponse is the full generation preview of a plan.
type PreviewResponse struct {
	Feasibility  FeasibilityResponse        `json:"feasibility"`
	FinalStretch *scheduler.FinalStretchCut `json:"finalStretch,omitempty"`
	Distribution DistributionResponse       `json:"distribution"`
	Calendar     scheduler.Materialization  `json:"calendar"`
}
