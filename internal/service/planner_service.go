package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/cronograma-api/internal/dto"
	"github.com/noah-isme/cronograma-api/internal/models"
	"github.com/noah-isme/cronograma-api/internal/scheduler"
	appErrors "github.com/noah-isme/cronograma-api/pkg/errors"
)

type studyPlanReader interface {
	FindByID(ctx context.Context, id string) (*models.StudyPlan, error)
}

type topicReader interface {
	ListByPlan(ctx context.Context, planID string) ([]models.Topic, error)
	PendingByPlan(ctx context.Context, planID string) ([]models.Topic, error)
}

type plannerCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// PlannerConfig tunes the planner service.
type PlannerConfig struct {
	DefaultSessionMinutes int
	Distribution          scheduler.DistributionOptions
	Location              *time.Location
	CacheTTL              time.Duration
}

// PlannerService runs feasibility checks, weighted distributions and
// calendar previews for study plans.
type PlannerService struct {
	plans     studyPlanReader
	topics    topicReader
	cache     plannerCache
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       PlannerConfig
	now       func() time.Time
}

// NewPlannerService constructs the planner service. Plan and topic readers
// may be nil when only request-driven endpoints are served.
func NewPlannerService(plans studyPlanReader, topics topicReader, cache plannerCache, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg PlannerConfig) *PlannerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultSessionMinutes <= 0 {
		cfg.DefaultSessionMinutes = models.DefaultSessionMinutes
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &PlannerService{
		plans:     plans,
		topics:    topics,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// CheckFeasibility compares the demand of the request's pending topics with
// the sessions available before the exam.
func (s *PlannerService) CheckFeasibility(ctx context.Context, req dto.FeasibilityRequest) (*dto.FeasibilityResponse, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	plan, err := s.planFromInput(req.PlanInput)
	if err != nil {
		return nil, err
	}
	return s.feasibility(ctx, req.PlanID, plan, topicsFromRequest(req.PendingTopics)), nil
}

// Distribute orders pending topics by subject weight. The response carries the
// seed so a run can be reproduced.
func (s *PlannerService) Distribute(ctx context.Context, req dto.DistributionRequest) (*dto.DistributionResponse, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	return s.distribute(ctx, "", topicsFromRequest(req.PendingTopics), req.Seed)
}

// Preview checks feasibility and, when the plan fits, distributes the pending
// topics and places them on the calendar. An infeasible plan returns the
// feasibility part of the response together with the error.
func (s *PlannerService) Preview(ctx context.Context, req dto.PreviewRequest) (*dto.PreviewResponse, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	plan, err := s.planFromInput(req.PlanInput)
	if err != nil {
		return nil, err
	}
	return s.preview(ctx, req.PlanID, plan, topicsFromRequest(req.PendingTopics), req.Seed)
}

// FeasibilityForPlan runs the feasibility check for a stored plan starting today.
func (s *PlannerService) FeasibilityForPlan(ctx context.Context, planID string) (*dto.FeasibilityResponse, error) {
	plan, err := s.loadPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	rows, err := s.timedTopics(ctx, "topics.list_by_plan", func() ([]models.Topic, error) {
		return s.topics.ListByPlan(ctx, planID)
	})
	if err != nil {
		return nil, err
	}
	return s.feasibility(ctx, planID, plan, models.SchedulerTopics(rows)), nil
}

// PreviewForPlan builds the preview of a stored plan starting today.
func (s *PlannerService) PreviewForPlan(ctx context.Context, planID string, seed *int64) (*dto.PreviewResponse, error) {
	plan, err := s.loadPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	rows, err := s.timedTopics(ctx, "topics.pending_by_plan", func() ([]models.Topic, error) {
		return s.topics.PendingByPlan(ctx, planID)
	})
	if err != nil {
		return nil, err
	}
	return s.preview(ctx, planID, plan, models.SchedulerTopics(rows), seed)
}

func (s *PlannerService) feasibility(ctx context.Context, planID string, plan scheduler.Plan, topics []scheduler.Topic) *dto.FeasibilityResponse {
	key := feasibilityCacheKey(plan, topics)
	var cached dto.FeasibilityResponse
	if s.cache != nil {
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			cached.PlanID = planID
			return &cached
		}
	}

	start := time.Now()
	result := scheduler.ValidateScheduleFeasibility(plan, topics)
	s.metrics.ObserveFeasibility(result, time.Since(start))

	resp := &dto.FeasibilityResponse{
		PlanID:         planID,
		StartDate:      plan.StartDate.Format(dto.DateLayout),
		ExamDate:       plan.ExamDate.Format(dto.DateLayout),
		SessionMinutes: plan.SessionMinutes,
		Result:         result,
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, resp, s.cfg.CacheTTL)
	}

	s.logger.Info("feasibility checked",
		zap.String("plan_id", planID),
		zap.String("status", string(result.Status)),
		zap.Int("slots_available", result.TotalAvailableSlots),
		zap.Int("slots_needed", result.SlotsNeeded),
		zap.Int("deficit", result.Deficit),
	)
	return resp
}

func (s *PlannerService) distribute(ctx context.Context, planID string, topics []scheduler.Topic, seed *int64) (*dto.DistributionResponse, error) {
	runSeed := s.now().UnixNano()
	if seed != nil {
		runSeed = *seed
	}
	pending := scheduler.PendingTopics(topics)

	start := time.Now()
	seq, stats := scheduler.NewDistributor(scheduler.NewRandomSource(runSeed), s.cfg.Distribution).Distribute(pending)
	if !scheduler.IsPermutation(pending, seq) {
		s.logger.Error("distribution lost or duplicated topics",
			zap.String("plan_id", planID),
			zap.Int64("seed", runSeed),
			zap.Int("pending", len(pending)),
			zap.Int("distributed", len(seq)),
		)
		return nil, appErrors.Clone(appErrors.ErrInternal, "distribution failed")
	}
	analysis := scheduler.AnalyzeDistribution(seq)
	quality := scheduler.ValidateDistributionQuality(analysis)
	s.metrics.ObserveDistribution(analysis, quality, time.Since(start))

	resp := &dto.DistributionResponse{
		RunID:    uuid.NewString(),
		Seed:     runSeed,
		TopicIDs: topicIDs(seq),
		Sequence: seq,
		Analysis: analysis,
		Quality:  quality,
		Summary:  analysis.Summary(),
		Stats:    stats,
	}

	s.logger.Info("topics distributed",
		zap.String("plan_id", planID),
		zap.String("run_id", resp.RunID),
		zap.Int64("seed", runSeed),
		zap.Int("topics", len(seq)),
		zap.Int("max_run", analysis.MaxConsecutiveSubject),
		zap.Int("quality_score", quality.Score),
		zap.Int("run_breaks", stats.RunBreaks),
	)
	return resp, nil
}

func (s *PlannerService) preview(ctx context.Context, planID string, plan scheduler.Plan, topics []scheduler.Topic, seed *int64) (*dto.PreviewResponse, error) {
	feasibility := s.feasibility(ctx, planID, plan, topics)
	resp := &dto.PreviewResponse{Feasibility: *feasibility}
	if result := feasibility.Result; !result.IsFeasible {
		if result.Status == scheduler.StatusZeroCapacity {
			return resp, appErrors.ErrZeroCapacity
		}
		infeasible := appErrors.Clone(appErrors.ErrInfeasibleSchedule,
			fmt.Sprintf("%d of %d required sessions do not fit before the exam date", result.Deficit, result.SlotsNeeded))
		if !plan.FinalStretch {
			return resp, infeasible
		}
		cut := scheduler.ApplyFinalStretch(plan, topics)
		if len(cut.Kept) == 0 {
			return resp, infeasible
		}
		s.logger.Info("final stretch applied",
			zap.String("plan_id", planID),
			zap.Int("kept", len(cut.Kept)),
			zap.Int("excluded", len(cut.Excluded)),
			zap.Int("slots_needed", cut.SlotsNeeded),
		)
		resp.FinalStretch = &cut
		topics = cut.Kept
	}

	distribution, err := s.distribute(ctx, planID, topics, seed)
	if err != nil {
		return nil, err
	}
	resp.Distribution = *distribution
	resp.Calendar = scheduler.Materialize(plan, distribution.Sequence)
	return resp, nil
}

func (s *PlannerService) loadPlan(ctx context.Context, planID string) (scheduler.Plan, error) {
	if s.plans == nil || s.topics == nil {
		return scheduler.Plan{}, appErrors.Clone(appErrors.ErrUnavailable, "plan storage is not configured")
	}
	if strings.TrimSpace(planID) == "" {
		return scheduler.Plan{}, appErrors.Clone(appErrors.ErrValidation, "plan id is required")
	}

	start := time.Now()
	stored, err := s.plans.FindByID(ctx, planID)
	s.metrics.ObserveDBQuery("study_plans.find_by_id", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return scheduler.Plan{}, appErrors.Clone(appErrors.ErrNotFound, "study plan not found")
		}
		return scheduler.Plan{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load study plan")
	}

	plan, err := stored.SchedulerPlan(s.today())
	if err != nil {
		return scheduler.Plan{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "stored study hours are invalid")
	}
	plan.ExamDate = scheduler.DateOnly(plan.ExamDate)
	if plan.Hours.Total() <= 0 {
		return scheduler.Plan{}, appErrors.ErrInvalidHours
	}
	return plan, nil
}

func (s *PlannerService) timedTopics(ctx context.Context, label string, load func() ([]models.Topic, error)) ([]models.Topic, error) {
	start := time.Now()
	rows, err := load()
	s.metrics.ObserveDBQuery(label, time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load topics")
	}
	return rows, nil
}

func (s *PlannerService) planFromInput(in dto.PlanInput) (scheduler.Plan, error) {
	exam, err := scheduler.ParseDate(in.ExamDate)
	if err != nil {
		return scheduler.Plan{}, appErrors.Clone(appErrors.ErrValidation, "examDate must be YYYY-MM-DD")
	}
	start := s.today()
	if in.StartDate != "" {
		start, err = scheduler.ParseDate(in.StartDate)
		if err != nil {
			return scheduler.Plan{}, appErrors.Clone(appErrors.ErrValidation, "startDate must be YYYY-MM-DD")
		}
	}
	hours, err := scheduler.WeeklyHoursFromMap(in.StudyHoursPerWeekday)
	if err != nil {
		return scheduler.Plan{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "studyHoursPerWeekday keys must be 0..6")
	}
	if hours.Total() <= 0 {
		return scheduler.Plan{}, appErrors.ErrInvalidHours
	}
	session := in.SessionDurationMinutes
	if session <= 0 {
		session = s.cfg.DefaultSessionMinutes
	}
	return scheduler.Plan{
		StartDate:      start,
		ExamDate:       exam,
		Hours:          hours,
		SessionMinutes: session,
		HasEssay:       in.HasEssay,
		FinalStretch:   in.FinalStretch,
	}, nil
}

func (s *PlannerService) validate(req interface{}) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validationMessage(err))
	}
	return nil
}

// today is the current civil date in the configured zone.
func (s *PlannerService) today() time.Time {
	return scheduler.DateOnly(s.now().In(s.cfg.Location))
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return appErrors.ErrValidation.Message
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(fields, "; ")
}

func topicsFromRequest(items []dto.PendingTopicRequest) []scheduler.Topic {
	out := make([]scheduler.Topic, 0, len(items))
	for _, item := range items {
		status := scheduler.TopicPending
		if item.Status == string(scheduler.TopicCompleted) {
			status = scheduler.TopicCompleted
		}
		out = append(out, scheduler.Topic{
			ID:            item.ID,
			SubjectName:   item.SubjectName,
			SubjectWeight: item.SubjectWeight,
			TopicPriority: item.TopicPriority,
			Status:        status,
		})
	}
	return out
}

func topicIDs(seq []scheduler.Topic) []string {
	out := make([]string, 0, len(seq))
	for _, t := range seq {
		out = append(out, t.ID)
	}
	return out
}

func feasibilityCacheKey(plan scheduler.Plan, topics []scheduler.Topic) string {
	payload, _ := json.Marshal(struct {
		Start    string                `json:"s"`
		Exam     string                `json:"e"`
		Hours    scheduler.WeeklyHours `json:"h"`
		Session  int                   `json:"m"`
		HasEssay bool                  `json:"x"`
		Topics   []scheduler.Topic     `json:"t"`
	}{
		Start:    plan.StartDate.Format(dto.DateLayout),
		Exam:     plan.ExamDate.Format(dto.DateLayout),
		Hours:    plan.Hours,
		Session:  plan.SessionMinutes,
		HasEssay: plan.HasEssay,
		Topics:   topics,
	})
	sum := sha256.Sum256(payload)
	return "feasibility:" + hex.EncodeToString(sum[:])
}
