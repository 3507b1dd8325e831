package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/cronograma-api/internal/dto"
	"github.com/noah-isme/cronograma-api/internal/service"
	appErrors "github.com/noah-isme/cronograma-api/pkg/errors"
	"github.com/noah-isme/cronograma-api/pkg/response"
)

const maxPendingTopics = 5000

type planner interface {
	CheckFeasibility(ctx context.Context, req dto.FeasibilityRequest) (*dto.FeasibilityResponse, error)
	Distribute(ctx context.Context, req dto.DistributionRequest) (*dto.DistributionResponse, error)
	Preview(ctx context.Context, req dto.PreviewRequest) (*dto.PreviewResponse, error)
	FeasibilityForPlan(ctx context.Context, planID string) (*dto.FeasibilityResponse, error)
	PreviewForPlan(ctx context.Context, planID string, seed *int64) (*dto.PreviewResponse, error)
}

type previewExporter interface {
	RenderPreview(preview *dto.PreviewResponse, format string) (*service.ExportFile, error)
}

// PlannerHandler exposes study plan feasibility and generation endpoints.
type PlannerHandler struct {
	service planner
	export  previewExporter
}

// NewPlannerHandler constructs the handler.
func NewPlannerHandler(svc *service.PlannerService, exporter *service.ExportService) *PlannerHandler {
	return &PlannerHandler{service: svc, export: exporter}
}

// CheckFeasibility godoc
// @Summary Check whether pending topics fit before the exam
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.FeasibilityRequest true "Plan window and topics"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /planner/feasibility [post]
func (h *PlannerHandler) CheckFeasibility(c *gin.Context) {
	var req dto.FeasibilityRequest
	if !bindPlannerJSON(c, &req) {
		return
	}
	if len(req.PendingTopics) > maxPendingTopics {
		response.Error(c, tooManyTopics())
		return
	}
	result, err := h.service.CheckFeasibility(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Distribute godoc
// @Summary Order pending topics by subject weight
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.DistributionRequest true "Topics and optional seed"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /planner/distribution [post]
func (h *PlannerHandler) Distribute(c *gin.Context) {
	var req dto.DistributionRequest
	if !bindPlannerJSON(c, &req) {
		return
	}
	if len(req.PendingTopics) > maxPendingTopics {
		response.Error(c, tooManyTopics())
		return
	}
	result, err := h.service.Distribute(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Preview godoc
// @Summary Check feasibility, distribute topics and place them on the calendar
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.PreviewRequest true "Plan window, topics and optional seed"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /planner/preview [post]
func (h *PlannerHandler) Preview(c *gin.Context) {
	var req dto.PreviewRequest
	if !bindPlannerJSON(c, &req) {
		return
	}
	if len(req.PendingTopics) > maxPendingTopics {
		response.Error(c, tooManyTopics())
		return
	}
	result, err := h.service.Preview(c.Request.Context(), req)
	h.writePreview(c, result, err)
}

// PlanFeasibility godoc
// @Summary Check feasibility of a stored plan from today
// @Tags Plans
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /plans/{id}/feasibility [get]
func (h *PlannerHandler) PlanFeasibility(c *gin.Context) {
	result, err := h.service.FeasibilityForPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// PlanPreview godoc
// @Summary Preview the generated calendar of a stored plan
// @Tags Plans
// @Produce json
// @Param id path string true "Plan ID"
// @Param seed query int false "Distribution seed"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /plans/{id}/preview [get]
func (h *PlannerHandler) PlanPreview(c *gin.Context) {
	seed, ok := seedQuery(c)
	if !ok {
		return
	}
	result, err := h.service.PreviewForPlan(c.Request.Context(), c.Param("id"), seed)
	h.writePreview(c, result, err)
}

// ExportPlanPreview godoc
// @Summary Download the generated calendar of a stored plan
// @Tags Plans
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Plan ID"
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Param seed query int false "Distribution seed"
// @Success 200 {file} file
// @Failure 422 {object} response.Envelope
// @Router /plans/{id}/preview/export [get]
func (h *PlannerHandler) ExportPlanPreview(c *gin.Context) {
	seed, ok := seedQuery(c)
	if !ok {
		return
	}
	preview, err := h.service.PreviewForPlan(c.Request.Context(), c.Param("id"), seed)
	if err != nil {
		h.writePreview(c, preview, err)
		return
	}
	file, err := h.export.RenderPreview(preview, c.DefaultQuery("format", service.ExportFormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

func (h *PlannerHandler) writePreview(c *gin.Context, result *dto.PreviewResponse, err error) {
	if err != nil {
		if result != nil {
			response.Error(c, err, map[string]interface{}{"feasibility": result.Feasibility})
			return
		}
		response.Error(c, err)
		return
	}
	meta := map[string]interface{}{
		"runId":   result.Distribution.RunID,
		"seed":    result.Distribution.Seed,
		"quality": result.Distribution.Quality.Level,
	}
	if cut := result.FinalStretch; cut != nil && cut.Applied {
		meta["excludedTopics"] = len(cut.Excluded)
	}
	response.JSON(c, http.StatusOK, result, meta)
}

func bindPlannerJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid planner payload"))
		return false
	}
	return true
}

func seedQuery(c *gin.Context) (*int64, bool) {
	raw := c.Query("seed")
	if raw == "" {
		return nil, true
	}
	seed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "seed must be an integer"))
		return nil, false
	}
	return &seed, true
}

func tooManyTopics() error {
	return appErrors.Clone(appErrors.ErrValidation, "too many pending topics")
}
