package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cronograma-api/internal/dto"
	"github.com/noah-isme/cronograma-api/internal/scheduler"
	"github.com/noah-isme/cronograma-api/internal/service"
	appErrors "github.com/noah-isme/cronograma-api/pkg/errors"
)

type plannerMock struct {
	feasibilityReq dto.FeasibilityRequest
	distributeReq  dto.DistributionRequest
	previewReq     dto.PreviewRequest
	planID         string
	seed           *int64
	preview        *dto.PreviewResponse
	err            error
}

func (m *plannerMock) CheckFeasibility(ctx context.Context, req dto.FeasibilityRequest) (*dto.FeasibilityResponse, error) {
	m.feasibilityReq = req
	return &dto.FeasibilityResponse{Result: scheduler.FeasibilityResult{Status: scheduler.StatusFeasible, IsFeasible: true}}, m.err
}

func (m *plannerMock) Distribute(ctx context.Context, req dto.DistributionRequest) (*dto.DistributionResponse, error) {
	m.distributeReq = req
	return &dto.DistributionResponse{TopicIDs: []string{"b", "a"}}, m.err
}

func (m *plannerMock) Preview(ctx context.Context, req dto.PreviewRequest) (*dto.PreviewResponse, error) {
	m.previewReq = req
	return m.preview, m.err
}

func (m *plannerMock) FeasibilityForPlan(ctx context.Context, planID string) (*dto.FeasibilityResponse, error) {
	m.planID = planID
	if m.err != nil {
		return nil, m.err
	}
	return &dto.FeasibilityResponse{PlanID: planID}, nil
}

func (m *plannerMock) PreviewForPlan(ctx context.Context, planID string, seed *int64) (*dto.PreviewResponse, error) {
	m.planID = planID
	m.seed = seed
	return m.preview, m.err
}

type exporterMock struct {
	format string
}

func (m *exporterMock) RenderPreview(preview *dto.PreviewResponse, format string) (*service.ExportFile, error) {
	m.format = format
	if format == "xlsx" {
		return nil, appErrors.ErrUnsupportedFormat
	}
	return &service.ExportFile{Filename: "plan.csv", ContentType: "text/csv", Body: []byte("#\n")}, nil
}

func newPlannerRouter(svc planner, exporter previewExporter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &PlannerHandler{service: svc, export: exporter}
	r := gin.New()
	r.POST("/planner/feasibility", h.CheckFeasibility)
	r.POST("/planner/distribution", h.Distribute)
	r.POST("/planner/preview", h.Preview)
	r.GET("/plans/:id/feasibility", h.PlanFeasibility)
	r.GET("/plans/:id/preview", h.PlanPreview)
	r.GET("/plans/:id/preview/export", h.ExportPlanPreview)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestPlannerHandlerFeasibilityBindsWireShape(t *testing.T) {
	mock := &plannerMock{}
	payload := `{"planId":"p1","examDate":"2025-11-30","studyHoursPerWeekday":{"0":2,"6":4.5},"sessionDurationMinutes":50,"hasEssay":true,
		"pendingTopics":[{"id":"t1","subjectName":"Português","subjectWeight":5,"status":"pending"}]}`

	w := doJSON(newPlannerRouter(mock, nil), http.MethodPost, "/planner/feasibility", payload)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "p1", mock.feasibilityReq.PlanID)
	assert.Equal(t, 4.5, mock.feasibilityReq.StudyHoursPerWeekday["6"])
	assert.True(t, mock.feasibilityReq.HasEssay)
	require.Len(t, mock.feasibilityReq.PendingTopics, 1)
	assert.Equal(t, "Português", mock.feasibilityReq.PendingTopics[0].SubjectName)
	assert.Contains(t, string(decodeEnvelope(t, w)["data"]), `"isFeasible":true`)
}

func TestPlannerHandlerRejectsMalformedJSON(t *testing.T) {
	w := doJSON(newPlannerRouter(&plannerMock{}, nil), http.MethodPost, "/planner/distribution", `{"pendingTopics":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, string(decodeEnvelope(t, w)["error"]), appErrors.ErrValidation.Code)
}

func TestPlannerHandlerDistributePassesSeed(t *testing.T) {
	mock := &plannerMock{}
	w := doJSON(newPlannerRouter(mock, nil), http.MethodPost, "/planner/distribution", `{"pendingTopics":[{"id":"a","subjectName":"x"}],"seed":42}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mock.distributeReq.Seed)
	assert.Equal(t, int64(42), *mock.distributeReq.Seed)
}

func TestPlannerHandlerPreviewInfeasibleCarriesFeasibility(t *testing.T) {
	mock := &plannerMock{
		preview: &dto.PreviewResponse{Feasibility: dto.FeasibilityResponse{Result: scheduler.FeasibilityResult{Status: scheduler.StatusInfeasible, Deficit: 4}}},
		err:     appErrors.ErrInfeasibleSchedule,
	}
	w := doJSON(newPlannerRouter(mock, nil), http.MethodPost, "/planner/preview", `{"examDate":"2025-08-29","studyHoursPerWeekday":{"1":2}}`)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decodeEnvelope(t, w)
	assert.Contains(t, string(body["error"]), "INFEASIBLE_SCHEDULE")
	assert.Contains(t, string(body["meta"]), `"deficit":4`)
}

func TestPlannerHandlerPreviewFinalStretch(t *testing.T) {
	cut := &scheduler.FinalStretchCut{
		Applied:  true,
		Excluded: []scheduler.ExcludedTopic{{Topic: scheduler.Topic{ID: "t2", SubjectName: "Penal"}, CombinedPriority: 21}},
	}
	mock := &plannerMock{preview: &dto.PreviewResponse{FinalStretch: cut}}
	payload := `{"examDate":"2025-08-29","studyHoursPerWeekday":{"1":2},"finalStretch":true,
		"pendingTopics":[{"id":"t1","subjectName":"Penal","subjectWeight":2,"topicPriority":4}]}`

	w := doJSON(newPlannerRouter(mock, nil), http.MethodPost, "/planner/preview", payload)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mock.previewReq.FinalStretch)
	require.Len(t, mock.previewReq.PendingTopics, 1)
	assert.Equal(t, 4, mock.previewReq.PendingTopics[0].TopicPriority)
	body := decodeEnvelope(t, w)
	assert.Contains(t, string(body["meta"]), `"excludedTopics":1`)
	assert.Contains(t, string(body["data"]), `"combinedPriority":21`)
}

func TestPlannerHandlerPlanPreviewSeedQuery(t *testing.T) {
	mock := &plannerMock{preview: &dto.PreviewResponse{Distribution: dto.DistributionResponse{RunID: "run-1", Seed: 9}}}
	r := newPlannerRouter(mock, nil)

	w := doJSON(r, http.MethodGet, "/plans/7/preview?seed=9", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "7", mock.planID)
	require.NotNil(t, mock.seed)
	assert.Equal(t, int64(9), *mock.seed)
	assert.Contains(t, string(decodeEnvelope(t, w)["meta"]), `"runId":"run-1"`)

	w = doJSON(r, http.MethodGet, "/plans/7/preview?seed=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlannerHandlerPlanFeasibilityNotFound(t *testing.T) {
	mock := &plannerMock{err: appErrors.ErrNotFound}
	w := doJSON(newPlannerRouter(mock, nil), http.MethodGet, "/plans/404/feasibility", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "404", mock.planID)
}

func TestPlannerHandlerExport(t *testing.T) {
	exporter := &exporterMock{}
	r := newPlannerRouter(&plannerMock{preview: &dto.PreviewResponse{}}, exporter)

	w := doJSON(r, http.MethodGet, "/plans/7/preview/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", exporter.format)
	assert.Equal(t, `attachment; filename="plan.csv"`, w.Header().Get("Content-Disposition"))

	w = doJSON(r, http.MethodGet, "/plans/7/preview/export?format=xlsx", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
