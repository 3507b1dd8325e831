package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cronograma-api/internal/dto"
)

const feasiblePlan = `{
  "planId": "plan-1",
  "startDate": "2026-01-05",
  "examDate": "2026-01-31",
  "studyHoursPerWeekday": {"0": 2, "1": 2, "2": 2, "3": 2, "4": 2, "5": 2, "6": 2},
  "pendingTopics": [
    {"id": "m1", "subjectName": "Matemática", "subjectWeight": 3},
    {"id": "p1", "subjectName": "Português", "subjectWeight": 2}
  ]
}`

func infeasiblePlan() string {
	topics := make([]string, 0, 40)
	for i := 0; i < 40; i++ {
		topics = append(topics, `{"id":"t`+string(rune('a'+i%26))+string(rune('a'+i/26))+`","subjectName":"História","subjectWeight":1}`)
	}
	return `{
  "startDate": "2026-01-05",
  "examDate": "2026-01-31",
  "studyHoursPerWeekday": {"1": 1},
  "pendingTopics": [` + strings.Join(topics, ",") + `]
}`
}

func sweepPlan() string {
	return `{
  "examDate": "2026-12-01",
  "studyHoursPerWeekday": {"1": 2},
  "pendingTopics": [
    {"id": "m1", "subjectName": "Matemática", "subjectWeight": 5},
    {"id": "m2", "subjectName": "Matemática", "subjectWeight": 5},
    {"id": "m3", "subjectName": "Matemática", "subjectWeight": 5},
    {"id": "p1", "subjectName": "Português", "subjectWeight": 2},
    {"id": "p2", "subjectName": "Português", "subjectWeight": 2},
    {"id": "b1", "subjectName": "Biologia", "subjectWeight": 1}
  ]
}`
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestFeasibilityTextOutput(t *testing.T) {
	out, _, err := run(t, feasiblePlan, "feasibility")
	require.NoError(t, err)
	assert.Contains(t, out, "Window:      2026-01-05 .. 2026-01-31")
	assert.Contains(t, out, "Status:      feasible")
	assert.NotContains(t, out, "Deficit")
}

func TestFeasibilityJSONFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, []byte(infeasiblePlan()), 0o600))

	out, _, err := run(t, "", "feasibility", "-f", path, "-o", "json")
	require.NoError(t, err)

	var resp dto.FeasibilityResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.False(t, resp.Result.IsFeasible)
	assert.Equal(t, "infeasible", string(resp.Result.Status))
	assert.Positive(t, resp.Result.Deficit)
	assert.NotEmpty(t, resp.Result.Suggestions)
}

func TestFeasibilityRejectsUnknownOutput(t *testing.T) {
	_, _, err := run(t, feasiblePlan, "feasibility", "-o", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestFeasibilityRejectsBadJSON(t *testing.T) {
	_, _, err := run(t, "{not json", "feasibility")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode plan request")
}

func TestSweepAggregatesSeeds(t *testing.T) {
	out, _, err := run(t, sweepPlan(), "sweep", "--runs", "5", "--seed", "10", "-o", "json")
	require.NoError(t, err)

	var report SweepReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, int64(10), report.FirstSeed)
	assert.Equal(t, 5, report.Runs)
	assert.Equal(t, 6, report.Topics)
	assert.LessOrEqual(t, report.MinScore, report.MaxScore)
	assert.GreaterOrEqual(t, report.WorstSeed, int64(10))

	total := 0
	for _, n := range report.Levels {
		total += n
	}
	assert.Equal(t, 5, total)
}

func TestSweepRequiresPositiveRuns(t *testing.T) {
	_, _, err := run(t, sweepPlan(), "sweep", "--runs", "0")
	require.Error(t, err)
}

func TestPreviewPrintsCalendar(t *testing.T) {
	out, _, err := run(t, feasiblePlan, "preview", "--seed", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Seed 7")
	assert.Contains(t, out, "m1")
	assert.Contains(t, out, "p1")
}

func TestPreviewReportsInfeasiblePlan(t *testing.T) {
	_, stderr, err := run(t, infeasiblePlan(), "preview")
	require.Error(t, err)
	assert.Contains(t, stderr, "status infeasible")
}

func TestPreviewFinalStretchKeepsWhatFits(t *testing.T) {
	out, _, err := run(t, infeasiblePlan(), "preview", "--seed", "1", "--final-stretch")
	require.NoError(t, err)
	assert.Contains(t, out, "Final stretch: kept 1, left out 39 topics")
	assert.Contains(t, out, "taa")
	assert.NotContains(t, out, "unscheduled")
}

func TestPreviewExportsCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calendar.csv")
	out, _, err := run(t, feasiblePlan, "preview", "--seed", "3", "--export", "csv", "--dir", dir, "--name", "calendar.csv")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "m1")
}

func TestPreviewRejectsEscapingExportName(t *testing.T) {
	_, _, err := run(t, feasiblePlan, "preview", "--export", "csv", "--dir", t.TempDir(), "--name", "../x.csv")
	require.Error(t, err)
}
