package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/cronograma-api/internal/dto"
	"github.com/noah-isme/cronograma-api/internal/scheduler"
	appErrors "github.com/noah-isme/cronograma-api/pkg/errors"
	"github.com/noah-isme/cronograma-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders plan previews into downloadable files.
type ExportService struct {
	csv    datasetRenderer
	pdf    datasetRenderer
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to
// the default CSV and PDF exporters.
func NewExportService(logger *zap.Logger, csv, pdf datasetRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// RenderPreview renders the calendar of a preview in the requested format.
func (s *ExportService) RenderPreview(preview *dto.PreviewResponse, format string) (*ExportFile, error) {
	if preview == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "preview is required")
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}

	dataset := buildPreviewDataset(preview)
	var (
		body        []byte
		contentType string
		err         error
	)
	switch format {
	case ExportFormatCSV:
		body, err = s.csv.Render(dataset)
		contentType = "text/csv; charset=utf-8"
	case ExportFormatPDF:
		body, err = s.pdf.Render(dataset)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		s.logger.Error("render preview export", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &ExportFile{
		Filename:    s.filename(preview.Feasibility.PlanID, format),
		ContentType: contentType,
		Body:        body,
	}, nil
}

func (s *ExportService) filename(planID, format string) string {
	id := sanitizeFilename(planID)
	if id == "" {
		id = "plan"
	}
	return fmt.Sprintf("cronograma_%s_%s.%s", id, s.now().UTC().Format("20060102_150405"), format)
}

func sanitizeFilename(raw string) string {
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "\"", "")
	result := replacer.Replace(strings.TrimSpace(raw))
	if len(result) > 64 {
		return result[:64]
	}
	return result
}

func buildPreviewDataset(preview *dto.PreviewResponse) export.Dataset {
	data := export.Dataset{
		Title:   fmt.Sprintf("Study plan %s to %s", preview.Feasibility.StartDate, preview.Feasibility.ExamDate),
		Headers: []string{"#", "Date", "Weekday", "Slot", "Kind", "Subject", "Topic", "Reviews"},
	}
	for _, session := range preview.Calendar.Sessions {
		subject, topic := "", ""
		if session.Topic != nil {
			subject, topic = session.Topic.SubjectName, session.Topic.ID
		}
		data.Rows = append(data.Rows, []string{
			strconv.Itoa(session.Position),
			session.Date.Format(dto.DateLayout),
			session.Date.Weekday().String(),
			strconv.Itoa(session.Slot),
			string(session.Kind),
			subject,
			topic,
			formatReviews(session.Reviews),
		})
	}

	quality := preview.Distribution.Quality
	summary := preview.Distribution.Summary
	data.Notes = append(data.Notes,
		fmt.Sprintf("Quality: %s (%d/100)", quality.Level, quality.Score),
		fmt.Sprintf("Subjects: %d, longest same-subject run: %d (%s)", summary.Subjects, summary.MaxConsecutiveSubject, summary.Balance),
	)
	data.Notes = append(data.Notes, quality.Recommendations...)
	if cut := preview.FinalStretch; cut != nil && cut.Applied {
		data.Notes = append(data.Notes, fmt.Sprintf("Final stretch: %d lower-priority topics left out", len(cut.Excluded)))
	}
	if n := len(preview.Calendar.Unscheduled); n > 0 {
		data.Notes = append(data.Notes, fmt.Sprintf("%d topics did not fit the calendar", n))
	}
	return data
}

func formatReviews(reviews []scheduler.ReviewPlacement) string {
	parts := make([]string, 0, len(reviews))
	for _, review := range reviews {
		if review.ReviewDate != nil {
			parts = append(parts, review.ReviewDate.Format(dto.DateLayout))
		}
	}
	return strings.Join(parts, " ")
}
